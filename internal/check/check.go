// Package check implements the interleaved type-checker and lowering
// driver: it walks a program's declarations in a fixed order (module
// types, module variable slots, then function/variable bodies),
// resolving each expression's type with internal/unify and asking
// internal/lower to emit the matching IR the moment that type is known.
// Checking and lowering happen in one pass, not two.
//
// Modeled on the prior internal/types/typechecker_core.go (inferCore's
// per-node-kind switch) and internal/elaborate/elaborate.go's module-level
// declaration ordering (types before values, values in dependency order).
package check

import (
	"fmt"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/generic"
	"github.com/sunholo/langc/internal/scope"
	"github.com/sunholo/langc/internal/types"
)

// Checker drives checking and lowering for one compilation.
type Checker struct {
	Prog *scope.ProgramScope
	Sink *diag.Sink
	Inst *generic.Instantiator
}

// New creates a Checker. Inst is nil until SetInstantiator is called.
func New(prog *scope.ProgramScope, sink *diag.Sink) *Checker {
	return &Checker{Prog: prog, Sink: sink}
}

// SetInstantiator wires the generic-instantiation callback after
// construction. internal/generic cannot import internal/check (its
// Instantiate re-checks a generic definition's body), so
// internal/pipeline builds a Checker, then a generic.Instantiator from
// Checker.CheckerFunc, then calls SetInstantiator to close the loop.
func (c *Checker) SetInstantiator(inst *generic.Instantiator) { c.Inst = inst }

// CheckerFunc adapts checkFuncDecl to generic.CheckerFunc.
func (c *Checker) CheckerFunc() generic.CheckerFunc {
	return func(u *bound.UncheckedVar, genScope *scope.GenericSubstitutionScope) (*bound.BoundVar, error) {
		if u.CtorSig != nil {
			return c.checkCtorDecl(u, genScope)
		}
		return c.checkFuncDecl(u, genScope)
	}
}

// CheckModuleTypes resolves every registered type declaration in mod,
// in declaration order, registering each as a typename and (for sums)
// a set of constructor UncheckedVars.
func (c *Checker) CheckModuleTypes(mod *scope.ModuleScope) {
	for _, u := range mod.UncheckedTypesOrdered() {
		c.checkTypeDecl(mod, u)
	}
}

// CheckModuleVarSlots resolves every module-level `var`/`let` declaration
// in mod, wiring its initializer into the shared __init_module_vars
// function and (for managed values) __visit_module_vars.
func (c *Checker) CheckModuleVarSlots(mod *scope.ModuleScope) {
	for _, u := range mod.Program().UncheckedVarsOrdered() {
		if u.Module != mod.Name {
			continue
		}
		if _, ok := u.Node.(*astiface.VarDecl); !ok {
			continue
		}
		if _, err := c.checkModuleVarDecl(mod, u); err != nil {
			sp := u.Node.Span()
			c.Sink.Report(diag.New(diag.TYPUnifyFailed, diag.PhaseTypeCheck, diag.Error, &sp, "%v", err))
		}
	}
}

// CheckProgramVariables resolves every non-generic function declaration
// across the whole program (module-crossing references already resolve,
// since module var slots and types were checked in earlier passes).
// Constructors and generic functions are skipped here and instantiated
// at their call sites; module variables are checked by
// CheckModuleVarSlots, not here.
func (c *Checker) CheckProgramVariables() {
	for _, u := range c.Prog.UncheckedVarsOrdered() {
		if _, ok := u.Node.(*astiface.FuncDecl); !ok {
			continue
		}
		if u.CtorSig != nil {
			continue // constructors are instantiated lazily at call sites
		}
		if isGenericFuncDecl(u.Node.(*astiface.FuncDecl)) {
			continue // checked lazily via internal/generic at first call
		}
		mod, ok := c.Prog.LookupModule(u.Module)
		if !ok {
			continue
		}
		if _, err := c.checkFuncDecl(u, nil); err != nil {
			sp := u.Node.Span()
			c.Sink.Report(diag.New(diag.TYPUnifyFailed, diag.PhaseTypeCheck, diag.Error, &sp, "function %s: %v", u.FQN, err))
		}
		_ = mod
	}
}

// isGenericFuncDecl reports whether d has any parameter with no explicit
// type annotation — the signal this pipeline uses to defer checking to
// the first call site's instantiation, rather than requiring an explicit
// generic-parameter list.
func isGenericFuncDecl(d *astiface.FuncDecl) bool {
	for _, p := range d.Params {
		if p.Type == nil {
			return true
		}
	}
	return false
}

func modOf(prog *scope.ProgramScope, name string) (*scope.ModuleScope, error) {
	m, ok := prog.LookupModule(name)
	if !ok {
		return nil, fmt.Errorf("check: module %q not found", name)
	}
	return m, nil
}

// scopeTypeEnv adapts a scope.Scope's typename table to types.Env, the
// minimal lookup interface internal/types needs for alias expansion,
// without internal/types importing internal/scope.
type scopeTypeEnv struct{ sc scope.Scope }

func (e scopeTypeEnv) Lookup(name string) (types.Term, bool) { return e.sc.GetType(name, true) }
