package scope

import (
	"fmt"

	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/types"
)

// ProgramScope is the singleton root scope. It additionally holds the
// module table, the bound-type cache, the unchecked-var/type tables, the
// bound-type-signature-mapping table, and the module-initializer/visitor
// functions.
type ProgramScope struct {
	base

	modules map[string]*ModuleScope

	boundTypes     map[string]*bound.BoundType
	typeMappings   map[string]string // signature -> signature redirect

	uncheckedTypesOrdered []*bound.UncheckedType
	uncheckedTypesByFQN   map[string]*bound.UncheckedType
	uncheckedVarsOrdered  []*bound.UncheckedVar
	uncheckedVarsByFQN    map[string]*bound.UncheckedVar

	initModuleVarsFn   *ir.Function
	initModuleVarsBldr *ir.Builder
	visitModuleVarsFn   *ir.Function
	visitModuleVarsBldr *ir.Builder
}

// NewProgramScope creates the root scope of a compilation.
func NewProgramScope() *ProgramScope {
	p := &ProgramScope{
		modules:             map[string]*ModuleScope{},
		boundTypes:          map[string]*bound.BoundType{},
		typeMappings:        map[string]string{},
		uncheckedTypesByFQN: map[string]*bound.UncheckedType{},
		uncheckedVarsByFQN:  map[string]*bound.UncheckedVar{},
	}
	p.base = newBase(nil, "program")
	return p
}

// LookupModule returns a previously created module scope, if any.
func (p *ProgramScope) LookupModule(name string) (*ModuleScope, bool) {
	m, ok := p.modules[name]
	return m, ok
}

// NewModuleScope creates (or returns the existing) module scope for name,
// owning irModule.
func (p *ProgramScope) NewModuleScope(name string, irModule *ir.Module) *ModuleScope {
	if m, ok := p.modules[name]; ok {
		return m
	}
	m := &ModuleScope{
		Name:      name,
		IRModule:  irModule,
		program:   p,
	}
	m.base = newBase(p, "module")
	m.uncheckedTypesByName = map[string]*bound.UncheckedType{}
	p.modules[name] = m
	return m
}

// Modules returns all module scopes, in insertion order is not
// guaranteed by this map; internal/pipeline orders modules itself
// (runtime first, then declaration order).
func (p *ProgramScope) Modules() map[string]*ModuleScope { return p.modules }

// PutBoundType inserts a freshly-materialized BoundType, keyed by its
// ground signature. Inserting a type with ftv_count > 0 is an internal
// invariant violation, not a user error, so it panics.
func (p *ProgramScope) PutBoundType(bt *bound.BoundType) {
	if !types.IsGround(bt.Type) {
		panic("scope: attempted to cache a non-ground BoundType: " + bt.Type.String())
	}
	p.boundTypes[bt.Signature()] = bt
}

// GetBoundType looks up a cached BoundType by signature, optionally
// redirecting through the type-mapping table first.
func (p *ProgramScope) GetBoundType(signature string, useMappings bool) (*bound.BoundType, bool) {
	if useMappings {
		if dst, ok := p.typeMappings[signature]; ok {
			signature = dst
		}
	}
	bt, ok := p.boundTypes[signature]
	return bt, ok
}

// PutBoundTypeMapping redirects lookups of src to dst (used to map
// generated anonymous types to their public forms).
func (p *ProgramScope) PutBoundTypeMapping(src, dst string) {
	p.typeMappings[src] = dst
}

// PutUncheckedType registers u under its FQN, in both the ordered list
// (declaration order, walked by the first checking pass) and the keyed
// table.
func (p *ProgramScope) PutUncheckedType(u *bound.UncheckedType) error {
	if _, exists := p.uncheckedTypesByFQN[u.FQN]; exists {
		return fmt.Errorf("%s: type %q already registered", diag.SCPRedefinition, u.FQN)
	}
	p.uncheckedTypesByFQN[u.FQN] = u
	p.uncheckedTypesOrdered = append(p.uncheckedTypesOrdered, u)
	return nil
}

// UncheckedTypesOrdered returns every registered unchecked type in
// declaration order.
func (p *ProgramScope) UncheckedTypesOrdered() []*bound.UncheckedType {
	return p.uncheckedTypesOrdered
}

// PutUncheckedVar registers u under its FQN.
func (p *ProgramScope) PutUncheckedVar(u *bound.UncheckedVar) error {
	if _, exists := p.uncheckedVarsByFQN[u.FQN]; exists {
		return fmt.Errorf("%s: function/constructor %q already registered", diag.SCPRedefinition, u.FQN)
	}
	p.uncheckedVarsByFQN[u.FQN] = u
	p.uncheckedVarsOrdered = append(p.uncheckedVarsOrdered, u)
	return nil
}

// UncheckedVarsOrdered returns every registered unchecked function or
// data constructor in declaration order.
func (p *ProgramScope) UncheckedVarsOrdered() []*bound.UncheckedVar {
	return p.uncheckedVarsOrdered
}

// LookupUncheckedVar finds an unchecked var by FQN.
func (p *ProgramScope) LookupUncheckedVar(fqn string) (*bound.UncheckedVar, bool) {
	u, ok := p.uncheckedVarsByFQN[fqn]
	return u, ok
}

// UpsertInitModuleVarsFunction lazily materializes the void->void
// function into which every module's variable initializers are inlined,
// in declaration order, as CheckModuleVarSlots visits each module. The
// entry block is left unterminated: callers keep appending through the
// shared builder, whose insert point tracks wherever the last
// initializer's own control flow (if any) left it, exactly like a
// linear run of statements in an ordinary function body. The terminator
// is added once, by FinalizeInitModuleVars, after every module has run.
func (p *ProgramScope) UpsertInitModuleVarsFunction() (*ir.Function, *ir.Builder) {
	if p.initModuleVarsFn != nil {
		return p.initModuleVarsFn, p.initModuleVarsBldr
	}
	fn := &ir.Function{Name: "__init_module_vars", Return: ir.VoidType{}, GCStrategy: "langc-gc"}
	b := ir.NewBuilder(fn)
	entry := b.NewBlock("entry")
	b.SetInsertPoint(entry)
	p.initModuleVarsFn = fn
	p.initModuleVarsBldr = b
	return fn, b
}

// FinalizeInitModuleVars appends the `__init_module_vars` function's
// RetVoid terminator, once every module's variable slots have been
// checked. A no-op if no module declared any variable (the function was
// never materialized) or if already finalized.
func (p *ProgramScope) FinalizeInitModuleVars() {
	if p.initModuleVarsBldr == nil || p.initModuleVarsBldr.Terminated() {
		return
	}
	p.initModuleVarsBldr.RetVoid()
}

// VisitModuleVarsFunction returns the (lazily created) GC-visit function,
// __visit_module_vars(cb), and the single Builder shared by every managed
// module var's checkModuleVarDecl call. Like UpsertInitModuleVarsFunction,
// the same Builder must be reused across calls rather than re-wrapped: a
// fresh ir.NewBuilder resets its value-ID counter from fn.Params alone, so
// wrapping visitFn in a new Builder per call (the prior approach) handed
// out colliding InstrRef IDs to every visit call after the first. The
// terminator is added once, by FinalizeVisitModuleVars, after every module
// has run.
func (p *ProgramScope) VisitModuleVarsFunction() (*ir.Function, *ir.Builder) {
	if p.visitModuleVarsFn != nil {
		return p.visitModuleVarsFn, p.visitModuleVarsBldr
	}
	fn := &ir.Function{
		Name:       "__visit_module_vars",
		Params:     []ir.Param{{ID: 0, Ty: ir.PointerType{Elem: ir.FuncSigType{Params: []ir.Type{ir.PointerType{Elem: ir.VarT}}, Return: ir.VoidType{}}}, Name: "cb"}},
		Return:     ir.VoidType{},
		GCStrategy: "langc-gc",
	}
	b := ir.NewBuilder(fn)
	b.SetInsertPoint(b.NewBlock("entry"))
	p.visitModuleVarsFn = fn
	p.visitModuleVarsBldr = b
	return fn, b
}

// FinalizeVisitModuleVars appends the `__visit_module_vars` function's
// RetVoid terminator, once every module's variable slots have been
// checked. A no-op if no module declared a managed variable (the function
// was never materialized) or if already finalized.
func (p *ProgramScope) FinalizeVisitModuleVars() {
	if p.visitModuleVarsBldr == nil || p.visitModuleVarsBldr.Terminated() {
		return
	}
	p.visitModuleVarsBldr.RetVoid()
}
