// Package setup implements scope_setup: the single first
// pass over a parsed program that registers every module's type
// declarations and function/variable stubs as unchecked entries, before
// any checking or lowering happens.
//
// Modeled on internal/module/loader.go
// (extractExports/validateModule: one pass populating tables before
// checking) and internal/link/resolver.go.
package setup

import (
	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/scope"
)

// Run walks every module in files, creating its ModuleScope, and
// registers unchecked types and unchecked vars/ctors for every top-level
// declaration. Errors are recorded on sink; Run always
// returns the set of module scopes it managed to create, so later
// phases can continue past a single bad module.
func Run(prog *scope.ProgramScope, files []*astiface.Module, sink *diag.Sink) map[string]*scope.ModuleScope {
	created := map[string]*scope.ModuleScope{}
	for _, f := range files {
		mod := prog.NewModuleScope(f.Name, ir.NewModule(f.Name))
		created[f.Name] = mod
		for _, decl := range f.Decls {
			registerDecl(mod, decl, sink)
		}
	}
	return created
}

func registerDecl(mod *scope.ModuleScope, decl astiface.Decl, sink *diag.Sink) {
	switch d := decl.(type) {
	case *astiface.TypeDecl:
		u := &bound.UncheckedType{FQN: mod.FQN(d.Name), Node: d, Module: mod.Name}
		if err := mod.PutUncheckedType(u); err != nil {
			sp := d.Span()
			sink.Report(diag.New(diag.SCPRedefinition, diag.PhaseScopeSetup, diag.Error, &sp, "%v", err))
		}
	case *astiface.FuncDecl:
		u := &bound.UncheckedVar{FQN: mod.FQN(d.Name), Node: d, Module: mod.Name}
		if err := mod.Program().PutUncheckedVar(u); err != nil {
			sp := d.Span()
			sink.Report(diag.New(diag.SCPRedefinition, diag.PhaseScopeSetup, diag.Error, &sp, "%v", err))
		}
	case *astiface.VarDecl:
		// Module-level variables are registered as unchecked vars too;
		// their actual resolution (and __init_module_vars wiring) happens
		// in internal/check, not here — this
		// pass only reserves the name so forward references within the
		// same module resolve during checking.
		u := &bound.UncheckedVar{FQN: mod.FQN(d.Name), Node: d, Module: mod.Name}
		if err := mod.Program().PutUncheckedVar(u); err != nil {
			sp := d.Span()
			sink.Report(diag.New(diag.SCPRedefinition, diag.PhaseScopeSetup, diag.Error, &sp, "%v", err))
		}
	default:
		sp := decl.Span()
		sink.Report(diag.New(diag.SCPMissingSymbol, diag.PhaseScopeSetup, diag.Error, &sp, "unsupported top-level declaration %T", decl))
	}
}

// ModuleOf is a convenience for callers that need a declaration's owning
// module name without re-walking the program.
func ModuleOf(mod *scope.ModuleScope) string { return mod.Name }
