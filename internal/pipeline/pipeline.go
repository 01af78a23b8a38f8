// Package pipeline wires internal/setup, internal/check and
// internal/generic into the whole-program control flow: scope_setup
// over every module, then every module's types, then every module's
// variable slots (runtime module first, then program declaration
// order), then every function body, then sealing the two
// whole-program IR functions __init_module_vars and
// __visit_module_vars.
//
// Modeled on cmd/ailang/main.go's own internal/pipeline driver, which
// strings parse -> elaborate -> typecheck -> lower -> link -> eval into
// one linear Run(cfg, src) entry point with per-phase timings; this
// package keeps that Config/Result/PhaseTimings shape for the stages
// this repository owns (everything after parsing, up to emitted IR).
package pipeline

import (
	"time"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/check"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/generic"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/scope"
	"github.com/sunholo/langc/internal/setup"
)

// Config contains pipeline configuration options.
type Config struct {
	// TraceDefaulting is not read by Run. LedgerHook, when non-nil, is
	// called with each phase's name as that phase completes.
	TraceDefaulting bool
	LedgerHook      func(phase string)
}

// Source is one compilation's input: every module to compile together,
// already parsed into this package's AST surface.
type Source struct {
	Files []*astiface.Module
}

// Result contains pipeline output: the program scope built up across
// every stage, the emitted IR modules (runtime first, then program
// declaration order), and every diagnostic recorded along the way.
type Result struct {
	Prog         *scope.ProgramScope
	Modules      []*ir.Module
	Sink         *diag.Sink
	PhaseTimings map[string]int64 // milliseconds
}

// Run executes scope_setup, type/variable checking and lowering over
// every module in src.Files and returns the resulting IR together with
// every diagnostic recorded along the way. A cross-module reference
// cycle is reported as an SCP008 diagnostic and stops the pipeline
// before scope_setup runs, since no module ordering exists to check
// against; any other failure is reported against Sink by
// internal/check/internal/setup themselves, and Run still returns
// whatever IR the non-failing modules produced, so a caller sees every
// error found in one pass rather than only the first.
func Run(cfg Config, src Source) Result {
	result := Result{PhaseTimings: make(map[string]int64)}
	note := func(phase string) {
		if cfg.LedgerHook != nil {
			cfg.LedgerHook(phase)
		}
	}

	sink := diag.NewSink()
	prog := scope.NewProgramScope()
	result.Prog = prog
	result.Sink = sink

	start := time.Now()
	if err := detectCycles(src.Files); err != nil {
		sink.Report(diag.New(diag.SCPImportCycle, diag.PhaseScopeSetup, diag.Error, nil, "%v", err))
		result.PhaseTimings["order"] = time.Since(start).Milliseconds()
		return result
	}
	order := moduleOrder(src.Files)
	result.PhaseTimings["order"] = time.Since(start).Milliseconds()
	note("order")

	byName := make(map[string]*astiface.Module, len(src.Files))
	for _, f := range src.Files {
		byName[f.Name] = f
	}
	ordered := make([]*astiface.Module, 0, len(order))
	for _, name := range order {
		ordered = append(ordered, byName[name])
	}

	start = time.Now()
	mods := setup.Run(prog, ordered, sink)
	result.PhaseTimings["setup"] = time.Since(start).Milliseconds()
	note("setup")

	c := check.New(prog, sink)
	c.SetInstantiator(generic.New(prog, c.CheckerFunc()))

	start = time.Now()
	for _, name := range order {
		if mod, ok := mods[name]; ok {
			c.CheckModuleTypes(mod)
		}
	}
	result.PhaseTimings["types"] = time.Since(start).Milliseconds()
	note("types")

	start = time.Now()
	for _, name := range order {
		if mod, ok := mods[name]; ok {
			c.CheckModuleVarSlots(mod)
		}
	}
	result.PhaseTimings["var_slots"] = time.Since(start).Milliseconds()
	note("var_slots")

	start = time.Now()
	c.CheckProgramVariables()
	result.PhaseTimings["functions"] = time.Since(start).Milliseconds()
	note("functions")

	prog.FinalizeInitModuleVars()
	prog.FinalizeVisitModuleVars()

	irModules := make([]*ir.Module, 0, len(order))
	for _, name := range order {
		if mod, ok := mods[name]; ok {
			irModules = append(irModules, mod.IRModule)
		}
	}
	result.Modules = irModules

	return result
}
