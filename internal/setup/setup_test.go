package setup

import (
	"testing"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/scope"
)

func TestRunRegistersTypesAndFuncs(t *testing.T) {
	prog := scope.NewProgramScope()
	sink := diag.NewSink()
	files := []*astiface.Module{
		{
			Name: "app",
			Decls: []astiface.Decl{
				&astiface.TypeDecl{Name: "Point"},
				&astiface.FuncDecl{Name: "main"},
			},
		},
	}
	mods := Run(prog, files, sink)
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Reports())
	}
	mod, ok := mods["app"]
	if !ok {
		t.Fatalf("expected module scope for app")
	}
	if len(mod.UncheckedTypesOrdered()) != 1 {
		t.Fatalf("expected 1 unchecked type, got %d", len(mod.UncheckedTypesOrdered()))
	}
	if _, ok := prog.LookupUncheckedVar("app.main"); !ok {
		t.Fatalf("expected app.main registered as an unchecked var")
	}
}

func TestRunReportsRedefinition(t *testing.T) {
	prog := scope.NewProgramScope()
	sink := diag.NewSink()
	files := []*astiface.Module{
		{
			Name: "app",
			Decls: []astiface.Decl{
				&astiface.TypeDecl{Name: "Point"},
				&astiface.TypeDecl{Name: "Point"},
			},
		},
	}
	Run(prog, files, sink)
	if !sink.HasErrors() {
		t.Fatalf("expected redefinition error")
	}
}
