package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/ir"
)

func namedType(name string) *astiface.NamedType { return &astiface.NamedType{Name: name} }
func ident(name string) *astiface.Ident         { return &astiface.Ident{Name: name} }
func intLit(text string) *astiface.Lit          { return &astiface.Lit{Kind: astiface.LitInt, Text: text} }

func findFunction(mod *ir.Module, name string) *ir.Function {
	for _, f := range mod.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func TestRunSingleModule(t *testing.T) {
	fn := &astiface.FuncDecl{
		Name:   "add",
		Params: []astiface.Param{{Name: "a", Type: namedType("int")}, {Name: "b", Type: namedType("int")}},
		Return: namedType("int"),
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.Return{Expr: &astiface.BinOp{Op: "+", Left: ident("a"), Right: ident("b")}},
		}},
	}
	mod := &astiface.Module{Name: "app", Decls: []astiface.Decl{fn}}

	result := Run(Config{}, Source{Files: []*astiface.Module{mod}})
	require.False(t, result.Sink.HasErrors(), "unexpected diagnostics: %v", result.Sink.Reports())
	require.Len(t, result.Modules, 1)
	require.NotNil(t, findFunction(result.Modules[0], "app.add"))
}

// TestRunRuntimeModuleInitializedFirst: module runtime declares global
// G0, module app declares global G1 that reads G0 through a dotted
// reference; the emitted modules (and hence __init_module_vars's
// initializer order) must put runtime first regardless of the order
// the caller passed the files in.
func TestRunRuntimeModuleInitializedFirst(t *testing.T) {
	g0 := &astiface.VarDecl{Name: "G0", Type: namedType("int"), Init: intLit("1")}
	runtimeMod := &astiface.Module{Name: "runtime", Decls: []astiface.Decl{g0}}

	g1 := &astiface.VarDecl{Name: "G1", Type: namedType("int"), Init: ident("G0")}
	g1.Init.(*astiface.Ident).Module = "runtime"
	appMod := &astiface.Module{Name: "app", Decls: []astiface.Decl{g1}}

	// Pass app before runtime; Run must still initialize runtime first.
	result := Run(Config{}, Source{Files: []*astiface.Module{appMod, runtimeMod}})
	require.False(t, result.Sink.HasErrors(), "unexpected diagnostics: %v", result.Sink.Reports())
	require.Len(t, result.Modules, 2)
	require.Equal(t, "runtime", result.Modules[0].Name)
	require.Equal(t, "app", result.Modules[1].Name)
}

func TestRunReferenceCycleReported(t *testing.T) {
	callB := &astiface.Call{Callee: ident("useB")}
	callB.Callee.(*astiface.Ident).Module = "b"
	aFn := &astiface.FuncDecl{Name: "useA", Body: &astiface.Block{Stmts: []astiface.Stmt{
		&astiface.ExprStmt{Expr: callB},
	}}}
	aMod := &astiface.Module{Name: "a", Decls: []astiface.Decl{aFn}}

	callA := &astiface.Call{Callee: ident("useA")}
	callA.Callee.(*astiface.Ident).Module = "a"
	bFn := &astiface.FuncDecl{Name: "useB", Body: &astiface.Block{Stmts: []astiface.Stmt{
		&astiface.ExprStmt{Expr: callA},
	}}}
	bMod := &astiface.Module{Name: "b", Decls: []astiface.Decl{bFn}}

	result := Run(Config{}, Source{Files: []*astiface.Module{aMod, bMod}})
	require.True(t, result.Sink.HasErrors())
	require.Empty(t, result.Modules)

	var found bool
	for _, r := range result.Sink.Reports() {
		if r.Code == diag.SCPImportCycle {
			found = true
		}
	}
	require.True(t, found, "expected an SCPImportCycle diagnostic, got %v", result.Sink.Reports())
}

// TestRunCollectsErrorsAcrossModules checks that a checking failure in
// one module doesn't stop the rest of the program from being checked:
// the driver continues to the next top-level definition so one run can
// surface every error in the program, not just the first.
func TestRunCollectsErrorsAcrossModules(t *testing.T) {
	bad := &astiface.FuncDecl{Name: "empty", Return: namedType("int"), Body: &astiface.Block{}}
	badMod := &astiface.Module{Name: "broken", Decls: []astiface.Decl{bad}}

	good := &astiface.FuncDecl{
		Name: "add",
		Params: []astiface.Param{{Name: "a", Type: namedType("int")}, {Name: "b", Type: namedType("int")}},
		Return: namedType("int"),
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.Return{Expr: &astiface.BinOp{Op: "+", Left: ident("a"), Right: ident("b")}},
		}},
	}
	goodMod := &astiface.Module{Name: "app", Decls: []astiface.Decl{good}}

	result := Run(Config{}, Source{Files: []*astiface.Module{badMod, goodMod}})
	require.True(t, result.Sink.HasErrors())

	var appIR *ir.Module
	for _, m := range result.Modules {
		if m.Name == "app" {
			appIR = m
		}
	}
	require.NotNil(t, appIR, "expected the good module to still be lowered despite the other module's error")
	require.NotNil(t, findFunction(appIR, "app.add"))
}
