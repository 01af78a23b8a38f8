package check

import (
	"testing"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/generic"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/scope"
	"github.com/sunholo/langc/internal/setup"
	"github.com/sunholo/langc/internal/types"
)

func newProgram(t *testing.T, files ...*astiface.Module) (*scope.ProgramScope, *Checker, *diag.Sink, map[string]*scope.ModuleScope) {
	t.Helper()
	prog := scope.NewProgramScope()
	sink := diag.NewSink()
	mods := setup.Run(prog, files, sink)
	if sink.HasErrors() {
		t.Fatalf("setup reported errors: %v", sink.Reports())
	}
	c := New(prog, sink)
	c.SetInstantiator(generic.New(prog, c.CheckerFunc()))
	return prog, c, sink, mods
}

func intLit(text string) *astiface.Lit { return &astiface.Lit{Kind: astiface.LitInt, Text: text} }

func namedType(name string) *astiface.NamedType { return &astiface.NamedType{Name: name} }

func ident(name string) *astiface.Ident { return &astiface.Ident{Name: name} }

func findFunction(mod *ir.Module, name string) *ir.Function {
	for _, f := range mod.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// TestCheckFuncDeclSimpleArithmetic checks a non-generic, fully-typed
// function straight through CheckProgramVariables and confirms it lowers
// to one terminated IR function with the expected parameter count.
func TestCheckFuncDeclSimpleArithmetic(t *testing.T) {
	fn := &astiface.FuncDecl{
		Name: "add",
		Params: []astiface.Param{
			{Name: "a", Type: namedType("int")},
			{Name: "b", Type: namedType("int")},
		},
		Return: namedType("int"),
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.Return{Expr: &astiface.BinOp{Op: "+", Left: ident("a"), Right: ident("b")}},
		}},
	}
	mod := &astiface.Module{Name: "app", Decls: []astiface.Decl{fn}}
	_, c, sink, mods := newProgram(t, mod)

	c.CheckModuleTypes(mods["app"])
	c.CheckModuleVarSlots(mods["app"])
	c.CheckProgramVariables()
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Reports())
	}

	irFn := findFunction(mods["app"].IRModule, "app.add")
	if irFn == nil {
		t.Fatalf("expected a lowered app.add function, got %v", mods["app"].IRModule.Functions)
	}
	if len(irFn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(irFn.Params))
	}
	if irFn.Return != ir.I64 {
		t.Fatalf("expected int-typed (I64) return, got %v", irFn.Return)
	}
	last := irFn.Blocks[len(irFn.Blocks)-1]
	if _, ok := last.Instrs[len(last.Instrs)-1].(ir.Ret); !ok {
		t.Fatalf("expected function to end in a Ret, got %T", last.Instrs[len(last.Instrs)-1])
	}
}

// TestCheckFuncDeclMissingReturn confirms a non-void function missing a
// return on some path is reported via CTLNotAllPathsReturn rather than
// silently producing a function with no terminator.
func TestCheckFuncDeclMissingReturn(t *testing.T) {
	fn := &astiface.FuncDecl{
		Name:   "empty",
		Return: namedType("int"),
		Body:   &astiface.Block{},
	}
	mod := &astiface.Module{Name: "app", Decls: []astiface.Decl{fn}}
	_, c, sink, _ := newProgram(t, mod)

	c.CheckProgramVariables()
	found := false
	for _, r := range sink.Reports() {
		if r.Code == diag.CTLNotAllPathsReturn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a CTLNotAllPathsReturn diagnostic, got %v", sink.Reports())
	}
}

// TestResolveBinOpIntegerPromotion checks the int32+int64 case: the
// narrower operand is sign-extended to the wider operand's width before
// the add, and the result is typed as the wider (signed 64-bit) integer.
func TestResolveBinOpIntegerPromotion(t *testing.T) {
	fn := &astiface.FuncDecl{
		Name: "widen",
		Params: []astiface.Param{
			{Name: "a", Type: namedType("int32")},
			{Name: "b", Type: namedType("int64")},
		},
		Return: namedType("int64"),
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.Return{Expr: &astiface.BinOp{Op: "+", Left: ident("a"), Right: ident("b")}},
		}},
	}
	mod := &astiface.Module{Name: "app", Decls: []astiface.Decl{fn}}
	_, c, sink, mods := newProgram(t, mod)

	c.CheckModuleTypes(mods["app"])
	c.CheckModuleVarSlots(mods["app"])
	c.CheckProgramVariables()
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Reports())
	}

	irFn := findFunction(mods["app"].IRModule, "app.widen")
	if irFn == nil {
		t.Fatalf("expected a lowered app.widen function, got %v", mods["app"].IRModule.Functions)
	}
	var sawSExt, sawAdd bool
	for _, blk := range irFn.Blocks {
		for _, in := range blk.Instrs {
			switch ins := in.(type) {
			case ir.Cast:
				if ins.Kind == ir.CastSExt && ins.Val.ValueType() == ir.I32 {
					sawSExt = true
				}
			case ir.BinOp:
				if ins.Op == ir.OpAdd && ins.ResultType() == ir.I64 {
					sawAdd = true
				}
			}
		}
	}
	if !sawSExt {
		t.Fatalf("expected the int32 operand to be sign-extended to i64")
	}
	if !sawAdd {
		t.Fatalf("expected a 64-bit add of the promoted operands")
	}
}

// TestResolveCallGenericInstantiation checks that a generic (untyped-
// parameter) function instantiated at two call sites with different
// argument types produces two distinct monomorphizations, and that
// genericParamVarName keeps the call-site unification and the re-checked
// body's parameter type aligned (the re-checked body must not regenerate
// a fresh, differently-named type variable for the parameter).
func TestResolveCallGenericInstantiation(t *testing.T) {
	idFn := &astiface.FuncDecl{
		Name:   "identity",
		Params: []astiface.Param{{Name: "x"}},
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.Return{Expr: ident("x")},
		}},
	}
	callInt := &astiface.FuncDecl{
		Name: "useInt",
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.Return{Expr: &astiface.Call{Callee: ident("identity"), Args: []astiface.Expr{intLit("1")}}},
		}},
	}
	callBool := &astiface.FuncDecl{
		Name: "useBool",
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.Return{Expr: &astiface.Call{Callee: ident("identity"), Args: []astiface.Expr{
				&astiface.BinOp{Op: "==", Left: intLit("1"), Right: intLit("1")},
			}}},
		}},
	}
	mod := &astiface.Module{Name: "app", Decls: []astiface.Decl{idFn, callInt, callBool}}
	_, c, sink, mods := newProgram(t, mod)

	c.CheckProgramVariables()
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Reports())
	}

	irMod := mods["app"].IRModule
	if findFunction(irMod, "app.useInt") == nil {
		t.Fatalf("expected app.useInt lowered, got %v", irMod.Functions)
	}
	if findFunction(irMod, "app.useBool") == nil {
		t.Fatalf("expected app.useBool lowered, got %v", irMod.Functions)
	}

	var idInstantiations int
	for _, f := range irMod.Functions {
		if len(f.Name) >= len("app.identity") && f.Name[:len("app.identity")] == "app.identity" {
			idInstantiations++
			if f.Return == nil {
				t.Fatalf("instantiated identity has no return type")
			}
		}
	}
	if idInstantiations != 2 {
		t.Fatalf("expected 2 monomorphizations of identity (int and bool), got %d", idInstantiations)
	}
}

// TestCheckCtorDeclAllocatesAndStores checks that a sum-type constructor
// call lowers through checkCtorDecl into a real IR function that
// allocates a managed object and stores each argument into its field,
// rather than erroring because its UncheckedVar's Node is a TypeDecl, not
// a FuncDecl.
func TestCheckCtorDeclAllocatesAndStores(t *testing.T) {
	shapeDecl := &astiface.TypeDecl{
		Name: "Shape",
		Def: &astiface.SumTypeExpr{Options: []astiface.SumOption{
			{Name: "Circle", Fields: []astiface.StructField{{Name: "radius", Type: namedType("int")}}},
			{Name: "Point"},
		}},
	}
	makeIt := &astiface.FuncDecl{
		Name:   "makeCircle",
		Return: namedType("int"), // placeholder; body below never runs real typecheck on this field
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.ExprStmt{Expr: &astiface.Call{Callee: ident("Circle"), Args: []astiface.Expr{intLit("3")}}},
			&astiface.Return{Expr: intLit("0")},
		}},
	}
	mod := &astiface.Module{Name: "app", Decls: []astiface.Decl{shapeDecl, makeIt}}
	_, c, sink, mods := newProgram(t, mod)

	c.CheckModuleTypes(mods["app"])
	c.CheckModuleVarSlots(mods["app"])
	c.CheckProgramVariables()
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Reports())
	}

	irMod := mods["app"].IRModule
	// Constructors are always built through internal/generic, so the IR
	// symbol carries irFuncName's "$<signature>" instantiation suffix.
	u, ok := c.Prog.LookupUncheckedVar("app.Circle")
	if !ok {
		t.Fatalf("expected app.Circle registered as a constructor")
	}
	ctorFn := findFunction(irMod, "app.Circle$"+sanitizeSymbol(types.Signature(u.CtorSig)))
	if ctorFn == nil {
		t.Fatalf("expected a lowered app.Circle constructor, got %v", irMod.Functions)
	}
	if len(ctorFn.Params) != 1 {
		t.Fatalf("expected the Circle constructor to take 1 param (radius), got %d", len(ctorFn.Params))
	}
	last := ctorFn.Blocks[len(ctorFn.Blocks)-1]
	if _, ok := last.Instrs[len(last.Instrs)-1].(ir.Ret); !ok {
		t.Fatalf("expected constructor to end in a Ret, got %T", last.Instrs[len(last.Instrs)-1])
	}
}

// TestMatchNonExhaustiveTraps confirms a match missing a wildcard/bind
// catch-all reports TYPNonExhaustive and ends in an Unreachable rather
// than being statically rejected for incomplete sum coverage.
func TestMatchNonExhaustiveTraps(t *testing.T) {
	fn := &astiface.FuncDecl{
		Name: "classify",
		Params: []astiface.Param{
			{Name: "n", Type: namedType("int")},
		},
		Return: namedType("int"),
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.Return{Expr: &astiface.MatchExpr{
				Scrutinee: ident("n"),
				Arms: []astiface.MatchArm{
					{Pattern: &astiface.LitPattern{Lit: intLit("0")}, Value: intLit("100")},
				},
			}},
		}},
	}
	mod := &astiface.Module{Name: "app", Decls: []astiface.Decl{fn}}
	_, c, sink, mods := newProgram(t, mod)

	c.CheckProgramVariables()

	found := false
	for _, r := range sink.Reports() {
		if r.Code == diag.TYPNonExhaustive {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a TYPNonExhaustive diagnostic, got %v", sink.Reports())
	}

	irFn := findFunction(mods["app"].IRModule, "app.classify")
	if irFn == nil {
		t.Fatalf("expected app.classify lowered despite the non-exhaustive match")
	}
	var sawUnreachable bool
	for _, blk := range irFn.Blocks {
		for _, in := range blk.Instrs {
			if _, ok := in.(ir.Unreachable); ok {
				sawUnreachable = true
			}
		}
	}
	if !sawUnreachable {
		t.Fatalf("expected the missed-match path to end in Unreachable")
	}
}

// TestCheckWhileBreakContinue exercises the loop-target wiring: break and
// continue inside a while loop's body must resolve against that loop's
// own header/exit labels without diagnostics.
func TestCheckWhileBreakContinue(t *testing.T) {
	fn := &astiface.FuncDecl{
		Name: "loopy",
		Params: []astiface.Param{
			{Name: "n", Type: namedType("int")},
		},
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.While{
				Cond: &astiface.BinOp{Op: "<", Left: ident("n"), Right: intLit("10")},
				Body: &astiface.Block{Stmts: []astiface.Stmt{
					&astiface.If{
						Cond: &astiface.BinOp{Op: "==", Left: ident("n"), Right: intLit("5")},
						Then: &astiface.Block{Stmts: []astiface.Stmt{&astiface.Break{}}},
						Else: &astiface.Block{Stmts: []astiface.Stmt{&astiface.Continue{}}},
					},
				}},
			},
		}},
	}
	mod := &astiface.Module{Name: "app", Decls: []astiface.Decl{fn}}
	_, c, sink, mods := newProgram(t, mod)

	c.CheckProgramVariables()
	if sink.HasErrors() {
		t.Fatalf("unexpected errors: %v", sink.Reports())
	}
	if findFunction(mods["app"].IRModule, "app.loopy") == nil {
		t.Fatalf("expected app.loopy lowered")
	}
}

// TestCheckBreakOutsideLoopReports confirms a bare break at function
// top level (no enclosing loop) is rejected via CTLBreakOutsideLoop.
func TestCheckBreakOutsideLoopReports(t *testing.T) {
	fn := &astiface.FuncDecl{
		Name: "bad",
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.Break{},
		}},
	}
	mod := &astiface.Module{Name: "app", Decls: []astiface.Decl{fn}}
	_, c, sink, _ := newProgram(t, mod)

	c.CheckProgramVariables()
	found := false
	for _, r := range sink.Reports() {
		if r.Code == diag.CTLBreakOutsideLoop {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a CTLBreakOutsideLoop diagnostic, got %v", sink.Reports())
	}
}
