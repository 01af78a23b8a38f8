package repl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/langc/internal/astiface"
)

func namedType(name string) *astiface.NamedType { return &astiface.NamedType{Name: name} }
func ident(name string) *astiface.Ident         { return &astiface.Ident{Name: name} }

func addFunc() *astiface.FuncDecl {
	return &astiface.FuncDecl{
		Name:   "add",
		Params: []astiface.Param{{Name: "a", Type: namedType("int")}, {Name: "b", Type: namedType("int")}},
		Return: namedType("int"),
		Body: &astiface.Block{Stmts: []astiface.Stmt{
			&astiface.Return{Expr: &astiface.BinOp{Op: "+", Left: ident("a"), Right: ident("b")}},
		}},
	}
}

func TestEvalDeclReportsType(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.EvalDecl(addFunc(), &out)

	require.Contains(t, out.String(), "add ::")
	require.Contains(t, out.String(), "->")
	require.Len(t, r.module.Decls, 1)
}

func TestEvalDeclRollsBackOnError(t *testing.T) {
	r := New()
	var out bytes.Buffer

	bad := &astiface.FuncDecl{Name: "broken", Return: namedType("int"), Body: &astiface.Block{}}
	r.EvalDecl(bad, &out)
	require.Contains(t, out.String(), "Error")
	require.Empty(t, r.module.Decls, "a failing declaration must not remain in the session")

	out.Reset()
	r.EvalDecl(addFunc(), &out)
	require.Contains(t, out.String(), "add ::")
	require.Len(t, r.module.Decls, 1)
}

func TestEvalSourceWithoutParserReportsError(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.EvalSource("func add(a int, b int) int { return a + b }", &out)
	require.Contains(t, out.String(), "no parser configured")
}

type stubParser struct {
	decl astiface.Decl
	err  error
}

func (p *stubParser) ParseDecl(module, src string) (astiface.Decl, error) { return p.decl, p.err }

func TestEvalSourceDrivesConfiguredParser(t *testing.T) {
	r := New()
	r.SetParser(&stubParser{decl: addFunc()})
	var out bytes.Buffer
	r.EvalSource("func add(a int, b int) int { return a + b }", &out)
	require.Contains(t, out.String(), "add ::")
}

func TestHandleCommandDumpIRTogglesConfig(t *testing.T) {
	r := New()
	var out bytes.Buffer

	require.False(t, r.config.ShowIR)
	r.HandleCommand(":dump-ir", &out)
	require.True(t, r.config.ShowIR)
	r.HandleCommand(":dump-ir", &out)
	require.False(t, r.config.ShowIR)
}

func TestHandleCommandResetClearsSession(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.EvalDecl(addFunc(), &out)
	require.Len(t, r.module.Decls, 1)

	r.HandleCommand(":reset", &out)
	require.Empty(t, r.module.Decls)
	require.Empty(t, r.history)
}

func TestShowTypeAfterEval(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.EvalDecl(addFunc(), &out)

	out.Reset()
	r.showType("add", &out)
	require.Contains(t, out.String(), "add ::")
}

func TestShowTypeBeforeAnyEval(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.showType("add", &out)
	require.Contains(t, out.String(), "Nothing checked yet")
}

func TestHandleCommandHistory(t *testing.T) {
	r := New()
	r.history = []string{"func add(a int, b int) int { return a + b }"}
	var out bytes.Buffer
	r.HandleCommand(":history", &out)
	require.Contains(t, out.String(), "add")
}

func TestGetPromptIsStable(t *testing.T) {
	r := New()
	require.Equal(t, "λ> ", r.getPrompt())
}
