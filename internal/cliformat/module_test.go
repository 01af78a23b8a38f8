package cliformat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/langc/internal/astiface"
)

const addModuleJSON = `{
  "name": "app",
  "decls": [
    {
      "kind": "func",
      "name": "add",
      "params": [{"name": "a", "type": "int"}, {"name": "b", "type": "int"}],
      "return": "int",
      "body": [
        {"kind": "return", "expr": {"kind": "binop", "op": "+",
          "left": {"kind": "ident", "name": "a"},
          "right": {"kind": "ident", "name": "b"}}}
      ]
    }
  ]
}`

func TestParseAndConvertFuncDecl(t *testing.T) {
	m, err := Parse([]byte(addModuleJSON))
	require.NoError(t, err)
	require.Equal(t, "app", m.Name)
	require.Len(t, m.Decls, 1)

	mod, err := m.ToAstiface()
	require.NoError(t, err)
	require.Equal(t, "app", mod.Name)
	require.Len(t, mod.Decls, 1)

	fn, ok := mod.Decls[0].(*astiface.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.Equal(t, "int", fn.Return.(*astiface.NamedType).Name)
	require.Len(t, fn.Body.Stmts, 1)

	ret, ok := fn.Body.Stmts[0].(*astiface.Return)
	require.True(t, ok)
	bin, ok := ret.Expr.(*astiface.BinOp)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
	require.Equal(t, "a", bin.Left.(*astiface.Ident).Name)
	require.Equal(t, "b", bin.Right.(*astiface.Ident).Name)
}

func TestParseVarDeclWithDottedInit(t *testing.T) {
	src := `{
      "name": "app",
      "decls": [
        {"kind": "var", "name": "G1", "type": "int",
         "init": {"kind": "ident", "module": "runtime", "name": "G0"}}
      ]
    }`
	m, err := Parse([]byte(src))
	require.NoError(t, err)

	mod, err := m.ToAstiface()
	require.NoError(t, err)

	v, ok := mod.Decls[0].(*astiface.VarDecl)
	require.True(t, ok)
	require.Equal(t, "G1", v.Name)
	ident, ok := v.Init.(*astiface.Ident)
	require.True(t, ok)
	require.Equal(t, "runtime", ident.Module)
	require.Equal(t, "G0", ident.Name)
}

func TestParseRejectsUnknownDeclKind(t *testing.T) {
	m, err := Parse([]byte(`{"name":"app","decls":[{"kind":"bogus","name":"x"}]}`))
	require.NoError(t, err)
	_, err = m.ToAstiface()
	require.Error(t, err)
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`not json`))
	require.Error(t, err)
}

func TestParseDeclSingle(t *testing.T) {
	decl, err := ParseDecl([]byte(`{"kind":"func","name":"id","params":[{"name":"x","type":"int"}],"return":"int","body":[{"kind":"return","expr":{"kind":"ident","name":"x"}}]}`))
	require.NoError(t, err)
	fn, ok := decl.(*astiface.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "id", fn.Name)
}

func TestParseIfAndWhileStatements(t *testing.T) {
	src := `{
      "name": "app",
      "decls": [
        {"kind": "func", "name": "loop", "return": "int", "body": [
          {"kind": "while", "cond": {"kind": "ident", "name": "x"}, "body": [
            {"kind": "if", "cond": {"kind": "ident", "name": "x"},
             "then": [{"kind": "return", "expr": {"kind": "int", "text": "1"}}],
             "else": [{"kind": "return", "expr": {"kind": "int", "text": "0"}}]}
          ]}
        ]}
      ]
    }`
	m, err := Parse([]byte(src))
	require.NoError(t, err)
	mod, err := m.ToAstiface()
	require.NoError(t, err)

	fn := mod.Decls[0].(*astiface.FuncDecl)
	while, ok := fn.Body.Stmts[0].(*astiface.While)
	require.True(t, ok)
	ifStmt, ok := while.Body.Stmts[0].(*astiface.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
}
