// Package astiface describes the AST surface the type-checking and
// lowering core consumes. The lexer and parser that
// produce this tree are external collaborators, out of scope for this
// repository; this package specifies only the data shape a
// parser must hand to internal/pipeline, plus a minimal in-memory
// implementation used by tests.
//
// Modeled on internal/ast package: a Node interface with a
// Span accessor implemented by many small node structs, split into Expr,
// Stmt, Type and Pattern capability interfaces.
package astiface

// Pos is a single source position.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int
}

// Span is a half-open source range used for diagnostics.
type Span struct {
	Start Pos
	End   Pos
}

// Node is implemented by every AST node.
type Node interface {
	Span() Span
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// TypeExpr is a type-annotation node (a syntactic type, not a resolved
// internal/types.Term).
type TypeExpr interface {
	Node
	typeNode()
}

// Pattern is a pattern-match arm pattern.
type Pattern interface {
	Node
	patternNode()
}

// Module is one parsed source file's top-level declarations, in source
// order, as consumed by internal/setup and internal/check.
type Module struct {
	Name  string
	Decls []Decl
}

// Decl is a top-level declaration: a type, a function, a variable, or a
// link (extern) statement.
type Decl interface {
	Node
	declNode()
}

// TypeDecl declares a user type (product, sum, or alias).
type TypeDecl struct {
	Sp     Span
	Name   string
	Params []string // type parameters, possibly free
	Def    TypeExpr
}

func (d *TypeDecl) Span() Span { return d.Sp }
func (d *TypeDecl) declNode()  {}

// FuncDecl declares a function (or data constructor, for ctor-shaped
// declarations built by internal/setup).
type FuncDecl struct {
	Sp      Span
	Name    string
	Params  []Param
	Return  TypeExpr // nil: inferred
	Body    *Block   // nil for linked/extern functions
	LinkAs  string   // external link name, for `link` declarations
	IsLink  bool
}

func (d *FuncDecl) Span() Span { return d.Sp }
func (d *FuncDecl) declNode()  {}

// Param is one function parameter.
type Param struct {
	Sp   Span
	Name string
	Type TypeExpr // nil: inferred/generic
}

// VarDecl declares a module-level or local variable.
type VarDecl struct {
	Sp      Span
	Name    string
	Type    TypeExpr // nil: inferred
	Init    Expr     // nil: no initializer (rejected for a managed, non-Maybe module-level variable)
	Mutable bool     // `var` vs `let`
}

func (d *VarDecl) Span() Span { return d.Sp }
func (d *VarDecl) declNode()  {}
func (d *VarDecl) stmtNode()  {}

// Block is an ordered list of statements forming a lexical block.
type Block struct {
	Sp    Span
	Stmts []Stmt
}

func (b *Block) Span() Span { return b.Sp }
func (b *Block) stmtNode()  {}
