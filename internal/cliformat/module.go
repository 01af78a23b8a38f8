// Package cliformat decodes a module's declarations from JSON into
// internal/astiface nodes, for cmd/langc's build/check/emit-ir
// subcommands. Lexing and parsing real source syntax is an external
// collaborator's concern (see internal/astiface's doc comment); this
// package is the concrete stand-in a driver's lexer/parser would
// normally feed internal/pipeline instead, grounded the same way
// internal/schema's Plan decodes a structured document into a typed Go
// value with encoding/json rather than hand-rolling a parser for it.
package cliformat

import (
	"encoding/json"
	"fmt"

	"github.com/sunholo/langc/internal/astiface"
)

// Module is the on-disk JSON shape of one source module.
type Module struct {
	Name  string `json:"name"`
	Decls []Decl `json:"decls"`
}

// Decl is one top-level declaration. Kind selects which of Func, Var or
// Type applies; the other two are ignored.
type Decl struct {
	Kind string `json:"kind"` // "func", "var", "type"
	Name string `json:"name"`

	// func
	Params []Param `json:"params,omitempty"`
	Return string  `json:"return,omitempty"`
	Body   []Stmt  `json:"body,omitempty"`
	Link   string  `json:"link,omitempty"` // external link name; Body must be empty

	// var
	Type    string `json:"type,omitempty"`
	Init    *Expr  `json:"init,omitempty"`
	Mutable bool   `json:"mutable,omitempty"`

	// type (only simple named aliases are supported by this format)
	Alias string `json:"alias,omitempty"`
}

// Param is one function parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Stmt is one statement. Kind selects which fields apply.
type Stmt struct {
	Kind string `json:"kind"` // "return", "expr", "assign", "if", "while"

	Expr *Expr `json:"expr,omitempty"` // return/expr

	Op  string `json:"op,omitempty"` // assign
	LHS *Expr  `json:"lhs,omitempty"`
	RHS *Expr  `json:"rhs,omitempty"`

	Cond *Expr  `json:"cond,omitempty"` // if/while
	Then []Stmt `json:"then,omitempty"`
	Else []Stmt `json:"else,omitempty"`
	Body []Stmt `json:"body,omitempty"` // while
}

// Expr is one expression. Kind selects which fields apply.
type Expr struct {
	Kind string `json:"kind"` // "ident", "int", "float", "string", "binop", "call"

	// ident
	Module string `json:"module,omitempty"`
	Name   string `json:"name,omitempty"`

	// int/float/string literal
	Text string `json:"text,omitempty"`

	// binop
	Op    string `json:"op,omitempty"`
	Left  *Expr  `json:"left,omitempty"`
	Right *Expr  `json:"right,omitempty"`

	// call
	Callee *Expr  `json:"callee,omitempty"`
	Args   []Expr `json:"args,omitempty"`
}

// Parse decodes data into a Module.
func Parse(data []byte) (*Module, error) {
	var m Module
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cliformat: %w", err)
	}
	return &m, nil
}

// ParseDecl decodes data into a single declaration, for callers (such as
// internal/repl) that accept one declaration at a time rather than a
// whole module.
func ParseDecl(data []byte) (astiface.Decl, error) {
	var d Decl
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("cliformat: %w", err)
	}
	return d.toAstiface()
}

// ToAstiface converts m into the astiface.Module the pipeline consumes.
func (m *Module) ToAstiface() (*astiface.Module, error) {
	out := &astiface.Module{Name: m.Name}
	for _, d := range m.Decls {
		decl, err := d.toAstiface()
		if err != nil {
			return nil, fmt.Errorf("cliformat: decl %q: %w", d.Name, err)
		}
		out.Decls = append(out.Decls, decl)
	}
	return out, nil
}

func (d *Decl) toAstiface() (astiface.Decl, error) {
	switch d.Kind {
	case "func":
		params := make([]astiface.Param, len(d.Params))
		for i, p := range d.Params {
			params[i] = astiface.Param{Name: p.Name, Type: namedType(p.Type)}
		}
		var body *astiface.Block
		if len(d.Body) > 0 {
			stmts, err := toStmts(d.Body)
			if err != nil {
				return nil, err
			}
			body = &astiface.Block{Stmts: stmts}
		}
		return &astiface.FuncDecl{
			Name:   d.Name,
			Params: params,
			Return: namedTypeOrNil(d.Return),
			Body:   body,
			LinkAs: d.Link,
			IsLink: d.Link != "",
		}, nil

	case "var":
		var init astiface.Expr
		if d.Init != nil {
			e, err := d.Init.toAstiface()
			if err != nil {
				return nil, err
			}
			init = e
		}
		return &astiface.VarDecl{
			Name:    d.Name,
			Type:    namedTypeOrNil(d.Type),
			Init:    init,
			Mutable: d.Mutable,
		}, nil

	case "type":
		return &astiface.TypeDecl{Name: d.Name, Def: namedType(d.Alias)}, nil

	default:
		return nil, fmt.Errorf("unknown decl kind %q", d.Kind)
	}
}

func namedType(name string) *astiface.NamedType {
	if name == "" {
		return nil
	}
	return &astiface.NamedType{Name: name}
}

func namedTypeOrNil(name string) astiface.TypeExpr {
	if name == "" {
		return nil
	}
	return namedType(name)
}

func toStmts(in []Stmt) ([]astiface.Stmt, error) {
	out := make([]astiface.Stmt, 0, len(in))
	for _, s := range in {
		st, err := s.toAstiface()
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *Stmt) toAstiface() (astiface.Stmt, error) {
	switch s.Kind {
	case "return":
		var e astiface.Expr
		if s.Expr != nil {
			var err error
			e, err = s.Expr.toAstiface()
			if err != nil {
				return nil, err
			}
		}
		return &astiface.Return{Expr: e}, nil

	case "expr":
		if s.Expr == nil {
			return nil, fmt.Errorf("expr statement missing expr")
		}
		e, err := s.Expr.toAstiface()
		if err != nil {
			return nil, err
		}
		return &astiface.ExprStmt{Expr: e}, nil

	case "assign":
		lhs, err := s.LHS.toAstiface()
		if err != nil {
			return nil, err
		}
		rhs, err := s.RHS.toAstiface()
		if err != nil {
			return nil, err
		}
		op := s.Op
		if op == "" {
			op = "="
		}
		return &astiface.Assign{Op: op, LHS: lhs, RHS: rhs}, nil

	case "if":
		cond, err := s.Cond.toAstiface()
		if err != nil {
			return nil, err
		}
		thenStmts, err := toStmts(s.Then)
		if err != nil {
			return nil, err
		}
		var elseStmt astiface.Stmt
		if len(s.Else) > 0 {
			elseStmts, err := toStmts(s.Else)
			if err != nil {
				return nil, err
			}
			elseStmt = &astiface.Block{Stmts: elseStmts}
		}
		return &astiface.If{Cond: cond, Then: &astiface.Block{Stmts: thenStmts}, Else: elseStmt}, nil

	case "while":
		cond, err := s.Cond.toAstiface()
		if err != nil {
			return nil, err
		}
		bodyStmts, err := toStmts(s.Body)
		if err != nil {
			return nil, err
		}
		return &astiface.While{Cond: cond, Body: &astiface.Block{Stmts: bodyStmts}}, nil

	default:
		return nil, fmt.Errorf("unknown statement kind %q", s.Kind)
	}
}

func (e *Expr) toAstiface() (astiface.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Kind {
	case "ident":
		return &astiface.Ident{Module: e.Module, Name: e.Name}, nil
	case "int":
		return &astiface.Lit{Kind: astiface.LitInt, Text: e.Text}, nil
	case "float":
		return &astiface.Lit{Kind: astiface.LitFloat, Text: e.Text}, nil
	case "string":
		return &astiface.Lit{Kind: astiface.LitString, Text: e.Text}, nil
	case "binop":
		left, err := e.Left.toAstiface()
		if err != nil {
			return nil, err
		}
		right, err := e.Right.toAstiface()
		if err != nil {
			return nil, err
		}
		return &astiface.BinOp{Op: e.Op, Left: left, Right: right}, nil
	case "call":
		callee, err := e.Callee.toAstiface()
		if err != nil {
			return nil, err
		}
		args := make([]astiface.Expr, len(e.Args))
		for i := range e.Args {
			a, err := e.Args[i].toAstiface()
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return &astiface.Call{Callee: callee, Args: args}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", e.Kind)
	}
}
