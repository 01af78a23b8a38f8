package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sunholo/langc/internal/astiface"
)

// moduleOrder returns every module name in files: the runtime module
// first (if present), then the rest in program declaration order.
// Module-variable initialization must follow this same order.
func moduleOrder(files []*astiface.Module) []string {
	order := make([]string, 0, len(files))
	for _, f := range files {
		if f.Name == "runtime" {
			order = append(order, f.Name)
		}
	}
	for _, f := range files {
		if f.Name != "runtime" {
			order = append(order, f.Name)
		}
	}
	return order
}

// moduleDeps returns, for every module in files, the set of other
// module names it references by a dotted identifier (mod.name), in no
// particular order. There is no declared import list in this AST
// surface (astiface.Module carries only a flat Decls list); a module's
// dependency edges are instead the modules its own declarations
// actually refer to, discovered the same way internal/check resolves a
// dotted Ident at a call site.
func moduleDeps(files []*astiface.Module) map[string][]string {
	names := map[string]bool{}
	for _, f := range files {
		names[f.Name] = true
	}

	deps := make(map[string][]string, len(files))
	for _, f := range files {
		seen := map[string]bool{}
		w := &depWalker{self: f.Name, names: names, seen: seen}
		for _, d := range f.Decls {
			w.walkDecl(d)
		}
		out := make([]string, 0, len(seen))
		for m := range seen {
			out = append(out, m)
		}
		sort.Strings(out)
		deps[f.Name] = out
	}
	return deps
}

type depWalker struct {
	self  string
	names map[string]bool
	seen  map[string]bool
}

func (w *depWalker) record(mod string) {
	if mod == "" || mod == w.self || !w.names[mod] {
		return
	}
	w.seen[mod] = true
}

func (w *depWalker) walkDecl(d astiface.Decl) {
	switch n := d.(type) {
	case *astiface.FuncDecl:
		if n.Body != nil {
			w.walkBlock(n.Body)
		}
	case *astiface.VarDecl:
		w.walkExpr(n.Init)
	case *astiface.TypeDecl:
		// Type declarations in this surface never reference another
		// module (astiface.NamedType carries no module qualifier).
	}
}

func (w *depWalker) walkBlock(b *astiface.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		w.walkStmt(s)
	}
}

func (w *depWalker) walkStmt(s astiface.Stmt) {
	switch n := s.(type) {
	case *astiface.VarDecl:
		w.walkExpr(n.Init)
	case *astiface.ExprStmt:
		w.walkExpr(n.Expr)
	case *astiface.Assign:
		w.walkExpr(n.LHS)
		w.walkExpr(n.RHS)
	case *astiface.Return:
		w.walkExpr(n.Expr)
	case *astiface.If:
		w.walkExpr(n.Cond)
		w.walkBlock(n.Then)
		w.walkStmt(n.Else)
	case *astiface.While:
		w.walkExpr(n.Cond)
		w.walkBlock(n.Body)
	case *astiface.For:
		w.walkExpr(n.Iter)
		w.walkBlock(n.Body)
	case *astiface.MatchStmt:
		w.walkExpr(n.Scrutinee)
		for _, arm := range n.Arms {
			w.walkBlock(arm.Body)
			w.walkExpr(arm.Value)
		}
	case *astiface.Break, *astiface.Continue, nil:
	}
}

func (w *depWalker) walkExpr(e astiface.Expr) {
	switch n := e.(type) {
	case nil:
	case *astiface.Ident:
		w.record(n.Module)
	case *astiface.Lit:
	case *astiface.Call:
		w.walkExpr(n.Callee)
		for _, a := range n.Args {
			w.walkExpr(a)
		}
	case *astiface.BinOp:
		w.walkExpr(n.Left)
		w.walkExpr(n.Right)
	case *astiface.CondExpr:
		w.walkExpr(n.Cond)
		w.walkExpr(n.Truthy)
		w.walkExpr(n.Falsey)
	case *astiface.Dot:
		w.walkExpr(n.Target)
	case *astiface.Index:
		w.walkExpr(n.Target)
		w.walkExpr(n.Key)
	case *astiface.Cast:
		w.walkExpr(n.Target)
	case *astiface.TypeIDOf:
		w.walkExpr(n.Expr)
	case *astiface.SizeOf:
	case *astiface.TupleLit:
		for _, el := range n.Elems {
			w.walkExpr(el)
		}
	case *astiface.ArrayLit:
		for _, el := range n.Elems {
			w.walkExpr(el)
		}
	case *astiface.PrefixOp:
		w.walkExpr(n.Operand)
	case *astiface.Bang:
		w.walkExpr(n.Target)
	case *astiface.MatchExpr:
		w.walkExpr(n.Scrutinee)
		for _, arm := range n.Arms {
			w.walkBlock(arm.Body)
			w.walkExpr(arm.Value)
		}
	}
}

// CycleError reports a cross-module reference cycle found while
// ordering modules for initialization (same Cycle-path-to-string shape
// as internal/link.CycleError).
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("module reference cycle: %s", strings.Join(e.Cycle, " -> "))
}

// detectCycles runs a DFS over the dependency graph derived by
// moduleDeps, in the same visited/inPath-DFS shape as
// internal/link/topo.go's TopoSortFromRoot, but over every module
// (there is no single root here — any module may be the compilation's
// entry point) and reporting only the cycle, since moduleOrder (not
// this sort) already fixes the initialization order.
func detectCycles(files []*astiface.Module) error {
	deps := moduleDeps(files)
	visited := map[string]bool{}
	inPath := map[string]bool{}
	var path []string

	var dfs func(mod string) error
	dfs = func(mod string) error {
		if visited[mod] {
			return nil
		}
		if inPath[mod] {
			start := 0
			for i, m := range path {
				if m == mod {
					start = i
					break
				}
			}
			cycle := append(append([]string{}, path[start:]...), mod)
			return &CycleError{Cycle: cycle}
		}
		inPath[mod] = true
		path = append(path, mod)
		for _, dep := range deps[mod] {
			if err := dfs(dep); err != nil {
				return err
			}
		}
		inPath[mod] = false
		path = path[:len(path)-1]
		visited[mod] = true
		return nil
	}

	order := moduleOrder(files)
	for _, mod := range order {
		if err := dfs(mod); err != nil {
			return err
		}
	}
	return nil
}
