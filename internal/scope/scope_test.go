package scope

import (
	"testing"

	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/types"
)

func boundIntVar(name string) *bound.BoundVar {
	bt := &bound.BoundType{Type: &types.Id{Name: "int"}, IRType: ir.I64}
	return &bound.BoundVar{Name: name, Type: bt, Value: ir.ConstInt{Ty: ir.I64, Val: 0}}
}

func TestNoShadowingInSameScope(t *testing.T) {
	p := NewProgramScope()
	mod := p.NewModuleScope("app", ir.NewModule("app"))
	if err := mod.PutBoundVariable("x", boundIntVar("x")); err != nil {
		t.Fatalf("first insert should succeed: %v", err)
	}
	if err := mod.PutBoundVariable("x", boundIntVar("x")); err == nil {
		t.Fatalf("expected redefinition error for same (name, signature)")
	}
}

func TestModuleScopeMirrorsFQNIntoProgram(t *testing.T) {
	p := NewProgramScope()
	mod := p.NewModuleScope("app", ir.NewModule("app"))
	if err := mod.PutBoundVariable("x", boundIntVar("x")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := p.GetBoundVariable("app.x", false); err != nil {
		t.Fatalf("expected FQN-mirrored lookup to succeed: %v", err)
	}
}

func TestGetBoundVariableSearchesParents(t *testing.T) {
	p := NewProgramScope()
	mod := p.NewModuleScope("app", ir.NewModule("app"))
	fn := NewFunctionScope(mod, "main")
	if err := mod.PutBoundVariable("g", boundIntVar("g")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := fn.GetBoundVariable("g", true); err != nil {
		t.Fatalf("expected lookup through parent chain to succeed: %v", err)
	}
	if _, err := fn.GetBoundVariable("g", false); err == nil {
		t.Fatalf("expected lookup without parent search to fail")
	}
}

func TestTypeVariableBindingIdempotent(t *testing.T) {
	p := NewProgramScope()
	if err := p.PutTypeVariableBinding("a", &types.Id{Name: "int"}); err != nil {
		t.Fatalf("first bind failed: %v", err)
	}
	if err := p.PutTypeVariableBinding("a", &types.Id{Name: "int"}); err != nil {
		t.Fatalf("re-binding identical type should be idempotent: %v", err)
	}
	if err := p.PutTypeVariableBinding("a", &types.Id{Name: "bool"}); err == nil {
		t.Fatalf("expected conflicting binding to fail")
	}
}

func TestBoundTypeCachePanicsOnNonGround(t *testing.T) {
	p := NewProgramScope()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic caching a non-ground BoundType")
		}
	}()
	p.PutBoundType(&bound.BoundType{Type: &types.Variable{Name: "a"}})
}

func TestClosureCapturesOuterVariable(t *testing.T) {
	p := NewProgramScope()
	mod := p.NewModuleScope("app", ir.NewModule("app"))
	fn := NewFunctionScope(mod, "outer")
	if err := fn.PutBoundVariable("captured", boundIntVar("captured")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	clo := NewClosureScope(fn)
	if _, err := clo.GetBoundVariable("captured", true); err != nil {
		t.Fatalf("expected closure to find outer variable: %v", err)
	}
	if _, ok := clo.Captured["captured"]; !ok {
		t.Fatalf("expected 'captured' to be recorded in the closure's captured set")
	}
}
