package life

import (
	"testing"

	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/types"
)

func mkVar(name string) *bound.BoundVar {
	bt := &bound.BoundType{Type: &types.Ptr{Inner: &types.Managed{Inner: &types.Id{Name: name}}}}
	return &bound.BoundVar{Name: name, Type: bt}
}

func TestReleaseCoverageReverseOrder(t *testing.T) {
	tr := NewTracker()
	blk := tr.Push(Block)
	_ = blk
	a := mkVar("a")
	c := mkVar("c")
	tr.Track(a)
	tr.Track(c)

	var released []string
	tr.ReleaseVars(Block, nil, func(_ *ir.Builder, v *bound.BoundVar) {
		released = append(released, v.Name)
	})

	if len(released) != 2 || released[0] != "c" || released[1] != "a" {
		t.Fatalf("expected reverse-order release [c a], got %v", released)
	}
}

func TestReleaseVarsStopsAtRequestedFrame(t *testing.T) {
	tr := NewTracker()
	tr.Track(mkVar("fnLevel"))
	tr.Push(Block)
	tr.Track(mkVar("blockLevel"))

	var released []string
	tr.ReleaseVars(Block, nil, func(_ *ir.Builder, v *bound.BoundVar) {
		released = append(released, v.Name)
	})
	if len(released) != 1 || released[0] != "blockLevel" {
		t.Fatalf("expected release to stop at the block frame, got %v", released)
	}
}

func TestReleaseVarsUpToFunctionReleasesEverything(t *testing.T) {
	tr := NewTracker()
	tr.Track(mkVar("fnLevel"))
	tr.Push(Block)
	tr.Track(mkVar("blockLevel"))

	var released []string
	tr.ReleaseVars(Function, nil, func(_ *ir.Builder, v *bound.BoundVar) {
		released = append(released, v.Name)
	})
	if len(released) != 2 {
		t.Fatalf("expected both frames released up to function, got %v", released)
	}
}

func TestPopRestoresParent(t *testing.T) {
	tr := NewTracker()
	fnFrame := tr.Current()
	tr.Push(Loop)
	tr.Pop()
	if tr.Current() != fnFrame {
		t.Fatalf("expected Pop to restore the function-level frame")
	}
}

func TestPopFunctionFramePanics(t *testing.T) {
	tr := NewTracker()
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic popping the outermost function frame")
		}
	}()
	tr.Pop()
}
