package lower

import (
	"strings"
	"testing"

	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/types"
)

func newCtx() (*Ctx, *ir.Function) {
	fn := &ir.Function{Name: "test", Return: ir.I64, GCStrategy: "langc-gc"}
	b := ir.NewBuilder(fn)
	entry := b.NewBlock("entry")
	b.SetInsertPoint(entry)
	mod := ir.NewModule("app")
	mod.Functions = append(mod.Functions, fn)
	return NewCtx(mod, b), fn
}

func TestEmitBinOpArithmetic(t *testing.T) {
	c, _ := newCtx()
	l := c.EmitIntLiteral(1, ir.I64)
	r := c.EmitIntLiteral(2, ir.I64)
	v := c.EmitBinOp("+", l, r, ir.I64)
	if !strings.Contains(v.String(), "%") {
		t.Fatalf("expected an SSA value, got %v", v)
	}
}

func TestEmitBinOpComparison(t *testing.T) {
	c, _ := newCtx()
	l := c.EmitIntLiteral(1, ir.I64)
	r := c.EmitIntLiteral(2, ir.I64)
	v := c.EmitBinOp("<", l, r, ir.I64)
	if v.ValueType() != ir.I1 {
		t.Fatalf("expected i1 result from a comparison, got %v", v.ValueType())
	}
}

func TestManagedStructTypeRegistersOnce(t *testing.T) {
	c, _ := newCtx()
	inner := &types.Struct{Name: "Point", Dims: []types.Term{&types.Id{Name: "int"}, &types.Id{Name: "int"}}, Managed: true}
	st1 := c.managedStructType(inner)
	st2 := c.managedStructType(inner)
	if len(c.Module.TypeInfos) != 1 {
		t.Fatalf("expected exactly one TypeInfoRecord across repeated uses, got %d", len(c.Module.TypeInfos))
	}
	if st1.String() != st2.String() {
		t.Fatalf("expected identical struct layout on repeated lowering")
	}
	if len(st1.Fields) != 3 {
		t.Fatalf("expected var_t header + 2 fields, got %d", len(st1.Fields))
	}
}

func TestEmitCondProducesPhi(t *testing.T) {
	c, _ := newCtx()
	cond := c.EmitBoolLiteral(true)
	v := c.EmitCond(cond, ir.I64, func() ir.Value {
		return c.EmitIntLiteral(1, ir.I64)
	}, func() ir.Value {
		return c.EmitIntLiteral(2, ir.I64)
	})
	if !strings.Contains(v.String(), "%") {
		t.Fatalf("expected a phi SSA value, got %v", v)
	}
	if len(c.Builder.CurrentBlock().Instrs) != 1 {
		t.Fatalf("expected the merge block to contain exactly the phi")
	}
}

func TestEmitReturnReleasesTrackedValues(t *testing.T) {
	c, _ := newCtx()
	inner := &types.Struct{Name: "Box", Dims: []types.Term{&types.Id{Name: "int"}}, Managed: true}
	ptr := c.EmitAllocManaged(inner, mkVar("b"))
	c.EmitReturn(ptr)
	blk := c.Builder.CurrentBlock()
	sawRelease := false
	for _, in := range blk.Instrs {
		if vc, ok := in.(ir.VoidCall); ok && vc.Fn == "langc_rt_release" {
			sawRelease = true
		}
	}
	if !sawRelease {
		t.Fatalf("expected EmitReturn to release tracked managed values before returning")
	}
}

func TestEmitWhileLoopStructure(t *testing.T) {
	c, fn := newCtx()
	i := 0
	c.EmitWhile(func() ir.Value {
		return c.EmitBoolLiteral(i == 0)
	}, func(ll LoopLabels) {
		i++
		if ll.HeaderLabel == "" || ll.ExitLabel == "" {
			t.Fatalf("expected non-empty loop labels")
		}
	})
	if len(fn.Blocks) < 4 {
		t.Fatalf("expected header/body/exit blocks to be created, got %d blocks", len(fn.Blocks))
	}
}

func TestTagSingletonSharedAcrossCalls(t *testing.T) {
	c, _ := newCtx()
	a := c.TagSingletonFor("None", "Sum(None|Some)")
	b := c.TagSingletonFor("None", "Sum(None|Some)")
	if a.Name != b.Name {
		t.Fatalf("expected the same nullary constructor to reuse its tag singleton")
	}
	if len(c.Module.TagSingletons) != 1 {
		t.Fatalf("expected exactly one TagSingleton, got %d", len(c.Module.TagSingletons))
	}
}

func mkVar(name string) *bound.BoundVar {
	bt := &bound.BoundType{Type: &types.Ptr{Inner: &types.Managed{Inner: &types.Id{Name: name}}}}
	return &bound.BoundVar{Name: name, Type: bt, Value: ir.ConstNull{Ty: ir.PointerType{Elem: ir.VarT}}}
}
