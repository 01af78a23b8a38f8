package ir

import "testing"

func TestBuilderEmitsAllocaLoadStore(t *testing.T) {
	fn := &Function{Name: "f", Return: VoidType{}, GCStrategy: "langc-gc"}
	b := NewBuilder(fn)
	entry := b.NewBlock("entry")
	b.SetInsertPoint(entry)

	slot := b.Alloca(I64)
	b.Store(slot, ConstInt{Ty: I64, Val: 42})
	loaded := b.Load(slot, I64)
	b.Ret(loaded)

	if len(entry.Instrs) != 4 {
		t.Fatalf("expected 4 instructions, got %d", len(entry.Instrs))
	}
	if !b.Terminated() {
		t.Fatalf("expected block to be terminated after Ret")
	}
}

func TestSaveRestoreInsertPoint(t *testing.T) {
	fn := &Function{Name: "f", Return: VoidType{}, GCStrategy: "langc-gc"}
	b := NewBuilder(fn)
	a := b.NewBlock("a")
	c := b.NewBlock("c")
	b.SetInsertPoint(a)
	saved := b.SaveInsertPoint()
	b.SetInsertPoint(c)
	b.RestoreInsertPoint(saved)
	if b.CurrentBlock() != a {
		t.Fatalf("expected insert point restored to block a")
	}
}

func TestValueIDsAreMonotonic(t *testing.T) {
	fn := &Function{Name: "f", Return: VoidType{}, GCStrategy: "langc-gc"}
	b := NewBuilder(fn)
	blk := b.NewBlock("entry")
	b.SetInsertPoint(blk)
	v1 := b.Alloca(I64)
	v2 := b.Alloca(I64)
	if v2.ID <= v1.ID {
		t.Fatalf("expected monotonically increasing SSA ids, got %d then %d", v1.ID, v2.ID)
	}
}

func TestModulePrinterDeterministic(t *testing.T) {
	m := NewModule("app")
	fn := &Function{Name: "main", Return: VoidType{}, GCStrategy: "langc-gc"}
	b := NewBuilder(fn)
	blk := b.NewBlock("entry")
	b.SetInsertPoint(blk)
	b.RetVoid()
	m.Functions = append(m.Functions, fn)

	s1 := m.String()
	s2 := m.String()
	if s1 != s2 {
		t.Fatalf("expected deterministic printing")
	}
	if s1 == "" {
		t.Fatalf("expected non-empty output")
	}
}
