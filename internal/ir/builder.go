package ir

// Builder emits instructions into a Function's basic blocks. It mirrors
// a typical LLVM IRBuilder: a current insert block, helpers that append
// and return a Value, and a scoped-guard save/restore of the insert
// point so nested emission can temporarily redirect and come back.
type Builder struct {
	fn      *Function
	cur     *BasicBlock
	nextID  ValueID
	paramID ValueID
}

// NewBuilder creates a Builder targeting fn, starting with no insert
// point (callers must SetInsertPoint before emitting).
func NewBuilder(fn *Function) *Builder {
	maxParam := ValueID(0)
	for _, p := range fn.Params {
		if p.ID > maxParam {
			maxParam = p.ID
		}
	}
	return &Builder{fn: fn, nextID: maxParam + 1}
}

// InsertPoint is an opaque save of the builder's current block, restored
// via RestoreInsertPoint.
type InsertPoint struct {
	block *BasicBlock
}

// SaveInsertPoint captures the current insert point.
func (b *Builder) SaveInsertPoint() InsertPoint { return InsertPoint{block: b.cur} }

// RestoreInsertPoint restores a previously saved insert point. Call sites
// pair this with SaveInsertPoint via `defer` to guarantee restoration on
// any exit path, the discipline requires.
func (b *Builder) RestoreInsertPoint(p InsertPoint) { b.cur = p.block }

// NewBlock appends a fresh basic block to the function (not yet the
// insert point).
func (b *Builder) NewBlock(label string) *BasicBlock {
	blk := &BasicBlock{Label: label}
	b.fn.Blocks = append(b.fn.Blocks, blk)
	return blk
}

// SetInsertPoint moves subsequent emission to blk.
func (b *Builder) SetInsertPoint(blk *BasicBlock) { b.cur = blk }

// CurrentBlock returns the block currently receiving instructions.
func (b *Builder) CurrentBlock() *BasicBlock { return b.cur }

// Terminated reports whether the current block already ends in a
// terminator, so callers (e.g. fall-through block-exit handling) can
// avoid emitting a second one.
func (b *Builder) Terminated() bool {
	if b.cur == nil || len(b.cur.Instrs) == 0 {
		return false
	}
	switch b.cur.Instrs[len(b.cur.Instrs)-1].(type) {
	case Br, CondBr, Ret, RetVoid, Unreachable:
		return true
	default:
		return false
	}
}

func (b *Builder) alloc() ValueID {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Builder) emit(in Instr) { b.cur.Instrs = append(b.cur.Instrs, in) }

// Alloca emits a stack slot allocation and returns its pointer value.
func (b *Builder) Alloca(elem Type) InstrRef {
	id := b.alloc()
	b.emit(Alloca{base: base{id: id, res: PointerType{Elem: elem}}, Elem: elem})
	return InstrRef{ID: id, Ty: PointerType{Elem: elem}}
}

// Load emits a load through addr.
func (b *Builder) Load(addr Value, elem Type) InstrRef {
	id := b.alloc()
	b.emit(Load{base: base{id: id, res: elem}, Addr: addr})
	return InstrRef{ID: id, Ty: elem}
}

// Store emits a store of val to addr.
func (b *Builder) Store(addr, val Value) { b.emit(Store{Addr: addr, Val: val}) }

// GEP emits a field/element address computation.
func (b *Builder) GEP(base_ Value, indices []int, resultTy Type, managedHop bool) InstrRef {
	id := b.alloc()
	b.emit(GEP{base: base{id: id, res: PointerType{Elem: resultTy}}, Base: base_, Indices: indices, ManagedHeaderHop: managedHop})
	return InstrRef{ID: id, Ty: PointerType{Elem: resultTy}}
}

// Call emits a value-producing call.
func (b *Builder) Call(fn string, args []Value, retTy Type) InstrRef {
	id := b.alloc()
	b.emit(Call{base: base{id: id, res: retTy}, Fn: fn, Args: args})
	return InstrRef{ID: id, Ty: retTy}
}

// VoidCall emits a side-effect-only call (e.g. a release call).
func (b *Builder) VoidCall(fn string, args []Value) {
	b.emit(VoidCall{base: base{res: VoidType{}}, Fn: fn, Args: args})
}

// BinOp emits an arithmetic/bitwise instruction.
func (b *Builder) BinOp(op BinOpKind, l, r Value, resultTy Type) InstrRef {
	id := b.alloc()
	b.emit(BinOp{base: base{id: id, res: resultTy}, Op: op, Left: l, Right: r})
	return InstrRef{ID: id, Ty: resultTy}
}

// ICmp emits a comparison, always producing i1.
func (b *Builder) ICmp(pred ICmpPred, l, r Value) InstrRef {
	id := b.alloc()
	b.emit(ICmp{base: base{id: id, res: I1}, Pred: pred, Left: l, Right: r})
	return InstrRef{ID: id, Ty: I1}
}

// Cast emits a conversion instruction.
func (b *Builder) Cast(kind CastKind, v Value, to Type) InstrRef {
	id := b.alloc()
	b.emit(Cast{base: base{id: id, res: to}, Kind: kind, Val: v})
	return InstrRef{ID: id, Ty: to}
}

// Phi emits a phi node.
func (b *Builder) Phi(ty Type, incoming []PhiIncoming) InstrRef {
	id := b.alloc()
	b.emit(Phi{base: base{id: id, res: ty}, Incoming: incoming})
	return InstrRef{ID: id, Ty: ty}
}

// SizeOf emits a constant-expr sizeof(T).
func (b *Builder) SizeOf(of Type) InstrRef {
	id := b.alloc()
	b.emit(SizeOfConst{base: base{id: id, res: I64}, Of: of})
	return InstrRef{ID: id, Ty: I64}
}

// Br/CondBr/Ret/RetVoid/Unreachable terminate the current block; callers
// must not emit further instructions into this block afterward.
func (b *Builder) Br(target string)                 { b.emit(Br{Target: target}) }
func (b *Builder) CondBr(cond Value, t, f string)    { b.emit(CondBr{Cond: cond, True: t, False: f}) }
func (b *Builder) Ret(v Value)                       { b.emit(Ret{Val: v}) }
func (b *Builder) RetVoid()                          { b.emit(RetVoid{}) }
func (b *Builder) Unreachable()                      { b.emit(Unreachable{}) }
