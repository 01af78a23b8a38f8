package lower

import "github.com/sunholo/langc/internal/ir"

// EmitIntLiteral/EmitFloatLiteral/EmitBoolLiteral wrap a parsed literal
// value as a constant IR operand of the resolved type.
func (c *Ctx) EmitIntLiteral(v int64, ty ir.IntType) ir.Value   { return ir.ConstInt{Ty: ty, Val: v} }
func (c *Ctx) EmitFloatLiteral(v float64, ty ir.FloatType) ir.Value {
	return ir.ConstFloat{Ty: ty, Val: v}
}
func (c *Ctx) EmitBoolLiteral(v bool) ir.Value {
	if v {
		return ir.ConstInt{Ty: ir.I1, Val: 1}
	}
	return ir.ConstInt{Ty: ir.I1, Val: 0}
}

var arithOps = map[string]ir.BinOpKind{
	"+": ir.OpAdd, "-": ir.OpSub, "*": ir.OpMul, "/": ir.OpSDiv, "%": ir.OpSRem,
	"&": ir.OpAnd, "|": ir.OpOr, "^": ir.OpXor, "<<": ir.OpShl, ">>": ir.OpAShr,
}

var cmpOps = map[string]ir.ICmpPred{
	"==": ir.PredEQ, "!=": ir.PredNE,
	"<": ir.PredSLT, "<=": ir.PredSLE, ">": ir.PredSGT, ">=": ir.PredSGE,
}

// EmitBinOp emits the IR form of a source-level binary operator, already
// resolved to a single, monomorphic result type by the checker.
func (c *Ctx) EmitBinOp(op string, l, r ir.Value, resultTy ir.Type) ir.Value {
	if kind, ok := arithOps[op]; ok {
		return c.Builder.BinOp(kind, l, r, resultTy)
	}
	if pred, ok := cmpOps[op]; ok {
		return c.Builder.ICmp(pred, l, r)
	}
	panic("lower: unsupported binary operator " + op)
}

// EmitUnaryMinus and EmitNot are the two source-level prefix operators.
func (c *Ctx) EmitUnaryMinus(v ir.Value, ty ir.Type) ir.Value {
	return c.Builder.BinOp(ir.OpSub, zeroOf(ty), v, ty)
}
func (c *Ctx) EmitNot(v ir.Value) ir.Value {
	return c.Builder.BinOp(ir.OpXor, v, ir.ConstInt{Ty: ir.I1, Val: 1}, ir.I1)
}

func zeroOf(ty ir.Type) ir.Value {
	switch t := ty.(type) {
	case ir.FloatType:
		return ir.ConstFloat{Ty: t, Val: 0}
	case ir.IntType:
		return ir.ConstInt{Ty: t, Val: 0}
	default:
		return ir.ConstInt{Ty: ir.I64, Val: 0}
	}
}

// EmitCall emits a direct call to a resolved function's IR name.
func (c *Ctx) EmitCall(irName string, args []ir.Value, retTy ir.Type) ir.Value {
	if _, ok := retTy.(ir.VoidType); ok {
		c.Builder.VoidCall(irName, args)
		return nil
	}
	return c.Builder.Call(irName, args, retTy)
}

// EmitCast emits a numeric or pointer conversion.
func (c *Ctx) EmitCast(kind ir.CastKind, v ir.Value, to ir.Type) ir.Value {
	return c.Builder.Cast(kind, v, to)
}

// EmitSizeOf emits a constant sizeof(T).
func (c *Ctx) EmitSizeOf(ty ir.Type) ir.Value { return c.Builder.SizeOf(ty) }

// EmitTypeIDOf returns the constant type-identity tag of a managed type,
// reading its already-registered TypeInfoRecord.
func (c *Ctx) EmitTypeIDOf(sig string) ir.Value {
	rec, ok := c.typeInfoSeen[sig]
	if !ok {
		panic("lower: EmitTypeIDOf on an unregistered type " + sig)
	}
	return ir.ConstInt{Ty: ir.I64, Val: rec.TypeID}
}

// EmitCond emits a ternary-style value-producing conditional: cond
// branches to a then/else block, each produced by the caller's closure,
// and the results merge through a phi of the common result type.
func (c *Ctx) EmitCond(cond ir.Value, resultTy ir.Type, then, els func() ir.Value) ir.Value {
	thenLabel := c.FreshLabel("cond.then")
	elseLabel := c.FreshLabel("cond.else")
	mergeLabel := c.FreshLabel("cond.merge")

	c.Builder.CondBr(cond, thenLabel, elseLabel)

	thenBlk := c.Builder.NewBlock(thenLabel)
	c.Builder.SetInsertPoint(thenBlk)
	thenVal := then()
	thenEnd := c.Builder.CurrentBlock().Label
	if !c.Builder.Terminated() {
		c.Builder.Br(mergeLabel)
	}

	elseBlk := c.Builder.NewBlock(elseLabel)
	c.Builder.SetInsertPoint(elseBlk)
	elseVal := els()
	elseEnd := c.Builder.CurrentBlock().Label
	if !c.Builder.Terminated() {
		c.Builder.Br(mergeLabel)
	}

	mergeBlk := c.Builder.NewBlock(mergeLabel)
	c.Builder.SetInsertPoint(mergeBlk)
	return c.Builder.Phi(resultTy, []ir.PhiIncoming{
		{Val: thenVal, Block: thenEnd},
		{Val: elseVal, Block: elseEnd},
	})
}

// EmitTupleLit constructs a native struct value in a fresh stack slot and
// returns it loaded, field-by-field in order.
func (c *Ctx) EmitTupleLit(st ir.StructType, elems []ir.Value) ir.Value {
	slot := c.Builder.Alloca(st)
	for i, e := range elems {
		fieldPtr := c.Builder.GEP(slot, []int{i}, st.Fields[i], false)
		c.Builder.Store(fieldPtr, e)
	}
	return c.Builder.Load(slot, st)
}

// EmitDot reads a field at a known offset from a struct value already
// materialized as a pointer (ref or managed object).
func (c *Ctx) EmitDot(base ir.Value, fieldIndex int, fieldTy ir.Type, managedHop bool) ir.Value {
	addr := c.Builder.GEP(base, []int{fieldIndex}, fieldTy, managedHop)
	return c.Builder.Load(addr, fieldTy)
}

// EmitIndex reads the array element at the constant element index idx
// (a GEP index, not a byte offset).
func (c *Ctx) EmitIndex(base ir.Value, idx int, elemTy ir.Type) ir.Value {
	addr := c.Builder.GEP(base, []int{idx}, elemTy, false)
	return c.Builder.Load(addr, elemTy)
}
