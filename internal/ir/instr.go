package ir

import "fmt"

// Instr is one SSA instruction. Every value-producing instruction's
// result is addressed by its ID as an InstrRef with Ty == instr's result
// type.
type Instr interface {
	fmt.Stringer
	ID() ValueID
	ResultType() Type // VoidType for instructions with no result
	isInstr()
}

type base struct {
	id  ValueID
	res Type
}

func (b base) ID() ValueID      { return b.id }
func (b base) ResultType() Type { return b.res }

// Alloca reserves a stack slot: the lowering of every `Ref(T)` binding.
type Alloca struct {
	base
	Elem Type
}

func (Alloca) isInstr() {}
func (a Alloca) String() string {
	return fmt.Sprintf("%%%d = alloca %s", a.id, a.Elem)
}

// Load reads through a pointer.
type Load struct {
	base
	Addr Value
}

func (Load) isInstr() {}
func (l Load) String() string {
	return fmt.Sprintf("%%%d = load %s, %s", l.id, l.res, l.Addr)
}

// Store writes Val to Addr; has no result (VoidType).
type Store struct {
	base
	Addr Value
	Val  Value
}

func (Store) isInstr() {}
func (s Store) String() string {
	return fmt.Sprintf("store %s, %s", s.Val, s.Addr)
}

// GEP computes a field/element address. ManagedHeaderHop is true when the
// first index hop is the managed-header field.
type GEP struct {
	base
	Base             Value
	Indices          []int
	ManagedHeaderHop bool
}

func (GEP) isInstr() {}
func (g GEP) String() string {
	return fmt.Sprintf("%%%d = getelementptr %s, %v", g.id, g.Base, g.Indices)
}

// Call invokes Fn with Args; Fn is a global function reference.
type Call struct {
	base
	Fn   string
	Args []Value
}

func (Call) isInstr() {}
func (c Call) String() string {
	s := fmt.Sprintf("%%%d = call %s @%s(", c.id, c.res, c.Fn)
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

// VoidCall invokes Fn for side effect only (no result), e.g. a release
// call or runtime.on_assert_failure.
type VoidCall struct {
	base
	Fn   string
	Args []Value
}

func (VoidCall) isInstr() {}
func (c VoidCall) String() string {
	s := fmt.Sprintf("call void @%s(", c.Fn)
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

// BinOpKind enumerates the integer/float arithmetic and bitwise opcodes.
type BinOpKind string

const (
	OpAdd  BinOpKind = "add"
	OpSub  BinOpKind = "sub"
	OpMul  BinOpKind = "mul"
	OpSDiv BinOpKind = "sdiv"
	OpUDiv BinOpKind = "udiv"
	OpSRem BinOpKind = "srem"
	OpURem BinOpKind = "urem"
	OpShl  BinOpKind = "shl"
	OpAShr BinOpKind = "ashr"
	OpLShr BinOpKind = "lshr"
	OpAnd  BinOpKind = "and"
	OpOr   BinOpKind = "or"
	OpXor  BinOpKind = "xor"
)

// BinOp is a two-operand arithmetic/bitwise instruction.
type BinOp struct {
	base
	Op          BinOpKind
	Left, Right Value
}

func (BinOp) isInstr() {}
func (b BinOp) String() string {
	return fmt.Sprintf("%%%d = %s %s, %s", b.id, b.Op, b.Left, b.Right)
}

// ICmpPred enumerates integer/pointer comparison predicates.
type ICmpPred string

const (
	PredEQ  ICmpPred = "eq"
	PredNE  ICmpPred = "ne"
	PredSLT ICmpPred = "slt"
	PredSLE ICmpPred = "sle"
	PredSGT ICmpPred = "sgt"
	PredSGE ICmpPred = "sge"
	PredULT ICmpPred = "ult"
	PredULE ICmpPred = "ule"
	PredUGT ICmpPred = "ugt"
	PredUGE ICmpPred = "uge"
)

// ICmp compares two integers or pointers, producing an i1.
type ICmp struct {
	base
	Pred        ICmpPred
	Left, Right Value
}

func (ICmp) isInstr() {}
func (c ICmp) String() string {
	return fmt.Sprintf("%%%d = icmp %s %s, %s", c.id, c.Pred, c.Left, c.Right)
}

// CastKind enumerates the permitted numeric and pointer conversions.
type CastKind string

const (
	CastSExt   CastKind = "sext"
	CastZExt   CastKind = "zext"
	CastTrunc  CastKind = "trunc"
	CastPtrToInt CastKind = "ptrtoint"
	CastIntToPtr CastKind = "inttoptr"
	CastBitcast  CastKind = "bitcast"
)

// Cast converts Val to Ty.
type Cast struct {
	base
	Kind CastKind
	Val  Value
}

func (Cast) isInstr() {}
func (c Cast) String() string {
	return fmt.Sprintf("%%%d = %s %s to %s", c.id, c.Kind, c.Val, c.res)
}

// Phi joins values from predecessor blocks.
type Phi struct {
	base
	Incoming []PhiIncoming
}

type PhiIncoming struct {
	Val   Value
	Block string
}

func (Phi) isInstr() {}
func (p Phi) String() string {
	s := fmt.Sprintf("%%%d = phi %s [", p.id, p.res)
	for i, in := range p.Incoming {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s from %%%s", in.Val, in.Block)
	}
	return s + "]"
}

// SizeOfConst is a constant-expr sizeof(T).
type SizeOfConst struct {
	base
	Of Type
}

func (SizeOfConst) isInstr() {}
func (s SizeOfConst) String() string {
	return fmt.Sprintf("%%%d = sizeof %s", s.id, s.Of)
}

// Terminators.

// Br is an unconditional branch.
type Br struct{ Target string }

func (Br) isInstr()          {}
func (Br) ID() ValueID       { return 0 }
func (Br) ResultType() Type  { return VoidType{} }
func (b Br) String() string  { return "br label %" + b.Target }

// CondBr is a conditional branch.
type CondBr struct {
	Cond        Value
	True, False string
}

func (CondBr) isInstr()         {}
func (CondBr) ID() ValueID      { return 0 }
func (CondBr) ResultType() Type { return VoidType{} }
func (b CondBr) String() string {
	return fmt.Sprintf("br %s, label %%%s, label %%%s", b.Cond, b.True, b.False)
}

// Ret returns Val.
type Ret struct{ Val Value }

func (Ret) isInstr()         {}
func (Ret) ID() ValueID      { return 0 }
func (Ret) ResultType() Type { return VoidType{} }
func (r Ret) String() string { return "ret " + r.Val.String() }

// RetVoid returns with no value.
type RetVoid struct{}

func (RetVoid) isInstr()          {}
func (RetVoid) ID() ValueID       { return 0 }
func (RetVoid) ResultType() Type  { return VoidType{} }
func (RetVoid) String() string    { return "ret void" }

// Unreachable marks a statically-impossible control path (e.g. a match
// with no matching arm and no else).
type Unreachable struct{}

func (Unreachable) isInstr()         {}
func (Unreachable) ID() ValueID      { return 0 }
func (Unreachable) ResultType() Type { return VoidType{} }
func (Unreachable) String() string   { return "unreachable" }
