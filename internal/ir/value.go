package ir

import "fmt"

// ValueID is a monotonic SSA value number, unique within one Function.
// Modeled on internal/core CoreNode.NodeID discipline, generalized from
// AST node identity to SSA value identity.
type ValueID uint64

// Value is anything that can appear as an instruction operand: an
// instruction result, a constant, a global, or a function parameter.
type Value interface {
	fmt.Stringer
	ValueType() Type
	isValue()
}

// ConstInt is a constant integer.
type ConstInt struct {
	Ty  IntType
	Val int64
}

func (ConstInt) isValue()          {}
func (c ConstInt) ValueType() Type { return c.Ty }
func (c ConstInt) String() string  { return fmt.Sprintf("%s %d", c.Ty, c.Val) }

// ConstFloat is a constant float.
type ConstFloat struct {
	Ty  FloatType
	Val float64
}

func (ConstFloat) isValue()          {}
func (c ConstFloat) ValueType() Type { return c.Ty }
func (c ConstFloat) String() string  { return fmt.Sprintf("%s %g", c.Ty, c.Val) }

// ConstNull is the zero pointer value of the given pointer type.
type ConstNull struct{ Ty PointerType }

func (ConstNull) isValue()          {}
func (c ConstNull) ValueType() Type { return c.Ty }
func (c ConstNull) String() string  { return fmt.Sprintf("%s null", c.Ty) }

// GlobalRef refers to a global (a string constant, a module-level
// variable, a type_info_t record, or a tag singleton).
type GlobalRef struct {
	Name string
	Ty   Type // pointee type; the value itself has type PointerType{Ty}
}

func (GlobalRef) isValue()          {}
func (g GlobalRef) ValueType() Type { return PointerType{Elem: g.Ty} }
func (g GlobalRef) String() string  { return "@" + g.Name }

// Param is a function parameter reference.
type Param struct {
	ID   ValueID
	Ty   Type
	Name string
}

func (Param) isValue()          {}
func (p Param) ValueType() Type { return p.Ty }
func (p Param) String() string  { return fmt.Sprintf("%%%d", p.ID) }

// InstrRef refers to the result of a prior instruction by SSA number.
type InstrRef struct {
	ID ValueID
	Ty Type
}

func (InstrRef) isValue()          {}
func (r InstrRef) ValueType() Type { return r.Ty }
func (r InstrRef) String() string  { return fmt.Sprintf("%%%d", r.ID) }
