// Package bound defines the fully-resolved (BoundType/BoundVar) and
// deferred (UncheckedType/UncheckedVar) entities of the type pipeline.
//
// Modeled on internal/types/instances.go: a cache of
// resolved instances keyed by a monotype signature string, generalized
// here from type-class instances to arbitrary bound types and variables.
package bound

import (
	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/types"
)

// BoundType pairs a ground type term with its IR-level layout. Created
// once per ground signature.
type BoundType struct {
	Type    types.Term
	IRType  ir.Type
	Layout  ir.Layout // IR-specific layout handle (field offsets, size)
	Loc     astiface.Span
}

// Signature returns the cache key for b.
func (b *BoundType) Signature() string { return types.Signature(b.Type) }

// BoundVar pairs a language-level name with its resolved type and IR
// value handle. Overloads at the same name are distinguished by
// signature.
type BoundVar struct {
	Name     string
	Type     *BoundType
	Value    ir.Value
	ID       ir.ValueID
	IsGlobal bool
}

// Signature returns the signature of v's type, which distinguishes
// overloads that share v's name.
func (v *BoundVar) Signature() string { return types.Signature(v.Type.Type) }

// UncheckedType is a type declaration whose bound form has not yet been
// materialized.
type UncheckedType struct {
	FQN    string
	Node   astiface.Decl // the *astiface.TypeDecl
	Module string        // owning module scope name
}

// UncheckedVar is a function/data-constructor declaration whose
// monomorphized bound form has not yet been materialized. Data
// constructors carry their ctor signature in CtorSig.
type UncheckedVar struct {
	FQN     string
	Node    astiface.Decl // the *astiface.FuncDecl
	Module  string
	CtorSig *types.Function // non-nil for data constructors
}
