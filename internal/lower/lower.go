// Package lower turns resolved expressions and statements into IR
// (internal/ir), maintaining the managed-object model: every heap value
// carries a var_t header, every struct/sum type gets a TypeInfoRecord,
// and every nullary sum variant gets a single shared TagSingleton. It is
// driven by internal/check, which resolves a node's type and then calls
// the matching Emit* helper here with that type already known — checking
// and lowering happen in one interleaved walk, not two passes.
//
// Modeled on the prior internal/eval package (eval_core.go,
// eval_expressions.go): the same per-node-kind dispatch shape, retargeted
// from direct evaluation to IR emission, plus the prior
// internal/elaborate/exhaustiveness.go for match-arm lowering structure.
package lower

import (
	"fmt"

	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/life"
	"github.com/sunholo/langc/internal/types"
)

// Ctx bundles the IR builder, life tracker, and owning module that one
// function body is lowered into.
type Ctx struct {
	Module  *ir.Module
	Builder *ir.Builder
	Life    *life.Tracker

	typeInfoSeen map[string]*ir.TypeInfoRecord
	tagSeen      map[string]*ir.TagSingleton
	nextTypeID   int64
	labelCount   int
}

// NewCtx creates a lowering context targeting mod, emitting into b.
func NewCtx(mod *ir.Module, b *ir.Builder) *Ctx {
	return &Ctx{
		Module:       mod,
		Builder:      b,
		Life:         life.NewTracker(),
		typeInfoSeen: map[string]*ir.TypeInfoRecord{},
		tagSeen:      map[string]*ir.TagSingleton{},
	}
}

// FreshLabel returns a unique basic-block label with the given prefix.
func (c *Ctx) FreshLabel(prefix string) string {
	c.labelCount++
	return fmt.Sprintf("%s.%d", prefix, c.labelCount)
}

// IRTypeOf lowers a ground type term to its IR representation and
// records any TypeInfoRecord/TagSingleton the value's layout needs. Used
// by internal/check after unification grounds a term, to obtain the
// ir.Type to pass to Alloca/Load/Store/Call.
func (c *Ctx) IRTypeOf(t types.Term) ir.Type {
	switch v := t.(type) {
	case *types.Id:
		return builtinIRType(v.Name)
	case *types.Ref:
		return ir.PointerType{Elem: c.IRTypeOf(v.Inner)}
	case *types.Ptr:
		return ir.PointerType{Elem: c.IRTypeOf(v.Inner)}
	case *types.Managed:
		return c.managedStructType(v.Inner)
	case *types.Maybe:
		return ir.PointerType{Elem: ir.VarT}
	case *types.Struct:
		return c.nativeStructType(v)
	case *types.Function:
		return ir.PointerType{Elem: ir.FuncSigType{Return: c.IRTypeOf(v.Return)}}
	default:
		return ir.Ptr8
	}
}

func builtinIRType(name string) ir.Type {
	switch name {
	case "int", "int64":
		return ir.I64
	case "int32":
		return ir.I32
	case "int8", "byte":
		return ir.I8
	case "bool":
		return ir.I1
	case "float", "float64":
		return ir.FloatType{Bits: 64}
	case "void":
		return ir.VoidType{}
	default:
		return ir.Ptr8
	}
}

// nativeStructType lowers a Struct term to a flat IR struct, without a
// var_t header (used for unmanaged tuples/records passed by value).
func (c *Ctx) nativeStructType(s *types.Struct) ir.StructType {
	fields := make([]ir.Type, len(s.Dims))
	for i, d := range s.Dims {
		fields[i] = c.IRTypeOf(d)
	}
	return ir.StructType{Name: s.Name, Fields: fields}
}

// managedStructType lowers Managed(inner) to `{ var_t, inner-fields }`
// and registers (or reuses) its TypeInfoRecord, keyed by signature so
// every use of the same ground managed type shares one record.
func (c *Ctx) managedStructType(inner types.Term) ir.StructType {
	sig := types.Signature(inner)
	if _, ok := c.typeInfoSeen[sig]; !ok {
		c.registerTypeInfo(sig, inner)
	}
	var fields []ir.Type
	if s, ok := inner.(*types.Struct); ok {
		for _, d := range s.Dims {
			fields = append(fields, c.IRTypeOf(d))
		}
	} else {
		fields = []ir.Type{c.IRTypeOf(inner)}
	}
	name := ""
	if s, ok := inner.(*types.Struct); ok {
		name = s.Name
	}
	return ir.StructType{Name: name, Fields: append([]ir.Type{ir.VarT}, fields...)}
}

func (c *Ctx) registerTypeInfo(sig string, inner types.Term) *ir.TypeInfoRecord {
	c.nextTypeID++
	kind := "struct"
	size := 8
	if s, ok := inner.(*types.Struct); ok {
		size = 8 * (1 + len(s.Dims))
		if s.Managed {
			kind = "managed_struct"
		}
	}
	rec := &ir.TypeInfoRecord{
		Name:      "typeinfo." + sanitizeGlobalName(sig),
		TypeID:    c.nextTypeID,
		Kind:      kind,
		SizeBytes: size,
	}
	c.typeInfoSeen[sig] = rec
	c.Module.TypeInfos = append(c.Module.TypeInfos, rec)
	return rec
}

// TagSingletonFor returns (creating if needed) the shared global for a
// nullary sum-option constructor named ctorName, e.g. `None` in
// `Maybe(T)` or a zero-field enum case.
func (c *Ctx) TagSingletonFor(ctorName string, sumSig string) *ir.GlobalRef {
	key := sumSig + "#" + ctorName
	if ts, ok := c.tagSeen[key]; ok {
		return &ir.GlobalRef{Name: ts.Name, Ty: ir.VarT}
	}
	ti, ok := c.typeInfoSeen[sumSig]
	if !ok {
		ti = c.registerTypeInfo(sumSig, &types.Id{Name: ctorName})
	}
	ts := &ir.TagSingleton{Name: "tag." + sanitizeGlobalName(key), TypeInfo: ti.Name}
	c.tagSeen[key] = ts
	c.Module.TagSingletons = append(c.Module.TagSingletons, ts)
	return &ir.GlobalRef{Name: ts.Name, Ty: ir.VarT}
}

func sanitizeGlobalName(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
			out = append(out, b)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// EmitAllocManaged allocates a managed object of the given inner type,
// tracks it in the current life frame (so it gets released on scope
// exit), and returns its pointer value. ty must already have gone
// through IRTypeOf so its TypeInfoRecord is registered.
func (c *Ctx) EmitAllocManaged(inner types.Term, v *bound.BoundVar) ir.Value {
	st := c.managedStructType(inner)
	ptr := c.Builder.Call("langc_rt_alloc", []ir.Value{
		c.Builder.SizeOf(st),
		ir.GlobalRef{Name: c.typeInfoSeen[types.Signature(inner)].Name, Ty: ir.VarT},
	}, ir.PointerType{Elem: ir.VarT})
	if v != nil {
		c.Life.Track(v)
	}
	return ptr
}

// EmitRelease is the release callback passed to life.Tracker.ReleaseVars:
// it emits a VoidCall to the runtime's reference-count decrement for a
// single tracked managed value.
func EmitRelease(b *ir.Builder, v *bound.BoundVar) {
	b.VoidCall("langc_rt_release", []ir.Value{v.Value})
}

// EmitRetain emits a VoidCall to the runtime's reference-count increment,
// used when a managed value is stored somewhere that extends its
// lifetime past the current life frame (e.g. assigned into a ref cell or
// returned).
func EmitRetain(b *ir.Builder, v ir.Value) {
	b.VoidCall("langc_rt_retain", []ir.Value{v})
}
