// Package types implements the compile-time type term algebra: a single
// recursive sum type with structural and nominal forms, canonical
// printing, free-variable scanning, and capture-avoiding substitution.
//
// Modeled on internal/types/types.go: one Type interface implemented by
// many small term structs (TVar, TCon, TFunc, TList, TTuple, TRecord,
// ...), each carrying its own String/Equals/Substitute. This package
// keeps that shape with a different variant set.
package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sunholo/langc/internal/astiface"
)

// Term is the type of every type-term variant.
type Term interface {
	// Loc returns the source location this term was created at, for
	// diagnostics; synthetic terms (e.g. fresh variables) may return a
	// zero Span.
	Loc() astiface.Span
	fmt.Stringer
	isTerm()
}

// Substitution maps type-variable names to terms.
type Substitution map[string]Term

var freshCounter int64

// FreshVariable allocates a new type variable with a globally unique name,
// using the monotonic counter required by
func FreshVariable(loc astiface.Span) *Variable {
	n := atomic.AddInt64(&freshCounter, 1)
	return &Variable{Name: "t" + strconv.FormatInt(n, 10), Sp: loc}
}

// ResetFreshCounterForTests resets the monotonic fresh-variable counter.
// It exists only so tests can assert on generated names deterministically;
// production code never calls it.
func ResetFreshCounterForTests() {
	atomic.StoreInt64(&freshCounter, 0)
}

// --- Id ---

// Id is a nominal reference to a named type.
type Id struct {
	Sp   astiface.Span
	Name string
}

func (t *Id) isTerm()             {}
func (t *Id) Loc() astiface.Span  { return t.Sp }
func (t *Id) String() string      { return t.Name }

// --- Variable ---

// Variable is a free or bound type variable.
type Variable struct {
	Sp   astiface.Span
	Name string
}

func (t *Variable) isTerm()            {}
func (t *Variable) Loc() astiface.Span { return t.Sp }
func (t *Variable) String() string     { return "'" + t.Name }

// --- Operator ---

// Operator is type-level application f(x).
type Operator struct {
	Sp   astiface.Span
	F, X Term
}

func (t *Operator) isTerm()            {}
func (t *Operator) Loc() astiface.Span { return t.Sp }
func (t *Operator) String() string     { return fmt.Sprintf("%s<%s>", t.F, t.X) }

// --- Lambda ---

// Lambda is type-level abstraction, used only for aliases with
// parameters.
type Lambda struct {
	Sp    astiface.Span
	Param string
	Body  Term
}

func (t *Lambda) isTerm()            {}
func (t *Lambda) Loc() astiface.Span { return t.Sp }
func (t *Lambda) String() string     { return fmt.Sprintf("\\%s.%s", t.Param, t.Body) }

// --- Struct ---

// Struct is a product type. Dims is field types in declaration order;
// NameIndex maps a field name to its position in Dims. Managed
// distinguishes a heap-allocated layout (wrapped in Managed by the
// lowerer) from a native/stack layout.
type Struct struct {
	Sp        astiface.Span
	Name      string // "" for anonymous/tuple-derived structs
	Dims      []Term
	NameIndex map[string]int
	Managed   bool
}

func (t *Struct) isTerm()            {}
func (t *Struct) Loc() astiface.Span { return t.Sp }
func (t *Struct) String() string {
	fields := make([]string, len(t.Dims))
	names := fieldNamesInOrder(t.NameIndex, len(t.Dims))
	for i, d := range t.Dims {
		if names[i] != "" {
			fields[i] = names[i] + ": " + d.String()
		} else {
			fields[i] = d.String()
		}
	}
	prefix := "struct"
	if t.Name != "" {
		prefix = t.Name
	}
	return fmt.Sprintf("%s{%s}", prefix, strings.Join(fields, ", "))
}

func fieldNamesInOrder(idx map[string]int, n int) []string {
	out := make([]string, n)
	for name, i := range idx {
		if i >= 0 && i < n {
			out[i] = name
		}
	}
	return out
}

// --- Args ---

// Args is a function-parameter-list product, kept distinct from Struct so
// call-site arity/name checking never confuses a function call with
// object construction.
type Args struct {
	Sp        astiface.Span
	Dims      []Term
	NameIndex map[string]int
}

func (t *Args) isTerm()            {}
func (t *Args) Loc() astiface.Span { return t.Sp }
func (t *Args) String() string {
	parts := make([]string, len(t.Dims))
	for i, d := range t.Dims {
		parts[i] = d.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// --- Ref ---

// Ref is an l-value reference (addressable storage). Writable bindings
// have type Ref(T); reading dereferences.
type Ref struct {
	Sp    astiface.Span
	Inner Term
}

func (t *Ref) isTerm()            {}
func (t *Ref) Loc() astiface.Span { return t.Sp }
func (t *Ref) String() string     { return "ref " + t.Inner.String() }

// --- Ptr ---

// Ptr is a native pointer.
type Ptr struct {
	Sp    astiface.Span
	Inner Term
}

func (t *Ptr) isTerm()            {}
func (t *Ptr) Loc() astiface.Span { return t.Sp }
func (t *Ptr) String() string     { return "*" + t.Inner.String() }

// --- Managed ---

// Managed is a GC-managed header wrapping Inner; heap objects always
// appear as Ptr(Managed(Struct(...))).
type Managed struct {
	Sp    astiface.Span
	Inner Term
}

func (t *Managed) isTerm()            {}
func (t *Managed) Loc() astiface.Span { return t.Sp }
func (t *Managed) String() string     { return "managed " + t.Inner.String() }

// --- Maybe ---

// Maybe is a nullable wrapper. Smart constructor NewMaybe canonicalizes
// Maybe(Maybe(t)) to Maybe(t) and Maybe(null) to Null.
type Maybe struct {
	Sp   astiface.Span
	Just Term
}

func (t *Maybe) isTerm()            {}
func (t *Maybe) Loc() astiface.Span { return t.Sp }
func (t *Maybe) String() string     { return t.Just.String() + "?" }

// Null is the singleton type of the null value.
type Null struct{ Sp astiface.Span }

func (t *Null) isTerm()            {}
func (t *Null) Loc() astiface.Span { return t.Sp }
func (t *Null) String() string     { return "null" }

// --- Sum ---

// Sum is a closed sum of type options. Maybe and Null never appear
// directly inside Options — see NewSum.
type Sum struct {
	Sp      astiface.Span
	Options []Term
}

func (t *Sum) isTerm()            {}
func (t *Sum) Loc() astiface.Span { return t.Sp }
func (t *Sum) String() string {
	parts := make([]string, len(t.Options))
	for i, o := range t.Options {
		parts[i] = o.String()
	}
	return strings.Join(parts, " | ")
}

// --- Function ---

// Function is a function signature, including a context type used for
// overload disambiguation across modules.
type Function struct {
	Sp      astiface.Span
	Ctx     Term // may be nil
	Args    *Args
	Return  Term
}

func (t *Function) isTerm()            {}
func (t *Function) Loc() astiface.Span { return t.Sp }
func (t *Function) String() string {
	ctx := ""
	if t.Ctx != nil {
		ctx = "[" + t.Ctx.String() + "]"
	}
	return fmt.Sprintf("%s%s -> %s", ctx, t.Args.String(), t.Return.String())
}

// --- Module / TypeInfo / Extern ---

// Module wraps the type of a module reference, for Dot-expression
// disambiguation against value members.
type Module struct {
	Sp   astiface.Span
	Name string
}

func (t *Module) isTerm()            {}
func (t *Module) Loc() astiface.Span { return t.Sp }
func (t *Module) String() string     { return "module " + t.Name }

// TypeInfo is the type of a type_info_t descriptor value.
type TypeInfo struct{ Sp astiface.Span }

func (t *TypeInfo) isTerm()            {}
func (t *TypeInfo) Loc() astiface.Span { return t.Sp }
func (t *TypeInfo) String() string     { return "type_info" }

// Extern is a foreign/opaque type linked from outside the module, e.g. a
// runtime-library handle with custom finalize/mark functions.
type Extern struct {
	Sp         astiface.Span
	Inner      Term
	Underlying string
	FinalizeFn string
	MarkFn     string
}

func (t *Extern) isTerm()            {}
func (t *Extern) Loc() astiface.Span { return t.Sp }
func (t *Extern) String() string     { return "extern<" + t.Underlying + ">" }

// --- smart constructors ---

// NewMaybe canonicalizes Maybe(Maybe(t)) = Maybe(t) and Maybe(null) = null.
func NewMaybe(sp astiface.Span, just Term) Term {
	switch j := just.(type) {
	case *Maybe:
		return j
	case *Null:
		return j
	default:
		return &Maybe{Sp: sp, Just: just}
	}
}

// NewSum builds a Sum, deduplicating options by signature and collapsing
// a single-option sum to that option. Maybe/Null options are rejected by panic: callers
// must canonicalize those via NewMaybe before building a Sum, per the
// uniform rule adopted in DESIGN.md for the spec's open question on
// Sum-vs-Maybe handling.
func NewSum(sp astiface.Span, options ...Term) Term {
	seen := map[string]bool{}
	var out []Term
	for _, o := range options {
		switch o.(type) {
		case *Maybe, *Null:
			panic("types: Maybe/Null must not appear as a Sum option")
		}
		sig := Signature(o)
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return Signature(out[i]) < Signature(out[j]) })
	if len(out) == 1 {
		return out[0]
	}
	return &Sum{Sp: sp, Options: out}
}
