package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sunholo/langc/internal/astiface"
)

func tint() Term  { return &Id{Name: "int"} }
func tvar(n string) *Variable { return &Variable{Name: n} }

func TestMaybeCanonicalization(t *testing.T) {
	inner := tint()
	m1 := NewMaybe(astiface.Span{}, inner)
	m2 := NewMaybe(astiface.Span{}, m1)
	if Signature(m1) != Signature(m2) {
		t.Fatalf("Maybe(Maybe(t)) should equal Maybe(t): %s vs %s", Signature(m1), Signature(m2))
	}
	mn := NewMaybe(astiface.Span{}, &Null{})
	if _, ok := mn.(*Null); !ok {
		t.Fatalf("Maybe(null) should canonicalize to null, got %T", mn)
	}
}

func TestSumCanonicalization(t *testing.T) {
	single := NewSum(astiface.Span{}, tint())
	if Signature(single) != Signature(tint()) {
		t.Fatalf("Sum({t}) should equal t")
	}
	a := NewSum(astiface.Span{}, tint(), &Id{Name: "bool"})
	b := NewSum(astiface.Span{}, &Id{Name: "bool"}, tint())
	if Signature(a) != Signature(b) {
		t.Fatalf("Sum construction order should not affect signature: %s vs %s", Signature(a), Signature(b))
	}
	c := NewSum(astiface.Span{}, tint(), tint(), &Id{Name: "bool"})
	if Signature(a) != Signature(c) {
		t.Fatalf("Sum should deduplicate options")
	}
}

func TestSumRejectsMaybeOrNull(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic when building a Sum with a Maybe option")
		}
	}()
	NewSum(astiface.Span{}, NewMaybe(astiface.Span{}, tint()))
}

func TestRebindIdempotence(t *testing.T) {
	sig := &Function{
		Args:   &Args{Dims: []Term{tvar("a")}},
		Return: tvar("a"),
	}
	sigma := Substitution{"a": tint()}
	once := Rebind(sig, sigma)
	twice := Rebind(once, sigma)
	if Signature(once) != Signature(twice) {
		t.Fatalf("rebind should be idempotent once grounded: %s vs %s", Signature(once), Signature(twice))
	}
}

func TestRebindEmptySubstitutionIsNoop(t *testing.T) {
	f := &Function{Args: &Args{Dims: []Term{tvar("a")}}, Return: tvar("a")}
	out := Rebind(f, Substitution{})
	if !cmp.Equal(f, out, cmpopts.IgnoreUnexported()) {
		t.Fatalf("Rebind with empty substitution must return t unchanged")
	}
}

func TestSignatureInvarianceUnderAgreeingSubstitutions(t *testing.T) {
	f := &Function{Args: &Args{Dims: []Term{tvar("a")}}, Return: tvar("a")}
	s1 := Substitution{"a": tint(), "unused1": &Id{Name: "bool"}}
	s2 := Substitution{"a": tint(), "unused2": &Id{Name: "string"}}
	if Signature(Rebind(f, s1)) != Signature(Rebind(f, s2)) {
		t.Fatalf("signature should only depend on bindings for ftv(t)")
	}
}

func TestRebindCaptureAvoidingUnderLambda(t *testing.T) {
	// \a. a, substituting a -> int must NOT touch the bound a.
	lam := &Lambda{Param: "a", Body: tvar("a")}
	out := Rebind(lam, Substitution{"a": tint()}).(*Lambda)
	if _, ok := out.Body.(*Variable); !ok {
		t.Fatalf("substitution must not capture the lambda-bound variable, got %s", out.Body)
	}
}

func TestFTVGround(t *testing.T) {
	g := &Struct{Dims: []Term{tint()}, NameIndex: map[string]int{"x": 0}}
	if !IsGround(g) {
		t.Fatalf("expected struct of only Id fields to be ground")
	}
	ng := &Struct{Dims: []Term{tvar("a")}, NameIndex: map[string]int{"x": 0}}
	if IsGround(ng) {
		t.Fatalf("expected struct with a free variable field to be non-ground")
	}
	if FTVCount(ng) != 1 {
		t.Fatalf("expected exactly one free variable, got %d", FTVCount(ng))
	}
}

func TestOccursCheckHelperFTV(t *testing.T) {
	// unify's occurs-check consults FTV directly; verify it reports the
	// variable inside a deeply nested structure.
	nested := &Ptr{Inner: &Managed{Inner: &Struct{
		Dims:      []Term{tvar("a")},
		NameIndex: map[string]int{"f": 0},
	}}}
	if !FTV(nested)["a"] {
		t.Fatalf("expected to find 'a' free inside nested Ptr(Managed(Struct))")
	}
}
