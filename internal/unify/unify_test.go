package unify

import (
	"testing"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/types"
)

type nilEnv struct{}

func (nilEnv) Lookup(string) (types.Term, bool) { return nil, false }

func tint() types.Term        { return &types.Id{Name: "int"} }
func tbool() types.Term       { return &types.Id{Name: "bool"} }
func tvar(n string) *types.Variable { return &types.Variable{Name: n} }

func TestUnifySoundness(t *testing.T) {
	a := tvar("a")
	b := &types.Function{Args: &types.Args{Dims: []types.Term{a}}, Return: a}
	c := &types.Function{Args: &types.Args{Dims: []types.Term{tint()}}, Return: tint()}
	r := Unify(b, c, nilEnv{}, types.Substitution{})
	if !r.OK {
		t.Fatalf("expected unification to succeed: %s", r.Reason)
	}
	rb := types.Rebind(b, r.Subst)
	rc := types.Rebind(c, r.Subst)
	if types.Signature(rb) != types.Signature(rc) {
		t.Fatalf("unify soundness violated: %s != %s", types.Signature(rb), types.Signature(rc))
	}
}

func TestOccursCheckFails(t *testing.T) {
	a := tvar("a")
	cyclic := &types.Ptr{Inner: a}
	r := Unify(a, cyclic, nilEnv{}, types.Substitution{})
	if r.OK {
		t.Fatalf("expected occurs check to reject a unifying with *a")
	}
}

func TestUnifyMismatchRecordsReason(t *testing.T) {
	r := Unify(tint(), tbool(), nilEnv{}, types.Substitution{})
	if r.OK || r.Reason == "" {
		t.Fatalf("expected a failure with a human-readable reason")
	}
}

func TestUnifyMaybeNullSucceeds(t *testing.T) {
	m := types.NewMaybe(astiface.Span{}, tint())
	r := Unify(m, &types.Null{}, nilEnv{}, types.Substitution{})
	if !r.OK {
		t.Fatalf("Maybe(a) vs null should unify: %s", r.Reason)
	}
}

func TestUnifyMaybeLifted(t *testing.T) {
	m := types.NewMaybe(astiface.Span{}, tint())
	r := Unify(m, tint(), nilEnv{}, types.Substitution{})
	if !r.OK {
		t.Fatalf("Maybe(int) vs int should unify (lifted): %s", r.Reason)
	}
}

func TestUnifySumSubset(t *testing.T) {
	sum := types.NewSum(astiface.Span{}, tint(), tbool())
	r := Unify(sum, tint(), nilEnv{}, types.Substitution{})
	if !r.OK {
		t.Fatalf("expected int to unify via one-way subtype into Sum(int|bool): %s", r.Reason)
	}
}

func TestUnifyIdempotentOnSuccess(t *testing.T) {
	a := tvar("a")
	r1 := Unify(a, tint(), nilEnv{}, types.Substitution{})
	if !r1.OK {
		t.Fatal("expected success")
	}
	composed := types.ComposeSubstitutions(r1.Subst, r1.Subst)
	for k, v := range r1.Subst {
		if types.Signature(v) != types.Signature(composed[k]) {
			t.Fatalf("bindings not idempotent for %s", k)
		}
	}
}

func TestUnifyStructArityMismatch(t *testing.T) {
	s1 := &types.Struct{Dims: []types.Term{tint()}, NameIndex: map[string]int{"x": 0}}
	s2 := &types.Struct{Dims: []types.Term{tint(), tbool()}, NameIndex: map[string]int{"x": 0, "y": 1}}
	r := Unify(s1, s2, nilEnv{}, types.Substitution{})
	if r.OK {
		t.Fatalf("expected arity mismatch to fail")
	}
}
