// Package unify implements Robinson-style unification over the type
// grammar of internal/types.
//
// Modeled on internal/types/unification.go: a Unifier with a recursive
// Unify(t1, t2, sub) that special-cases each term-pair shape and threads
// a Substitution map, extended here with a one-way Sum subtype rule and
// a Maybe lifting rule.
package unify

import (
	"fmt"

	"github.com/sunholo/langc/internal/types"
)

// Result is the outcome of a unification attempt.
type Result struct {
	OK      bool
	Subst   types.Substitution
	Reason  string // populated when !OK, a human-readable explanation
}

// Env resolves Id names during alias-aware retry: when a unification of
// an Id against a non-matching shape fails outright, both sides get one
// chance to expand through Env before the failure is final.
type Env = types.Env

// Unify attempts to make a and b equal, extending bindings. It is total:
// every pair of terms reaches either success or a Result with Reason set.
func Unify(a, b types.Term, env Env, bindings types.Substitution) Result {
	a = resolve(a, bindings)
	b = resolve(b, bindings)

	if av, ok := a.(*types.Variable); ok {
		return bindVar(av, b, bindings)
	}
	if bv, ok := b.(*types.Variable); ok {
		return bindVar(bv, a, bindings)
	}

	switch x := a.(type) {
	case *types.Id:
		return unifyId(x, b, env, bindings)
	case *types.Operator:
		if y, ok := b.(*types.Operator); ok {
			return unifyPair(x.F, y.F, x.X, y.X, env, bindings)
		}
	case *types.Struct:
		if y, ok := b.(*types.Struct); ok {
			return unifyDims(x.Dims, y.Dims, env, bindings)
		}
	case *types.Args:
		if y, ok := b.(*types.Args); ok {
			return unifyDims(x.Dims, y.Dims, env, bindings)
		}
	case *types.Ref:
		return unifyRef(x, b, env, bindings)
	case *types.Ptr:
		if y, ok := b.(*types.Ptr); ok {
			return Unify(x.Inner, y.Inner, env, bindings)
		}
	case *types.Managed:
		if y, ok := b.(*types.Managed); ok {
			return Unify(x.Inner, y.Inner, env, bindings)
		}
	case *types.Maybe:
		return unifyMaybe(x, b, env, bindings)
	case *types.Null:
		if _, ok := b.(*types.Null); ok {
			return Result{OK: true, Subst: bindings}
		}
	case *types.Sum:
		return unifySum(x, b, env, bindings)
	case *types.Function:
		if y, ok := b.(*types.Function); ok {
			return unifyFunction(x, y, env, bindings)
		}
	case *types.Module:
		if y, ok := b.(*types.Module); ok && x.Name == y.Name {
			return Result{OK: true, Subst: bindings}
		}
	case *types.TypeInfo:
		if _, ok := b.(*types.TypeInfo); ok {
			return Result{OK: true, Subst: bindings}
		}
	case *types.Extern:
		if y, ok := b.(*types.Extern); ok && x.Underlying == y.Underlying {
			return Unify(x.Inner, y.Inner, env, bindings)
		}
	}

	// Reversed Ref/Maybe r-value cases: b is the compound form, a is not.
	if _, ok := a.(*types.Ref); !ok {
		if br, ok := b.(*types.Ref); ok {
			return unifyRef(br, a, env, bindings)
		}
	}
	if _, ok := a.(*types.Maybe); !ok {
		if bm, ok := b.(*types.Maybe); ok {
			return unifyMaybe(bm, a, env, bindings)
		}
	}
	if _, ok := a.(*types.Sum); !ok {
		if bs, ok := b.(*types.Sum); ok {
			return unifySum(bs, a, env, bindings)
		}
	}

	return fail("cannot unify %s with %s", a, b)
}

func resolve(t types.Term, bindings types.Substitution) types.Term {
	for {
		v, ok := t.(*types.Variable)
		if !ok {
			return t
		}
		sub, ok := bindings[v.Name]
		if !ok {
			return t
		}
		t = sub
	}
}

func bindVar(v *types.Variable, t types.Term, bindings types.Substitution) Result {
	if other, ok := t.(*types.Variable); ok && other.Name == v.Name {
		return Result{OK: true, Subst: bindings}
	}
	if types.FTV(t)[v.Name] {
		return fail("occurs check failed: %s occurs in %s", v.Name, t)
	}
	next := make(types.Substitution, len(bindings)+1)
	for k, val := range bindings {
		next[k] = val
	}
	next[v.Name] = t
	return Result{OK: true, Subst: next}
}

func unifyId(x *types.Id, b types.Term, env Env, bindings types.Substitution) Result {
	if y, ok := b.(*types.Id); ok {
		if x.Name == y.Name {
			return Result{OK: true, Subst: bindings}
		}
		// aliases unify with what they expand to.
		if env != nil {
			if xe, ok := types.Eval(x, env); ok {
				return Unify(xe, b, env, bindings)
			}
			if ye, ok := types.Eval(y, env); ok {
				return Unify(x, ye, env, bindings)
			}
		}
		return fail("distinct nominal types %s and %s do not unify", x.Name, y.Name)
	}
	if env != nil {
		if xe, ok := types.Eval(x, env); ok {
			return Unify(xe, b, env, bindings)
		}
	}
	return fail("cannot unify nominal type %s with %s", x.Name, b)
}

func unifyPair(f1, f2, x1, x2 types.Term, env Env, bindings types.Substitution) Result {
	r := Unify(f1, f2, env, bindings)
	if !r.OK {
		return r
	}
	return Unify(types.Rebind(x1, r.Subst), types.Rebind(x2, r.Subst), env, r.Subst)
}

func unifyDims(d1, d2 []types.Term, env Env, bindings types.Substitution) Result {
	if len(d1) != len(d2) {
		return fail("arity mismatch: %d vs %d", len(d1), len(d2))
	}
	cur := bindings
	for i := range d1 {
		r := Unify(types.Rebind(d1[i], cur), types.Rebind(d2[i], cur), env, cur)
		if !r.OK {
			return r
		}
		cur = r.Subst
	}
	return Result{OK: true, Subst: cur}
}

func unifyFunction(x, y *types.Function, env Env, bindings types.Substitution) Result {
	cur := bindings
	if x.Ctx != nil && y.Ctx != nil {
		r := Unify(x.Ctx, y.Ctx, env, cur)
		if !r.OK {
			return r
		}
		cur = r.Subst
	}
	r := Unify(types.Rebind(x.Args, cur), types.Rebind(y.Args, cur), env, cur)
	if !r.OK {
		return r
	}
	cur = r.Subst
	return Unify(types.Rebind(x.Return, cur), types.Rebind(y.Return, cur), env, cur)
}

// unifyRef decomposes Ref(a) vs Ref(b); Ref(a) vs a non-Ref b is an
// r-value read, which unifies a with b.
func unifyRef(r *types.Ref, b types.Term, env Env, bindings types.Substitution) Result {
	if br, ok := b.(*types.Ref); ok {
		return Unify(r.Inner, br.Inner, env, bindings)
	}
	// r-value read: dereference r and unify the inner type.
	return Unify(r.Inner, b, env, bindings)
}

// unifyMaybe implements Maybe rules: decompose, null
// succeeds, lifted-equal succeeds, else unify inner with b.
func unifyMaybe(m *types.Maybe, b types.Term, env Env, bindings types.Substitution) Result {
	if bm, ok := b.(*types.Maybe); ok {
		return Unify(m.Just, bm.Just, env, bindings)
	}
	if _, ok := b.(*types.Null); ok {
		return Result{OK: true, Subst: bindings}
	}
	// Maybe(a) vs a succeeds (lifted).
	if r := Unify(m.Just, b, env, bindings); r.OK {
		return r
	}
	return Unify(m.Just, b, env, bindings)
}

// unifySum implements: every alternative in A must unify
// with t, OR t is a subset of A (one-way subtype direction). The two
// branches are tried in order; if t is itself a Sum, subset containment
// is checked by signature.
func unifySum(s *types.Sum, b types.Term, env Env, bindings types.Substitution) Result {
	if bs, ok := b.(*types.Sum); ok {
		have := map[string]bool{}
		for _, o := range s.Options {
			have[types.Signature(o)] = true
		}
		for _, o := range bs.Options {
			if !have[types.Signature(o)] {
				return fail("sum option %s not present in %s", o, s)
			}
		}
		return Result{OK: true, Subst: bindings}
	}

	cur := bindings
	allMatch := true
	for _, o := range s.Options {
		r := Unify(types.Rebind(o, cur), b, env, cur)
		if !r.OK {
			allMatch = false
			break
		}
		cur = r.Subst
	}
	if allMatch {
		return Result{OK: true, Subst: cur}
	}

	// one-way subtype: b unifies with at least one option.
	for _, o := range s.Options {
		if r := Unify(o, b, env, bindings); r.OK {
			return r
		}
	}
	return fail("%s does not unify with any option of %s", b, s)
}

func fail(format string, args ...any) Result {
	return Result{OK: false, Reason: fmt.Sprintf(format, args...)}
}
