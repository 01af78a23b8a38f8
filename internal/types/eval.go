package types

// Env is the typename environment consulted by Eval: a name maps to its
// expansion term"). internal/scope's
// env_map is the production implementation of this interface; it is kept
// minimal here so internal/types has no dependency on internal/scope.
type Env interface {
	Lookup(name string) (Term, bool)
}

// Eval performs one step of alias expansion or type-level beta-reduction:
// looking up Id names in env, and firing Operator(Lambda, x) -> body[v:=x].
// It returns (nil, false) when no expansion is possible ("⊥" in).
func Eval(t Term, env Env) (Term, bool) {
	switch v := t.(type) {
	case *Id:
		if exp, ok := env.Lookup(v.Name); ok {
			return exp, true
		}
		return nil, false
	case *Operator:
		if lam, ok := v.F.(*Lambda); ok {
			return Rebind(lam.Body, Substitution{lam.Param: v.X}), true
		}
		if f, ok := Eval(v.F, env); ok {
			return &Operator{Sp: v.Sp, F: f, X: v.X}, true
		}
		return nil, false
	default:
		return nil, false
	}
}

// EvalFully repeatedly applies Eval until no further expansion is
// possible, guarding against a pathological alias cycle with a step
// bound; callers needing cycle detection should prefer single-step Eval
// threaded through their own visited-name set (as internal/check does
// when resolving Id chains).
func EvalFully(t Term, env Env) Term {
	const maxSteps = 1000
	cur := t
	for i := 0; i < maxSteps; i++ {
		next, ok := Eval(cur, env)
		if !ok {
			return cur
		}
		cur = next
	}
	return cur
}
