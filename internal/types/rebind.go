package types

// Rebind performs capture-avoiding substitution of sigma into t,
// returning t unchanged when sigma is empty.
func Rebind(t Term, sigma Substitution) Term {
	if len(sigma) == 0 {
		return t
	}
	return rebind(t, sigma)
}

func rebind(t Term, sigma Substitution) Term {
	switch v := t.(type) {
	case *Id, *Null, *TypeInfo, *Module:
		return t
	case *Variable:
		if sub, ok := sigma[v.Name]; ok {
			return sub
		}
		return t
	case *Operator:
		return &Operator{Sp: v.Sp, F: rebind(v.F, sigma), X: rebind(v.X, sigma)}
	case *Lambda:
		// v.Param is removed from sigma before recursing, so the
		// substitution never captures the bound parameter.
		if _, shadowed := sigma[v.Param]; shadowed {
			inner := make(Substitution, len(sigma)-1)
			for k, val := range sigma {
				if k != v.Param {
					inner[k] = val
				}
			}
			return &Lambda{Sp: v.Sp, Param: v.Param, Body: rebind(v.Body, inner)}
		}
		return &Lambda{Sp: v.Sp, Param: v.Param, Body: rebind(v.Body, sigma)}
	case *Struct:
		dims := make([]Term, len(v.Dims))
		for i, d := range v.Dims {
			dims[i] = rebind(d, sigma)
		}
		return &Struct{Sp: v.Sp, Name: v.Name, Dims: dims, NameIndex: v.NameIndex, Managed: v.Managed}
	case *Args:
		dims := make([]Term, len(v.Dims))
		for i, d := range v.Dims {
			dims[i] = rebind(d, sigma)
		}
		return &Args{Sp: v.Sp, Dims: dims, NameIndex: v.NameIndex}
	case *Ref:
		return &Ref{Sp: v.Sp, Inner: rebind(v.Inner, sigma)}
	case *Ptr:
		return &Ptr{Sp: v.Sp, Inner: rebind(v.Inner, sigma)}
	case *Managed:
		return &Managed{Sp: v.Sp, Inner: rebind(v.Inner, sigma)}
	case *Maybe:
		return NewMaybe(v.Sp, rebind(v.Just, sigma))
	case *Sum:
		opts := make([]Term, len(v.Options))
		for i, o := range v.Options {
			opts[i] = rebind(o, sigma)
		}
		return NewSum(v.Sp, opts...)
	case *Function:
		var ctx Term
		if v.Ctx != nil {
			ctx = rebind(v.Ctx, sigma)
		}
		args := rebind(v.Args, sigma).(*Args)
		return &Function{Sp: v.Sp, Ctx: ctx, Args: args, Return: rebind(v.Return, sigma)}
	case *Extern:
		return &Extern{Sp: v.Sp, Inner: rebind(v.Inner, sigma), Underlying: v.Underlying, FinalizeFn: v.FinalizeFn, MarkFn: v.MarkFn}
	default:
		panic("types: rebind: unhandled term")
	}
}

// ComposeSubstitutions returns s2 ∘ s1: applying the result to a term is
// equivalent to applying s1 then s2. Matches the prior design's
// ComposeSubstitutions in internal/types/unification.go.
func ComposeSubstitutions(s1, s2 Substitution) Substitution {
	out := make(Substitution, len(s1)+len(s2))
	for k, v := range s1 {
		out[k] = Rebind(v, s2)
	}
	for k, v := range s2 {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}
