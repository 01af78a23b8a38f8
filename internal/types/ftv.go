package types

// FTV returns the set of free type-variable names in t.
func FTV(t Term) map[string]bool {
	out := map[string]bool{}
	ftv(t, out, nil)
	return out
}

// FTVCount returns ftv_count(t): a type is ground iff this is 0.
func FTVCount(t Term) int {
	return len(FTV(t))
}

// IsGround reports whether t has no free type variables.
func IsGround(t Term) bool {
	return FTVCount(t) == 0
}

func ftv(t Term, out map[string]bool, bound map[string]bool) {
	switch v := t.(type) {
	case *Id, *Null, *TypeInfo:
		// no variables
	case *Variable:
		if bound == nil || !bound[v.Name] {
			out[v.Name] = true
		}
	case *Operator:
		ftv(v.F, out, bound)
		ftv(v.X, out, bound)
	case *Lambda:
		// capture-avoiding: v.Param is bound within Body, so it is removed
		// from the free-variable accumulator before recursing.
		inner := cloneBound(bound)
		inner[v.Param] = true
		ftv(v.Body, out, inner)
	case *Struct:
		for _, d := range v.Dims {
			ftv(d, out, bound)
		}
	case *Args:
		for _, d := range v.Dims {
			ftv(d, out, bound)
		}
	case *Ref:
		ftv(v.Inner, out, bound)
	case *Ptr:
		ftv(v.Inner, out, bound)
	case *Managed:
		ftv(v.Inner, out, bound)
	case *Maybe:
		ftv(v.Just, out, bound)
	case *Sum:
		for _, o := range v.Options {
			ftv(o, out, bound)
		}
	case *Function:
		if v.Ctx != nil {
			ftv(v.Ctx, out, bound)
		}
		ftv(v.Args, out, bound)
		ftv(v.Return, out, bound)
	case *Module:
		// no variables
	case *Extern:
		ftv(v.Inner, out, bound)
	default:
		panic("types: ftv: unhandled term")
	}
}

func cloneBound(b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(b)+1)
	for k := range b {
		out[k] = true
	}
	return out
}
