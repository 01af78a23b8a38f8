package types

import "fmt"

// Signature returns the canonical printing of t, used as the identity key
// for the bound-type cache and for monomorphization keys. It is
// deterministic: structurally equal terms always print identically,
// regardless of construction order (enforced by NewSum's sort).
//
// For most variants Signature and String coincide; they're kept as
// separate functions because String is meant for human-facing diagnostics
// while Signature is a stable cache key — a future change to
// diagnostic formatting (e.g. showing source-level aliases) must not be
// allowed to silently change cache keys.
func Signature(t Term) string {
	return canon(t)
}

func canon(t Term) string {
	switch v := t.(type) {
	case *Id:
		return "Id(" + v.Name + ")"
	case *Variable:
		return "Var(" + v.Name + ")"
	case *Operator:
		return fmt.Sprintf("Op(%s,%s)", canon(v.F), canon(v.X))
	case *Lambda:
		return fmt.Sprintf("Lam(%s,%s)", v.Param, canon(v.Body))
	case *Struct:
		return structSignature(v)
	case *Args:
		return argsSignature(v)
	case *Ref:
		return "Ref(" + canon(v.Inner) + ")"
	case *Ptr:
		return "Ptr(" + canon(v.Inner) + ")"
	case *Managed:
		return "Managed(" + canon(v.Inner) + ")"
	case *Maybe:
		return "Maybe(" + canon(v.Just) + ")"
	case *Null:
		return "Null"
	case *Sum:
		return sumSignature(v)
	case *Function:
		return functionSignature(v)
	case *Module:
		return "Module(" + v.Name + ")"
	case *TypeInfo:
		return "TypeInfo"
	case *Extern:
		return "Extern(" + canon(v.Inner) + "," + v.Underlying + ")"
	default:
		panic(fmt.Sprintf("types: canon: unhandled term %T", t))
	}
}

func structSignature(v *Struct) string {
	s := "Struct("
	names := fieldNamesInOrder(v.NameIndex, len(v.Dims))
	for i, d := range v.Dims {
		if i > 0 {
			s += ","
		}
		s += names[i] + ":" + canon(d)
	}
	s += fmt.Sprintf(")[name=%s,managed=%v]", v.Name, v.Managed)
	return s
}

func argsSignature(v *Args) string {
	s := "Args("
	for i, d := range v.Dims {
		if i > 0 {
			s += ","
		}
		s += canon(d)
	}
	return s + ")"
}

func sumSignature(v *Sum) string {
	s := "Sum("
	for i, o := range v.Options {
		if i > 0 {
			s += "|"
		}
		s += canon(o)
	}
	return s + ")"
}

func functionSignature(v *Function) string {
	ctx := ""
	if v.Ctx != nil {
		ctx = canon(v.Ctx)
	}
	return fmt.Sprintf("Function(%s;%s;%s)", ctx, argsSignature(v.Args), canon(v.Return))
}
