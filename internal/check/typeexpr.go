package check

import (
	"fmt"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/scope"
	"github.com/sunholo/langc/internal/types"
)

var builtinTypeNames = map[string]bool{
	"int": true, "int64": true, "int32": true, "int8": true, "byte": true,
	"bool": true, "float": true, "float64": true, "string": true, "void": true,
}

// resolveTypeExpr turns a syntactic type annotation into a resolved
// types.Term, looking up nominal names (and type-variable bindings, for
// a type or function declaration's own parameters) in sc.
func (c *Checker) resolveTypeExpr(sc scope.Scope, te astiface.TypeExpr) (types.Term, error) {
	switch t := te.(type) {
	case *astiface.NamedType:
		return c.resolveNamedType(sc, t)
	case *astiface.MaybeType:
		inner, err := c.resolveTypeExpr(sc, t.Elem)
		if err != nil {
			return nil, err
		}
		return types.NewMaybe(t.Sp, inner), nil
	case *astiface.PtrType:
		inner, err := c.resolveTypeExpr(sc, t.Elem)
		if err != nil {
			return nil, err
		}
		return &types.Ptr{Sp: t.Sp, Inner: inner}, nil
	case *astiface.FuncType:
		dims := make([]types.Term, len(t.Params))
		for i, p := range t.Params {
			d, err := c.resolveTypeExpr(sc, p)
			if err != nil {
				return nil, err
			}
			dims[i] = d
		}
		ret, err := c.resolveTypeExpr(sc, t.Return)
		if err != nil {
			return nil, err
		}
		return &types.Function{Sp: t.Sp, Args: &types.Args{Sp: t.Sp, Dims: dims}, Return: ret}, nil
	case *astiface.StructTypeExpr:
		return c.resolveStructType(sc, t, "")
	default:
		return nil, fmt.Errorf("check: unsupported type expression %T", te)
	}
}

func (c *Checker) resolveStructType(sc scope.Scope, t *astiface.StructTypeExpr, name string) (*types.Struct, error) {
	dims := make([]types.Term, len(t.Fields))
	idx := make(map[string]int, len(t.Fields))
	for i, f := range t.Fields {
		d, err := c.resolveTypeExpr(sc, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		dims[i] = d
		idx[f.Name] = i
	}
	return &types.Struct{Sp: t.Sp, Name: name, Dims: dims, NameIndex: idx, Managed: t.Managed}, nil
}

func (c *Checker) resolveNamedType(sc scope.Scope, t *astiface.NamedType) (types.Term, error) {
	if len(t.Args) == 0 {
		if builtinTypeNames[t.Name] {
			return &types.Id{Sp: t.Sp, Name: t.Name}, nil
		}
		if v, ok := sc.LookupTypeVariableBinding(t.Name); ok {
			return v, nil
		}
		if exp, ok := sc.GetType(t.Name, true); ok {
			return wrapIfManaged(exp), nil
		}
		return nil, fmt.Errorf("undefined type %q", t.Name)
	}
	base, ok := sc.GetType(t.Name, true)
	if !ok {
		return nil, fmt.Errorf("undefined generic type %q", t.Name)
	}
	env := scopeTypeEnv{sc}
	cur := base
	for _, a := range t.Args {
		argTerm, err := c.resolveTypeExpr(sc, a)
		if err != nil {
			return nil, err
		}
		app := &types.Operator{Sp: t.Sp, F: cur, X: argTerm}
		reduced, ok := types.Eval(app, env)
		if !ok {
			return nil, fmt.Errorf("type %q is not generic over %d argument(s)", t.Name, len(t.Args))
		}
		cur = reduced
	}
	return wrapIfManaged(cur), nil
}

// wrapIfManaged lifts a bare managed Struct/Sum expansion to its
// universal heap-reference shape Ptr(Managed(t)); every other term
// expansion passes through unchanged. A Sum is managed when all its
// options are (NewSum/resolveSumType guarantee this uniformly); a sum of
// exactly one option collapses (NewSum) to that option's own bare
// Managed term, so Managed is handled the same way as Sum here.
func wrapIfManaged(t types.Term) types.Term {
	switch v := t.(type) {
	case *types.Struct:
		if v.Managed {
			return &types.Ptr{Inner: &types.Managed{Inner: v}}
		}
	case *types.Sum:
		return &types.Ptr{Inner: &types.Managed{Inner: v}}
	case *types.Managed:
		return &types.Ptr{Inner: v}
	}
	return t
}

// checkTypeDecl resolves one TypeDecl into a typename binding (and, for
// a sum type, one constructor UncheckedVar per option, registered so
// internal/generic can instantiate them at call sites).
func (c *Checker) checkTypeDecl(mod *scope.ModuleScope, u *bound.UncheckedType) {
	decl, ok := u.Node.(*astiface.TypeDecl)
	if !ok {
		return
	}
	for _, p := range decl.Params {
		mod.PutTypeVariableBinding(p, &types.Variable{Name: p, Sp: decl.Sp})
	}

	var def types.Term
	var err error
	switch body := decl.Def.(type) {
	case *astiface.SumTypeExpr:
		def, err = c.resolveSumType(mod, decl, body)
	default:
		def, err = c.resolveTypeExpr(mod, decl.Def)
		if err == nil {
			if s, ok := def.(*types.Struct); ok && s.Name == "" {
				s.Name = decl.Name
			}
		}
	}
	if err != nil {
		sp := decl.Span()
		c.Sink.Report(diag.New(diag.TYPUnifyFailed, diag.PhaseTypeCheck, diag.Error, &sp, "type %s: %v", decl.Name, err))
		return
	}

	for i := len(decl.Params) - 1; i >= 0; i-- {
		def = &types.Lambda{Sp: decl.Sp, Param: decl.Params[i], Body: def}
	}
	if err := mod.PutNominalTypename(decl.Name, def); err != nil {
		sp := decl.Span()
		c.Sink.Report(diag.New(diag.SCPRedefinition, diag.PhaseTypeCheck, diag.Error, &sp, "%v", err))
	}
}

// resolveSumType resolves every option of a sum-type declaration to a
// Managed(Struct) variant, builds the closed Sum term via NewSum, and
// registers one constructor UncheckedVar per option so calls to it are
// instantiated like any other generic-shaped callable.
func (c *Checker) resolveSumType(mod *scope.ModuleScope, decl *astiface.TypeDecl, body *astiface.SumTypeExpr) (types.Term, error) {
	options := make([]types.Term, len(body.Options))
	for i, opt := range body.Options {
		st, err := c.resolveStructType(mod, &astiface.StructTypeExpr{Sp: decl.Sp, Fields: opt.Fields, Managed: true}, decl.Name+"."+opt.Name)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", opt.Name, err)
		}
		options[i] = &types.Managed{Sp: decl.Sp, Inner: st}

		ctorArgs := make([]types.Term, len(opt.Fields))
		copy(ctorArgs, st.Dims)
		// Return is fixed up below, once NewSum has produced the final
		// (possibly deduplicated/collapsed) canonical sum term.
		ctorSig := &types.Function{
			Sp:   decl.Sp,
			Args: &types.Args{Dims: ctorArgs},
		}
		u := &bound.UncheckedVar{FQN: mod.FQN(opt.Name), Node: decl, Module: mod.Name, CtorSig: ctorSig}
		if err := mod.Program().PutUncheckedVar(u); err != nil {
			// redeclaration across options sharing a constructor name is a
			// user error, reported once at the owning type's span.
			sp := decl.Span()
			c.Sink.Report(diag.New(diag.SCPRedefinition, diag.PhaseTypeCheck, diag.Error, &sp, "%v", err))
		}
	}
	sum := types.NewSum(decl.Sp, options...)
	// fix up every ctor's Return to the final canonical sum (NewSum may
	// have deduplicated/sorted/collapsed it).
	for _, opt := range body.Options {
		if u, ok := mod.Program().LookupUncheckedVar(mod.FQN(opt.Name)); ok {
			u.CtorSig.Return = sum
		}
	}
	return sum, nil
}
