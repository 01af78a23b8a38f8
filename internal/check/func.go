package check

import (
	"fmt"
	"strings"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/lower"
	"github.com/sunholo/langc/internal/scope"
	"github.com/sunholo/langc/internal/types"
)

// funcCtx bundles the state shared by every statement/expression
// resolved within one function body: the owning module, the lowering
// context emitting into that function's IR, and the Checker for
// recursive lookups (nested calls, nested type resolution).
type funcCtx struct {
	checker *Checker
	mod     *scope.ModuleScope
	fn      *scope.FunctionScope
	lc      *lower.Ctx
}

func (fc *funcCtx) env(sc scope.Scope) scopeTypeEnv { return scopeTypeEnv{sc} }

// checkFuncDecl checks and lowers one function declaration. subst is
// non-nil when this is a generic definition being re-checked under a
// call-site substitution (internal/generic's callback); it is nil for an
// ordinary top-level check.
func (c *Checker) checkFuncDecl(u *bound.UncheckedVar, subst *scope.GenericSubstitutionScope) (*bound.BoundVar, error) {
	decl, ok := u.Node.(*astiface.FuncDecl)
	if !ok {
		return nil, fmt.Errorf("check: %s is not a function declaration", u.FQN)
	}
	mod, err := modOf(c.Prog, u.Module)
	if err != nil {
		return nil, err
	}
	if decl.IsLink {
		return c.checkLinkDecl(mod, decl)
	}

	var parent scope.Scope = mod
	if subst != nil {
		parent = subst
	}
	fnScope := scope.NewFunctionScope(parent, decl.Name)

	irFn := &ir.Function{Name: irFuncName(u.FQN, subst), GCStrategy: "langc-gc"}
	b := ir.NewBuilder(irFn)
	entry := b.NewBlock("entry")
	b.SetInsertPoint(entry)
	lc := lower.NewCtx(mod.IRModule, b)
	fc := &funcCtx{checker: c, mod: mod, fn: fnScope, lc: lc}

	paramTypes := make([]types.Term, len(decl.Params))
	irParams := make([]ir.Param, len(decl.Params))
	for i, p := range decl.Params {
		pt, err := c.paramType(fnScope, decl.Name, p)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		paramTypes[i] = pt
		irTy := lc.IRTypeOf(pt)
		irParams[i] = ir.Param{ID: ir.ValueID(i), Ty: irTy, Name: p.Name}
		if err := fnScope.PutBoundVariable(p.Name, &bound.BoundVar{
			Name: p.Name, Type: &bound.BoundType{Type: pt, IRType: irTy}, Value: irParams[i],
		}); err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
	}
	irFn.Params = irParams

	if decl.Return != nil {
		rt, err := c.resolveTypeExpr(fnScope, decl.Return)
		if err != nil {
			return nil, fmt.Errorf("return type: %w", err)
		}
		fnScope.SetReturnType(rt)
		irFn.Return = lc.IRTypeOf(rt)
	}

	if decl.Body != nil {
		fc.checkBlock(fnScope, decl.Body)
	}
	if !b.Terminated() {
		if decl.Return == nil {
			irFn.Return = ir.VoidType{}
			lc.EmitReturn(nil)
		} else {
			sp := decl.Span()
			c.Sink.Report(diag.New(diag.CTLNotAllPathsReturn, diag.PhaseTypeCheck, diag.Error, &sp, "function %s: not all paths return a value", decl.Name))
			b.Unreachable()
		}
	}

	retType := fnScope.ReturnConstraint()
	var finalReturn types.Term
	if *retType != nil {
		finalReturn = *retType
		irFn.Return = lc.IRTypeOf(finalReturn)
	} else {
		finalReturn = &types.Struct{Name: "void"}
		irFn.Return = ir.VoidType{}
	}

	mod.IRModule.Functions = append(mod.IRModule.Functions, irFn)

	fnType := &types.Function{Sp: decl.Sp, Args: &types.Args{Dims: paramTypes}, Return: finalReturn}
	bv := &bound.BoundVar{
		Name: decl.Name,
		Type: &bound.BoundType{Type: fnType, IRType: ir.PointerType{Elem: ir.FuncSigType{Params: paramIRTypes(irParams), Return: irFn.Return}}},
		Value: ir.GlobalRef{Name: irFn.Name, Ty: ir.FuncSigType{Params: paramIRTypes(irParams), Return: irFn.Return}},
	}
	if subst == nil {
		if err := mod.PutBoundVariable(decl.Name, bv); err != nil {
			return nil, err
		}
	}
	if types.IsGround(bv.Type.Type) {
		c.Prog.PutBoundType(bv.Type)
	}
	return bv, nil
}

// checkCtorDecl builds a sum-type constructor's body: allocate a managed
// object shaped like its option struct, store each argument into its
// field in order, and return the pointer. There is no source-level
// function body for a constructor (u.Node is the owning TypeDecl, not a
// FuncDecl), so this does not go through checkFuncDecl at all.
func (c *Checker) checkCtorDecl(u *bound.UncheckedVar, subst *scope.GenericSubstitutionScope) (*bound.BoundVar, error) {
	mod, err := modOf(c.Prog, u.Module)
	if err != nil {
		return nil, err
	}
	ctorName := strings.TrimPrefix(u.FQN, mod.Name+".")
	optionStruct := findOption(u.CtorSig.Return, ctorName)
	if optionStruct == nil {
		return nil, fmt.Errorf("check: constructor %s: option struct not found", u.FQN)
	}

	irFn := &ir.Function{Name: irFuncName(u.FQN, subst), GCStrategy: "langc-gc"}
	b := ir.NewBuilder(irFn)
	b.SetInsertPoint(b.NewBlock("entry"))
	lc := lower.NewCtx(mod.IRModule, b)

	irParams := make([]ir.Param, len(optionStruct.Dims))
	for i, ft := range optionStruct.Dims {
		irParams[i] = ir.Param{ID: ir.ValueID(i), Ty: lc.IRTypeOf(ft), Name: fieldNameAt(optionStruct, i)}
	}
	irFn.Params = irParams

	objTy := &types.Managed{Inner: optionStruct}
	lc.IRTypeOf(objTy) // registers the option's TypeInfoRecord before allocation
	ptr := lc.EmitAllocManaged(optionStruct, nil)
	for i, ft := range optionStruct.Dims {
		addr := b.GEP(ptr, []int{i}, lc.IRTypeOf(ft), true)
		b.Store(addr, irParams[i])
	}
	irFn.Return = ir.PointerType{Elem: ir.VarT}
	lc.EmitReturn(ptr)
	mod.IRModule.Functions = append(mod.IRModule.Functions, irFn)

	bv := &bound.BoundVar{
		Name: ctorName,
		Type: &bound.BoundType{Type: u.CtorSig, IRType: ir.PointerType{Elem: ir.FuncSigType{Params: paramIRTypes(irParams), Return: irFn.Return}}},
		Value: ir.GlobalRef{Name: irFn.Name, Ty: ir.FuncSigType{Params: paramIRTypes(irParams), Return: irFn.Return}},
	}
	if subst == nil {
		if err := mod.PutBoundVariable(ctorName, bv); err != nil {
			return nil, err
		}
	}
	return bv, nil
}

// findOption locates the Managed(Struct) option named typeName.ctorName
// within sumType (a *types.Sum, or the bare collapsed option for a
// single-constructor sum).
func findOption(sumType types.Term, ctorName string) *types.Struct {
	options := []types.Term{sumType}
	if s, ok := sumType.(*types.Sum); ok {
		options = s.Options
	}
	for _, opt := range options {
		m, ok := opt.(*types.Managed)
		if !ok {
			continue
		}
		st, ok := m.Inner.(*types.Struct)
		if !ok {
			continue
		}
		if strings.HasSuffix(st.Name, "."+ctorName) || st.Name == ctorName {
			return st
		}
	}
	return nil
}

func fieldNameAt(st *types.Struct, i int) string {
	for name, idx := range st.NameIndex {
		if idx == i {
			return name
		}
	}
	return ""
}

// paramType resolves a parameter's declared type, or, for a nil-typed
// (generic) parameter, the type variable bound under its stable
// genericParamVarName — seeded into the scope chain by a
// GenericSubstitutionScope when re-checking an instantiated body, or else
// a fresh variable of that same name when checking a definition that has
// not (yet) been called through internal/generic.
func (c *Checker) paramType(sc scope.Scope, declName string, p astiface.Param) (types.Term, error) {
	if p.Type != nil {
		return c.resolveTypeExpr(sc, p.Type)
	}
	name := genericParamVarName(declName, p.Name)
	if v, ok := sc.LookupTypeVariableBinding(name); ok {
		return v, nil
	}
	return &types.Variable{Name: name, Sp: p.Sp}, nil
}

func paramIRTypes(ps []ir.Param) []ir.Type {
	out := make([]ir.Type, len(ps))
	for i, p := range ps {
		out[i] = p.Ty
	}
	return out
}

// checkLinkDecl registers an extern/link function as a BoundVar pointing
// at an IsDeclOnly ir.Function; its body is supplied by the runtime.
func (c *Checker) checkLinkDecl(mod *scope.ModuleScope, decl *astiface.FuncDecl) (*bound.BoundVar, error) {
	lc := lower.NewCtx(mod.IRModule, nil)
	dims := make([]types.Term, len(decl.Params))
	irParams := make([]ir.Type, len(decl.Params))
	for i, p := range decl.Params {
		t, err := c.paramType(mod, decl.Name, p)
		if err != nil {
			return nil, err
		}
		dims[i] = t
		irParams[i] = lc.IRTypeOf(t)
	}
	var ret types.Term = &types.Struct{Name: "void"}
	retIR := ir.Type(ir.VoidType{})
	if decl.Return != nil {
		t, err := c.resolveTypeExpr(mod, decl.Return)
		if err != nil {
			return nil, err
		}
		ret = t
		retIR = lc.IRTypeOf(t)
	}
	irFn := &ir.Function{Name: decl.Name, Params: namedParams(irParams), Return: retIR, IsDeclOnly: true, LinkName: decl.LinkAs}
	mod.IRModule.Functions = append(mod.IRModule.Functions, irFn)

	fnType := &types.Function{Sp: decl.Sp, Args: &types.Args{Dims: dims}, Return: ret}
	bv := &bound.BoundVar{
		Name:  decl.Name,
		Type:  &bound.BoundType{Type: fnType, IRType: ir.PointerType{Elem: ir.FuncSigType{Params: irParams, Return: retIR}}},
		Value: ir.GlobalRef{Name: irFn.Name, Ty: ir.FuncSigType{Params: irParams, Return: retIR}},
	}
	if err := mod.PutBoundVariable(decl.Name, bv); err != nil {
		return nil, err
	}
	return bv, nil
}

func namedParams(tys []ir.Type) []ir.Param {
	out := make([]ir.Param, len(tys))
	for i, t := range tys {
		out[i] = ir.Param{ID: ir.ValueID(i), Ty: t}
	}
	return out
}

// checkModuleVarDecl resolves a module-level var/let, storing its
// initializer in __init_module_vars and (when the value is managed)
// registering a GC-visit call in __visit_module_vars.
func (c *Checker) checkModuleVarDecl(mod *scope.ModuleScope, u *bound.UncheckedVar) (*bound.BoundVar, error) {
	decl, ok := u.Node.(*astiface.VarDecl)
	if !ok {
		return nil, fmt.Errorf("check: %s is not a variable declaration", u.FQN)
	}
	initFn, initBldr := c.Prog.UpsertInitModuleVarsFunction()
	lc := lower.NewCtx(mod.IRModule, initBldr)
	fnScope := scope.NewFunctionScope(mod, "__init_module_vars")
	fc := &funcCtx{checker: c, mod: mod, fn: fnScope, lc: lc}

	var declType types.Term
	var initVal ir.Value
	if decl.Init != nil {
		t, v, err := fc.resolveExpr(fnScope, decl.Init)
		if err != nil {
			return nil, err
		}
		declType, initVal = t, v
	} else if decl.Type != nil {
		t, err := c.resolveTypeExpr(fnScope, decl.Type)
		if err != nil {
			return nil, err
		}
		if types.IsManagedPtr(t) {
			sp := decl.Span()
			c.Sink.Report(diag.New(diag.TYPMissingInit, diag.PhaseTypeCheck, diag.Error, &sp, "managed variable %s needs an initializer", decl.Name))
			return nil, fmt.Errorf("missing initializer for %s", decl.Name)
		}
		declType = t
	} else {
		sp := decl.Span()
		c.Sink.Report(diag.New(diag.TYPMissingInit, diag.PhaseTypeCheck, diag.Error, &sp, "variable %s needs an initializer or an explicit type", decl.Name))
		return nil, fmt.Errorf("missing initializer for %s", decl.Name)
	}
	if decl.Type != nil && decl.Init != nil {
		want, err := c.resolveTypeExpr(fnScope, decl.Type)
		if err != nil {
			return nil, err
		}
		declType = want
	}

	irTy := lc.IRTypeOf(declType)
	global := &ir.GlobalVar{Name: mod.FQN(decl.Name), Ty: irTy, Managed: types.IsManagedPtr(declType), ZeroInit: decl.Init == nil}
	mod.IRModule.Globals = append(mod.IRModule.Globals, global)
	globalRef := ir.GlobalRef{Name: global.Name, Ty: irTy}
	if initVal != nil {
		lower.EmitModuleVarInit(initBldr, globalRef, initVal)
	}
	if global.Managed {
		visitFn, vb := c.Prog.VisitModuleVarsFunction()
		lower.EmitModuleVarVisit(vb, visitFn.Params[0], globalRef)
	}

	bv := &bound.BoundVar{
		Name: decl.Name,
		Type: &bound.BoundType{Type: &types.Ref{Sp: decl.Sp, Inner: declType}, IRType: ir.PointerType{Elem: irTy}},
		Value: globalRef, IsGlobal: true,
	}
	if err := mod.PutBoundVariable(decl.Name, bv); err != nil {
		return nil, err
	}
	_ = initFn
	return bv, nil
}

// irFuncName derives the IR-level symbol for a checked function:
// its FQN, sanitized, plus a monomorphization suffix when subst is set.
func irFuncName(fqn string, subst *scope.GenericSubstitutionScope) string {
	name := sanitizeSymbol(fqn)
	if subst == nil {
		return name
	}
	return name + "$" + sanitizeSymbol(types.Signature(subst.CalleeSignature))
}

func sanitizeSymbol(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9', b == '_', b == '.':
			out = append(out, b)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
