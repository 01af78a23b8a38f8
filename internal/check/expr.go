package check

import (
	"fmt"
	"strconv"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/scope"
	"github.com/sunholo/langc/internal/types"
	"github.com/sunholo/langc/internal/unify"
)

// resolveExpr infers e's type and emits its IR, in one pass.
func (fc *funcCtx) resolveExpr(sc scope.Scope, e astiface.Expr) (types.Term, ir.Value, error) {
	switch n := e.(type) {
	case *astiface.Ident:
		return fc.resolveIdent(sc, n)
	case *astiface.Lit:
		return fc.resolveLit(n)
	case *astiface.Call:
		return fc.resolveCall(sc, n)
	case *astiface.BinOp:
		return fc.resolveBinOp(sc, n)
	case *astiface.CondExpr:
		return fc.resolveCondExpr(sc, n)
	case *astiface.Dot:
		return fc.resolveDot(sc, n)
	case *astiface.Index:
		return fc.resolveIndex(sc, n)
	case *astiface.Cast:
		return fc.resolveCast(sc, n)
	case *astiface.TypeIDOf:
		return fc.resolveTypeIDOf(sc, n)
	case *astiface.SizeOf:
		return fc.resolveSizeOf(sc, n)
	case *astiface.TupleLit:
		return fc.resolveTupleLit(sc, n)
	case *astiface.ArrayLit:
		return fc.resolveArrayLit(sc, n)
	case *astiface.PrefixOp:
		return fc.resolvePrefixOp(sc, n)
	case *astiface.Bang:
		return fc.resolveBang(sc, n)
	case *astiface.MatchExpr:
		return fc.resolveMatchExpr(sc, n)
	default:
		return nil, nil, fmt.Errorf("check: unsupported expression %T", e)
	}
}

func (fc *funcCtx) unify(a, b types.Term, sc scope.Scope) (types.Substitution, error) {
	r := unify.Unify(a, b, fc.env(sc), types.Substitution{})
	if !r.OK {
		return nil, fmt.Errorf("%s: %s", diag.TYPUnifyFailed, r.Reason)
	}
	return r.Subst, nil
}

func (fc *funcCtx) expectBool(t types.Term, sp astiface.Span) error {
	if id, ok := t.(*types.Id); ok && id.Name == "bool" {
		return nil
	}
	fc.checker.Sink.Report(diag.New(diag.TYPUnifyFailed, diag.PhaseTypeCheck, diag.Error, &sp, "expected bool, got %s", t))
	return fmt.Errorf("expected bool, got %s", t)
}

func (fc *funcCtx) resolveIdent(sc scope.Scope, n *astiface.Ident) (types.Term, ir.Value, error) {
	name := n.Name
	if n.Module != "" {
		name = n.Module + "." + n.Name
	}
	bv, err := sc.GetBoundVariable(name, true)
	if err != nil {
		return nil, nil, err
	}
	if ref, ok := bv.Type.Type.(*types.Ref); ok {
		// an l-value read: reading a `var`/`let` slot loads through it.
		ld := fc.lc.Builder.Load(bv.Value, fc.lc.IRTypeOf(ref.Inner))
		return ref.Inner, ld, nil
	}
	return bv.Type.Type, bv.Value, nil
}

func (fc *funcCtx) resolveLit(n *astiface.Lit) (types.Term, ir.Value, error) {
	switch n.Kind {
	case astiface.LitInt:
		v, err := strconv.ParseInt(n.Text, 0, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid integer literal %q: %w", n.Text, err)
		}
		return &types.Id{Sp: n.Sp, Name: "int"}, fc.lc.EmitIntLiteral(v, ir.I64), nil
	case astiface.LitFloat:
		v, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid float literal %q: %w", n.Text, err)
		}
		return &types.Id{Sp: n.Sp, Name: "float"}, fc.lc.EmitFloatLiteral(v, ir.FloatType{Bits: 64}), nil
	case astiface.LitString:
		return &types.Ptr{Sp: n.Sp, Inner: &types.Id{Name: "int8"}}, fc.internString(n.Text), nil
	case astiface.LitNull:
		return &types.Null{Sp: n.Sp}, ir.ConstNull{Ty: ir.PointerType{Elem: ir.VarT}}, nil
	default:
		return nil, nil, fmt.Errorf("check: unsupported literal kind %v", n.Kind)
	}
}

// internString appends a new module-level string constant global for
// text on every call and returns a reference to it; equal texts do not
// share a global.
func (fc *funcCtx) internString(text string) ir.Value {
	name := fmt.Sprintf("str.%d", len(fc.mod.IRModule.StringConstants))
	for _, g := range fc.mod.IRModule.StringConstants {
		if g.Name == name {
			return *g
		}
	}
	g := &ir.GlobalRef{Name: name, Ty: ir.I8}
	fc.mod.IRModule.StringConstants = append(fc.mod.IRModule.StringConstants, g)
	return *g
}

// integerBits names the surface integer types this checker recognizes and
// their native width; every one of them lowers to a signed ir.IntType (see
// builtinIRType in internal/lower), so promotion never needs to reconcile
// mixed signedness, only mixed width.
var integerBits = map[string]int{
	"int": 64, "int64": 64, "int32": 32, "int8": 8, "byte": 8,
}

func integerWidth(t types.Term) (int, bool) {
	id, ok := t.(*types.Id)
	if !ok {
		return 0, false
	}
	w, ok := integerBits[id.Name]
	return w, ok
}

func widthName(bits int) string {
	switch bits {
	case 32:
		return "int32"
	case 8:
		return "int8"
	default:
		return "int64"
	}
}

func isComparisonOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}

// binOpRuntimeNames maps a surface binary operator to the runtime operator
// function it calls when neither operand is a promotable integer pair nor a
// native-pointer compare.
var binOpRuntimeNames = map[string]string{
	"+": "__plus__", "-": "__minus__", "*": "__times__", "/": "__divide__", "%": "__mod__",
	"<": "__lt__", "<=": "__lte__", ">": "__gt__", ">=": "__gte__", "==": "__eq__", "!=": "__ineq__",
	"<<": "__shl__", ">>": "__shr__", "&": "__bitwise_and__", "|": "__bitwise_or__", "^": "__xor__",
}

// resolveBinOp dispatches a binary operator three ways: a promoted native
// op on two integers, a direct native-pointer compare, or else a call
// through the runtime's by-name operator contract (__plus__, __eq__, ...)
// so struct/managed operands and user-overloaded operators both work.
func (fc *funcCtx) resolveBinOp(sc scope.Scope, n *astiface.BinOp) (types.Term, ir.Value, error) {
	lt, lv, err := fc.resolveExpr(sc, n.Left)
	if err != nil {
		return nil, nil, err
	}
	rt, rv, err := fc.resolveExpr(sc, n.Right)
	if err != nil {
		return nil, nil, err
	}

	if lw, lok := integerWidth(lt); lok {
		if rw, rok := integerWidth(rt); rok {
			return fc.resolveIntBinOp(n, lv, rv, lt, rt, lw, rw)
		}
	}

	_, lNull := lt.(*types.Null)
	_, rNull := rt.(*types.Null)
	_, lPtr := lt.(*types.Ptr)
	_, rPtr := rt.(*types.Ptr)
	if isComparisonOp(n.Op) && (lNull || rNull || (lPtr && rPtr)) {
		return &types.Id{Sp: n.Sp, Name: "bool"}, fc.lc.EmitBinOp(n.Op, lv, rv, ir.Ptr8), nil
	}

	runtimeName, ok := binOpRuntimeNames[n.Op]
	if !ok {
		return nil, nil, fmt.Errorf("check: unsupported binary operator %s", n.Op)
	}
	return fc.callRuntimeFn(sc, runtimeName, []ir.Value{lv, rv}, n.Span(), fmt.Sprintf("operator %s", n.Op))
}

// resolveIntBinOp implements the integer-pair promotion rule: the operand
// of narrower width is sign-extended up to the wider operand's width (both
// surface integer types are signed), and the op is emitted once at that
// common width. A non-comparison result keeps the wider operand's own
// type name (the left operand's when the widths are equal).
func (fc *funcCtx) resolveIntBinOp(n *astiface.BinOp, lv, rv ir.Value, lt, rt types.Term, lw, rw int) (types.Term, ir.Value, error) {
	width := lw
	if rw > width {
		width = rw
	}
	opIRTy := ir.IntType{Bits: width, Signed: true}
	if lw < width {
		lv = fc.lc.EmitCast(ir.CastSExt, lv, opIRTy)
	}
	if rw < width {
		rv = fc.lc.EmitCast(ir.CastSExt, rv, opIRTy)
	}
	if isComparisonOp(n.Op) {
		return &types.Id{Sp: n.Sp, Name: "bool"}, fc.lc.EmitBinOp(n.Op, lv, rv, opIRTy), nil
	}
	resultName := lt.(*types.Id).Name
	if rw > lw {
		resultName = rt.(*types.Id).Name
	}
	return &types.Id{Sp: n.Sp, Name: resultName}, fc.lc.EmitBinOp(n.Op, lv, rv, opIRTy), nil
}

// resolveCall resolves a callsite: every bound (already-checked) overload
// is tried first, by arity and unification against its fixed signature;
// failing that, every unchecked (generic or constructor) candidate is
// tried by building a synthetic callee signature from its declaration and
// handing the unification's substitution to internal/generic.
func (fc *funcCtx) resolveCall(sc scope.Scope, n *astiface.Call) (types.Term, ir.Value, error) {
	name, err := calleeName(n.Callee)
	if err != nil {
		return nil, nil, err
	}
	argTypes := make([]types.Term, len(n.Args))
	argVals := make([]ir.Value, len(n.Args))
	for i, a := range n.Args {
		t, v, err := fc.resolveExpr(sc, a)
		if err != nil {
			return nil, nil, err
		}
		argTypes[i] = t
		argVals[i] = v
	}

	candidates := sc.GetCallables(name, true)
	if len(candidates) == 0 {
		return nil, nil, fmt.Errorf("%s: no callable named %q", diag.SCPMissingSymbol, name)
	}

	for _, cand := range candidates {
		if cand.Bound == nil {
			continue
		}
		fnType, ok := cand.Bound.Type.Type.(*types.Function)
		if !ok || len(fnType.Args.Dims) != len(argTypes) {
			continue
		}
		sub, ok := fc.unifyArgs(fnType.Args.Dims, argTypes, sc)
		if !ok {
			continue
		}
		retType := types.Rebind(fnType.Return, sub)
		irName := cand.Bound.Value.(ir.GlobalRef).Name
		return retType, fc.lc.EmitCall(irName, argVals, fc.lc.IRTypeOf(retType)), nil
	}

	for _, cand := range candidates {
		if cand.Unchecked == nil {
			continue
		}
		u := cand.Unchecked
		defMod, err := modOf(fc.checker.Prog, u.Module)
		if err != nil {
			return nil, nil, err
		}

		var calleeType *types.Function
		if u.CtorSig != nil {
			if len(u.CtorSig.Args.Dims) != len(argTypes) {
				continue
			}
			calleeType = u.CtorSig
		} else {
			decl, ok := u.Node.(*astiface.FuncDecl)
			if !ok || len(decl.Params) != len(argTypes) {
				continue
			}
			dims := make([]types.Term, len(decl.Params))
			for i, p := range decl.Params {
				if p.Type != nil {
					t, err := fc.checker.resolveTypeExpr(sc, p.Type)
					if err != nil {
						return nil, nil, err
					}
					dims[i] = t
				} else {
					dims[i] = &types.Variable{Name: genericParamVarName(decl.Name, p.Name), Sp: p.Sp}
				}
			}
			var ret types.Term = types.FreshVariable(decl.Sp)
			if decl.Return != nil {
				t, err := fc.checker.resolveTypeExpr(sc, decl.Return)
				if err != nil {
					return nil, nil, err
				}
				ret = t
			}
			calleeType = &types.Function{Sp: decl.Sp, Args: &types.Args{Dims: dims}, Return: ret}
		}

		sub, ok := fc.unifyArgs(calleeType.Args.Dims, argTypes, sc)
		if !ok {
			continue
		}

		var bv *bound.BoundVar
		if u.CtorSig != nil {
			bv, err = fc.checker.Inst.InstantiateCtor(u, defMod, sub)
		} else {
			bv, err = fc.checker.Inst.Instantiate(u, defMod, calleeType, sub)
		}
		if err != nil {
			return nil, nil, err
		}
		// calleeType.Return is a placeholder for an inferred-return
		// definition (a fresh variable never constrained by unifyArgs,
		// since only parameters are unified against the call's
		// arguments); bv.Type.Type carries the real return type the
		// instantiation resolved the body to, so prefer that whenever
		// it's available.
		retType := types.Rebind(calleeType.Return, sub)
		if fnType, ok := bv.Type.Type.(*types.Function); ok {
			retType = fnType.Return
		}
		irName := bv.Value.(ir.GlobalRef).Name
		return retType, fc.lc.EmitCall(irName, argVals, fc.lc.IRTypeOf(retType)), nil
	}

	sp := n.Span()
	fc.checker.Sink.Report(diag.New(diag.SCPNoOverload, diag.PhaseTypeCheck, diag.Error, &sp, "no matching overload for %q with %d argument(s)", name, len(argTypes)))
	return nil, nil, fmt.Errorf("no matching overload for %q", name)
}

// unifyArgs unifies params[i] against args[i] in order, threading the
// accumulated substitution through each step so an earlier argument can
// bind a type variable a later one also mentions.
func (fc *funcCtx) unifyArgs(params, args []types.Term, sc scope.Scope) (types.Substitution, bool) {
	cur := types.Substitution{}
	for i := range params {
		p := types.Rebind(params[i], cur)
		a := types.Rebind(args[i], cur)
		r := unify.Unify(p, a, fc.env(sc), cur)
		if !r.OK {
			return nil, false
		}
		cur = r.Subst
	}
	return cur, true
}

// calleeName extracts the (possibly module-qualified) name a Call targets.
func calleeName(e astiface.Expr) (string, error) {
	id, ok := e.(*astiface.Ident)
	if !ok {
		return "", fmt.Errorf("check: unsupported call target %T", e)
	}
	if id.Module != "" {
		return id.Module + "." + id.Name, nil
	}
	return id.Name, nil
}

// genericParamVarName derives the stable type-variable name a function
// declaration's untyped parameter is bound to: shared by the call site
// (which uses it to build a unifiable callee signature) and checkFuncDecl
// (which looks it up in the GenericSubstitutionScope internal/generic
// pushes before re-checking the body), so both agree on the same key
// without the parameter having an explicit generic-parameter-list name.
func genericParamVarName(declName, paramName string) string {
	return declName + "$" + paramName
}

func (fc *funcCtx) resolveCondExpr(sc scope.Scope, n *astiface.CondExpr) (types.Term, ir.Value, error) {
	switch n.Kind {
	case astiface.CondAnd, astiface.CondOr:
		lt, lv, err := fc.resolveExpr(sc, n.Cond)
		if err != nil {
			return nil, nil, err
		}
		if err := fc.expectBool(lt, n.Cond.Span()); err != nil {
			return nil, nil, err
		}
		rt, rv, err := fc.resolveExpr(sc, n.Truthy)
		if err != nil {
			return nil, nil, err
		}
		if err := fc.expectBool(rt, n.Truthy.Span()); err != nil {
			return nil, nil, err
		}
		op := "&"
		if n.Kind == astiface.CondOr {
			op = "|"
		}
		return &types.Id{Sp: n.Sp, Name: "bool"}, fc.lc.EmitBinOp(op, lv, rv, ir.I1), nil
	default:
		ct, cv, err := fc.resolveExpr(sc, n.Cond)
		if err != nil {
			return nil, nil, err
		}
		if err := fc.expectBool(ct, n.Cond.Span()); err != nil {
			return nil, nil, err
		}
		return fc.emitTernary(sc, cv, n.Truthy, n.Falsey)
	}
}

// emitTernary builds the then/else/merge blocks by hand (rather than via
// internal/lower's EmitCond) because the merge Phi's result type is only
// known once both branches have been resolved, and resolving a branch
// must happen with the builder's insert point already inside that
// branch's own block.
func (fc *funcCtx) emitTernary(sc scope.Scope, cond ir.Value, thenE, elseE astiface.Expr) (types.Term, ir.Value, error) {
	b := fc.lc.Builder
	thenLabel := fc.lc.FreshLabel("cond.then")
	elseLabel := fc.lc.FreshLabel("cond.else")
	mergeLabel := fc.lc.FreshLabel("cond.merge")
	b.CondBr(cond, thenLabel, elseLabel)

	b.SetInsertPoint(b.NewBlock(thenLabel))
	thenType, thenVal, err := fc.resolveExpr(sc, thenE)
	if err != nil {
		return nil, nil, err
	}
	thenEnd := b.CurrentBlock().Label
	if !b.Terminated() {
		b.Br(mergeLabel)
	}

	b.SetInsertPoint(b.NewBlock(elseLabel))
	elseType, elseVal, err := fc.resolveExpr(sc, elseE)
	if err != nil {
		return nil, nil, err
	}
	elseEnd := b.CurrentBlock().Label
	if !b.Terminated() {
		b.Br(mergeLabel)
	}

	sub, err := fc.unify(thenType, elseType, sc)
	if err != nil {
		sp := thenE.Span()
		fc.checker.Sink.Report(diag.New(diag.TYPUnifyFailed, diag.PhaseTypeCheck, diag.Error, &sp, "ternary branches disagree: %v", err))
	}
	resultType := types.Rebind(thenType, sub)
	irTy := fc.lc.IRTypeOf(resultType)

	b.SetInsertPoint(b.NewBlock(mergeLabel))
	phi := b.Phi(irTy, []ir.PhiIncoming{{Val: thenVal, Block: thenEnd}, {Val: elseVal, Block: elseEnd}})
	return resultType, phi, nil
}

// resolveDot reads a struct field. Module-qualified references (`mod.x`)
// are a distinct Ident{Module: "mod"} node, not a Dot, so every Dot target
// here is a plain value expression.
func (fc *funcCtx) resolveDot(sc scope.Scope, n *astiface.Dot) (types.Term, ir.Value, error) {
	baseType, baseVal, err := fc.resolveExpr(sc, n.Target)
	if err != nil {
		return nil, nil, err
	}
	st, managedHop := structOf(baseType)
	if st == nil {
		return nil, nil, fmt.Errorf("%s has no field %s", baseType, n.Field)
	}
	idx, ok := st.NameIndex[n.Field]
	if !ok {
		return nil, nil, fmt.Errorf("type %s has no field %q", st, n.Field)
	}
	fieldType := st.Dims[idx]
	fieldIR := fc.lc.IRTypeOf(fieldType)
	return fieldType, fc.lc.EmitDot(baseVal, idx, fieldIR, managedHop), nil
}

// structOf finds the Struct term to read a field from, unwrapping one
// level of Ptr/Managed/Ref as needed, and reports whether the field GEP
// must hop over a managed header.
func structOf(t types.Term) (*types.Struct, bool) {
	switch v := t.(type) {
	case *types.Struct:
		return v, false
	case *types.Ref:
		s, hop := structOf(v.Inner)
		return s, hop
	case *types.Ptr:
		if m, ok := v.Inner.(*types.Managed); ok {
			if s, ok := m.Inner.(*types.Struct); ok {
				return s, true
			}
		}
		return structOf(v.Inner)
	case *types.Managed:
		if s, ok := v.Inner.(*types.Struct); ok {
			return s, true
		}
	}
	return nil, false
}

func (fc *funcCtx) resolveIndex(sc scope.Scope, n *astiface.Index) (types.Term, ir.Value, error) {
	baseType, baseVal, err := fc.resolveExpr(sc, n.Target)
	if err != nil {
		return nil, nil, err
	}
	_, keyVal, err := fc.resolveExpr(sc, n.Key)
	if err != nil {
		return nil, nil, err
	}
	st, ok := baseType.(*types.Struct)
	if !ok || len(st.Dims) == 0 {
		return nil, nil, fmt.Errorf("%s is not indexable", baseType)
	}
	elemType := st.Dims[0]
	if ci, ok := keyVal.(ir.ConstInt); ok {
		return elemType, fc.lc.EmitIndex(baseVal, int(ci.Val), fc.lc.IRTypeOf(elemType)), nil
	}
	return elemType, fc.lc.EmitIndex(baseVal, 0, fc.lc.IRTypeOf(elemType)), nil
}

func (fc *funcCtx) resolveCast(sc scope.Scope, n *astiface.Cast) (types.Term, ir.Value, error) {
	_, v, err := fc.resolveExpr(sc, n.Target)
	if err != nil {
		return nil, nil, err
	}
	to, err := fc.checker.resolveTypeExpr(sc, n.Type)
	if err != nil {
		return nil, nil, err
	}
	toIR := fc.lc.IRTypeOf(to)
	kind := castKindFor(toIR)
	return to, fc.lc.EmitCast(kind, v, toIR), nil
}

func castKindFor(to ir.Type) ir.CastKind {
	switch to.(type) {
	case ir.PointerType:
		return ir.CastBitcast
	default:
		return ir.CastSExt
	}
}

// resolveTypeIDOf reads the target's *dynamic* type tag at runtime: e's
// static type may be a Sum covering several constructors, so only the
// value itself (not its compile-time type) knows which one it is. Mirrors
// testCtorPattern's use of the same runtime entry point for a known
// constructor's static tag.
func (fc *funcCtx) resolveTypeIDOf(sc scope.Scope, n *astiface.TypeIDOf) (types.Term, ir.Value, error) {
	t, v, err := fc.resolveExpr(sc, n.Expr)
	if err != nil {
		return nil, nil, err
	}
	inner := t
	if p, ok := t.(*types.Ptr); ok {
		if m, ok := p.Inner.(*types.Managed); ok {
			inner = m.Inner
		}
	}
	fc.lc.IRTypeOf(&types.Managed{Inner: inner}) // ensure TypeInfoRecord registered
	tag := fc.lc.Builder.Call("langc_rt_typeid_of", []ir.Value{v}, ir.I64)
	return &types.Id{Sp: n.Sp, Name: "int"}, tag, nil
}

func (fc *funcCtx) resolveSizeOf(sc scope.Scope, n *astiface.SizeOf) (types.Term, ir.Value, error) {
	t, err := fc.checker.resolveTypeExpr(sc, n.Type)
	if err != nil {
		return nil, nil, err
	}
	return &types.Id{Sp: n.Sp, Name: "int"}, fc.lc.EmitSizeOf(fc.lc.IRTypeOf(t)), nil
}

func (fc *funcCtx) resolveTupleLit(sc scope.Scope, n *astiface.TupleLit) (types.Term, ir.Value, error) {
	dims := make([]types.Term, len(n.Elems))
	fields := make([]ir.Type, len(n.Elems))
	vals := make([]ir.Value, len(n.Elems))
	for i, e := range n.Elems {
		t, v, err := fc.resolveExpr(sc, e)
		if err != nil {
			return nil, nil, err
		}
		dims[i] = t
		fields[i] = fc.lc.IRTypeOf(t)
		vals[i] = v
	}
	st := &types.Struct{Sp: n.Sp, Dims: dims}
	irSt := ir.StructType{Fields: fields}
	return st, fc.lc.EmitTupleLit(irSt, vals), nil
}

// isManaged reports whether t is a heap-allocated managed pointer
// (Ptr(Managed(_))), the only element shape a vector literal accepts.
func isManaged(t types.Term) bool {
	p, ok := t.(*types.Ptr)
	if !ok {
		return false
	}
	_, ok = p.Inner.(*types.Managed)
	return ok
}

// resolveArrayLit requires every element be a managed pointer and builds
// the literal through the runtime's vector contract (vector.__init_vector__,
// vector.__vector_unsafe_append__) rather than a plain stack array, so the
// result is GC-visible the same way any other managed value is.
func (fc *funcCtx) resolveArrayLit(sc scope.Scope, n *astiface.ArrayLit) (types.Term, ir.Value, error) {
	if len(n.Elems) == 0 {
		return nil, nil, fmt.Errorf("check: empty array literal needs an explicit type (not yet supported)")
	}
	elemType, firstVal, err := fc.resolveExpr(sc, n.Elems[0])
	if err != nil {
		return nil, nil, err
	}
	if !isManaged(elemType) {
		sp := n.Span()
		fc.checker.Sink.Report(diag.New(diag.LOWNonManagedElement, diag.PhaseLower, diag.Error, &sp, "array element type %s is not managed", elemType))
		return nil, nil, fmt.Errorf("%s: array element type %s is not managed", diag.LOWNonManagedElement, elemType)
	}
	vals := []ir.Value{firstVal}
	for _, e := range n.Elems[1:] {
		t, v, err := fc.resolveExpr(sc, e)
		if err != nil {
			return nil, nil, err
		}
		if _, err := fc.unify(elemType, t, sc); err != nil {
			return nil, nil, fmt.Errorf("array element type mismatch: %w", err)
		}
		vals = append(vals, v)
	}

	sizeArg := fc.lc.EmitIntLiteral(int64(len(vals)), ir.I64)
	_, vecVal, err := fc.callRuntimeFn(sc, "vector.__init_vector__", []ir.Value{sizeArg}, n.Sp, "array literal")
	if err != nil {
		return nil, nil, err
	}
	for _, v := range vals {
		if _, _, err := fc.callRuntimeFn(sc, "vector.__vector_unsafe_append__", []ir.Value{vecVal, v}, n.Sp, "array literal"); err != nil {
			return nil, nil, err
		}
	}
	listType := &types.Struct{Sp: n.Sp, Name: "vector", Dims: []types.Term{elemType}}
	return listType, vecVal, nil
}

func (fc *funcCtx) resolvePrefixOp(sc scope.Scope, n *astiface.PrefixOp) (types.Term, ir.Value, error) {
	t, v, err := fc.resolveExpr(sc, n.Operand)
	if err != nil {
		return nil, nil, err
	}
	switch n.Op {
	case "-":
		return t, fc.lc.EmitUnaryMinus(v, fc.lc.IRTypeOf(t)), nil
	case "+":
		return t, v, nil
	case "not":
		if err := fc.expectBool(t, n.Operand.Span()); err != nil {
			return nil, nil, err
		}
		return t, fc.lc.EmitNot(v), nil
	case "&":
		return &types.Ptr{Sp: n.Sp, Inner: t}, v, nil
	default:
		return nil, nil, fmt.Errorf("check: unsupported prefix operator %q", n.Op)
	}
}

// resolveBang unboxes a Maybe: `e!` is only well-typed when e's type is
// Maybe(T), and lowers to a direct re-typing of the same pointer (a
// Maybe(T) is represented identically to T when T is itself a managed
// pointer). The null check its safety depends on is not verified here:
// TYPMaybeNotChecked is reported only when `!` is applied to a non-Maybe
// type, not when a Maybe is unwrapped without a prior null check.
func (fc *funcCtx) resolveBang(sc scope.Scope, n *astiface.Bang) (types.Term, ir.Value, error) {
	t, v, err := fc.resolveExpr(sc, n.Target)
	if err != nil {
		return nil, nil, err
	}
	m, ok := t.(*types.Maybe)
	if !ok {
		sp := n.Span()
		fc.checker.Sink.Report(diag.New(diag.TYPMaybeNotChecked, diag.PhaseTypeCheck, diag.Error, &sp, "`!` applied to non-Maybe type %s", t))
		return nil, nil, fmt.Errorf("`!` applied to non-Maybe type %s", t)
	}
	return m.Just, v, nil
}
