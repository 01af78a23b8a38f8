package check

import (
	"fmt"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/life"
	"github.com/sunholo/langc/internal/lower"
	"github.com/sunholo/langc/internal/scope"
	"github.com/sunholo/langc/internal/types"
)

// checkBlock resolves every statement of blk in order, inside its own
// life frame so locals it declares are released on every exit path.
func (fc *funcCtx) checkBlock(sc scope.Scope, blk *astiface.Block) {
	fc.lc.Life.Push(life.Block)
	for _, s := range blk.Stmts {
		if fc.lc.Builder.Terminated() {
			break
		}
		if err := fc.resolveStmt(sc, s); err != nil {
			sp := s.Span()
			fc.checker.Sink.Report(diag.New(diag.TYPUnifyFailed, diag.PhaseTypeCheck, diag.Error, &sp, "%v", err))
		}
	}
	if !fc.lc.Builder.Terminated() {
		fc.lc.Life.ReleaseVars(life.Block, fc.lc.Builder, lower.EmitRelease)
	}
	fc.lc.Life.Pop()
}

func (fc *funcCtx) resolveStmt(sc scope.Scope, s astiface.Stmt) error {
	switch n := s.(type) {
	case *astiface.ExprStmt:
		_, _, err := fc.resolveExpr(sc, n.Expr)
		return err
	case *astiface.VarDecl:
		return fc.checkLocalVarDecl(sc, n)
	case *astiface.Assign:
		return fc.checkAssign(sc, n)
	case *astiface.Return:
		return fc.checkReturn(sc, n)
	case *astiface.If:
		return fc.checkIf(sc, n)
	case *astiface.While:
		return fc.checkWhile(sc, n)
	case *astiface.For:
		return fc.checkFor(sc, n)
	case *astiface.Break:
		return fc.checkBreak(sc, n)
	case *astiface.Continue:
		return fc.checkContinue(sc, n)
	case *astiface.MatchStmt:
		return fc.checkMatchStmt(sc, n)
	default:
		return fmt.Errorf("check: unsupported statement %T", s)
	}
}

// checkLocalVarDecl resolves a block-local `var`/`let`, allocating its
// stack slot and registering it as a Ref-typed bound variable, the same
// l-value shape internal/check uses for module-level var slots.
func (fc *funcCtx) checkLocalVarDecl(sc scope.Scope, n *astiface.VarDecl) error {
	var declType types.Term
	var initVal ir.Value
	if n.Init != nil {
		t, v, err := fc.resolveExpr(sc, n.Init)
		if err != nil {
			return err
		}
		declType, initVal = t, v
	}
	if n.Type != nil {
		want, err := fc.checker.resolveTypeExpr(sc, n.Type)
		if err != nil {
			return err
		}
		if declType != nil {
			if _, err := fc.unify(want, declType, sc); err != nil {
				return fmt.Errorf("variable %s: %w", n.Name, err)
			}
		}
		declType = want
	}
	if declType == nil {
		return fmt.Errorf("variable %s needs an initializer or an explicit type", n.Name)
	}

	irTy := fc.lc.IRTypeOf(declType)
	var slot ir.Value
	if initVal != nil {
		slot = fc.lc.EmitRefDecl(irTy, initVal)
	} else {
		slot = fc.lc.Builder.Alloca(irTy)
	}
	bv := &bound.BoundVar{
		Name: n.Name,
		Type: &bound.BoundType{Type: &types.Ref{Sp: n.Sp, Inner: declType}, IRType: ir.PointerType{Elem: irTy}},
		Value: slot,
	}
	if err := sc.PutBoundVariable(n.Name, bv); err != nil {
		return err
	}
	if types.IsManagedPtr(declType) && initVal != nil {
		fc.lc.TrackLocal(&bound.BoundVar{Name: n.Name, Type: &bound.BoundType{Type: declType}, Value: initVal})
	}
	return nil
}

// checkAssign resolves an l-value target's address, unifies the RHS
// against its element type, and stores through it, retaining the new
// managed value and releasing the old one when the slot is managed.
func (fc *funcCtx) checkAssign(sc scope.Scope, n *astiface.Assign) error {
	elemType, addr, err := fc.resolveLValue(sc, n.LHS)
	if err != nil {
		sp := n.Span()
		fc.checker.Sink.Report(diag.New(diag.TYPAssignToNonRef, diag.PhaseTypeCheck, diag.Error, &sp, "%v", err))
		return err
	}
	rhsType, rhsVal, err := fc.resolveExpr(sc, n.RHS)
	if err != nil {
		return err
	}

	irTy := fc.lc.IRTypeOf(elemType)
	newVal := rhsVal
	if n.Op != "=" {
		op := n.Op[:len(n.Op)-1] // "+=" -> "+"
		cur := fc.lc.Builder.Load(addr, irTy)
		if _, err := fc.unify(elemType, rhsType, sc); err != nil {
			return fmt.Errorf("compound assignment: %w", err)
		}
		newVal = fc.lc.EmitBinOp(op, cur, rhsVal, irTy)
	} else if _, err := fc.unify(elemType, rhsType, sc); err != nil {
		return fmt.Errorf("assignment: %w", err)
	}

	if types.IsManagedPtr(elemType) {
		old := fc.lc.Builder.Load(addr, irTy)
		lower.EmitRetain(fc.lc.Builder, newVal)
		fc.lc.Builder.VoidCall("langc_rt_release", []ir.Value{old})
	}
	fc.lc.EmitAssign(addr, newVal)
	return nil
}

// resolveLValue finds the address an assignment target writes through:
// an Ident must resolve to a Ref-typed slot; Dot/Index compute the field
// or element address directly via GEP, without the load EmitDot/
// EmitIndex otherwise perform for a read.
func (fc *funcCtx) resolveLValue(sc scope.Scope, e astiface.Expr) (types.Term, ir.Value, error) {
	switch n := e.(type) {
	case *astiface.Ident:
		name := n.Name
		if n.Module != "" {
			name = n.Module + "." + n.Name
		}
		bv, err := sc.GetBoundVariable(name, true)
		if err != nil {
			return nil, nil, err
		}
		ref, ok := bv.Type.Type.(*types.Ref)
		if !ok {
			return nil, nil, fmt.Errorf("%s: %s is not assignable", diag.TYPAssignToNonRef, name)
		}
		return ref.Inner, bv.Value, nil
	case *astiface.Dot:
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
		addr := fc.lc.Builder.GEP(baseVal, []int{idx}, fc.lc.IRTypeOf(fieldType), managedHop)
		return fieldType, addr, nil
	case *astiface.Index:
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
		idx := 0
		if ci, ok := keyVal.(ir.ConstInt); ok {
			idx = int(ci.Val)
		}
		elemType := st.Dims[0]
		addr := fc.lc.Builder.GEP(baseVal, []int{idx}, fc.lc.IRTypeOf(elemType), false)
		return elemType, addr, nil
	default:
		return nil, nil, fmt.Errorf("%s: %T is not assignable", diag.TYPAssignToNonRef, e)
	}
}

// checkReturn unifies (or, on the first `return`, fixes) the function's
// return-type constraint and emits the releasing return sequence.
func (fc *funcCtx) checkReturn(sc scope.Scope, n *astiface.Return) error {
	cell := fc.fn.ReturnConstraint()
	if n.Expr == nil {
		if *cell == nil {
			*cell = &types.Struct{Name: "void"}
		}
		fc.lc.EmitReturn(nil)
		return nil
	}
	t, v, err := fc.resolveExpr(sc, n.Expr)
	if err != nil {
		return err
	}
	if *cell == nil {
		*cell = t
	} else if sub, err := fc.unify(*cell, t, sc); err == nil {
		*cell = types.Rebind(*cell, sub)
	} else {
		return fmt.Errorf("return type mismatch: %w", err)
	}
	if types.IsManagedPtr(t) {
		lower.EmitRetain(fc.lc.Builder, v)
	}
	fc.lc.EmitReturn(v)
	return nil
}

// checkIf hand-builds the then/else/merge blocks (rather than going
// through internal/lower.EmitIf) so a resolution error inside either arm
// propagates instead of being silently swallowed by a func()-typed
// callback, the same reason emitTernary exists for the expression form.
func (fc *funcCtx) checkIf(sc scope.Scope, n *astiface.If) error {
	cond, cv, err := fc.resolveExpr(sc, n.Cond)
	if err != nil {
		return err
	}
	if err := fc.expectBool(cond, n.Cond.Span()); err != nil {
		return err
	}
	b := fc.lc.Builder
	thenLabel := fc.lc.FreshLabel("if.then")
	mergeLabel := fc.lc.FreshLabel("if.merge")
	elseLabel := mergeLabel
	hasElse := n.Else != nil
	if hasElse {
		elseLabel = fc.lc.FreshLabel("if.else")
	}
	b.CondBr(cv, thenLabel, elseLabel)

	b.SetInsertPoint(b.NewBlock(thenLabel))
	fc.checkBlock(sc, n.Then)
	if !b.Terminated() {
		b.Br(mergeLabel)
	}

	if hasElse {
		b.SetInsertPoint(b.NewBlock(elseLabel))
		switch els := n.Else.(type) {
		case *astiface.Block:
			fc.checkBlock(sc, els)
		case *astiface.If:
			if err := fc.checkIf(sc, els); err != nil {
				return err
			}
		default:
			return fmt.Errorf("check: unsupported else form %T", n.Else)
		}
		if !b.Terminated() {
			b.Br(mergeLabel)
		}
	}

	b.SetInsertPoint(b.NewBlock(mergeLabel))
	return nil
}

// checkWhile hand-builds the header/body/exit blocks, pushing a Loop
// life frame and a scope.LoopTargets for the body so nested break/
// continue statements resolve against this loop's real IR labels.
func (fc *funcCtx) checkWhile(sc scope.Scope, n *astiface.While) error {
	b := fc.lc.Builder
	headerLabel := fc.lc.FreshLabel("while.header")
	bodyLabel := fc.lc.FreshLabel("while.body")
	exitLabel := fc.lc.FreshLabel("while.exit")

	if !b.Terminated() {
		b.Br(headerLabel)
	}
	b.SetInsertPoint(b.NewBlock(headerLabel))
	cond, cv, err := fc.resolveExpr(sc, n.Cond)
	if err != nil {
		return err
	}
	if err := fc.expectBool(cond, n.Cond.Span()); err != nil {
		return err
	}
	b.CondBr(cv, bodyLabel, exitLabel)

	b.SetInsertPoint(b.NewBlock(bodyLabel))
	fc.lc.Life.Push(life.Loop)
	loopScope := scope.NewRunnableScope(sc, fc.fn.ReturnConstraint(), &scope.LoopTargets{ContinueLabel: headerLabel, BreakLabel: exitLabel})
	fc.checkBlock(loopScope, n.Body)
	if !b.Terminated() {
		fc.lc.Life.ReleaseVars(life.Loop, b, lower.EmitRelease)
	}
	fc.lc.Life.Pop()
	if !b.Terminated() {
		b.Br(headerLabel)
	}

	b.SetInsertPoint(b.NewBlock(exitLabel))
	return nil
}

// checkFor desugars `for x in iter { body }` into a while loop around the
// fixed __iter_begin__/__iter_end__/__iter_valid__/__iter_item__/__iterate__
// protocol: five callables resolved by name like any other call, so any
// type exposing them (builtin array, or a user-defined iterable) works
// uniformly.
//
//	let iterable = iter
//	var cursor = __iter_begin__(iterable)
//	let sentinel = __iter_end__(iterable)
//	while __iter_valid__(cursor, sentinel) {
//	    let x = __iter_item__(cursor)
//	    body
//	    cursor = __iterate__(cursor)
//	}
//
// __iterate__ advances the cursor in place in the protocol's own terms;
// since cursors here are plain SSA values rather than mutable boxes, the
// advanced cursor __iterate__ returns is stored back into cursor's slot
// at the end of each iteration to the same effect.
func (fc *funcCtx) checkFor(sc scope.Scope, n *astiface.For) error {
	_, iterVal, err := fc.resolveExpr(sc, n.Iter)
	if err != nil {
		return err
	}
	cursorType, cursorVal, err := fc.callProtocol(sc, "__iter_begin__", []ir.Value{iterVal}, n.Sp)
	if err != nil {
		return err
	}
	_, sentinelVal, err := fc.callProtocol(sc, "__iter_end__", []ir.Value{iterVal}, n.Sp)
	if err != nil {
		return err
	}
	cursorIRTy := fc.lc.IRTypeOf(cursorType)
	cursorSlot := fc.lc.EmitRefDecl(cursorIRTy, cursorVal)

	b := fc.lc.Builder
	headerLabel := fc.lc.FreshLabel("for.header")
	bodyLabel := fc.lc.FreshLabel("for.body")
	exitLabel := fc.lc.FreshLabel("for.exit")
	if !b.Terminated() {
		b.Br(headerLabel)
	}
	b.SetInsertPoint(b.NewBlock(headerLabel))
	cur := b.Load(cursorSlot, cursorIRTy)
	_, valid, err := fc.callProtocol(sc, "__iter_valid__", []ir.Value{cur, sentinelVal}, n.Sp)
	if err != nil {
		return err
	}
	b.CondBr(valid, bodyLabel, exitLabel)

	b.SetInsertPoint(b.NewBlock(bodyLabel))
	fc.lc.Life.Push(life.Loop)
	elemType, elemVal, err := fc.callProtocol(sc, "__iter_item__", []ir.Value{cur}, n.Sp)
	if err != nil {
		return err
	}
	loopScope := scope.NewRunnableScope(sc, fc.fn.ReturnConstraint(), &scope.LoopTargets{ContinueLabel: headerLabel, BreakLabel: exitLabel})
	if err := loopScope.PutBoundVariable(n.Binder, &bound.BoundVar{
		Name:  n.Binder,
		Type:  &bound.BoundType{Type: elemType, IRType: fc.lc.IRTypeOf(elemType)},
		Value: elemVal,
	}); err != nil {
		return err
	}
	fc.checkBlock(loopScope, n.Body)
	if !b.Terminated() {
		_, advanced, err := fc.callProtocol(sc, "__iterate__", []ir.Value{cur}, n.Sp)
		if err != nil {
			return err
		}
		fc.lc.EmitAssign(cursorSlot, advanced)
		fc.lc.Life.ReleaseVars(life.Loop, b, lower.EmitRelease)
	}
	fc.lc.Life.Pop()
	if !b.Terminated() {
		b.Br(headerLabel)
	}

	b.SetInsertPoint(b.NewBlock(exitLabel))
	return nil
}

// callProtocol resolves an iteration-protocol callable by name and arity
// against the enclosing scope and emits the call, for checkFor's
// desugaring.
func (fc *funcCtx) callProtocol(sc scope.Scope, name string, args []ir.Value, sp astiface.Span) (types.Term, ir.Value, error) {
	return fc.callRuntimeFn(sc, name, args, sp, "`for` loop")
}

// callRuntimeFn resolves a fixed-name external callable (a runtime
// contract symbol: an iteration-protocol step or an operator function
// like __plus__) by name and arity against the enclosing scope and
// emits the call. use names the callsite for the diagnostic reported
// when no candidate matches.
func (fc *funcCtx) callRuntimeFn(sc scope.Scope, name string, args []ir.Value, sp astiface.Span, use string) (types.Term, ir.Value, error) {
	cands := sc.GetCallables(name, true)
	for _, cand := range cands {
		if cand.Bound == nil {
			continue
		}
		fnType, ok := cand.Bound.Type.Type.(*types.Function)
		if !ok || len(fnType.Args.Dims) != len(args) {
			continue
		}
		irName := cand.Bound.Value.(ir.GlobalRef).Name
		return fnType.Return, fc.lc.EmitCall(irName, args, fc.lc.IRTypeOf(fnType.Return)), nil
	}
	fc.checker.Sink.Report(diag.New(diag.SCPMissingSymbol, diag.PhaseTypeCheck, diag.Error, &sp, "%s not found for %s", name, use))
	return nil, nil, fmt.Errorf("%s: %s not found for %s", diag.SCPMissingSymbol, name, use)
}

// checkBreak/checkContinue branch to the innermost loop's exit/header
// label, reporting a diagnostic when used outside any loop.
func (fc *funcCtx) checkBreak(sc scope.Scope, n *astiface.Break) error {
	lt := loopTargetsOf(sc)
	if lt == nil {
		sp := n.Span()
		fc.checker.Sink.Report(diag.New(diag.CTLBreakOutsideLoop, diag.PhaseTypeCheck, diag.Error, &sp, "break outside any loop"))
		return fmt.Errorf("break outside any loop")
	}
	fc.lc.EmitBreak(lt.BreakLabel)
	return nil
}

func (fc *funcCtx) checkContinue(sc scope.Scope, n *astiface.Continue) error {
	lt := loopTargetsOf(sc)
	if lt == nil {
		sp := n.Span()
		fc.checker.Sink.Report(diag.New(diag.CTLContinueOutsideLoop, diag.PhaseTypeCheck, diag.Error, &sp, "continue outside any loop"))
		return fmt.Errorf("continue outside any loop")
	}
	fc.lc.EmitContinue(lt.ContinueLabel)
	return nil
}

// loopTargetsOf finds the innermost scope.LoopTargets reachable from sc,
// however deep sc's own parent-walking LoopTargets() method reaches (a
// RunnableScope already walks its own parent chain; this only needs to
// invoke it once on whatever concrete scope is current).
func loopTargetsOf(sc scope.Scope) *scope.LoopTargets {
	if lt, ok := sc.(interface{ LoopTargets() *scope.LoopTargets }); ok {
		return lt.LoopTargets()
	}
	return nil
}
