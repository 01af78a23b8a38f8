package check

import (
	"fmt"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/scope"
	"github.com/sunholo/langc/internal/types"
)

// resolveMatchExpr lowers a `match` used as an expression: arms are
// tested in source order, each a CondBr to its own body block or the
// next arm's test; the arms' bodies reconverge through a Phi at a single
// merge block. Non-exhaustiveness is a runtime trap, not a static error,
// since patterns are not checked for coverage against a closed sum.
func (fc *funcCtx) resolveMatchExpr(sc scope.Scope, n *astiface.MatchExpr) (types.Term, ir.Value, error) {
	scrutType, scrutVal, err := fc.resolveExpr(sc, n.Scrutinee)
	if err != nil {
		return nil, nil, err
	}

	b := fc.lc.Builder
	mergeLabel := fc.lc.FreshLabel("match.merge")
	var incoming []ir.PhiIncoming
	var resultType types.Term

	for i, arm := range n.Arms {
		bodyLabel := fc.lc.FreshLabel(fmt.Sprintf("match.body%d", i))
		missLabel := fc.lc.FreshLabel(fmt.Sprintf("match.miss%d", i))

		armScope := scope.NewRunnableScope(sc, fc.fn.ReturnConstraint(), loopTargetsOf(sc))
		matched, err := fc.testPattern(armScope, arm.Pattern, scrutType, scrutVal)
		if err != nil {
			return nil, nil, err
		}
		b.CondBr(matched, bodyLabel, missLabel)

		b.SetInsertPoint(b.NewBlock(bodyLabel))
		armType, armVal, err := fc.resolveExpr(armScope, arm.Value)
		if err != nil {
			return nil, nil, err
		}
		bodyEnd := b.CurrentBlock().Label
		if !b.Terminated() {
			b.Br(mergeLabel)
			incoming = append(incoming, ir.PhiIncoming{Val: armVal, Block: bodyEnd})
		}
		if resultType == nil {
			resultType = armType
		} else if sub, err := fc.unify(resultType, armType, sc); err == nil {
			resultType = types.Rebind(resultType, sub)
		} else {
			sp := arm.Sp
			fc.checker.Sink.Report(diag.New(diag.TYPUnifyFailed, diag.PhaseTypeCheck, diag.Error, &sp, "match arms disagree: %v", err))
		}

		b.SetInsertPoint(b.NewBlock(missLabel))
	}

	sp := n.Span()
	fc.checker.Sink.Report(diag.New(diag.TYPNonExhaustive, diag.PhaseTypeCheck, diag.Error, &sp, "non-exhaustive match"))
	if !b.Terminated() {
		b.Unreachable()
	}

	b.SetInsertPoint(b.NewBlock(mergeLabel))
	if resultType == nil {
		resultType = &types.Struct{Name: "void"}
	}
	irTy := fc.lc.IRTypeOf(resultType)
	return resultType, b.Phi(irTy, incoming), nil
}

// checkMatchStmt lowers a `match` used as a statement: each arm's body
// runs for side effect only and branches to a shared merge block; no
// Phi is needed since no value is produced.
func (fc *funcCtx) checkMatchStmt(sc scope.Scope, n *astiface.MatchStmt) error {
	scrutType, scrutVal, err := fc.resolveExpr(sc, n.Scrutinee)
	if err != nil {
		return err
	}

	b := fc.lc.Builder
	mergeLabel := fc.lc.FreshLabel("match.merge")

	for i, arm := range n.Arms {
		bodyLabel := fc.lc.FreshLabel(fmt.Sprintf("match.body%d", i))
		missLabel := fc.lc.FreshLabel(fmt.Sprintf("match.miss%d", i))

		armScope := scope.NewRunnableScope(sc, fc.fn.ReturnConstraint(), loopTargetsOf(sc))
		matched, err := fc.testPattern(armScope, arm.Pattern, scrutType, scrutVal)
		if err != nil {
			return err
		}
		b.CondBr(matched, bodyLabel, missLabel)

		b.SetInsertPoint(b.NewBlock(bodyLabel))
		fc.checkBlock(armScope, arm.Body)
		if !b.Terminated() {
			b.Br(mergeLabel)
		}

		b.SetInsertPoint(b.NewBlock(missLabel))
	}

	sp := n.Span()
	fc.checker.Sink.Report(diag.New(diag.TYPNonExhaustive, diag.PhaseTypeCheck, diag.Error, &sp, "non-exhaustive match"))
	if !b.Terminated() {
		b.Unreachable()
	}

	b.SetInsertPoint(b.NewBlock(mergeLabel))
	return nil
}

// testPattern tests val (of type valType) against pat, registering any
// bindings pat introduces directly into armScope, and returns the i1 IR
// value of whether it matched.
func (fc *funcCtx) testPattern(armScope scope.Scope, pat astiface.Pattern, valType types.Term, val ir.Value) (ir.Value, error) {
	switch p := pat.(type) {
	case *astiface.WildcardPattern:
		return fc.lc.EmitBoolLiteral(true), nil
	case *astiface.BindPattern:
		bv := &bound.BoundVar{Name: p.Name, Type: &bound.BoundType{Type: valType, IRType: fc.lc.IRTypeOf(valType)}, Value: val}
		if err := armScope.PutBoundVariable(p.Name, bv); err != nil {
			return nil, err
		}
		return fc.lc.EmitBoolLiteral(true), nil
	case *astiface.LitPattern:
		_, litVal, err := fc.resolveLit(p.Lit)
		if err != nil {
			return nil, err
		}
		return fc.lc.EmitBinOp("==", val, litVal, ir.I1), nil
	case *astiface.CtorPattern:
		return fc.testCtorPattern(armScope, p, valType, val)
	default:
		return nil, fmt.Errorf("check: unsupported pattern %T", pat)
	}
}

// testCtorPattern compares val's runtime type tag against the named
// constructor's registered TypeInfoRecord, then (for a non-nullary
// constructor) recursively tests each sub-pattern against the matching
// field, read directly off val via GEP with the managed-header hop.
func (fc *funcCtx) testCtorPattern(armScope scope.Scope, pat *astiface.CtorPattern, valType types.Term, val ir.Value) (ir.Value, error) {
	sumTerm := unwrapManagedPtr(valType)
	opt := findOption(sumTerm, pat.Name)
	if opt == nil {
		return nil, fmt.Errorf("pattern: unknown constructor %q", pat.Name)
	}
	fc.lc.IRTypeOf(&types.Managed{Inner: opt})

	b := fc.lc.Builder
	tag := b.Call("langc_rt_typeid_of", []ir.Value{val}, ir.I64)
	want := fc.lc.EmitTypeIDOf(types.Signature(&types.Managed{Inner: opt}))
	tagMatch := fc.lc.EmitBinOp("==", tag, want, ir.I1)

	if len(pat.Sub) == 0 {
		return tagMatch, nil
	}

	thenLabel := fc.lc.FreshLabel("pat.fields")
	elseLabel := fc.lc.FreshLabel("pat.nomatch")
	mergeLabel := fc.lc.FreshLabel("pat.merge")
	b.CondBr(tagMatch, thenLabel, elseLabel)

	b.SetInsertPoint(b.NewBlock(thenLabel))
	var fieldsMatch ir.Value = fc.lc.EmitBoolLiteral(true)
	for i, sub := range pat.Sub {
		fieldType := opt.Dims[i]
		addr := b.GEP(val, []int{i}, fc.lc.IRTypeOf(fieldType), true)
		fieldVal := b.Load(addr, fc.lc.IRTypeOf(fieldType))
		sm, err := fc.testPattern(armScope, sub, fieldType, fieldVal)
		if err != nil {
			return nil, err
		}
		fieldsMatch = fc.lc.EmitBinOp("&", fieldsMatch, sm, ir.I1)
	}
	thenEnd := b.CurrentBlock().Label
	b.Br(mergeLabel)

	b.SetInsertPoint(b.NewBlock(elseLabel))
	falseVal := fc.lc.EmitBoolLiteral(false)
	elseEnd := b.CurrentBlock().Label
	b.Br(mergeLabel)

	b.SetInsertPoint(b.NewBlock(mergeLabel))
	return b.Phi(ir.I1, []ir.PhiIncoming{{Val: fieldsMatch, Block: thenEnd}, {Val: falseVal, Block: elseEnd}}), nil
}

// unwrapManagedPtr strips one Ptr(Managed(_)) layer to get at the Sum
// (or collapsed single-option Struct) a constructor pattern tests.
func unwrapManagedPtr(t types.Term) types.Term {
	if p, ok := t.(*types.Ptr); ok {
		if m, ok := p.Inner.(*types.Managed); ok {
			return m.Inner
		}
	}
	return t
}
