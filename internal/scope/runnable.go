package scope

import "github.com/sunholo/langc/internal/types"

// LoopTargets names the basic blocks `break`/`continue` branch to.
type LoopTargets struct {
	ContinueLabel string
	BreakLabel    string
}

// RunnableScope tracks the enclosing function's return-type constraint
// and the innermost loop's continue/break targets.
type RunnableScope struct {
	base

	returnConstraint *types.Term // shared pointer cell with the owning FunctionScope
	loop             *LoopTargets // nil outside any loop
}

// NewRunnableScope creates a block/loop-body scope nested under parent,
// inheriting the return constraint cell and (optionally) new loop
// targets.
func NewRunnableScope(parent Scope, returnConstraint *types.Term, loop *LoopTargets) *RunnableScope {
	r := &RunnableScope{returnConstraint: returnConstraint, loop: loop}
	r.base = newBase(parent, "runnable")
	return r
}

// ReturnConstraint returns the function-level return-type constraint
// cell; *cell is nil until the first `return` fixes it.
func (r *RunnableScope) ReturnConstraint() *types.Term { return r.returnConstraint }

// LoopTargets returns the innermost loop's break/continue labels, or nil
// if this scope is not (transitively) inside a loop.
func (r *RunnableScope) LoopTargets() *LoopTargets {
	if r.loop != nil {
		return r.loop
	}
	if p, ok := r.parent.(interface{ LoopTargets() *LoopTargets }); ok {
		return p.LoopTargets()
	}
	return nil
}
