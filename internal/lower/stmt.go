package lower

import (
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/life"
)

// EmitRefDecl allocates a stack slot for a `var`/`let` binding, stores
// its initial value, and returns the slot pointer to bind in scope.
func (c *Ctx) EmitRefDecl(elem ir.Type, init ir.Value) ir.Value {
	slot := c.Builder.Alloca(elem)
	c.Builder.Store(slot, init)
	return slot
}

// EmitAssign stores val through a previously-allocated ref slot. When the
// slot held a managed value, the caller releases the old value and
// retains the new one before calling EmitAssign, per the reference
// discipline (emitted by internal/check, which knows whether the
// replaced type is managed).
func (c *Ctx) EmitAssign(slot, val ir.Value) { c.Builder.Store(slot, val) }

// EmitReturn releases every managed value tracked up through the
// function frame, in reverse-creation order, and then emits the
// terminator. v is nil for a `return` with no value.
func (c *Ctx) EmitReturn(v ir.Value) {
	c.Life.ReleaseVars(life.Function, c.Builder, EmitRelease)
	if v == nil {
		c.Builder.RetVoid()
		return
	}
	c.Builder.Ret(v)
}

// EmitIf emits a statement-form conditional: then/else bodies run for
// side effect only, in their own life.Block frames so locals declared in
// one arm are released before the arms reconverge. If both arms
// terminate (e.g. both return), the merge block is left unreferenced and
// the caller must not emit further code into it without first checking
// Terminated.
func (c *Ctx) EmitIf(cond ir.Value, then func(), els func()) {
	thenLabel := c.FreshLabel("if.then")
	mergeLabel := c.FreshLabel("if.merge")
	elseLabel := mergeLabel
	hasElse := els != nil
	if hasElse {
		elseLabel = c.FreshLabel("if.else")
	}
	c.Builder.CondBr(cond, thenLabel, elseLabel)

	thenBlk := c.Builder.NewBlock(thenLabel)
	c.Builder.SetInsertPoint(thenBlk)
	c.Life.Push(life.Block)
	then()
	c.Life.ReleaseVars(life.Block, c.Builder, EmitRelease)
	c.Life.Pop()
	if !c.Builder.Terminated() {
		c.Builder.Br(mergeLabel)
	}

	if hasElse {
		elseBlk := c.Builder.NewBlock(elseLabel)
		c.Builder.SetInsertPoint(elseBlk)
		c.Life.Push(life.Block)
		els()
		c.Life.ReleaseVars(life.Block, c.Builder, EmitRelease)
		c.Life.Pop()
		if !c.Builder.Terminated() {
			c.Builder.Br(mergeLabel)
		}
	}

	mergeBlk := c.Builder.NewBlock(mergeLabel)
	c.Builder.SetInsertPoint(mergeBlk)
}

// LoopLabels names the header/exit blocks of one EmitWhile loop, handed
// to the body closure so a caller tracking its own break/continue
// targets (internal/check, via its loop-scope chain) can record them
// before checking the body.
type LoopLabels struct {
	HeaderLabel string
	ExitLabel   string
}

// EmitWhile emits a pretest loop: a header block evaluates cond (via the
// caller's closure, which must leave its result as the returned value),
// a body block runs while true, and an exit block follows. body is a
// life.Loop frame so break/continue release exactly the loop's own
// locals; it receives the loop's labels before running so EmitBreak/
// EmitContinue callers know what to branch to.
func (c *Ctx) EmitWhile(cond func() ir.Value, body func(LoopLabels)) {
	headerLabel := c.FreshLabel("while.header")
	bodyLabel := c.FreshLabel("while.body")
	exitLabel := c.FreshLabel("while.exit")

	if !c.Builder.Terminated() {
		c.Builder.Br(headerLabel)
	}
	header := c.Builder.NewBlock(headerLabel)
	c.Builder.SetInsertPoint(header)
	c.Builder.CondBr(cond(), bodyLabel, exitLabel)

	bodyBlk := c.Builder.NewBlock(bodyLabel)
	c.Builder.SetInsertPoint(bodyBlk)
	c.pushLoopFrame(headerLabel, exitLabel)
	body(LoopLabels{HeaderLabel: headerLabel, ExitLabel: exitLabel})
	c.Life.ReleaseVars(life.Loop, c.Builder, EmitRelease)
	c.Life.Pop()
	if !c.Builder.Terminated() {
		c.Builder.Br(headerLabel)
	}

	exitBlk := c.Builder.NewBlock(exitLabel)
	c.Builder.SetInsertPoint(exitBlk)
}

// EmitBreak/EmitContinue release every value tracked within the current
// loop frame and branch to the loop's exit/header label.
func (c *Ctx) EmitBreak(exitLabel string) {
	c.Life.ReleaseVars(life.Loop, c.Builder, EmitRelease)
	c.Builder.Br(exitLabel)
}
func (c *Ctx) EmitContinue(headerLabel string) {
	c.Life.ReleaseVars(life.Loop, c.Builder, EmitRelease)
	c.Builder.Br(headerLabel)
}

func (c *Ctx) pushLoopFrame(headerLabel, exitLabel string) *life.Frame {
	return c.Life.Push(life.Loop)
}

// EmitBlock runs stmts inside a fresh life.Block frame, releasing
// locals declared directly in the block (not nested blocks, which
// release their own) when it exits normally.
func (c *Ctx) EmitBlock(body func()) {
	c.Life.Push(life.Block)
	body()
	if !c.Builder.Terminated() {
		c.Life.ReleaseVars(life.Block, c.Builder, EmitRelease)
	}
	c.Life.Pop()
}

// TrackLocal records a stack-declared managed value in the current life
// frame, for release on scope exit.
func (c *Ctx) TrackLocal(v *bound.BoundVar) { c.Life.Track(v) }
