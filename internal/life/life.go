// Package life implements the life-frame tree of: a
// statement/block/loop/function-scoped list of tracked managed values,
// released on every exit path.
//
// Modeled on internal/effects/context.go: EffContext's
// Grant/HasCap/RequireCap capability-threading pattern, repurposed from
// effect capabilities to tracked managed values that must be released on
// scope exit, plus internal/link/topo.go's explicit stack discipline for
// the frame chain itself.
package life

import (
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/ir"
)

// Kind is the granularity of a life frame.
type Kind string

const (
	Statement Kind = "statement"
	Block     Kind = "block"
	Loop      Kind = "loop"
	Function  Kind = "function"
)

// Frame is one life frame: an ordered list of tracked managed BoundVars.
type Frame struct {
	Kind    Kind
	parent  *Frame
	tracked []*bound.BoundVar
}

// Tracker is the current life, a stack of Frames rooted at the enclosing
// function's Function-kind frame. Every code-emission site maintains one
// Tracker.
type Tracker struct {
	current *Frame
}

// NewTracker starts a Tracker with a single Function frame, pushed when
// lowering begins a function body.
func NewTracker() *Tracker {
	return &Tracker{current: &Frame{Kind: Function}}
}

// Push opens a new nested frame of the given kind (scope entry: a block,
// a loop body, or a single statement's sub-expressions).
func (t *Tracker) Push(kind Kind) *Frame {
	f := &Frame{Kind: kind, parent: t.current}
	t.current = f
	return f
}

// Pop closes the current frame and restores its parent. Callers pair
// every Push with a Pop, the same scoped-guard discipline
// requires for IR insert points and scope pushes.
func (t *Tracker) Pop() {
	if t.current.parent == nil {
		panic("life: popped the function-level frame")
	}
	t.current = t.current.parent
}

// Current returns the innermost open frame.
func (t *Tracker) Current() *Frame { return t.current }

// Track records v as created in the current frame; every expression that
// returns a managed value is tracked on creation.
func (t *Tracker) Track(v *bound.BoundVar) {
	t.current.tracked = append(t.current.tracked, v)
}

// ReleaseVars walks from the current frame outward, collecting every
// tracked managed BoundVar up to (and including) the frame matching
// upTo, in reverse-creation order within each frame, and emits one
// release call per value via emit.
//
// emit is supplied by internal/lower, which knows the runtime release
// function name and how to turn a BoundVar into an ir.Value operand.
func (t *Tracker) ReleaseVars(upTo Kind, b *ir.Builder, emit func(*ir.Builder, *bound.BoundVar)) {
	f := t.current
	for f != nil {
		for i := len(f.tracked) - 1; i >= 0; i-- {
			emit(b, f.tracked[i])
		}
		if f.Kind == upTo {
			break
		}
		f = f.parent
	}
}

// ReleaseFrame releases only the values tracked directly in frame f
// (used for a single exiting block without unwinding further, e.g. a
// `match` arm's own bindings).
func ReleaseFrame(f *Frame, b *ir.Builder, emit func(*ir.Builder, *bound.BoundVar)) {
	for i := len(f.tracked) - 1; i >= 0; i-- {
		emit(b, f.tracked[i])
	}
}
