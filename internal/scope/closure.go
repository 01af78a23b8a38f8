package scope

import "github.com/sunholo/langc/internal/bound"

// ClosureScope captures symbols from an outer running scope and records
// the captured set.
type ClosureScope struct {
	base
	Captured map[string]*bound.BoundVar
}

// NewClosureScope creates a closure body scope nested under outer,
// finding captures lazily via CaptureFromParent as the body references
// outer names.
func NewClosureScope(outer Scope) *ClosureScope {
	c := &ClosureScope{Captured: map[string]*bound.BoundVar{}}
	c.base = newBase(outer, "closure")
	return c
}

// GetBoundVariable records a capture the first time an outer-scope
// variable is referenced from inside the closure.
func (c *ClosureScope) GetBoundVariable(name string, searchParents bool) (*bound.BoundVar, error) {
	if v, err := c.base.GetBoundVariable(name, false); err == nil {
		return v, nil
	}
	if !searchParents || c.parent == nil {
		return c.base.GetBoundVariable(name, false)
	}
	v, err := c.parent.GetBoundVariable(name, true)
	if err == nil {
		c.Captured[name] = v
	}
	return v, err
}
