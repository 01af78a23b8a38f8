package scope

import "github.com/sunholo/langc/internal/types"

// FunctionScope is a RunnableScope that owns the return-type constraint
// cell.
type FunctionScope struct {
	*RunnableScope
	Name string
}

// NewFunctionScope creates the top-level scope of a function body.
func NewFunctionScope(parent Scope, name string) *FunctionScope {
	cell := new(types.Term)
	return &FunctionScope{
		RunnableScope: NewRunnableScope(parent, cell, nil),
		Name:          name,
	}
}

// SetReturnType fixes (or checks, via the caller unifying first) the
// function's return type the first time a `return` statement resolves.
func (f *FunctionScope) SetReturnType(t types.Term) { *f.returnConstraint = t }
