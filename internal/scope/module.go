package scope

import (
	"fmt"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/ir"
)

// ModuleScope is created one per source module. It adds
// the module's own unchecked types (ordered + keyed by local name) and
// its owning IR module handle.
type ModuleScope struct {
	base

	Name     string
	IRModule *ir.Module
	program  *ProgramScope

	uncheckedTypesOrdered []*bound.UncheckedType
	uncheckedTypesByName  map[string]*bound.UncheckedType
}

// Program returns the owning ProgramScope.
func (m *ModuleScope) Program() *ProgramScope { return m.program }

// FQN returns the fully-qualified name module.name.
func (m *ModuleScope) FQN(name string) string { return m.Name + "." + name }

// PutUncheckedType registers a type local to this module, mirroring it
// into the program scope's FQN-keyed table.
func (m *ModuleScope) PutUncheckedType(u *bound.UncheckedType) error {
	if _, exists := m.uncheckedTypesByName[u.FQN]; exists {
		return fmt.Errorf("%s: type %q already registered in module %s", diag.SCPRedefinition, u.FQN, m.Name)
	}
	m.uncheckedTypesByName[u.FQN] = u
	m.uncheckedTypesOrdered = append(m.uncheckedTypesOrdered, u)
	return m.program.PutUncheckedType(u)
}

// UncheckedTypesOrdered returns this module's unchecked types in
// declaration order.
func (m *ModuleScope) UncheckedTypesOrdered() []*bound.UncheckedType {
	return m.uncheckedTypesOrdered
}

// PutBoundVariable mirrors module-scope insertions into the program
// scope under the FQN.
func (m *ModuleScope) PutBoundVariable(name string, v *bound.BoundVar) error {
	if err := m.base.PutBoundVariable(name, v); err != nil {
		return err
	}
	return m.program.base.PutBoundVariable(m.FQN(name), v)
}

// GetCallables also tries the FQN form for dotted lookups from other
// modules.
func (m *ModuleScope) GetCallables(name string, includeUnchecked bool) []Callable {
	out := m.base.localCallables(name)
	out = append(out, m.base.localCallables(m.FQN(name))...)
	if includeUnchecked {
		if u, ok := m.program.LookupUncheckedVar(m.FQN(name)); ok {
			out = append(out, Callable{Unchecked: u})
		}
		if u, ok := m.program.LookupUncheckedVar(name); ok {
			out = append(out, Callable{Unchecked: u})
		}
	}
	if m.parent != nil {
		out = append(out, m.parent.GetCallables(name, includeUnchecked)...)
	}
	return out
}

// GetBoundVariable also tries the FQN form.
func (m *ModuleScope) GetBoundVariable(name string, searchParents bool) (*bound.BoundVar, error) {
	if v, err := m.base.GetBoundVariable(name, false); err == nil {
		return v, nil
	}
	if v, err := m.base.GetBoundVariable(m.FQN(name), false); err == nil {
		return v, nil
	}
	if searchParents && m.parent != nil {
		return m.parent.GetBoundVariable(name, true)
	}
	return nil, fmt.Errorf("%s: undefined symbol %q in module %s", diag.SCPMissingSymbol, name, m.Name)
}

// HasChecked/MarkChecked delegate to the program scope: the idempotency
// guard is global, keyed by AST node identity, not per-scope, so a
// declaration is never re-checked once any module has visited it.
func (m *ModuleScope) HasChecked(node astiface.Node) bool { return m.program.base.HasChecked(node) }
func (m *ModuleScope) MarkChecked(node astiface.Node)     { m.program.base.MarkChecked(node) }
