// Package scope implements the nested lexical scope hierarchy: Program,
// Module, Runnable, Function, Closure, and GenericSubstitution scopes,
// each holding bound-variable, typename, and type-variable-binding
// tables with parent-chained lookup.
//
// Modeled on internal/types/env.go (TypeEnv: a
// parent-chained bindings map) for the nested lookup shape, and
// internal/module/loader.go (Loader: a cache-by-identity Module table)
// for the Program/Module split.
package scope

import (
	"fmt"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/types"
)

// Scope is implemented by every scope variant.
type Scope interface {
	Parent() Scope
	Kind() string

	PutBoundVariable(name string, v *bound.BoundVar) error
	GetBoundVariable(name string, searchParents bool) (*bound.BoundVar, error)
	GetCallables(name string, includeUnchecked bool) []Callable

	PutStructuralTypename(name string, expansion types.Term) error
	PutNominalTypename(name string, expansion types.Term) error
	GetType(name string, allowStructural bool) (types.Term, bool)

	PutTypeVariableBinding(name string, t types.Term) error
	LookupTypeVariableBinding(name string) (types.Term, bool)

	HasChecked(node astiface.Node) bool
	MarkChecked(node astiface.Node)
}

// Callable is one candidate returned by GetCallables: either an already
// bound function/constructor, or a still-unchecked one awaiting
// instantiation.
type Callable struct {
	Bound     *bound.BoundVar
	Unchecked *bound.UncheckedVar
}

// typenameEntry is the env_map value: (is_structural, expansion type).
type typenameEntry struct {
	structural bool
	expansion  types.Term
}

// base implements the common scope storage/operations shared by every
// scope kind.
type base struct {
	parent    Scope
	kind      string
	boundVars map[string]map[string]*bound.BoundVar // name -> signature -> var
	typeEnv   map[string]typenameEntry
	typeVars  map[string]types.Term
	checked   map[astiface.Node]bool
}

func newBase(parent Scope, kind string) base {
	return base{
		parent:    parent,
		kind:      kind,
		boundVars: map[string]map[string]*bound.BoundVar{},
		typeEnv:   map[string]typenameEntry{},
		typeVars:  map[string]types.Term{},
		checked:   map[astiface.Node]bool{},
	}
}

func (b *base) Parent() Scope { return b.parent }
func (b *base) Kind() string  { return b.kind }

// PutBoundVariable fails when a variable of the same (name, signature)
// already exists in this scope.
func (b *base) PutBoundVariable(name string, v *bound.BoundVar) error {
	sig := v.Signature()
	if b.boundVars[name] == nil {
		b.boundVars[name] = map[string]*bound.BoundVar{}
	}
	if _, exists := b.boundVars[name][sig]; exists {
		return fmt.Errorf("%s: variable %q with signature %s already defined in this scope", diag.SCPRedefinition, name, sig)
	}
	b.boundVars[name][sig] = v
	return nil
}

// GetBoundVariable returns the one matching bound var; fails if multiple
// exist at the same level.
func (b *base) GetBoundVariable(name string, searchParents bool) (*bound.BoundVar, error) {
	if overloads, ok := b.boundVars[name]; ok {
		if len(overloads) > 1 {
			return nil, fmt.Errorf("%s: ambiguous non-callsite reference to %q (%d overloads)", diag.SCPAmbiguousRef, name, len(overloads))
		}
		for _, v := range overloads {
			return v, nil
		}
	}
	if searchParents && b.parent != nil {
		return b.parent.GetBoundVariable(name, true)
	}
	return nil, fmt.Errorf("%s: undefined symbol %q", diag.SCPMissingSymbol, name)
}

func (b *base) localCallables(name string) []Callable {
	var out []Callable
	for _, v := range b.boundVars[name] {
		if _, ok := v.Type.Type.(*types.Function); ok {
			out = append(out, Callable{Bound: v})
		}
	}
	return out
}

func (b *base) GetCallables(name string, includeUnchecked bool) []Callable {
	out := b.localCallables(name)
	if b.parent != nil {
		out = append(out, b.parent.GetCallables(name, includeUnchecked)...)
	}
	return out
}

func (b *base) PutStructuralTypename(name string, expansion types.Term) error {
	if _, exists := b.typeEnv[name]; exists {
		return fmt.Errorf("%s: typename %q already defined in this scope", diag.SCPRedefinition, name)
	}
	b.typeEnv[name] = typenameEntry{structural: true, expansion: expansion}
	return nil
}

func (b *base) PutNominalTypename(name string, expansion types.Term) error {
	if _, exists := b.typeEnv[name]; exists {
		return fmt.Errorf("%s: typename %q already defined in this scope", diag.SCPRedefinition, name)
	}
	b.typeEnv[name] = typenameEntry{structural: false, expansion: expansion}
	return nil
}

func (b *base) GetType(name string, allowStructural bool) (types.Term, bool) {
	if e, ok := b.typeEnv[name]; ok {
		if e.structural && !allowStructural {
			// fall through to parent, mirroring the prior env lookup
			// honoring the structural flag.
		} else {
			return e.expansion, true
		}
	}
	if b.parent != nil {
		return b.parent.GetType(name, allowStructural)
	}
	return nil, false
}

// PutTypeVariableBinding is idempotent when the stored value prints
// identically.
func (b *base) PutTypeVariableBinding(name string, t types.Term) error {
	if existing, ok := b.typeVars[name]; ok {
		if types.Signature(existing) == types.Signature(t) {
			return nil
		}
		return fmt.Errorf("%s: conflicting type-variable binding for %q: %s vs %s", diag.SCPRedefinition, name, types.Signature(existing), types.Signature(t))
	}
	b.typeVars[name] = t
	return nil
}

func (b *base) LookupTypeVariableBinding(name string) (types.Term, bool) {
	if t, ok := b.typeVars[name]; ok {
		return t, true
	}
	if b.parent != nil {
		return b.parent.LookupTypeVariableBinding(name)
	}
	return nil, false
}

func (b *base) HasChecked(node astiface.Node) bool { return b.checked[node] }
func (b *base) MarkChecked(node astiface.Node)     { b.checked[node] = true }
