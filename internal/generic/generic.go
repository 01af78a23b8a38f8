// Package generic implements the call-site generic instantiator: given a
// unification at a call site, it computes a monotype signature, reuses a
// cached BoundVar if one already exists, or pushes a
// GenericSubstitutionScope and asks the checker to resolve the callee's
// definition under it, caching the result.
//
// Modeled on internal/types/typechecker_core.go
// generalizeWithConstraints plus internal/types/dictionaries.go: AILANG's
// dictionary-passing instantiation of type-class methods at a call site
// is the closest existing analogue to "instantiate a generic definition
// and cache it by monotype".
package generic

import (
	"github.com/sunholo/langc/internal/bound"
	"github.com/sunholo/langc/internal/scope"
	"github.com/sunholo/langc/internal/types"
)

// CheckerFunc is supplied by internal/check: given the generic
// definition's unchecked var and the substitution scope pushed over its
// definition module, resolve it into a BoundVar. This indirection avoids
// an import cycle between internal/generic and internal/check (the
// checker is also the caller of Instantiate).
type CheckerFunc func(u *bound.UncheckedVar, genScope *scope.GenericSubstitutionScope) (*bound.BoundVar, error)

// Instantiator caches monomorphizations by signature, in the program
// scope's BoundVar table.
type Instantiator struct {
	prog    *scope.ProgramScope
	checker CheckerFunc
}

// New creates an Instantiator bound to prog and the supplied checker
// callback.
func New(prog *scope.ProgramScope, checker CheckerFunc) *Instantiator {
	return &Instantiator{prog: prog, checker: checker}
}

// Instantiate specializes the generic definition named by u's FQN to the
// monotype implied by sigma, reusing any prior instantiation with the
// same monotype key.
func (inst *Instantiator) Instantiate(u *bound.UncheckedVar, defModule *scope.ModuleScope, calleeType types.Term, sigma types.Substitution) (*bound.BoundVar, error) {
	restricted := restrictToUserVars(sigma)
	monoKey := types.Signature(types.Rebind(calleeType, restricted))

	if v, err := inst.prog.GetBoundVariable(monoKeyName(u.FQN, monoKey), false); err == nil {
		return v, nil
	}

	genScope := scope.NewGenericSubstitutionScope(defModule, calleeType, restricted)
	v, err := inst.checker(u, genScope)
	if err != nil {
		return nil, err
	}

	if err := inst.prog.PutBoundVariable(monoKeyName(u.FQN, monoKey), v); err != nil {
		// Another call site raced to the same monotype; that's fine —
		// reuse whichever one landed first (idempotent by construction,
		//).
		return inst.prog.GetBoundVariable(monoKeyName(u.FQN, monoKey), false)
	}
	return v, nil
}

// monoKeyName builds the program-scope binding name a monomorphization is
// cached under: the generic's FQN plus its monotype signature.
func monoKeyName(fqn, monoSig string) string { return fqn + "#" + monoSig }

// restrictToUserVars drops internal `_`-prefixed variables from sigma
// before seeding the GenericSubstitutionScope.
func restrictToUserVars(sigma types.Substitution) types.Substitution {
	out := make(types.Substitution, len(sigma))
	for k, v := range sigma {
		if len(k) > 0 && k[0] == '_' {
			continue
		}
		out[k] = v
	}
	return out
}

// InstantiateCtor is the data-constructor analogue of Instantiate.
func (inst *Instantiator) InstantiateCtor(u *bound.UncheckedVar, defModule *scope.ModuleScope, sigma types.Substitution) (*bound.BoundVar, error) {
	if u.CtorSig == nil {
		panic("generic: InstantiateCtor called on a non-constructor UncheckedVar")
	}
	return inst.Instantiate(u, defModule, u.CtorSig, sigma)
}
