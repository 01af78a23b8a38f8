package scope

import "github.com/sunholo/langc/internal/types"

// GenericSubstitutionScope carries the callee signature and the
// substitution used to specialize a generic definition,
// pushed by internal/generic over the callee's definition module scope.
type GenericSubstitutionScope struct {
	base
	CalleeSignature types.Term
	Subst           types.Substitution
}

// NewGenericSubstitutionScope creates the scope a generic definition's
// body is re-checked under, seeded with sigma.
func NewGenericSubstitutionScope(defModule Scope, calleeSig types.Term, sigma types.Substitution) *GenericSubstitutionScope {
	g := &GenericSubstitutionScope{CalleeSignature: calleeSig, Subst: sigma}
	g.base = newBase(defModule, "generic-substitution")
	for name, t := range sigma {
		g.typeVars[name] = t
	}
	return g
}
