package diag

// Error code taxonomy, carried over from the prior internal/errors
// (PAR###/MOD###/...) with phases renamed to this pipeline's own: scope
// errors, type errors, control-flow errors, and internal invariants.
const (
	// Scope errors (SCP###).
	SCPRedefinition      = "SCP001" // redefinition of a (name, signature) in one scope
	SCPMissingSymbol     = "SCP002" // name not found in scope or any parent
	SCPNotCallable       = "SCP003" // non-callable symbol called
	SCPAmbiguousRef      = "SCP004" // multiple matching overloads at a non-callsite reference
	SCPModuleNotFound    = "SCP005" // module not found
	SCPAmbiguousOverload = "SCP006" // >1 callsite overload matched
	SCPNoOverload        = "SCP007" // 0 callsite overloads matched
	SCPImportCycle       = "SCP008" // cross-module reference cycle detected during scope_setup

	// Type errors (TYP###).
	TYPUnifyFailed       = "TYP001" // unification failure with reason
	TYPUnboundFreeVar    = "TYP002" // unbound free variable at a monomorphization site
	TYPMaybeNotChecked   = "TYP003" // use of a maybe without null-check
	TYPCastNotPermitted  = "TYP004" // cast not permitted
	TYPAssignToNonRef    = "TYP005" // assignment to a non-reference
	TYPMissingInit       = "TYP006" // missing initializer for managed variable
	TYPNonExhaustive     = "TYP007" // non-exhaustive usage where required

	// Control-flow errors (CTL###).
	CTLBreakOutsideLoop    = "CTL001"
	CTLContinueOutsideLoop = "CTL002"
	CTLNotAllPathsReturn   = "CTL003"
	CTLUnreachable         = "CTL004"

	// Lowering errors (LOW###) — errors only the lowerer can detect
	// (e.g. a ground-type upsert invariant broken by a caller bug surfaces
	// as a panic, not a Report; LOW### is reserved for
	// user-triggerable lowering failures, such as an array literal with a
	// non-managed element type).
	LOWNonManagedElement = "LOW001"
)

// Phase names used in Report.Phase.
const (
	PhaseScopeSetup = "scope_setup"
	PhaseTypeCheck  = "typecheck"
	PhaseLower      = "lower"
	PhaseGeneric    = "generic"
)
