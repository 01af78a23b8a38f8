package lower

import (
	"github.com/sunholo/langc/internal/ir"
)

// EmitModuleVarInit appends the initializer for one module-level variable
// to the program's shared __init_module_vars function. b is the shared
// builder internal/scope.ProgramScope returns for that function, whose
// current block stays unterminated until FinalizeInitModuleVars appends
// its RetVoid; this only stores initVal into the variable's global slot.
func EmitModuleVarInit(b *ir.Builder, global ir.Value, initVal ir.Value) {
	b.Store(global, initVal)
}

// EmitModuleVarVisit appends one field-visit call to
// __visit_module_vars's body: for a managed module-level variable, the
// GC walker invokes cb on the variable's current value so the collector
// can trace it as a root.
func EmitModuleVarVisit(b *ir.Builder, cbParam ir.Value, global ir.Value) {
	loaded := b.Load(global, ir.PointerType{Elem: ir.VarT})
	b.Call("langc_rt_invoke_visitor", []ir.Value{cbParam, loaded}, ir.VoidType{})
}
