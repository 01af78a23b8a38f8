package ir

import "strings"

// BasicBlock is a label plus an ordered instruction list ending in a
// terminator (Br/CondBr/Ret/RetVoid/Unreachable).
type BasicBlock struct {
	Label string
	Instrs []Instr
}

// Function is one lowered function.
type Function struct {
	Name        string
	Params      []Param
	Return      Type
	Blocks      []*BasicBlock
	GCStrategy  string
	IsDeclOnly  bool // true for linked/extern functions: no body
	LinkName    string
}

// TypeInfoRecord is a type_info_t global produced for every managed type
// seen in code.
type TypeInfoRecord struct {
	Name       string
	TypeID     int64
	Kind       string
	SizeBytes  int
	MarkFn     string // "" if none
	FinalizeFn string // "" if none
}

// TagSingleton is the single global var_t* value a nullary constructor
// lowers to.
type TagSingleton struct {
	Name       string
	TypeInfo   string // name of its private TypeInfoRecord
}

// GlobalVar is a module-level variable, initialized from
// __init_module_vars.
type GlobalVar struct {
	Name    string
	Ty      Type
	Managed bool
	ZeroInit bool
}

// Module is one lowered source module: its own globals, functions,
// type_info records, and tag singletons.
type Module struct {
	Name            string
	Globals         []*GlobalVar
	Functions       []*Function
	TypeInfos       []*TypeInfoRecord
	TagSingletons   []*TagSingleton
	StringConstants []*GlobalRef // interned string literal globals
}

// NewModule creates an empty IR module.
func NewModule(name string) *Module { return &Module{Name: name} }

// String renders the module in a deterministic, LLVM-syntax-shaped text
// form.
func (m *Module) String() string {
	var b strings.Builder
	b.WriteString("; module " + m.Name + "\n")
	for _, ti := range m.TypeInfos {
		b.WriteString(ti.string() + "\n")
	}
	for _, ts := range m.TagSingletons {
		b.WriteString(ts.string() + "\n")
	}
	for _, g := range m.Globals {
		b.WriteString(g.string() + "\n")
	}
	for _, f := range m.Functions {
		b.WriteString(f.String() + "\n")
	}
	return b.String()
}

func (ti *TypeInfoRecord) string() string {
	s := "@" + ti.Name + " = constant %type_info_t { id: " + itoa(ti.TypeID) +
		", kind: \"" + ti.Kind + "\", size: " + itoa(int64(ti.SizeBytes))
	if ti.MarkFn != "" {
		s += ", mark: @" + ti.MarkFn
	}
	if ti.FinalizeFn != "" {
		s += ", finalize: @" + ti.FinalizeFn
	}
	return s + " }"
}

func (ts *TagSingleton) string() string {
	return "@" + ts.Name + " = global var_t* { type_info: @" + ts.TypeInfo + " }"
}

func (g *GlobalVar) string() string {
	init := "zeroinitializer"
	if !g.ZeroInit {
		init = "uninitialized"
	}
	return "@" + g.Name + " = global " + g.Ty.String() + " " + init
}

func (f *Function) String() string {
	var b strings.Builder
	if f.IsDeclOnly {
		b.WriteString("declare " + f.Return.String() + " @" + f.LinkName + "(")
		for i, p := range f.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Ty.String())
		}
		b.WriteString(")\n")
		return b.String()
	}
	b.WriteString("define " + f.Return.String() + " @" + f.Name + "(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Ty.String() + " %" + itoa(int64(p.ID)))
	}
	b.WriteString(") gc \"" + f.GCStrategy + "\" {\n")
	for _, blk := range f.Blocks {
		b.WriteString(blk.Label + ":\n")
		for _, in := range blk.Instrs {
			b.WriteString("  " + in.String() + "\n")
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
