package repl

import (
	"fmt"
	"io"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/ir"
	"github.com/sunholo/langc/internal/pipeline"
)

// EvalSource parses src into one declaration via the configured Parser
// and runs it through EvalDecl. It reports an error and does nothing
// else if no Parser is configured.
func (r *REPL) EvalSource(src string, out io.Writer) {
	if r.config.Parser == nil {
		fmt.Fprintf(out, "%s: no parser configured for this session\n", red("Error"))
		return
	}
	decl, err := r.config.Parser.ParseDecl(replModule, src)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Parse error"), err)
		return
	}
	r.EvalDecl(decl, out)
}

// EvalDecl appends decl to the REPL's running module and re-runs the
// whole-program pipeline over it. On success it reports the
// declaration's resolved type (and, if ShowIR is set, its lowered IR);
// on failure it reports every diagnostic and rolls decl back out of the
// running module so a bad declaration doesn't poison later input.
func (r *REPL) EvalDecl(decl astiface.Decl, out io.Writer) {
	r.module.Decls = append(r.module.Decls, decl)

	result := pipeline.Run(pipeline.Config{}, pipeline.Source{Files: []*astiface.Module{r.module}})
	r.last = result

	if result.Sink.HasErrors() {
		r.module.Decls = r.module.Decls[:len(r.module.Decls)-1]
		printReports(result.Sink.Reports(), out)
		return
	}

	name := declName(decl)
	mod, ok := result.Prog.LookupModule(replModule)
	if !ok {
		fmt.Fprintf(out, "%s: repl module missing from pipeline result\n", red("Error"))
		return
	}

	if v, err := mod.GetBoundVariable(name, false); err == nil {
		fmt.Fprintf(out, "%s :: %s\n", name, cyan(v.Type.Type.String()))
	} else {
		fmt.Fprintf(out, "%s registered\n", green(name))
	}

	if r.config.ShowIR {
		for _, irMod := range result.Modules {
			if irMod.Name != replModule {
				continue
			}
			fmt.Fprintln(out, dim("IR:"))
			if fn := findIRFunction(irMod, replModule+"."+name); fn != nil {
				fmt.Fprintln(out, fn.String())
			} else {
				fmt.Fprintln(out, irMod.String())
			}
		}
	}
}

func findIRFunction(mod *ir.Module, name string) *ir.Function {
	for _, f := range mod.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// printReports writes one line per diagnostic, coloring by severity.
func printReports(reports []*diag.Report, out io.Writer) {
	for _, r := range reports {
		prefix := yellow("Warning")
		if r.Severity == diag.Error {
			prefix = red("Error")
		}
		fmt.Fprintf(out, "%s [%s/%s]: %s\n", prefix, r.Phase, r.Code, r.Message)
	}
}

func declName(d astiface.Decl) string {
	switch n := d.(type) {
	case *astiface.FuncDecl:
		return n.Name
	case *astiface.VarDecl:
		return n.Name
	case *astiface.TypeDecl:
		return n.Name
	default:
		return fmt.Sprintf("%T", d)
	}
}
