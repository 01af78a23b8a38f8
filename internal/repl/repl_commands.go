package repl

import (
	"fmt"
	"io"
	"strings"
)

// HandleCommand processes a `:`-prefixed REPL command.
func (r *REPL) HandleCommand(cmd string, out io.Writer) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case ":help", ":h":
		r.printHelp(out)

	case ":type", ":t":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :type <name>")
			return
		}
		r.showType(parts[1], out)

	case ":dump-ir":
		r.config.ShowIR = !r.config.ShowIR
		status := "disabled"
		if r.config.ShowIR {
			status = "enabled"
		}
		fmt.Fprintf(out, "IR dumping %s\n", yellow(status))

	case ":history":
		r.showHistory(out)

	case ":clear":
		fmt.Fprint(out, "\033[H\033[2J")

	case ":reset":
		r.module.Decls = nil
		r.history = nil
		fmt.Fprintln(out, green("Session reset"))

	default:
		fmt.Fprintf(out, "Unknown command: %s\n", cmd)
		fmt.Fprintln(out, "Type :help for help")
	}
}

// showType reports the resolved type of a name already accepted into
// this session, without re-running anything.
func (r *REPL) showType(name string, out io.Writer) {
	if r.last.Prog == nil {
		fmt.Fprintln(out, yellow("Nothing checked yet"))
		return
	}
	mod, ok := r.last.Prog.LookupModule(replModule)
	if !ok {
		fmt.Fprintln(out, yellow("Nothing checked yet"))
		return
	}
	v, err := mod.GetBoundVariable(name, false)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	fmt.Fprintf(out, "%s :: %s\n", name, cyan(v.Type.Type.String()))
}

func (r *REPL) showHistory(out io.Writer) {
	for i, cmd := range r.history {
		fmt.Fprintf(out, "%3d  %s\n", i+1, cmd)
	}
}

func (r *REPL) printHelp(out io.Writer) {
	fmt.Fprintln(out, bold("Commands:"))
	fmt.Fprintln(out, "  :help, :h         Show this help")
	fmt.Fprintln(out, "  :quit, :q         Exit the REPL")
	fmt.Fprintln(out, "  :type <name>      Show the resolved type of a declared name")
	fmt.Fprintln(out, "  :dump-ir          Toggle lowered IR display after each declaration")
	fmt.Fprintln(out, "  :history          Show input history")
	fmt.Fprintln(out, "  :clear            Clear the screen")
	fmt.Fprintln(out, "  :reset            Drop every declaration entered this session")
	fmt.Fprintln(out)
	fmt.Fprintln(out, bold("Examples:"))
	fmt.Fprintln(out, "  func add(a int, b int) int { return a + b }")
	fmt.Fprintln(out, "  :type add")
	fmt.Fprintln(out, "  :dump-ir")
}
