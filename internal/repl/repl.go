// Package repl implements an interactive type-checking and lowering
// session: each accepted line is parsed into one top-level declaration,
// added to a running in-memory module, and pushed back through
// internal/pipeline.Run alongside every declaration accepted so far. The
// REPL never evaluates anything — there is no runtime here — it only
// reports the resolved type of what was just added, and optionally the
// lowered IR for it.
//
// Modeled on a liner-based interactive loop with history-file
// persistence, a `:`-prefixed command set, and color.New(...).SprintFunc()
// output helpers, retargeted from a tree-walking expression evaluator to
// a whole-program checker driver.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/pipeline"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// replModule is the synthetic module name every REPL-entered declaration
// is registered under.
const replModule = "repl"

// Parser turns one line of REPL input into a single top-level
// declaration. Lexing and parsing source text are out of scope for this
// repository (an external collaborator's job, per internal/astiface's
// doc comment); a caller wires a real parser in through Config.Parser,
// and the REPL only drives it one line at a time.
type Parser interface {
	ParseDecl(module, src string) (astiface.Decl, error)
}

// Config holds REPL configuration.
type Config struct {
	// ShowIR, when set, prints the lowered IR for a declaration alongside
	// its resolved type.
	ShowIR bool
	// Parser turns REPL input lines into declarations. Required for
	// Start's interactive loop; EvalDecl can be driven directly without
	// one (e.g. from tests that build *astiface.Decl values by hand).
	Parser Parser
}

// REPL is an interactive session over internal/pipeline.
type REPL struct {
	config    *Config
	module    *astiface.Module
	history   []string
	last      pipeline.Result
	version   string
	buildTime string
}

// New creates a REPL with default configuration.
func New() *REPL {
	return NewWithVersion("", "")
}

// NewWithVersion creates a REPL, tagging its banner with version and
// buildTime.
func NewWithVersion(version, buildTime string) *REPL {
	if version == "" {
		version = "dev"
	}
	if buildTime == "" {
		buildTime = "unknown"
	}
	return &REPL{
		config:    &Config{},
		module:    &astiface.Module{Name: replModule},
		history:   []string{},
		version:   version,
		buildTime: buildTime,
	}
}

// SetParser wires the declaration parser used by Start's interactive
// loop.
func (r *REPL) SetParser(p Parser) { r.config.Parser = p }

func (r *REPL) getPrompt() string { return "λ> " }

// Start begins the interactive REPL session over in/out.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".langc_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetMultiLineMode(true)

	versionStr := r.version
	if r.buildTime != "" && r.buildTime != "unknown" {
		if t, err := time.Parse("2006-01-02_15:04:05", r.buildTime); err == nil {
			versionStr = fmt.Sprintf("%s - %s", versionStr, t.Format("2006-01-02"))
		}
	}
	fmt.Fprintf(out, "%s %s\n", bold("langc"), bold(versionStr))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out, dim("Use ↑/↓ arrows to navigate history"))
	fmt.Fprintln(out)

	line.SetCompleter(func(input string) (c []string) {
		if strings.HasPrefix(input, ":") {
			for _, cmd := range []string{":help", ":quit", ":type", ":dump-ir", ":history", ":clear", ":reset"} {
				if strings.HasPrefix(cmd, input) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	for {
		prompt := r.getPrompt()
		input, err := line.Prompt(prompt)
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		// Multi-line continuation: a declaration left mid-block (an
		// unclosed brace) keeps prompting until the braces balance.
		for strings.Count(input, "{") > strings.Count(input, "}") {
			contInput, err := line.Prompt("... ")
			if err != nil {
				fmt.Fprintln(out, red("\nIncomplete declaration"))
				break
			}
			input += "\n" + contInput
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if strings.HasPrefix(input, ":quit") || strings.HasPrefix(input, ":q") || strings.HasPrefix(input, ":exit") {
				fmt.Fprintln(out, green("Goodbye!"))
				break
			}
			r.HandleCommand(input, out)
			continue
		}

		r.EvalSource(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}
