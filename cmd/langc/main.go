// Command langc is the driver for the type-checking and lowering
// pipeline: it loads a project manifest and a module's declarations,
// runs them through internal/pipeline, and reports diagnostics or
// emitted IR.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/cliformat"
	"github.com/sunholo/langc/internal/config"
	"github.com/sunholo/langc/internal/diag"
	"github.com/sunholo/langc/internal/pipeline"
	"github.com/sunholo/langc/internal/repl"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "print version information")
		helpFlag    = flag.Bool("help", false, "show help")
		configPath  = flag.String("config", "langc.yaml", "project manifest path")
		jsonFlag    = flag.Bool("json", false, "emit diagnostics as JSON")
	)
	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	cmd := flag.Arg(0)
	switch cmd {
	case "build":
		requireArg(cmd, 2)
		runBuild(flag.Arg(1), *configPath, *jsonFlag)
	case "check":
		requireArg(cmd, 2)
		runCheck(flag.Arg(1), *jsonFlag)
	case "emit-ir":
		requireArg(cmd, 2)
		runEmitIR(flag.Arg(1), *jsonFlag)
	case "repl":
		runREPL()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), cmd)
		printHelp()
		os.Exit(1)
	}
}

func requireArg(cmd string, n int) {
	if flag.NArg() < n {
		fmt.Fprintf(os.Stderr, "%s: missing module argument\n", red("Error"))
		fmt.Printf("Usage: langc %s <module.json>\n", cmd)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("langc %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	if BuildTime != "unknown" {
		fmt.Printf("Built:  %s\n", BuildTime)
	}
}

func printHelp() {
	fmt.Println(bold("langc - type checker and lowerer"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  langc <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <module.json>    Check and lower a module, reporting diagnostics\n", cyan("build"))
	fmt.Printf("  %s <module.json>    Check a module without emitting IR\n", cyan("check"))
	fmt.Printf("  %s <module.json> Check a module and print its lowered IR\n", cyan("emit-ir"))
	fmt.Printf("  %s                 Start the interactive checker REPL\n", cyan("repl"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version        Print version information")
	fmt.Println("  --help           Show this help message")
	fmt.Println("  --config <path>  Project manifest (default langc.yaml)")
	fmt.Println("  --json           Emit diagnostics as JSON")
}

// loadSource reads path (a cliformat module document — see
// internal/cliformat) into a pipeline.Source.
func loadSource(path string) (pipeline.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Source{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	m, err := cliformat.Parse(data)
	if err != nil {
		return pipeline.Source{}, err
	}
	mod, err := m.ToAstiface()
	if err != nil {
		return pipeline.Source{}, err
	}
	return pipeline.Source{Files: []*astiface.Module{mod}}, nil
}

// reportDiagnostics prints every diagnostic in result.Sink and reports
// whether the run succeeded (no Error-severity diagnostics).
func reportDiagnostics(result pipeline.Result, asJSON bool) bool {
	if asJSON {
		data, err := result.Sink.ToJSON(true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			return false
		}
		fmt.Println(data)
		return !result.Sink.HasErrors()
	}

	for _, r := range result.Sink.Reports() {
		prefix := yellow("Warning")
		if r.Severity == diag.Error {
			prefix = red("Error")
		}
		fmt.Fprintf(os.Stderr, "%s [%s/%s]: %s\n", prefix, r.Phase, r.Code, r.Message)
	}
	return !result.Sink.HasErrors()
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v (using defaults)\n", yellow("Warning"), err)
		return config.Default()
	}
	return cfg
}

func runBuild(path, cfgPath string, asJSON bool) {
	cfg := loadConfig(cfgPath)
	src, err := loadSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	result := pipeline.Run(pipeline.Config{}, src)
	if !reportDiagnostics(result, asJSON) {
		os.Exit(1)
	}
	fmt.Printf("%s built %d module(s) against runtime %s\n", green("✓"), len(result.Modules), cfg.RuntimeLib)
}

func runCheck(path string, asJSON bool) {
	src, err := loadSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	result := pipeline.Run(pipeline.Config{}, src)
	if !reportDiagnostics(result, asJSON) {
		os.Exit(1)
	}
	fmt.Printf("%s no errors found\n", green("✓"))
}

func runEmitIR(path string, asJSON bool) {
	src, err := loadSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	result := pipeline.Run(pipeline.Config{}, src)
	if !reportDiagnostics(result, asJSON) {
		os.Exit(1)
	}
	for _, mod := range result.Modules {
		fmt.Println(mod.String())
	}
}

func runREPL() {
	r := repl.NewWithVersion(Version, BuildTime)
	r.SetParser(jsonDeclParser{})
	r.Start(os.Stdin, os.Stdout)
}

// jsonDeclParser treats each REPL line as a cliformat-encoded
// declaration (see internal/cliformat); a real driver would instead
// wire in a lexer/parser for source text, which is out of scope here.
type jsonDeclParser struct{}

func (jsonDeclParser) ParseDecl(module, src string) (astiface.Decl, error) {
	return cliformat.ParseDecl([]byte(src))
}
