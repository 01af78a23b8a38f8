// Package config loads a project's langc.yaml manifest: include paths,
// the runtime library path, the target triple, and optimization flags.
// File I/O and include-path resolution themselves are out of scope for
// this repository (an external driver concern); this package only parses
// and validates the manifest shape internal/pipeline consumes.
//
// Modeled on internal/manifest's Load/Save/Validate pattern (a single
// top-level struct with a defaulted schema version), retargeted from
// JSON example manifests to a YAML project manifest.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the langc.yaml schema this loader accepts.
const SchemaVersion = "langc.config/v1"

// OptLevel names a naive lowering optimization tier. The lowerer itself
// performs no optimization passes beyond its baseline naive lowering.
// The loader validates the value and defaults it to OptNone; no pipeline
// stage reads it.
type OptLevel string

const (
	OptNone OptLevel = "none"
	OptSize OptLevel = "size"
	OptSpeed OptLevel = "speed"
)

// Config is the parsed langc.yaml manifest.
type Config struct {
	Schema       string   `yaml:"schema"`
	IncludePaths []string `yaml:"include_paths,omitempty"`
	RuntimeLib   string   `yaml:"runtime_lib"`
	TargetTriple string   `yaml:"target_triple"`
	Opt          OptLevel `yaml:"opt,omitempty"`
	Entry        string   `yaml:"entry,omitempty"`
}

// Default returns the manifest used when no langc.yaml is present: the
// host's own triple placeholder, no extra include paths, -O0-equivalent
// naive lowering, entry point "main".
func Default() *Config {
	return &Config{
		Schema:       SchemaVersion,
		RuntimeLib:   "runtime/libs/langc_rt.a",
		TargetTriple: "x86_64-unknown-linux-gnu",
		Opt:          OptNone,
		Entry:        "main",
	}
}

// Load reads and validates a langc.yaml manifest from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the manifest for the minimum a pipeline run needs.
func (c *Config) Validate() error {
	if c.Schema == "" {
		c.Schema = SchemaVersion
	}
	if c.Schema != SchemaVersion {
		return fmt.Errorf("unsupported schema version %q (expected %q)", c.Schema, SchemaVersion)
	}
	if c.RuntimeLib == "" {
		return fmt.Errorf("runtime_lib must not be empty")
	}
	if c.TargetTriple == "" {
		return fmt.Errorf("target_triple must not be empty")
	}
	if strings.Count(c.TargetTriple, "-") < 2 {
		return fmt.Errorf("target_triple %q does not look like arch-vendor-os(-env)", c.TargetTriple)
	}
	switch c.Opt {
	case "", OptNone, OptSize, OptSpeed:
	default:
		return fmt.Errorf("invalid opt level %q", c.Opt)
	}
	if c.Opt == "" {
		c.Opt = OptNone
	}
	if c.Entry == "" {
		c.Entry = "main"
	}
	for _, p := range c.IncludePaths {
		if p == "" {
			return fmt.Errorf("include_paths entries must not be empty")
		}
	}
	return nil
}
