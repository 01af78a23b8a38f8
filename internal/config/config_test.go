package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() should validate, got %v", err)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "langc.yaml")
	body := "" +
		"schema: langc.config/v1\n" +
		"include_paths:\n" +
		"  - vendor/std\n" +
		"runtime_lib: runtime/libs/langc_rt.a\n" +
		"target_triple: aarch64-apple-darwin\n" +
		"opt: speed\n" +
		"entry: start\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TargetTriple != "aarch64-apple-darwin" {
		t.Errorf("TargetTriple = %q, want aarch64-apple-darwin", cfg.TargetTriple)
	}
	if cfg.Opt != OptSpeed {
		t.Errorf("Opt = %q, want %q", cfg.Opt, OptSpeed)
	}
	if cfg.Entry != "start" {
		t.Errorf("Entry = %q, want start", cfg.Entry)
	}
	if len(cfg.IncludePaths) != 1 || cfg.IncludePaths[0] != "vendor/std" {
		t.Errorf("IncludePaths = %v, want [vendor/std]", cfg.IncludePaths)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error loading a missing manifest")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid defaults", modify: func(c *Config) {}},
		{
			name:    "bad schema",
			modify:  func(c *Config) { c.Schema = "langc.config/v2" },
			wantErr: true,
		},
		{
			name:    "empty runtime lib",
			modify:  func(c *Config) { c.RuntimeLib = "" },
			wantErr: true,
		},
		{
			name:    "empty target triple",
			modify:  func(c *Config) { c.TargetTriple = "" },
			wantErr: true,
		},
		{
			name:    "malformed target triple",
			modify:  func(c *Config) { c.TargetTriple = "linux" },
			wantErr: true,
		},
		{
			name:    "invalid opt level",
			modify:  func(c *Config) { c.Opt = "ludicrous" },
			wantErr: true,
		},
		{
			name:    "blank include path entry",
			modify:  func(c *Config) { c.IncludePaths = []string{""} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
