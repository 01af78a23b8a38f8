package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/langc/internal/astiface"
	"github.com/sunholo/langc/internal/pipeline"
)

const addModuleJSON = `{
  "name": "app",
  "decls": [
    {
      "kind": "func",
      "name": "add",
      "params": [{"name": "a", "type": "int"}, {"name": "b", "type": "int"}],
      "return": "int",
      "body": [
        {"kind": "return", "expr": {"kind": "binop", "op": "+",
          "left": {"kind": "ident", "name": "a"},
          "right": {"kind": "ident", "name": "b"}}}
      ]
    }
  ]
}`

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadSourceParsesModule(t *testing.T) {
	path := writeFixture(t, "app.json", addModuleJSON)

	src, err := loadSource(path)
	require.NoError(t, err)
	require.Len(t, src.Files, 1)
	require.Equal(t, "app", src.Files[0].Name)
}

func TestLoadSourceMissingFile(t *testing.T) {
	_, err := loadSource(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadSourceInvalidJSON(t *testing.T) {
	path := writeFixture(t, "bad.json", "not json")
	_, err := loadSource(path)
	require.Error(t, err)
}

func TestReportDiagnosticsSucceedsOnCleanRun(t *testing.T) {
	path := writeFixture(t, "app.json", addModuleJSON)
	src, err := loadSource(path)
	require.NoError(t, err)

	result := pipeline.Run(pipeline.Config{}, src)
	require.True(t, reportDiagnostics(result, false))
}

func TestReportDiagnosticsReportsErrorsAsJSON(t *testing.T) {
	bad := &astiface.FuncDecl{Name: "empty", Return: &astiface.NamedType{Name: "int"}, Body: &astiface.Block{}}
	badModule := &astiface.Module{Name: "broken", Decls: []astiface.Decl{bad}}

	result := pipeline.Run(pipeline.Config{}, pipeline.Source{Files: []*astiface.Module{badModule}})
	require.False(t, reportDiagnostics(result, true))
}

func TestLoadConfigFallsBackToDefaultOnMissingFile(t *testing.T) {
	cfg := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NotNil(t, cfg)
	require.NotEmpty(t, cfg.RuntimeLib)
}

func TestLoadConfigReadsManifest(t *testing.T) {
	body := "" +
		"schema: langc.config/v1\n" +
		"runtime_lib: runtime/libs/langc_rt.a\n" +
		"target_triple: aarch64-apple-darwin\n" +
		"opt: speed\n" +
		"entry: start\n"
	path := writeFixture(t, "langc.yaml", body)

	cfg := loadConfig(path)
	require.Equal(t, "aarch64-apple-darwin", cfg.TargetTriple)
}
