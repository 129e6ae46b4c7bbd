package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DiagText, cfg.DiagFormat)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.True(t, cfg.Async)
	assert.Empty(t, cfg.Path)
	assert.True(t, cfg.Enabled("autostr"))
}

func TestLoadFromParentDir(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
output = "zz_derive.go"
verbose = true
workers = 4
diag_format = "json"
generators = ["autodebug", "autostr"]
`)
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0755))

	cfg, err := Load(sub)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "zz_derive.go", cfg.Output)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, DiagJSON, cfg.DiagFormat)
	assert.True(t, cfg.Enabled("autostr"))
	assert.False(t, cfg.Enabled("copywith"))
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output = \"from_file.go\"\nworkers = 2\n")
	t.Setenv("DERIVEGEN_OUTPUT", "from_env.go")
	t.Setenv("DERIVEGEN_COLOR", "never")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from_env.go", cfg.Output)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, ColorNever, cfg.Color)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{name: "syntax", content: "output = ", msg: "解析 TOML 失败"},
		{name: "unknown key", content: "outptu = \"x.go\"\n", msg: "未知的配置项 outptu"},
		{name: "bad diag format", content: "diag_format = \"xml\"\n", msg: "diag_format"},
		{name: "bad color", content: "color = \"rainbow\"\n", msg: "color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
