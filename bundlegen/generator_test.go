package bundlegen

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run 在临时目录中写入源码并执行生成，返回生成文件的内容
func run(t *testing.T, files map[string]string) (string, *plugin.RunStats, error) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	registry := plugin.NewRegistry()
	registry.MustRegister(NewBundleGenerator())
	stats, err := plugin.RunWithOptionsAndStats(context.Background(), &plugin.RunOptions{
		Registry: registry,
		Patterns: []string{dir},
	})

	data, readErr := os.ReadFile(filepath.Join(dir, "derive_gen.go"))
	if readErr != nil {
		return "", stats, err
	}
	return string(data), stats, err
}

func TestNewBundleGenerator(t *testing.T) {
	g := NewBundleGenerator()
	assert.Equal(t, "bundlegen", g.Name())
	assert.Equal(t, []string{"BundleText"}, g.Annotations())
	require.Len(t, g.ParamDefs(), 4)
	assert.Equal(t, &BundleParams{}, g.NewParams())
}

func TestBundleFile(t *testing.T) {
	code, _, err := run(t, map[string]string{
		"assets.go": `package assets

// @BundleText(name="Schema", file="schema.sql")
// @BundleText(name="Notice", file="notice.txt")
type Assets struct{}
`,
		"schema.sql": "CREATE TABLE t (\n\tid INT\n);\n",
		"notice.txt": "say \"hi\"",
	})
	require.NoError(t, err)

	assert.Contains(t, code, "package assets")
	assert.Contains(t, code, "// Schema returns the content of schema.sql, captured at generation time.")
	assert.Contains(t, code, "func (Assets) Schema() string {")
	assert.Contains(t, code, `return "CREATE TABLE t (\n\tid INT\n);\n"`)
	assert.Contains(t, code, "func (Assets) Notice() string {")
	assert.Contains(t, code, `return "say \"hi\""`)
}

func TestBundleCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("依赖 echo 命令")
	}
	code, _, err := run(t, map[string]string{
		"version.go": `package version

// @BundleText(name="Banner", command="echo hello world")
type Info[T any] struct{}
`,
	})
	require.NoError(t, err)
	assert.Contains(t, code, "func (Info[T]) Banner() string {")
	assert.Contains(t, code, `return "hello world\n"`)
	assert.Contains(t, code, "the output of `echo hello world`")
}

func TestBundleErrors(t *testing.T) {
	_, stats, err := run(t, map[string]string{
		"bad.go": `package bad

// @BundleText(name="Missing", file="missing.txt")
type A struct{}

// @BundleText(name="Both", file="x.txt", command="echo x")
type B struct{}

// @BundleText(name="Neither")
type C struct{}

// @BundleText(name="not valid", file="x.txt")
type D struct{}

// @BundleText(name="Text", file="x.txt")
// @BundleText(name="Text", file="x.txt")
type E struct{}

// @BundleText(name="Text", file="x.txt")
type F interface{}
`,
		"x.txt": "x",
	})
	require.ErrorIs(t, err, plugin.ErrDiagnostics)

	var codes []diag.Code
	for _, d := range stats.Diagnostics {
		assert.Equal(t, annotationName, d.Derive)
		codes = append(codes, d.Code)
	}
	assert.ElementsMatch(t, []diag.Code{
		diag.CodeInvalidAnnotationValue,
		diag.CodeInvalidAnnotationValue,
		diag.CodeInvalidAnnotationValue,
		diag.CodeInvalidAnnotationValue,
		diag.CodeInvalidAnnotationValue,
		diag.CodeUnsupportedShape,
	}, codes)
}

func TestCapture(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abc"), 0644))

	m, err := capture(dir, BundleParams{Name: "A", File: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "abc", m.Text)

	_, err = capture(dir, BundleParams{Name: "A", Command: "   "})
	assert.ErrorContains(t, err, "不能为空")

	if runtime.GOOS != "windows" {
		_, err = capture(dir, BundleParams{Name: "A", Command: "sleep 5", Timeout: 50 * time.Millisecond})
		assert.ErrorContains(t, err, "超时")
	}
}

func TestReceiver(t *testing.T) {
	assert.Equal(t, "Assets", receiver(&plugin.Target{Name: "Assets"}))

	file, err := parser.ParseFile(token.NewFileSet(), "box.go", "package p\n\ntype Box[K comparable, V any] struct{}\n", 0)
	require.NoError(t, err)
	spec := file.Decls[0].(*ast.GenDecl).Specs[0].(*ast.TypeSpec)
	assert.Equal(t, "Box[K, V]", receiver(&plugin.Target{Name: "Box", Node: spec}))
}
