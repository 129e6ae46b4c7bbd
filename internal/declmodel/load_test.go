package declmodel

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadSource 解析源码并加载名为 name 的类型
func loadSource(t *testing.T, src, name string) (*TypeDecl, error) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "models.go", src, parser.ParseComments)
	require.NoError(t, err)

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			if ts.Name.Name != name {
				continue
			}
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			return FromSpec(fset, file, ts, plugin.ParseCommentGroups(doc, ts.Comment))
		}
	}
	t.Fatalf("类型 %s 不存在", name)
	return nil, nil
}

func requireShapeError(t *testing.T, err error) *diag.Diagnostic {
	t.Helper()
	require.Error(t, err)
	d, ok := err.(*diag.Diagnostic)
	require.True(t, ok, "期望 *diag.Diagnostic，实际为 %T", err)
	assert.Equal(t, diag.CodeUnsupportedShape, d.Code)
	return d
}

func TestLoadStruct(t *testing.T) {
	src := `package models

import (
	"time"
	mo "github.com/samber/mo"
)

// User 用户
// @AutoDebug
type User struct {
	// @name="my_id"
	ID        int64
	First, Last string // @ignore
	_         int
	time.Time
	Nick      mo.Option[string]
}
`
	d, err := loadSource(t, src, "User")
	require.NoError(t, err)

	assert.Equal(t, "User", d.Name)
	assert.Equal(t, "models", d.Package)
	assert.Equal(t, KindStruct, d.Kind)
	assert.Equal(t, ReprNone, d.Repr)
	require.Len(t, d.Clauses, 1)
	assert.Equal(t, "AutoDebug", d.Clauses[0].Name)
	assert.Equal(t, 10, d.Pos.Line)

	require.Len(t, d.Fields, 5)
	assert.Equal(t, "ID", d.Fields[0].Name)
	assert.Equal(t, "int64", d.Fields[0].TypeString)
	require.Len(t, d.Fields[0].Clauses, 1)
	assert.Equal(t, "my_id", d.Fields[0].Clauses[0].Value)

	assert.Equal(t, "First", d.Fields[1].Name)
	assert.Equal(t, "Last", d.Fields[2].Name)
	assert.Equal(t, "ignore", d.Fields[2].Clauses[0].Name, "同一行声明的字段共享注解")

	assert.True(t, d.Fields[3].Embedded)
	assert.Equal(t, "Time", d.Fields[3].Name)
	assert.Equal(t, "time.Time", d.Fields[3].TypeString)

	assert.Equal(t, "mo.Option[string]", d.Fields[4].TypeString)

	path, ok := d.ImportPath("mo")
	require.True(t, ok)
	assert.Equal(t, "github.com/samber/mo", path)
	path, ok = d.ImportPath("time")
	require.True(t, ok)
	assert.Equal(t, "time", path)
}

func TestLoadGenericStruct(t *testing.T) {
	src := `package models

type Pair[K comparable, V any] struct {
	Key   K
	Value V
	Count int
}
`
	d, err := loadSource(t, src, "Pair")
	require.NoError(t, err)
	assert.True(t, d.IsGeneric())
	assert.Equal(t, []string{"K", "V"}, d.TypeParamNames())
	assert.True(t, d.Fields[0].TypeParam)
	assert.True(t, d.Fields[1].TypeParam)
	assert.False(t, d.Fields[2].TypeParam)
}

func TestLoadOneofEnum(t *testing.T) {
	src := `package models

// @Enum
type Shape struct {
	// @str("none")
	Empty  *struct{}
	Circle *Circle // @display
	Pair   *struct {
		Circle
		Rect
	}
	Line *struct {
		// @name="from"
		Start Point
		End   Point
	}
}
`
	d, err := loadSource(t, src, "Shape")
	require.NoError(t, err)
	assert.Equal(t, KindEnum, d.Kind)
	assert.Equal(t, ReprOneof, d.Repr)
	require.Len(t, d.Variants, 4)

	empty := d.Variants[0]
	assert.Equal(t, ShapeUnit, empty.Shape)
	assert.Equal(t, []string{"none"}, empty.Clauses[0].Values)

	circle := d.Variants[1]
	assert.Equal(t, ShapePositional, circle.Shape)
	require.NotNil(t, circle.Payload())
	assert.Equal(t, "Circle", circle.Payload().TypeString)
	assert.Empty(t, circle.Payload().Selector)
	assert.Equal(t, "display", circle.Clauses[0].Name)

	pair := d.Variants[2]
	assert.Equal(t, ShapePositional, pair.Shape)
	assert.Nil(t, pair.Payload())
	require.Len(t, pair.Fields, 2)
	assert.Equal(t, "Rect", pair.Fields[1].Selector)
	assert.Empty(t, pair.Fields[1].Name)

	line := d.Variants[3]
	assert.Equal(t, ShapeNamed, line.Shape)
	require.Len(t, line.Fields, 2)
	assert.Equal(t, "Start", line.Fields[0].Name)
	assert.Equal(t, "from", line.Fields[0].Clauses[0].Value)
}

func TestLoadConstEnum(t *testing.T) {
	src := `package models

// @AutoStr
type Color int

const (
	// @str("r", "R")
	Red Color = iota
	Green // @str("g")
	_
	Blue
)

const Other = 3

const (
	Untyped = iota
	AlsoUntyped
)

// @str("p")
const Purple Color = 10
`
	d, err := loadSource(t, src, "Color")
	require.NoError(t, err)
	assert.Equal(t, ReprConst, d.Repr)
	assert.Equal(t, "int", d.Underlying)

	names := make([]string, len(d.Variants))
	for i, v := range d.Variants {
		names[i] = v.Name
		assert.Equal(t, ShapeUnit, v.Shape)
	}
	assert.Equal(t, []string{"Red", "Green", "Blue", "Purple"}, names)
	assert.Equal(t, []string{"r", "R"}, d.Variants[0].Clauses[0].Values)
	assert.Equal(t, []string{"g"}, d.Variants[1].Clauses[0].Values)
	assert.Empty(t, d.Variants[2].Clauses)
	assert.Equal(t, []string{"p"}, d.Variants[3].Clauses[0].Values)
}

func TestLoadUnsupportedShapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		typ  string
		msg  string
	}{
		{
			name: "interface",
			src:  "package m\n\ntype Any interface{ M() }\n",
			typ:  "Any",
			msg:  "接口",
		},
		{
			name: "alias",
			src:  "package m\n\ntype Name = string\n",
			typ:  "Name",
			msg:  "别名",
		},
		{
			name: "func",
			src:  "package m\n\ntype Handler func()\n",
			typ:  "Handler",
			msg:  "func()",
		},
		{
			name: "float const enum",
			src:  "package m\n\ntype Ratio float64\n",
			typ:  "Ratio",
			msg:  "float64",
		},
		{
			name: "const enum without constants",
			src:  "package m\n\ntype Level int\n",
			typ:  "Level",
			msg:  "没有声明",
		},
		{
			name: "oneof value field",
			src:  "package m\n\n// @Enum\ntype Value struct {\n\tInt int\n}\n",
			typ:  "Value",
			msg:  "必须是指针",
		},
		{
			name: "oneof embedded field",
			src:  "package m\n\n// @Enum\ntype Value struct {\n\t*Base\n}\n",
			typ:  "Value",
			msg:  "嵌入字段",
		},
		{
			name: "oneof mixed payload",
			src:  "package m\n\n// @Enum\ntype Value struct {\n\tBoth *struct {\n\t\tBase\n\t\tn int\n\t}\n}\n",
			typ:  "Value",
			msg:  "同时包含",
		},
		{
			name: "oneof without variants",
			src:  "package m\n\n// @Enum\ntype Value struct{}\n",
			typ:  "Value",
			msg:  "没有任何变体",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadSource(t, tt.src, tt.typ)
			d := requireShapeError(t, err)
			assert.Contains(t, d.Message, tt.msg)
			assert.True(t, d.Pos.IsValid())
		})
	}
}

func TestImportName(t *testing.T) {
	tests := map[string]string{
		"fmt":                             "fmt",
		"github.com/samber/lo":            "lo",
		"github.com/Masterminds/sprig/v3": "sprig",
		"gopkg.in/yaml.v3":                "yaml",
		"github.com/mattn/go-runewidth":   "runewidth",
	}
	for path, want := range tests {
		assert.Equal(t, want, importName(path), path)
	}
}
