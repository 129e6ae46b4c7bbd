// Package declmodel 把 go/ast 中的类型声明规整为各生成器共用的只读视图。
//
// 支持的形状:
//
//	type User struct { ... }                 结构体
//	// @Enum
//	type Shape struct { Circle *Circle; ... }  oneof 枚举，非 nil 的指针字段即当前变体
//	type Color int + 同文件的 const 块          常量枚举，每个常量是一个单元变体
//
// 其他形状（接口、别名、函数/map/chan 类型等）返回 UnsupportedShape 诊断。
package declmodel

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/donutnomad/derivegen/plugin"
)

// EnumAnnotation 把结构体标记为 oneof 枚举的注解
const EnumAnnotation = plugin.EnumMarker

// Kind 声明的种类
type Kind int

const (
	KindStruct Kind = iota + 1
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	}
	return "unknown"
}

// Repr 枚举在 Go 中的表示方式
type Repr int

const (
	ReprNone  Repr = iota // 结构体
	ReprOneof             // 每个变体一个指针字段
	ReprConst             // 具名基本类型 + 常量
)

// Shape 变体的载荷形状
type Shape int

const (
	ShapeUnit       Shape = iota + 1 // *struct{} 或常量
	ShapePositional                  // *X 或 *struct{ A; B }
	ShapeNamed                       // *struct{ a A; b B }
)

func (s Shape) String() string {
	switch s {
	case ShapeUnit:
		return "unit"
	case ShapePositional:
		return "positional"
	case ShapeNamed:
		return "named"
	}
	return "unknown"
}

// TypeParam 泛型参数，约束原样透传
type TypeParam struct {
	Name       string
	Constraint ast.Expr
}

// TypeDecl 一个带注解类型的规整视图
type TypeDecl struct {
	Name     string
	Package  string
	Generics []TypeParam
	Kind     Kind
	Repr     Repr

	// Underlying 常量枚举的底层类型名，如 int、string
	Underlying string

	Fields   []*FieldDecl   // KindStruct
	Variants []*VariantDecl // KindEnum

	// Clauses 类型上的全部注解子句，按书写顺序
	Clauses []*plugin.Annotation

	Pos  token.Position
	Fset *token.FileSet

	imports map[string]string // 包名 -> 导入路径
}

// FieldDecl 字段
type FieldDecl struct {
	// Name 声明的字段名，结构体的嵌入字段取类型名；变体的位置载荷为空
	Name string
	// Selector 访问该字段使用的名字；单一载荷 *X 为空，表示直接解引用变体指针
	Selector string
	Embedded bool
	Type     ast.Expr
	// TypeString 类型的源码形式
	TypeString string
	// TypeParam 字段类型是否就是类型自身的某个泛型参数
	TypeParam bool
	Clauses   []*plugin.Annotation
	Pos       token.Position
}

// VariantDecl 枚举变体
type VariantDecl struct {
	Name    string
	Shape   Shape
	Fields  []*FieldDecl
	Clauses []*plugin.Annotation
	Pos     token.Position
}

// Payload 返回单一位置载荷，不是单一载荷时返回 nil
func (v *VariantDecl) Payload() *FieldDecl {
	if v.Shape != ShapePositional || len(v.Fields) != 1 {
		return nil
	}
	return v.Fields[0]
}

// Label 字段在诊断和输出中使用的名字
func (f *FieldDecl) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Selector
}

// IsGeneric 是否带泛型参数
func (t *TypeDecl) IsGeneric() bool {
	return len(t.Generics) > 0
}

// TypeParamNames 泛型参数名列表
func (t *TypeDecl) TypeParamNames() []string {
	names := make([]string, len(t.Generics))
	for i, p := range t.Generics {
		names[i] = p.Name
	}
	return names
}

// ImportPath 根据源文件的导入查找包名对应的路径
func (t *TypeDecl) ImportPath(name string) (string, bool) {
	path, ok := t.imports[name]
	return path, ok
}

// Position 把 token.Pos 转换为位置
func (t *TypeDecl) Position(pos token.Pos) token.Position {
	if t.Fset == nil || !pos.IsValid() {
		return t.Pos
	}
	return t.Fset.Position(pos)
}

// ExprString 类型表达式的源码形式
func ExprString(expr ast.Expr) string {
	return types.ExprString(expr)
}

// importName 推断导入路径的默认包名
func importName(path string) string {
	name := path[strings.LastIndex(path, "/")+1:]
	// example.com/foo/v2 的包名是 foo
	if len(name) > 1 && name[0] == 'v' && strings.Trim(name[1:], "0123456789") == "" {
		if i := strings.LastIndex(path, "/"); i > 0 {
			return importName(path[:i])
		}
	}
	name = strings.TrimPrefix(name, "go-")
	if i := strings.IndexAny(name, ".-"); i > 0 {
		name = name[:i]
	}
	return name
}
