package copygen

import (
	"go/ast"
	"slices"
	"strings"

	"github.com/donutnomad/derivegen/internal/declmodel"
	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/gg"
)

const derivePath = "github.com/donutnomad/derivegen/derive"

// mergeKind 字段的零值判断方式
type mergeKind int

const (
	mergeNonZero mergeKind = iota // other.X != <零值字面量>
	mergeBool                     // other.X
	mergeIsZero                   // !derive.IsZero(other.X)
	mergeDelegate                 // v.X.Merge(&other.X)
)

// mergeField 一个字段的合并方式
type mergeField struct {
	selector string
	kind     mergeKind
	zero     string // mergeNonZero 使用的零值字面量
}

var numericTypes = []string{
	"int", "int8", "int16", "int32", "int64",
	"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
	"float32", "float64", "complex64", "complex128",
	"byte", "rune",
}

// newMergeField 按字段类型确定合并方式
// 引用类型按值复制会和 other 共享底层数据，直接拒绝
func newMergeField(decl *declmodel.TypeDecl, f *declmodel.FieldDecl, delegate bool) (*mergeField, *diag.Diagnostic) {
	mf := &mergeField{selector: f.Selector}
	if kind := referenceKind(f.Type); kind != "" {
		return nil, diag.UnsupportedShape(f.Pos,
			"字段 %s 的类型 %s 是%s，按值合并会与 other 共享数据", f.Label(), f.TypeString, kind).WithMember(f.Label())
	}

	basic, zero := basicZero(f.Type)
	if delegate {
		if f.TypeParam || basic {
			return nil, diag.UnsupportedShape(f.Pos,
				"字段 %s 的类型 %s 没有 Merge 方法，不能使用 @copy", f.Label(), f.TypeString).WithMember(f.Label())
		}
		mf.kind = mergeDelegate
		return mf, nil
	}

	switch {
	case f.TypeParam:
		mf.kind = mergeIsZero
	case basic && zero == "false":
		mf.kind = mergeBool
	case basic:
		mf.kind = mergeNonZero
		mf.zero = zero
	default:
		mf.kind = mergeIsZero
	}
	return mf, nil
}

// referenceKind 返回引用类型的中文描述，值类型返回空
func referenceKind(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return "指针"
	case *ast.ArrayType:
		if t.Len == nil {
			return "切片"
		}
	case *ast.MapType:
		return "map"
	case *ast.ChanType:
		return "channel"
	case *ast.FuncType:
		return "函数"
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok && x.Name == "unsafe" && t.Sel.Name == "Pointer" {
			return "unsafe.Pointer"
		}
	case *ast.ParenExpr:
		return referenceKind(t.X)
	}
	return ""
}

// basicZero 判断是否为可以直接和零值字面量比较的类型
func basicZero(expr ast.Expr) (bool, string) {
	switch t := expr.(type) {
	case *ast.InterfaceType:
		return true, "nil"
	case *ast.Ident:
		switch {
		case t.Name == "string":
			return true, `""`
		case t.Name == "bool":
			return true, "false"
		case t.Name == "any" || t.Name == "error":
			return true, "nil"
		case slices.Contains(numericTypes, t.Name):
			return true, "0"
		}
	}
	return false, ""
}

// receiverType 带泛型参数的接收者类型，如 *Pair[K, V]
func receiverType(decl *declmodel.TypeDecl) string {
	if !decl.IsGeneric() {
		return "*" + decl.Name
	}
	return "*" + decl.Name + "[" + strings.Join(decl.TypeParamNames(), ", ") + "]"
}

// generateMergeMethod 生成 Merge 方法
func generateMergeMethod(group *gg.Group, t *targetInfo, derivePkg *gg.PackageRef) {
	recv := receiverType(t.decl)
	body := []any{
		gg.If("other == nil").AddBody(gg.S("return")),
	}
	for _, f := range t.fields {
		assign := gg.S("v.%s = other.%s", f.selector, f.selector)
		switch f.kind {
		case mergeDelegate:
			body = append(body, gg.S("v.%s.Merge(&other.%s)", f.selector, f.selector))
		case mergeBool:
			body = append(body, gg.If("other."+f.selector).AddBody(assign))
		case mergeNonZero:
			body = append(body, gg.If(gg.S("other.%s != %s", f.selector, f.zero)).AddBody(assign))
		case mergeIsZero:
			cond := gg.NewInlineGroup().Append(gg.S("!"), derivePkg.Call("IsZero", "other."+f.selector))
			body = append(body, gg.If(cond).AddBody(assign))
		}
	}

	group.Append(gg.LineComment("Merge copies the non-zero fields of other into v."))
	group.Append(gg.Function("Merge").
		WithReceiver("v", recv).
		AddParameter("other", recv).
		AddBody(body...))
}
