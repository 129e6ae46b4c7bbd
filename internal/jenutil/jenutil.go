// Package jenutil 汇集基于 jennifer 的生成器共用的部分：
// 按输出文件收集代码、泛型接收者、类型表达式转换，以及每个目标的派生流程。
package jenutil

import (
	"bytes"
	"fmt"
	"go/ast"
	"slices"

	"github.com/dave/jennifer/jen"
	"github.com/donutnomad/derivegen/internal/declmodel"
	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/internal/resolve"
	"github.com/donutnomad/derivegen/plugin"
)

// DerivePath 生成代码依赖的运行时包
const DerivePath = "github.com/donutnomad/derivegen/derive"

// BuildFunc 为一个类型生成代码；返回错误级诊断时该类型不输出任何代码
type BuildFunc func(decl *declmodel.TypeDecl) ([]jen.Code, diag.List)

// Derive 对每个目标执行 build，按输出文件收集结果
// trigger 是触发注解名，诊断会标注它
func Derive(ctx *plugin.GenerateContext, genName, trigger string, build BuildFunc) *plugin.GenerateResult {
	result := plugin.NewGenerateResult()
	files := make(map[string]*jen.File)

	for _, at := range ctx.Targets {
		ann := plugin.GetAnnotation(at.Annotations, trigger)

		decl, err := declmodel.Load(at)
		if err != nil {
			if d, ok := err.(*diag.Diagnostic); ok {
				d.WithDerive(trigger)
			}
			result.AddError(err)
			result.Skipped++
			continue
		}

		diags := resolve.TriggerErrors(decl.Fset, decl.Clauses, trigger)
		var code []jen.Code
		if !diags.HasErrors() {
			var more diag.List
			code, more = build(decl)
			diags = append(diags, more...)
		}
		diags.SetDerive(trigger)
		for _, d := range diags {
			result.AddError(d)
		}
		if diags.HasErrors() {
			result.Skipped++
			if ctx.Verbose {
				fmt.Printf("[%s] 跳过 %s: %d 个错误\n", genName, decl.Name, len(diags.Errors()))
			}
			continue
		}

		outputPath := plugin.GetOutputPath(at.Target, ann, "", ctx.GetPackageConfig(at.Target), genName, ctx.DefaultOutput)
		f, ok := files[outputPath]
		if !ok {
			f = jen.NewFile(decl.Package)
			f.HeaderComment(plugin.GeneratedHeader)
			files[outputPath] = f
		}
		for _, c := range code {
			f.Add(c)
		}
		if ctx.Verbose {
			fmt.Printf("[%s] %s -> %s\n", genName, decl.Name, outputPath)
		}
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	for _, path := range paths {
		var buf bytes.Buffer
		if err := files[path].Render(&buf); err != nil {
			result.AddError(fmt.Errorf("渲染 %s 失败: %w", path, err))
			continue
		}
		result.AddRawOutput(path, buf.Bytes())
	}
	return result
}

// Receiver 接收者类型，带泛型参数名，如 Pair[K, V]
func Receiver(decl *declmodel.TypeDecl) *jen.Statement {
	s := jen.Id(decl.Name)
	if decl.IsGeneric() {
		s.TypesFunc(func(g *jen.Group) {
			for _, name := range decl.TypeParamNames() {
				g.Id(name)
			}
		})
	}
	return s
}

// TypeParams 函数声明使用的泛型参数列表，如 [K comparable, V any]
// 非泛型类型返回 nil
func TypeParams(decl *declmodel.TypeDecl) []jen.Code {
	if !decl.IsGeneric() {
		return nil
	}
	params := make([]jen.Code, len(decl.Generics))
	for i, p := range decl.Generics {
		params[i] = jen.Id(p.Name).Add(TypeCode(decl, p.Constraint))
	}
	return params
}

// TypeCode 把源码中的类型表达式转换为 jennifer 代码
// 带包名的类型按源文件的导入转换为 Qual，保证生成文件有正确的导入
func TypeCode(decl *declmodel.TypeDecl, expr ast.Expr) *jen.Statement {
	switch t := expr.(type) {
	case *ast.Ident:
		return jen.Id(t.Name)
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			if path, ok := decl.ImportPath(x.Name); ok {
				return jen.Qual(path, t.Sel.Name)
			}
		}
	case *ast.StarExpr:
		return jen.Op("*").Add(TypeCode(decl, t.X))
	case *ast.ParenExpr:
		return jen.Parens(TypeCode(decl, t.X))
	case *ast.ArrayType:
		if t.Len == nil {
			return jen.Index().Add(TypeCode(decl, t.Elt))
		}
		return jen.Index(jen.Op(declmodel.ExprString(t.Len))).Add(TypeCode(decl, t.Elt))
	case *ast.MapType:
		return jen.Map(TypeCode(decl, t.Key)).Add(TypeCode(decl, t.Value))
	case *ast.IndexExpr:
		return TypeCode(decl, t.X).Types(TypeCode(decl, t.Index))
	case *ast.IndexListExpr:
		args := make([]jen.Code, len(t.Indices))
		for i, idx := range t.Indices {
			args[i] = TypeCode(decl, idx)
		}
		return TypeCode(decl, t.X).Types(args...)
	case *ast.UnaryExpr:
		return jen.Op(t.Op.String()).Add(TypeCode(decl, t.X))
	case *ast.BinaryExpr:
		return TypeCode(decl, t.X).Op(t.Op.String()).Add(TypeCode(decl, t.Y))
	}
	return jen.Id(declmodel.ExprString(expr))
}

// Access 访问变体载荷字段的表达式；单一载荷 *X 解引用变体指针
func Access(variant string, f *declmodel.FieldDecl) *jen.Statement {
	if f.Selector == "" {
		return jen.Op("*").Id("v").Dot(variant)
	}
	return jen.Id("v").Dot(variant).Dot(f.Selector)
}
