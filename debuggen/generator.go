// Package debuggen 为带 @AutoDebug 注解的类型生成 fmt.Formatter 实现。
//
// 结构体输出为多行缩进的字段块（struct 风格）或位置元组（tuple 风格）；
// 枚举的单元变体输出为带引号的变体名，位置变体输出为以变体名命名的元组，
// 具名变体输出为键值块。嵌套的生成类型通过各自的 Format 方法递归输出。
package debuggen

import (
	"strconv"

	"github.com/dave/jennifer/jen"
	"github.com/donutnomad/derivegen/internal/declmodel"
	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/internal/jenutil"
	"github.com/donutnomad/derivegen/plugin"
	"github.com/samber/lo"
)

const (
	generatorName  = "autodebug"
	annotationName = "AutoDebug"
)

// DebugGenerator 实现 plugin.Generator 接口
type DebugGenerator struct {
	plugin.BaseGenerator
}

func NewDebugGenerator() *DebugGenerator {
	return &DebugGenerator{
		BaseGenerator: *plugin.NewBaseGenerator(
			generatorName,
			[]string{annotationName},
			// 接口等形状也分发进来，由 declmodel 报告 UnsupportedShape
			[]plugin.TargetKind{plugin.TargetStruct, plugin.TargetType, plugin.TargetInterface},
			plugin.WithParams(
				plugin.ParamDef{Name: "style", Default: styleStruct, Description: "结构体输出风格: struct|tuple，枚举不受影响"},
				plugin.ParamDef{Name: "format", Default: formatDebug, Description: "字段默认格式: debug|display"},
			),
			plugin.WithMemberParams(
				plugin.ParamDef{Name: "name", Description: `@name="id" 输出时使用的字段名（仅 struct 风格）`},
				plugin.ParamDef{Name: "value", Description: `@value="***" 用固定字符串替换字段值`},
				plugin.ParamDef{Name: "ignore", Description: "@ignore 不输出该字段；变体只输出变体名"},
				plugin.ParamDef{Name: "display", Description: "@display 使用 fmt.Sprint 输出"},
				plugin.ParamDef{Name: "debug", Description: "@debug 使用调试格式输出"},
			),
			plugin.WithPriority(10),
		),
	}
}

// Generate 执行代码生成
func (g *DebugGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	return jenutil.Derive(ctx, g.Name(), annotationName, build), nil
}

func build(decl *declmodel.TypeDecl) ([]jen.Code, diag.List) {
	cfg, list := resolveConfig(decl)
	if list.HasErrors() {
		return nil, list
	}

	var body []jen.Code
	switch {
	case decl.Kind == declmodel.KindStruct:
		var warnings diag.List
		body, warnings = structBody(decl, cfg)
		list = append(list, warnings...)
	case decl.Repr == declmodel.ReprOneof:
		body = oneofBody(decl, cfg)
	default:
		body = constBody(decl, cfg)
	}
	body = append([]jen.Code{verbGuard(decl)}, body...)

	fn := jen.Comment("Format implements fmt.Formatter.").Line().
		Func().Params(jen.Id("v").Add(jenutil.Receiver(decl))).Id("Format").
		Params(jen.Id("f").Qual("fmt", "State"), jen.Id("verb").Rune()).
		Block(body...)
	return []jen.Code{fn, jen.Line()}, list
}

// verbGuard 只有 %+v、%#v 以及没有 String 方法时的 %v、%s 输出调试块，
// 其余动词交给 derive.FormatVerb；常量枚举把底层值传给它
func verbGuard(decl *declmodel.TypeDecl) jen.Code {
	var raw jen.Code = jen.Nil()
	if decl.Repr == declmodel.ReprConst {
		raw = jen.Id(decl.Underlying).Call(jen.Id("v"))
	}
	return jen.If(jen.Qual(jenutil.DerivePath, "FormatVerb").Call(jen.Id("f"), jen.Id("verb"), jen.Id("v"), raw)).
		Block(jen.Return())
}

func structBody(decl *declmodel.TypeDecl, cfg *config) ([]jen.Code, diag.List) {
	var warnings diag.List
	ctor := "NewDebugStruct"
	if cfg.Style == styleTuple {
		ctor = "NewDebugTuple"
	}
	stmts := []jen.Code{
		jen.Id("b").Op(":=").Qual(jenutil.DerivePath, ctor).Call(jen.Id("f"), jen.Lit(decl.Name)),
	}
	for _, f := range decl.Fields {
		mc := cfg.fields[f]
		if mc.Ignore {
			continue
		}
		value := valueCode(mc, cfg.Format, jen.Id("v").Dot(f.Selector))
		if cfg.Style == styleTuple {
			if mc.Name != "" {
				warnings.Add(renameWarning(decl, f))
			}
			stmts = append(stmts, jen.Id("b").Dot("Elem").Call(value))
			continue
		}
		stmts = append(stmts, jen.Id("b").Dot("Field").Call(jen.Lit(lo.CoalesceOrEmpty(mc.Name, f.Name)), value))
	}
	stmts = append(stmts, jen.Id("b").Dot("Finish").Call())
	return stmts, warnings
}

func renameWarning(decl *declmodel.TypeDecl, f *declmodel.FieldDecl) *diag.Diagnostic {
	pos := f.Pos
	if c, ok := lo.Find(f.Clauses, func(c *plugin.Annotation) bool { return c.Key() == "name" }); ok {
		pos = decl.Position(c.Pos)
	}
	return diag.Warning(diag.CodeInvalidAnnotationValue, pos,
		"%s 使用 tuple 风格，字段 %s 上的 @name 不会生效", decl.Name, f.Name).WithMember(f.Name)
}

func oneofBody(decl *declmodel.TypeDecl, cfg *config) []jen.Code {
	return []jen.Code{
		jen.Switch().BlockFunc(func(g *jen.Group) {
			for _, v := range decl.Variants {
				g.Case(jen.Id("v").Dot(v.Name).Op("!=").Nil()).Block(variantCode(v, cfg))
			}
			g.Default().Block(writeString(decl.Name + "(<nil>)"))
		}),
	}
}

// variantCode 输出当前变体
func variantCode(v *declmodel.VariantDecl, cfg *config) jen.Code {
	mc := cfg.variants[v]
	label := lo.CoalesceOrEmpty(mc.Name, v.Name)
	switch {
	case mc.HasValue:
		return writeString(strconv.Quote(mc.Value))
	case mc.Ignore || v.Shape == declmodel.ShapeUnit:
		return writeString(strconv.Quote(label))
	}

	format := mc.format(cfg.Format)
	var chain *jen.Statement
	if v.Shape == declmodel.ShapeNamed {
		chain = jen.Qual(jenutil.DerivePath, "NewDebugMap").Call(jen.Id("f"))
	} else {
		chain = jen.Qual(jenutil.DerivePath, "NewDebugTuple").Call(jen.Id("f"), jen.Lit(label))
	}
	for _, f := range v.Fields {
		fc := cfg.fields[f]
		if fc.Ignore {
			continue
		}
		value := valueCode(fc, format, jenutil.Access(v.Name, f))
		if v.Shape == declmodel.ShapeNamed {
			chain.Dot("Field").Call(jen.Lit(lo.CoalesceOrEmpty(fc.Name, f.Name)), value)
		} else {
			chain.Dot("Elem").Call(value)
		}
	}
	return chain.Dot("Finish").Call()
}

// constBody 常量枚举用 if 链比较，值相同的常量不会导致重复的 case
func constBody(decl *declmodel.TypeDecl, cfg *config) []jen.Code {
	var stmts []jen.Code
	for _, v := range decl.Variants {
		mc := cfg.variants[v]
		text := strconv.Quote(lo.CoalesceOrEmpty(mc.Name, v.Name))
		if mc.HasValue {
			text = strconv.Quote(mc.Value)
		}
		stmts = append(stmts, jen.If(jen.Id("v").Op("==").Id(v.Name)).Block(
			writeString(text),
			jen.Return(),
		))
	}
	stmts = append(stmts, jen.Qual("fmt", "Fprintf").Call(
		jen.Id("f"),
		jen.Lit(decl.Name+"(%#v)"),
		jen.Id(decl.Underlying).Call(jen.Id("v")),
	))
	return stmts
}

// valueCode 字段值的输出表达式
func valueCode(mc memberConfig, inherited string, expr *jen.Statement) jen.Code {
	if mc.HasValue {
		return jen.Lit(strconv.Quote(mc.Value))
	}
	fn := "Debug"
	if mc.format(inherited) == formatDisplay {
		fn = "Display"
	}
	return jen.Qual(jenutil.DerivePath, fn).Call(expr)
}

func writeString(s string) jen.Code {
	return jen.Qual(jenutil.DerivePath, "WriteString").Call(jen.Id("f"), jen.Lit(s))
}
