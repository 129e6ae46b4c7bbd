// Package strgen 为带 @AutoStr 注解的枚举生成字符串互转代码：
// String、MarshalText、UnmarshalText 以及包级函数 ParseT。
//
// 解析时先匹配显式字面量，再匹配按 autorule 转换的变体名，最后依次尝试
// 没有字面量的包装变体；多个包装变体都能解析同一输入时返回歧义错误，不会任选其一。
package strgen

import (
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/donutnomad/derivegen/internal/declmodel"
	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/internal/jenutil"
	"github.com/donutnomad/derivegen/plugin"
	"github.com/samber/lo"
)

const (
	generatorName  = "autostr"
	annotationName = "AutoStr"
)

// StrGenerator 实现 plugin.Generator 接口
type StrGenerator struct {
	plugin.BaseGenerator
}

func NewStrGenerator() *StrGenerator {
	return &StrGenerator{
		BaseGenerator: *plugin.NewBaseGenerator(
			generatorName,
			[]string{annotationName},
			[]plugin.TargetKind{plugin.TargetStruct, plugin.TargetType, plugin.TargetInterface},
			plugin.WithParams(plugin.ParamDef{
				Name:        "autorule",
				Description: "变体名转换规则: " + strings.Join(ruleNames, "|"),
			}),
			plugin.WithMemberParams(plugin.ParamDef{
				Name:        "str",
				Description: `@str("a", "b") 变体接受的字面量，第一个为输出值`,
			}),
			plugin.WithPriority(20),
		),
	}
}

// Generate 执行代码生成
func (g *StrGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	return jenutil.Derive(ctx, g.Name(), annotationName, build), nil
}

// arm ParseT 中 switch 的一个分支
type arm struct {
	variant  *declmodel.VariantDecl
	literals []string
}

// plan 一个枚举的解析计划
type plan struct {
	arms      []*arm
	fallbacks []*declmodel.VariantDecl
}

func build(decl *declmodel.TypeDecl) ([]jen.Code, diag.List) {
	if decl.Kind != declmodel.KindEnum {
		return nil, diag.List{diag.UnsupportedShape(decl.Pos,
			"@AutoStr 只能用于枚举（带 @Enum 的结构体或带常量的具名类型），%s 是普通结构体", decl.Name)}
	}
	cfg, list := resolveConfig(decl)
	for _, v := range decl.Variants {
		if v.Shape == declmodel.ShapeNamed || (v.Shape == declmodel.ShapePositional && v.Payload() == nil) {
			list.Add(diag.UnsupportedShape(v.Pos,
				"变体 %s 必须是单元变体或只包装一个类型，无法与字符串互转", v.Name).WithMember(v.Name))
		}
	}
	if list.HasErrors() {
		return nil, list
	}

	p, warnings := newPlan(decl, cfg)
	list = append(list, warnings...)

	code := []jen.Code{
		stringFunc(decl, cfg), jen.Line(),
		marshalFunc(decl), jen.Line(),
		unmarshalFunc(decl), jen.Line(),
		parseFunc(decl, p), jen.Line(),
	}
	return code, list
}

// newPlan 按优先级收集分支：先显式字面量，再规则名；重复的字面量只保留第一次出现
func newPlan(decl *declmodel.TypeDecl, cfg *config) (*plan, diag.List) {
	var (
		p        = &plan{}
		warnings diag.List
		seen     = make(map[string]*declmodel.VariantDecl)
		arms     = make(map[*declmodel.VariantDecl]*arm)
	)
	add := func(v *declmodel.VariantDecl, lit string) {
		if prev, ok := seen[lit]; ok {
			warnings.Add(diag.Warning(diag.CodeDuplicateLiteral, v.Pos,
				"字面量 %q 已由变体 %s 使用，变体 %s 上的该字面量被忽略", lit, prev.Name, v.Name).WithMember(v.Name))
			return
		}
		seen[lit] = v
		a, ok := arms[v]
		if !ok {
			a = &arm{variant: v}
			arms[v] = a
			p.arms = append(p.arms, a)
		}
		a.literals = append(a.literals, lit)
	}

	for _, v := range decl.Variants {
		for _, lit := range cfg.variants[v].Literals {
			add(v, lit)
		}
	}
	for _, v := range decl.Variants {
		if len(cfg.variants[v].Literals) > 0 {
			continue
		}
		if v.Shape == declmodel.ShapeUnit {
			add(v, cfg.ruleName(v))
			continue
		}
		p.fallbacks = append(p.fallbacks, v)
	}
	return p, warnings
}

// canonical 变体的输出字符串：第一个显式字面量，否则为规则名
func canonical(cfg *config, v *declmodel.VariantDecl) string {
	if lits := cfg.variants[v].Literals; len(lits) > 0 {
		return lits[0]
	}
	return cfg.ruleName(v)
}

func stringFunc(decl *declmodel.TypeDecl, cfg *config) jen.Code {
	var body []jen.Code
	if decl.Repr == declmodel.ReprOneof {
		body = []jen.Code{
			jen.Switch().BlockFunc(func(g *jen.Group) {
				for _, v := range decl.Variants {
					var result jen.Code = jen.Lit(canonical(cfg, v))
					if v.Shape == declmodel.ShapePositional {
						// 包装变体的字符串就是被包装值的字符串
						result = jen.Qual(jenutil.DerivePath, "FormatText").Call(payloadRef(v))
					}
					g.Case(jen.Id("v").Dot(v.Name).Op("!=").Nil()).Block(jen.Return(result))
				}
			}),
			jen.Return(jen.Lit("")),
		}
	} else {
		// 常量值可能重复，用 if 链代替 switch
		for _, v := range decl.Variants {
			body = append(body, jen.If(jen.Id("v").Op("==").Id(v.Name)).Block(
				jen.Return(jen.Lit(canonical(cfg, v))),
			))
		}
		body = append(body, jen.Return(jen.Qual("fmt", "Sprintf").Call(
			jen.Lit(decl.Name+"(%v)"),
			jen.Id(decl.Underlying).Call(jen.Id("v")),
		)))
	}
	return jen.Comment("String returns the canonical text of v.").Line().
		Func().Params(jen.Id("v").Add(jenutil.Receiver(decl))).Id("String").Params().String().
		Block(body...)
}

// payloadRef 载荷的指针，指针接收者上的 String 方法也能匹配
func payloadRef(v *declmodel.VariantDecl) *jen.Statement {
	f := v.Payload()
	if f.Selector == "" {
		return jen.Id("v").Dot(v.Name)
	}
	return jen.Op("&").Id("v").Dot(v.Name).Dot(f.Selector)
}

func marshalFunc(decl *declmodel.TypeDecl) jen.Code {
	return jen.Comment("MarshalText implements encoding.TextMarshaler.").Line().
		Func().Params(jen.Id("v").Add(jenutil.Receiver(decl))).Id("MarshalText").Params().
		Params(jen.Index().Byte(), jen.Error()).
		Block(jen.Return(jen.Index().Byte().Call(jen.Id("v").Dot("String").Call()), jen.Nil()))
}

func unmarshalFunc(decl *declmodel.TypeDecl) jen.Code {
	parse := jen.Id(parseName(decl))
	if decl.IsGeneric() {
		parse.TypesFunc(func(g *jen.Group) {
			for _, name := range decl.TypeParamNames() {
				g.Id(name)
			}
		})
	}
	return jen.Comment("UnmarshalText implements encoding.TextUnmarshaler.").Line().
		Func().Params(jen.Id("v").Op("*").Add(jenutil.Receiver(decl))).Id("UnmarshalText").
		Params(jen.Id("text").Index().Byte()).Error().
		Block(
			jen.List(jen.Id("parsed"), jen.Err()).Op(":=").Add(parse).Call(jen.String().Call(jen.Id("text"))),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
			jen.Op("*").Id("v").Op("=").Id("parsed"),
			jen.Return(jen.Nil()),
		)
}

func parseName(decl *declmodel.TypeDecl) string {
	return "Parse" + decl.Name
}

func parseFunc(decl *declmodel.TypeDecl, p *plan) jen.Code {
	var body []jen.Code
	if len(p.arms) > 0 {
		body = append(body, jen.Switch(jen.Id("s")).BlockFunc(func(g *jen.Group) {
			for _, a := range p.arms {
				g.Case(lo.Map(a.literals, func(lit string, _ int) jen.Code { return jen.Lit(lit) })...).
					Block(armBody(decl, a.variant)...)
			}
		}))
	}

	invalid := jen.Return(zeroValue(decl), jen.Op("&").Qual(jenutil.DerivePath, "InvalidValueError").Values(jen.Dict{
		jen.Id("Type"):  jen.Lit(decl.Name),
		jen.Id("Input"): jen.Id("s"),
	}))
	if len(p.fallbacks) == 0 {
		body = append(body, invalid)
	} else {
		body = append(body, fallbackCode(decl, p.fallbacks, invalid)...)
	}

	fn := jen.Commentf("%s converts s to a %s.", parseName(decl), decl.Name).Line().
		Func().Id(parseName(decl))
	if decl.IsGeneric() {
		fn.Types(jenutil.TypeParams(decl)...)
	}
	return fn.Params(jen.Id("s").String()).
		Params(jenutil.Receiver(decl), jen.Error()).
		Block(body...)
}

// armBody 字面量匹配后构造变体；包装变体用被包装类型解析输入，失败时不再尝试其他变体
func armBody(decl *declmodel.TypeDecl, v *declmodel.VariantDecl) []jen.Code {
	switch {
	case decl.Repr == declmodel.ReprConst:
		return []jen.Code{jen.Return(jen.Id(v.Name), jen.Nil())}
	case v.Shape == declmodel.ShapeUnit:
		return []jen.Code{jen.Return(construct(decl, v, jen.Op("&").Struct().Values()), jen.Nil())}
	}
	return []jen.Code{
		jen.Var().Id("w").Add(jenutil.TypeCode(decl, v.Payload().Type)),
		jen.If(
			jen.Err().Op(":=").Qual(jenutil.DerivePath, "ParseText").Call(jen.Op("&").Id("w"), jen.Id("s")),
			jen.Err().Op("!=").Nil(),
		).Block(
			jen.Return(zeroValue(decl), jen.Op("&").Qual(jenutil.DerivePath, "ConversionError").Values(jen.Dict{
				jen.Id("Type"):    jen.Lit(decl.Name),
				jen.Id("Variant"): jen.Lit(v.Name),
				jen.Id("Err"):     jen.Err(),
			})),
		),
		jen.Return(construct(decl, v, jen.Op("&").Id("w")), jen.Nil()),
	}
}

// fallbackCode 依次尝试所有候选变体，统计成功的个数
func fallbackCode(decl *declmodel.TypeDecl, fallbacks []*declmodel.VariantDecl, invalid jen.Code) []jen.Code {
	stmts := []jen.Code{
		jen.Var().Defs(
			jen.Id("result").Add(jenutil.Receiver(decl)),
			jen.Id("candidates").Index().String(),
		),
	}
	for _, v := range fallbacks {
		payload := v.Payload()
		stmts = append(stmts, jen.Block(
			jen.Var().Id("w").Add(jenutil.TypeCode(decl, payload.Type)),
			jen.If(jen.Qual(jenutil.DerivePath, "ParseText").Call(jen.Op("&").Id("w"), jen.Id("s")).Op("==").Nil()).Block(
				jen.Id("result").Op("=").Add(construct(decl, v, jen.Op("&").Id("w"))),
				jen.Id("candidates").Op("=").Append(jen.Id("candidates"), jen.Lit(payload.TypeString)),
			),
		))
	}
	stmts = append(stmts,
		jen.Switch(jen.Len(jen.Id("candidates"))).Block(
			jen.Case(jen.Lit(0)).Block(invalid),
			jen.Case(jen.Lit(1)).Block(jen.Return(jen.Id("result"), jen.Nil())),
		),
		jen.Return(zeroValue(decl), jen.Op("&").Qual(jenutil.DerivePath, "AmbiguousConversionError").Values(jen.Dict{
			jen.Id("Type"):       jen.Lit(decl.Name),
			jen.Id("Input"):      jen.Id("s"),
			jen.Id("Candidates"): jen.Id("candidates"),
		})),
	)
	return stmts
}

func construct(decl *declmodel.TypeDecl, v *declmodel.VariantDecl, value jen.Code) *jen.Statement {
	return jenutil.Receiver(decl).Values(jen.Dict{jen.Id(v.Name): value})
}

func zeroValue(decl *declmodel.TypeDecl) *jen.Statement {
	if decl.Repr == declmodel.ReprConst {
		if decl.Underlying == "string" {
			return jen.Id(decl.Name).Call(jen.Lit(""))
		}
		return jen.Id(decl.Name).Call(jen.Lit(0))
	}
	return jenutil.Receiver(decl).Values()
}
