package strgen

import (
	"github.com/donutnomad/derivegen/internal/declmodel"
	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/internal/resolve"
	"github.com/donutnomad/derivegen/internal/utils"
)

// rules autorule 的合法取值及对应的命名转换
var rules = map[string]func(string) string{
	"lowercase":            utils.ToLowerCase,
	"UPPERCASE":            utils.ToUpperCase,
	"camelCase":            utils.ToCamelCase,
	"PascalCase":           utils.ToPascalCase,
	"snake_case":           utils.ToSnakeCase,
	"SCREAMING_SNAKE_CASE": utils.ToScreamingSnakeCase,
}

var ruleNames = []string{"lowercase", "UPPERCASE", "camelCase", "PascalCase", "snake_case", "SCREAMING_SNAKE_CASE"}

type typeConfig struct {
	AutoRule string // 空表示使用声明名
}

type variantConfig struct {
	Literals []string
}

var typeTable = resolve.Table[typeConfig]{
	"autorule": resolve.OneOf(ruleNames, func(c *typeConfig, v string) {
		c.AutoRule = v
	}),
}

var variantTable = resolve.Table[variantConfig]{
	"str": resolve.List(func(c *variantConfig, values []string) {
		c.Literals = values
	}),
}

type config struct {
	typeConfig
	variants map[*declmodel.VariantDecl]variantConfig
}

func resolveConfig(decl *declmodel.TypeDecl) (*config, diag.List) {
	cfg := &config{variants: make(map[*declmodel.VariantDecl]variantConfig)}
	list := resolve.Resolve(decl.Fset, typeTable, &cfg.typeConfig, resolve.TypeClauses(decl.Clauses, annotationName), "")
	for _, v := range decl.Variants {
		var vc variantConfig
		list = append(list, resolve.Resolve(decl.Fset, variantTable, &vc, v.Clauses, v.Name)...)
		cfg.variants[v] = vc
	}
	return cfg, list
}

// ruleName 变体按 autorule 转换后的名字
func (c *config) ruleName(v *declmodel.VariantDecl) string {
	if fn, ok := rules[c.AutoRule]; ok {
		return fn(v.Name)
	}
	return v.Name
}
