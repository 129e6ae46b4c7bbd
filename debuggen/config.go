package debuggen

import (
	"github.com/donutnomad/derivegen/internal/declmodel"
	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/internal/resolve"
)

const (
	styleStruct = "struct"
	styleTuple  = "tuple"

	formatDebug   = "debug"
	formatDisplay = "display"
)

// typeConfig 类型级配置
type typeConfig struct {
	Style  string
	Format string
}

// memberConfig 字段或变体的配置
type memberConfig struct {
	Name     string // 输出中使用的名字，空表示声明名
	Value    string // 替换值，输出为带引号的字符串
	HasValue bool
	Ignore   bool
	Format   string // 空表示沿用上一级
}

var typeTable = resolve.Table[typeConfig]{
	"style": resolve.OneOf([]string{styleStruct, styleTuple}, func(c *typeConfig, v string) {
		c.Style = v
	}),
	"format": resolve.OneOf([]string{formatDebug, formatDisplay}, func(c *typeConfig, v string) {
		c.Format = v
	}),
}

var memberTable = resolve.Table[memberConfig]{
	"name": resolve.Literal(func(c *memberConfig, v string) {
		c.Name = v
	}),
	"value": resolve.Literal(func(c *memberConfig, v string) {
		c.Value = v
		c.HasValue = true
	}),
	"ignore": resolve.Flag(func(c *memberConfig) {
		c.Ignore = true
	}),
	"display": resolve.Flag(func(c *memberConfig) {
		c.Format = formatDisplay
	}),
	"debug": resolve.Flag(func(c *memberConfig) {
		c.Format = formatDebug
	}),
}

// config 一次派生的完整配置，生成后不再修改
type config struct {
	typeConfig
	fields   map[*declmodel.FieldDecl]memberConfig
	variants map[*declmodel.VariantDecl]memberConfig
}

func resolveConfig(decl *declmodel.TypeDecl) (*config, diag.List) {
	cfg := &config{
		typeConfig: typeConfig{Style: styleStruct, Format: formatDebug},
		fields:     make(map[*declmodel.FieldDecl]memberConfig),
		variants:   make(map[*declmodel.VariantDecl]memberConfig),
	}

	list := resolve.Resolve(decl.Fset, typeTable, &cfg.typeConfig, resolve.TypeClauses(decl.Clauses, annotationName), "")

	resolveFields := func(fields []*declmodel.FieldDecl) {
		for _, f := range fields {
			var mc memberConfig
			list = append(list, resolve.Resolve(decl.Fset, memberTable, &mc, f.Clauses, f.Label())...)
			cfg.fields[f] = mc
		}
	}
	resolveFields(decl.Fields)
	for _, v := range decl.Variants {
		var mc memberConfig
		list = append(list, resolve.Resolve(decl.Fset, memberTable, &mc, v.Clauses, v.Name)...)
		cfg.variants[v] = mc
		resolveFields(v.Fields)
	}
	return cfg, list
}

// format 成员最终使用的格式
func (m memberConfig) format(inherited string) string {
	if m.Format != "" {
		return m.Format
	}
	return inherited
}
