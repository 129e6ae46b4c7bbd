package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGenerator 只提供元信息的生成器
type mockGenerator struct {
	BaseGenerator
}

func (m *mockGenerator) Generate(ctx *GenerateContext) (*GenerateResult, error) {
	return NewGenerateResult(), nil
}

func newMockGenerator(name string, annotations []string, targets []TargetKind, opts ...BaseOption) *mockGenerator {
	return &mockGenerator{BaseGenerator: *NewBaseGenerator(name, annotations, targets, opts...)}
}

func TestFormatHelpText(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(newMockGenerator(
		"autodebug",
		[]string{"AutoDebug"},
		[]TargetKind{TargetType, TargetStruct},
		WithParams(
			ParamDef{Name: "style", Default: "struct", Description: "输出风格"},
			ParamDef{Name: "label", Required: true, Description: "标签"},
		),
		WithMemberParams(ParamDef{Name: "ignore", Description: "不输出该字段"}),
	))

	help := FormatHelpText(registry)
	for _, want := range []string{
		"@AutoDebug - autodebug (struct|type)",
		"output",
		"style [默认: struct]",
		"label (必填)",
		"输出风格",
		"成员注解:",
		"@ignore",
		"不输出该字段",
		"@AutoDebug(output=$FILE_derive.go)",
		`@AutoDebug(style=struct, label="...")`,
	} {
		assert.Contains(t, help, want)
	}
}

func TestFormatHelpTextMultipleGenerators(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(newMockGenerator("autostr", []string{"AutoStr"}, []TargetKind{TargetStruct}))
	registry.MustRegister(newMockGenerator("copywith", []string{"CopyWith"}, []TargetKind{TargetStruct}))

	help := FormatHelpText(registry)
	assert.Contains(t, help, "@AutoStr - autostr")
	assert.Contains(t, help, "@CopyWith - copywith")
	assert.NotContains(t, help, "成员注解:")
}

func TestFormatHelpTextEmptyRegistry(t *testing.T) {
	assert.Contains(t, FormatHelpText(NewRegistry()), "(暂无已注册的生成器)")
}

func TestFormatParamDef(t *testing.T) {
	assert.Equal(t, "name (必填)", FormatParamDef(ParamDef{Name: "name", Required: true}))
	assert.Equal(t, "timeout [默认: 10s]", FormatParamDef(ParamDef{Name: "timeout", Default: "10s"}))
	assert.Equal(t, "file", FormatParamDef(ParamDef{Name: "file", Description: "文件"}))
}

func TestBaseGeneratorOptions(t *testing.T) {
	type params struct {
		Name string `param:"name=name,required=true,default=,description=方法名"`
	}

	g := NewBaseGenerator("bundlegen", []string{"BundleText"}, []TargetKind{TargetStruct},
		WithParamsStruct(params{}),
		WithPriority(5),
	)
	assert.Equal(t, 5, g.Priority())
	require.Len(t, g.ParamDefs(), 1)
	assert.True(t, g.ParamDefs()[0].Required)
	assert.Equal(t, &params{}, g.NewParams())
	assert.Empty(t, g.MemberParamDefs())

	plain := NewBaseGenerator("copywith", []string{"CopyWith"}, []TargetKind{TargetStruct})
	assert.Equal(t, defaultPriority, plain.Priority())
	assert.Nil(t, plain.NewParams())
}
