// Package copygen 为带 @CopyWith 注解的结构体生成 Merge 方法。
//
// Merge 把 other 中非零值的字段复制到接收者，零值字段保持不变；
// 标记 @copy 的字段改为调用字段自身的 Merge，实现逐层合并。
package copygen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/derivegen/internal/declmodel"
	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/internal/resolve"
	"github.com/donutnomad/derivegen/plugin"
	"github.com/donutnomad/gg"
)

const (
	generatorName  = "copywith"
	annotationName = "CopyWith"
)

// CopyGenerator 实现 plugin.Generator 接口
type CopyGenerator struct {
	plugin.BaseGenerator
}

func NewCopyGenerator() *CopyGenerator {
	return &CopyGenerator{
		BaseGenerator: *plugin.NewBaseGenerator(
			generatorName,
			[]string{annotationName},
			[]plugin.TargetKind{plugin.TargetStruct, plugin.TargetType, plugin.TargetInterface},
			plugin.WithMemberParams(plugin.ParamDef{
				Name:        "copy",
				Description: "@copy 调用字段自身的 Merge 合并，而不是整体替换",
			}),
			plugin.WithPriority(30),
		),
	}
}

type fieldConfig struct {
	Copy bool
}

var fieldTable = resolve.Table[fieldConfig]{
	"copy": resolve.Flag(func(c *fieldConfig) {
		c.Copy = true
	}),
}

// targetInfo 一个待生成的结构体
type targetInfo struct {
	decl   *declmodel.TypeDecl
	fields []*mergeField
}

// Generate 执行代码生成
func (g *CopyGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()
	fileTargets := make(map[string][]*targetInfo)

	for _, at := range ctx.Targets {
		ann := plugin.GetAnnotation(at.Annotations, annotationName)

		decl, err := declmodel.Load(at)
		if err != nil {
			if d, ok := err.(*diag.Diagnostic); ok {
				d.WithDerive(annotationName)
			}
			result.AddError(err)
			result.Skipped++
			continue
		}

		info, diags := analyze(decl)
		diags.SetDerive(annotationName)
		for _, d := range diags {
			result.AddError(d)
		}
		if diags.HasErrors() {
			result.Skipped++
			if ctx.Verbose {
				fmt.Printf("[%s] 跳过 %s: %d 个错误\n", generatorName, decl.Name, len(diags.Errors()))
			}
			continue
		}

		outputPath := plugin.GetOutputPath(at.Target, ann, "", ctx.GetPackageConfig(at.Target), generatorName, ctx.DefaultOutput)
		fileTargets[outputPath] = append(fileTargets[outputPath], info)
		if ctx.Verbose {
			fmt.Printf("[%s] 处理结构体 %s -> %s\n", generatorName, decl.Name, outputPath)
		}
	}

	outputPaths := make([]string, 0, len(fileTargets))
	for outputPath := range fileTargets {
		outputPaths = append(outputPaths, outputPath)
	}
	slices.Sort(outputPaths)

	for _, outputPath := range outputPaths {
		targets := fileTargets[outputPath]
		// 按结构体名称排序，确保同一文件中的顺序稳定
		slices.SortFunc(targets, func(a, b *targetInfo) int {
			return strings.Compare(a.decl.Name, b.decl.Name)
		})
		if ctx.Verbose {
			for _, t := range targets {
				fmt.Printf("[%s] %s", generatorName, spew.Sdump(t.fields))
			}
		}
		result.AddDefinition(outputPath, generateDefinition(targets))
	}
	return result, nil
}

// analyze 解析字段注解并确定每个字段的合并方式，收集所有问题
func analyze(decl *declmodel.TypeDecl) (*targetInfo, diag.List) {
	list := resolve.TriggerErrors(decl.Fset, decl.Clauses, annotationName)
	if decl.Kind != declmodel.KindStruct {
		list.Add(diag.UnsupportedShape(decl.Pos, "@CopyWith 只能用于结构体，%s 是枚举", decl.Name))
		return nil, list
	}

	info := &targetInfo{decl: decl}
	for _, f := range decl.Fields {
		var fc fieldConfig
		list = append(list, resolve.Resolve(decl.Fset, fieldTable, &fc, f.Clauses, f.Label())...)
		mf, err := newMergeField(decl, f, fc.Copy)
		if err != nil {
			list.Add(err)
			continue
		}
		info.fields = append(info.fields, mf)
	}
	return info, list
}

// generateDefinition 为同一输出文件中的结构体生成 gg 定义
func generateDefinition(targets []*targetInfo) *gg.Generator {
	gen := gg.New()
	gen.SetPackage(targets[0].decl.Package)

	var derivePkg *gg.PackageRef
	for _, t := range targets {
		for _, f := range t.fields {
			if f.kind == mergeIsZero {
				derivePkg = gen.P(derivePath)
			}
		}
	}

	group := gen.Body()
	for i, t := range targets {
		if i > 0 {
			group.AddLine()
		}
		generateMergeMethod(group, t, derivePkg)
	}
	return gen
}
