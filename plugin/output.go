package plugin

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/donutnomad/derivegen/internal/utils"
	"github.com/donutnomad/gg"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"
)

// DefaultOutputFile 没有任何输出配置时，同一个包的生成代码都写入这个文件
const DefaultOutputFile = "derive_gen.go"

// fileOutput 写入同一个文件的所有生成器定义，按生成器优先级排列
type fileOutput struct {
	defs  []*gg.Generator
	names []string
}

func (f *fileOutput) add(name string, def *gg.Generator) {
	f.defs = append(f.defs, def)
	f.names = append(f.names, name)
}

// group 按输出路径收集生成结果，jennifer 等产生的源码先转为 gg 定义
func (p *pipeline) group(outputs []genOutput) map[string]*fileOutput {
	files := make(map[string]*fileOutput)
	file := func(path string) *fileOutput {
		if f, ok := files[path]; ok {
			return f
		}
		f := &fileOutput{}
		files[path] = f
		return f
	}

	for _, out := range outputs {
		if out.err != nil {
			p.errs = append(p.errs, fmt.Errorf("生成器 %s 执行失败: %w", out.name, out.err))
			continue
		}
		if out.result == nil {
			continue
		}
		for path, def := range out.result.Definitions {
			file(path).add(out.name, def)
		}
		for _, path := range slices.Sorted(maps.Keys(out.result.RawOutputs)) {
			def, err := ParseSourceToGG(out.result.RawOutputs[path])
			if err != nil {
				p.errs = append(p.errs, fmt.Errorf("解析 %s 的输出 %s 失败: %w", out.name, path, err))
				continue
			}
			file(path).add(out.name, def)
		}
		p.errs = append(p.errs, out.result.Errors...)
	}
	return files
}

// merge 合并为一个文件，每个生成器的代码前加分隔注释
// imports 交给 gg.Merge 处理，它保留别名
func (f *fileOutput) merge() (*gg.Generator, error) {
	if len(f.defs) == 0 {
		return nil, errors.New("没有定义需要合并")
	}
	pkgs := lo.Uniq(lo.Compact(lo.Map(f.defs, func(d *gg.Generator, _ int) string { return d.PackageName() })))
	if len(pkgs) > 1 {
		return nil, fmt.Errorf("包名不一致: %s", strings.Join(pkgs, " vs "))
	}

	merged := gg.New()
	merged.SetHeader(GeneratedHeader)
	if len(pkgs) == 1 {
		merged.SetPackage(pkgs[0])
	}
	for i, def := range f.defs {
		merged.Body().AddLine()
		merged.Body().AddString(fmt.Sprintf("// ================ %s ================", f.names[i]))
		merged.Body().AddLine()
		merged.Merge(def)
	}
	return merged, nil
}

func writeFile(path string, gen *gg.Generator) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return utils.WriteFormat(path, gen.Bytes())
}

// checkFile 比较格式化后的生成结果和磁盘上的文件，一致时返回 nil
func checkFile(path string, gen *gg.Generator) (*FileDrift, error) {
	want, err := utils.FormatSource(path, gen.Bytes())
	if err != nil {
		return nil, err
	}
	have, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if string(have) == string(want) {
		return nil, nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(have)),
		B:        difflib.SplitLines(string(want)),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return nil, err
	}
	return &FileDrift{Path: path, Diff: diff}, nil
}

// GetOutputPath 计算目标的输出文件
// 优先级：注解的 output 参数 > 包级生成器配置 > 包级默认配置 > cmdOutput > defaultFileName
// 支持 $FILE（源文件名，不含 .go）和 $PACKAGE（包名）；缺少 .go 后缀时补上，相对路径基于源文件目录
func GetOutputPath(target *Target, ann *Annotation, defaultFileName string, pkgConfig *PackageConfig, pluginName string, cmdOutput string) string {
	var output string
	if ann != nil {
		output = ann.GetParam(outputParam)
	}
	output = lo.CoalesceOrEmpty(output, pkgConfig.GetPluginOutput(strings.ToLower(pluginName)), cmdOutput)
	if output == "" {
		return GetDefaultOutputPath(target, defaultFileName)
	}

	output = expandOutput(output, target)
	if !strings.HasSuffix(output, ".go") {
		output += ".go"
	}
	if filepath.IsAbs(output) {
		return output
	}
	return filepath.Join(filepath.Dir(target.FilePath), output)
}

// GetDefaultOutputPath 没有输出配置时的路径，同一个包的目标写入同一个文件
func GetDefaultOutputPath(target *Target, defaultFileName string) string {
	name := expandOutput(lo.CoalesceOrEmpty(defaultFileName, DefaultOutputFile), target)
	return filepath.Join(filepath.Dir(target.FilePath), name)
}

func expandOutput(output string, target *Target) string {
	return strings.NewReplacer(
		"$FILE", strings.TrimSuffix(filepath.Base(target.FilePath), ".go"),
		"$PACKAGE", target.PackageName,
	).Replace(output)
}
