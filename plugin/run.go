package plugin

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// GeneratedHeader 生成文件的头注释
const GeneratedHeader = "Code generated by derivegen. DO NOT EDIT."

// ErrDiagnostics 生成过程中出现了错误级别的诊断
var ErrDiagnostics = errors.New("生成过程中出现诊断错误")

// RunOptions 一次生成的选项
type RunOptions struct {
	Registry *Registry // 为 nil 时使用全局注册表
	Patterns []string
	Verbose  bool
	Output   string // 默认输出路径，优先级低于注解参数和包级指令
	Async    bool   // 生成器并发执行
	Jobs     int    // 扫描和异步生成的最大并发数，<=0 表示使用默认值
	Check    bool   // 只比较生成结果与磁盘内容，不写文件
}

// FileDrift 检查模式下磁盘内容与生成结果的差异
type FileDrift struct {
	Path string
	Diff string // unified diff，磁盘内容在前
}

// RunStats 一次生成的统计
type RunStats struct {
	ScanDuration     time.Duration
	GenerateDuration time.Duration
	TotalDuration    time.Duration
	TargetCount      int
	FileCount        int // 写入或检查的文件数

	Diagnostics diag.List   // 按位置排序
	Drift       []FileDrift // 仅检查模式
}

// Run 扫描 patterns 并执行 registry 中的生成器
func Run(ctx context.Context, registry *Registry, patterns ...string) error {
	return RunWithOptions(ctx, &RunOptions{Registry: registry, Patterns: patterns})
}

func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

var dumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}

// RunWithOptionsAndStats 执行完整流程：扫描、分发、解析参数、生成、合并写入
// 生成器产生的诊断全部收集后才返回；出现错误级诊断时返回 ErrDiagnostics，
// 其余诊断对应的代码照常写入
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	p := &pipeline{
		opts:     opts,
		registry: cmp.Or(opts.Registry, globalRegistry),
		stats:    &RunStats{},
		start:    time.Now(),
	}
	if len(p.registry.Annotations()) == 0 {
		return nil, errors.New("没有已注册的生成器")
	}

	scanned, err := p.scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	if p.stats.TargetCount == 0 {
		if opts.Verbose {
			fmt.Println("没有找到任何带注解的目标")
		}
		p.stats.TotalDuration = time.Since(p.start)
		return p.stats, nil
	}

	genStart := time.Now()
	dispatch := p.registry.DispatchTargets(scanned)
	gens := lo.Filter(p.registry.Generators(), func(g Generator, _ int) bool {
		return len(dispatch[g.Name()]) > 0
	})
	for _, gen := range gens {
		p.errs = append(p.errs, parseTargetParams(gen, dispatch[gen.Name()])...)
	}

	outputs := p.execute(gens, dispatch, scanned.PackageConfigs)
	if err := ctx.Err(); err != nil {
		return p.stats, err
	}
	p.emit(p.group(outputs))
	p.stats.GenerateDuration = time.Since(genStart)
	p.stats.TotalDuration = time.Since(p.start)
	return p.stats, p.finish()
}

// pipeline 一次运行的状态
type pipeline struct {
	opts     *RunOptions
	registry *Registry
	stats    *RunStats
	start    time.Time
	errs     []error
}

func (p *pipeline) scan(ctx context.Context) (*ScanResult, error) {
	start := time.Now()
	scanner := NewScanner(
		WithAnnotationFilter(p.registry.Annotations()...),
		WithScannerVerbose(p.opts.Verbose),
		WithWorkers(p.opts.Jobs),
	)
	result, err := scanner.Scan(ctx, p.opts.Patterns...)
	if err != nil {
		return nil, err
	}
	p.stats.ScanDuration = time.Since(start)
	p.stats.TargetCount = len(result.All())
	if p.opts.Verbose && p.stats.TargetCount > 0 {
		fmt.Printf("找到 %d 个带注解的目标 (扫描耗时: %v)\n", p.stats.TargetCount, p.stats.ScanDuration)
		if len(result.PackageConfigs) > 0 {
			fmt.Printf("包级配置:\n%s", dumper.Sdump(result.PackageConfigs))
		}
	}
	return result, nil
}

// genOutput 单个生成器的执行结果
type genOutput struct {
	name   string
	result *GenerateResult
	err    error
}

// execute 按优先级执行生成器，结果顺序与 gens 一致
// 异步模式下生成器互不影响，单个失败不会取消其他生成器
func (p *pipeline) execute(gens []Generator, dispatch map[string][]*AnnotatedTarget, pkgConfigs map[string]*PackageConfig) []genOutput {
	outputs := make([]genOutput, len(gens))
	runOne := func(i int) {
		gen := gens[i]
		targets := dispatch[gen.Name()]
		start := time.Now()
		result, err := gen.Generate(&GenerateContext{
			Targets:        targets,
			PackageConfigs: pkgConfigs,
			DefaultOutput:  p.opts.Output,
			Verbose:        p.opts.Verbose,
		})
		if p.opts.Verbose {
			fmt.Printf("执行生成器: %s (%d 个目标, 耗时: %v)\n", gen.Name(), len(targets), time.Since(start))
		}
		outputs[i] = genOutput{name: gen.Name(), result: result, err: err}
	}

	if !p.opts.Async {
		for i := range gens {
			runOne(i)
		}
		return outputs
	}
	var g errgroup.Group
	if p.opts.Jobs > 0 {
		g.SetLimit(p.opts.Jobs)
	}
	for i := range gens {
		g.Go(func() error {
			runOne(i)
			return nil
		})
	}
	_ = g.Wait()
	return outputs
}

// emit 合并每个输出文件的定义，写入或与磁盘比较
func (p *pipeline) emit(files map[string]*fileOutput) {
	for _, path := range slices.Sorted(maps.Keys(files)) {
		merged, err := files[path].merge()
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("合并文件 %s 的定义失败: %w", path, err))
			continue
		}

		if p.opts.Check {
			drift, err := checkFile(path, merged)
			if err != nil {
				p.errs = append(p.errs, fmt.Errorf("检查文件 %s 失败: %w", path, err))
				continue
			}
			if drift != nil {
				p.stats.Drift = append(p.stats.Drift, *drift)
			}
			p.stats.FileCount++
			continue
		}

		if err := writeFile(path, merged); err != nil {
			p.errs = append(p.errs, fmt.Errorf("写入文件 %s 失败: %w", path, err))
			continue
		}
		p.stats.FileCount++
		fmt.Printf("生成文件: %s\n", path)
	}
}

// finish 整理诊断，决定返回的错误
func (p *pipeline) finish() error {
	diagnostics, others := diag.Collect(p.errs)
	diagnostics.Sort()
	p.stats.Diagnostics = diagnostics

	if len(others) > 0 {
		for _, e := range others {
			fmt.Printf("错误: %v\n", e)
		}
		return fmt.Errorf("生成过程中出现 %d 个错误", len(others))
	}
	if diagnostics.HasErrors() {
		return fmt.Errorf("%w: %d 个", ErrDiagnostics, len(diagnostics.Errors()))
	}
	return nil
}

// parseTargetParams 把每个目标上属于该生成器的触发注解解析为参数结构体
// 解析失败的注解报告 InvalidAnnotationValue 并从参数列表中去掉
func parseTargetParams(gen Generator, targets []*AnnotatedTarget) []error {
	if gen.NewParams() == nil {
		return nil
	}

	var errs []error
	defs := gen.ParamDefs()
	for _, target := range targets {
		parsed := make([]any, 0, 1)
		for _, ann := range target.Annotations {
			if !slices.Contains(gen.Annotations(), ann.Name) {
				continue
			}
			params := gen.NewParams()
			if err := ParseAnnotationParams(ann, params, defs); err != nil {
				pos := target.Target.Fset.Position(ann.Pos)
				errs = append(errs, diag.InvalidValue(pos, ann.Name, "%v", err).WithDerive(ann.Name))
				continue
			}
			parsed = append(parsed, derefParams(params))
		}
		if target.ParsedParams == nil {
			target.ParsedParams = make(map[string][]any)
		}
		target.ParsedParams[gen.Name()] = parsed
	}
	return errs
}
