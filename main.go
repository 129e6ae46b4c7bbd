package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/derivegen/bundlegen"
	"github.com/donutnomad/derivegen/copygen"
	"github.com/donutnomad/derivegen/debuggen"
	"github.com/donutnomad/derivegen/internal/config"
	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/plugin"
	"github.com/donutnomad/derivegen/strgen"
	"github.com/fatih/color"
	"github.com/samber/lo"
)

func init() {
	// 集中注册所有生成器
	plugin.MustRegister(debuggen.NewDebugGenerator())
	plugin.MustRegister(strgen.NewStrGenerator())
	plugin.MustRegister(copygen.NewCopyGenerator())
	plugin.MustRegister(bundlegen.NewBundleGenerator())
}

var (
	verbose    = flag.Bool("v", false, "详细输出")
	help       = flag.Bool("h", false, "显示帮助信息")
	output     = flag.String("output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE），为空时每个包输出到 derive_gen.go")
	async      = flag.Bool("async", true, "异步执行生成器")
	jobs       = flag.Int("j", 0, "异步执行时的最大并发数，0 表示不限制")
	diagFormat = flag.String("format", config.DiagText, "诊断输出格式: text|json")
	colorMode  = flag.String("color", config.ColorAuto, "诊断着色: auto|always|never")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	cfg := loadConfig()
	args := flag.Args()

	// 默认命令是 gen
	if len(args) == 0 {
		os.Exit(runGen(cfg, nil, false))
	}

	switch args[0] {
	case "gen":
		os.Exit(runGen(cfg, args[1:], false))
	case "check":
		os.Exit(runGen(cfg, args[1:], true))
	case "dev":
		runDev(cfg, args[1:])
	default:
		// 不是子命令，当作路径参数处理，执行 gen
		os.Exit(runGen(cfg, args, false))
	}
}

// loadConfig 加载配置文件和环境变量，再用显式指定的命令行参数覆盖
func loadConfig() *config.Config {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			cfg.Verbose = *verbose
		case "output":
			cfg.Output = *output
		case "async":
			cfg.Async = *async
		case "j":
			cfg.Workers = *jobs
		case "format":
			cfg.DiagFormat = *diagFormat
		case "color":
			cfg.Color = *colorMode
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(2)
	}
	if cfg.Verbose {
		fmt.Printf("配置: %s", spew.Sdump(cfg))
	}
	return cfg
}

// newRegistry 按配置挑选启用的生成器
func newRegistry(cfg *config.Config) (*plugin.Registry, error) {
	registry := plugin.NewRegistry()
	for _, gen := range plugin.Global().Generators() {
		if cfg.Enabled(gen.Name()) {
			registry.MustRegister(gen)
		}
	}
	known := lo.Map(plugin.Global().Generators(), func(g plugin.Generator, _ int) string { return g.Name() })
	if unknown, _ := lo.Difference(cfg.Generators, known); len(unknown) > 0 {
		return nil, fmt.Errorf("未知的生成器: %s", strings.Join(unknown, ", "))
	}
	if len(registry.Generators()) == 0 {
		return nil, errors.New("没有已注册的生成器")
	}
	return registry, nil
}

func patternsOrDefault(args []string) []string {
	if len(args) == 0 {
		return []string{"./..."}
	}
	return args
}

// runGen 执行生成，check 为 true 时只比较不写文件；返回进程退出码
func runGen(cfg *config.Config, args []string, check bool) int {
	registry, err := newRegistry(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	if cfg.Verbose {
		fmt.Printf("已注册 %d 个生成器:\n", len(registry.Generators()))
		for _, gen := range registry.Generators() {
			anns := lo.Map(gen.Annotations(), func(item string, index int) string {
				return "@" + item
			})
			fmt.Printf("  - %s (%s)\n", gen.Name(), strings.Join(anns, ","))
		}
		fmt.Println()
	}

	opts := &plugin.RunOptions{
		Registry: registry,
		Patterns: patternsOrDefault(args),
		Verbose:  cfg.Verbose,
		Output:   cfg.Output,
		Async:    cfg.Async,
		Jobs:     cfg.Workers,
		Check:    check,
	}

	stats, err := plugin.RunWithOptionsAndStats(context.Background(), opts)
	if stats != nil {
		if rerr := report(cfg, stats.Diagnostics); rerr != nil {
			fmt.Fprintf(os.Stderr, "错误: %v\n", rerr)
		}
	}
	if err != nil {
		if !errors.Is(err, plugin.ErrDiagnostics) || cfg.DiagFormat == config.DiagText {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		return 1
	}

	if check {
		for _, d := range stats.Drift {
			fmt.Print(d.Diff)
		}
		if len(stats.Drift) > 0 {
			fmt.Fprintf(os.Stderr, "%d 个文件与生成结果不一致\n", len(stats.Drift))
			return 1
		}
		return 0
	}

	// 输出统计信息
	if stats.FileCount > 0 || cfg.Verbose {
		fmt.Printf("\n统计: 扫描 %d 个目标, 生成 %d 个文件\n", stats.TargetCount, stats.FileCount)
		fmt.Printf("耗时: 扫描 %v, 生成 %v, 总计 %v\n", stats.ScanDuration, stats.GenerateDuration, stats.TotalDuration)
	}
	return 0
}

// report 按配置的格式输出诊断
func report(cfg *config.Config, list diag.List) error {
	if len(list) == 0 {
		return nil
	}
	if cfg.DiagFormat == config.DiagJSON {
		data, err := diag.MarshalJSON(list)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	diag.NewPrinter(os.Stderr, useColor(cfg.Color), true).PrintAll(list)
	return nil
}

func useColor(mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	return !color.NoColor
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `derivegen - Go 派生代码生成工具

用法:
  derivegen [选项] [路径...]
  derivegen gen [选项] [路径...]
  derivegen check [选项] [路径...]
  derivegen dev [选项] [路径...]

命令:
  gen     执行代码生成（默认）
  check   只比较生成结果与磁盘上的文件，有差异时输出 diff 并返回非零
  dev     启动开发模式，监听文件变动自动生成

路径:
  支持 Go 包路径模式，如:
    ./...          递归扫描当前目录及子目录（默认）
    ./pkg/...      递归扫描指定目录

配置:
  从当前目录向上查找 %s，环境变量 DERIVEGEN_* 覆盖配置文件，命令行参数优先级最高

选项:
`, config.FileName)
	flag.PrintDefaults()

	// 动态生成注解帮助信息
	registry := plugin.Global()
	if len(registry.Generators()) > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "\n支持的注解:\n")
		_, _ = fmt.Fprint(os.Stderr, plugin.FormatHelpText(registry))
	}

	_, _ = fmt.Fprintf(os.Stderr, `模板变量:
  $FILE     - 源文件名（不含 .go 后缀）
  $PACKAGE  - 包名

示例:
  derivegen                                 扫描当前目录（默认 ./...）
  derivegen -v ./models/...                 详细模式扫描 models 目录
  derivegen -format json check ./...        CI 中检查生成文件是否最新
  derivegen dev ./...                       开发模式，监听文件变动
`)
}
