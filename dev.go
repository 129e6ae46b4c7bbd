package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/donutnomad/derivegen/internal/config"
	"github.com/donutnomad/derivegen/plugin"
	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"golang.org/x/tools/imports"
)

// devDebounce 最后一次变化之后等待多久再生成
const devDebounce = time.Second

// watchSession 开发模式的状态，所有字段只在事件循环里访问
type watchSession struct {
	cfg       *config.Config
	registry  *plugin.Registry
	scanner   *plugin.Scanner
	watcher   *fsnotify.Watcher
	recursive bool                // 新建的子目录也要监听
	dirty     map[string]struct{} // 等待重新生成的包目录
}

func runDev(cfg *config.Config, args []string) {
	registry, err := newRegistry(cfg)
	if err == nil {
		err = dev(cfg, registry, patternsOrDefault(args))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// dev 监听 patterns 覆盖的目录，直到收到中断信号
func dev(cfg *config.Config, registry *plugin.Registry, patterns []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dirs, err := collectWatchDirs(patterns)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return errors.New("没有找到需要监听的目录")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer watcher.Close()

	s := &watchSession{
		cfg:       cfg,
		registry:  registry,
		scanner:   plugin.NewScanner(plugin.WithAnnotationFilter(registry.Annotations()...)),
		watcher:   watcher,
		recursive: slices.ContainsFunc(patterns, func(p string) bool { return strings.HasSuffix(p, "/...") }),
		dirty:     make(map[string]struct{}),
	}
	for _, dir := range dirs {
		if err := s.watch(dir); err != nil {
			return err
		}
	}

	fmt.Printf("开发模式已启动，监听 %d 个目录，按 Ctrl+C 退出\n\n", len(dirs))
	s.loop(ctx)
	fmt.Println("\n正在退出...")
	return nil
}

func (s *watchSession) watch(dir string) error {
	if err := s.watcher.Add(dir); err != nil {
		return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
	}
	if s.cfg.Verbose {
		fmt.Printf("[dev] 监听目录: %s\n", dir)
	}
	return nil
}

// loop 收集变化，安静 devDebounce 之后一次性生成所有变化的包
func (s *watchSession) loop(ctx context.Context) {
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if s.handle(event) {
				fire = time.After(devDebounce)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			if s.cfg.Verbose {
				fmt.Printf("[dev] 监听错误: %v\n", err)
			}
		case <-fire:
			fire = nil
			s.flush(ctx)
		}
	}
}

// handle 处理一个文件事件，返回是否有包需要重新生成
func (s *watchSession) handle(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	path := event.Name

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if event.Has(fsnotify.Create) && s.recursive && !skipWatchDir(info.Name()) {
			if err := s.watch(path); err != nil {
				fmt.Printf("[dev] %v\n", err)
			}
		}
		return false
	}
	if !strings.HasSuffix(path, ".go") || isGeneratedFile(path, s.cfg.Output) {
		return false
	}

	matched, err := s.scanner.QuickMatchFile(path)
	switch {
	case err != nil:
		if s.cfg.Verbose {
			fmt.Printf("[dev] 读取 %s 失败: %v\n", path, err)
		}
		return false
	case !matched:
		if s.cfg.Verbose {
			fmt.Printf("[dev] 跳过（无注解）: %s\n", path)
		}
		return false
	}
	if err := checkSyntax(path); err != nil {
		fmt.Printf("[dev] 语法错误 %s: %v\n", path, err)
		return false
	}

	if s.cfg.Verbose {
		fmt.Printf("[dev] 检测到变化: %s\n", path)
	}
	s.dirty[filepath.Dir(path)] = struct{}{}
	return true
}

// flush 对积累的包目录执行一次生成
func (s *watchSession) flush(ctx context.Context) {
	if len(s.dirty) == 0 {
		return
	}
	dirs := lo.Keys(s.dirty)
	slices.Sort(dirs)
	clear(s.dirty)

	if s.cfg.Verbose {
		fmt.Printf("[dev] 触发代码生成: %s\n", strings.Join(dirs, ", "))
	}
	stats, err := plugin.RunWithOptionsAndStats(ctx, &plugin.RunOptions{
		Registry: s.registry,
		Patterns: dirs,
		Verbose:  s.cfg.Verbose,
		Output:   s.cfg.Output,
		Async:    s.cfg.Async,
		Jobs:     s.cfg.Workers,
	})
	if stats != nil {
		if rerr := report(s.cfg, stats.Diagnostics); rerr != nil {
			fmt.Printf("[dev] 输出诊断失败: %v\n", rerr)
		}
	}
	switch {
	case err != nil:
		fmt.Printf("[dev] 生成失败: %v\n", err)
	case stats.FileCount > 0:
		fmt.Printf("[dev] 生成完成: %d 个文件 (耗时: %v)\n", stats.FileCount, stats.TotalDuration)
	case s.cfg.Verbose:
		fmt.Println("[dev] 生成完成: 无文件生成")
	}
}

// checkSyntax 只格式化不改 imports，语法错误的文件不触发生成
func checkSyntax(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = imports.Process(path, src, &imports.Options{
		Fragment:   true,
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true,
	})
	return err
}

func skipWatchDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata"
}

// collectWatchDirs 展开路径模式为需要监听的目录；非递归模式只监听目录本身
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	for _, pattern := range patterns {
		root, recursive := strings.CutSuffix(pattern, "/...")
		root, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			continue
		}
		if !recursive {
			dirs = append(dirs, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			switch {
			case err != nil:
				return err
			case !d.IsDir():
				return nil
			case path != root && skipWatchDir(d.Name()):
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return lo.Uniq(dirs), nil
}

// isGeneratedFile 测试文件、_gen.go 文件，以及与配置的默认输出同名的文件
// 默认输出含模板变量时无法按文件名判断，只看后缀
func isGeneratedFile(path, output string) bool {
	base := filepath.Base(path)
	if output != "" && !strings.Contains(output, "$") && base == filepath.Base(output) {
		return true
	}
	return strings.HasSuffix(base, "_test.go") || strings.HasSuffix(base, "_gen.go")
}
