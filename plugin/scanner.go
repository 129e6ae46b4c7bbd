package plugin

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Scanner 两阶段注解扫描器
// 先按文本快速筛出注释中出现目标注解的文件，再只对这些文件做 AST 解析
type Scanner struct {
	workers int
	verbose bool
	filter  []string // 关心的触发注解，为空表示任意注解
}

type ScannerOption func(*Scanner)

// WithWorkers 两个阶段的最大并发数
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithScannerVerbose(v bool) ScannerOption {
	return func(s *Scanner) { s.verbose = v }
}

// WithAnnotationFilter 只收集带有这些注解之一的类型
func WithAnnotationFilter(annotations ...string) ScannerOption {
	return func(s *Scanner) { s.filter = annotations }
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan 扫描路径模式，支持 ./...、./pkg/...、./pkg、单个 .go 文件和绝对路径
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	files, err := collectFiles(patterns)
	if err != nil {
		return nil, err
	}

	candidates, err := s.quickMatch(ctx, files)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{PackageConfigs: make(map[string]*PackageConfig)}
	if len(candidates) == 0 {
		return result, nil
	}
	if err := s.parseFiles(ctx, candidates, result); err != nil {
		return nil, err
	}
	return result, nil
}

// quickMatch 并行读取文件，保留可能包含注解或包级指令的文件，保持输入顺序
func (s *Scanner) quickMatch(ctx context.Context, files []string) ([]string, error) {
	matched := make([]bool, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := s.QuickMatchFile(file)
			if err != nil && s.verbose {
				fmt.Printf("[derivegen] 跳过无法读取的文件: %v\n", err)
			}
			matched[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Filter(files, func(_ string, i int) bool { return matched[i] }), nil
}

// annotationPattern 注释中的 @Name，前面必须是行首、空白、'/' 或 '*'
var annotationPattern = regexp.MustCompile(`(?:^|[\s/*])@(\w+)`)

// QuickMatchFile 文件的注释中是否有关心的注解或 go:derivegen: 指令
// dev 模式用它判断文件变化是否需要重新生成
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return false, err
	}
	for line := range bytes.Lines(data) {
		idx := bytes.Index(line, []byte("//"))
		if idx < 0 {
			idx = bytes.Index(line, []byte("/*"))
		}
		if idx < 0 {
			continue
		}
		comment := line[idx:]
		if bytes.Contains(comment, []byte(directivePrefix)) {
			return true, nil
		}
		for _, m := range annotationPattern.FindAllSubmatch(comment, -1) {
			if len(s.filter) == 0 || slices.Contains(s.filter, string(m[1])) {
				return true, nil
			}
		}
	}
	return false, nil
}

// parseFiles 并行解析候选文件；无法解析的文件被跳过
func (s *Scanner) parseFiles(ctx context.Context, files []string, result *ScanResult) error {
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fset := token.NewFileSet()
			file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
			if err != nil {
				if s.verbose {
					fmt.Printf("[derivegen] 跳过无法解析的文件: %v\n", err)
				}
				return nil
			}
			targets := s.collectTargets(fset, file, path)
			cfg := parsePackageConfig(file, path)

			mu.Lock()
			defer mu.Unlock()
			for _, t := range targets {
				result.add(t)
			}
			if cfg != nil {
				mergePackageConfig(result.PackageConfigs, cfg)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// 并发收集的顺序不确定，按位置排序保证输出稳定
	for _, list := range [][]*AnnotatedTarget{result.Structs, result.Interfaces, result.Types} {
		slices.SortFunc(list, func(a, b *AnnotatedTarget) int {
			return cmp.Or(
				strings.Compare(a.Target.FilePath, b.Target.FilePath),
				cmp.Compare(a.Target.Position, b.Target.Position),
			)
		})
	}
	return nil
}

// collectTargets 收集文件中带有关心注解的类型声明
// 注解来自 TypeSpec 的文档注释（单个声明时在 GenDecl 上）以及行尾注释
func (s *Scanner) collectTargets(fset *token.FileSet, file *ast.File, path string) []*AnnotatedTarget {
	var targets []*AnnotatedTarget
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			doc := ts.Doc
			if doc == nil && len(gd.Specs) == 1 {
				doc = gd.Doc
			}
			anns := ParseCommentGroups(doc, ts.Comment)
			if !s.interested(anns) {
				continue
			}
			targets = append(targets, &AnnotatedTarget{
				Target: &Target{
					Kind:        kindOf(ts),
					Name:        ts.Name.Name,
					PackageName: file.Name.Name,
					FilePath:    path,
					Position:    ts.Pos(),
					Node:        ts,
					File:        file,
					Fset:        fset,
				},
				Annotations: anns,
			})
		}
	}
	return targets
}

func kindOf(ts *ast.TypeSpec) TargetKind {
	switch ts.Type.(type) {
	case *ast.StructType:
		return TargetStruct
	case *ast.InterfaceType:
		return TargetInterface
	default:
		return TargetType
	}
}

// interested 是否包含过滤器中的注解，未设置过滤器时只要有注解即可
func (s *Scanner) interested(annotations []*Annotation) bool {
	if len(s.filter) == 0 {
		return len(annotations) > 0
	}
	return len(FilterByNames(annotations, s.filter...)) > 0
}

// skipDir 递归扫描时跳过的目录
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata"
}

// sourceFile 是否为需要扫描的源文件，测试文件和生成文件除外
func sourceFile(path string) bool {
	return strings.HasSuffix(path, ".go") &&
		!strings.HasSuffix(path, "_test.go") &&
		!strings.HasSuffix(path, "_gen.go")
}

// collectFiles 展开路径模式，结果去重并保持发现顺序
func collectFiles(patterns []string) ([]string, error) {
	var files []string
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
			if strings.HasSuffix(root, ".go") {
				files = append(files, root)
			}
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			switch {
			case err != nil:
				return err
			case d.IsDir() && path != root && (!recursive || skipDir(d.Name())):
				return filepath.SkipDir
			case !d.IsDir() && sourceFile(path):
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return lo.Uniq(files), nil
}

var defaultScanner = NewScanner()

// Scan 使用默认扫描器扫描任意注解
func Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	return defaultScanner.Scan(ctx, patterns...)
}

func ScanWithFilter(ctx context.Context, annotations []string, patterns ...string) (*ScanResult, error) {
	return NewScanner(WithAnnotationFilter(annotations...)).Scan(ctx, patterns...)
}
