// Package bundlegen 处理 @BundleText 注解：在生成时读取文件内容或执行命令，
// 把得到的文本固化为类型上的无参方法。
//
//	// @BundleText(name="Schema", file="schema.sql")
//	// @BundleText(name="GoVersion", command="go version", timeout=5s)
//	type Assets struct{}
//
// 同一类型上可以出现多个 @BundleText，每个生成一个方法。
package bundlegen

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/plugin"
	"github.com/samber/lo"
)

const (
	generatorName  = "bundlegen"
	annotationName = "BundleText"

	defaultTimeout = 10 * time.Second
)

// BundleParams @BundleText 注解参数，file 和 command 必须二选一
type BundleParams struct {
	Name    string        `param:"name=name,required=true,default=,description=生成的方法名"`
	File    string        `param:"name=file,required=false,default=,description=读取的文件，相对路径基于源文件所在目录"`
	Command string        `param:"name=command,required=false,default=,description=执行的命令，按空白拆分参数，捕获标准输出"`
	Timeout time.Duration `param:"name=timeout,required=false,default=10s,description=命令超时"`
}

// BundleGenerator 实现 plugin.Generator 接口
type BundleGenerator struct {
	plugin.BaseGenerator
}

func NewBundleGenerator() *BundleGenerator {
	return &BundleGenerator{
		BaseGenerator: *plugin.NewBaseGenerator(
			generatorName,
			[]string{annotationName},
			[]plugin.TargetKind{plugin.TargetStruct, plugin.TargetType, plugin.TargetInterface},
			plugin.WithParamsStruct(BundleParams{}),
			plugin.WithPriority(40),
		),
	}
}

//go:embed bundle.tmpl
var bundleTemplate string

var tmpl = template.Must(template.New("bundle").Funcs(sprig.TxtFuncMap()).Parse(bundleTemplate))

// method 一个生成的方法
type method struct {
	Name   string
	Source string // 文本来源，写入方法注释
	Text   string
}

// typeData 一个类型上的全部方法
type typeData struct {
	Receiver string
	Methods  []*method
}

// fileData 一个输出文件
type fileData struct {
	Header  string
	Package string
	Types   []*typeData
}

// Generate 执行代码生成
func (g *BundleGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()
	files := make(map[string]*fileData)

	for _, at := range ctx.Targets {
		pos := at.Target.Location()
		if at.Target.Kind == plugin.TargetInterface {
			result.AddError(diag.UnsupportedShape(pos, "@BundleText 不能用于接口 %s", at.Target.Name).WithDerive(annotationName))
			result.Skipped++
			continue
		}

		td := &typeData{Receiver: receiver(at.Target)}
		var diags diag.List
		for _, p := range at.ParamsFor(g.Name()) {
			params := p.(BundleParams)
			m, err := capture(filepath.Dir(at.Target.FilePath), params)
			if err != nil {
				diags.Add(diag.InvalidValue(pos, annotationName, "%s: %v", params.Name, err).WithMember(params.Name))
				continue
			}
			td.Methods = append(td.Methods, m)
		}
		if dup := lo.FindDuplicatesBy(td.Methods, func(m *method) string { return m.Name }); len(dup) > 0 {
			diags.Add(diag.InvalidValue(pos, annotationName, "方法 %s 重复声明", dup[0].Name).WithMember(dup[0].Name))
		}
		diags.SetDerive(annotationName)
		for _, d := range diags {
			result.AddError(d)
		}
		if diags.HasErrors() || len(td.Methods) == 0 {
			result.Skipped++
			continue
		}

		ann := plugin.GetAnnotation(at.Annotations, annotationName)
		outputPath := plugin.GetOutputPath(at.Target, ann, "", ctx.GetPackageConfig(at.Target), generatorName, ctx.DefaultOutput)
		fd, ok := files[outputPath]
		if !ok {
			fd = &fileData{Header: plugin.GeneratedHeader, Package: at.Target.PackageName}
			files[outputPath] = fd
		}
		fd.Types = append(fd.Types, td)
		if ctx.Verbose {
			fmt.Printf("[%s] %s: %d 个方法 -> %s\n", generatorName, at.Target.Name, len(td.Methods), outputPath)
		}
	}

	paths := lo.Keys(files)
	slices.Sort(paths)
	for _, path := range paths {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, files[path]); err != nil {
			result.AddError(fmt.Errorf("渲染 %s 失败: %w", path, err))
			continue
		}
		result.AddRawOutput(path, buf.Bytes())
	}
	return result, nil
}

// capture 读取文件或执行命令，得到方法返回的文本
func capture(dir string, params BundleParams) (*method, error) {
	if !token.IsIdentifier(params.Name) {
		return nil, fmt.Errorf("%q 不是合法的方法名", params.Name)
	}
	switch {
	case params.File != "" && params.Command != "":
		return nil, fmt.Errorf("file 和 command 只能指定一个")
	case params.File != "":
		path := params.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取文件失败: %w", err)
		}
		return &method{Name: params.Name, Source: "the content of " + params.File, Text: string(data)}, nil
	case params.Command != "":
		text, err := runCommand(dir, params.Command, params.Timeout)
		if err != nil {
			return nil, err
		}
		return &method{Name: params.Name, Source: "the output of `" + params.Command + "`", Text: text}, nil
	}
	return nil, fmt.Errorf("需要指定 file 或 command")
}

// runCommand 在 dir 中执行命令并返回标准输出
func runCommand(dir, command string, timeout time.Duration) (string, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return "", fmt.Errorf("command 不能为空")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("命令 %q 超时 (%s)", command, timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("命令 %q 执行失败: %w: %s", command, err, msg)
		}
		return "", fmt.Errorf("命令 %q 执行失败: %w", command, err)
	}
	return stdout.String(), nil
}

// receiver 方法接收者类型，泛型类型带上参数名
func receiver(target *plugin.Target) string {
	spec := target.Node
	if spec == nil || spec.TypeParams == nil {
		return target.Name
	}
	var names []string
	for _, field := range spec.TypeParams.List {
		for _, name := range field.Names {
			names = append(names, name.Name)
		}
	}
	return target.Name + "[" + strings.Join(names, ", ") + "]"
}
