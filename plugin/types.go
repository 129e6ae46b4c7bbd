package plugin

import (
	"go/ast"
	"go/token"

	"github.com/donutnomad/gg"
)

// TargetKind 注解所在类型声明的种类
type TargetKind int

const (
	TargetStruct    TargetKind = iota + 1 // 结构体，包括 oneof 枚举
	TargetInterface                       // 接口
	TargetType                            // 其他具名类型，如常量枚举 type Color int
)

var targetKindNames = map[TargetKind]string{
	TargetStruct:    "struct",
	TargetInterface: "interface",
	TargetType:      "type",
}

func (k TargetKind) String() string {
	if name, ok := targetKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParamDef 触发注解参数或成员注解的说明，用于解析默认值和帮助信息
type ParamDef struct {
	Name        string
	Required    bool
	Default     string // 未书写时使用的值
	Description string
}

// Target 带注解的类型声明
type Target struct {
	Kind        TargetKind
	Name        string
	PackageName string
	FilePath    string
	Position    token.Pos // 类型名的位置

	Node *ast.TypeSpec
	File *ast.File // 常量枚举需要从中查找常量
	Fset *token.FileSet
}

// Location 类型声明在源文件中的位置，诊断使用
func (t *Target) Location() token.Position {
	if t.Fset == nil {
		return token.Position{Filename: t.FilePath}
	}
	return t.Fset.Position(t.Position)
}

// AnnotatedTarget 类型声明和它的全部注解
type AnnotatedTarget struct {
	Target      *Target
	Annotations []*Annotation // 按书写顺序，包含不属于任何生成器的注解

	// ParsedParams 生成器名 -> 该生成器每个触发注解解析出的参数结构体，按注解顺序
	ParsedParams map[string][]any
}

// ParamsFor 返回生成器解析后的参数，没有参数结构体的生成器返回 nil
func (t *AnnotatedTarget) ParamsFor(genName string) []any {
	return t.ParsedParams[genName]
}

// ScanResult 扫描结果，每类目标按文件路径和位置排序
type ScanResult struct {
	Structs    []*AnnotatedTarget
	Interfaces []*AnnotatedTarget
	Types      []*AnnotatedTarget

	// PackageConfigs 包目录 -> go:derivegen: 指令
	PackageConfigs map[string]*PackageConfig
}

func (r *ScanResult) add(t *AnnotatedTarget) {
	switch t.Target.Kind {
	case TargetStruct:
		r.Structs = append(r.Structs, t)
	case TargetInterface:
		r.Interfaces = append(r.Interfaces, t)
	default:
		r.Types = append(r.Types, t)
	}
}

// All 返回所有目标：结构体、接口、其他类型
func (r *ScanResult) All() []*AnnotatedTarget {
	all := make([]*AnnotatedTarget, 0, len(r.Structs)+len(r.Interfaces)+len(r.Types))
	all = append(all, r.Structs...)
	all = append(all, r.Interfaces...)
	return append(all, r.Types...)
}

// GenerateContext 传给 Generator.Generate 的输入
type GenerateContext struct {
	Targets        []*AnnotatedTarget        // 分发给该生成器的目标
	PackageConfigs map[string]*PackageConfig // 包目录 -> 包级配置
	DefaultOutput  string                    // 命令行或配置文件指定的默认输出，优先级最低
	Verbose        bool
}

// GetPackageConfig 目标所在包的 go:derivegen: 配置，没有时返回 nil
func (c *GenerateContext) GetPackageConfig(target *Target) *PackageConfig {
	if target == nil {
		return nil
	}
	return c.PackageConfigs[packageDir(target.FilePath)]
}

// GenerateResult 生成器的输出
// 使用 gg 的生成器填 Definitions，使用 jennifer 或模板的生成器填 RawOutputs，
// 两者写入同一文件时由 Run 合并
type GenerateResult struct {
	Definitions map[string]*gg.Generator // 输出路径 -> gg 定义
	RawOutputs  map[string][]byte        // 输出路径 -> 完整 Go 源码

	// Errors 诊断以 *diag.Diagnostic 形式放在这里，其他错误原样上报
	Errors []error

	// Skipped 因错误而没有输出代码的目标数量
	Skipped int
}

func NewGenerateResult() *GenerateResult {
	return &GenerateResult{
		Definitions: make(map[string]*gg.Generator),
		RawOutputs:  make(map[string][]byte),
	}
}

func (r *GenerateResult) AddDefinition(path string, gen *gg.Generator) {
	if r.Definitions == nil {
		r.Definitions = make(map[string]*gg.Generator)
	}
	r.Definitions[path] = gen
}

func (r *GenerateResult) AddRawOutput(path string, data []byte) {
	if r.RawOutputs == nil {
		r.RawOutputs = make(map[string][]byte)
	}
	r.RawOutputs[path] = data
}

func (r *GenerateResult) AddError(err error) {
	r.Errors = append(r.Errors, err)
}

// PackageConfig 一个包的 go:derivegen: 输出配置
type PackageConfig struct {
	PackageDir    string
	DefaultOutput string            // 对所有生成器生效
	PluginOutputs map[string]string // 小写生成器名 -> 输出
}

// GetPluginOutput 生成器专属输出优先，其次是包内默认输出
func (c *PackageConfig) GetPluginOutput(pluginName string) string {
	if c == nil {
		return ""
	}
	if output, ok := c.PluginOutputs[pluginName]; ok {
		return output
	}
	return c.DefaultOutput
}
