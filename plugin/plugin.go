package plugin

import "reflect"

// Generator 一个 derive 的实现
//
// 扫描器找到带触发注解的类型后，Registry 按注解把目标分发给对应的 Generator。
// 每次 Generate 只处理分发给它的目标，彼此之间不共享状态，可以并发执行。
type Generator interface {
	// Name 生成器名，用于配置、日志和默认输出文件
	Name() string

	// Annotations 触发注解，一个注解只能属于一个生成器
	Annotations() []string

	// SupportedTargets 接受的声明种类，不在其中的目标不会分发
	SupportedTargets() []TargetKind

	// ParamDefs 触发注解的参数
	ParamDefs() []ParamDef

	// NewParams 返回参数结构体的新指针，nil 表示参数由生成器自行解析
	NewParams() any

	// Priority 同一文件中输出的先后，小的在前
	Priority() int

	Generate(ctx *GenerateContext) (*GenerateResult, error)
}

// MemberDocumenter 可选接口，列出字段或变体上可用的注解
type MemberDocumenter interface {
	MemberParamDefs() []ParamDef
}

const defaultPriority = 100

// BaseGenerator 提供 Generator 除 Generate 之外的实现，嵌入使用
type BaseGenerator struct {
	name        string
	annotations []string
	targets     []TargetKind
	paramDefs   []ParamDef
	memberDefs  []ParamDef
	paramsProto any
	priority    int
}

// BaseOption 配置 BaseGenerator
type BaseOption func(*BaseGenerator)

// WithParams 声明触发注解的参数，参数值由生成器自行解析
func WithParams(defs ...ParamDef) BaseOption {
	return func(g *BaseGenerator) {
		g.paramDefs = defs
	}
}

// WithParamsStruct 用带 param 标签的结构体声明参数
// 运行时每个触发注解都会解析出一个该结构体的值，见 AnnotatedTarget.ParamsFor
func WithParamsStruct(proto any) BaseOption {
	return func(g *BaseGenerator) {
		g.paramDefs = ParseParamsFromStruct(proto)
		g.paramsProto = proto
	}
}

// WithMemberParams 声明字段或变体上可用的注解，仅用于帮助信息
func WithMemberParams(defs ...ParamDef) BaseOption {
	return func(g *BaseGenerator) {
		g.memberDefs = defs
	}
}

// WithPriority 设置输出优先级
func WithPriority(priority int) BaseOption {
	return func(g *BaseGenerator) {
		g.priority = priority
	}
}

func NewBaseGenerator(name string, annotations []string, targets []TargetKind, opts ...BaseOption) *BaseGenerator {
	g := &BaseGenerator{
		name:        name,
		annotations: annotations,
		targets:     targets,
		priority:    defaultPriority,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *BaseGenerator) Name() string                   { return g.name }
func (g *BaseGenerator) Annotations() []string          { return g.annotations }
func (g *BaseGenerator) SupportedTargets() []TargetKind { return g.targets }
func (g *BaseGenerator) ParamDefs() []ParamDef          { return g.paramDefs }
func (g *BaseGenerator) MemberParamDefs() []ParamDef    { return g.memberDefs }
func (g *BaseGenerator) Priority() int                  { return g.priority }

// NewParams 按参数结构体原型创建新实例的指针
func (g *BaseGenerator) NewParams() any {
	if g.paramsProto == nil {
		return nil
	}
	typ := reflect.TypeOf(g.paramsProto)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return reflect.New(typ).Interface()
}
