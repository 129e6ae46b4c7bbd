package plugin

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// EnumMarker 标记 oneof 枚举的注解，只用于识别类型形状，不能绑定生成器
const EnumMarker = "Enum"

// Registry 注解注册表，一个触发注解只能绑定一个生成器
type Registry struct {
	mu         sync.RWMutex
	generators []Generator          // 按优先级、名称排序
	owners     map[string]Generator // 触发注解 -> 生成器
}

func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]Generator)}
}

// Register 注册生成器；名称重复、注解已被占用或使用保留注解时返回错误
func (r *Registry) Register(gen Generator) error {
	if gen.Name() == "" {
		return errors.New("生成器名称不能为空")
	}
	if len(gen.Annotations()) == 0 {
		return fmt.Errorf("生成器 %q 没有声明触发注解", gen.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lookup(gen.Name()) != nil {
		return fmt.Errorf("生成器 %q 已注册", gen.Name())
	}
	for _, ann := range gen.Annotations() {
		if ann == EnumMarker {
			return fmt.Errorf("@%s 是保留注解，%q 不能绑定它", ann, gen.Name())
		}
		if owner, ok := r.owners[ann]; ok {
			return fmt.Errorf("注解 @%s 已被生成器 %q 绑定，无法被 %q 再次绑定", ann, owner.Name(), gen.Name())
		}
	}

	for _, ann := range gen.Annotations() {
		r.owners[ann] = gen
	}
	r.generators = append(r.generators, gen)
	slices.SortFunc(r.generators, func(a, b Generator) int {
		return cmp.Or(cmp.Compare(a.Priority(), b.Priority()), cmp.Compare(a.Name(), b.Name()))
	})
	return nil
}

// MustRegister 注册生成器，失败时 panic
func (r *Registry) MustRegister(gen Generator) {
	if err := r.Register(gen); err != nil {
		panic(err)
	}
}

// Unregister 移除生成器及其注解绑定
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	gen := r.lookup(name)
	if gen == nil {
		return fmt.Errorf("生成器 %q 未注册", name)
	}
	for _, ann := range gen.Annotations() {
		delete(r.owners, ann)
	}
	r.generators = slices.DeleteFunc(r.generators, func(g Generator) bool { return g.Name() == name })
	return nil
}

func (r *Registry) lookup(name string) Generator {
	gen, _ := lo.Find(r.generators, func(g Generator) bool { return g.Name() == name })
	return gen
}

// GetByAnnotation 返回绑定该触发注解的生成器
func (r *Registry) GetByAnnotation(annotation string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.owners[annotation]
	return gen, ok
}

// GetByName 按生成器名查找
func (r *Registry) GetByName(name string) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen := r.lookup(name)
	return gen, gen != nil
}

// Generators 按优先级返回所有生成器，优先级相同时按名称排序
func (r *Registry) Generators() []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.generators)
}

// Annotations 返回排序后的所有触发注解
func (r *Registry) Annotations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.owners)
	slices.Sort(names)
	return names
}

// IsRegistered 触发注解是否已绑定
func (r *Registry) IsRegistered(annotation string) bool {
	_, ok := r.GetByAnnotation(annotation)
	return ok
}

// DispatchTargets 按生成器名分组扫描到的目标
// 同一目标对同一生成器只出现一次；生成器不支持的目标种类被忽略
func (r *Registry) DispatchTargets(result *ScanResult) map[string][]*AnnotatedTarget {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dispatch := make(map[string][]*AnnotatedTarget)
	for _, target := range result.All() {
		gens := lo.FilterMap(target.Annotations, func(ann *Annotation, _ int) (Generator, bool) {
			gen, ok := r.owners[ann.Name]
			return gen, ok && slices.Contains(gen.SupportedTargets(), target.Target.Kind)
		})
		for _, gen := range lo.UniqBy(gens, Generator.Name) {
			dispatch[gen.Name()] = append(dispatch[gen.Name()], target)
		}
	}
	return dispatch
}

var globalRegistry = NewRegistry()

// Global 返回全局注册表，命令行入口在 init 中向其注册内置生成器
func Global() *Registry {
	return globalRegistry
}

// Register 向全局注册表注册生成器
func Register(gen Generator) error {
	return globalRegistry.Register(gen)
}

// MustRegister 向全局注册表注册生成器，失败时 panic
func MustRegister(gen Generator) {
	globalRegistry.MustRegister(gen)
}
