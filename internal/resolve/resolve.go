// Package resolve 把注解子句解析为生成器各自的配置。
//
// 每个生成器声明一张静态的键表，键名（小写）映射到一个处理器，处理器负责校验子句的形式和值，
// 再把值写入配置。未识别的键直接忽略；同一个键出现多次时后面的覆盖前面的；
// 所有非法值都会被收集，调用方据此决定不输出任何代码。
package resolve

import (
	"fmt"
	"go/token"
	"slices"
	"strings"

	"github.com/donutnomad/derivegen/internal/diag"
	"github.com/donutnomad/derivegen/plugin"
	"github.com/samber/lo"
)

// Handler 一个键的处理器
type Handler[C any] struct {
	forms []plugin.Form
	apply func(cfg *C, clause *plugin.Annotation) error
}

// Table 键表，键为小写注解名
type Table[C any] map[string]Handler[C]

// Keys 返回排序后的键名
func (t Table[C]) Keys() []string {
	keys := lo.Keys(t)
	slices.Sort(keys)
	return keys
}

// Flag 标志键，如 @ignore
func Flag[C any](set func(cfg *C)) Handler[C] {
	return Handler[C]{
		forms: []plugin.Form{plugin.FormFlag},
		apply: func(cfg *C, _ *plugin.Annotation) error {
			set(cfg)
			return nil
		},
	}
}

// Literal 键值，如 @name="id"
func Literal[C any](set func(cfg *C, value string)) Handler[C] {
	return Handler[C]{
		forms: []plugin.Form{plugin.FormKeyValue},
		apply: func(cfg *C, clause *plugin.Annotation) error {
			set(cfg, clause.Value)
			return nil
		},
	}
}

// OneOf 取值限定在 legal 中的键值，比较区分大小写
func OneOf[C any](legal []string, set func(cfg *C, value string)) Handler[C] {
	return Handler[C]{
		forms: []plugin.Form{plugin.FormKeyValue},
		apply: func(cfg *C, clause *plugin.Annotation) error {
			if !slices.Contains(legal, clause.Value) {
				return fmt.Errorf("%q 不是合法取值，可选: %s", clause.Value, strings.Join(legal, ", "))
			}
			set(cfg, clause.Value)
			return nil
		},
	}
}

// List 字面量列表，如 @str("a", "b")；单个键值 @str="a" 视为只有一个元素的列表
func List[C any](set func(cfg *C, values []string)) Handler[C] {
	return Handler[C]{
		forms: []plugin.Form{plugin.FormList, plugin.FormKeyValue},
		apply: func(cfg *C, clause *plugin.Annotation) error {
			values := clause.Values
			if clause.Form == plugin.FormKeyValue {
				values = []string{clause.Value}
			}
			if len(values) == 0 {
				return fmt.Errorf("至少需要一个字面量")
			}
			set(cfg, slices.Clone(values))
			return nil
		},
	}
}

// Resolve 按书写顺序把子句应用到 cfg
// member 是子句所属的字段或变体名，类型级为空
func Resolve[C any](fset *token.FileSet, table Table[C], cfg *C, clauses []*plugin.Annotation, member string) diag.List {
	var list diag.List
	for _, clause := range clauses {
		h, ok := table[clause.Key()]
		if !ok {
			continue
		}
		pos := position(fset, clause.Pos)
		if clause.Err != nil {
			list.Add(diag.Syntax(pos, clause.Name, clause.Err).WithMember(member))
			continue
		}
		if !slices.Contains(h.forms, clause.Form) {
			list.Add(diag.InvalidValue(pos, clause.Name, "@%s 的写法应为 %s，实际为 %s",
				clause.Name, formsText(h.forms), clause.Form).WithMember(member))
			continue
		}
		if err := h.apply(cfg, clause); err != nil {
			list.Add(diag.InvalidValue(pos, clause.Name, "@%s: %v", clause.Name, err).WithMember(member))
		}
	}
	return list
}

// TypeClauses 返回生成器在类型级需要解析的子句：
// 独立注解，以及触发注解 trigger 自身展开的参数
// 其他触发注解的参数属于别的生成器，不会展开
func TypeClauses(clauses []*plugin.Annotation, trigger string) []*plugin.Annotation {
	var result []*plugin.Annotation
	for _, c := range clauses {
		if c.Name == trigger {
			result = append(result, c.Args...)
			continue
		}
		result = append(result, c)
	}
	return result
}

// TriggerErrors 报告触发注解自身的语法错误
func TriggerErrors(fset *token.FileSet, clauses []*plugin.Annotation, trigger string) diag.List {
	var list diag.List
	for _, c := range clauses {
		if c.Name == trigger && c.Err != nil {
			list.Add(diag.Syntax(position(fset, c.Pos), c.Name, c.Err))
		}
	}
	return list
}

func formsText(forms []plugin.Form) string {
	return strings.Join(lo.Map(forms, func(f plugin.Form, _ int) string {
		return f.String()
	}), " 或 ")
}

func position(fset *token.FileSet, pos token.Pos) token.Position {
	if fset == nil || !pos.IsValid() {
		return token.Position{}
	}
	return fset.Position(pos)
}
