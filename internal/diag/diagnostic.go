// Package diag 定义代码生成过程中产生的诊断信息。
//
// 诊断总是附带源码位置，由生成器收集，最后统一交给 Printer 输出。
// 一个 derive 调用只要产生了任意 Error 级别的诊断，就不会输出任何代码。
package diag

import (
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Code 诊断分类
type Code string

const (
	// CodeUnsupportedShape 声明的形状无法被当前 derive 处理
	CodeUnsupportedShape Code = "UnsupportedShape"
	// CodeInvalidAnnotationValue 识别到的注解键，但值的形式或内容不合法
	CodeInvalidAnnotationValue Code = "InvalidAnnotationValue"
	// CodeAnnotationSyntax 注解本身无法解析
	CodeAnnotationSyntax Code = "AnnotationSyntax"
	// CodeDuplicateLiteral 同一字面量被多个变体声明，仅保留第一个
	CodeDuplicateLiteral Code = "DuplicateLiteral"
)

// Severity 诊断级别
type Severity uint8

const (
	SevWarning Severity = iota + 1
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}

// Diagnostic 一条诊断
type Diagnostic struct {
	Severity Severity
	Code     Code
	Pos      token.Position
	// Len 出错文本的字节长度，用于下划线，0 表示只标注一个字符
	Len int
	// Derive 触发的生成器注解名，如 AutoStr
	Derive string
	// Member 出错的字段或变体名，类型级诊断为空
	Member string
	// Key 出错的注解键
	Key     string
	Message string
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	if d.Pos.IsValid() {
		sb.WriteString(d.Pos.String())
		sb.WriteString(": ")
	}
	if d.Derive != "" {
		sb.WriteString("[@")
		sb.WriteString(d.Derive)
		sb.WriteString("] ")
	}
	sb.WriteString(string(d.Code))
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

// IsError 是否为错误级别
func (d *Diagnostic) IsError() bool {
	return d.Severity >= SevError
}

// WithDerive 设置触发的生成器名并返回自身
func (d *Diagnostic) WithDerive(name string) *Diagnostic {
	d.Derive = name
	return d
}

// WithMember 设置成员名并返回自身
func (d *Diagnostic) WithMember(member string) *Diagnostic {
	d.Member = member
	return d
}

func newError(code Code, pos token.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SevError,
		Code:     code,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	}
}

// UnsupportedShape 创建形状不支持的诊断
func UnsupportedShape(pos token.Position, format string, args ...any) *Diagnostic {
	return newError(CodeUnsupportedShape, pos, format, args...)
}

// InvalidValue 创建注解值非法的诊断
func InvalidValue(pos token.Position, key string, format string, args ...any) *Diagnostic {
	d := newError(CodeInvalidAnnotationValue, pos, format, args...)
	d.Key = key
	d.Len = len(key) + 1
	return d
}

// Syntax 创建注解语法错误的诊断
func Syntax(pos token.Position, key string, err error) *Diagnostic {
	d := newError(CodeAnnotationSyntax, pos, "注解 @%s 语法错误: %v", key, err)
	d.Key = key
	d.Len = len(key) + 1
	return d
}

// Warning 创建警告
func Warning(code Code, pos token.Position, format string, args ...any) *Diagnostic {
	d := newError(code, pos, format, args...)
	d.Severity = SevWarning
	return d
}

// List 诊断集合
type List []*Diagnostic

// Add 追加诊断，忽略 nil
func (l *List) Add(ds ...*Diagnostic) {
	for _, d := range ds {
		if d != nil {
			*l = append(*l, d)
		}
	}
}

// HasErrors 是否包含错误级别诊断
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Errors 仅返回错误级别诊断
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}

// SetDerive 给所有诊断设置生成器名
func (l List) SetDerive(name string) List {
	for _, d := range l {
		if d.Derive == "" {
			d.Derive = name
		}
	}
	return l
}

// Sort 按文件、行、列、代码排序，保证输出稳定
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Pos, l[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return l[i].Code < l[j].Code
	})
}

// AsErrors 转换为 error 切片
func (l List) AsErrors() []error {
	out := make([]error, 0, len(l))
	for _, d := range l {
		out = append(out, d)
	}
	return out
}
