package plugin

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"
)

// Form 注解子句的形式
type Form int

const (
	FormFlag     Form = iota + 1 // @key
	FormKeyValue                 // @key="literal"
	FormList                     // @key("a", "b")
)

func (f Form) String() string {
	switch f {
	case FormFlag:
		return "flag"
	case FormKeyValue:
		return "key=value"
	case FormList:
		return "list"
	default:
		return "unknown"
	}
}

// Annotation 表示解析后的注解子句
//
// 支持的写法:
//
//	@Name                    标志
//	@name="literal"          键值，也可以用反引号或不带引号的单词
//	@name("a", "b")          字面量列表
//	@Name(key=`v`, flag)     带参数的注解，参数按书写顺序展开到 Args
type Annotation struct {
	Name   string            // 注解名称，如 "AutoStr", "str"
	Form   Form              // 子句形式
	Value  string            // FormKeyValue 的值
	Values []string          // FormList 的值
	Params map[string]string // 注解参数，键为小写
	Args   []*Annotation     // 参数子句，保持书写顺序
	Raw    string            // 原始注解文本
	Pos    token.Pos         // 注解中 @ 的位置，文本解析时为 NoPos
	Err    error             // 语法错误，只有被识别的键才会报告
}

// ParseAnnotations 从注释文本中解析所有注解
func ParseAnnotations(comment string) []*Annotation {
	var annotations []*Annotation
	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimPrefix(strings.TrimSpace(line), "//")
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		annotations = append(annotations, parseLine(line, token.NoPos)...)
	}
	return annotations
}

// ParseCommentGroups 从注释组中解析注解，按注释组的顺序返回，并记录每个注解的位置
func ParseCommentGroups(groups ...*ast.CommentGroup) []*Annotation {
	var annotations []*Annotation
	for _, cg := range groups {
		if cg == nil {
			continue
		}
		for _, c := range cg.List {
			annotations = append(annotations, parseComment(c)...)
		}
	}
	return annotations
}

func parseComment(c *ast.Comment) []*Annotation {
	text := c.Text
	if strings.HasPrefix(text, "//") {
		return parseLine(text[2:], c.Slash+2)
	}
	// /* ... */ 按行处理
	body := strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	var (
		annotations []*Annotation
		offset      = 2
	)
	for _, line := range strings.Split(body, "\n") {
		annotations = append(annotations, parseLine(line, c.Slash+token.Pos(offset))...)
		offset += len(line) + 1
	}
	return annotations
}

type lineParser struct {
	s    string
	base token.Pos
}

func (p *lineParser) pos(i int) token.Pos {
	if !p.base.IsValid() {
		return token.NoPos
	}
	return p.base + token.Pos(i)
}

func parseLine(line string, base token.Pos) []*Annotation {
	p := &lineParser{s: line, base: base}
	var annotations []*Annotation
	for i := 0; i < len(line); i++ {
		if line[i] != '@' {
			continue
		}
		// 只接受位于单词开头的 @，避免误识别邮箱等文本
		if i > 0 && !isSpace(line[i-1]) {
			continue
		}
		ann, end := p.parseAnnotation(i)
		if ann == nil {
			continue
		}
		annotations = append(annotations, ann)
		i = end - 1
	}
	return annotations
}

// parseAnnotation 从 s[start]=='@' 开始解析，返回注解和结束位置
func (p *lineParser) parseAnnotation(start int) (*Annotation, int) {
	s := p.s
	j := start + 1
	for j < len(s) && isIdentChar(s[j]) {
		j++
	}
	if j == start+1 || isDigit(s[start+1]) {
		return nil, start + 1
	}

	ann := &Annotation{
		Name:   s[start+1 : j],
		Form:   FormFlag,
		Params: make(map[string]string),
		Pos:    p.pos(start),
	}

	end := j
	switch {
	case j < len(s) && s[j] == '(':
		end = p.parseArgs(ann, j+1)
	default:
		k := skipSpaces(s, j)
		if k < len(s) && s[k] == '=' {
			k = skipSpaces(s, k+1)
			value, e, err := parseLiteral(s, k)
			ann.Form = FormKeyValue
			if err != nil {
				ann.Err = err
				end = len(s)
			} else {
				ann.Value = value
				end = e
			}
		}
	}
	ann.Raw = strings.TrimSpace(s[start:end])
	return ann, end
}

// parseArgs 解析括号中的参数，k 指向 '(' 之后
func (p *lineParser) parseArgs(ann *Annotation, k int) int {
	s := p.s
	var (
		literals []string
		args     []*Annotation
	)
	fail := func(err error) int {
		ann.Err = err
		return len(s)
	}
	for {
		k = skipSpaces(s, k)
		if k >= len(s) {
			return fail(errors.New("缺少右括号 ')'"))
		}
		if s[k] == ')' && len(literals) == 0 && len(args) == 0 {
			k++
			break
		}

		switch c := s[k]; {
		case c == '"' || c == '`':
			value, e, err := parseLiteral(s, k)
			if err != nil {
				return fail(err)
			}
			literals = append(literals, value)
			k = e
		case isIdentChar(c) && !isDigit(c):
			keyStart := k
			for k < len(s) && isIdentChar(s[k]) {
				k++
			}
			arg := &Annotation{
				Name:   s[keyStart:k],
				Form:   FormFlag,
				Params: make(map[string]string),
				Pos:    p.pos(keyStart),
			}
			m := skipSpaces(s, k)
			if m < len(s) && s[m] == '=' {
				value, e, err := parseLiteral(s, skipSpaces(s, m+1))
				if err != nil {
					return fail(fmt.Errorf("参数 %s: %w", arg.Name, err))
				}
				arg.Form = FormKeyValue
				arg.Value = value
				k = e
			}
			arg.Raw = strings.TrimSpace(s[keyStart:k])
			args = append(args, arg)
		default:
			return fail(fmt.Errorf("非法字符 %q", c))
		}

		k = skipSpaces(s, k)
		if k >= len(s) {
			return fail(errors.New("缺少右括号 ')'"))
		}
		if s[k] == ',' {
			k++
			continue
		}
		if s[k] == ')' {
			k++
			break
		}
		return fail(fmt.Errorf("期望 ',' 或 ')'，实际为 %q", s[k]))
	}

	switch {
	case len(literals) > 0 && len(args) > 0:
		ann.Err = errors.New("不能混用字面量和 key=value 参数")
	case len(literals) > 0:
		ann.Form = FormList
		ann.Values = literals
	default:
		ann.Args = args
		for _, arg := range args {
			ann.Params[strings.ToLower(arg.Name)] = arg.Value
		}
	}
	return k
}

// parseLiteral 解析 "..."、`...` 或不带引号的单词
func parseLiteral(s string, k int) (string, int, error) {
	if k >= len(s) {
		return "", k, errors.New("缺少值")
	}
	switch s[k] {
	case '"':
		for j := k + 1; j < len(s); j++ {
			switch s[j] {
			case '\\':
				j++
			case '"':
				v, err := strconv.Unquote(s[k : j+1])
				if err != nil {
					return "", j + 1, fmt.Errorf("非法的字符串字面量 %s", s[k:j+1])
				}
				return v, j + 1, nil
			}
		}
		return "", len(s), errors.New("字符串未闭合")
	case '`':
		idx := strings.IndexByte(s[k+1:], '`')
		if idx < 0 {
			return "", len(s), errors.New("反引号字符串未闭合")
		}
		return s[k+1 : k+1+idx], k + idx + 2, nil
	}
	j := k
	for j < len(s) && !isSpace(s[j]) && s[j] != ',' && s[j] != ')' && s[j] != '(' {
		j++
	}
	if j == k {
		return "", k, errors.New("缺少值")
	}
	return s[k:j], j, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func skipSpaces(s string, k int) int {
	for k < len(s) && isSpace(s[k]) {
		k++
	}
	return k
}

// FilterByNames 过滤指定名称的注解
func FilterByNames(annotations []*Annotation, names ...string) []*Annotation {
	if len(names) == 0 {
		return annotations
	}

	nameSet := make(map[string]bool)
	for _, n := range names {
		nameSet[n] = true
	}

	var result []*Annotation
	for _, ann := range annotations {
		if nameSet[ann.Name] {
			result = append(result, ann)
		}
	}
	return result
}

// HasAnnotation 检查是否包含指定注解
func HasAnnotation(annotations []*Annotation, name string) bool {
	return GetAnnotation(annotations, name) != nil
}

// GetAnnotation 获取指定名称的注解
func GetAnnotation(annotations []*Annotation, name string) *Annotation {
	for _, ann := range annotations {
		if ann.Name == name {
			return ann
		}
	}
	return nil
}

// GetParam 获取注解参数
func (a *Annotation) GetParam(key string) string {
	return a.Params[strings.ToLower(key)]
}

// GetParamOr 获取注解参数，如果不存在返回默认值
func (a *Annotation) GetParamOr(key, defaultValue string) string {
	if v, ok := a.Params[strings.ToLower(key)]; ok {
		return v
	}
	return defaultValue
}

// HasParam 检查是否有指定参数
func (a *Annotation) HasParam(key string) bool {
	_, ok := a.Params[strings.ToLower(key)]
	return ok
}

// Key 返回用于匹配的小写键
func (a *Annotation) Key() string {
	return strings.ToLower(a.Name)
}
