package diag

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Printer 以 "file:line:col: error[Code]: message" 形式输出诊断，
// 并在能读到源文件时附带源码行和下划线。
type Printer struct {
	w       io.Writer
	color   bool
	context bool
	// ReadFile 读取源文件，测试时可替换
	ReadFile func(path string) ([]byte, error)

	lines map[string][]string
}

// NewPrinter 创建 Printer
func NewPrinter(w io.Writer, useColor, showContext bool) *Printer {
	return &Printer{
		w:        w,
		color:    useColor,
		context:  showContext,
		ReadFile: os.ReadFile,
		lines:    make(map[string][]string),
	}
}

func (p *Printer) paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if p.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// Print 输出一条诊断
func (p *Printer) Print(d *Diagnostic) {
	sev := d.Severity.String()
	if d.IsError() {
		sev = p.paint(sev, color.FgRed, color.Bold)
	} else {
		sev = p.paint(sev, color.FgYellow, color.Bold)
	}
	loc := d.Pos.String()
	if !d.Pos.IsValid() {
		loc = "<unknown>"
	}
	derive := ""
	if d.Derive != "" {
		derive = p.paint("@"+d.Derive, color.FgCyan) + " "
	}
	_, _ = fmt.Fprintf(p.w, "%s: %s[%s]: %s%s\n", p.paint(loc, color.Bold), sev, d.Code, derive, d.Message)

	if !p.context || d.Pos.Filename == "" || d.Pos.Line <= 0 {
		return
	}
	line, ok := p.sourceLine(d.Pos.Filename, d.Pos.Line)
	if !ok {
		return
	}
	gutter := fmt.Sprintf("%5d | ", d.Pos.Line)
	_, _ = fmt.Fprintf(p.w, "%s%s\n", p.paint(gutter, color.FgBlue), line)
	_, _ = fmt.Fprintf(p.w, "%s%s\n", p.paint(strings.Repeat(" ", 6)+"| ", color.FgBlue), p.paint(Underline(line, d.Pos.Column, d.Len), color.FgRed, color.Bold))
}

// PrintAll 排序后输出全部诊断
func (p *Printer) PrintAll(list List) {
	list.Sort()
	for _, d := range list {
		p.Print(d)
	}
}

func (p *Printer) sourceLine(path string, n int) (string, bool) {
	lines, ok := p.lines[path]
	if !ok {
		data, err := p.ReadFile(path)
		if err != nil {
			p.lines[path] = nil
			return "", false
		}
		sc := bufio.NewScanner(bytes.NewReader(data))
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		p.lines[path] = lines
	}
	if n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

// Underline 生成与源码行对齐的下划线。column 从 1 开始按字节计算，
// 制表符原样保留，宽字符按显示宽度补空格。
func Underline(line string, column, length int) string {
	if column < 1 {
		column = 1
	}
	if column-1 > len(line) {
		column = len(line) + 1
	}
	var sb strings.Builder
	for _, r := range line[:column-1] {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := 1
	if length > 1 {
		end := min(column-1+length, len(line))
		if w := runewidth.StringWidth(line[column-1 : end]); w > 1 {
			width = w
		}
	}
	sb.WriteByte('^')
	sb.WriteString(strings.Repeat("~", width-1))
	return sb.String()
}

type jsonPosition struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonDiagnostic struct {
	Severity string       `json:"severity"`
	Code     Code         `json:"code"`
	Position jsonPosition `json:"position"`
	Derive   string       `json:"derive,omitempty"`
	Member   string       `json:"member,omitempty"`
	Key      string       `json:"key,omitempty"`
	Message  string       `json:"message"`
}

// MarshalJSON 把诊断列表编码为 JSON 数组
func MarshalJSON(list List) ([]byte, error) {
	list.Sort()
	out := make([]jsonDiagnostic, 0, len(list))
	for _, d := range list {
		out = append(out, jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code,
			Position: jsonPosition{File: d.Pos.Filename, Line: d.Pos.Line, Column: d.Pos.Column},
			Derive:   d.Derive,
			Member:   d.Member,
			Key:      d.Key,
			Message:  d.Message,
		})
	}
	return sonic.ConfigStd.MarshalIndent(out, "", "  ")
}

// Collect 从 error 切片中取出诊断，其余错误原样返回
func Collect(errs []error) (List, []error) {
	var (
		list  List
		other []error
	)
	for _, err := range errs {
		var d *Diagnostic
		if errors.As(err, &d) {
			list = append(list, d)
			continue
		}
		other = append(other, err)
	}
	return list, other
}
