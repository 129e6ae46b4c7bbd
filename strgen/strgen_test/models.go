package strgen_test

import (
	"errors"
	"strings"
)

//go:generate go run github.com/donutnomad/derivegen gen .

// Method HTTP 方法
// @AutoStr
// @Enum
type Method struct {
	Get  *struct{} // @str("get", "GET", "g")
	Post *struct{} // @str("post")
	Head *struct{}
}

// Level 日志级别
// @AutoStr(autorule="snake_case")
type Level int

const (
	LevelDebug Level = iota
	LevelWarnOnly
	LevelError // @str("error", "err")
)

// Value 没有字面量的包装变体按被包装类型解析
// @AutoStr
// @Enum
type Value struct {
	Nothing *struct{} // @str("none")
	Int     *int
	Float   *float64
}

// Tag 的方法都声明在指针接收者上
type Tag struct {
	name string
}

func (t *Tag) String() string {
	return "#" + t.name
}

func (t *Tag) UnmarshalText(text []byte) error {
	name, ok := strings.CutPrefix(string(text), "#")
	if !ok || name == "" {
		return errors.New("tag must start with #")
	}
	t.name = name
	return nil
}

// Token 词法单元
// @AutoStr
// @Enum
type Token struct {
	EOF *struct{} // @str("eof")
	Tag *Tag
}
