package plugin

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// outputParam 所有生成器共用的输出文件参数，由 GetOutputPath 处理
const outputParam = "output"

// paramField 参数结构体中带 param tag 的字段
type paramField struct {
	index int
	def   ParamDef
}

// structParams 列出参数结构体中带 param tag 的字段，t 可以是指针
func structParams(t reflect.Type) []paramField {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var fields []paramField
	for i := range t.NumField() {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup("param")
		if !ok || !sf.IsExported() {
			continue
		}
		if def := decodeParamTag(tag); def.Name != "" {
			fields = append(fields, paramField{index: i, def: def})
		}
	}
	return fields
}

// ParseParamsFromStruct 从参数结构体的 param tag 提取参数定义，顺序与字段一致
//
//	type BundleParams struct {
//	    Name    string        `param:"name=name,required=true,description=生成的方法名"`
//	    Timeout time.Duration `param:"name=timeout,default=10s,description=命令超时"`
//	}
func ParseParamsFromStruct(v any) []ParamDef {
	if v == nil {
		return nil
	}
	return lo.Map(structParams(reflect.TypeOf(v)), func(f paramField, _ int) ParamDef {
		return f.def
	})
}

// decodeParamTag 解析 key=value 列表，反斜杠转义下一个字符（如 \, 表示逗号）
func decodeParamTag(tag string) ParamDef {
	var def ParamDef
	for _, pair := range splitEscaped(tag, ',') {
		key, value, _ := strings.Cut(pair, "=")
		switch strings.TrimSpace(key) {
		case "name":
			def.Name = strings.ToLower(value)
		case "required":
			def.Required = cast.ToBool(value)
		case "default":
			def.Default = value
		case "description":
			def.Description = value
		}
	}
	return def
}

// splitEscaped 按 sep 切分并去掉转义符
func splitEscaped(s string, sep byte) []string {
	var (
		parts []string
		cur   strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			cur.WriteByte(s[i])
		case c == sep:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(parts, cur.String())
}

// ParseAnnotationParams 把注解参数写入 target 指向的参数结构体
// 缺少的参数取 paramDefs 中的默认值；未声明的参数和缺少的必填参数返回错误
func ParseAnnotationParams(annotation *Annotation, target any, paramDefs []ParamDef) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("参数目标必须是结构体指针，实际为 %T", target)
	}
	rv = rv.Elem()

	fields := structParams(rv.Type())
	known := lo.Map(fields, func(f paramField, _ int) string { return f.def.Name })
	for key := range annotation.Params {
		if key != outputParam && !slices.Contains(known, key) {
			return fmt.Errorf("@%s 不支持参数 %s，可用参数: %s", annotation.Name, key, strings.Join(known, ", "))
		}
	}

	defaults := lo.SliceToMap(paramDefs, func(d ParamDef) (string, string) {
		return d.Name, d.Default
	})
	for _, f := range fields {
		name := f.def.Name
		value, ok := annotation.Params[name]
		if !ok {
			if f.def.Required {
				return fmt.Errorf("@%s 缺少必填参数 %s", annotation.Name, name)
			}
			value = lo.ValueOr(defaults, name, f.def.Default)
		}
		if err := assign(rv.Field(f.index), value); err != nil {
			return fmt.Errorf("@%s 参数 %s=%q 非法: %w", annotation.Name, name, value, err)
		}
	}
	return nil
}

var durationType = reflect.TypeFor[time.Duration]()

// assign 按字段类型转换字符串，空字符串表示零值
func assign(field reflect.Value, value string) error {
	if value == "" {
		field.SetZero()
		return nil
	}
	if field.Type() == durationType {
		d, err := cast.ToDurationE(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	var (
		converted any
		err       error
	)
	switch field.Kind() {
	case reflect.String:
		converted = value
	case reflect.Bool:
		converted, err = cast.ToBoolE(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		converted, err = cast.ToInt64E(value)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		converted, err = cast.ToUint64E(value)
	case reflect.Float32, reflect.Float64:
		converted, err = cast.ToFloat64E(value)
	default:
		return fmt.Errorf("不支持的参数类型 %s", field.Type())
	}
	if err != nil {
		return err
	}
	cv := reflect.ValueOf(converted)
	switch {
	case field.CanInt() && field.OverflowInt(cv.Int()),
		field.CanUint() && field.OverflowUint(cv.Uint()):
		return fmt.Errorf("超出 %s 的范围", field.Type())
	}
	field.Set(cv.Convert(field.Type()))
	return nil
}

// derefParams 把 NewParams 返回的指针解引用为结构体值
func derefParams(v any) any {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return v
}
