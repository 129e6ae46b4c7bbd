package plugin

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/donutnomad/gg"
)

// ParseSourceToGG 把完整的 Go 源文件转为 gg 定义，供 Run 与其他生成器的输出合并
// 导入登记到 gg 上，其余源码原样作为 body，注释全部保留；点导入和空白导入被丢弃
func ParseSourceToGG(source []byte) (*gg.Generator, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析源代码失败: %w", err)
	}

	gen := gg.New()
	gen.SetPackage(file.Name.Name)
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return nil, fmt.Errorf("非法的导入路径 %s", spec.Path.Value)
		}
		switch {
		case spec.Name == nil:
			gen.P(path)
		case spec.Name.Name == "." || spec.Name.Name == "_":
			// 丢弃
		default:
			gen.PAlias(path, spec.Name.Name)
		}
	}

	body, err := bodyAfterImports(fset, file, source)
	if err != nil {
		return nil, err
	}
	if body != "" {
		gen.Body().Append(gg.String("%s", body))
	}
	return gen, nil
}

// bodyAfterImports 截取 package 子句和所有 import 声明之后的源码
func bodyAfterImports(fset *token.FileSet, file *ast.File, source []byte) (string, error) {
	end := file.Name.End()
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.IMPORT {
			break
		}
		end = gd.End()
	}
	tf := fset.File(file.Pos())
	if tf == nil {
		return "", errors.New("找不到源文件信息")
	}
	offset := tf.Offset(end)
	if offset > len(source) {
		return "", fmt.Errorf("非法的偏移量 %d", offset)
	}
	return strings.TrimSpace(string(source[offset:])), nil
}
