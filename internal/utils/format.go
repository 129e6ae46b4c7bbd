package utils

import (
	"fmt"
	"os"

	"golang.org/x/tools/imports"
)

// FormatSource 格式化 Go 源码并整理 import，path 用于确定包上下文
func FormatSource(path string, src []byte) ([]byte, error) {
	formatted, err := imports.Process(path, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("格式化 %s 失败: %w\n%s", path, err, src)
	}
	return formatted, nil
}

// WriteFormat 格式化后写入文件
func WriteFormat(path string, src []byte) error {
	formatted, err := FormatSource(path, src)
	if err != nil {
		return err
	}
	return os.WriteFile(path, formatted, 0644)
}
