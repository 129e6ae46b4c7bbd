package plugin

import (
	"fmt"
	"go/ast"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// directivePrefix 包级输出配置指令，// 后可以有空格
//
//	//go:derivegen: -output `$FILE_derive`
//	//go:derivegen: plugin:autostr -output `strings_gen` plugin:autodebug -output `debug_gen`
const directivePrefix = "go:derivegen:"

// parsePackageConfig 读取文件中的 go:derivegen: 指令
// 一个文件只能有一条指令，出现多条时全部忽略
func parsePackageConfig(file *ast.File, filePath string) *PackageConfig {
	var lines []string
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(c.Text, "//"), "/*"), "*/")
			if _, rest, ok := strings.Cut(text, directivePrefix); ok {
				lines = append(lines, rest)
			}
		}
	}
	switch len(lines) {
	case 0:
		return nil
	case 1:
		return parseDirectiveLine(lines[0], filePath)
	default:
		fmt.Printf("警告: 文件 %s 定义了 %d 条 go:derivegen: 指令，全部忽略\n", filePath, len(lines))
		return nil
	}
}

// parseDirectiveLine 解析指令参数
// plugin:<name> 之后的 -output 只作用于该生成器，之前的作为包内默认输出
func parseDirectiveLine(line, filePath string) *PackageConfig {
	cfg := &PackageConfig{
		PackageDir:    packageDir(filePath),
		PluginOutputs: make(map[string]string),
	}
	var current string
	words := directiveWords(line)
	for i := 0; i < len(words); i++ {
		word := words[i]
		if name, ok := strings.CutPrefix(word, "plugin:"); ok {
			current = strings.ToLower(name)
			continue
		}
		if word != "-output" || i+1 >= len(words) {
			continue
		}
		i++
		if current == "" {
			cfg.DefaultOutput = words[i]
		} else {
			cfg.PluginOutputs[current] = words[i]
		}
	}
	if cfg.DefaultOutput == "" && len(cfg.PluginOutputs) == 0 {
		return nil
	}
	return cfg
}

// directiveWords 按空白切分，"..."、`...`、'...' 内的空白保留，引号被去掉
func directiveWords(line string) []string {
	var words []string
	for line = strings.TrimLeftFunc(line, unicode.IsSpace); line != ""; line = strings.TrimLeftFunc(line, unicode.IsSpace) {
		end := strings.IndexFunc(line, unicode.IsSpace)
		if q := line[0]; q == '"' || q == '`' || q == '\'' {
			if j := strings.IndexByte(line[1:], q); j >= 0 {
				word := line[1 : j+1]
				if s, err := strconv.Unquote(line[:j+2]); q == '"' && err == nil {
					word = s
				}
				words = append(words, word)
				line = line[j+2:]
				continue
			}
		}
		if end < 0 {
			end = len(line)
		}
		words = append(words, line[:end])
		line = line[end:]
	}
	return words
}

// mergePackageConfig 合并同一个包内多个文件的指令，冲突时后处理的文件生效
func mergePackageConfig(configs map[string]*PackageConfig, cfg *PackageConfig) {
	existing, ok := configs[cfg.PackageDir]
	if !ok {
		configs[cfg.PackageDir] = cfg
		return
	}
	if cfg.DefaultOutput != "" {
		if existing.DefaultOutput != "" && existing.DefaultOutput != cfg.DefaultOutput {
			fmt.Printf("警告: 包 %s 中存在多个不同的 go:derivegen 默认输出配置，使用后发现的配置\n", cfg.PackageDir)
		}
		existing.DefaultOutput = cfg.DefaultOutput
	}
	for name, output := range cfg.PluginOutputs {
		if prev, ok := existing.PluginOutputs[name]; ok && prev != output {
			fmt.Printf("警告: 包 %s 中生成器 %s 存在多个不同的输出配置，使用后发现的配置\n", cfg.PackageDir, name)
		}
		existing.PluginOutputs[name] = output
	}
}

// packageDir 包级配置的键
func packageDir(filePath string) string {
	return filepath.Dir(filePath)
}
