// Package config 加载项目级配置。
//
// 配置来自三处，后者覆盖前者：从工作目录向上查找到的 derivegen.toml、
// DERIVEGEN_* 环境变量，以及命令行参数（由 main 负责）。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/joeshaw/envdecode"
)

// FileName 配置文件名
const FileName = "derivegen.toml"

const (
	DiagText = "text"
	DiagJSON = "json"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config 项目配置
type Config struct {
	// Output 默认输出文件，空表示每个包生成 derive_gen.go
	Output  string `toml:"output" env:"DERIVEGEN_OUTPUT"`
	Verbose bool   `toml:"verbose" env:"DERIVEGEN_VERBOSE"`
	Async   bool   `toml:"async" env:"DERIVEGEN_ASYNC"`
	// Workers 异步执行时的最大并发数，<=0 表示不限制
	Workers int `toml:"workers" env:"DERIVEGEN_WORKERS"`
	// DiagFormat 诊断输出格式: text|json
	DiagFormat string `toml:"diag_format" env:"DERIVEGEN_DIAG_FORMAT"`
	// Color 诊断着色: auto|always|never
	Color string `toml:"color" env:"DERIVEGEN_COLOR"`
	// Generators 启用的生成器，空表示全部
	Generators []string `toml:"generators" env:"DERIVEGEN_GENERATORS"`

	// Path 加载的配置文件，没有找到时为空
	Path string `toml:"-"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Async:      true,
		DiagFormat: DiagText,
		Color:      ColorAuto,
	}
}

// Find 从 startDir 向上查找配置文件
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("解析目录 %s 失败: %w", startDir, err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("检查 %s 失败: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load 加载 startDir 对应的配置，依次应用配置文件和环境变量
func Load(startDir string) (*Config, error) {
	cfg := Default()

	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("读取环境变量失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("%s: 解析 TOML 失败: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%s: 未知的配置项 %s", path, undecoded[0])
	}
	c.Path = path
	return nil
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	if !slices.Contains([]string{DiagText, DiagJSON}, c.DiagFormat) {
		return fmt.Errorf("diag_format 只能是 %s 或 %s，实际为 %q", DiagText, DiagJSON, c.DiagFormat)
	}
	if !slices.Contains([]string{ColorAuto, ColorAlways, ColorNever}, c.Color) {
		return fmt.Errorf("color 只能是 %s、%s 或 %s，实际为 %q", ColorAuto, ColorAlways, ColorNever, c.Color)
	}
	return nil
}

// Enabled 判断生成器是否启用
func (c *Config) Enabled(name string) bool {
	return len(c.Generators) == 0 || slices.Contains(c.Generators, name)
}
