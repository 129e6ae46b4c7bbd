package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/donutnomad/derivegen/internal/config"
	"github.com/donutnomad/derivegen/plugin"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	registry, err := newRegistry(config.Default())
	require.NoError(t, err)
	assert.Len(t, registry.Generators(), 4)
	assert.ElementsMatch(t, []string{"AutoDebug", "AutoStr", "CopyWith", "BundleText"}, registry.Annotations())

	cfg := config.Default()
	cfg.Generators = []string{"autostr"}
	registry, err = newRegistry(cfg)
	require.NoError(t, err)
	require.Len(t, registry.Generators(), 1)
	assert.Equal(t, "autostr", registry.Generators()[0].Name())

	cfg.Generators = []string{"autostr", "nope"}
	_, err = newRegistry(cfg)
	assert.ErrorContains(t, err, "nope")
}

func TestIsGeneratedFile(t *testing.T) {
	assert.True(t, isGeneratedFile("/a/derive_gen.go", ""))
	assert.True(t, isGeneratedFile("/a/user_test.go", ""))
	assert.False(t, isGeneratedFile("/a/user.go", ""))
	assert.True(t, isGeneratedFile("/a/zz_derive.go", "zz_derive.go"))
	assert.False(t, isGeneratedFile("/a/user.go", "$FILE_derive.go"))
}

func TestUseColor(t *testing.T) {
	assert.True(t, useColor(config.ColorAlways))
	assert.False(t, useColor(config.ColorNever))
}

func TestCollectWatchDirs(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"a/b", ".git", "vendor/x", "testdata"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}

	dirs, err := collectWatchDirs([]string{root + "/..."})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root, filepath.Join(root, "a"), filepath.Join(root, "a", "b")}, dirs)

	dirs, err = collectWatchDirs([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{root}, dirs)
}

func TestWatchSessionHandle(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(src), 0644))
		return path
	}
	annotated := write("color.go", "package p\n\n// @AutoStr\ntype Color int\n\nconst Red Color = 0\n")
	plain := write("plain.go", "package p\n\ntype Plain int\n")
	broken := write("broken.go", "package p\n\n// @AutoStr\ntype Broken int {\n")
	generated := write("derive_gen.go", "package p\n\n// @AutoStr\n")

	registry, err := newRegistry(config.Default())
	require.NoError(t, err)
	s := &watchSession{
		cfg:      config.Default(),
		registry: registry,
		scanner:  plugin.NewScanner(plugin.WithAnnotationFilter(registry.Annotations()...)),
		dirty:    make(map[string]struct{}),
	}

	assert.False(t, s.handle(fsnotify.Event{Name: plain, Op: fsnotify.Write}))
	assert.False(t, s.handle(fsnotify.Event{Name: broken, Op: fsnotify.Write}), "语法错误")
	assert.False(t, s.handle(fsnotify.Event{Name: generated, Op: fsnotify.Create}))
	assert.False(t, s.handle(fsnotify.Event{Name: annotated, Op: fsnotify.Chmod}))
	assert.Empty(t, s.dirty)

	assert.True(t, s.handle(fsnotify.Event{Name: annotated, Op: fsnotify.Write}))
	assert.Contains(t, s.dirty, dir)
}
