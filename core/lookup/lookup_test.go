package lookup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gosh-shell/gosh/core/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(full, []byte("#!/bin/sh\n"), 0755))
	return full
}

func TestCache_Resolve(t *testing.T) {
	dir := t.TempDir()
	want := writeExecutable(t, dir, "mytool")

	e := env.NewMapEnv()
	e.Setenv("PATH", dir)
	cache := NewCache(e)

	got, ok := cache.Resolve("mytool")
	assert.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = cache.Resolve("missing")
	assert.False(t, ok)
}

func TestCache_ResolveSkipsNonExecutable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.txt"), []byte("x"), 0644))

	e := env.NewMapEnv()
	e.Setenv("PATH", dir)
	cache := NewCache(e)

	_, ok := cache.Resolve("data.txt")
	assert.False(t, ok)
}

func TestCache_EarlierPathEntriesWin(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	want := writeExecutable(t, first, "tool")
	writeExecutable(t, second, "tool")

	e := env.NewMapEnv()
	e.Setenv("PATH", first+string(os.PathListSeparator)+second)
	cache := NewCache(e)

	got, ok := cache.Resolve("tool")
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCache_InvalidatedByPathChange(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeExecutable(t, first, "one")
	writeExecutable(t, second, "two")

	e := env.NewMapEnv()
	e.Setenv("PATH", first)
	cache := NewCache(e)

	_, ok := cache.Resolve("one")
	assert.True(t, ok)
	_, ok = cache.Resolve("two")
	assert.False(t, ok)

	e.Setenv("PATH", second)
	_, ok = cache.Resolve("two")
	assert.True(t, ok)
	_, ok = cache.Resolve("one")
	assert.False(t, ok)
}

func TestCache_ResolveDirectPath(t *testing.T) {
	dir := t.TempDir()
	want := writeExecutable(t, dir, "direct")

	cache := NewCache(env.NewMapEnv())

	got, ok := cache.Resolve(want)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCache_Commands(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "bbb")
	writeExecutable(t, dir, "aaa")

	e := env.NewMapEnv()
	e.Setenv("PATH", dir)
	cache := NewCache(e)

	assert.Equal(t, []string{"aaa", "bbb"}, cache.Commands())
}
