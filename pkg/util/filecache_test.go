package util

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileCache_ReadAndHit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "el.ts", `customElements.define("x-foo", class extends HTMLElement {});`)

	fc := NewFileCache(nil)
	defer fc.Close()

	data, err := fc.Read(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "x-foo")

	_, err = fc.Read(path)
	require.NoError(t, err)

	stats := fc.Stats()
	assert.Equal(t, int64(1), stats.FilesLoaded)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
	assert.Equal(t, 1, stats.FilesCached)
}

func TestFileCache_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.js", "")

	fc := NewFileCache(nil)
	defer fc.Close()

	data, err := fc.Read(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileCache_MissingFile(t *testing.T) {
	fc := NewFileCache(nil)
	defer fc.Close()

	_, err := fc.Read(filepath.Join(t.TempDir(), "nope.ts"))
	assert.Error(t, err)
}

func TestFileCache_MaxFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.ts", "a")
	b := writeFile(t, dir, "b.ts", "b")

	fc := NewFileCache(&FileCacheConfig{MaxFiles: 1})
	defer fc.Close()

	_, err := fc.Read(a)
	require.NoError(t, err)
	_, err = fc.Read(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestFileCache_Concurrent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "c.ts", "export class C {}")

	fc := NewFileCache(nil)
	defer fc.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := fc.Read(path)
			assert.NoError(t, err)
			assert.Equal(t, "export class C {}", string(data))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, fc.Size())
}
