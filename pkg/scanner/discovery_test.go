package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFiles_Fixture(t *testing.T) {
	files, err := DiscoverFiles("testdata/kit", DefaultScanConfig())
	require.NoError(t, err)

	// All results should be absolute paths.
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f), "expected absolute path, got %s", f)
	}

	assert.Equal(t, []string{"base.ts", "button.ts", "dialog.js", "helpers.ts", "legacy.js"}, fileNames(files))
}

func TestDiscoverFiles_ExcludesTestFiles(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "button.ts", "export class Button {}")
	writeFile(t, tmp, "button.test.ts", "test('button', () => {})")
	writeFile(t, tmp, "button.spec.ts", "describe('button', () => {})")
	writeFile(t, tmp, "button.stories.ts", "export default { title: 'Button' }")
	writeFile(t, tmp, "button.story.ts", "export default { title: 'Button' }")
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "__tests__"), 0755))
	writeFile(t, filepath.Join(tmp, "__tests__"), "utils.ts", "export {}")
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, ".wcspec"), 0755))
	writeFile(t, filepath.Join(tmp, ".wcspec"), "cache.js", "")

	files, err := DiscoverFiles(tmp, DefaultScanConfig())
	require.NoError(t, err)

	names := fileNames(files)
	assert.Equal(t, []string{"button.ts"}, names)
}

func TestDiscoverFiles_SkipsNonSourceFiles(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, tmp, "element.mjs", "")
	writeFile(t, tmp, "README.md", "")
	writeFile(t, tmp, "styles.css", "")

	files, err := DiscoverFiles(tmp, DefaultScanConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"element.mjs"}, fileNames(files))
}

func TestDiscoverFiles_SortedOutput(t *testing.T) {
	files, err := DiscoverFiles("testdata/kit", DefaultScanConfig())
	require.NoError(t, err)
	require.Greater(t, len(files), 1)

	for i := 1; i < len(files); i++ {
		assert.LessOrEqual(t, files[i-1], files[i], "files should be sorted")
	}
}

func TestDiscoverFiles_EmptyDirectory(t *testing.T) {
	files, err := DiscoverFiles(t.TempDir(), DefaultScanConfig())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverFiles_InvalidGlob(t *testing.T) {
	cfg := DefaultScanConfig()
	cfg.Exclude = append(cfg.Exclude, "[invalid")
	_, err := DiscoverFiles("testdata/kit", cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}

func TestExpandGlobs(t *testing.T) {
	base, err := filepath.Abs("testdata/kit")
	require.NoError(t, err)

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"plain file", []string{"src/dialog.js"}, []string{"dialog.js"}},
		{"directory", []string{"src"}, []string{"base.ts", "button.ts", "dialog.js", "helpers.ts", "legacy.js"}},
		{"glob", []string{"src/*.ts"}, []string{"base.ts", "button.ts", "helpers.ts"}},
		{"doublestar skips excluded", []string{"**/*.js"}, []string{"dialog.js", "legacy.js"}},
		{"duplicates collapse", []string{"src/base.ts", "src/b*.ts"}, []string{"base.ts", "button.ts"}},
		{"no match", []string{"src/*.vue"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := ExpandGlobs(base, tt.patterns, DefaultScanConfig())
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, files)
				return
			}
			assert.Equal(t, tt.want, fileNames(files))
		})
	}
}

// --- helpers ---

func fileNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}
