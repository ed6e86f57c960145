package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/wcspec/pkg/catalog"
)

var kitDir = filepath.Join("..", "..", "pkg", "scanner", "testdata", "kit")

// --- helpers ---

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeContext(context.Background(), args...)
}

func executeContext(ctx context.Context, args ...string) (string, string, error) {
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func decodeCatalog(t *testing.T, data string) *catalog.Catalog {
	t.Helper()
	cat, _, err := catalog.LoadFromBytes([]byte(data))
	require.NoError(t, err)
	return cat
}

func tags(cat *catalog.Catalog) []string {
	out := make([]string, len(cat.Components))
	for i, c := range cat.Components {
		out[i] = c.TagName
	}
	return out
}

// --- version ---

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "wcspec "+version+"\n", stdout)
}

// --- analyze ---

func TestAnalyze_JSON(t *testing.T) {
	stdout, stderr, err := execute(t, "analyze", kitDir, "--format", "json")
	require.NoError(t, err, stderr)

	cat := decodeCatalog(t, stdout)
	assert.Equal(t, "kit", cat.Name)
	assert.Equal(t, []string{"kit-button", "kit-dialog", "legacydialog"}, tags(cat))
	assert.Equal(t, "src/button.ts", cat.BuildIndex().ComponentByTag["kit-button"].Module)

	assert.Contains(t, stderr, "src/legacy.js:4: warning: invalid custom element name 'legacydialog'")
	assert.Contains(t, stderr, "warning: tag name 'kit-dialog' is already defined in src/dialog.js")
	assert.Contains(t, stderr, "0 error(s)")
}

func TestAnalyze_GlobPattern(t *testing.T) {
	stdout, _, err := execute(t, "analyze", filepath.Join(kitDir, "src", "b*.ts"))
	require.NoError(t, err)

	cat := decodeCatalog(t, stdout)
	assert.Equal(t, []string{"kit-button"}, tags(cat))
}

func TestAnalyze_MarkdownOutFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "docs", "COMPONENTS.md")
	stdout, _, err := execute(t, "analyze", kitDir, "--outFile", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# kit"))
	assert.Contains(t, string(data), "## kit-button")
	assert.Contains(t, string(data), "## kit-dialog")
}

func TestAnalyze_YAMLFormat(t *testing.T) {
	stdout, _, err := execute(t, "analyze", kitDir, "--format", "yaml", "--name", "Kit UI")
	require.NoError(t, err)

	cat, _, err := catalog.LoadFromYAML([]byte(stdout))
	require.NoError(t, err)
	assert.Equal(t, "Kit UI", cat.Name)
}

func TestAnalyze_FeatureFilter(t *testing.T) {
	stdout, _, err := execute(t, "analyze", kitDir, "--features", "event")
	require.NoError(t, err)

	button := decodeCatalog(t, stdout).BuildIndex().ComponentByTag["kit-button"]
	require.NotNil(t, button)
	assert.Empty(t, button.Attributes)
	assert.Empty(t, button.Properties)
	require.Len(t, button.Events, 1)
	assert.Equal(t, "kit-press", button.Events[0].Name)
}

func TestAnalyze_AllDeclarations(t *testing.T) {
	stdout, _, err := execute(t, "analyze", kitDir, "--analyzeAllDeclarations")
	require.NoError(t, err)

	var names []string
	for _, d := range decodeCatalog(t, stdout).Declarations {
		names = append(names, d.ClassName)
	}
	assert.Contains(t, names, "Unregistered")
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown feature", []string{"analyze", kitDir, "--features", "color"}, `unknown feature "color"`},
		{"unknown format", []string{"analyze", kitDir, "--format", "xml"}, "unknown output format"},
		{"no files", []string{"analyze", filepath.Join(kitDir, "*.none")}, "no source files found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// --- config ---

func TestConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
output:
  name: from-config
  version: "2.1"
analyze:
  features: [slot, css-part]
`), 0o644))

	stdout, _, err := execute(t, "analyze", kitDir, "--config", cfgPath)
	require.NoError(t, err)

	cat := decodeCatalog(t, stdout)
	assert.Equal(t, "from-config", cat.Name)
	assert.Equal(t, "2.1", cat.Version)
	dialog := cat.BuildIndex().ComponentByTag["kit-dialog"]
	require.NotNil(t, dialog)
	assert.Empty(t, dialog.Events)
	assert.Len(t, dialog.Slots, 1)
	assert.Len(t, dialog.CSSParts, 1)
}

func TestConfig_FlagOverridesFileAndEnv(t *testing.T) {
	t.Setenv("WCSPEC_OUTPUT_NAME", "from-env")

	stdout, _, err := execute(t, "analyze", kitDir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", decodeCatalog(t, stdout).Name)

	stdout, _, err = execute(t, "analyze", kitDir, "--name", "from-flag")
	require.NoError(t, err)
	assert.Equal(t, "from-flag", decodeCatalog(t, stdout).Name)
}

func TestConfig_MissingExplicitFile(t *testing.T) {
	_, _, err := execute(t, "analyze", kitDir, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

// --- inspect ---

func TestInspect(t *testing.T) {
	stdout, _, err := execute(t, "inspect", "kit-button", "--dir", kitDir)
	require.NoError(t, err)

	assert.Contains(t, stdout, "<kit-button>  KitButton")
	assert.Contains(t, stdout, "src/button.ts")
	assert.Contains(t, stdout, "extends KitElement with ")
	assert.Contains(t, stdout, "Focusable")
	assert.Contains(t, stdout, "allowed: primary | secondary")
	assert.Contains(t, stdout, "(from KitElement)")
	assert.Contains(t, stdout, "Slots  (none)")
}

func TestInspect_FromCatalogByClass(t *testing.T) {
	out := filepath.Join(t.TempDir(), "catalog.json")
	_, _, err := execute(t, "analyze", kitDir, "--outFile", out)
	require.NoError(t, err)

	stdout, _, err := execute(t, "inspect", "KitDialog", "--catalog", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "<kit-dialog>")
	assert.Contains(t, stdout, "A modal dialog.")
	assert.Contains(t, stdout, "--kit-dialog-width")
	assert.Contains(t, stdout, "32rem")
	assert.Contains(t, stdout, "footer")
}

func TestInspect_NotFound(t *testing.T) {
	_, _, err := execute(t, "inspect", "kit-missing", "--dir", kitDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `component "kit-missing" not found`)
}

// --- serve and watch argument checks ---

func TestServe_InvalidFlags(t *testing.T) {
	_, _, err := execute(t, "serve", "--catalog", "c.json", "--dir", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	_, _, err = execute(t, "serve", "--catalog", "c.json", "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch requires --dir")

	_, _, err = execute(t, "serve", "--catalog", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")
}

func TestWatch_RequiresOutFile(t *testing.T) {
	_, _, err := execute(t, "watch", kitDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--outFile")
}

func TestWatch_RewritesCatalogOnChange(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.ts"), []byte(
		`class XOne extends HTMLElement {}
customElements.define("x-one", XOne);
`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := executeContext(ctx, "watch", dir, "--outFile", out)
		done <- err
	}()

	readTags := func() []string {
		data, err := os.ReadFile(out)
		if err != nil {
			return nil
		}
		var cat catalog.Catalog
		if json.Unmarshal(data, &cat) != nil {
			return nil
		}
		return tags(&cat)
	}

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"x-one"}, readTags())
	}, 10*time.Second, 50*time.Millisecond)

	// Give the watcher time to register the directory.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.ts"), []byte(
		`class XTwo extends HTMLElement {}
customElements.define("x-two", XTwo);
`), 0o644))

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"x-one", "x-two"}, readTags())
	}, 10*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

// --- diagnostics ---

func TestPrintDiagnostics(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	printDiagnostics(&buf, []catalog.Diagnostic{
		{File: "src/a.ts", Line: 4, Severity: "error", Message: "boom"},
		{File: "src/b.ts", Severity: "warning", Message: "careful"},
	})
	assert.Equal(t,
		"src/a.ts:4: error: boom\nsrc/b.ts: warning: careful\n1 error(s), 1 warning(s)\n",
		buf.String())

	buf.Reset()
	printDiagnostics(&buf, nil)
	assert.Empty(t, buf.String())
}
