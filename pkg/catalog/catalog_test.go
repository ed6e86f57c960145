package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func minimalValidCatalog() *Catalog {
	return &Catalog{
		Name:    "test",
		Version: "1.0",
		Components: []Component{
			{
				TagName:     "my-button",
				ClassName:   "MyButton",
				Description: "A button",
				Module:      "src/button.ts",
				Attributes: []Attribute{
					{Name: "variant", FieldName: "variant", Type: "string"},
				},
				Properties: []Property{
					{Name: "variant", Attribute: "variant", Type: "string", Default: "primary"},
				},
				Events: []Event{
					{Name: "press", Type: "CustomEvent<void>"},
				},
			},
		},
		Diagnostics: []Diagnostic{
			{File: "src/button.ts", Line: 4, Severity: "warning", Message: "something"},
		},
	}
}

func multiComponentCatalog() *Catalog {
	return &Catalog{
		Name:    "kit",
		Version: "2.0",
		Components: []Component{
			{TagName: "x-dialog", ClassName: "XDialog", Module: "src/dialog.ts", Description: "A modal dialog",
				Slots:  []Slot{{Name: ""}, {Name: "footer", Description: "Action area"}},
				Events: []Event{{Name: "close"}}},
			{TagName: "x-dialog-legacy", ClassName: "XDialog", Module: "src/dialog.ts"},
			{TagName: "x-tooltip", ClassName: "XTooltip", Module: "src/tooltip.ts",
				Properties: []Property{{Name: "placement", Type: "'top' | 'bottom'"}},
				Events:     []Event{{Name: "close"}}},
		},
	}
}

func writeCatalogFile(t *testing.T, name string, c *Catalog) string {
	t.Helper()
	data, err := json.Marshal(c)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// --- Validate ---

func TestValidate_MinimalValid(t *testing.T) {
	assert.Empty(t, minimalValidCatalog().Validate())
	assert.Empty(t, multiComponentCatalog().Validate())
}

func TestValidate_EmptyName(t *testing.T) {
	c := minimalValidCatalog()
	c.Name = ""
	errs := c.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "name is required")
}

func TestValidate_EmptyVersion(t *testing.T) {
	c := minimalValidCatalog()
	c.Version = ""
	errs := c.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "version is required")
}

func TestValidate_MissingTagName(t *testing.T) {
	c := minimalValidCatalog()
	c.Components = append(c.Components, Component{ClassName: "Orphan"})
	errs := c.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "tag_name is required")
}

func TestValidate_DuplicateTagName(t *testing.T) {
	c := minimalValidCatalog()
	c.Components = append(c.Components, Component{TagName: "my-button"})
	errs := c.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "duplicate tag name")
}

func TestValidate_DuplicateAttributeCaseInsensitive(t *testing.T) {
	c := minimalValidCatalog()
	c.Components[0].Attributes = append(c.Components[0].Attributes, Attribute{Name: "Variant"})
	errs := c.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), `duplicate attribute "Variant"`)
}

func TestValidate_NamelessFeatures(t *testing.T) {
	c := minimalValidCatalog()
	c.Components[0].Attributes = append(c.Components[0].Attributes, Attribute{})
	c.Components[0].Properties = append(c.Components[0].Properties, Property{})
	c.Components[0].Events = append(c.Components[0].Events, Event{})
	assert.Len(t, c.Validate(), 3)
}

func TestValidate_InvalidDiagnosticSeverity(t *testing.T) {
	c := minimalValidCatalog()
	c.Diagnostics[0].Severity = "fatal"
	errs := c.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "invalid severity")
}

// --- BuildIndex ---

func TestBuildIndex_ComponentByTag(t *testing.T) {
	idx := multiComponentCatalog().BuildIndex()
	comp, ok := idx.ComponentByTag["x-tooltip"]
	require.True(t, ok)
	assert.Equal(t, "XTooltip", comp.ClassName)
}

func TestBuildIndex_ComponentByClassKeepsFirst(t *testing.T) {
	idx := multiComponentCatalog().BuildIndex()
	comp, ok := idx.ComponentByClass["XDialog"]
	require.True(t, ok)
	assert.Equal(t, "x-dialog", comp.TagName)
}

func TestBuildIndex_ComponentsByModule(t *testing.T) {
	idx := multiComponentCatalog().BuildIndex()
	assert.Len(t, idx.ComponentsByModule["src/dialog.ts"], 2)
	assert.Len(t, idx.ComponentsByModule["src/tooltip.ts"], 1)
}

func TestBuildIndex_PointsIntoCatalog(t *testing.T) {
	c := multiComponentCatalog()
	idx := c.BuildIndex()
	idx.ComponentByTag["x-tooltip"].Description = "changed"
	assert.Equal(t, "changed", c.Components[2].Description)
}

func TestHasErrors(t *testing.T) {
	c := minimalValidCatalog()
	assert.False(t, c.HasErrors())
	c.Diagnostics = append(c.Diagnostics, Diagnostic{Severity: "error", Message: "bad"})
	assert.True(t, c.HasErrors())
}

// --- Load ---

func TestLoadFromFile_ValidCatalog(t *testing.T) {
	path := writeCatalogFile(t, "catalog.json", minimalValidCatalog())
	cat, idx, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "test", cat.Name)
	assert.Contains(t, idx.ComponentByTag, "my-button")
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	_, _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read catalog file")
}

func TestLoadFromFile_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, _, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse catalog JSON")
}

func TestLoadFromFile_ValidationFailure(t *testing.T) {
	c := minimalValidCatalog()
	c.Components = append(c.Components, Component{TagName: "my-button"})
	_, _, err := LoadFromFile(writeCatalogFile(t, "dup.json", c))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog validation failed")
	assert.Contains(t, err.Error(), "duplicate tag name")
}

func TestLoadFromFile_YAMLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, multiComponentCatalog().WriteYAML(&buf))
	assert.Contains(t, buf.String(), "tag_name: x-dialog")

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	cat, idx, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Len(t, cat.Components, 3)
	assert.Equal(t, "Action area", idx.ComponentByTag["x-dialog"].Slots[1].Description)
}

// --- Render ---

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":         FormatJSON,
		"JSON":     FormatJSON,
		".yml":     FormatYAML,
		"yaml":     FormatYAML,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("html")
	assert.Error(t, err)
}

func TestWriteJSON_LoadsBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, minimalValidCatalog().Write(&buf, FormatJSON))
	cat, _, err := LoadFromBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "primary", cat.Components[0].Properties[0].Default)
}

func TestWriteMarkdown(t *testing.T) {
	c := multiComponentCatalog()
	c.Components[2].Properties[0].Description = "Where it\nopens"
	c.Components[0].Deprecated = &Deprecation{Reason: "use x-modal"}

	var buf bytes.Buffer
	require.NoError(t, c.Write(&buf, FormatMarkdown))
	out := buf.String()

	assert.Contains(t, out, "# kit\n")
	assert.Contains(t, out, "## x-dialog\n")
	assert.Contains(t, out, "**Deprecated**: use x-modal")
	assert.Contains(t, out, "| (default) |")
	assert.Contains(t, out, "| footer |  | Action area |")
	assert.Contains(t, out, `| placement |  | 'top' \| 'bottom' |  | Where it opens |`)
	assert.NotContains(t, out, "### Attributes")
}
