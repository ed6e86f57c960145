package scanner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/wcspec/pkg/analyzer"
	"github.com/gnana997/wcspec/pkg/catalog"
	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/util"
)

func runKit(t *testing.T, cfg analyzer.Config) (*catalog.Catalog, *ScanStats) {
	t.Helper()
	s := NewScanner(cfg, util.NewDiscardLogger())
	t.Cleanup(s.Close)

	cat, stats, err := s.Run("testdata/kit", DefaultScanConfig(), CatalogBuildConfig{})
	require.NoError(t, err)
	require.NotNil(t, cat)
	return cat, stats
}

func TestRun_KitCatalog(t *testing.T) {
	cat, stats := runKit(t, analyzer.Config{})

	assert.Equal(t, "kit", cat.Name)
	assert.Equal(t, "1.0", cat.Version)
	assert.Equal(t, 5, stats.FilesDiscovered)
	assert.Equal(t, 5, stats.FilesLoaded)
	assert.Zero(t, stats.FilesFailed)
	assert.Greater(t, stats.RegistrationSites, 0)

	var tags []string
	for _, c := range cat.Components {
		tags = append(tags, c.TagName)
	}
	assert.Equal(t, []string{"kit-button", "kit-dialog", "legacydialog"}, tags)
	assert.Equal(t, 3, stats.ComponentsDetected)
}

func TestRun_InheritedMembers(t *testing.T) {
	cat, _ := runKit(t, analyzer.Config{})
	idx := cat.BuildIndex()

	button := idx.ComponentByTag["kit-button"]
	require.NotNil(t, button)
	assert.Equal(t, "KitButton", button.ClassName)
	assert.Equal(t, "src/button.ts", button.Module)
	assert.Equal(t, "KitElement", button.Superclass)
	assert.Contains(t, button.Mixins, "Focusable")

	props := map[string]catalog.Property{}
	for _, p := range button.Properties {
		props[p.Name] = p
	}
	require.Contains(t, props, "theme")
	assert.Equal(t, "KitElement", props["theme"].InheritedFrom)
	assert.Equal(t, "Color theme.", props["theme"].Description)
	require.Contains(t, props, "focused")
	assert.NotContains(t, props, "internalState", "protected members are hidden")

	require.Contains(t, props, "variant")
	assert.Empty(t, props["variant"].InheritedFrom)
	assert.Equal(t, "primary", props["variant"].Default)

	require.Len(t, button.Attributes, 1)
	variant := button.Attributes[0]
	assert.Equal(t, "variant", variant.Name)
	assert.Equal(t, "variant", variant.FieldName)
	assert.Equal(t, []string{"primary", "secondary"}, variant.AllowedValues)

	var methods []string
	for _, m := range button.Methods {
		methods = append(methods, m.Name)
	}
	assert.Contains(t, methods, "press")

	var events []string
	for _, e := range button.Events {
		events = append(events, e.Name)
	}
	assert.Contains(t, events, "kit-press")
}

func TestRun_DocumentedComponent(t *testing.T) {
	cat, _ := runKit(t, analyzer.Config{})
	dialog := cat.BuildIndex().ComponentByTag["kit-dialog"]
	require.NotNil(t, dialog)

	assert.Equal(t, "KitDialog", dialog.ClassName)
	assert.Equal(t, "src/dialog.js", dialog.Module)
	assert.Equal(t, "A modal dialog.", dialog.Description)
	assert.Equal(t, "HTMLElement", dialog.Superclass)

	require.Len(t, dialog.Attributes, 1)
	assert.Equal(t, "open", dialog.Attributes[0].Name)
	assert.Equal(t, "Whether the dialog is open.", dialog.Attributes[0].Description)

	require.Len(t, dialog.Events, 1)
	assert.Equal(t, "close", dialog.Events[0].Name)
	require.Len(t, dialog.Slots, 1)
	assert.Equal(t, "footer", dialog.Slots[0].Name)
	require.Len(t, dialog.CSSParts, 1)
	assert.Equal(t, "panel", dialog.CSSParts[0].Name)
	require.Len(t, dialog.CSSProperties, 1)
	assert.Equal(t, "--kit-dialog-width", dialog.CSSProperties[0].Name)
	assert.Equal(t, "32rem", dialog.CSSProperties[0].Default)
}

func TestRun_Diagnostics(t *testing.T) {
	cat, stats := runKit(t, analyzer.Config{})
	assert.Equal(t, len(cat.Diagnostics), stats.Diagnostics)
	assert.False(t, cat.HasErrors())

	var messages []string
	for _, d := range cat.Diagnostics {
		messages = append(messages, d.Message)
		if d.Message == "invalid custom element name 'legacydialog'" {
			assert.Equal(t, "src/legacy.js", d.File)
			assert.Equal(t, 4, d.Line)
		}
	}
	assert.Contains(t, messages, "invalid custom element name 'legacydialog'")
	assert.Contains(t, messages, "tag name 'kit-dialog' is already defined in src/dialog.js")
}

func TestRun_AllDeclarations(t *testing.T) {
	cat, _ := runKit(t, analyzer.Config{AnalyzeAllDeclarations: true})

	var classes []string
	for _, d := range cat.Declarations {
		assert.Empty(t, d.TagName)
		classes = append(classes, d.ClassName)
	}
	assert.Contains(t, classes, "KitElement")
	assert.Contains(t, classes, "Unregistered")
	assert.NotContains(t, classes, "KitButton")
	assert.NotContains(t, classes, "KitDialog")
}

func TestRun_FeatureFilter(t *testing.T) {
	cat, _ := runKit(t, analyzer.Config{Features: []analyzer.FeatureKind{analyzer.FeatureEvent}})
	for _, c := range cat.Components {
		assert.Empty(t, c.Properties, c.TagName)
		assert.Empty(t, c.Attributes, c.TagName)
		assert.Empty(t, c.Slots, c.TagName)
	}
	assert.NotEmpty(t, cat.BuildIndex().ComponentByTag["kit-dialog"].Events)
}

func TestRunFiles_Empty(t *testing.T) {
	s := NewScanner(analyzer.Config{}, util.NewDiscardLogger())
	defer s.Close()

	cat, stats, err := s.RunFiles(nil, CatalogBuildConfig{})
	assert.Error(t, err)
	assert.Nil(t, cat)
	require.NotNil(t, stats)
	assert.Zero(t, stats.FilesDiscovered)
}

func TestRunFiles_MissingFileIsCounted(t *testing.T) {
	s := NewScanner(analyzer.Config{}, util.NewDiscardLogger())
	defer s.Close()

	dialog, err := filepath.Abs("testdata/kit/src/dialog.js")
	require.NoError(t, err)
	cat, stats, err := s.RunFiles([]string{dialog, filepath.Join(t.TempDir(), "gone.js")},
		CatalogBuildConfig{Name: "partial", RootDir: "testdata/kit"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesFailed)
	assert.Equal(t, "partial", cat.Name)
	require.Len(t, cat.Components, 1)
	assert.Equal(t, "src/dialog.js", cat.Components[0].Module)
}

func TestLoadAll(t *testing.T) {
	p, err := program.New(program.Config{Logger: util.NewDiscardLogger()})
	require.NoError(t, err)
	defer p.Close()

	files, err := DiscoverFiles("testdata/kit", DefaultScanConfig())
	require.NoError(t, err)

	loaded, failed := LoadAll(files, p, nil)
	assert.Zero(t, failed)
	require.Len(t, loaded, len(files))

	byName := map[string]int{}
	for i, l := range loaded {
		if i > 0 {
			assert.Less(t, loaded[i-1].File.Path, l.File.Path)
		}
		byName[filepath.Base(l.File.Path)] = l.Registrations
	}
	assert.Equal(t, 1, byName["button.ts"])
	assert.Equal(t, 2, byName["legacy.js"])
	assert.Zero(t, byName["helpers.ts"])

	none, failed := LoadAll(nil, p, nil)
	assert.Nil(t, none)
	assert.Zero(t, failed)
}
