package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/wcspec/pkg/util"
)

const litSource = `
import { LitElement, html } from "lit";
import { customElement, property } from "lit/decorators.js";

@customElement("my-button")
export class MyButton extends LitElement {
	@property({ type: Boolean, reflect: true }) disabled = false;
	render() { return html` + "`<slot></slot>`" + `; }
}
`

const jsSource = `
class MyCounter extends HTMLElement {
	static get observedAttributes() { return ["count"]; }
}
customElements.define("my-counter", MyCounter);
`

const tsxSource = `
declare global {
	namespace JSX {
		interface IntrinsicElements { "my-card": { heading?: string } }
	}
}
export const view = () => <my-card heading="hi"></my-card>;
`

func newTestManager(t *testing.T) *ParserManager {
	t.Helper()
	pm := NewParserManager(util.NewDiscardLogger())
	t.Cleanup(func() { pm.Close() })
	return pm
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		source string
		lang   Language
		isTSX  bool
		expect string
	}{
		{"typescript", litSource, LanguageTypeScript, false, "decorator"},
		{"javascript", jsSource, LanguageJavaScript, false, "class_declaration"},
		{"tsx", tsxSource, LanguageTypeScript, true, "jsx_element"},
	}

	pm := newTestManager(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := pm.Parse([]byte(tt.source), tt.lang, tt.isTSX)
			require.NoError(t, err)
			defer tree.Close()

			root := tree.RootNode()
			assert.Equal(t, "program", root.Kind())
			assert.False(t, root.HasError())
			assert.Contains(t, root.ToSexp(), tt.expect)
		})
	}
}

func TestParseFile(t *testing.T) {
	pm := newTestManager(t)

	tree, err := pm.ParseFile([]byte(jsSource), "src/my-counter.js")
	require.NoError(t, err)
	tree.Close()

	tree, err = pm.ParseFile([]byte(tsxSource), "src/view.tsx")
	require.NoError(t, err)
	assert.Contains(t, tree.RootNode().ToSexp(), "jsx_element")
	tree.Close()

	_, err = pm.ParseFile([]byte("a {}"), "styles.css")
	assert.Error(t, err)
}

func TestParseUnknownLanguage(t *testing.T) {
	pm := newTestManager(t)
	_, err := pm.Parse([]byte("x"), LanguageUnknown, false)
	assert.Error(t, err)
}

func TestParseInvalidSyntaxStillReturnsTree(t *testing.T) {
	pm := newTestManager(t)
	tree, err := pm.Parse([]byte("class { extends extends"), LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()
	assert.True(t, tree.RootNode().HasError())
}

func TestLazyPoolCreation(t *testing.T) {
	pm := newTestManager(t)
	assert.Equal(t, 0, pm.GetStats().ParsersCreated)

	tree, err := pm.Parse([]byte(jsSource), LanguageJavaScript, false)
	require.NoError(t, err)
	tree.Close()

	stats := pm.GetStats()
	assert.Equal(t, 1, stats.ParsersCreated)
	assert.Equal(t, 1, stats.ParsesCalled)
}

func TestDetectLanguage(t *testing.T) {
	tests := map[string]Language{
		"a.ts":               LanguageTypeScript,
		"a.mts":              LanguageTypeScript,
		"a.d.ts":             LanguageTypeScript,
		"A.TSX":              LanguageTypeScript,
		"a.js":               LanguageJavaScript,
		"a.mjs":              LanguageJavaScript,
		"a.jsx":              LanguageJavaScript,
		"a.css":              LanguageUnknown,
		"node_modules/x/pkg": LanguageUnknown,
	}
	for path, want := range tests {
		assert.Equal(t, want, DetectLanguage(path), path)
	}
	assert.Equal(t, "typescript", LanguageTypeScript.String())
	assert.Equal(t, "unknown", LanguageUnknown.String())
}

func TestIsDeclarationFile(t *testing.T) {
	assert.True(t, IsDeclarationFile("lib/my-el.d.ts"))
	assert.True(t, IsDeclarationFile("lib/index.D.MTS"))
	assert.False(t, IsDeclarationFile("lib/my-el.ts"))
	assert.False(t, IsDeclarationFile("lib/d.ts.js"))
	assert.True(t, IsTSXFile("x.tsx"))
	assert.False(t, IsTSXFile("x.ts"))
}
