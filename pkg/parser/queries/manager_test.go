package queries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/wcspec/pkg/parser"
	"github.com/gnana997/wcspec/pkg/util"
)

func setupTest(t *testing.T) (*parser.ParserManager, *QueryManager) {
	t.Helper()
	logger := util.NewDiscardLogger()
	pm := parser.NewParserManager(logger)
	qm := NewQueryManager(pm, logger)
	t.Cleanup(func() {
		qm.Close()
		pm.Close()
	})
	return pm, qm
}

func TestQueryCompilation(t *testing.T) {
	_, qm := setupTest(t)

	tests := []struct {
		lang  parser.Language
		isTSX bool
		qtype QueryType
	}{
		{parser.LanguageTypeScript, false, QueryTypeModules},
		{parser.LanguageTypeScript, true, QueryTypeModules},
		{parser.LanguageJavaScript, false, QueryTypeModules},
		{parser.LanguageTypeScript, false, QueryTypeRegistrations},
		{parser.LanguageTypeScript, true, QueryTypeRegistrations},
		{parser.LanguageJavaScript, false, QueryTypeRegistrations},
	}
	for _, tt := range tests {
		t.Run(tt.lang.String()+"/"+tt.qtype.String(), func(t *testing.T) {
			q, err := qm.GetQuery(tt.lang, tt.isTSX, tt.qtype)
			require.NoError(t, err)
			assert.NotNil(t, q)

			again, err := qm.GetQuery(tt.lang, tt.isTSX, tt.qtype)
			require.NoError(t, err)
			assert.Same(t, q, again)
		})
	}

	_, err := qm.GetQuery(parser.LanguageUnknown, false, QueryTypeModules)
	assert.Error(t, err)
}

func TestModuleSpecifiers(t *testing.T) {
	pm, qm := setupTest(t)

	source := []byte(`
import { LitElement } from "lit";
import "./side-effect.js";
import type { Props } from "./types";
export * from "./re-export";
export { Foo as Bar } from "./foo";
const lazy = import("./lazy.js");
const cjs = require("./cjs");
const notRequire = load("./ignored");
import { LitElement as L2 } from "lit";
`)
	tree, err := pm.Parse(source, parser.LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	specs, err := qm.ModuleSpecifiers(tree, parser.LanguageTypeScript, false, source)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"lit", "./side-effect.js", "./types", "./re-export", "./foo", "./lazy.js", "./cjs"},
		specs)
}

func TestFindRegistrations(t *testing.T) {
	pm, qm := setupTest(t)

	source := []byte(`
/**
 * @customElement my-doc
 */
class MyDoc extends HTMLElement {}

@customElement("my-lit")
class MyLit extends LitElement {}

customElements.define("my-plain", class extends HTMLElement {});
window.customElements.define("my-window", MyDoc);
registry.define("not-an-element", MyDoc);

declare global {
	interface HTMLElementTagNameMap {
		"my-lit": MyLit;
	}
	interface Unrelated {}
}
`)
	tree, err := pm.Parse(source, parser.LanguageTypeScript, false)
	require.NoError(t, err)
	defer tree.Close()

	sites, err := qm.FindRegistrations(tree, parser.LanguageTypeScript, false, source)
	require.NoError(t, err)

	counts := map[RegistrationKind]int{}
	for _, s := range sites {
		counts[s.Kind]++
	}
	assert.Equal(t, 2, counts[RegistrationDefine])
	assert.Equal(t, 1, counts[RegistrationDecorator])
	assert.Equal(t, 1, counts[RegistrationTagMap])
	assert.Equal(t, 1, counts[RegistrationJSDoc])
}

func TestParseCaptureName(t *testing.T) {
	cat, field := parseCaptureName("module.source")
	assert.Equal(t, "module", cat)
	assert.Equal(t, "source", field)

	cat, field = parseCaptureName("plain")
	assert.Equal(t, "plain", cat)
	assert.Empty(t, field)
}
