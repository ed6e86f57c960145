package tsnode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/parser"
	"github.com/gnana997/wcspec/pkg/util"
)

func parse(t *testing.T, src string) (*ts.Node, []byte) {
	t.Helper()
	pm := parser.NewParserManager(util.NewDiscardLogger())
	t.Cleanup(func() { pm.Close() })
	tree, err := pm.Parse([]byte(src), parser.LanguageTypeScript, false)
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.RootNode(), []byte(src)
}

func find(root *ts.Node, kind string) *ts.Node {
	var found *ts.Node
	Walk(root, func(n *ts.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind() == kind {
			found = n
			return false
		}
		return true
	})
	return found
}

func TestUnquote(t *testing.T) {
	tests := map[string]string{
		`"x-foo"`:   "x-foo",
		`'x-foo'`:   "x-foo",
		"`x-foo`":   "x-foo",
		`"a\nb"`:    "a\nb",
		`'it\'s'`:   "it's",
		`"unclosed`: `"unclosed`,
		`x`:         "x",
		`"mixed'`:   `"mixed'`,
	}
	for in, want := range tests {
		assert.Equal(t, want, Unquote(in), in)
	}
}

func TestStringValue(t *testing.T) {
	root, src := parse(t, "const a = `plain`; const b = `with ${x}`;")

	var templates []*ts.Node
	Walk(root, func(n *ts.Node) bool {
		if n.Kind() == "template_string" {
			templates = append(templates, n)
		}
		return true
	})
	require.Len(t, templates, 2)

	v, ok := StringValue(templates[0], src)
	assert.True(t, ok)
	assert.Equal(t, "plain", v)

	_, ok = StringValue(templates[1], src)
	assert.False(t, ok)
}

func TestDocCommentAndDecorators(t *testing.T) {
	root, src := parse(t, `
/** The button. */
@customElement("my-button")
export class MyButton extends LitElement {
	/** Disables it. */
	@property({ type: Boolean })
	disabled = false;

	// not a doc
	plain = 1;

	/** Click it. */
	@eventOptions({})
	click() {}
}
`)
	class := find(root, "class_declaration")
	require.NotNil(t, class)
	assert.Equal(t, "/** The button. */", DocComment(class, src))

	decs := Decorators(class)
	require.Len(t, decs, 1)
	name, args := DecoratorCall(decs[0], src)
	assert.Equal(t, "customElement", name)
	require.NotNil(t, args)
	require.Len(t, Arguments(args), 1)
	v, ok := StringValue(Arguments(args)[0], src)
	assert.True(t, ok)
	assert.Equal(t, "my-button", v)

	body := Field(class, "body")
	fields := ChildrenOfKind(body, "public_field_definition")
	require.Len(t, fields, 2)
	assert.Equal(t, "/** Disables it. */", DocComment(fields[0], src))
	assert.Len(t, Decorators(fields[0]), 1)
	assert.Empty(t, DocComment(fields[1], src))

	method := ChildOfKind(body, "method_definition")
	require.NotNil(t, method)
	assert.Equal(t, "/** Click it. */", DocComment(method, src))
	mdecs := Decorators(method)
	require.Len(t, mdecs, 1)
	name, _ = DecoratorCall(mdecs[0], src)
	assert.Equal(t, "eventOptions", name)
}

func TestObjectPairsAndUnwrap(t *testing.T) {
	root, src := parse(t, `const cfg = ({ type: String, "reflect": true, attribute } as const);`)
	decl := find(root, "variable_declarator")
	require.NotNil(t, decl)

	value := Unwrap(Field(decl, "value"))
	assert.Equal(t, "object", value.Kind())

	pairs := ObjectPairs(value, src)
	require.Len(t, pairs, 3)
	assert.Equal(t, "type", pairs[0].Key)
	assert.Equal(t, "String", Text(pairs[0].Value, src))
	assert.Equal(t, "reflect", pairs[1].Key)
	assert.Equal(t, "attribute", pairs[2].Key)
}

func TestReturnedExpression(t *testing.T) {
	root, src := parse(t, `
const A = (B) => class extends B {};
function M(B) { const x = 1; return class extends B {}; }
`)
	arrow := find(root, "arrow_function")
	require.NotNil(t, arrow)
	assert.Equal(t, "class", ReturnedExpression(arrow).Kind())

	fn := find(root, "function_declaration")
	require.NotNil(t, fn)
	ret := ReturnedExpression(fn)
	require.NotNil(t, ret)
	assert.Equal(t, "class", ret.Kind())
	assert.Contains(t, Text(ret, src), "extends B")
}

func TestKeyOfIsStable(t *testing.T) {
	root, _ := parse(t, `class A {}`)
	a := find(root, "class_declaration")
	b := find(root, "class_declaration")
	assert.Equal(t, KeyOf("a.ts", a), KeyOf("a.ts", b))
	assert.NotEqual(t, KeyOf("a.ts", a), KeyOf("b.ts", b))
	assert.Equal(t, 1, Line(a))
}
