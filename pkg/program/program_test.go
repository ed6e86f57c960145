package program

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/tsnode"
	"github.com/gnana997/wcspec/pkg/types"
	"github.com/gnana997/wcspec/pkg/util"
)

func newTestProgram(t *testing.T) *Program {
	t.Helper()
	p, err := New(Config{Logger: util.NewDiscardLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// findIdent returns the n-th (0-based) identifier-like node with the given text.
func findIdent(f *SourceFile, text string, nth int) *ts.Node {
	var found *ts.Node
	count := 0
	tsnode.Walk(f.Root(), func(n *ts.Node) bool {
		if found != nil {
			return false
		}
		if tsnode.IsKind(n, "identifier", "type_identifier") && f.Text(n) == text {
			if count == nth {
				found = n
				return false
			}
			count++
		}
		return true
	})
	return found
}

func TestDefaultLib(t *testing.T) {
	p := newTestProgram(t)
	lib := p.DefaultLib()
	require.NotNil(t, lib)
	assert.True(t, lib.IsDefaultLib)
	assert.True(t, lib.IsDeclaration)
	assert.False(t, lib.IsModule())
	assert.False(t, lib.Root().HasError())

	decls := p.Checker().Global("HTMLElement")
	kinds := map[DeclKind]bool{}
	for _, d := range decls {
		kinds[d.Kind] = true
	}
	assert.True(t, kinds[DeclInterface])
	assert.True(t, kinds[DeclVariable])
}

func TestResolveRelativeImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "base.ts"), `export class Base extends HTMLElement {}`)
	writeFile(t, filepath.Join(dir, "reexport.ts"), `export { Base as Renamed } from "./base.js"; export * from "./more";`)
	writeFile(t, filepath.Join(dir, "more", "index.ts"), `export const TAG = "x-more";`)
	main := writeFile(t, filepath.Join(dir, "main.ts"), `
import { Renamed, TAG } from "./reexport";
import * as ns from "./base";
class Child extends Renamed {}
class Other extends ns.Base {}
customElements.define(TAG, Child);
`)

	p := newTestProgram(t)
	f, err := p.AddFile(main)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"./reexport", "./base"}, f.Specifiers)

	c := p.Checker()

	renamed := findIdent(f, "Renamed", 1)
	require.NotNil(t, renamed)
	decls := c.ResolveIdentifier(f, renamed)
	require.Len(t, decls, 1)
	assert.Equal(t, DeclClass, decls[0].Kind)
	assert.Equal(t, "Base", decls[0].Name)
	assert.Equal(t, filepath.Join(dir, "base.ts"), decls[0].File.Path)

	tag := findIdent(f, "TAG", 1)
	decls = c.ResolveIdentifier(f, tag)
	require.Len(t, decls, 1)
	assert.Equal(t, DeclVariable, decls[0].Kind)
	assert.Equal(t, filepath.Join(dir, "more", "index.ts"), decls[0].File.Path)

	var member *ts.Node
	tsnode.Walk(f.Root(), func(n *ts.Node) bool {
		if n.Kind() == "member_expression" && f.Text(n) == "ns.Base" {
			member = n
		}
		return true
	})
	require.NotNil(t, member)
	decls = c.ResolveIdentifier(f, member)
	require.Len(t, decls, 1)
	assert.Equal(t, "Base", decls[0].Name)

	assert.Greater(t, p.Stats().Files, 4)
}

func TestResolvePackage(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "node_modules", "@acme", "ui")
	writeFile(t, filepath.Join(pkg, "package.json"), `{"name":"@acme/ui","exports":{".":{"types":"./dist/index.d.ts","default":"./dist/index.js"}}}`)
	writeFile(t, filepath.Join(pkg, "dist", "index.d.ts"), `export declare class AcmeButton extends HTMLElement { label: string; }`)
	writeFile(t, filepath.Join(dir, "node_modules", "plain", "package.json"), `{"main":"lib/main.js"}`)
	writeFile(t, filepath.Join(dir, "node_modules", "plain", "lib", "main.js"), `export class Plain {}`)
	main := writeFile(t, filepath.Join(dir, "src", "app.ts"), `
import { AcmeButton } from "@acme/ui";
import { Plain } from "plain";
class MyButton extends AcmeButton {}
`)

	p := newTestProgram(t)
	f, err := p.AddFile(main)
	require.NoError(t, err)

	decls := p.Checker().ResolveIdentifier(f, findIdent(f, "AcmeButton", 1))
	require.Len(t, decls, 1)
	assert.True(t, decls[0].File.IsLibrary)
	assert.True(t, decls[0].File.IsDeclaration)
	assert.Equal(t, DeclClass, decls[0].Kind)

	decls = p.Checker().ResolveIdentifier(f, findIdent(f, "Plain", 0))
	require.Len(t, decls, 1)
	assert.Equal(t, filepath.Join(dir, "node_modules", "plain", "lib", "main.js"), decls[0].File.Path)
}

func TestLexicalScopeAndParameters(t *testing.T) {
	p := newTestProgram(t)
	f, err := p.AddSource("/src/mixin.ts", []byte(`
const Base = 1;
export const M = (Base: any) => class extends Base {};
function outer() {
	class Base {}
	return Base;
}
`))
	require.NoError(t, err)
	c := p.Checker()

	// `extends Base` inside the arrow refers to the parameter.
	decls := c.ResolveIdentifier(f, findIdent(f, "Base", 2))
	require.Len(t, decls, 1)
	assert.Equal(t, DeclParameter, decls[0].Kind)

	// `return Base` refers to the nested class.
	decls = c.ResolveIdentifier(f, findIdent(f, "Base", 4))
	require.Len(t, decls, 1)
	assert.Equal(t, DeclClass, decls[0].Kind)
}

func TestDeclareGlobalAndInterfaceMerging(t *testing.T) {
	p := newTestProgram(t)
	_, err := p.AddSource("/src/a.ts", []byte(`
export class A extends HTMLElement {}
declare global {
	interface HTMLElementTagNameMap { "x-a": A }
	interface MyGlobal { a: string }
}
`))
	require.NoError(t, err)
	_, err = p.AddSource("/src/b.d.ts", []byte(`interface MyGlobal { b: number }`))
	require.NoError(t, err)

	decls := p.Checker().Global("MyGlobal")
	assert.Len(t, decls, 2)

	tagMaps := p.Checker().Global("HTMLElementTagNameMap")
	assert.Len(t, tagMaps, 2, "default lib plus the augmentation")

	assert.Empty(t, p.Checker().Global("A"), "module declarations are not global")
}

func TestNamespaceBinding(t *testing.T) {
	p := newTestProgram(t)
	f, err := p.AddSource("/src/ns.ts", []byte(`
namespace Outer {
	export namespace Inner {
		export const TAG = "x-inner";
	}
	export class Base {}
}
const tag = Outer.Inner.TAG;
class Y extends Outer.Base {}
export {};
`))
	require.NoError(t, err)
	c := p.Checker()

	outer := c.ResolveIdentifier(f, findIdent(f, "Outer", 1))
	require.Len(t, outer, 1)
	assert.Equal(t, DeclNamespace, outer[0].Kind)

	inner := c.MemberOf(outer[0], "Inner")
	require.Len(t, inner, 1)
	assert.Equal(t, DeclNamespace, inner[0].Kind)

	tags := c.MemberOf(inner[0], "TAG")
	require.Len(t, tags, 1)
	assert.Equal(t, DeclVariable, tags[0].Kind)

	bases := c.MemberOf(outer[0], "Base")
	require.Len(t, bases, 1)
	assert.Equal(t, DeclClass, bases[0].Kind)
}

func TestScriptNamespaceIsGlobal(t *testing.T) {
	p := newTestProgram(t)
	_, err := p.AddSource("/src/globals.ts", []byte(`namespace AppTags { export const MAIN = "app-main"; }`))
	require.NoError(t, err)

	decls := p.Checker().Global("AppTags")
	require.Len(t, decls, 1)
	assert.Equal(t, DeclNamespace, decls[0].Kind)
}

func TestTypeOf(t *testing.T) {
	p := newTestProgram(t)
	f, err := p.AddSource("/src/types.ts", []byte(`
type Variant = "primary" | "secondary";
class X {
	a: string = "x";
	b = 42;
	/** @type {boolean} */
	c;
	variant: Variant | undefined;
	d = new Map();
	get e(): number { return 1; }
	set f(value: string[]) {}
	g = ["a"];
}
`))
	require.NoError(t, err)
	c := p.Checker()

	body := tsnode.Field(tsnode.ChildOfKind(f.Root(), "class_declaration"), "body")
	fieldTypes := map[string]string{}
	for _, m := range tsnode.NamedChildren(body) {
		name := f.Text(tsnode.Field(m, "name"))
		if name == "" {
			continue
		}
		fieldTypes[name] = c.TypeOf(f, m).String()
	}

	assert.Equal(t, "string", fieldTypes["a"])
	assert.Equal(t, "number", fieldTypes["b"])
	assert.Equal(t, "boolean", fieldTypes["c"])
	assert.Equal(t, `"primary" | "secondary" | undefined`, fieldTypes["variant"])
	assert.Equal(t, "Map", fieldTypes["d"])
	assert.Equal(t, "number", fieldTypes["e"])
	assert.Equal(t, "string[]", fieldTypes["f"])
	assert.Equal(t, types.Array, c.TypeOf(f, tsnode.NamedChildren(body)[len(tsnode.NamedChildren(body))-1]).Kind)
}

func TestAddSourceReplaces(t *testing.T) {
	p := newTestProgram(t)
	_, err := p.AddSource("/src/a.ts", []byte(`export const A = 1;`))
	require.NoError(t, err)
	f2, err := p.AddSource("/src/a.ts", []byte(`export const B = 2;`))
	require.NoError(t, err)

	assert.Same(t, f2, p.File("/src/a.ts"))
	assert.Len(t, p.Roots(), 1)
	assert.Empty(t, p.Checker().ResolveExport(f2, "A"))
	assert.Len(t, p.Checker().ResolveExport(f2, "B"), 1)
}

func TestSplitPackageSpec(t *testing.T) {
	name, sub := splitPackageSpec("@scope/pkg/sub/path")
	assert.Equal(t, "@scope/pkg", name)
	assert.Equal(t, "sub/path", sub)

	name, sub = splitPackageSpec("lit")
	assert.Equal(t, "lit", name)
	assert.Empty(t, sub)

	assert.Equal(t, "scope__pkg", typesPackageName("@scope/pkg"))
}
