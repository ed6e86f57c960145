package program

import (
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/jsdoc"
	"github.com/gnana997/wcspec/pkg/tsnode"
	"github.com/gnana997/wcspec/pkg/types"
)

const (
	maxAliasDepth = 20
	maxTypeDepth  = 5
)

// Checker resolves names to declarations and nodes to types.
type Checker struct {
	program *Program

	globalsMu      sync.Mutex
	globals        map[string][]*Decl
	globalsVersion int
}

// ResolveIdentifier returns the declarations an identifier refers to. Import
// bindings and re-exports are followed. Global interfaces declared in several
// places are all returned.
func (c *Checker) ResolveIdentifier(f *SourceFile, ident *ts.Node) []*Decl {
	if f == nil || ident == nil {
		return nil
	}
	switch ident.Kind() {
	case "member_expression", "nested_type_identifier", "nested_identifier":
		return c.ResolveQualified(f, ident)
	case "generic_type":
		return c.ResolveIdentifier(f, tsnode.Field(ident, "name"))
	}
	return c.ResolveName(f, ident, f.Text(ident))
}

// ResolveName resolves name as seen from node at.
func (c *Checker) ResolveName(f *SourceFile, at *ts.Node, name string) []*Decl {
	if name == "" {
		return nil
	}
	if decls := c.followAll(lookupLocal(f, at, name), 0); len(decls) > 0 {
		return decls
	}
	return c.Global(name)
}

// ResolveQualified resolves `a.b` expressions and `ns.Type` type names.
func (c *Checker) ResolveQualified(f *SourceFile, n *ts.Node) []*Decl {
	var left, right *ts.Node
	switch n.Kind() {
	case "member_expression":
		left, right = tsnode.Field(n, "object"), tsnode.Field(n, "property")
	default:
		named := tsnode.NamedChildren(n)
		if len(named) < 2 {
			return nil
		}
		left, right = named[0], named[len(named)-1]
	}
	member := f.Text(right)

	var out []*Decl
	for _, d := range c.ResolveIdentifier(f, left) {
		out = append(out, c.MemberOf(d, member)...)
	}
	return out
}

// MemberOf returns the declarations exported as name from a namespace decl.
func (c *Checker) MemberOf(d *Decl, name string) []*Decl {
	if d.Kind != DeclNamespace {
		return nil
	}
	if d.Module != nil {
		return c.ResolveExport(d.Module, name)
	}
	body := tsnode.Field(d.Node, "body")
	return c.followAll(declarationsIn(d.File, body, name), 0)
}

// Global returns the global declarations of name: the default library,
// script files and `declare global` blocks of every loaded file.
func (c *Checker) Global(name string) []*Decl {
	c.globalsMu.Lock()
	defer c.globalsMu.Unlock()

	version := c.program.currentVersion()
	if c.globals == nil || c.globalsVersion != version {
		c.globals = make(map[string][]*Decl)
		for _, f := range c.program.Files() {
			for _, d := range globalDecls(f) {
				c.globals[d.Name] = append(c.globals[d.Name], d)
			}
		}
		c.globalsVersion = version
	}
	return c.globals[name]
}

// ResolveExport returns the declarations a module exports under name.
// "default" addresses the default export.
func (c *Checker) ResolveExport(f *SourceFile, name string) []*Decl {
	return c.resolveExport(f, name, make(map[string]bool))
}

func (c *Checker) resolveExport(f *SourceFile, name string, visited map[string]bool) []*Decl {
	if f == nil {
		return nil
	}
	key := f.Path + "\x00" + name
	if visited[key] {
		return nil
	}
	visited[key] = true

	root := f.Root()
	var out []*Decl
	var stars []*SourceFile

	for _, st := range tsnode.ChildrenOfKind(root, "export_statement") {
		source := tsnode.Field(st, "source")
		var target *SourceFile
		if source != nil {
			spec, _ := tsnode.StringValue(source, f.Source)
			target = c.program.ResolveModule(f, spec)
		}

		isDefault := tsnode.HasChildToken(st, "default")
		if decl := tsnode.Field(st, "declaration"); decl != nil {
			if isDefault {
				if name == "default" {
					out = append(out, defaultDecl(f, decl)...)
				}
				continue
			}
			out = append(out, c.followAll(statementDecls(f, decl, name), 0)...)
			continue
		}
		if value := tsnode.Field(st, "value"); value != nil {
			if name == "default" {
				out = append(out, c.expressionDecls(f, value)...)
			}
			continue
		}

		clause := tsnode.ChildOfKind(st, "export_clause")
		if clause == nil {
			if ns := tsnode.ChildOfKind(st, "namespace_export"); ns != nil {
				if target != nil && f.Text(ns.NamedChild(ns.NamedChildCount()-1)) == name {
					out = append(out, &Decl{Kind: DeclNamespace, Name: name, Node: ns, File: f, Module: target})
				}
				continue
			}
			// export * from "m"
			if target != nil && name != "default" {
				stars = append(stars, target)
			}
			continue
		}

		for _, spec := range tsnode.ChildrenOfKind(clause, "export_specifier") {
			local := tsnode.PropertyName(tsnode.Field(spec, "name"), f.Source)
			exported := local
			if alias := tsnode.Field(spec, "alias"); alias != nil {
				exported = tsnode.PropertyName(alias, f.Source)
			}
			if exported != name {
				continue
			}
			if source != nil {
				out = append(out, c.resolveExport(target, local, visited)...)
			} else {
				out = append(out, c.followAll(declarationsIn(f, root, local), 0)...)
			}
		}
	}

	if len(out) == 0 {
		for _, target := range stars {
			out = append(out, c.resolveExport(target, name, visited)...)
		}
	}
	return out
}

// defaultDecl wraps the declaration of `export default class/function`.
func defaultDecl(f *SourceFile, decl *ts.Node) []*Decl {
	name := f.Text(tsnode.Field(decl, "name"))
	switch {
	case IsClassNode(decl):
		return []*Decl{{Kind: DeclClass, Name: name, Node: decl, File: f}}
	case tsnode.IsKind(decl, "function_declaration", "function_expression", "function", "generator_function_declaration"):
		return []*Decl{{Kind: DeclFunction, Name: name, Node: decl, File: f}}
	}
	return statementDecls(f, decl, "")
}

// expressionDecls turns an exported expression into declarations.
func (c *Checker) expressionDecls(f *SourceFile, expr *ts.Node) []*Decl {
	expr = tsnode.Unwrap(expr)
	switch {
	case expr == nil:
		return nil
	case tsnode.IsKind(expr, "identifier"):
		return c.ResolveIdentifier(f, expr)
	case IsClassNode(expr):
		return []*Decl{{Kind: DeclClass, Name: f.Text(tsnode.Field(expr, "name")), Node: expr, File: f}}
	}
	return []*Decl{{Kind: DeclExpression, Node: expr, File: f}}
}

// followAll replaces import bindings with what they point to.
func (c *Checker) followAll(decls []*Decl, depth int) []*Decl {
	if depth > maxAliasDepth {
		return nil
	}
	var out []*Decl
	for _, d := range decls {
		if d.Kind != declImport {
			out = append(out, d)
			continue
		}
		target := c.program.ResolveModule(d.File, d.importSpec)
		if target == nil {
			continue
		}
		if d.importName == "*" {
			out = append(out, &Decl{Kind: DeclNamespace, Name: d.Name, Node: d.Node, File: d.File, Module: target})
			continue
		}
		out = append(out, c.followAll(c.ResolveExport(target, d.importName), depth+1)...)
	}
	return out
}

// ClassOf returns the class node a declaration stands for: the class itself,
// or a variable initialized with a class expression.
func ClassOf(d *Decl) *ts.Node {
	switch d.Kind {
	case DeclClass:
		return d.Node
	case DeclVariable:
		if v := d.Value(); IsClassNode(v) {
			return v
		}
	case DeclExpression:
		if IsClassNode(d.Node) {
			return d.Node
		}
	}
	return nil
}

// TypeOf returns the declared or inferred type of a declaration-like node:
// fields, property signatures, parameters, variables, accessors, type nodes
// and expressions. The result is never nil.
func (c *Checker) TypeOf(f *SourceFile, n *ts.Node) *types.Type {
	return c.typeOf(f, n, 0)
}

func (c *Checker) typeOf(f *SourceFile, n *ts.Node, depth int) *types.Type {
	if f == nil || n == nil || depth > maxTypeDepth {
		return types.AnyType
	}

	switch n.Kind() {
	case "public_field_definition", "field_definition", "property_signature", "variable_declarator",
		"required_parameter", "optional_parameter", "enum_assignment":
		if ann := tsnode.Field(n, "type"); ann != nil {
			return c.typeOfAnnotation(f, ann, depth)
		}
		if t := jsdocType(f, n); t != nil {
			return t
		}
		if v := tsnode.Field(n, "value"); v != nil {
			return c.typeOfExpression(f, v, depth)
		}
		return types.AnyType

	case "method_definition", "method_signature":
		if tsnode.HasChildToken(n, "get") {
			if ret := tsnode.Field(n, "return_type"); ret != nil {
				return c.typeOfAnnotation(f, ret, depth)
			}
			if t := jsdocType(f, n); t != nil {
				return t
			}
			return types.AnyType
		}
		if tsnode.HasChildToken(n, "set") {
			params := tsnode.NamedChildren(tsnode.Field(n, "parameters"))
			if len(params) > 0 {
				return c.typeOf(f, params[0], depth+1)
			}
			return types.AnyType
		}
		return &types.Type{Kind: types.Function, Text: signatureText(f, n)}

	case "type_annotation", "opting_type_annotation", "omitting_type_annotation":
		return c.typeOfAnnotation(f, n, depth)
	}

	if strings.HasSuffix(n.Kind(), "_type") || tsnode.IsKind(n, "type_identifier", "predefined_type", "nested_type_identifier") {
		return c.expand(f, n, types.Parse(f.Text(n)), depth)
	}
	return c.typeOfExpression(f, n, depth)
}

func (c *Checker) typeOfAnnotation(f *SourceFile, ann *ts.Node, depth int) *types.Type {
	inner := ann
	if tsnode.IsKind(ann, "type_annotation", "opting_type_annotation", "omitting_type_annotation") {
		inner = ann.NamedChild(0)
	}
	if inner == nil {
		return types.AnyType
	}
	return c.expand(f, inner, types.Parse(f.Text(inner)), depth)
}

func jsdocType(f *SourceFile, n *ts.Node) *types.Type {
	doc := tsnode.DocComment(n, f.Source)
	if doc == "" {
		return nil
	}
	if tag := jsdoc.Parse(doc).Find("type"); tag != nil && tag.Type != "" {
		return types.Parse(tag.Type)
	}
	return nil
}

func signatureText(f *SourceFile, n *ts.Node) string {
	params := f.Text(tsnode.Field(n, "parameters"))
	if params == "" {
		params = "()"
	}
	ret := "void"
	if r := tsnode.Field(n, "return_type"); r != nil && r.NamedChild(0) != nil {
		ret = f.Text(r.NamedChild(0))
	}
	return params + " => " + ret
}

// typeOfExpression infers the type of an initializer.
func (c *Checker) typeOfExpression(f *SourceFile, expr *ts.Node, depth int) *types.Type {
	if expr == nil {
		return types.AnyType
	}
	switch expr.Kind() {
	case "string", "template_string":
		return types.StringType
	case "number":
		return types.NumberType
	case "true", "false":
		return types.BooleanType
	case "null":
		return types.NullType
	case "undefined":
		return types.UndefinedType
	case "array":
		return types.ArrayOf(types.AnyType)
	case "object":
		return types.ObjectType
	case "arrow_function", "function_expression", "function":
		return &types.Type{Kind: types.Function, Text: signatureText(f, expr)}
	case "new_expression":
		ctor := tsnode.Field(expr, "constructor")
		return types.Ref(f.Text(ctor))
	case "unary_expression":
		switch f.Text(tsnode.Field(expr, "operator")) {
		case "!":
			return types.BooleanType
		case "-", "+", "~":
			return types.NumberType
		case "typeof":
			return types.StringType
		}
	case "as_expression", "satisfies_expression":
		named := tsnode.NamedChildren(expr)
		if len(named) == 2 {
			return c.typeOf(f, named[1], depth+1)
		}
	case "parenthesized_expression", "non_null_expression":
		return c.typeOfExpression(f, tsnode.Unwrap(expr), depth)
	case "identifier":
		if f.Text(expr) == "undefined" {
			return types.UndefinedType
		}
		for _, d := range c.ResolveIdentifier(f, expr) {
			if d.Kind == DeclVariable || d.Kind == DeclParameter {
				return c.typeOf(d.File, d.Node, depth+1)
			}
		}
	}
	return types.AnyType
}

// expand replaces references to local type aliases with their definition,
// so `type Variant = "a" | "b"` surfaces the literal union.
func (c *Checker) expand(f *SourceFile, at *ts.Node, t *types.Type, depth int) *types.Type {
	if t == nil || depth > maxTypeDepth {
		return t
	}
	switch t.Kind {
	case types.Reference:
		if len(t.Types) > 0 {
			return t
		}
		for _, d := range c.ResolveName(f, at, t.Name) {
			if d.Kind != DeclTypeAlias {
				continue
			}
			if value := tsnode.Field(d.Node, "value"); value != nil {
				return c.expand(d.File, value, types.Parse(d.File.Text(value)), depth+1)
			}
		}
		return t
	case types.Union:
		members := make([]*types.Type, len(t.Types))
		changed := false
		for i, m := range t.Types {
			members[i] = c.expand(f, at, m, depth+1)
			changed = changed || members[i] != m
		}
		if !changed {
			return t
		}
		return types.UnionOf(members...)
	case types.Array:
		if elem := c.expand(f, at, t.Elem, depth+1); elem != t.Elem {
			return types.ArrayOf(elem)
		}
	}
	return t
}
