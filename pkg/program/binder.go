package program

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/tsnode"
)

// DeclKind classifies a Decl.
type DeclKind int

const (
	DeclClass DeclKind = iota
	DeclInterface
	DeclVariable
	DeclFunction
	DeclEnum
	DeclTypeAlias
	DeclParameter
	// DeclNamespace is a `namespace X {}` block or an `import * as X` binding.
	DeclNamespace
	// DeclExpression is an anonymous `export default <expr>`.
	DeclExpression
	// declImport is an unresolved import binding; the checker never returns it.
	declImport
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclInterface:
		return "interface"
	case DeclVariable:
		return "variable"
	case DeclFunction:
		return "function"
	case DeclEnum:
		return "enum"
	case DeclTypeAlias:
		return "type"
	case DeclParameter:
		return "parameter"
	case DeclNamespace:
		return "namespace"
	case DeclExpression:
		return "expression"
	}
	return "import"
}

// Decl is one declaration of a name.
type Decl struct {
	Kind DeclKind
	Name string

	// Node is the declaring node: class_declaration, interface_declaration,
	// variable_declarator, function_declaration, enum_declaration,
	// type_alias_declaration, the parameter identifier, internal_module, or
	// the exported expression.
	Node *ts.Node
	File *SourceFile

	// Module is the target of a namespace import.
	Module *SourceFile

	importSpec string
	importName string
}

// Value returns the initializer of a variable declaration, unwrapped.
func (d *Decl) Value() *ts.Node {
	if d.Kind != DeclVariable {
		return nil
	}
	return tsnode.Unwrap(tsnode.Field(d.Node, "value"))
}

// Key returns the identity key of the declaring node.
func (d *Decl) Key() tsnode.Key {
	return tsnode.KeyOf(d.File.Path, d.Node)
}

var classKinds = []string{"class_declaration", "abstract_class_declaration", "class"}

// IsClassNode reports class declarations and class expressions.
func IsClassNode(n *ts.Node) bool {
	return tsnode.IsKind(n, classKinds...)
}

// declarationsIn collects the declarations of name made directly in a block
// (program, statement_block, namespace body).
func declarationsIn(f *SourceFile, block *ts.Node, name string) []*Decl {
	var out []*Decl
	for _, st := range tsnode.NamedChildren(block) {
		out = append(out, statementDecls(f, st, name)...)
	}
	return out
}

// statementDecls returns the declarations of name introduced by statement st.
// An empty name matches every declaration.
func statementDecls(f *SourceFile, st *ts.Node, name string) []*Decl {
	match := func(n string) bool { return name == "" || n == name }

	switch st.Kind() {
	case "export_statement":
		if d := tsnode.Field(st, "declaration"); d != nil {
			return statementDecls(f, d, name)
		}
		return nil

	case "ambient_declaration":
		// `declare global { }` contributes to the global scope only.
		if tsnode.HasChildToken(st, "global") {
			return nil
		}
		var out []*Decl
		for _, c := range tsnode.NamedChildren(st) {
			out = append(out, statementDecls(f, c, name)...)
		}
		return out

	case "class_declaration", "abstract_class_declaration":
		if n := f.Text(tsnode.Field(st, "name")); n != "" && match(n) {
			return []*Decl{{Kind: DeclClass, Name: n, Node: st, File: f}}
		}

	case "function_declaration", "generator_function_declaration", "function_signature":
		if n := f.Text(tsnode.Field(st, "name")); n != "" && match(n) {
			return []*Decl{{Kind: DeclFunction, Name: n, Node: st, File: f}}
		}

	case "interface_declaration":
		if n := f.Text(tsnode.Field(st, "name")); match(n) {
			return []*Decl{{Kind: DeclInterface, Name: n, Node: st, File: f}}
		}

	case "enum_declaration":
		if n := f.Text(tsnode.Field(st, "name")); match(n) {
			return []*Decl{{Kind: DeclEnum, Name: n, Node: st, File: f}}
		}

	case "type_alias_declaration":
		if n := f.Text(tsnode.Field(st, "name")); match(n) {
			return []*Decl{{Kind: DeclTypeAlias, Name: n, Node: st, File: f}}
		}

	case "expression_statement":
		// A bare `namespace X {}` parses as an expression statement.
		var out []*Decl
		for _, c := range tsnode.NamedChildren(st) {
			if tsnode.IsKind(c, "internal_module", "module") {
				out = append(out, statementDecls(f, c, name)...)
			}
		}
		return out

	case "internal_module", "module":
		nameNode := tsnode.Field(st, "name")
		if tsnode.IsKind(nameNode, "identifier", "nested_identifier") && match(f.Text(nameNode)) {
			return []*Decl{{Kind: DeclNamespace, Name: f.Text(nameNode), Node: st, File: f}}
		}

	case "lexical_declaration", "variable_declaration":
		var out []*Decl
		for _, vd := range tsnode.ChildrenOfKind(st, "variable_declarator") {
			nameNode := tsnode.Field(vd, "name")
			if !tsnode.IsKind(nameNode, "identifier") {
				continue
			}
			if n := f.Text(nameNode); match(n) {
				out = append(out, &Decl{Kind: DeclVariable, Name: n, Node: vd, File: f})
			}
		}
		return out

	case "import_statement":
		return importDecls(f, st, name)
	}
	return nil
}

// importDecls returns unresolved import bindings matching name.
func importDecls(f *SourceFile, st *ts.Node, name string) []*Decl {
	spec, _ := tsnode.StringValue(tsnode.Field(st, "source"), f.Source)
	clause := tsnode.ChildOfKind(st, "import_clause")
	if spec == "" || clause == nil {
		return nil
	}
	match := func(n string) bool { return name == "" || n == name }

	var out []*Decl
	for _, c := range tsnode.NamedChildren(clause) {
		switch c.Kind() {
		case "identifier":
			if n := f.Text(c); match(n) {
				out = append(out, &Decl{Kind: declImport, Name: n, Node: c, File: f, importSpec: spec, importName: "default"})
			}
		case "namespace_import":
			id := tsnode.ChildOfKind(c, "identifier")
			if n := f.Text(id); id != nil && match(n) {
				out = append(out, &Decl{Kind: declImport, Name: n, Node: id, File: f, importSpec: spec, importName: "*"})
			}
		case "named_imports":
			for _, s := range tsnode.ChildrenOfKind(c, "import_specifier") {
				imported := tsnode.PropertyName(tsnode.Field(s, "name"), f.Source)
				local := imported
				if alias := tsnode.Field(s, "alias"); alias != nil {
					local = f.Text(alias)
				}
				if match(local) {
					out = append(out, &Decl{Kind: declImport, Name: local, Node: s, File: f, importSpec: spec, importName: imported})
				}
			}
		}
	}
	return out
}

// parameterDecl finds a parameter named name on a function-like node.
func parameterDecl(f *SourceFile, fn *ts.Node, name string) *Decl {
	if single := tsnode.Field(fn, "parameter"); single != nil {
		if f.Text(single) == name {
			return &Decl{Kind: DeclParameter, Name: name, Node: single, File: f}
		}
		return nil
	}
	for _, param := range tsnode.NamedChildren(tsnode.Field(fn, "parameters")) {
		id := param
		switch param.Kind() {
		case "required_parameter", "optional_parameter":
			id = tsnode.Field(param, "pattern")
		case "assignment_pattern":
			id = tsnode.Field(param, "left")
		case "rest_pattern":
			id = param.NamedChild(0)
		}
		if tsnode.IsKind(id, "identifier") && f.Text(id) == name {
			return &Decl{Kind: DeclParameter, Name: name, Node: id, File: f}
		}
	}
	return nil
}

var functionKinds = []string{
	"arrow_function", "function_declaration", "function_expression", "function",
	"generator_function_declaration", "generator_function", "method_definition",
}

var blockKinds = []string{"program", "statement_block", "class_static_block"}

// lookupLocal resolves name lexically from the position of node at,
// returning the declarations of the innermost scope that declares it.
func lookupLocal(f *SourceFile, at *ts.Node, name string) []*Decl {
	for n := at; n != nil; n = n.Parent() {
		switch {
		case tsnode.IsKind(n, blockKinds...):
			if decls := declarationsIn(f, n, name); len(decls) > 0 {
				return decls
			}
		case tsnode.IsKind(n, functionKinds...):
			if d := parameterDecl(f, n, name); d != nil {
				return []*Decl{d}
			}
		case IsClassNode(n) && n.Kind() == "class":
			// Named class expressions see their own name.
			if nameNode := tsnode.Field(n, "name"); nameNode != nil && f.Text(nameNode) == name {
				return []*Decl{{Kind: DeclClass, Name: name, Node: n, File: f}}
			}
		}
	}
	return nil
}

// globalDecls collects declarations that live in the global scope of f:
// every top-level declaration of a script, and the contents of
// `declare global { }` blocks in modules.
func globalDecls(f *SourceFile) []*Decl {
	root := f.Root()
	var out []*Decl
	if !f.IsModule() {
		out = append(out, declarationsIn(f, root, "")...)
	}
	tsnode.Walk(root, func(n *ts.Node) bool {
		switch n.Kind() {
		case "ambient_declaration":
			if tsnode.HasChildToken(n, "global") {
				if block := tsnode.ChildOfKind(n, "statement_block"); block != nil {
					out = append(out, declarationsIn(f, block, "")...)
				}
				return false
			}
			return true
		case "program", "export_statement", "expression_statement", "internal_module", "module", "statement_block":
			return true
		}
		return false
	})
	// Imports inside scripts are never global.
	filtered := out[:0]
	for _, d := range out {
		if d.Kind != declImport {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
