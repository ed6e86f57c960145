// Package tsnode contains small helpers over tree-sitter syntax nodes shared
// by the program loader and the analyzer.
package tsnode

import (
	"strconv"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Key identifies a syntax node across calls. go-tree-sitter hands out a new
// *ts.Node for every navigation, so pointer equality cannot be used.
type Key struct {
	File  string
	Start uint
	End   uint
	Kind  string
}

// KeyOf returns the identity key of n inside file.
func KeyOf(file string, n *ts.Node) Key {
	if n == nil {
		return Key{File: file}
	}
	return Key{File: file, Start: n.StartByte(), End: n.EndByte(), Kind: n.Kind()}
}

// Text returns the source text of n, or "" for a nil node.
func Text(n *ts.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(src)
}

// Line returns the 1-based line of n.
func Line(n *ts.Node) int {
	if n == nil {
		return 0
	}
	return int(n.StartPosition().Row) + 1
}

// Field returns the child for a field name, or nil.
func Field(n *ts.Node, name string) *ts.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(name)
}

// FieldText returns the text of a named field, or "".
func FieldText(n *ts.Node, name string, src []byte) string {
	return Text(Field(n, name), src)
}

// Children returns all children of n, named or not.
func Children(n *ts.Node) []*ts.Node {
	if n == nil {
		return nil
	}
	out := make([]*ts.Node, 0, n.ChildCount())
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the named children of n.
func NamedChildren(n *ts.Node) []*ts.Node {
	if n == nil {
		return nil
	}
	out := make([]*ts.Node, 0, n.NamedChildCount())
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// ChildOfKind returns the first child whose kind is one of kinds.
func ChildOfKind(n *ts.Node, kinds ...string) *ts.Node {
	for _, c := range Children(n) {
		if IsKind(c, kinds...) {
			return c
		}
	}
	return nil
}

// ChildrenOfKind returns every child whose kind is one of kinds.
func ChildrenOfKind(n *ts.Node, kinds ...string) []*ts.Node {
	var out []*ts.Node
	for _, c := range Children(n) {
		if IsKind(c, kinds...) {
			out = append(out, c)
		}
	}
	return out
}

// HasChildToken reports whether n has an anonymous child with the given text,
// e.g. "static", "get", "readonly", "?".
func HasChildToken(n *ts.Node, token string) bool {
	for _, c := range Children(n) {
		if !c.IsNamed() && c.Kind() == token {
			return true
		}
	}
	return false
}

// IsKind reports whether n is non-nil and of one of the given kinds.
func IsKind(n *ts.Node, kinds ...string) bool {
	if n == nil {
		return false
	}
	k := n.Kind()
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// Ancestor returns the closest ancestor of n with one of kinds.
func Ancestor(n *ts.Node, kinds ...string) *ts.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if IsKind(p, kinds...) {
			return p
		}
	}
	return nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func Walk(n *ts.Node, fn func(*ts.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range NamedChildren(n) {
		Walk(c, fn)
	}
}

// Unwrap strips expression wrappers that do not change the value:
// parentheses, `as`, `satisfies`, non-null assertions and type assertions.
func Unwrap(n *ts.Node) *ts.Node {
	for n != nil {
		switch n.Kind() {
		case "parenthesized_expression", "as_expression", "satisfies_expression",
			"non_null_expression", "type_assertion":
			inner := n.NamedChild(0)
			if n.Kind() == "type_assertion" {
				inner = n.NamedChild(n.NamedChildCount() - 1)
			}
			if inner == nil {
				return n
			}
			n = inner
		default:
			return n
		}
	}
	return n
}

// IsStringLiteral reports whether n is a string or a template string without
// substitutions.
func IsStringLiteral(n *ts.Node) bool {
	switch {
	case n == nil:
		return false
	case n.Kind() == "string":
		return true
	case n.Kind() == "template_string":
		return ChildOfKind(n, "template_substitution") == nil
	}
	return false
}

// StringValue returns the unquoted value of a string literal node.
func StringValue(n *ts.Node, src []byte) (string, bool) {
	if !IsStringLiteral(n) {
		return "", false
	}
	return Unquote(Text(n, src)), true
}

// Unquote strips matching quotes or backticks and resolves simple escapes.
func Unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '"' && q != '\'' && q != '`') || s[len(s)-1] != q {
		return s
	}
	body := s[1 : len(s)-1]
	if !strings.Contains(body, `\`) {
		return body
	}
	if q == '\'' || q == '`' {
		body = strings.ReplaceAll(body, `\`+string(q), string(q))
		body = strings.ReplaceAll(body, `"`, `\"`)
	}
	if v, err := strconv.Unquote(`"` + body + `"`); err == nil {
		return v
	}
	return body
}

// PropertyName returns the name of a class member, object pair key or
// interface property: identifiers as-is, string keys unquoted, computed
// string keys unquoted. Private names keep their "#".
func PropertyName(n *ts.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "string", "template_string":
		v, _ := StringValue(n, src)
		return v
	case "computed_property_name":
		if inner := n.NamedChild(0); IsStringLiteral(inner) {
			v, _ := StringValue(inner, src)
			return v
		}
	}
	return Text(n, src)
}

// DocComment returns the closest "/**" comment attached to a declaration
// node. Decorators between the comment and the node are skipped, and export
// statements wrapping the node are considered too.
func DocComment(n *ts.Node, src []byte) string {
	for cur := n; cur != nil; {
		if c := precedingDoc(cur, src); c != "" {
			return c
		}
		p := cur.Parent()
		if p == nil || !IsKind(p, "export_statement", "ambient_declaration") {
			return ""
		}
		cur = p
	}
	return ""
}

func precedingDoc(n *ts.Node, src []byte) string {
	for prev := n.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		switch prev.Kind() {
		case "decorator":
			continue
		case "comment":
			text := Text(prev, src)
			if strings.HasPrefix(text, "/**") {
				return text
			}
			// A line comment between the doc and the node keeps looking.
			if strings.HasPrefix(text, "//") {
				continue
			}
			return ""
		default:
			return ""
		}
	}
	return ""
}

// Decorators returns the decorators attached to a class, member or field.
// Class and field decorators are children; method decorators in a class
// body are preceding siblings.
func Decorators(n *ts.Node) []*ts.Node {
	if n == nil {
		return nil
	}
	out := ChildrenOfKind(n, "decorator")
	if len(out) > 0 {
		return out
	}
	var prev []*ts.Node
	for p := n.PrevSibling(); p != nil; p = p.PrevSibling() {
		if p.Kind() == "decorator" {
			prev = append([]*ts.Node{p}, prev...)
			continue
		}
		if p.Kind() == "comment" {
			continue
		}
		break
	}
	if len(prev) == 0 && n.Parent() != nil && n.Parent().Kind() == "export_statement" {
		return ChildrenOfKind(n.Parent(), "decorator")
	}
	return prev
}

// DecoratorCall splits a decorator into its callee name and, when it is a
// call, its arguments node. `@foo` yields ("foo", nil).
func DecoratorCall(dec *ts.Node, src []byte) (string, *ts.Node) {
	expr := dec.NamedChild(0)
	if expr == nil {
		return "", nil
	}
	switch expr.Kind() {
	case "call_expression":
		return calleeName(Field(expr, "function"), src), Field(expr, "arguments")
	default:
		return calleeName(expr, src), nil
	}
}

func calleeName(n *ts.Node, src []byte) string {
	if n == nil {
		return ""
	}
	if n.Kind() == "member_expression" {
		return FieldText(n, "property", src)
	}
	return Text(n, src)
}

// Arguments returns the named argument nodes of a call's arguments node.
func Arguments(args *ts.Node) []*ts.Node {
	var out []*ts.Node
	for _, c := range NamedChildren(args) {
		if c.Kind() != "comment" {
			out = append(out, c)
		}
	}
	return out
}

// ObjectPairs returns key/value pairs of an object literal. Shorthand
// properties yield the identifier as both key and value.
func ObjectPairs(obj *ts.Node, src []byte) []Pair {
	obj = Unwrap(obj)
	if !IsKind(obj, "object") {
		return nil
	}
	var out []Pair
	for _, c := range NamedChildren(obj) {
		switch c.Kind() {
		case "pair":
			out = append(out, Pair{Key: PropertyName(Field(c, "key"), src), KeyNode: Field(c, "key"), Value: Field(c, "value")})
		case "shorthand_property_identifier":
			out = append(out, Pair{Key: Text(c, src), KeyNode: c, Value: c})
		case "method_definition":
			out = append(out, Pair{Key: PropertyName(Field(c, "name"), src), KeyNode: Field(c, "name"), Value: c})
		}
	}
	return out
}

// Pair is one entry of an object literal.
type Pair struct {
	Key     string
	KeyNode *ts.Node
	Value   *ts.Node
}

// ReturnedExpression returns the expression a function-like node yields: the
// body of an expression-bodied arrow, or the argument of the single top-level
// return statement of a block body.
func ReturnedExpression(fn *ts.Node) *ts.Node {
	body := Field(fn, "body")
	if body == nil {
		return nil
	}
	if body.Kind() != "statement_block" {
		return Unwrap(body)
	}
	var ret *ts.Node
	for _, st := range NamedChildren(body) {
		if st.Kind() == "return_statement" {
			ret = st
		}
	}
	if ret == nil {
		return nil
	}
	return Unwrap(ret.NamedChild(0))
}
