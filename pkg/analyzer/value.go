package analyzer

import (
	"strconv"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/tsnode"
)

// MaxValueDepth bounds constant resolution through identifiers and member
// accesses, so self-referential constants terminate.
const MaxValueDepth = 10

// ResolveNodeValue evaluates a constant expression without executing code.
//
// Supported: string, number, boolean and null literals, templates whose
// substitutions resolve, arrays (spreads flattened), object literals,
// identifiers bound to constants (across imports), enum members, static
// class fields and getters, object property chains, unary minus/plus/not
// and "+" concatenation.
//
// Results are string, float64, bool, nil (null), []any or map[string]any.
// ok is false when the value cannot be determined.
func ResolveNodeValue(c *program.Checker, f *program.SourceFile, n *ts.Node) (any, bool) {
	r := valueResolver{checker: c, visiting: make(map[tsnode.Key]bool)}
	return r.resolve(f, n, 0)
}

type valueResolver struct {
	checker *program.Checker

	// visiting holds the declarations on the current resolution path.
	// Re-entering one yields no value.
	visiting map[tsnode.Key]bool
}

func (r *valueResolver) resolve(f *program.SourceFile, n *ts.Node, depth int) (any, bool) {
	if f == nil || n == nil || depth > MaxValueDepth {
		return nil, false
	}
	n = tsnode.Unwrap(n)

	switch n.Kind() {
	case "string":
		v, _ := tsnode.StringValue(n, f.Source)
		return v, true

	case "template_string":
		return r.template(f, n, depth)

	case "number":
		return parseNumber(f.Text(n))

	case "true":
		return true, true
	case "false":
		return false, true
	case "null":
		return nil, true

	case "array":
		out := []any{}
		for _, el := range tsnode.NamedChildren(n) {
			if el.Kind() == "spread_element" {
				if v, ok := r.resolve(f, el.NamedChild(0), depth+1); ok {
					if arr, isArr := v.([]any); isArr {
						out = append(out, arr...)
					}
				}
				continue
			}
			if el.Kind() == "comment" {
				continue
			}
			if v, ok := r.resolve(f, el, depth+1); ok {
				out = append(out, v)
			}
		}
		return out, true

	case "object":
		out := map[string]any{}
		for _, p := range tsnode.ObjectPairs(n, f.Source) {
			if p.Value == nil || p.Value.Kind() == "method_definition" {
				continue
			}
			if v, ok := r.resolve(f, p.Value, depth+1); ok {
				out[p.Key] = v
			}
		}
		return out, true

	case "identifier", "shorthand_property_identifier":
		if f.Text(n) == "undefined" {
			return nil, false
		}
		for _, d := range r.checker.ResolveName(f, n, f.Text(n)) {
			if v, ok := r.declValue(d, depth+1); ok {
				return v, true
			}
		}
		return nil, false

	case "member_expression":
		return r.member(f, tsnode.Field(n, "object"), tsnode.PropertyName(tsnode.Field(n, "property"), f.Source), depth)

	case "subscript_expression":
		key, ok := r.resolve(f, tsnode.Field(n, "index"), depth+1)
		if !ok {
			return nil, false
		}
		return r.member(f, tsnode.Field(n, "object"), keyString(key), depth)

	case "unary_expression":
		v, ok := r.resolve(f, tsnode.Field(n, "argument"), depth+1)
		if !ok {
			return nil, false
		}
		switch tsnode.FieldText(n, "operator", f.Source) {
		case "-":
			if num, isNum := v.(float64); isNum {
				return -num, true
			}
		case "+":
			if num, isNum := toNumber(v); isNum {
				return num, true
			}
		case "!":
			return !truthy(v), true
		}
		return nil, false

	case "binary_expression":
		if tsnode.FieldText(n, "operator", f.Source) != "+" {
			return nil, false
		}
		left, ok := r.resolve(f, tsnode.Field(n, "left"), depth+1)
		if !ok {
			return nil, false
		}
		right, ok := r.resolve(f, tsnode.Field(n, "right"), depth+1)
		if !ok {
			return nil, false
		}
		ln, lok := left.(float64)
		rn, rok := right.(float64)
		if lok && rok {
			return ln + rn, true
		}
		return FormatValue(left) + FormatValue(right), true
	}
	return nil, false
}

func (r *valueResolver) template(f *program.SourceFile, n *ts.Node, depth int) (any, bool) {
	if v, ok := tsnode.StringValue(n, f.Source); ok {
		return v, true
	}
	var b strings.Builder
	src := f.Source
	pos := n.StartByte() + 1
	end := n.EndByte() - 1
	for _, sub := range tsnode.ChildrenOfKind(n, "template_substitution") {
		b.WriteString(tsnode.Unquote("`" + string(src[pos:sub.StartByte()]) + "`"))
		v, ok := r.resolve(f, sub.NamedChild(0), depth+1)
		if !ok {
			return nil, false
		}
		b.WriteString(FormatValue(v))
		pos = sub.EndByte()
	}
	if pos < end {
		b.WriteString(tsnode.Unquote("`" + string(src[pos:end]) + "`"))
	}
	return b.String(), true
}

// declValue returns the constant a declaration stands for.
func (r *valueResolver) declValue(d *program.Decl, depth int) (any, bool) {
	if d.Kind != program.DeclVariable {
		return nil, false
	}
	// Only const bindings are constants.
	if decl := d.Node.Parent(); decl != nil && decl.Kind() == "lexical_declaration" && !tsnode.HasChildToken(decl, "const") {
		return nil, false
	}
	return r.guarded(d.Key(), func() (any, bool) {
		return r.resolve(d.File, d.Value(), depth)
	})
}

// guarded runs resolve unless key is already being resolved.
func (r *valueResolver) guarded(key tsnode.Key, resolve func() (any, bool)) (any, bool) {
	if r.visiting[key] {
		return nil, false
	}
	r.visiting[key] = true
	defer delete(r.visiting, key)
	return resolve()
}

// member resolves obj.name: enum members, static class members, namespace
// exports and properties of resolved objects.
func (r *valueResolver) member(f *program.SourceFile, obj *ts.Node, name string, depth int) (any, bool) {
	if obj == nil || name == "" || depth > MaxValueDepth {
		return nil, false
	}
	obj = tsnode.Unwrap(obj)

	if tsnode.IsKind(obj, "identifier", "member_expression") {
		for _, d := range r.checker.ResolveIdentifier(f, obj) {
			switch d.Kind {
			case program.DeclEnum:
				if v, ok := enumMember(r, d, name, depth); ok {
					return v, true
				}
			case program.DeclNamespace:
				for _, m := range r.checker.MemberOf(d, name) {
					if v, ok := r.declValue(m, depth+1); ok {
						return v, true
					}
				}
			}
			if cls := program.ClassOf(d); cls != nil {
				if v, ok := r.staticMember(d.File, cls, name, depth); ok {
					return v, true
				}
			}
		}
	}

	v, ok := r.resolve(f, obj, depth+1)
	if !ok {
		return nil, false
	}
	switch o := v.(type) {
	case map[string]any:
		val, found := o[name]
		return val, found
	case []any:
		if name == "length" {
			return float64(len(o)), true
		}
		if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < len(o) {
			return o[i], true
		}
	case string:
		if name == "length" {
			return float64(len(o)), true
		}
	}
	return nil, false
}

// staticMember resolves `static x = v` and `static get x() { return v }`.
func (r *valueResolver) staticMember(f *program.SourceFile, cls *ts.Node, name string, depth int) (any, bool) {
	for _, m := range tsnode.NamedChildren(tsnode.Field(cls, "body")) {
		if !tsnode.HasChildToken(m, "static") {
			continue
		}
		switch m.Kind() {
		case "public_field_definition", "field_definition":
			key := tsnode.Field(m, "name")
			if key == nil {
				key = tsnode.Field(m, "property")
			}
			if tsnode.PropertyName(key, f.Source) == name {
				return r.guarded(tsnode.KeyOf(f.Path, m), func() (any, bool) {
					return r.resolve(f, tsnode.Field(m, "value"), depth+1)
				})
			}
		case "method_definition":
			if tsnode.HasChildToken(m, "get") && tsnode.PropertyName(tsnode.Field(m, "name"), f.Source) == name {
				return r.guarded(tsnode.KeyOf(f.Path, m), func() (any, bool) {
					return r.resolve(f, tsnode.ReturnedExpression(m), depth+1)
				})
			}
		}
	}
	return nil, false
}

// enumMember resolves E.name, numbering members without initializers from
// the previous numeric value.
func enumMember(r *valueResolver, d *program.Decl, name string, depth int) (any, bool) {
	next := 0.0
	for _, m := range tsnode.NamedChildren(tsnode.Field(d.Node, "body")) {
		var key string
		var val any
		ok := false
		switch m.Kind() {
		case "property_identifier", "string":
			key = tsnode.PropertyName(m, d.File.Source)
			val, ok = next, true
		case "enum_assignment":
			key = tsnode.PropertyName(tsnode.Field(m, "name"), d.File.Source)
			val, ok = r.guarded(tsnode.KeyOf(d.File.Path, m), func() (any, bool) {
				return r.resolve(d.File, tsnode.Field(m, "value"), depth+1)
			})
		default:
			continue
		}
		if num, isNum := val.(float64); ok && isNum {
			next = num + 1
		}
		if key == name {
			return val, ok
		}
	}
	return nil, false
}

func parseNumber(text string) (any, bool) {
	text = strings.ReplaceAll(text, "_", "")
	if text == "" || !strings.ContainsRune("0123456789.-+", rune(text[0])) {
		return nil, false
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, true
	}
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return float64(i), true
	}
	return nil, false
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case nil:
		return 0, true
	}
	return 0, false
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	}
	return true
}

func keyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return FormatValue(v)
}

// FormatValue renders a resolved value the way JavaScript string
// conversion would for primitives.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FormatValue(e)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	}
	return ""
}

// ParseLiteral interprets a default value written in documentation: JSON
// style literals become values, anything else stays a string.
func ParseLiteral(text string) any {
	text = strings.TrimSpace(text)
	switch text {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if v, ok := parseNumber(text); ok {
		return v
	}
	if len(text) >= 2 && strings.ContainsRune(`"'`+"`", rune(text[0])) {
		return tsnode.Unquote(text)
	}
	return text
}
