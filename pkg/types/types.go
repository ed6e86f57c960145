// Package types is a deliberately small model of TypeScript types: enough to
// describe attribute and property types in a component catalog and to check
// simple assignability between a decorator configuration and a declared type.
package types

import (
	"strconv"
	"strings"
)

// Kind discriminates Type.
type Kind int

const (
	Any Kind = iota
	Unknown
	String
	Number
	Boolean
	BigInt
	Null
	Undefined
	Void
	Never
	Object
	Array
	Tuple
	Union
	Intersection
	StringLiteral
	NumberLiteral
	BooleanLiteral
	Function
	// Reference is a named type that is not expanded further: classes,
	// interfaces, generics such as CustomEvent<T>.
	Reference
)

var kindNames = map[Kind]string{
	Any:            "any",
	Unknown:        "unknown",
	String:         "string",
	Number:         "number",
	Boolean:        "boolean",
	BigInt:         "bigint",
	Null:           "null",
	Undefined:      "undefined",
	Void:           "void",
	Never:          "never",
	Object:         "object",
	Array:          "array",
	Tuple:          "tuple",
	Union:          "union",
	Intersection:   "intersection",
	StringLiteral:  "string-literal",
	NumberLiteral:  "number-literal",
	BooleanLiteral: "boolean-literal",
	Function:       "function",
	Reference:      "reference",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Type is an immutable type value. A nil *Type is treated as Any everywhere.
type Type struct {
	Kind Kind

	// Name is set for Reference types.
	Name string

	// Value is set for literal types, unquoted for string literals.
	Value string

	// Elem is the element type of Array.
	Elem *Type

	// Types holds union/intersection/tuple members or reference type arguments.
	Types []*Type

	// Text is the source text the type was parsed from, when known.
	Text string
}

var (
	AnyType       = &Type{Kind: Any}
	UnknownType   = &Type{Kind: Unknown}
	StringType    = &Type{Kind: String}
	NumberType    = &Type{Kind: Number}
	BooleanType   = &Type{Kind: Boolean}
	NullType      = &Type{Kind: Null}
	UndefinedType = &Type{Kind: Undefined}
	ObjectType    = &Type{Kind: Object}
)

// ArrayOf returns elem[].
func ArrayOf(elem *Type) *Type {
	return &Type{Kind: Array, Elem: elem}
}

// UnionOf builds a union, flattening nested unions. A single member is
// returned as-is.
func UnionOf(members ...*Type) *Type {
	var flat []*Type
	for _, m := range members {
		if m == nil {
			continue
		}
		if m.Kind == Union {
			flat = append(flat, m.Types...)
			continue
		}
		flat = append(flat, m)
	}
	switch len(flat) {
	case 0:
		return AnyType
	case 1:
		return flat[0]
	}
	return &Type{Kind: Union, Types: flat}
}

// StringLit returns the literal type "v".
func StringLit(v string) *Type {
	return &Type{Kind: StringLiteral, Value: v}
}

// Ref returns a reference to a named type with optional type arguments.
func Ref(name string, args ...*Type) *Type {
	return &Type{Kind: Reference, Name: name, Types: args}
}

// IsAnyLike reports whether t carries no information: nil, any or unknown.
func (t *Type) IsAnyLike() bool {
	return t == nil || t.Kind == Any || t.Kind == Unknown
}

// IsNullish reports null, undefined and void.
func (t *Type) IsNullish() bool {
	return t != nil && (t.Kind == Null || t.Kind == Undefined || t.Kind == Void)
}

// NonNullable strips null and undefined members from a union.
func (t *Type) NonNullable() *Type {
	if t == nil || t.Kind != Union {
		return t
	}
	var keep []*Type
	for _, m := range t.Types {
		if !m.IsNullish() {
			keep = append(keep, m)
		}
	}
	if len(keep) == len(t.Types) {
		return t
	}
	return UnionOf(keep...)
}

// TypeArg returns the i-th type argument of a reference, or nil.
func (t *Type) TypeArg(i int) *Type {
	if t == nil || t.Kind != Reference || i >= len(t.Types) {
		return nil
	}
	return t.Types[i]
}

// StringLiterals returns the values of a union of string literals (or of a
// single literal). ok is false if any member is not a string literal.
func (t *Type) StringLiterals() (values []string, ok bool) {
	if t == nil {
		return nil, false
	}
	switch t.Kind {
	case StringLiteral:
		return []string{t.Value}, true
	case Union:
		for _, m := range t.Types {
			if m.IsNullish() {
				continue
			}
			if m.Kind != StringLiteral {
				return nil, false
			}
			values = append(values, m.Value)
		}
		return values, len(values) > 0
	}
	return nil, false
}

// String renders t in TypeScript syntax.
func (t *Type) String() string {
	if t == nil {
		return "any"
	}
	switch t.Kind {
	case StringLiteral:
		return strconv.Quote(t.Value)
	case NumberLiteral, BooleanLiteral:
		return t.Value
	case Array:
		elem := t.Elem.String()
		if t.Elem != nil && (t.Elem.Kind == Union || t.Elem.Kind == Intersection || t.Elem.Kind == Function) {
			elem = "(" + elem + ")"
		}
		return elem + "[]"
	case Tuple:
		return "[" + join(t.Types, ", ") + "]"
	case Union:
		return join(t.Types, " | ")
	case Intersection:
		return join(t.Types, " & ")
	case Reference:
		if len(t.Types) > 0 {
			return t.Name + "<" + join(t.Types, ", ") + ">"
		}
		return t.Name
	case Object, Function:
		if t.Text != "" {
			return t.Text
		}
	}
	return t.Kind.String()
}

func join(ts []*Type, sep string) string {
	parts := make([]string, len(ts))
	for i, m := range ts {
		parts[i] = m.String()
	}
	return strings.Join(parts, sep)
}

// FromConstructor maps a runtime constructor name, as used by Lit's
// `type: String` option, to a type. Unknown names yield nil.
func FromConstructor(name string) *Type {
	switch name {
	case "String":
		return StringType
	case "Number":
		return NumberType
	case "Boolean":
		return BooleanType
	case "Array":
		return ArrayOf(AnyType)
	case "Object":
		return ObjectType
	}
	return nil
}

// FromValue infers the type of a resolved constant value.
func FromValue(v any) *Type {
	switch v.(type) {
	case nil:
		return NullType
	case string:
		return StringType
	case float64, int:
		return NumberType
	case bool:
		return BooleanType
	case []any:
		return ArrayOf(AnyType)
	case map[string]any:
		return ObjectType
	default:
		return AnyType
	}
}
