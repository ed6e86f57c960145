package types

import (
	"strings"
	"unicode"
)

// Parse parses a TypeScript or JSDoc type expression. JSDoc spellings such
// as `*`, `?string`, `string=`, `Array.<string>` and capitalized primitive
// names are accepted. Anything the parser does not understand becomes a
// Reference carrying the original text, so no information is lost.
func Parse(text string) *Type {
	text = strings.TrimSpace(text)
	if text == "" {
		return AnyType
	}
	p := &typeParser{src: text}
	t := p.parseUnion()
	p.skipSpace()
	if p.pos < len(p.src) || t == nil {
		return &Type{Kind: Reference, Name: text, Text: text}
	}
	return t
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) accept(s string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	return false
}

func (p *typeParser) parseUnion() *Type {
	p.accept("|")
	first := p.parseIntersection()
	if first == nil {
		return nil
	}
	members := []*Type{first}
	for p.peek() == '|' && !strings.HasPrefix(p.src[p.pos:], "||") {
		p.pos++
		m := p.parseIntersection()
		if m == nil {
			return nil
		}
		members = append(members, m)
	}
	return UnionOf(members...)
}

func (p *typeParser) parseIntersection() *Type {
	first := p.parsePostfix()
	if first == nil {
		return nil
	}
	members := []*Type{first}
	for p.peek() == '&' {
		p.pos++
		m := p.parsePostfix()
		if m == nil {
			return nil
		}
		members = append(members, m)
	}
	if len(members) == 1 {
		return first
	}
	return &Type{Kind: Intersection, Types: members}
}

func (p *typeParser) parsePostfix() *Type {
	nullable := p.accept("?")
	p.accept("!")
	t := p.parsePrimary()
	if t == nil {
		return nil
	}
	for {
		if p.accept("[]") {
			t = ArrayOf(t)
			continue
		}
		break
	}
	// JSDoc optional parameter marker.
	if p.peek() == '=' && !strings.HasPrefix(p.src[p.pos:], "=>") {
		p.pos++
		t = UnionOf(t, UndefinedType)
	}
	if nullable {
		t = UnionOf(t, NullType)
	}
	return t
}

func (p *typeParser) parsePrimary() *Type {
	switch c := p.peek(); {
	case c == 0:
		return nil
	case c == '"' || c == '\'' || c == '`':
		return p.parseStringLiteral(c)
	case c == '(':
		return p.parseParenOrFunction()
	case c == '{':
		return p.parseBalanced('{', '}', Object)
	case c == '[':
		return p.parseTuple()
	case c == '*':
		p.pos++
		return AnyType
	case c == '-' || c >= '0' && c <= '9':
		return p.parseNumberLiteral()
	}

	name := p.parseQualifiedName()
	if name == "" {
		return nil
	}
	switch name {
	case "typeof", "keyof", "readonly", "unique":
		inner := p.parsePostfix()
		if inner == nil {
			return nil
		}
		if name == "readonly" {
			return inner
		}
		return &Type{Kind: Reference, Name: name + " " + inner.String()}
	case "new":
		if p.peek() == '(' {
			fn := p.parseParenOrFunction()
			if fn != nil {
				return fn
			}
		}
		return nil
	}

	var args []*Type
	if p.accept(".<") || p.accept("<") {
		for {
			a := p.parseUnion()
			if a == nil {
				return nil
			}
			args = append(args, a)
			if p.accept(",") {
				continue
			}
			if !p.accept(">") {
				return nil
			}
			break
		}
	}
	return named(name, args)
}

func named(name string, args []*Type) *Type {
	switch name {
	case "any":
		return AnyType
	case "unknown":
		return UnknownType
	case "string", "String":
		return StringType
	case "number", "Number":
		return NumberType
	case "boolean", "Boolean":
		return BooleanType
	case "bigint", "BigInt":
		return &Type{Kind: BigInt}
	case "null":
		return NullType
	case "undefined":
		return UndefinedType
	case "void":
		return &Type{Kind: Void}
	case "never":
		return &Type{Kind: Never}
	case "object", "Object":
		return ObjectType
	case "true", "false":
		return &Type{Kind: BooleanLiteral, Value: name}
	case "Array", "ReadonlyArray":
		if len(args) == 1 {
			return ArrayOf(args[0])
		}
		if len(args) == 0 {
			return ArrayOf(AnyType)
		}
	case "Function":
		return &Type{Kind: Function, Text: "Function"}
	}
	return Ref(name, args...)
}

func (p *typeParser) parseQualifiedName() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '$' {
			p.pos++
			continue
		}
		// Qualified names (ns.Type); ".<" belongs to JSDoc generics.
		if c == '.' && p.pos+1 < len(p.src) && p.src[p.pos+1] != '<' && p.pos > start {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *typeParser) parseStringLiteral(q byte) *Type {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case q:
			p.pos++
			raw := p.src[start+1 : p.pos-1]
			return StringLit(strings.ReplaceAll(raw, `\`+string(q), string(q)))
		}
		p.pos++
	}
	return nil
}

func (p *typeParser) parseNumberLiteral() *Type {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	if p.pos == start || p.src[start:p.pos] == "-" {
		return nil
	}
	return &Type{Kind: NumberLiteral, Value: p.src[start:p.pos]}
}

// parseBalanced consumes a bracketed group verbatim into a type of kind.
func (p *typeParser) parseBalanced(open, close byte, kind Kind) *Type {
	start := p.pos
	depth := 0
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				p.pos++
				return &Type{Kind: kind, Text: p.src[start:p.pos]}
			}
		}
		p.pos++
	}
	return nil
}

func (p *typeParser) parseParenOrFunction() *Type {
	save := p.pos
	group := p.parseBalanced('(', ')', Function)
	if group == nil {
		return nil
	}
	if p.accept("=>") {
		ret := p.parseUnion()
		if ret == nil {
			return nil
		}
		return &Type{Kind: Function, Text: strings.TrimSpace(p.src[save:p.pos])}
	}
	// Plain parenthesized type.
	inner := Parse(group.Text[1 : len(group.Text)-1])
	return inner
}

func (p *typeParser) parseTuple() *Type {
	p.pos++
	var members []*Type
	if p.accept("]") {
		return &Type{Kind: Tuple}
	}
	for {
		m := p.parseUnion()
		if m == nil {
			return nil
		}
		members = append(members, m)
		if p.accept(",") {
			continue
		}
		if !p.accept("]") {
			return nil
		}
		return &Type{Kind: Tuple, Types: members}
	}
}
