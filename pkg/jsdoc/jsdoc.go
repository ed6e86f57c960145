// Package jsdoc parses documentation comments into a description and a list
// of block tags.
//
// Parsing is best-effort: a malformed type expression or a missing name never
// drops text, the remainder ends up in the tag description instead.
package jsdoc

import (
	"strings"
)

// Comment is a parsed "/** ... */" block.
type Comment struct {
	// Description is the free text before the first tag.
	Description string

	Tags []*Tag
}

// Tag is one block tag such as `@attr {Boolean} [disabled=false] - Disables it`.
type Tag struct {
	// Tag is the tag name without "@", e.g. "attr".
	Tag string

	// Type is the content of a leading or trailing {...} group.
	Type string

	// Name is the first word after the type. Brackets and default are
	// stripped: `[size=2]` yields Name "size", Default "2", Optional true.
	Name string

	Default  string
	Optional bool

	// Description is what follows the name, with a leading "-" removed.
	Description string

	// Comment is the raw text after the tag name, before any splitting.
	// Tags like @deprecated and @default read this instead of Name.
	Comment string
}

// Parse parses a documentation comment. Plain block and line comments are
// accepted too; the returned Comment is never nil.
func Parse(text string) *Comment {
	c := &Comment{}
	lines := cleanLines(text)

	var desc []string
	var cur *tagBuffer
	var bufs []*tagBuffer

	inFence := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if !inFence && strings.HasPrefix(trimmed, "@") && len(trimmed) > 1 && isTagStart(trimmed[1]) {
			cur = &tagBuffer{lines: []string{trimmed}}
			bufs = append(bufs, cur)
			continue
		}
		if cur != nil {
			cur.lines = append(cur.lines, line)
		} else {
			desc = append(desc, line)
		}
	}

	c.Description = joinText(desc)
	for _, b := range bufs {
		c.Tags = append(c.Tags, parseTag(strings.Join(b.lines, "\n")))
	}
	return c
}

type tagBuffer struct {
	lines []string
}

func isTagStart(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// cleanLines strips comment delimiters and leading "*" decoration.
func cleanLines(text string) []string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "/**"):
		text = strings.TrimPrefix(text, "/**")
		text = strings.TrimSuffix(text, "*/")
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
	}

	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, " \t\r")
		t := strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(t, "//"):
			t = strings.TrimPrefix(t, "//")
		case strings.HasPrefix(t, "*"):
			t = strings.TrimPrefix(t, "*")
		}
		t = strings.TrimPrefix(t, " ")
		out = append(out, t)
	}
	return out
}

func joinText(lines []string) string {
	// Trim leading and trailing blank lines, keep inner structure.
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

// parseTag splits `@tag {type} name - description`. The type may also follow
// the name (`@attr name {type}`), which some authors prefer.
func parseTag(s string) *Tag {
	s = strings.TrimPrefix(s, "@")
	nameEnd := strings.IndexFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '{'
	})
	if nameEnd < 0 {
		return &Tag{Tag: s}
	}

	t := &Tag{Tag: s[:nameEnd]}
	rest := strings.TrimSpace(s[nameEnd:])
	t.Comment = rest

	if typ, after, ok := readBraces(rest); ok {
		t.Type = typ
		rest = strings.TrimSpace(after)
	}

	rest = t.readName(rest)

	if t.Type == "" {
		if typ, after, ok := readBraces(strings.TrimSpace(rest)); ok {
			t.Type = typ
			rest = strings.TrimSpace(after)
		}
	}

	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "- ") || rest == "-" || strings.HasPrefix(rest, "-\n") {
		rest = strings.TrimSpace(rest[1:])
	}
	t.Description = rest
	return t
}

// readName consumes the name token and returns what remains.
func (t *Tag) readName(rest string) string {
	if rest == "" || strings.HasPrefix(rest, "-") && (len(rest) == 1 || rest[1] == ' ' || rest[1] == '\n') {
		return rest
	}

	if rest[0] == '[' {
		end := matchingBracket(rest)
		if end < 0 {
			// Unclosed bracket: leave everything for the description.
			return rest
		}
		inner := strings.TrimSpace(rest[1:end])
		t.Optional = true
		if eq := strings.Index(inner, "="); eq >= 0 {
			t.Name = strings.TrimSpace(inner[:eq])
			t.Default = strings.TrimSpace(inner[eq+1:])
		} else {
			t.Name = inner
		}
		return rest[end+1:]
	}

	if rest[0] == '{' {
		return rest
	}

	end := strings.IndexAny(rest, " \t\n")
	if end < 0 {
		end = len(rest)
	}
	t.Name = rest[:end]
	return rest[end:]
}

// readBraces reads a balanced {...} group at the start of s.
func readBraces(s string) (inner, after string, ok bool) {
	if !strings.HasPrefix(s, "{") {
		return "", s, false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[1:i]), s[i+1:], true
			}
		}
	}
	return "", s, false
}

func matchingBracket(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		case '\n':
			return -1
		}
	}
	return -1
}

// Find returns the first tag with one of the given names, or nil.
func (c *Comment) Find(names ...string) *Tag {
	if c == nil {
		return nil
	}
	for _, t := range c.Tags {
		for _, n := range names {
			if t.Tag == n {
				return t
			}
		}
	}
	return nil
}

// All returns every tag with one of the given names, in source order.
func (c *Comment) All(names ...string) []*Tag {
	if c == nil {
		return nil
	}
	var out []*Tag
	for _, t := range c.Tags {
		for _, n := range names {
			if t.Tag == n {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Has reports whether a tag with one of the names is present.
func (c *Comment) Has(names ...string) bool {
	return c.Find(names...) != nil
}

// IsEmpty reports whether the comment carries no information.
func (c *Comment) IsEmpty() bool {
	return c == nil || c.Description == "" && len(c.Tags) == 0
}

// WithDescription returns a tagless comment holding only desc, or nil when
// desc is empty. Used for facts declared by a tag on another node.
func WithDescription(desc string) *Comment {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return nil
	}
	return &Comment{Description: desc}
}
