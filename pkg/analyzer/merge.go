package analyzer

import (
	"strings"

	"github.com/gnana997/wcspec/pkg/jsdoc"
	"github.com/gnana997/wcspec/pkg/tsnode"
	"github.com/gnana997/wcspec/pkg/types"
)

// Merge rules
//
// Facts arrive in discovery order: inherited facts first (base classes
// before subclasses), then the declaration's own facts. For two facts of the
// same name and kind, the later one is the base of the result unless both
// come from the same declaration and the earlier one has a higher priority.
// The base keeps its shape; empty fields are filled from the other fact and
// an any-typed base takes the other fact's type.
//
// Attributes and properties share one namespace, compared
// case-insensitively. When both exist the property is kept and takes the
// attribute's name casing, default, required flag and documentation.
// Attributes linked from a property under a different key are folded into
// that property too.
//
// Every fact returned is a copy; merging never mutates its input.

// MergeFeatureSets merges sets given in discovery order.
func MergeFeatureSets(sets ...*FeatureSet) FeatureSet {
	var all FeatureSet
	for _, s := range sets {
		if s == nil {
			continue
		}
		all.Members = append(all.Members, s.Members...)
		all.Methods = append(all.Methods, s.Methods...)
		all.Events = append(all.Events, s.Events...)
		all.Slots = append(all.Slots, s.Slots...)
		all.CSSProperties = append(all.CSSProperties, s.CSSProperties...)
		all.CSSParts = append(all.CSSParts, s.CSSParts...)
	}
	return FeatureSet{
		Members:       MergeMembers(all.Members),
		Methods:       mergeNamed(all.Methods, func(m *Method) string { return m.Name }, cloneMethod, foldMethod),
		Events:        mergeNamed(all.Events, func(e *Event) string { return e.Name }, cloneEvent, foldEvent),
		Slots:         mergeNamed(all.Slots, func(s *Slot) string { return s.Name }, cloneSlot, foldSlot),
		CSSProperties: mergeNamed(all.CSSProperties, func(c *CSSProperty) string { return c.Name }, cloneCSSProperty, foldCSSProperty),
		CSSParts:      mergeNamed(all.CSSParts, func(c *CSSPart) string { return c.Name }, cloneCSSPart, foldCSSPart),
	}
}

// MergeMembers collapses attributes and properties into one fact per
// logical name.
func MergeMembers(members []*Member) []*Member {
	members = dedupeSources(members, func(m *Member) string { return string(m.Kind) + ":" + m.Name() })

	type group struct {
		prop *Member
		attr *Member
	}
	var order []string
	groups := make(map[string]*group)
	for _, m := range members {
		k := memberKey(m)
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}
		if m.Kind == MemberAttribute {
			g.attr = foldMember(g.attr, m)
		} else {
			g.prop = foldMember(g.prop, m)
		}
	}

	out := make([]*Member, 0, len(order))
	for _, k := range order {
		g := groups[k]
		switch {
		case g.prop != nil && g.attr != nil:
			out = append(out, absorbAttribute(g.prop, g.attr))
		case g.prop != nil:
			out = append(out, g.prop)
		default:
			out = append(out, g.attr)
		}
	}
	return absorbLinkedAttributes(out)
}

func memberKey(m *Member) string {
	if m.Kind == MemberAttribute || m.PropName == "" {
		return strings.ToLower(m.AttrName)
	}
	return strings.ToLower(m.PropName)
}

// absorbLinkedAttributes folds pure attributes into the property that links
// to them and drops them from the list.
func absorbLinkedAttributes(members []*Member) []*Member {
	linked := make(map[string]int)
	for i, m := range members {
		if m.Kind == MemberProperty && m.AttrName != "" {
			if _, ok := linked[strings.ToLower(m.AttrName)]; !ok {
				linked[strings.ToLower(m.AttrName)] = i
			}
		}
	}
	if len(linked) == 0 {
		return members
	}

	drop := make(map[int]bool)
	for i, m := range members {
		if m.Kind != MemberAttribute {
			continue
		}
		if j, ok := linked[strings.ToLower(m.AttrName)]; ok && j != i {
			members[j] = absorbAttribute(members[j], m)
			drop[i] = true
		}
	}
	if len(drop) == 0 {
		return members
	}
	out := members[:0:0]
	for i, m := range members {
		if !drop[i] {
			out = append(out, m)
		}
	}
	return out
}

// laterWins reports whether the later of two same-kind facts is the base.
func laterWins(earlier, later *FeatureBase) bool {
	if earlier.Declaration == later.Declaration && earlier.Priority > later.Priority {
		return false
	}
	return true
}

func foldMember(acc, m *Member) *Member {
	if acc == nil {
		return cloneMember(m)
	}
	base, other := m, acc
	if !laterWins(&acc.FeatureBase, &m.FeatureBase) {
		base, other = acc, m
	}
	out := cloneMember(base)
	out.Type = widenType(base.Type, other.Type)
	out.TypeHint = firstString(base.TypeHint, other.TypeHint)
	out.PropName = firstString(base.PropName, other.PropName)
	out.AttrName = firstString(base.AttrName, other.AttrName)
	out.JSDoc = firstDoc(base.JSDoc, other.JSDoc)
	if !base.HasDefault && other.HasDefault {
		out.Default, out.HasDefault = other.Default, true
	}
	switch {
	case base.HasRequired:
	case other.HasRequired:
		out.Required, out.HasRequired = other.Required, true
	default:
		out.Required = base.Required || other.Required
	}
	if out.Reflect == ReflectNone {
		out.Reflect = other.Reflect
	}
	if out.Deprecated == nil {
		out.Deprecated = other.Deprecated
	}
	if out.Visibility == "" {
		out.Visibility = other.Visibility
	}
	if out.Modifiers == 0 {
		out.Modifiers = other.Modifiers
	}
	if out.Meta == nil {
		out.Meta = other.Meta
	}
	return out
}

// absorbAttribute keeps the property's shape and lets the attribute
// override naming, default, required flag and documentation.
func absorbAttribute(prop, attr *Member) *Member {
	out := cloneMember(prop)
	out.AttrName = attr.AttrName
	if attr.HasDefault {
		out.Default, out.HasDefault = attr.Default, true
	}
	if attr.HasRequired {
		out.Required, out.HasRequired = attr.Required, true
	}
	out.JSDoc = firstDoc(attr.JSDoc, prop.JSDoc)
	out.Type = widenType(prop.Type, attr.Type)
	out.TypeHint = firstString(prop.TypeHint, attr.TypeHint)
	if out.Deprecated == nil {
		out.Deprecated = attr.Deprecated
	}
	if out.Visibility == "" {
		out.Visibility = attr.Visibility
	}
	return out
}

// widenType keeps base unless it resolves to any or unknown.
func widenType(base, other *TypeResolver) *TypeResolver {
	switch {
	case base == nil:
		return other
	case other == nil || other == base:
		return base
	}
	return newLazyType(func() *types.Type {
		if t := base.Get(); t != nil && !t.IsAnyLike() {
			return t
		}
		if t := other.Get(); t != nil {
			return t
		}
		return types.AnyType
	})
}

func firstString(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstDoc(a, b *jsdoc.Comment) *jsdoc.Comment {
	if !a.IsEmpty() {
		return a
	}
	return b
}

// mergeNamed merges facts keyed by name, keeping first-seen order.
func mergeNamed[T Feature](items []T, key func(T) string, clone func(T) T, fold func(earlier, later T) T) []T {
	items = dedupeSources(items, key)
	var order []string
	groups := make(map[string]T)
	for _, it := range items {
		k := key(it)
		if cur, ok := groups[k]; ok {
			groups[k] = fold(cur, it)
			continue
		}
		groups[k] = clone(it)
		order = append(order, k)
	}
	out := make([]T, 0, len(order))
	for _, k := range order {
		out = append(out, groups[k])
	}
	return out
}

type sourceKey struct {
	node tsnode.Key
	name string
}

// dedupeSources drops facts read from the same node under the same name,
// which appear when a declaration is reached through several paths.
func dedupeSources[T Feature](items []T, name func(T) string) []T {
	seen := make(map[sourceKey]bool, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		b := it.Base()
		if b.Node != nil && b.File != nil {
			k := sourceKey{node: b.File.Key(b.Node), name: string(it.FeatureKind()) + ":" + name(it)}
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		out = append(out, it)
	}
	return out
}

// pick returns (base, other) for two same-name facts.
func pick[T Feature](earlier, later T) (T, T) {
	if laterWins(earlier.Base(), later.Base()) {
		return later, earlier
	}
	return earlier, later
}

// laterDoc prefers the later non-empty documentation.
func laterDoc(earlier, later *jsdoc.Comment) *jsdoc.Comment {
	return firstDoc(later, earlier)
}

func foldMethod(earlier, later *Method) *Method {
	base, other := pick(earlier, later)
	out := cloneMethod(base)
	out.Type = widenType(base.Type, other.Type)
	out.JSDoc = laterDoc(earlier.JSDoc, later.JSDoc)
	if out.Visibility == "" {
		out.Visibility = other.Visibility
	}
	if out.Deprecated == nil {
		out.Deprecated = other.Deprecated
	}
	return out
}

func foldEvent(earlier, later *Event) *Event {
	base, other := pick(earlier, later)
	out := cloneEvent(base)
	out.Type = widenType(base.Type, other.Type)
	out.TypeHint = firstString(base.TypeHint, other.TypeHint)
	out.JSDoc = laterDoc(earlier.JSDoc, later.JSDoc)
	if out.Visibility == "" {
		out.Visibility = other.Visibility
	}
	if out.Deprecated == nil {
		out.Deprecated = other.Deprecated
	}
	return out
}

func foldSlot(earlier, later *Slot) *Slot {
	base, other := pick(earlier, later)
	out := cloneSlot(base)
	if len(out.PermittedTagNames) == 0 {
		out.PermittedTagNames = other.PermittedTagNames
	}
	out.JSDoc = laterDoc(earlier.JSDoc, later.JSDoc)
	if out.Deprecated == nil {
		out.Deprecated = other.Deprecated
	}
	return out
}

func foldCSSProperty(earlier, later *CSSProperty) *CSSProperty {
	base, other := pick(earlier, later)
	out := cloneCSSProperty(base)
	out.TypeHint = firstString(base.TypeHint, other.TypeHint)
	out.Default = firstString(base.Default, other.Default)
	out.JSDoc = laterDoc(earlier.JSDoc, later.JSDoc)
	if out.Deprecated == nil {
		out.Deprecated = other.Deprecated
	}
	return out
}

func foldCSSPart(earlier, later *CSSPart) *CSSPart {
	base, other := pick(earlier, later)
	out := cloneCSSPart(base)
	out.JSDoc = laterDoc(earlier.JSDoc, later.JSDoc)
	if out.Deprecated == nil {
		out.Deprecated = other.Deprecated
	}
	return out
}

func cloneMember(m *Member) *Member {
	c := *m
	return &c
}

func cloneMethod(m *Method) *Method {
	c := *m
	return &c
}

func cloneEvent(e *Event) *Event {
	c := *e
	return &c
}

func cloneSlot(s *Slot) *Slot {
	c := *s
	c.PermittedTagNames = append([]string(nil), s.PermittedTagNames...)
	return &c
}

func cloneCSSProperty(p *CSSProperty) *CSSProperty {
	c := *p
	return &c
}

func cloneCSSPart(p *CSSPart) *CSSPart {
	c := *p
	return &c
}

// mergeDeclarations merges two declarations registered under one tag name.
// The first keeps its identity; facts merge in discovery order.
func mergeDeclarations(a, b *ComponentDeclaration) *ComponentDeclaration {
	switch {
	case a == nil:
		return b
	case b == nil, a == b:
		return a
	}
	out := &ComponentDeclaration{
		FeatureSet: MergeFeatureSets(&a.FeatureSet, &b.FeatureSet),
		Kind:       a.Kind,
		Name:       firstString(a.Name, b.Name),
		Node:       a.Node,
		File:       a.File,
		JSDoc:      laterDoc(a.JSDoc, b.JSDoc),
		Deprecated: a.Deprecated,
		Heritage:   append(append([]*HeritageClause(nil), a.Heritage...), b.Heritage...),
	}
	if b.Deprecated != nil {
		out.Deprecated = b.Deprecated
	}
	return out
}
