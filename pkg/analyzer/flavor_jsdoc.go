package analyzer

import (
	"strings"

	"github.com/gnana997/wcspec/pkg/jsdoc"
	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/tsnode"
	"github.com/gnana997/wcspec/pkg/types"
)

// JSDocFlavor reads features declared in a declaration's documentation
// comment (`@attr`, `@prop`, `@fires`, `@slot`, `@cssprop`, `@csspart`),
// tag names (`@customElement`, `@element`, `@tagname`), and refines facts
// found by other flavors with the tags on their own comment.
type JSDocFlavor struct{}

func (JSDocFlavor) Name() string { return "jsdoc" }

var (
	jsdocTagNameTags  = []string{"customElement", "customelement", "element", "tagname"}
	jsdocAttrTags     = []string{"attr", "attribute"}
	jsdocPropTags     = []string{"prop", "property"}
	jsdocMemberTags   = []string{"attr", "attribute", "prop", "property"}
	jsdocEventTags    = []string{"fires", "event", "emits"}
	jsdocSlotTags     = []string{"slot"}
	jsdocCSSPropTags  = []string{"cssprop", "cssproperty", "css-prop", "css-property", "cssvar"}
	jsdocCSSPartTags  = []string{"csspart", "part", "css-part"}
	jsdocIgnoreTags   = []string{"ignore"}
	jsdocInternalTags = []string{"internal"}
)

func isDeclarationNode(s Site) bool {
	return program.IsClassNode(s.Node) || tsnode.IsKind(s.Node, "interface_declaration")
}

func (JSDocFlavor) DiscoverDefinitions(ctx *Context, s Site) *Discovery[*DefinitionResult] {
	if !program.IsClassNode(s.Node) {
		return nil
	}
	doc := s.Doc()
	var out []*DefinitionResult
	for _, tag := range doc.All(jsdocTagNameTags...) {
		if tag.Name == "" {
			continue
		}
		ident := tsnode.Field(s.Node, "name")
		if ident == nil {
			ident = s.Node
		}
		out = append(out, &DefinitionResult{
			TagName:        tag.Name,
			IdentifierNode: ident,
			File:           s.File,
			Declaration:    s,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return &Discovery[*DefinitionResult]{Items: out, Continue: true}
}

func (JSDocFlavor) DiscoverMembers(ctx *Context, s Site) *Discovery[*Member] {
	if !isDeclarationNode(s) {
		return nil
	}
	doc := s.Doc()
	var out []*Member
	for _, tag := range doc.All(jsdocMemberTags...) {
		if tag.Name == "" {
			continue
		}
		m := &Member{
			FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityLow, JSDoc: jsdoc.WithDescription(tag.Description)},
			TypeHint:    tag.Type,
			Type:        lazyType(typeFromHint(tag.Type)),
		}
		if tag.Default != "" {
			m.Default, m.HasDefault = ParseLiteral(tag.Default), true
		}
		if containsTag(jsdocAttrTags, tag.Tag) {
			m.Kind = MemberAttribute
			m.AttrName = tag.Name
		} else {
			m.Kind = MemberProperty
			m.PropName = tag.Name
		}
		out = append(out, m)
	}
	return declarationDiscovery(out)
}

func (JSDocFlavor) DiscoverEvents(ctx *Context, s Site) *Discovery[*Event] {
	if !isDeclarationNode(s) {
		return nil
	}
	var out []*Event
	for _, tag := range s.Doc().All(jsdocEventTags...) {
		if tag.Name == "" {
			continue
		}
		hint := tag.Type
		out = append(out, &Event{
			FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityLow, JSDoc: jsdoc.WithDescription(tag.Description)},
			Name:        tag.Name,
			TypeHint:    hint,
			Type:        lazyType(typeFromHint(hint)),
		})
	}
	return declarationDiscovery(out)
}

// DiscoverSlots reads `@slot name - description`. `@slot - description`
// and `@slot` declare the default slot. A type of string literals lists the
// permitted tag names: `@slot {"li" | "x-item"} items`.
func (JSDocFlavor) DiscoverSlots(ctx *Context, s Site) *Discovery[*Slot] {
	if !isDeclarationNode(s) {
		return nil
	}
	var out []*Slot
	for _, tag := range s.Doc().All(jsdocSlotTags...) {
		slot := &Slot{
			FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityLow, JSDoc: jsdoc.WithDescription(tag.Description)},
			Name:        tag.Name,
		}
		if tag.Type != "" {
			if values, ok := types.Parse(tag.Type).StringLiterals(); ok {
				slot.PermittedTagNames = values
			}
		}
		out = append(out, slot)
	}
	return declarationDiscovery(out)
}

// DiscoverCSSProperties reads `@cssprop {<color>} [--x-color=red] - desc`.
func (JSDocFlavor) DiscoverCSSProperties(ctx *Context, s Site) *Discovery[*CSSProperty] {
	if !isDeclarationNode(s) {
		return nil
	}
	var out []*CSSProperty
	for _, tag := range s.Doc().All(jsdocCSSPropTags...) {
		if tag.Name == "" {
			continue
		}
		out = append(out, &CSSProperty{
			FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityLow, JSDoc: jsdoc.WithDescription(tag.Description)},
			Name:        tag.Name,
			TypeHint:    tag.Type,
			Default:     tag.Default,
		})
	}
	return declarationDiscovery(out)
}

func (JSDocFlavor) DiscoverCSSParts(ctx *Context, s Site) *Discovery[*CSSPart] {
	if !isDeclarationNode(s) {
		return nil
	}
	var out []*CSSPart
	for _, tag := range s.Doc().All(jsdocCSSPartTags...) {
		if tag.Name == "" {
			continue
		}
		out = append(out, &CSSPart{
			FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityLow, JSDoc: jsdoc.WithDescription(tag.Description)},
			Name:        tag.Name,
		})
	}
	return declarationDiscovery(out)
}

// RefineFeature applies the tags of a fact's own comment. Facts read from
// a declaration-level tag carry only a description and are left alone.
func (JSDocFlavor) RefineFeature(ctx *Context, f Feature) bool {
	base := f.Base()
	doc := base.JSDoc
	if doc == nil || len(doc.Tags) == 0 {
		return true
	}
	if doc.Has(jsdocIgnoreTags...) {
		return false
	}

	var deprecated *Deprecation
	if tag := doc.Find("deprecated"); tag != nil {
		deprecated = &Deprecation{Message: strings.TrimSpace(tag.Comment)}
	}
	visibility := visibilityFromDoc(doc)

	switch v := f.(type) {
	case *Member:
		refineMember(v, doc)
		if deprecated != nil {
			v.Deprecated = deprecated
		}
		if visibility != "" {
			v.Visibility = visibility
		}
	case *Method:
		if deprecated != nil {
			v.Deprecated = deprecated
		}
		if visibility != "" {
			v.Visibility = visibility
		}
	case *Event:
		if deprecated != nil {
			v.Deprecated = deprecated
		}
		if visibility != "" {
			v.Visibility = visibility
		}
		if tag := doc.Find("type"); tag != nil && tag.Type != "" {
			v.TypeHint = tag.Type
			v.Type = lazyType(typeFromHint(tag.Type))
		}
	case *Slot:
		if deprecated != nil {
			v.Deprecated = deprecated
		}
	case *CSSProperty:
		if deprecated != nil {
			v.Deprecated = deprecated
		}
	case *CSSPart:
		if deprecated != nil {
			v.Deprecated = deprecated
		}
	}
	return true
}

func refineMember(m *Member, doc *jsdoc.Comment) {
	if tag := doc.Find(jsdocAttrTags...); tag != nil && m.Kind == MemberProperty {
		switch {
		case tag.Name != "":
			m.AttrName = tag.Name
		case m.AttrName == "":
			m.AttrName = camelToDash(m.PropName)
		}
		if tag.Type != "" && m.TypeHint == "" {
			m.TypeHint = tag.Type
		}
	}
	if doc.Has("required") {
		m.Required, m.HasRequired = true, true
	}
	if doc.Has("optional") {
		m.Required, m.HasRequired = false, true
	}
	if tag := doc.Find("default"); tag != nil && strings.TrimSpace(tag.Comment) != "" {
		m.Default, m.HasDefault = ParseLiteral(tag.Comment), true
	}
	if doc.Has("reflect") {
		m.Reflect = ReflectToAttribute
	}
	if doc.Has("readonly") {
		m.Modifiers |= ModifierReadonly
	}
	if tag := doc.Find("type"); tag != nil && tag.Type != "" {
		m.TypeHint = tag.Type
		m.Type = lazyType(typeFromHint(tag.Type))
	}
}

func visibilityFromDoc(doc *jsdoc.Comment) Visibility {
	switch {
	case doc.Has("private"), doc.Has(jsdocInternalTags...):
		return VisibilityPrivate
	case doc.Has("protected"):
		return VisibilityProtected
	case doc.Has("public"):
		return VisibilityPublic
	}
	if tag := doc.Find("access"); tag != nil {
		switch tag.Name {
		case "private":
			return VisibilityPrivate
		case "protected":
			return VisibilityProtected
		case "public":
			return VisibilityPublic
		}
	}
	return ""
}

// typeFromHint turns a documented type into a type. Constructor names such
// as Boolean map to their primitive.
func typeFromHint(hint string) *types.Type {
	if hint == "" {
		return types.AnyType
	}
	if t := types.FromConstructor(hint); t != nil {
		return t
	}
	return types.Parse(hint)
}

// declarationDiscovery returns nil when a declaration comment has no tags of
// the kind, so a later flavor still gets asked.
func declarationDiscovery[T any](items []T) *Discovery[T] {
	if len(items) == 0 {
		return nil
	}
	return found(items...)
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
