package analyzer

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/tsnode"
	"github.com/gnana997/wcspec/pkg/types"
)

// Discovery is a flavor's answer for one node. A nil *Discovery means the
// flavor has no opinion and the next flavor is asked. A non-nil one claims
// the node, even with no items; Continue lets the walker descend into the
// node's children anyway.
type Discovery[T any] struct {
	Items    []T
	Continue bool
}

func found[T any](items ...T) *Discovery[T] {
	return &Discovery[T]{Items: items}
}

// Flavor understands one authoring convention. Flavors implement any subset
// of the discoverer interfaces below.
type Flavor interface {
	Name() string
}

// DefinitionDiscoverer finds tag name registrations.
type DefinitionDiscoverer interface {
	DiscoverDefinitions(ctx *Context, s Site) *Discovery[*DefinitionResult]
}

// MemberDiscoverer finds attributes and properties on exactly one node.
type MemberDiscoverer interface {
	DiscoverMembers(ctx *Context, s Site) *Discovery[*Member]
}

// MethodDiscoverer finds methods on exactly one node.
type MethodDiscoverer interface {
	DiscoverMethods(ctx *Context, s Site) *Discovery[*Method]
}

// EventDiscoverer finds dispatched or declared events.
type EventDiscoverer interface {
	DiscoverEvents(ctx *Context, s Site) *Discovery[*Event]
}

// SlotDiscoverer finds slots.
type SlotDiscoverer interface {
	DiscoverSlots(ctx *Context, s Site) *Discovery[*Slot]
}

// CSSPropertyDiscoverer finds CSS custom properties.
type CSSPropertyDiscoverer interface {
	DiscoverCSSProperties(ctx *Context, s Site) *Discovery[*CSSProperty]
}

// CSSPartDiscoverer finds shadow parts.
type CSSPartDiscoverer interface {
	DiscoverCSSParts(ctx *Context, s Site) *Discovery[*CSSPart]
}

// GlobalFeatureDiscoverer finds augmentations of the platform element type
// and the global event map.
type GlobalFeatureDiscoverer interface {
	DiscoverGlobalFeatures(ctx *Context, s Site) *Discovery[Feature]
}

// FeatureRefiner enriches facts found by any flavor. Returning false drops
// the fact.
type FeatureRefiner interface {
	RefineFeature(ctx *Context, f Feature) bool
}

// DefinitionResult is one registration found by a flavor.
type DefinitionResult struct {
	TagName string

	// TagNameNode is where the tag name was read from; IdentifierNode is the
	// node referencing the class at the registration site.
	TagNameNode    *ts.Node
	IdentifierNode *ts.Node
	File           *program.SourceFile

	// Declaration is the class or interface being registered. Invalid when
	// the reference could not be resolved.
	Declaration Site

	// Handler replaces the flavor list when walking Declaration.
	Handler Flavor
}

// DefaultFlavors returns the fixed flavor order: reactive properties first,
// plain custom elements, documentation comments, framework conventions and
// finally JSX declarations.
func DefaultFlavors() []Flavor {
	return []Flavor{
		&LitElementFlavor{},
		&CustomElementFlavor{},
		&JSDocFlavor{},
		&StencilFlavor{},
		&JSXFlavor{},
	}
}

// Helpers shared by flavors.

// memberName returns the name of a class member, "" for computed names that
// do not resolve to a string.
func memberName(ctx *Context, s Site) string {
	key := tsnode.Field(s.Node, "name")
	if key == nil {
		key = tsnode.Field(s.Node, "property")
	}
	if key == nil {
		return ""
	}
	if key.Kind() == "computed_property_name" {
		if v, ok := ctx.ResolveString(s.At(key.NamedChild(0))); ok {
			return v
		}
		return ""
	}
	return tsnode.PropertyName(key, s.Source())
}

func isStatic(n *ts.Node) bool {
	return tsnode.HasChildToken(n, "static")
}

func isGetter(n *ts.Node) bool {
	return n.Kind() == "method_definition" && tsnode.HasChildToken(n, "get")
}

func isSetter(n *ts.Node) bool {
	return n.Kind() == "method_definition" && tsnode.HasChildToken(n, "set")
}

func isFieldNode(n *ts.Node) bool {
	return tsnode.IsKind(n, "public_field_definition", "field_definition")
}

// visibilityOf reads TS accessibility modifiers and private names.
func visibilityOf(s Site, name string) Visibility {
	if strings.HasPrefix(name, "#") {
		return VisibilityPrivate
	}
	if mod := tsnode.ChildOfKind(s.Node, "accessibility_modifier"); mod != nil {
		switch s.File.Text(mod) {
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

func modifiersOf(n *ts.Node) Modifiers {
	var m Modifiers
	if tsnode.HasChildToken(n, "readonly") {
		m |= ModifierReadonly
	}
	if isStatic(n) {
		m |= ModifierStatic
	}
	return m
}

// decorator returns the first decorator with one of the names and its
// arguments.
func decorator(s Site, names ...string) (*ts.Node, []*ts.Node) {
	for _, dec := range tsnode.Decorators(s.Node) {
		name, args := tsnode.DecoratorCall(dec, s.Source())
		for _, n := range names {
			if name == n {
				return dec, tsnode.Arguments(args)
			}
		}
	}
	return nil, nil
}

func hasDecorators(n *ts.Node) bool {
	return len(tsnode.Decorators(n)) > 0
}

// nodeType returns a lazily resolved checker type for a node.
func nodeType(ctx *Context, s Site) *TypeResolver {
	checker := ctx.Checker
	return newLazyType(func() *types.Type {
		return checker.TypeOf(s.File, s.Node)
	})
}

// hasSiblingAccessor reports whether the class body holding s also has a
// getter (or setter) named name.
func hasSiblingAccessor(ctx *Context, s Site, name string, setter bool) bool {
	body := s.Node.Parent()
	for _, m := range tsnode.NamedChildren(body) {
		if m.Kind() != "method_definition" {
			continue
		}
		if (setter && isSetter(m) || !setter && isGetter(m)) && memberName(ctx, s.At(m)) == name {
			return true
		}
	}
	return false
}

// declarationSite returns the class or interface site a registration
// identifier refers to. An inline class expression is its own declaration.
func declarationSite(ctx *Context, s Site) Site {
	n := tsnode.Unwrap(s.Node)
	if n == nil {
		return Site{}
	}
	if program.IsClassNode(n) {
		return s.At(n)
	}
	for _, d := range ctx.ResolveDeclarations(s.At(n)) {
		if cls := program.ClassOf(d); cls != nil {
			return Site{File: d.File, Node: cls}
		}
	}
	for _, d := range ctx.ResolveDeclarations(s.At(n)) {
		switch d.Kind {
		case program.DeclInterface:
			return Site{File: d.File, Node: d.Node}
		case program.DeclTypeAlias:
			if v := tsnode.Field(d.Node, "value"); tsnode.IsKind(v, "object_type") {
				return Site{File: d.File, Node: d.Node}
			}
		}
	}
	return Site{}
}

// typeReferenceSite resolves the declaration a type annotation names, for
// tag map and JSX entries.
func typeReferenceSite(ctx *Context, s Site) Site {
	n := s.Node
	if tsnode.IsKind(n, "type_annotation") {
		n = n.NamedChild(0)
	}
	if n == nil {
		return Site{}
	}
	switch n.Kind() {
	case "type_identifier", "nested_type_identifier", "generic_type", "identifier":
		return declarationSite(ctx, s.At(n))
	case "object_type":
		return s.At(n)
	}
	return Site{}
}

// camelToDash converts a property name to its kebab-case attribute name.
func camelToDash(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
