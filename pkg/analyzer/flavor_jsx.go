package analyzer

import (
	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/tsnode"
)

// JSXFlavor reads `namespace JSX { interface IntrinsicElements { ... } }`
// declarations. The entry types describe attributes only, so definitions
// whose declaration is not a class are walked with jsxAttributeHandler
// instead of the flavor list.
type JSXFlavor struct{}

func (JSXFlavor) Name() string { return "jsx" }

func (JSXFlavor) DiscoverDefinitions(ctx *Context, s Site) *Discovery[*DefinitionResult] {
	if s.Node.Kind() != "interface_declaration" || s.File.Text(tsnode.Field(s.Node, "name")) != "IntrinsicElements" {
		return nil
	}
	ns := tsnode.Ancestor(s.Node, "internal_module", "module")
	if ns == nil || s.File.Text(tsnode.Field(ns, "name")) != "JSX" {
		return nil
	}

	var out []*DefinitionResult
	for _, sig := range tsnode.ChildrenOfKind(tsnode.Field(s.Node, "body"), "property_signature") {
		key := tsnode.Field(sig, "name")
		tag := tsnode.PropertyName(key, s.Source())
		if tag == "" {
			continue
		}
		ann := tsnode.Field(sig, "type")
		decl := typeReferenceSite(ctx, s.At(ann))
		r := &DefinitionResult{
			TagName:        tag,
			TagNameNode:    key,
			IdentifierNode: ann,
			File:           s.File,
			Declaration:    decl,
		}
		if decl.Valid() && !program.IsClassNode(decl.Node) {
			r.Handler = jsxAttributeHandler{}
		}
		out = append(out, r)
	}
	return found(out...)
}

// jsxAttributeHandler reads every property of a JSX props type as an
// attribute.
type jsxAttributeHandler struct{}

func (jsxAttributeHandler) Name() string { return "jsx-attributes" }

func (jsxAttributeHandler) DiscoverMembers(ctx *Context, s Site) *Discovery[*Member] {
	if s.Node.Kind() != "property_signature" {
		return nil
	}
	name := tsnode.PropertyName(tsnode.Field(s.Node, "name"), s.Source())
	if name == "" {
		return found[*Member]()
	}
	return found(&Member{
		FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityMedium, JSDoc: s.Doc()},
		Kind:        MemberAttribute,
		AttrName:    name,
		Type:        nodeType(ctx, s),
		Required:    !tsnode.HasChildToken(s.Node, "?"),
		HasRequired: true,
	})
}

// RefineFeature lets attribute docs carry @deprecated and friends.
func (jsxAttributeHandler) RefineFeature(ctx *Context, f Feature) bool {
	return JSDocFlavor{}.RefineFeature(ctx, f)
}
