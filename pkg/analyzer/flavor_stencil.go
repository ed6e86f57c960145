package analyzer

import (
	"github.com/gnana997/wcspec/pkg/tsnode"
	"github.com/gnana997/wcspec/pkg/types"
)

// StencilFlavor reads Stencil components: `@Component({ tag })`, `@Prop()`,
// `@Event()`, `@Method()`, with `@State()` and `@Element()` members claimed
// and dropped.
type StencilFlavor struct{}

func (StencilFlavor) Name() string { return "stencil" }

func (StencilFlavor) DiscoverDefinitions(ctx *Context, s Site) *Discovery[*DefinitionResult] {
	if !tsnode.IsKind(s.Node, "class_declaration", "class") {
		return nil
	}
	_, args := decorator(s, "Component")
	if len(args) == 0 {
		return nil
	}
	for _, p := range tsnode.ObjectPairs(args[0], s.Source()) {
		if p.Key != "tag" {
			continue
		}
		tag, ok := ctx.ResolveString(s.At(p.Value))
		if !ok {
			return nil
		}
		ident := tsnode.Field(s.Node, "name")
		if ident == nil {
			ident = s.Node
		}
		return &Discovery[*DefinitionResult]{
			Items: []*DefinitionResult{{
				TagName:        tag,
				TagNameNode:    p.Value,
				IdentifierNode: ident,
				File:           s.File,
				Declaration:    s,
			}},
			Continue: true,
		}
	}
	return nil
}

func (StencilFlavor) DiscoverMembers(ctx *Context, s Site) *Discovery[*Member] {
	if !isFieldNode(s.Node) && !isGetter(s.Node) {
		return nil
	}
	if dec, _ := decorator(s, "State", "Element", "Event"); dec != nil {
		return found[*Member]()
	}
	dec, args := decorator(s, "Prop")
	if dec == nil {
		return nil
	}
	name := memberName(ctx, s)
	if name == "" {
		return found[*Member]()
	}
	m := &Member{
		FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityHigh, JSDoc: s.Doc()},
		Kind:        MemberProperty,
		PropName:    name,
		AttrName:    camelToDash(name),
		Type:        nodeType(ctx, s),
		Visibility:  visibilityOf(s, name),
		Modifiers:   modifiersOf(s.Node),
		Required:    tsnode.HasChildToken(s.Node, "!"),
	}
	m.HasRequired = m.Required
	// Props are immutable from inside the component unless mutable.
	m.Modifiers |= ModifierReadonly
	if len(args) > 0 {
		for _, p := range tsnode.ObjectPairs(args[0], s.Source()) {
			v, ok := ctx.ResolveValue(s.At(p.Value))
			if !ok {
				continue
			}
			switch p.Key {
			case "attribute", "attr":
				if str, isStr := v.(string); isStr {
					m.AttrName = str
				}
			case "reflect", "reflectToAttr":
				if v == true {
					m.Reflect = ReflectToAttribute
				}
			case "mutable":
				if v == true {
					m.Modifiers &^= ModifierReadonly
				}
			}
		}
	}
	// Complex types cannot be set through an attribute.
	if t := m.Type.Get(); t != nil && !t.IsAnyLike() && !isAttributeType(t.NonNullable()) {
		m.AttrName = ""
	}
	if v, ok := ctx.ResolveValue(s.Field("value")); ok {
		m.Default, m.HasDefault = v, true
	}
	return found(m)
}

func isAttributeType(t *types.Type) bool {
	switch t.Kind {
	case types.String, types.Number, types.Boolean, types.StringLiteral, types.NumberLiteral, types.BooleanLiteral:
		return true
	case types.Union:
		for _, m := range t.Types {
			if !isAttributeType(m) {
				return false
			}
		}
		return true
	}
	return false
}

func (StencilFlavor) DiscoverMethods(ctx *Context, s Site) *Discovery[*Method] {
	if s.Node.Kind() != "method_definition" {
		return nil
	}
	if dec, _ := decorator(s, "Method"); dec == nil {
		if hasDecorators(s.Node) {
			// @Watch, @Listen and friends are internal handlers.
			return found[*Method]()
		}
		return nil
	}
	name := memberName(ctx, s)
	return found(&Method{
		FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityHigh, JSDoc: s.Doc()},
		Name:        name,
		Type:        nodeType(ctx, s),
		Visibility:  VisibilityPublic,
	})
}

// DiscoverEvents reads `@Event({ eventName }) changed: EventEmitter<T>`.
func (StencilFlavor) DiscoverEvents(ctx *Context, s Site) *Discovery[*Event] {
	if !isFieldNode(s.Node) {
		return nil
	}
	dec, args := decorator(s, "Event")
	if dec == nil {
		return nil
	}
	name := memberName(ctx, s)
	if len(args) > 0 {
		for _, p := range tsnode.ObjectPairs(args[0], s.Source()) {
			if p.Key == "eventName" {
				if v, ok := ctx.ResolveString(s.At(p.Value)); ok {
					name = v
				}
			}
		}
	}
	if name == "" {
		return found[*Event]()
	}
	declared := nodeType(ctx, s)
	return found(&Event{
		FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityHigh, JSDoc: s.Doc()},
		Name:        name,
		Type: newLazyType(func() *types.Type {
			if detail := declared.Get().TypeArg(0); detail != nil {
				return types.Ref("CustomEvent", detail)
			}
			return types.Ref("CustomEvent")
		}),
	})
}
