package analyzer

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/tsnode"
	"github.com/gnana997/wcspec/pkg/types"
)

// LitElementFlavor reads reactive properties: `@property()`, `@state()` and
// `@internalProperty()` decorators, `static properties` maps, and the
// `@customElement()` class decorator.
type LitElementFlavor struct{}

func (LitElementFlavor) Name() string { return "lit-element" }

var litLifecycle = map[string]bool{
	"render": true, "update": true, "updated": true, "firstUpdated": true, "shouldUpdate": true,
	"willUpdate": true, "performUpdate": true, "requestUpdate": true, "createRenderRoot": true,
	"getUpdateComplete": true, "scheduleUpdate": true,
}

func (LitElementFlavor) DiscoverDefinitions(ctx *Context, s Site) *Discovery[*DefinitionResult] {
	if !tsnode.IsKind(s.Node, "class_declaration", "class", "abstract_class_declaration") {
		return nil
	}
	_, args := decorator(s, "customElement")
	if len(args) == 0 {
		return nil
	}
	tag, ok := ctx.ResolveString(s.At(args[0]))
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
			TagNameNode:    args[0],
			IdentifierNode: ident,
			File:           s.File,
			Declaration:    s,
		}},
		Continue: true,
	}
}

func (f LitElementFlavor) DiscoverMembers(ctx *Context, s Site) *Discovery[*Member] {
	n := s.Node
	switch {
	case isStatic(n) && memberName(ctx, s) == "properties":
		if isFieldNode(n) {
			return f.staticProperties(ctx, s, tsnode.Field(n, "value"))
		}
		if isGetter(n) {
			return f.staticProperties(ctx, s, tsnode.ReturnedExpression(n))
		}
	case isStatic(n):
		return nil
	case isFieldNode(n) || isGetter(n) || isSetter(n):
		return f.decoratedProperty(ctx, s)
	}
	return nil
}

func (LitElementFlavor) DiscoverMethods(ctx *Context, s Site) *Discovery[*Method] {
	if s.Node.Kind() != "method_definition" || isStatic(s.Node) {
		return nil
	}
	if litLifecycle[memberName(ctx, s)] {
		return found[*Method]()
	}
	return nil
}

// decoratedProperty handles `@property({...}) foo` and `@state() foo`.
func (LitElementFlavor) decoratedProperty(ctx *Context, s Site) *Discovery[*Member] {
	dec, args := decorator(s, "property", "internalProperty", "state")
	if dec == nil {
		return nil
	}
	name := memberName(ctx, s)
	if name == "" {
		return found[*Member]()
	}
	decName, _ := tsnode.DecoratorCall(dec, s.Source())

	var cfg *PropertyConfig
	if len(args) > 0 {
		cfg = parsePropertyConfig(ctx, s.At(args[0]))
	} else {
		cfg = &PropertyConfig{}
	}
	if decName != "property" {
		cfg.State = true
		cfg.NoAttribute = true
	}

	declared := nodeType(ctx, s)

	m := litMember(s, name, cfg, declared)
	m.Visibility = visibilityOf(s, name)
	m.Modifiers = modifiersOf(s.Node)
	if cfg.State && m.Visibility == "" {
		m.Visibility = VisibilityProtected
	}
	if isFieldNode(s.Node) {
		if v, ok := ctx.ResolveValue(s.Field("value")); ok {
			m.Default, m.HasDefault = v, true
		}
	}

	if cfg.TypeName != "" {
		checkConfigType(ctx, s.At(cfg.Node), cfg.TypeName, declared.Get())
	}
	return found(m)
}

// staticProperties handles `static properties = {...}` and
// `static get properties() { return {...} }`.
func (LitElementFlavor) staticProperties(ctx *Context, s Site, obj *ts.Node) *Discovery[*Member] {
	obj = tsnode.Unwrap(obj)
	if obj == nil || obj.Kind() != "object" {
		return found[*Member]()
	}
	var out []*Member
	for _, p := range tsnode.ObjectPairs(obj, s.Source()) {
		if p.Key == "" || p.Value == nil {
			continue
		}
		cfg := parsePropertyConfig(ctx, s.At(p.Value))
		declared := lazyType(nil)
		if t := types.FromConstructor(cfg.TypeName); t != nil {
			declared = lazyType(t)
		}
		m := litMember(s.At(p.KeyNode.Parent()), p.Key, cfg, declared)
		m.JSDoc = s.At(p.KeyNode.Parent()).Doc()
		if cfg.State {
			m.Visibility = VisibilityProtected
		}
		out = append(out, m)
	}
	return found(out...)
}

func litMember(s Site, name string, cfg *PropertyConfig, declared *TypeResolver) *Member {
	m := &Member{
		FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityHigh, JSDoc: s.Doc()},
		Kind:        MemberProperty,
		PropName:    name,
		Meta:        cfg,
	}
	if !cfg.NoAttribute {
		m.AttrName = cfg.Attribute
		if m.AttrName == "" {
			m.AttrName = strings.ToLower(name)
		}
	}
	if cfg.Reflect {
		m.Reflect = ReflectToAttribute
	}

	configType := types.FromConstructor(cfg.TypeName)
	m.Type = newLazyType(func() *types.Type {
		t := declared.Get()
		if t.IsAnyLike() && configType != nil {
			return configType
		}
		if t == nil {
			return types.AnyType
		}
		return t
	})
	return m
}

// parsePropertyConfig reads `{ attribute, type, reflect, converter, state }`.
func parsePropertyConfig(ctx *Context, s Site) *PropertyConfig {
	cfg := &PropertyConfig{Node: s.Node}
	for _, p := range tsnode.ObjectPairs(s.Node, s.Source()) {
		switch p.Key {
		case "attribute":
			v, ok := ctx.ResolveValue(s.At(p.Value))
			switch {
			case !ok:
			case v == false:
				cfg.NoAttribute = true
			case v != true:
				if str, isStr := v.(string); isStr {
					cfg.Attribute = str
				}
			}
		case "type":
			cfg.TypeName = s.File.Text(tsnode.Unwrap(p.Value))
		case "reflect":
			if v, ok := ctx.ResolveValue(s.At(p.Value)); ok && v == true {
				cfg.Reflect = true
			}
		case "converter":
			cfg.Converter = true
		case "state":
			if v, ok := ctx.ResolveValue(s.At(p.Value)); ok && v == true {
				cfg.State = true
				cfg.NoAttribute = true
			}
		}
	}
	return cfg
}

// checkConfigType reports a `type:` option the declared type cannot hold.
func checkConfigType(ctx *Context, s Site, typeName string, declared *types.Type) {
	configType := types.FromConstructor(typeName)
	if configType == nil || declared.IsAnyLike() {
		return
	}
	target := declared.NonNullable()
	// Either direction is fine: `type: String` is the right option for a
	// union of string literals.
	if types.Assignable(configType, target) || types.Assignable(target, configType) {
		return
	}
	ctx.Report(s, SeverityWarning, "@property type '%s' is not assignable to the declared type '%s'", typeName, target.String())
}
