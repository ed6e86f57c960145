package analyzer

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/jsdoc"
	"github.com/gnana997/wcspec/pkg/tsnode"
	"github.com/gnana997/wcspec/pkg/types"
)

// CustomElementFlavor reads vanilla custom elements: customElements.define
// calls, observedAttributes, class fields, accessors, constructor
// assignments, methods and dispatched events. It also reads the platform's
// ambient maps: HTMLElementTagNameMap entries register tag names,
// HTMLElementEventMap and `interface HTMLElement` augmentations are global
// features.
//
// Decorated members belong to framework flavors and are skipped.
type CustomElementFlavor struct{}

func (CustomElementFlavor) Name() string { return "custom-element" }

var lifecycleCallbacks = map[string]bool{
	"constructor": true, "connectedCallback": true, "disconnectedCallback": true,
	"attributeChangedCallback": true, "adoptedCallback": true,
}

func (CustomElementFlavor) DiscoverDefinitions(ctx *Context, s Site) *Discovery[*DefinitionResult] {
	switch s.Node.Kind() {
	case "call_expression":
		return defineCall(ctx, s)
	case "interface_declaration":
		if s.File.Text(tsnode.Field(s.Node, "name")) != "HTMLElementTagNameMap" {
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
			out = append(out, &DefinitionResult{
				TagName:        tag,
				TagNameNode:    key,
				IdentifierNode: ann,
				File:           s.File,
				Declaration:    typeReferenceSite(ctx, s.At(ann)),
			})
		}
		return found(out...)
	}
	return nil
}

// defineCall reads `customElements.define(tag, Class)`, optionally
// prefixed with window or globalThis.
func defineCall(ctx *Context, s Site) *Discovery[*DefinitionResult] {
	fn := tsnode.Field(s.Node, "function")
	if !tsnode.IsKind(fn, "member_expression") || tsnode.FieldText(fn, "property", s.Source()) != "define" {
		return nil
	}
	obj := s.File.Text(tsnode.Field(fn, "object"))
	if obj != "customElements" && !strings.HasSuffix(obj, ".customElements") {
		return nil
	}
	args := tsnode.Arguments(tsnode.Field(s.Node, "arguments"))
	if len(args) < 2 {
		return nil
	}
	tag, ok := ctx.ResolveString(s.At(args[0]))
	if !ok {
		return nil
	}
	return &Discovery[*DefinitionResult]{
		Items: []*DefinitionResult{{
			TagName:        tag,
			TagNameNode:    args[0],
			IdentifierNode: args[1],
			File:           s.File,
			Declaration:    declarationSite(ctx, s.At(args[1])),
		}},
		// The class may be an inline expression holding further defines.
		Continue: true,
	}
}

func (f CustomElementFlavor) DiscoverMembers(ctx *Context, s Site) *Discovery[*Member] {
	n := s.Node
	if hasDecorators(n) {
		return nil
	}
	switch n.Kind() {
	case "public_field_definition", "field_definition":
		name := memberName(ctx, s)
		if isStatic(n) {
			if name == "observedAttributes" {
				return observedAttributes(ctx, s, tsnode.Field(n, "value"))
			}
			return found[*Member]()
		}
		if name == "" {
			return found[*Member]()
		}
		m := f.property(ctx, s, name)
		if v, ok := ctx.ResolveValue(s.Field("value")); ok {
			m.Default, m.HasDefault = v, true
		}
		return found(m)

	case "method_definition":
		name := memberName(ctx, s)
		switch {
		case isStatic(n):
			if name == "observedAttributes" && isGetter(n) {
				return observedAttributes(ctx, s, tsnode.ReturnedExpression(n))
			}
		case name == "constructor":
			return found(constructorAssignments(ctx, s)...)
		case isGetter(n):
			m := f.property(ctx, s, name)
			if !hasSiblingAccessor(ctx, s, name, true) {
				m.Modifiers |= ModifierReadonly
			}
			return found(m)
		case isSetter(n):
			m := f.property(ctx, s, name)
			if hasSiblingAccessor(ctx, s, name, false) {
				// The getter carries the documentation and type.
				m.Priority = PriorityLow
			}
			return found(m)
		}
		return found[*Member]()

	case "property_signature":
		name := tsnode.PropertyName(tsnode.Field(n, "name"), s.Source())
		if name == "" {
			return found[*Member]()
		}
		m := f.property(ctx, s, name)
		m.Required, m.HasRequired = !tsnode.HasChildToken(n, "?"), true
		return found(m)
	}
	return nil
}

func (CustomElementFlavor) property(ctx *Context, s Site, name string) *Member {
	return &Member{
		FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityMedium, JSDoc: s.Doc()},
		Kind:        MemberProperty,
		PropName:    name,
		Type:        nodeType(ctx, s),
		Visibility:  visibilityOf(s, name),
		Modifiers:   modifiersOf(s.Node),
	}
}

// observedAttributes turns the returned string array into attributes.
func observedAttributes(ctx *Context, s Site, arr *ts.Node) *Discovery[*Member] {
	arr = tsnode.Unwrap(arr)
	if arr == nil {
		return found[*Member]()
	}
	var out []*Member
	if arr.Kind() == "array" {
		for _, el := range tsnode.NamedChildren(arr) {
			if el.Kind() == "spread_element" {
				// Inherited attributes are found through the heritage walk.
				continue
			}
			name, ok := ctx.ResolveString(s.At(el))
			if !ok || name == "" {
				continue
			}
			out = append(out, observedAttribute(s.At(el), name))
		}
		return found(out...)
	}
	if v, ok := ctx.ResolveValue(s.At(arr)); ok {
		if values, isArr := v.([]any); isArr {
			for _, e := range values {
				if name, isStr := e.(string); isStr && name != "" {
					out = append(out, observedAttribute(s.At(arr), name))
				}
			}
		}
	}
	return found(out...)
}

func observedAttribute(s Site, name string) *Member {
	return &Member{
		FeatureBase: FeatureBase{Node: s.Node, File: s.File, Priority: PriorityLow, JSDoc: s.Doc()},
		Kind:        MemberAttribute,
		AttrName:    name,
		Type:        lazyType(nil),
	}
}

// constructorAssignments reads `this.foo = value` statements at the top
// level of a constructor body.
func constructorAssignments(ctx *Context, s Site) []*Member {
	var out []*Member
	for _, st := range tsnode.NamedChildren(tsnode.Field(s.Node, "body")) {
		if st.Kind() != "expression_statement" {
			continue
		}
		assign := st.NamedChild(0)
		if !tsnode.IsKind(assign, "assignment_expression") {
			continue
		}
		left := tsnode.Field(assign, "left")
		if !tsnode.IsKind(left, "member_expression") || tsnode.FieldText(left, "object", s.Source()) != "this" {
			continue
		}
		name := tsnode.FieldText(left, "property", s.Source())
		if name == "" {
			continue
		}
		value := tsnode.Field(assign, "right")
		m := &Member{
			FeatureBase: FeatureBase{Node: st, File: s.File, Priority: PriorityLow, JSDoc: s.At(st).Doc()},
			Kind:        MemberProperty,
			PropName:    name,
			Type:        nodeType(ctx, s.At(value)),
			Visibility:  visibilityOf(s.At(st), name),
		}
		if v, ok := ctx.ResolveValue(s.At(value)); ok {
			m.Default, m.HasDefault = v, true
		}
		out = append(out, m)
	}
	return out
}

func (CustomElementFlavor) DiscoverMethods(ctx *Context, s Site) *Discovery[*Method] {
	n := s.Node
	if hasDecorators(n) {
		return nil
	}
	switch n.Kind() {
	case "method_definition":
		name := memberName(ctx, s)
		if isGetter(n) || isSetter(n) || lifecycleCallbacks[name] || name == "" {
			return found[*Method]()
		}
		return found(&Method{
			FeatureBase: FeatureBase{Node: n, File: s.File, Priority: PriorityMedium, JSDoc: s.Doc()},
			Name:        name,
			Type:        nodeType(ctx, s),
			Visibility:  visibilityOf(s, name),
			Modifiers:   modifiersOf(n),
		})
	case "method_signature":
		name := tsnode.PropertyName(tsnode.Field(n, "name"), s.Source())
		return found(&Method{
			FeatureBase: FeatureBase{Node: n, File: s.File, Priority: PriorityMedium, JSDoc: s.Doc()},
			Name:        name,
			Type:        nodeType(ctx, s),
		})
	case "public_field_definition", "field_definition", "property_signature":
		return found[*Method]()
	}
	return nil
}

// DiscoverEvents reads `this.dispatchEvent(new CustomEvent("name"))`,
// including events built in a local variable first.
func (CustomElementFlavor) DiscoverEvents(ctx *Context, s Site) *Discovery[*Event] {
	n := s.Node
	if n.Kind() != "call_expression" {
		return nil
	}
	fn := tsnode.Field(n, "function")
	if !tsnode.IsKind(fn, "member_expression") || tsnode.FieldText(fn, "property", s.Source()) != "dispatchEvent" {
		return nil
	}
	args := tsnode.Arguments(tsnode.Field(n, "arguments"))
	if len(args) == 0 {
		return nil
	}
	ev := tsnode.Unwrap(args[0])
	if ev.Kind() == "identifier" {
		for _, d := range ctx.ResolveDeclarations(s.At(ev)) {
			if v := d.Value(); tsnode.IsKind(v, "new_expression") && d.File == s.File {
				ev = v
				break
			}
		}
	}
	if ev.Kind() != "new_expression" {
		return nil
	}
	ctor := tsnode.Field(ev, "constructor")
	ctorName := s.File.Text(ctor)
	ctorArgs := tsnode.Arguments(tsnode.Field(ev, "arguments"))
	if len(ctorArgs) == 0 {
		return nil
	}
	name, ok := ctx.ResolveString(s.At(ctorArgs[0]))
	if !ok || name == "" {
		return nil
	}

	typeArgs := tsnode.Field(ev, "type_arguments")
	var detail Site
	if len(ctorArgs) > 1 {
		for _, p := range tsnode.ObjectPairs(ctorArgs[1], s.Source()) {
			if p.Key == "detail" {
				detail = s.At(p.Value)
			}
		}
	}
	checker := ctx.Checker
	evType := newLazyType(func() *types.Type {
		if typeArgs != nil {
			return types.Parse(ctorName + s.File.Text(typeArgs))
		}
		if ctorName != "CustomEvent" {
			return types.Ref(ctorName)
		}
		if detail.Valid() {
			return types.Ref("CustomEvent", checker.TypeOf(detail.File, detail.Node))
		}
		return types.Ref("CustomEvent")
	})

	return &Discovery[*Event]{
		Items: []*Event{{
			FeatureBase: FeatureBase{Node: n, File: s.File, Priority: PriorityMedium, JSDoc: statementDoc(s)},
			Name:        name,
			Type:        evType,
		}},
		Continue: true,
	}
}

// statementDoc returns the doc comment of the statement holding a call.
func statementDoc(s Site) *jsdoc.Comment {
	if st := tsnode.Ancestor(s.Node, "expression_statement"); st != nil {
		return s.At(st).Doc()
	}
	return s.Doc()
}

// DiscoverGlobalFeatures reads `interface HTMLElementEventMap { ... }` and
// `interface HTMLElement { ... }` augmentations.
func (f CustomElementFlavor) DiscoverGlobalFeatures(ctx *Context, s Site) *Discovery[Feature] {
	if s.Node.Kind() != "interface_declaration" {
		return nil
	}
	var out []Feature
	body := tsnode.Field(s.Node, "body")
	switch s.File.Text(tsnode.Field(s.Node, "name")) {
	case "HTMLElementEventMap":
		for _, sig := range tsnode.ChildrenOfKind(body, "property_signature") {
			name := tsnode.PropertyName(tsnode.Field(sig, "name"), s.Source())
			if name == "" {
				continue
			}
			out = append(out, &Event{
				FeatureBase: FeatureBase{Node: sig, File: s.File, Priority: PriorityMedium, JSDoc: s.At(sig).Doc()},
				Name:        name,
				Type:        nodeType(ctx, s.At(sig)),
			})
		}
	case "HTMLElement":
		for _, sig := range tsnode.NamedChildren(body) {
			if m := f.DiscoverMembers(ctx, s.At(sig)); m != nil {
				for _, item := range m.Items {
					out = append(out, item)
				}
			}
			if m := f.DiscoverMethods(ctx, s.At(sig)); m != nil {
				for _, item := range m.Items {
					out = append(out, item)
				}
			}
		}
	default:
		return nil
	}
	return found(out...)
}
