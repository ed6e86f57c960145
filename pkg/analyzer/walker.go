package analyzer

import (
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/tsnode"
)

const (
	// maxHeritageDepth bounds alias chains and nested mixin calls.
	maxHeritageDepth = 16
	// maxFactoryDepth bounds how far a mixin factory is unwrapped.
	maxFactoryDepth = 6
)

// walker visits one declaration and everything it inherits from. The
// visiting set holds the declarations on the current path, so a declaration
// reached twice through different branches is not a cycle.
type walker struct {
	ctx      *Context
	flavors  []Flavor
	handler  string
	visiting map[tsnode.Key]bool
}

// walkDeclaration returns the merged declaration of a class, interface or
// object type site. A non-nil handler replaces the flavor list.
func (c *Context) walkDeclaration(s Site, handler Flavor) *ComponentDeclaration {
	if !s.Valid() {
		return nil
	}
	w := &walker{ctx: c, flavors: c.flavors, visiting: make(map[tsnode.Key]bool)}
	if handler != nil {
		w.flavors = []Flavor{handler}
		w.handler = handler.Name()
	}
	d, _ := w.declaration(s, declarationKind(s.Node), "")
	return d
}

func declarationKind(n *ts.Node) DeclarationKind {
	if program.IsClassNode(n) {
		return DeclarationClass
	}
	return DeclarationInterface
}

// declarationName names classes, interfaces, object type aliases and class
// expressions assigned to a variable.
func declarationName(s Site) string {
	n := s.Node
	if name := tsnode.Field(n, "name"); name != nil {
		return s.File.Text(name)
	}
	p := n.Parent()
	for p != nil && tsnode.IsKind(p, "parenthesized_expression", "as_expression", "satisfies_expression") {
		p = p.Parent()
	}
	if tsnode.IsKind(p, "variable_declarator", "type_alias_declaration", "public_field_definition", "assignment_expression") {
		key := tsnode.Field(p, "name")
		if key == nil {
			key = tsnode.Field(p, "left")
		}
		if key != nil && tsnode.IsKind(key, "identifier", "type_identifier", "property_identifier") {
			return s.File.Text(key)
		}
	}
	return ""
}

// declarationBody returns the node whose children are the members.
func declarationBody(n *ts.Node) *ts.Node {
	switch n.Kind() {
	case "object_type", "interface_body":
		return n
	case "type_alias_declaration":
		return tsnode.Field(n, "value")
	}
	return tsnode.Field(n, "body")
}

// declaration walks s. The second result reports whether the walk closed a
// heritage cycle somewhere below s; such results are not cached.
func (w *walker) declaration(s Site, kind DeclarationKind, name string) (*ComponentDeclaration, bool) {
	key := cacheKey{node: s.Key(), handler: w.handler}
	if w.visiting[key.node] {
		w.ctx.Logger.Debug("heritage cycle", "file", s.File.Path, "line", tsnode.Line(s.Node))
		return nil, true
	}
	if w.ctx.cache != nil {
		if e, ok := w.ctx.cache.get(key); ok {
			for _, d := range e.diags {
				w.ctx.emit(d)
			}
			return e.decl, false
		}
	}

	if name == "" {
		name = declarationName(s)
	}
	decl := &ComponentDeclaration{Kind: kind, Name: name, Node: s.Node, File: s.File}
	if w.isLeaf(s, name) {
		return decl, false
	}

	w.visiting[key.node] = true
	defer delete(w.visiting, key.node)
	rec := w.ctx.record()
	defer w.ctx.stopRecording(rec)

	decl.JSDoc = s.Doc()
	if tag := decl.JSDoc.Find("deprecated"); tag != nil {
		decl.Deprecated = &Deprecation{Message: tag.Comment}
	}

	clauses, cyclic := w.heritage(s)
	decl.Heritage = clauses

	sets := make([]*FeatureSet, 0, len(clauses)+1)
	for _, h := range clauses {
		if h.Declaration != nil {
			sets = append(sets, &h.Declaration.FeatureSet)
		}
	}
	own := w.ownFeatures(s, decl)
	sets = append(sets, own)
	decl.FeatureSet = MergeFeatureSets(sets...)

	if !cyclic && w.ctx.cache != nil {
		w.ctx.cache.put(key, decl, rec.diags)
	}
	return decl, cyclic
}

// isLeaf reports declarations that keep their name but contribute no facts.
func (w *walker) isLeaf(s Site, name string) bool {
	cfg := w.ctx.Config
	switch {
	case name != "" && cfg.excluded(name):
		return true
	case s.File.IsDefaultLib && !cfg.AnalyzeDefaultLibrary:
		return true
	case s.File.IsLibrary && !s.File.IsDefaultLib && !cfg.AnalyzeDependencies:
		return true
	}
	return false
}

// heritage resolves the extends and implements clauses of a declaration.
func (w *walker) heritage(s Site) ([]*HeritageClause, bool) {
	var out []*HeritageClause
	cyclic := false
	add := func(cl []*HeritageClause, c bool) {
		out = append(out, cl...)
		cyclic = cyclic || c
	}

	n := s.Node
	switch {
	case program.IsClassNode(n):
		h := tsnode.ChildOfKind(n, "class_heritage")
		if h == nil {
			break
		}
		ext := tsnode.ChildOfKind(h, "extends_clause")
		switch {
		case ext != nil:
			for _, v := range tsnode.NamedChildren(ext) {
				if v.Kind() != "type_arguments" && v.Kind() != "comment" {
					add(w.resolveHeritage(s.At(v), HeritageExtends, 0))
				}
			}
		case tsnode.ChildOfKind(h, "implements_clause") == nil && h.NamedChildCount() > 0:
			// JavaScript grammar: the clause holds the expression directly.
			add(w.resolveHeritage(s.At(h.NamedChild(0)), HeritageExtends, 0))
		}
		if impl := tsnode.ChildOfKind(h, "implements_clause"); impl != nil {
			for _, t := range tsnode.NamedChildren(impl) {
				add(w.resolveHeritage(s.At(t), HeritageImplements, 0))
			}
		}
	case n.Kind() == "interface_declaration":
		if ext := tsnode.ChildOfKind(n, "extends_type_clause"); ext != nil {
			for _, t := range tsnode.NamedChildren(ext) {
				add(w.resolveHeritage(s.At(t), HeritageExtends, 0))
			}
		}
	}
	return out, cyclic
}

// resolveHeritage resolves one heritage expression to clauses: one for a
// plain reference, several for a mixin application (bases first). A
// reference to a function parameter, the base of a mixin body, yields none.
func (w *walker) resolveHeritage(s Site, kind HeritageKind, depth int) ([]*HeritageClause, bool) {
	expr := tsnode.Unwrap(s.Node)
	if expr == nil || depth > maxHeritageDepth {
		return nil, false
	}
	s = s.At(expr)
	unresolved := []*HeritageClause{{Kind: kind, Identifier: expr, File: s.File}}

	switch {
	case program.IsClassNode(expr):
		d, cyclic := w.declaration(s, DeclarationClass, "")
		return []*HeritageClause{{Kind: kind, Identifier: expr, File: s.File, Declaration: d}}, cyclic
	case expr.Kind() == "call_expression":
		return w.mixinApplication(s, kind, depth)
	case expr.Kind() == "generic_type":
		if name := tsnode.Field(expr, "name"); name != nil {
			expr = name
		} else if expr.NamedChildCount() > 0 {
			expr = expr.NamedChild(0)
		}
	}

	var out []*HeritageClause
	cyclic, parameter := false, false
	for _, d := range w.ctx.ResolveDeclarations(s.At(expr)) {
		if d.Kind == program.DeclParameter {
			parameter = true
			continue
		}
		if cls := program.ClassOf(d); cls != nil {
			decl, c := w.declaration(Site{File: d.File, Node: cls}, DeclarationClass, d.Name)
			out = append(out, &HeritageClause{Kind: kind, Identifier: expr, File: s.File, Declaration: decl})
			cyclic = cyclic || c
			continue
		}
		switch d.Kind {
		case program.DeclInterface:
			decl, c := w.declaration(Site{File: d.File, Node: d.Node}, DeclarationInterface, d.Name)
			out = append(out, &HeritageClause{Kind: kind, Identifier: expr, File: s.File, Declaration: decl})
			cyclic = cyclic || c
		case program.DeclTypeAlias:
			if tsnode.IsKind(tsnode.Field(d.Node, "value"), "object_type") {
				decl, c := w.declaration(Site{File: d.File, Node: d.Node}, DeclarationInterface, d.Name)
				out = append(out, &HeritageClause{Kind: kind, Identifier: expr, File: s.File, Declaration: decl})
				cyclic = cyclic || c
			}
		case program.DeclVariable:
			v := d.Value()
			if v == nil {
				continue
			}
			// const Base = Mixin(HTMLElement) and const Alias = Base.
			if v.Kind() == "call_expression" || tsnode.IsKind(v, "identifier", "member_expression") {
				cl, c := w.resolveHeritage(Site{File: d.File, Node: v}, kind, depth+1)
				out = append(out, cl...)
				cyclic = cyclic || c
			}
		}
	}
	if len(out) == 0 && !parameter {
		return unresolved, false
	}
	return out, cyclic
}

// mixinApplication resolves `Mixin(Base)`: the arguments first, then the
// class returned by the factory, tagged as a mixin.
func (w *walker) mixinApplication(call Site, kind HeritageKind, depth int) ([]*HeritageClause, bool) {
	var out []*HeritageClause
	cyclic := false
	for _, a := range tsnode.Arguments(tsnode.Field(call.Node, "arguments")) {
		cl, c := w.resolveHeritage(call.At(a), kind, depth+1)
		out = append(out, cl...)
		cyclic = cyclic || c
	}

	callee := tsnode.Field(call.Node, "function")
	cls, name := w.factoryClass(call.At(callee))
	if !cls.Valid() {
		return append(out, &HeritageClause{Kind: HeritageMixin, Identifier: callee, File: call.File}), cyclic
	}
	d, c := w.declaration(cls, DeclarationMixin, name)
	out = append(out, &HeritageClause{Kind: HeritageMixin, Identifier: callee, File: call.File, Declaration: d})
	return out, cyclic || c
}

// factoryClass finds the class a mixin factory returns.
func (w *walker) factoryClass(callee Site) (Site, string) {
	for _, d := range w.ctx.ResolveDeclarations(callee) {
		if cls := w.classFromFactoryDecl(d, 0); cls.Valid() {
			return cls, d.Name
		}
	}
	return Site{}, ""
}

func (w *walker) classFromFactoryDecl(d *program.Decl, depth int) Site {
	if depth > maxFactoryDepth {
		return Site{}
	}
	switch d.Kind {
	case program.DeclFunction:
		return w.classFromFunction(Site{File: d.File, Node: d.Node}, depth)
	case program.DeclVariable:
		v := d.Value()
		site := Site{File: d.File, Node: v}
		switch {
		case v == nil:
		case isFunctionNode(v):
			return w.classFromFunction(site, depth)
		case v.Kind() == "call_expression":
			// const M = dedupeMixin((base) => class extends base {})
			return w.classFromWrapper(site, depth+1)
		case tsnode.IsKind(v, "identifier", "member_expression"):
			for _, target := range w.ctx.ResolveDeclarations(site) {
				if cls := w.classFromFactoryDecl(target, depth+1); cls.Valid() {
					return cls
				}
			}
		}
	}
	return Site{}
}

func isFunctionNode(n *ts.Node) bool {
	return tsnode.IsKind(n, "arrow_function", "function_expression", "function", "function_declaration", "generator_function_declaration")
}

// classFromFunction follows what a factory function returns: a class
// expression, a class declared inside the function, or another factory call.
func (w *walker) classFromFunction(fn Site, depth int) Site {
	ret := tsnode.ReturnedExpression(fn.Node)
	switch {
	case ret == nil:
		return Site{}
	case program.IsClassNode(ret):
		return fn.At(ret)
	case ret.Kind() == "identifier":
		for _, d := range w.ctx.Checker.ResolveName(fn.File, ret, fn.File.Text(ret)) {
			if cls := program.ClassOf(d); cls != nil {
				return Site{File: d.File, Node: cls}
			}
		}
	case ret.Kind() == "call_expression":
		return w.classFromWrapper(fn.At(ret), depth+1)
	}
	return Site{}
}

// classFromWrapper looks through a call wrapping a factory, such as
// dedupeMixin(fn) or a nested helper call, for the class it produces.
func (w *walker) classFromWrapper(call Site, depth int) Site {
	if depth > maxFactoryDepth {
		return Site{}
	}
	for _, a := range tsnode.Arguments(tsnode.Field(call.Node, "arguments")) {
		a = tsnode.Unwrap(a)
		switch {
		case program.IsClassNode(a):
			return call.At(a)
		case isFunctionNode(a):
			if cls := w.classFromFunction(call.At(a), depth+1); cls.Valid() {
				return cls
			}
		case a.Kind() == "identifier":
			for _, d := range w.ctx.ResolveDeclarations(call.At(a)) {
				if d.Kind == program.DeclParameter {
					continue
				}
				if cls := w.classFromFactoryDecl(d, depth+1); cls.Valid() {
					return cls
				}
			}
		}
	}
	for _, d := range w.ctx.ResolveDeclarations(call.Field("function")) {
		if cls := w.classFromFactoryDecl(d, depth+1); cls.Valid() {
			return cls
		}
	}
	return Site{}
}

// ownFeatures runs every enabled discovery operation on the declaration
// node and its members, then refines the facts.
func (w *walker) ownFeatures(s Site, decl *ComponentDeclaration) *FeatureSet {
	body := declarationBody(s.Node)
	cfg := w.ctx.Config
	var found []Feature

	if cfg.featureEnabled(FeatureMember) {
		for _, m := range collect(w, s, body, discoverMembers) {
			found = append(found, m)
		}
	}
	if cfg.featureEnabled(FeatureMethod) {
		for _, m := range collect(w, s, body, discoverMethods) {
			found = append(found, m)
		}
	}
	if cfg.featureEnabled(FeatureEvent) {
		for _, e := range collect(w, s, body, discoverEvents) {
			found = append(found, e)
		}
	}
	if cfg.featureEnabled(FeatureSlot) {
		for _, sl := range collect(w, s, body, discoverSlots) {
			found = append(found, sl)
		}
	}
	if cfg.featureEnabled(FeatureCSSProperty) {
		for _, p := range collect(w, s, body, discoverCSSProperties) {
			found = append(found, p)
		}
	}
	if cfg.featureEnabled(FeatureCSSPart) {
		for _, p := range collect(w, s, body, discoverCSSParts) {
			found = append(found, p)
		}
	}

	set := &FeatureSet{}
	for _, f := range found {
		f.Base().Declaration = decl
		if refine(w.ctx, w.flavors, f) {
			set.Add(f)
		}
	}
	return set
}

// refine runs every refiner in the flavor list; any of them may drop f.
func refine(ctx *Context, flavors []Flavor, f Feature) bool {
	for _, fl := range flavors {
		if r, ok := fl.(FeatureRefiner); ok && !r.RefineFeature(ctx, f) {
			return false
		}
	}
	return true
}

type discoverFunc[T any] func(f Flavor, ctx *Context, s Site) *Discovery[T]

// discoverAt asks each flavor in order; the first answer wins.
func discoverAt[T any](ctx *Context, flavors []Flavor, s Site, fn discoverFunc[T]) *Discovery[T] {
	for _, f := range flavors {
		if d := fn(f, ctx, s); d != nil {
			return d
		}
	}
	return nil
}

// discoverTree visits s and, unless a flavor claimed it without Continue,
// its children. Nested classes are separate declarations and are skipped.
func discoverTree[T any](ctx *Context, flavors []Flavor, s Site, fn discoverFunc[T], out *[]T) {
	if d := discoverAt(ctx, flavors, s, fn); d != nil {
		*out = append(*out, d.Items...)
		if !d.Continue {
			return
		}
	}
	for _, c := range tsnode.NamedChildren(s.Node) {
		if program.IsClassNode(c) || c.Kind() == "comment" {
			continue
		}
		discoverTree(ctx, flavors, s.At(c), fn, out)
	}
}

// collect runs one operation on the declaration node itself, then on every
// member of its body.
func collect[T any](w *walker, decl Site, body *ts.Node, fn discoverFunc[T]) []T {
	var out []T
	if d := discoverAt(w.ctx, w.flavors, decl, fn); d != nil {
		out = append(out, d.Items...)
	}
	for _, m := range tsnode.NamedChildren(body) {
		if tsnode.IsKind(m, "comment", "decorator") {
			continue
		}
		discoverTree(w.ctx, w.flavors, decl.At(m), fn, &out)
	}
	return out
}

func discoverMembers(f Flavor, ctx *Context, s Site) *Discovery[*Member] {
	if d, ok := f.(MemberDiscoverer); ok {
		return d.DiscoverMembers(ctx, s)
	}
	return nil
}

func discoverMethods(f Flavor, ctx *Context, s Site) *Discovery[*Method] {
	if d, ok := f.(MethodDiscoverer); ok {
		return d.DiscoverMethods(ctx, s)
	}
	return nil
}

func discoverEvents(f Flavor, ctx *Context, s Site) *Discovery[*Event] {
	if d, ok := f.(EventDiscoverer); ok {
		return d.DiscoverEvents(ctx, s)
	}
	return nil
}

func discoverSlots(f Flavor, ctx *Context, s Site) *Discovery[*Slot] {
	if d, ok := f.(SlotDiscoverer); ok {
		return d.DiscoverSlots(ctx, s)
	}
	return nil
}

func discoverCSSProperties(f Flavor, ctx *Context, s Site) *Discovery[*CSSProperty] {
	if d, ok := f.(CSSPropertyDiscoverer); ok {
		return d.DiscoverCSSProperties(ctx, s)
	}
	return nil
}

func discoverCSSParts(f Flavor, ctx *Context, s Site) *Discovery[*CSSPart] {
	if d, ok := f.(CSSPartDiscoverer); ok {
		return d.DiscoverCSSParts(ctx, s)
	}
	return nil
}

func discoverDefinitions(f Flavor, ctx *Context, s Site) *Discovery[*DefinitionResult] {
	if d, ok := f.(DefinitionDiscoverer); ok {
		return d.DiscoverDefinitions(ctx, s)
	}
	return nil
}

func discoverGlobalFeatures(f Flavor, ctx *Context, s Site) *Discovery[Feature] {
	if d, ok := f.(GlobalFeatureDiscoverer); ok {
		return d.DiscoverGlobalFeatures(ctx, s)
	}
	return nil
}
