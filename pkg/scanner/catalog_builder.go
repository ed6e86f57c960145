package scanner

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gnana997/wcspec/pkg/analyzer"
	"github.com/gnana997/wcspec/pkg/catalog"
	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/tsnode"
)

// BuildCatalog assembles a catalog.Catalog from analyzer results. A tag
// name registered by several files keeps its first definition and gets a
// warning diagnostic.
func BuildCatalog(results []*analyzer.AnalyzerResult, cfg CatalogBuildConfig) (*catalog.Catalog, error) {
	b := &catalogBuilder{
		cfg:      cfg,
		byTag:    make(map[string]*analyzer.ComponentDefinition),
		seenDiag: make(map[catalog.Diagnostic]bool),
	}

	var components, declarations []catalog.Component
	var globals []*analyzer.FeatureSet
	declared := make(map[tsnode.Key]bool)

	for _, r := range results {
		for _, d := range r.Diagnostics {
			b.addDiagnostic(d.File, d.Line(), string(d.Severity), d.Message)
		}

		for _, def := range r.ComponentDefinitions {
			if def.FromLibrary && !cfg.IncludeLibrary {
				continue
			}
			if prev, ok := b.byTag[def.TagName]; ok {
				if prev.Declaration != def.Declaration && !def.FromLibrary && !prev.FromLibrary {
					b.addDiagnostic(def.File, definitionLine(def), string(analyzer.SeverityWarning),
						fmt.Sprintf("tag name '%s' is already defined in %s", def.TagName, b.relPath(prev.File)))
				}
				continue
			}
			b.byTag[def.TagName] = def
			if def.Declaration != nil {
				declared[declarationKey(def.Declaration)] = true
			}
			components = append(components, b.component(def))
		}

		if r.GlobalFeatures != nil {
			globals = append(globals, r.GlobalFeatures)
		}
		for _, decl := range r.Declarations {
			key := declarationKey(decl)
			if key != (tsnode.Key{}) {
				if declared[key] {
					continue
				}
				declared[key] = true
			}
			declarations = append(declarations, b.declaration(decl, nil))
		}
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i].TagName < components[j].TagName
	})

	// Catalog metadata.
	name := cfg.Name
	if name == "" {
		name = filepath.Base(cfg.RootDir)
	}
	version := cfg.Version
	if version == "" {
		version = "1.0"
	}

	cat := &catalog.Catalog{
		Name:         name,
		Version:      version,
		Source:       "wcspec analyze",
		Components:   components,
		Declarations: declarations,
		Diagnostics:  b.diagnostics,
	}
	if len(globals) > 0 {
		merged := analyzer.MergeFeatureSets(globals...)
		cat.Global = b.globalFeatures(&merged)
	}

	// Validate.
	if errs := cat.Validate(); len(errs) > 0 {
		// Return the catalog anyway, with the first error.
		return cat, errs[0]
	}

	return cat, nil
}

type catalogBuilder struct {
	cfg         CatalogBuildConfig
	byTag       map[string]*analyzer.ComponentDefinition
	diagnostics []catalog.Diagnostic
	seenDiag    map[catalog.Diagnostic]bool
}

func (b *catalogBuilder) addDiagnostic(f *program.SourceFile, line int, severity, msg string) {
	d := catalog.Diagnostic{File: b.relPath(f), Line: line, Severity: severity, Message: msg}
	if b.seenDiag[d] {
		return
	}
	b.seenDiag[d] = true
	b.diagnostics = append(b.diagnostics, d)
}

// relPath makes a path relative to the scanned root when it lies below it.
func (b *catalogBuilder) relPath(f *program.SourceFile) string {
	if f == nil {
		return ""
	}
	if b.cfg.RootDir == "" || f.IsDefaultLib {
		return filepath.ToSlash(f.Path)
	}
	root, err := filepath.Abs(b.cfg.RootDir)
	if err != nil {
		return filepath.ToSlash(f.Path)
	}
	rel, err := filepath.Rel(root, f.Path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(f.Path)
	}
	return filepath.ToSlash(rel)
}

func declarationKey(d *analyzer.ComponentDeclaration) tsnode.Key {
	if d.File == nil || d.Node == nil {
		return tsnode.Key{}
	}
	return d.File.Key(d.Node)
}

func definitionLine(def *analyzer.ComponentDefinition) int {
	if len(def.TagNameNodes) > 0 {
		return int(def.TagNameNodes[0].StartPosition().Row) + 1
	}
	return 0
}

func (b *catalogBuilder) component(def *analyzer.ComponentDefinition) catalog.Component {
	if def.Declaration == nil {
		return catalog.Component{
			TagName:     def.TagName,
			Module:      b.relPath(def.File),
			Line:        definitionLine(def),
			FromLibrary: def.FromLibrary,
		}
	}
	comp := b.declaration(def.Declaration, def)
	comp.TagName = def.TagName
	comp.FromLibrary = def.FromLibrary
	return comp
}

// declaration converts a merged declaration. def is nil for declarations
// that are not registered.
func (b *catalogBuilder) declaration(decl *analyzer.ComponentDeclaration, def *analyzer.ComponentDefinition) catalog.Component {
	comp := catalog.Component{
		ClassName:   decl.Name,
		Description: decl.Description(),
		Module:      b.relPath(decl.File),
		Deprecated:  deprecation(decl.Deprecated),
	}
	if decl.Node != nil {
		comp.Line = int(decl.Node.StartPosition().Row) + 1
	}
	if def != nil && decl.File == nil {
		comp.Module = b.relPath(def.File)
	}

	for _, h := range decl.Heritage {
		name := heritageName(h)
		if name == "" {
			continue
		}
		switch h.Kind {
		case analyzer.HeritageExtends:
			if comp.Superclass == "" {
				comp.Superclass = name
			}
		case analyzer.HeritageMixin:
			comp.Mixins = append(comp.Mixins, name)
		}
	}

	for _, m := range decl.Members {
		if !b.visible(m.Visibility) {
			continue
		}
		inherited := inheritedFrom(decl, m)
		if m.AttrName != "" && !m.Modifiers.Has(analyzer.ModifierStatic) {
			comp.Attributes = append(comp.Attributes, attribute(m, inherited))
		}
		if m.PropName != "" {
			comp.Properties = append(comp.Properties, property(m, inherited))
		}
	}
	for _, m := range decl.Methods {
		if !b.visible(m.Visibility) {
			continue
		}
		comp.Methods = append(comp.Methods, method(m, inheritedFrom(decl, m)))
	}
	for _, e := range decl.Events {
		if !b.visible(e.Visibility) {
			continue
		}
		comp.Events = append(comp.Events, event(e, inheritedFrom(decl, e)))
	}
	for _, s := range decl.Slots {
		comp.Slots = append(comp.Slots, catalog.Slot{
			Name:              s.Name,
			Description:       s.Description(),
			PermittedTagNames: s.PermittedTagNames,
			Deprecated:        deprecation(s.Deprecated),
		})
	}
	for _, c := range decl.CSSProperties {
		comp.CSSProperties = append(comp.CSSProperties, catalog.CSSProperty{
			Name:        c.Name,
			Syntax:      c.TypeHint,
			Default:     c.Default,
			Description: c.Description(),
			Deprecated:  deprecation(c.Deprecated),
		})
	}
	for _, c := range decl.CSSParts {
		comp.CSSParts = append(comp.CSSParts, catalog.CSSPart{
			Name:        c.Name,
			Description: c.Description(),
			Deprecated:  deprecation(c.Deprecated),
		})
	}
	return comp
}

func (b *catalogBuilder) visible(v analyzer.Visibility) bool {
	if b.cfg.IncludeNonPublic {
		return true
	}
	return v != analyzer.VisibilityPrivate && v != analyzer.VisibilityProtected
}

func (b *catalogBuilder) globalFeatures(set *analyzer.FeatureSet) *catalog.GlobalFeatures {
	g := &catalog.GlobalFeatures{}
	for _, m := range set.Members {
		if m.PropName != "" && b.visible(m.Visibility) {
			g.Properties = append(g.Properties, property(m, ""))
		}
	}
	for _, m := range set.Methods {
		if b.visible(m.Visibility) {
			g.Methods = append(g.Methods, method(m, ""))
		}
	}
	for _, e := range set.Events {
		if b.visible(e.Visibility) {
			g.Events = append(g.Events, event(e, ""))
		}
	}
	return g
}

func heritageName(h *analyzer.HeritageClause) string {
	if h.Declaration != nil && h.Declaration.Name != "" {
		return h.Declaration.Name
	}
	if h.File != nil && h.Identifier != nil {
		return h.File.Text(h.Identifier)
	}
	return ""
}

func inheritedFrom(decl *analyzer.ComponentDeclaration, f analyzer.Feature) string {
	if owner := decl.InheritedFrom(f); owner != nil {
		return owner.Name
	}
	return ""
}

func deprecation(d *analyzer.Deprecation) *catalog.Deprecation {
	if d == nil {
		return nil
	}
	return &catalog.Deprecation{Reason: d.Message}
}

// memberType renders a member type, preferring a documented hint over an
// inferred any.
func memberType(m *analyzer.Member) string {
	t := m.ResolvedType()
	if t.IsAnyLike() && m.TypeHint != "" {
		return m.TypeHint
	}
	return t.String()
}

func memberDefault(m *analyzer.Member) string {
	if !m.HasDefault {
		return ""
	}
	return analyzer.FormatValue(m.Default)
}

func attribute(m *analyzer.Member, inherited string) catalog.Attribute {
	a := catalog.Attribute{
		Name:          m.AttrName,
		FieldName:     m.PropName,
		Type:          memberType(m),
		Default:       memberDefault(m),
		Description:   m.Description(),
		Required:      m.Required,
		Deprecated:    deprecation(m.Deprecated),
		InheritedFrom: inherited,
	}
	if values, ok := m.ResolvedType().StringLiterals(); ok {
		a.AllowedValues = values
	}
	return a
}

func property(m *analyzer.Member, inherited string) catalog.Property {
	return catalog.Property{
		Name:          m.PropName,
		Attribute:     m.AttrName,
		Type:          memberType(m),
		Default:       memberDefault(m),
		Description:   m.Description(),
		Required:      m.Required,
		Reflects:      m.Reflect == analyzer.ReflectToAttribute || m.Reflect == analyzer.ReflectBoth,
		Readonly:      m.Modifiers.Has(analyzer.ModifierReadonly),
		Static:        m.Modifiers.Has(analyzer.ModifierStatic),
		Visibility:    string(m.Visibility),
		Deprecated:    deprecation(m.Deprecated),
		InheritedFrom: inherited,
	}
}

func method(m *analyzer.Method, inherited string) catalog.Method {
	out := catalog.Method{
		Name:          m.Name,
		Description:   m.Description(),
		Static:        m.Modifiers.Has(analyzer.ModifierStatic),
		Deprecated:    deprecation(m.Deprecated),
		InheritedFrom: inherited,
	}
	if t := m.Type.Get(); t != nil {
		out.Signature = t.String()
	}
	return out
}

func event(e *analyzer.Event, inherited string) catalog.Event {
	out := catalog.Event{
		Name:          e.Name,
		Description:   e.Description(),
		Deprecated:    deprecation(e.Deprecated),
		InheritedFrom: inherited,
	}
	if t := e.Type.Get(); t != nil && !t.IsAnyLike() {
		out.Type = t.String()
	} else {
		out.Type = e.TypeHint
	}
	return out
}
