package analyzer

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/jsdoc"
	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/types"
	"github.com/gnana997/wcspec/pkg/util"
)

// FeatureKind names one kind of feature fact.
type FeatureKind string

const (
	FeatureMember      FeatureKind = "member"
	FeatureMethod      FeatureKind = "method"
	FeatureEvent       FeatureKind = "event"
	FeatureSlot        FeatureKind = "slot"
	FeatureCSSProperty FeatureKind = "css-property"
	FeatureCSSPart     FeatureKind = "css-part"
)

// AllFeatures lists every feature kind in reporting order.
var AllFeatures = []FeatureKind{
	FeatureMember, FeatureMethod, FeatureEvent, FeatureSlot, FeatureCSSPart, FeatureCSSProperty,
}

// ParseFeatureKind maps a config string to a feature kind. "css-properties"
// style plurals are accepted.
func ParseFeatureKind(s string) (FeatureKind, bool) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	if s == "css-propertie" {
		s = "css-property"
	}
	for _, k := range AllFeatures {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Priority breaks ties between two facts found on the same declaration.
type Priority int

const (
	PriorityUndefined Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

// MemberKind tells attributes from properties.
type MemberKind string

const (
	MemberAttribute MemberKind = "attribute"
	MemberProperty  MemberKind = "property"
)

// ReflectMode describes how a property and its attribute mirror each other.
type ReflectMode string

const (
	ReflectNone        ReflectMode = ""
	ReflectToAttribute ReflectMode = "to-attribute"
	ReflectToProperty  ReflectMode = "to-property"
	ReflectBoth        ReflectMode = "both"
)

// Visibility of a member, method or event. The zero value means unknown,
// which reporting treats as public.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// Modifiers is a set of member modifiers.
type Modifiers uint8

const (
	ModifierReadonly Modifiers = 1 << iota
	ModifierStatic
)

// Has reports whether all bits of m2 are set.
func (m Modifiers) Has(m2 Modifiers) bool {
	return m&m2 == m2
}

// Names lists the modifiers set.
func (m Modifiers) Names() []string {
	var out []string
	if m.Has(ModifierReadonly) {
		out = append(out, "readonly")
	}
	if m.Has(ModifierStatic) {
		out = append(out, "static")
	}
	return out
}

// Deprecation marks a deprecated fact or declaration. A nil *Deprecation
// means not deprecated; an empty Message means deprecated without reason.
type Deprecation struct {
	Message string
}

// TypeResolver lazily resolves the type of a fact. Get never returns nil.
type TypeResolver = util.Lazy[*types.Type]

// FeatureBase holds the fields every fact carries.
type FeatureBase struct {
	// Node is the syntax node the fact was read from.
	Node *ts.Node
	File *program.SourceFile

	Priority Priority

	// Declaration is the declaration the fact was found on. Set by the
	// walker; inherited facts keep pointing at their ancestor.
	Declaration *ComponentDeclaration

	JSDoc *jsdoc.Comment
}

// Base returns the shared fields.
func (b *FeatureBase) Base() *FeatureBase {
	return b
}

// Description returns the documentation text, or "".
func (b *FeatureBase) Description() string {
	if b.JSDoc == nil {
		return ""
	}
	return b.JSDoc.Description
}

// Feature is implemented by every fact type.
type Feature interface {
	FeatureKind() FeatureKind
	Base() *FeatureBase
}

// PropertyConfig is the reactive-property configuration object found on a
// decorator or a static properties map.
type PropertyConfig struct {
	Node *ts.Node

	// Attribute is an explicit attribute name.
	Attribute string

	// NoAttribute is set for `attribute: false` and internal state.
	NoAttribute bool

	// TypeName is the constructor given as `type`, e.g. "Boolean".
	TypeName string

	Reflect   bool
	Converter bool
	State     bool
}

// Member is an attribute or a property.
type Member struct {
	FeatureBase

	Kind     MemberKind
	PropName string
	AttrName string

	// Type resolves the declared or inferred type.
	Type *TypeResolver

	// TypeHint is a textual type given in documentation.
	TypeHint string

	// Default is a resolved constant: string, float64, bool, nil for null,
	// []any or map[string]any. HasDefault tells a null default from none.
	Default    any
	HasDefault bool

	// HasRequired tells an explicit optional from an unstated flag.
	Required    bool
	HasRequired bool

	Reflect    ReflectMode
	Deprecated *Deprecation
	Visibility Visibility
	Modifiers  Modifiers

	Meta *PropertyConfig
}

func (m *Member) FeatureKind() FeatureKind { return FeatureMember }

// Name returns the property name, falling back to the attribute name.
func (m *Member) Name() string {
	if m.PropName != "" {
		return m.PropName
	}
	return m.AttrName
}

// ResolvedType returns the member type, or any.
func (m *Member) ResolvedType() *types.Type {
	return resolvedType(m.Type)
}

// Method is a public method.
type Method struct {
	FeatureBase

	Name       string
	Type       *TypeResolver
	Visibility Visibility
	Modifiers  Modifiers
	Deprecated *Deprecation
}

func (m *Method) FeatureKind() FeatureKind { return FeatureMethod }

// Event is an event the element dispatches.
type Event struct {
	FeatureBase

	Name string

	// Type resolves the event type, e.g. CustomEvent<number>.
	Type       *TypeResolver
	TypeHint   string
	Visibility Visibility
	Deprecated *Deprecation
}

func (e *Event) FeatureKind() FeatureKind { return FeatureEvent }

// Slot is a named or default slot. Name "" is the default slot.
type Slot struct {
	FeatureBase

	Name string

	// PermittedTagNames restricts which elements may be slotted.
	PermittedTagNames []string
	Deprecated        *Deprecation
}

func (s *Slot) FeatureKind() FeatureKind { return FeatureSlot }

// CSSProperty is a CSS custom property the element reads.
type CSSProperty struct {
	FeatureBase

	Name       string
	TypeHint   string
	Default    string
	Deprecated *Deprecation
}

func (c *CSSProperty) FeatureKind() FeatureKind { return FeatureCSSProperty }

// CSSPart is an exposed shadow part.
type CSSPart struct {
	FeatureBase

	Name       string
	Deprecated *Deprecation
}

func (c *CSSPart) FeatureKind() FeatureKind { return FeatureCSSPart }

// FeatureSet is a merged collection of facts.
type FeatureSet struct {
	Members       []*Member
	Methods       []*Method
	Events        []*Event
	Slots         []*Slot
	CSSProperties []*CSSProperty
	CSSParts      []*CSSPart
}

// Add appends facts by kind.
func (s *FeatureSet) Add(fs ...Feature) {
	for _, f := range fs {
		switch v := f.(type) {
		case *Member:
			s.Members = append(s.Members, v)
		case *Method:
			s.Methods = append(s.Methods, v)
		case *Event:
			s.Events = append(s.Events, v)
		case *Slot:
			s.Slots = append(s.Slots, v)
		case *CSSProperty:
			s.CSSProperties = append(s.CSSProperties, v)
		case *CSSPart:
			s.CSSParts = append(s.CSSParts, v)
		}
	}
}

// All returns every fact in kind order.
func (s *FeatureSet) All() []Feature {
	var out []Feature
	for _, m := range s.Members {
		out = append(out, m)
	}
	for _, m := range s.Methods {
		out = append(out, m)
	}
	for _, e := range s.Events {
		out = append(out, e)
	}
	for _, sl := range s.Slots {
		out = append(out, sl)
	}
	for _, c := range s.CSSProperties {
		out = append(out, c)
	}
	for _, c := range s.CSSParts {
		out = append(out, c)
	}
	return out
}

// IsEmpty reports a set without facts.
func (s *FeatureSet) IsEmpty() bool {
	return s == nil || len(s.Members)+len(s.Methods)+len(s.Events)+len(s.Slots)+
		len(s.CSSProperties)+len(s.CSSParts) == 0
}

// Member finds a member by property or attribute name, case-insensitively.
func (s *FeatureSet) Member(name string) *Member {
	for _, m := range s.Members {
		if strings.EqualFold(m.PropName, name) || strings.EqualFold(m.AttrName, name) {
			return m
		}
	}
	return nil
}

// Event finds an event by name.
func (s *FeatureSet) Event(name string) *Event {
	for _, e := range s.Events {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// DeclarationKind discriminates ComponentDeclaration.
type DeclarationKind string

const (
	DeclarationClass     DeclarationKind = "class"
	DeclarationInterface DeclarationKind = "interface"
	DeclarationMixin     DeclarationKind = "mixin"
)

// HeritageKind is the relation of a heritage clause.
type HeritageKind string

const (
	HeritageExtends    HeritageKind = "extends"
	HeritageImplements HeritageKind = "implements"
	HeritageMixin      HeritageKind = "mixin"
)

// HeritageClause links a declaration to one it inherits from.
type HeritageClause struct {
	Kind       HeritageKind
	Identifier *ts.Node
	File       *program.SourceFile

	// Declaration is nil when the reference could not be resolved or closes
	// a cycle.
	Declaration *ComponentDeclaration
}

// ComponentDeclaration is the merged view of one class, interface or mixin,
// inherited facts included.
type ComponentDeclaration struct {
	FeatureSet

	Kind DeclarationKind
	Name string
	Node *ts.Node
	File *program.SourceFile

	JSDoc      *jsdoc.Comment
	Deprecated *Deprecation
	Heritage   []*HeritageClause
}

// Ancestors returns every declaration reachable through heritage clauses,
// depth first, each once.
func (d *ComponentDeclaration) Ancestors() []*ComponentDeclaration {
	var out []*ComponentDeclaration
	seen := map[*ComponentDeclaration]bool{d: true}
	var visit func(*ComponentDeclaration)
	visit = func(cur *ComponentDeclaration) {
		for _, h := range cur.Heritage {
			if h.Declaration == nil || seen[h.Declaration] {
				continue
			}
			seen[h.Declaration] = true
			out = append(out, h.Declaration)
			visit(h.Declaration)
		}
	}
	visit(d)
	return out
}

// Superclass returns the declaration of the first extends clause.
func (d *ComponentDeclaration) Superclass() *ComponentDeclaration {
	for _, h := range d.Heritage {
		if h.Kind == HeritageExtends {
			return h.Declaration
		}
	}
	return nil
}

// InheritedFrom returns the declaration a fact was found on when it is not
// d itself.
func (d *ComponentDeclaration) InheritedFrom(f Feature) *ComponentDeclaration {
	owner := f.Base().Declaration
	if owner == nil || owner == d {
		return nil
	}
	return owner
}

// Description returns the declaration documentation text.
func (d *ComponentDeclaration) Description() string {
	if d.JSDoc == nil {
		return ""
	}
	return d.JSDoc.Description
}

// ComponentDefinition pairs a tag name with the declaration implementing it.
type ComponentDefinition struct {
	TagName string

	// Declaration is nil when the registered class could not be resolved.
	Declaration *ComponentDeclaration

	// IdentifierNodes are the registration sites referencing the class;
	// TagNameNodes are the nodes the tag name was read from.
	IdentifierNodes []*ts.Node
	TagNameNodes    []*ts.Node

	// FromLibrary is set for registrations found in node_modules or the
	// default library.
	FromLibrary bool

	File *program.SourceFile
}

// Severity of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is an advisory message attached to a node.
type Diagnostic struct {
	Message  string
	Severity Severity
	Node     *ts.Node
	File     *program.SourceFile
}

// Line returns the 1-based line of the diagnostic node.
func (d Diagnostic) Line() int {
	if d.Node == nil {
		return 0
	}
	return int(d.Node.StartPosition().Row) + 1
}

// AnalyzerResult is the outcome of analyzing one file.
type AnalyzerResult struct {
	SourceFile *program.SourceFile

	// ComponentDefinitions are sorted by tag name.
	ComponentDefinitions []*ComponentDefinition

	// Declarations holds every named class declaration of the file when
	// AnalyzeAllDeclarations is set.
	Declarations []*ComponentDeclaration

	// GlobalFeatures is nil unless AnalyzeGlobalFeatures is set.
	GlobalFeatures *FeatureSet

	Diagnostics []Diagnostic
}

// Definition returns the definition of a tag name, or nil.
func (r *AnalyzerResult) Definition(tag string) *ComponentDefinition {
	for _, d := range r.ComponentDefinitions {
		if d.TagName == tag {
			return d
		}
	}
	return nil
}

func resolvedType(l *TypeResolver) *types.Type {
	if t := l.Get(); t != nil {
		return t
	}
	return types.AnyType
}

func lazyType(t *types.Type) *TypeResolver {
	if t == nil {
		t = types.AnyType
	}
	return util.LazyValue(t)
}

func newLazyType(resolve func() *types.Type) *TypeResolver {
	return util.NewLazy(resolve)
}
