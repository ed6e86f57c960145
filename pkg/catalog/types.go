package catalog

// Component describes one custom element: its tag name and public contract.
type Component struct {
	TagName     string `json:"tag_name" yaml:"tag_name"`
	ClassName   string `json:"class_name,omitempty" yaml:"class_name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Module is the source file path relative to the scanned root.
	Module string `json:"module,omitempty" yaml:"module,omitempty"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`

	Deprecated *Deprecation `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`

	// Superclass and Mixins name the heritage chain by identifier.
	Superclass string   `json:"superclass,omitempty" yaml:"superclass,omitempty"`
	Mixins     []string `json:"mixins,omitempty" yaml:"mixins,omitempty"`

	// FromLibrary marks components registered in node_modules or the DOM
	// library.
	FromLibrary bool `json:"from_library,omitempty" yaml:"from_library,omitempty"`

	Attributes    []Attribute   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Properties    []Property    `json:"properties,omitempty" yaml:"properties,omitempty"`
	Methods       []Method      `json:"methods,omitempty" yaml:"methods,omitempty"`
	Events        []Event       `json:"events,omitempty" yaml:"events,omitempty"`
	Slots         []Slot        `json:"slots,omitempty" yaml:"slots,omitempty"`
	CSSProperties []CSSProperty `json:"css_properties,omitempty" yaml:"css_properties,omitempty"`
	CSSParts      []CSSPart     `json:"css_parts,omitempty" yaml:"css_parts,omitempty"`
}

// Deprecation marks a deprecated entry. Reason may be empty.
type Deprecation struct {
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Attribute is an HTML attribute. FieldName links it to its property.
type Attribute struct {
	Name          string       `json:"name" yaml:"name"`
	FieldName     string       `json:"field_name,omitempty" yaml:"field_name,omitempty"`
	Type          string       `json:"type,omitempty" yaml:"type,omitempty"`
	Default       string       `json:"default,omitempty" yaml:"default,omitempty"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	Required      bool         `json:"required,omitempty" yaml:"required,omitempty"`
	AllowedValues []string     `json:"allowed_values,omitempty" yaml:"allowed_values,omitempty"`
	Deprecated    *Deprecation `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	InheritedFrom string       `json:"inherited_from,omitempty" yaml:"inherited_from,omitempty"`
}

// Property is a JavaScript property of the element.
type Property struct {
	Name          string       `json:"name" yaml:"name"`
	Attribute     string       `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Type          string       `json:"type,omitempty" yaml:"type,omitempty"`
	Default       string       `json:"default,omitempty" yaml:"default,omitempty"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	Required      bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Reflects      bool         `json:"reflects,omitempty" yaml:"reflects,omitempty"`
	Readonly      bool         `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	Static        bool         `json:"static,omitempty" yaml:"static,omitempty"`
	Visibility    string       `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	Deprecated    *Deprecation `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	InheritedFrom string       `json:"inherited_from,omitempty" yaml:"inherited_from,omitempty"`
}

// Method is a public method.
type Method struct {
	Name          string       `json:"name" yaml:"name"`
	Signature     string       `json:"signature,omitempty" yaml:"signature,omitempty"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	Static        bool         `json:"static,omitempty" yaml:"static,omitempty"`
	Deprecated    *Deprecation `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	InheritedFrom string       `json:"inherited_from,omitempty" yaml:"inherited_from,omitempty"`
}

// Event is an event the element dispatches.
type Event struct {
	Name          string       `json:"name" yaml:"name"`
	Type          string       `json:"type,omitempty" yaml:"type,omitempty"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	Deprecated    *Deprecation `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	InheritedFrom string       `json:"inherited_from,omitempty" yaml:"inherited_from,omitempty"`
}

// Slot is a slot; the default slot has an empty name.
type Slot struct {
	Name              string       `json:"name" yaml:"name"`
	Description       string       `json:"description,omitempty" yaml:"description,omitempty"`
	PermittedTagNames []string     `json:"permitted_tag_names,omitempty" yaml:"permitted_tag_names,omitempty"`
	Deprecated        *Deprecation `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// CSSProperty is a CSS custom property.
type CSSProperty struct {
	Name        string       `json:"name" yaml:"name"`
	Syntax      string       `json:"syntax,omitempty" yaml:"syntax,omitempty"`
	Default     string       `json:"default,omitempty" yaml:"default,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Deprecated  *Deprecation `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// CSSPart is a shadow part.
type CSSPart struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Deprecated  *Deprecation `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// GlobalFeatures are augmentations of HTMLElement and its event map that
// apply to every element.
type GlobalFeatures struct {
	Properties []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	Methods    []Method   `json:"methods,omitempty" yaml:"methods,omitempty"`
	Events     []Event    `json:"events,omitempty" yaml:"events,omitempty"`
}

// Diagnostic is an analyzer message carried into the catalog.
type Diagnostic struct {
	File     string `json:"file" yaml:"file"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
	Severity string `json:"severity" yaml:"severity"` // "error", "warning"
	Message  string `json:"message" yaml:"message"`
}
