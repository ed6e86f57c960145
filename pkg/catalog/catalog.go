package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog holds every component found by one analysis run.
type Catalog struct {
	Name        string          `json:"name" yaml:"name"`
	Version     string          `json:"version" yaml:"version"`
	Source      string          `json:"source,omitempty" yaml:"source,omitempty"`
	Components  []Component     `json:"components" yaml:"components"`
	Global      *GlobalFeatures `json:"global,omitempty" yaml:"global,omitempty"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`

	// Declarations are classes never registered under a tag name. Their
	// TagName is empty.
	Declarations []Component `json:"declarations,omitempty" yaml:"declarations,omitempty"`
}

// CatalogIndex provides O(1) lookups into the catalog.
// Built during LoadFromFile after validation passes.
type CatalogIndex struct {
	// ComponentByTag maps tag name -> *Component.
	ComponentByTag map[string]*Component

	// ComponentByClass maps class name -> *Component. Classes registered
	// under several tags map to the first one.
	ComponentByClass map[string]*Component

	// ComponentsByModule maps module path -> []*Component.
	ComponentsByModule map[string][]*Component
}

var validSeverities = map[string]bool{
	"error":   true,
	"warning": true,
}

// Validate checks the catalog for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func (c *Catalog) Validate() []error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, fmt.Errorf("catalog name is required"))
	}
	if c.Version == "" {
		errs = append(errs, fmt.Errorf("catalog version is required"))
	}

	tags := make(map[string]bool, len(c.Components))
	for i, comp := range c.Components {
		if comp.TagName == "" {
			errs = append(errs, fmt.Errorf("components[%d]: tag_name is required", i))
			continue
		}
		if tags[comp.TagName] {
			errs = append(errs, fmt.Errorf("component %q: duplicate tag name", comp.TagName))
			continue
		}
		tags[comp.TagName] = true

		attrs := make(map[string]bool, len(comp.Attributes))
		for j, a := range comp.Attributes {
			if a.Name == "" {
				errs = append(errs, fmt.Errorf("component %q attributes[%d]: name is required", comp.TagName, j))
				continue
			}
			if attrs[strings.ToLower(a.Name)] {
				errs = append(errs, fmt.Errorf("component %q: duplicate attribute %q", comp.TagName, a.Name))
			}
			attrs[strings.ToLower(a.Name)] = true
		}
		for j, p := range comp.Properties {
			if p.Name == "" {
				errs = append(errs, fmt.Errorf("component %q properties[%d]: name is required", comp.TagName, j))
			}
		}
		for j, e := range comp.Events {
			if e.Name == "" {
				errs = append(errs, fmt.Errorf("component %q events[%d]: name is required", comp.TagName, j))
			}
		}
	}

	for i, d := range c.Diagnostics {
		if !validSeverities[d.Severity] {
			errs = append(errs, fmt.Errorf("diagnostics[%d]: invalid severity %q (must be error/warning)", i, d.Severity))
		}
	}

	return errs
}

// BuildIndex creates lookup maps for fast access.
// Should be called after Validate() passes.
func (c *Catalog) BuildIndex() *CatalogIndex {
	idx := &CatalogIndex{
		ComponentByTag:     make(map[string]*Component, len(c.Components)),
		ComponentByClass:   make(map[string]*Component, len(c.Components)),
		ComponentsByModule: make(map[string][]*Component),
	}

	for i := range c.Components {
		comp := &c.Components[i]
		idx.ComponentByTag[comp.TagName] = comp
		if comp.ClassName != "" {
			if _, ok := idx.ComponentByClass[comp.ClassName]; !ok {
				idx.ComponentByClass[comp.ClassName] = comp
			}
		}
		idx.ComponentsByModule[comp.Module] = append(idx.ComponentsByModule[comp.Module], comp)
	}

	return idx
}

// HasErrors reports whether any diagnostic has error severity.
func (c *Catalog) HasErrors() bool {
	for _, d := range c.Diagnostics {
		if d.Severity == "error" {
			return true
		}
	}
	return false
}

// LoadFromFile loads a catalog from a JSON or YAML file (by extension),
// validates it, and builds the index.
func LoadFromFile(path string) (*Catalog, *CatalogIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadFromYAML(data)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a catalog from raw JSON bytes, validates it, and builds the index.
func LoadFromBytes(data []byte) (*Catalog, *CatalogIndex, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	return finishLoad(&catalog)
}

// LoadFromYAML parses a catalog from YAML bytes.
func LoadFromYAML(data []byte) (*Catalog, *CatalogIndex, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return finishLoad(&catalog)
}

func finishLoad(catalog *Catalog) (*Catalog, *CatalogIndex, error) {
	if errs := catalog.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("catalog validation failed: %w", errors.Join(errs...))
	}
	return catalog, catalog.BuildIndex(), nil
}
