package catalog

import (
	"sort"
	"strings"
)

// ComponentSearchResult holds a component match with the reason it matched.
type ComponentSearchResult struct {
	Component   *Component
	MatchReason string
}

// QueryService provides read-only query methods over a loaded catalog.
type QueryService struct {
	Catalog *Catalog
	Index   *CatalogIndex
}

// NewQueryService creates a QueryService from a validated catalog and its index.
func NewQueryService(cat *Catalog, idx *CatalogIndex) *QueryService {
	return &QueryService{Catalog: cat, Index: idx}
}

// LoadAndQuery loads a catalog from file and returns a ready-to-use QueryService.
func LoadAndQuery(path string) (*QueryService, error) {
	cat, idx, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return NewQueryService(cat, idx), nil
}

// LoadAndQueryBytes loads a catalog from raw JSON bytes and returns a ready-to-use QueryService.
func LoadAndQueryBytes(data []byte) (*QueryService, error) {
	cat, idx, err := LoadFromBytes(data)
	if err != nil {
		return nil, err
	}
	return NewQueryService(cat, idx), nil
}

// ModuleSummary is a module path with the tag names it defines.
type ModuleSummary struct {
	Module string   `json:"module"`
	Tags   []string `json:"tags"`
}

// ListModules returns every module defining components, sorted by path.
func (q *QueryService) ListModules() []ModuleSummary {
	out := make([]ModuleSummary, 0, len(q.Index.ComponentsByModule))
	for module, comps := range q.Index.ComponentsByModule {
		m := ModuleSummary{Module: module}
		for _, c := range comps {
			m.Tags = append(m.Tags, c.TagName)
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })
	return out
}

// ListComponents returns components filtered by module and/or keyword.
// Both filters are optional (pass "" to skip). When both are provided, they combine with AND logic.
// The keyword matches case-insensitively against tag name, class name and description.
func (q *QueryService) ListComponents(module, keyword string) []Component {
	var candidates []*Component

	if module != "" {
		candidates = q.Index.ComponentsByModule[module]
	} else {
		candidates = make([]*Component, 0, len(q.Catalog.Components))
		for i := range q.Catalog.Components {
			candidates = append(candidates, &q.Catalog.Components[i])
		}
	}

	keyword = strings.ToLower(keyword)
	result := make([]Component, 0)

	for _, comp := range candidates {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(comp.TagName), keyword) &&
			!strings.Contains(strings.ToLower(comp.ClassName), keyword) &&
			!strings.Contains(strings.ToLower(comp.Description), keyword) {
			continue
		}
		result = append(result, *comp)
	}

	return result
}

// GetComponent looks up a component by tag name, falling back to its class
// name. The bool indicates whether the component was found.
func (q *QueryService) GetComponent(name string) (*Component, bool) {
	if comp, ok := q.Index.ComponentByTag[name]; ok {
		return comp, true
	}
	if comp, ok := q.Index.ComponentByClass[name]; ok {
		return comp, true
	}
	return nil, false
}

// GetComponentsByNames returns components matching the given tag or class
// names. Unknown names are silently skipped. Duplicates are removed.
func (q *QueryService) GetComponentsByNames(names []string) []*Component {
	seen := make(map[string]bool, len(names))
	result := make([]*Component, 0, len(names))

	for _, name := range names {
		comp, ok := q.GetComponent(name)
		if !ok || seen[comp.TagName] {
			continue
		}
		seen[comp.TagName] = true
		result = append(result, comp)
	}

	return result
}

// GetDiagnostics returns diagnostics, optionally filtered by file path
// suffix. Pass "" to return all.
func (q *QueryService) GetDiagnostics(file string) []Diagnostic {
	if file == "" {
		return q.Catalog.Diagnostics
	}
	result := make([]Diagnostic, 0)
	for _, d := range q.Catalog.Diagnostics {
		if strings.HasSuffix(d.File, file) {
			result = append(result, d)
		}
	}
	return result
}

// FindByEvent returns components dispatching the named event.
func (q *QueryService) FindByEvent(name string) []*Component {
	var out []*Component
	for i := range q.Catalog.Components {
		comp := &q.Catalog.Components[i]
		for _, e := range comp.Events {
			if e.Name == name {
				out = append(out, comp)
				break
			}
		}
	}
	return out
}

// SearchComponents performs a case-insensitive search across tag names,
// class names, descriptions, attributes, properties, events and slots.
// Returns matching components with the reason for the match.
func (q *QueryService) SearchComponents(query string) []ComponentSearchResult {
	query = strings.ToLower(query)
	if query == "" {
		return nil
	}

	var results []ComponentSearchResult
	for i := range q.Catalog.Components {
		comp := &q.Catalog.Components[i]
		if reason := matchReason(comp, query); reason != "" {
			results = append(results, ComponentSearchResult{Component: comp, MatchReason: reason})
		}
	}
	return results
}

func matchReason(comp *Component, query string) string {
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), query) }

	switch {
	case contains(comp.TagName):
		return "tag"
	case contains(comp.ClassName):
		return "class"
	case contains(comp.Description):
		return "description"
	}
	for _, a := range comp.Attributes {
		if contains(a.Name) {
			return "attribute:" + a.Name
		}
	}
	for _, p := range comp.Properties {
		if contains(p.Name) {
			return "property:" + p.Name
		}
	}
	for _, e := range comp.Events {
		if contains(e.Name) {
			return "event:" + e.Name
		}
	}
	for _, s := range comp.Slots {
		if s.Name != "" && contains(s.Name) {
			return "slot:" + s.Name
		}
	}
	return ""
}
