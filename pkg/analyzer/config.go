package analyzer

import (
	"log/slog"
)

// DefaultExcludedDeclarationNames are platform and framework base classes
// that are never described as if they were components.
var DefaultExcludedDeclarationNames = []string{
	"HTMLElement", "LitElement", "ReactiveElement", "Element", "Node", "EventTarget",
}

// Config configures an Analyzer.
type Config struct {
	// Logger for structured logging. If nil, uses slog.Default().
	Logger *slog.Logger

	// Features restricts which fact kinds are collected. Empty means all.
	Features []FeatureKind

	// AnalyzeDependencies walks declarations located in node_modules and
	// reports the registrations of library files the analyzed file imports.
	AnalyzeDependencies bool

	// AnalyzeDefaultLibrary walks declarations of the embedded DOM library
	// and reports its built-in tag names.
	AnalyzeDefaultLibrary bool

	// AnalyzeGlobalFeatures collects HTMLElement and event map augmentations.
	AnalyzeGlobalFeatures bool

	// AnalyzeAllDeclarations also reports named classes that are never
	// registered as a custom element.
	AnalyzeAllDeclarations bool

	// ExcludedDeclarationNames are visited as leaves: their name is kept in
	// heritage clauses but no facts are collected. Nil uses
	// DefaultExcludedDeclarationNames; an empty slice excludes nothing.
	ExcludedDeclarationNames []string

	// Cache memoizes declarations across AnalyzeFile calls. Nil creates one
	// per Analyzer.
	Cache *Cache
}

func (c *Config) featureEnabled(k FeatureKind) bool {
	if len(c.Features) == 0 {
		return true
	}
	for _, f := range c.Features {
		if f == k {
			return true
		}
	}
	return false
}

func (c *Config) excluded(name string) bool {
	names := c.ExcludedDeclarationNames
	if names == nil {
		names = DefaultExcludedDeclarationNames
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
