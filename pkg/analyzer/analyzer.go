// Package analyzer discovers custom element declarations in JavaScript and
// TypeScript sources and merges the facts found by every supported
// authoring convention into one declaration per tag name.
package analyzer

import (
	"log/slog"
	"time"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/tsnode"
)

// Analyzer analyzes files of one program. It is not safe for concurrent use;
// the declaration cache is shared between calls.
type Analyzer struct {
	program *program.Program
	config  Config
	logger  *slog.Logger
	cache   *Cache
	flavors []Flavor
}

// New creates an analyzer over p.
func New(p *program.Program, cfg Config) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cache := cfg.Cache
	if cache == nil {
		cache = NewCache(0)
	}
	return &Analyzer{
		program: p,
		config:  cfg,
		logger:  logger,
		cache:   cache,
		flavors: DefaultFlavors(),
	}
}

// Program returns the program being analyzed.
func (a *Analyzer) Program() *program.Program {
	return a.program
}

// Cache returns the declaration cache.
func (a *Analyzer) Cache() *Cache {
	return a.cache
}

// AnalyzeFile returns the component definitions of f, with the global
// features and all class declarations when configured.
func (a *Analyzer) AnalyzeFile(f *program.SourceFile) *AnalyzerResult {
	start := time.Now()
	ctx := newContext(a.program, &a.config, a.logger, a.cache, a.flavors)

	dc := newDefinitionCollector(ctx)
	dc.scan(f, f.IsLibrary)
	if a.config.AnalyzeDependencies {
		for _, dep := range a.program.Dependencies(f) {
			if dep.IsLibrary && dep != f {
				dc.scan(dep, true)
			}
		}
	}
	if a.config.AnalyzeDefaultLibrary {
		if lib := a.program.DefaultLib(); lib != nil && lib != f {
			dc.scan(lib, true)
		}
	}
	defs := dc.build()

	for _, d := range defs {
		if d.FromLibrary || ValidTagName(d.TagName) {
			continue
		}
		var at Site
		if len(d.TagNameNodes) > 0 {
			at = Site{File: d.File, Node: d.TagNameNodes[0]}
		}
		ctx.Report(at, SeverityWarning, "invalid custom element name '%s'", d.TagName)
	}

	result := &AnalyzerResult{SourceFile: f, ComponentDefinitions: defs}
	if a.config.AnalyzeGlobalFeatures {
		result.GlobalFeatures = a.globalFeatures(ctx, f)
	}
	if a.config.AnalyzeAllDeclarations {
		result.Declarations = a.allDeclarations(ctx, f)
	}
	result.Diagnostics = ctx.diagnostics

	a.logger.Debug("analyzed file",
		"path", f.Path,
		"definitions", len(defs),
		"diagnostics", len(result.Diagnostics),
		"duration", time.Since(start))
	return result
}

// AnalyzeFiles analyzes each file in order.
func (a *Analyzer) AnalyzeFiles(files []*program.SourceFile) []*AnalyzerResult {
	out := make([]*AnalyzerResult, 0, len(files))
	for _, f := range files {
		out = append(out, a.AnalyzeFile(f))
	}
	return out
}

// globalFeatures collects augmentations of HTMLElement and the global event
// map made by f.
func (a *Analyzer) globalFeatures(ctx *Context, f *program.SourceFile) *FeatureSet {
	var found []Feature
	if root := f.Root(); root != nil {
		discoverTree(ctx, ctx.flavors, Site{File: f, Node: root}, discoverGlobalFeatures, &found)
	}
	set := &FeatureSet{}
	for _, feat := range found {
		if !a.config.featureEnabled(feat.FeatureKind()) {
			continue
		}
		if refine(ctx, ctx.flavors, feat) {
			set.Add(feat)
		}
	}
	merged := MergeFeatureSets(set)
	return &merged
}

// allDeclarations walks every named class of f. Anonymous classes are
// skipped.
func (a *Analyzer) allDeclarations(ctx *Context, f *program.SourceFile) []*ComponentDeclaration {
	root := f.Root()
	if root == nil {
		return nil
	}
	var out []*ComponentDeclaration
	tsnode.Walk(root, func(n *ts.Node) bool {
		if !program.IsClassNode(n) {
			return true
		}
		s := Site{File: f, Node: n}
		if declarationName(s) == "" {
			return true
		}
		if d := ctx.walkDeclaration(s, nil); d != nil {
			out = append(out, d)
		}
		return true
	})
	return out
}
