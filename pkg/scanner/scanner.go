package scanner

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gnana997/wcspec/pkg/analyzer"
	"github.com/gnana997/wcspec/pkg/catalog"
	"github.com/gnana997/wcspec/pkg/parser"
	"github.com/gnana997/wcspec/pkg/program"
)

// Scanner orchestrates the scan pipeline: discovery, parallel loading,
// analysis and catalog build.
type Scanner struct {
	pm          *parser.ParserManager
	analyzerCfg analyzer.Config
	log         *slog.Logger
}

// NewScanner creates a scanner. The parser manager is shared by every run;
// each run gets a fresh program and declaration cache.
func NewScanner(cfg analyzer.Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Logger = logger
	return &Scanner{
		pm:          parser.NewParserManager(logger),
		analyzerCfg: cfg,
		log:         logger,
	}
}

// Run discovers files below rootDir and returns the resulting catalog.
func (s *Scanner) Run(rootDir string, cfg ScanConfig, buildCfg CatalogBuildConfig) (*catalog.Catalog, *ScanStats, error) {
	start := time.Now()
	files, err := DiscoverFiles(rootDir, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("discovery failed: %w", err)
	}
	discoveryMs := time.Since(start).Milliseconds()
	if buildCfg.RootDir == "" {
		buildCfg.RootDir = rootDir
	}
	cat, stats, err := s.RunFiles(files, buildCfg)
	if stats != nil {
		stats.DiscoveryTimeMs = discoveryMs
		stats.TotalTimeMs = time.Since(start).Milliseconds()
	}
	return cat, stats, err
}

// RunFiles analyzes an explicit file list and returns the resulting catalog.
func (s *Scanner) RunFiles(files []string, buildCfg CatalogBuildConfig) (*catalog.Catalog, *ScanStats, error) {
	totalStart := time.Now()
	stats := ScanStats{FilesDiscovered: len(files)}

	s.log.Info("discovery complete", "files", len(files))

	if len(files) == 0 {
		stats.TotalTimeMs = time.Since(totalStart).Milliseconds()
		return nil, &stats, fmt.Errorf("no source files found")
	}

	p, err := program.New(program.Config{Logger: s.log, ParserManager: s.pm})
	if err != nil {
		return nil, &stats, fmt.Errorf("failed to create program: %w", err)
	}
	defer p.Close()

	// Phase 1: parallel load
	loadStart := time.Now()
	loaded, failed := LoadAll(files, p, s.log)
	stats.FilesLoaded = len(loaded)
	stats.FilesFailed = failed
	for _, l := range loaded {
		stats.RegistrationSites += l.Registrations
	}
	stats.LoadTimeMs = time.Since(loadStart).Milliseconds()

	s.log.Info("load complete",
		"loaded", len(loaded), "failed", failed,
		"registrations", stats.RegistrationSites, "ms", stats.LoadTimeMs)

	// Phase 2: analysis, sequential with one shared cache
	analysisStart := time.Now()
	cfg := s.analyzerCfg
	cfg.Cache = analyzer.NewCache(0)
	a := analyzer.New(p, cfg)

	sourceFiles := make([]*program.SourceFile, len(loaded))
	for i, l := range loaded {
		sourceFiles[i] = l.File
	}
	results := a.AnalyzeFiles(sourceFiles)
	stats.CacheHits = a.Cache().Stats().Hits
	stats.AnalysisTimeMs = time.Since(analysisStart).Milliseconds()

	s.log.Info("analysis complete",
		"files", len(results), "cache_hits", stats.CacheHits, "ms", stats.AnalysisTimeMs)

	// Phase 3: catalog build
	buildStart := time.Now()
	cat, err := BuildCatalog(results, buildCfg)
	stats.ComponentsDetected = len(cat.Components)
	stats.Diagnostics = len(cat.Diagnostics)
	stats.CatalogBuildTimeMs = time.Since(buildStart).Milliseconds()
	stats.TotalTimeMs = time.Since(totalStart).Milliseconds()

	s.log.Info("catalog build complete",
		"catalog_components", len(cat.Components), "ms", stats.CatalogBuildTimeMs)

	return cat, &stats, err
}

// Close releases parser resources.
func (s *Scanner) Close() {
	s.pm.Close()
}
