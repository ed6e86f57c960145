// Package scanner discovers source files under a directory, loads them into
// one program in parallel, runs the component analyzer over them and builds
// a catalog from the results.
package scanner

// ScanConfig configures which files a scan reads.
type ScanConfig struct {
	// Include glob patterns for file matching.
	Include []string
	// Exclude glob patterns.
	Exclude []string
}

// DefaultScanConfig returns the default scan configuration with
// scan-specific exclusions for test, story, and mock files.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Include: []string{
			"**/*.ts",
			"**/*.tsx",
			"**/*.js",
			"**/*.jsx",
			"**/*.mjs",
		},
		Exclude: []string{
			"node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			"coverage/**",
			"out/**",
			".vscode/**",
			".wcspec/**",
			// Scan-specific: skip test/story/mock files
			"**/*.test.*",
			"**/*.spec.*",
			"**/*.stories.*",
			"**/*.story.*",
			"__tests__/**",
			"**/__tests__/**",
			"**/__mocks__/**",
		},
	}
}

// ScanStats tracks scan performance metrics.
type ScanStats struct {
	FilesDiscovered    int
	FilesLoaded        int
	FilesFailed        int
	RegistrationSites  int
	ComponentsDetected int
	Diagnostics        int
	CacheHits          int
	DiscoveryTimeMs    int64
	LoadTimeMs         int64
	AnalysisTimeMs     int64
	CatalogBuildTimeMs int64
	TotalTimeMs        int64
}

// CatalogBuildConfig configures catalog generation.
type CatalogBuildConfig struct {
	Name    string // catalog name (--name or directory basename)
	Version string
	RootDir string // module paths are made relative to it

	// IncludeLibrary keeps components registered in node_modules or the
	// DOM library.
	IncludeLibrary bool

	// IncludeNonPublic keeps protected and private members.
	IncludeNonPublic bool
}
