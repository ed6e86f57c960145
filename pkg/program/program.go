// Package program is the semantic model the analyzer works against: a set of
// parsed source files, module resolution between them, and a Checker that
// resolves identifiers to declarations and nodes to types.
//
// It is a best-effort binder over tree-sitter trees, not a type checker.
// Files are loaded lazily as module resolution reaches them.
package program

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/wcspec/pkg/parser"
	"github.com/gnana997/wcspec/pkg/parser/queries"
	"github.com/gnana997/wcspec/pkg/util"
)

// Config configures a Program.
type Config struct {
	// Logger for structured logging. If nil, uses slog.Default().
	Logger *slog.Logger

	// ParserManager is shared when set; otherwise the program creates and
	// owns one.
	ParserManager *parser.ParserManager

	// FileCache configures the mmap cache used to read files from disk.
	FileCache *util.FileCacheConfig

	// ResolveCacheSize bounds the module resolution cache. 0 uses 4096.
	ResolveCacheSize int

	// NoDefaultLib skips loading the embedded DOM declarations.
	NoDefaultLib bool
}

type resolveKey struct {
	dir  string
	spec string
}

// Program holds every loaded source file. Loading is safe for concurrent
// use; the Checker is meant to be used from one goroutine at a time.
type Program struct {
	logger *slog.Logger

	pm       *parser.ParserManager
	ownsPM   bool
	qm       *queries.QueryManager
	fc       util.FileCache
	resolved *lru.Cache[resolveKey, string]

	mu      sync.RWMutex
	files   map[string]*SourceFile
	roots   []*SourceFile
	retired []*SourceFile
	version int

	defaultLib *SourceFile
	checker    *Checker
}

// New creates a Program. It must be closed via Close().
func New(cfg Config) (*Program, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	size := cfg.ResolveCacheSize
	if size <= 0 {
		size = 4096
	}
	resolved, err := lru.New[resolveKey, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolve cache: %w", err)
	}

	fcCfg := util.DefaultFileCacheConfig()
	if cfg.FileCache != nil {
		copied := *cfg.FileCache
		fcCfg = &copied
	}
	fcCfg.Logger = logger

	p := &Program{
		logger:   logger,
		pm:       cfg.ParserManager,
		fc:       util.NewFileCache(fcCfg),
		resolved: resolved,
		files:    make(map[string]*SourceFile),
	}
	if p.pm == nil {
		p.pm = parser.NewParserManager(logger)
		p.ownsPM = true
	}
	p.qm = queries.NewQueryManager(p.pm, logger)
	p.checker = &Checker{program: p}

	if !cfg.NoDefaultLib {
		lib, err := p.parse(DefaultLibPath, defaultLibSource, fileFlags{defaultLib: true})
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to load default library: %w", err)
		}
		p.defaultLib = lib
		p.files[lib.Path] = lib
	}

	return p, nil
}

// Checker returns the program's checker.
func (p *Program) Checker() *Checker {
	return p.checker
}

// QueryManager exposes the compiled query cache, shared with the scanner.
func (p *Program) QueryManager() *queries.QueryManager {
	return p.qm
}

// DefaultLib returns the embedded DOM declaration file, or nil when disabled.
func (p *Program) DefaultLib() *SourceFile {
	return p.defaultLib
}

// AddFile loads, parses and registers a file from disk as an analysis root.
// Adding the same path twice returns the already loaded file.
func (p *Program) AddFile(path string) (*SourceFile, error) {
	f, err := p.load(path)
	if err != nil {
		return nil, err
	}
	p.addRoot(f)
	return f, nil
}

// AddSource registers in-memory source under path as an analysis root. An
// existing file with the same path is replaced.
func (p *Program) AddSource(path string, src []byte) (*SourceFile, error) {
	path = cleanPath(path)
	f, err := p.parse(path, src, flagsFor(path))
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if old, ok := p.files[path]; ok {
		// Analyzer caches may still hold nodes of the old tree.
		p.retired = append(p.retired, old)
		for i, r := range p.roots {
			if r == old {
				p.roots = append(p.roots[:i], p.roots[i+1:]...)
				break
			}
		}
	}
	p.files[path] = f
	p.version++
	p.mu.Unlock()

	// Negative resolutions may now succeed.
	p.resolved.Purge()
	p.addRoot(f)
	return f, nil
}

func (p *Program) addRoot(f *SourceFile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.roots {
		if r == f {
			return
		}
	}
	p.roots = append(p.roots, f)
}

// File returns a loaded file by path, or nil.
func (p *Program) File(path string) *SourceFile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.files[cleanPath(path)]
}

// Roots returns the files added through AddFile/AddSource, in insertion order.
func (p *Program) Roots() []*SourceFile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*SourceFile(nil), p.roots...)
}

// Files returns every loaded file sorted by path, including dependencies
// and the default library.
func (p *Program) Files() []*SourceFile {
	p.mu.RLock()
	out := make([]*SourceFile, 0, len(p.files))
	for _, f := range p.files {
		out = append(out, f)
	}
	p.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (p *Program) currentVersion() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

// load returns the file at path, reading and parsing it on first use.
func (p *Program) load(path string) (*SourceFile, error) {
	path = cleanPath(path)

	p.mu.RLock()
	f, ok := p.files[path]
	p.mu.RUnlock()
	if ok {
		return f, nil
	}

	if !parser.IsSupportedFile(path) {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	src, err := p.fc.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f, err = p.parse(path, src, flagsFor(path))
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.files[path]; ok {
		f.close()
		return existing, nil
	}
	p.files[path] = f
	p.version++

	p.logger.Debug("loaded source file",
		"path", path,
		"library", f.IsLibrary,
		"declaration", f.IsDeclaration)
	return f, nil
}

type fileFlags struct {
	library    bool
	defaultLib bool
}

func flagsFor(path string) fileFlags {
	return fileFlags{library: isLibraryPath(path)}
}

func isLibraryPath(path string) bool {
	return strings.Contains(filepath.ToSlash(path), "/node_modules/")
}

func (p *Program) parse(path string, src []byte, flags fileFlags) (*SourceFile, error) {
	lang := parser.DetectLanguage(path)
	isTSX := parser.IsTSXFile(path)

	tree, err := p.pm.Parse(src, lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	f := &SourceFile{
		Path:          path,
		Source:        src,
		Lang:          lang,
		IsTSX:         isTSX,
		IsDeclaration: parser.IsDeclarationFile(path),
		IsLibrary:     flags.library,
		IsDefaultLib:  flags.defaultLib,
		tree:          tree,
	}
	f.isModule = detectModule(tree.RootNode())

	specs, err := p.qm.ModuleSpecifiers(tree, lang, isTSX, src)
	if err != nil {
		p.logger.Debug("module specifier query failed", "path", path, "error", err)
	}
	f.Specifiers = specs

	return f, nil
}

// detectModule reports whether a file has top-level import or export
// statements. Files without them are scripts whose declarations are global.
func detectModule(root *ts.Node) bool {
	for i := uint(0); i < root.NamedChildCount(); i++ {
		switch root.NamedChild(i).Kind() {
		case "import_statement", "export_statement":
			return true
		}
	}
	return false
}

// Dependencies resolves every module specifier of f, loading the targets.
// Unresolvable specifiers are skipped.
func (p *Program) Dependencies(f *SourceFile) []*SourceFile {
	var deps []*SourceFile
	for _, spec := range f.Specifiers {
		if d := p.ResolveModule(f, spec); d != nil {
			deps = append(deps, d)
		}
	}
	return deps
}

// Stats reports loader metrics.
type Stats struct {
	Files        int
	Roots        int
	Libraries    int
	FileCache    util.FileCacheStats
	ParserStats  parser.ParserStats
	ResolveCache int
}

// Stats returns current loader metrics.
func (p *Program) Stats() Stats {
	p.mu.RLock()
	s := Stats{Files: len(p.files), Roots: len(p.roots)}
	for _, f := range p.files {
		if f.IsLibrary {
			s.Libraries++
		}
	}
	p.mu.RUnlock()

	s.FileCache = p.fc.Stats()
	s.ParserStats = p.pm.GetStats()
	s.ResolveCache = p.resolved.Len()
	return s
}

// Close releases trees, queries, mapped files and, when owned, the parser
// manager.
func (p *Program) Close() error {
	p.mu.Lock()
	for _, f := range p.files {
		f.close()
	}
	for _, f := range p.retired {
		f.close()
	}
	p.files = make(map[string]*SourceFile)
	p.roots = nil
	p.retired = nil
	p.mu.Unlock()

	p.qm.Close()
	err := p.fc.Close()
	if p.ownsPM {
		p.pm.Close()
	}
	return err
}

func cleanPath(path string) string {
	if strings.HasPrefix(path, DefaultLibPath) {
		return path
	}
	return filepath.Clean(path)
}
