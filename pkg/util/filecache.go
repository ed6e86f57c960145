// FileCache provides memory-mapped read access to source files.
//
// The program loader reads every analyzed file (and every dependency it
// follows) through a FileCache so repeated module resolution against the same
// path never re-reads the file. Tree-sitter trees keep referring to the
// returned bytes, so the cache must outlive every tree built from it.
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// FileCache provides file access backed by read-only memory mappings.
//
// Thread-safe: multiple goroutines can call methods concurrently.
type FileCache interface {
	// Get returns the mapped file, loading it on first access.
	Get(filePath string) (*MappedFile, error)

	// Read returns the file contents. The slice aliases the mapping and is
	// valid until Close.
	Read(filePath string) ([]byte, error)

	// Size returns the number of cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files. Slices previously returned by Read become
	// invalid.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of files kept mapped. 0 means unlimited.
	MaxFiles int

	// MaxMemoryMB bounds the mapped address space. 0 means unlimited.
	MaxMemoryMB int

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns limits suitable for a component library plus
// the declaration files it pulls in from node_modules.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:    20000,
		MaxMemoryMB: 2048,
	}
}

// MappedFile represents a memory-mapped file.
type MappedFile struct {
	// Path is the path the file was requested under.
	Path string

	// Data is the mapped region (or the fallback buffer). Nil for empty files.
	Data mmap.MMap

	// file is kept open until Close. Nil for fallback entries.
	file *os.File

	// Size is the file size in bytes.
	Size int64

	// mapped is false when Data is a plain heap buffer.
	mapped bool
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesLoaded   int64
	FilesCached   int
	CacheHits     int64
	CacheMisses   int64
	MmapFailures  int64
	TotalMappedMB float64
}

// NewFileCache creates a new FileCache. A nil config uses DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &fileCacheImpl{
		config: config,
		cache:  make(map[string]*MappedFile),
		logger: logger,
	}
}

type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	cache map[string]*MappedFile
	bytes int64
	mu    sync.RWMutex

	stats   FileCacheStats
	statsMu sync.Mutex
}

// Get returns the mapped file or loads it on first access.
func (fc *fileCacheImpl) Get(filePath string) (*MappedFile, error) {
	fc.mu.RLock()
	if mf, ok := fc.cache[filePath]; ok {
		fc.mu.RUnlock()
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Another goroutine may have loaded it while we waited for the lock.
	if mf, ok := fc.cache[filePath]; ok {
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}
	fc.record(func(s *FileCacheStats) { s.CacheMisses++ })

	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%q is a directory", filePath)
	}
	if err := fc.checkLimitsLocked(stat.Size()); err != nil {
		return nil, err
	}

	mf, err := fc.loadFile(filePath, stat.Size())
	if err != nil {
		return nil, err
	}

	fc.cache[filePath] = mf
	fc.bytes += mf.Size
	fc.record(func(s *FileCacheStats) { s.FilesLoaded++ })
	return mf, nil
}

// Read returns the file contents.
func (fc *fileCacheImpl) Read(filePath string) ([]byte, error) {
	mf, err := fc.Get(filePath)
	if err != nil {
		return nil, err
	}
	if len(mf.Data) == 0 {
		return []byte{}, nil
	}
	return mf.Data, nil
}

// checkLimitsLocked verifies that adding a file of newSize bytes stays within
// the configured limits. Must be called while holding mu.Lock.
func (fc *fileCacheImpl) checkLimitsLocked(newSize int64) error {
	if fc.config.MaxFiles > 0 && len(fc.cache) >= fc.config.MaxFiles {
		return fmt.Errorf("file cache limit reached: %d files (limit: %d)",
			len(fc.cache), fc.config.MaxFiles)
	}
	if fc.config.MaxMemoryMB > 0 {
		limit := int64(fc.config.MaxMemoryMB) * 1024 * 1024
		if fc.bytes+newSize > limit {
			return fmt.Errorf("file cache memory limit reached: %d + %d bytes (limit: %d MB)",
				fc.bytes, newSize, fc.config.MaxMemoryMB)
		}
	}
	return nil
}

// loadFile maps a file read-only, falling back to os.ReadFile when mmap fails.
func (fc *fileCacheImpl) loadFile(filePath string, size int64) (*MappedFile, error) {
	if size == 0 {
		return &MappedFile{Path: filePath}, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		fc.logger.Warn("mmap failed, using fallback", "file", filePath, "error", err)
		fc.record(func(s *FileCacheStats) { s.MmapFailures++ })

		buf, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed (%v) and read failed for %q: %w", err, filePath, readErr)
		}
		return &MappedFile{Path: filePath, Data: mmap.MMap(buf), Size: int64(len(buf))}, nil
	}

	return &MappedFile{
		Path:   filePath,
		Data:   data,
		file:   file,
		Size:   int64(len(data)),
		mapped: true,
	}, nil
}

// Size returns number of currently cached files.
func (fc *fileCacheImpl) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.cache)
}

// Stats returns current cache metrics.
func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.mu.RLock()
	cached := len(fc.cache)
	mappedMB := float64(fc.bytes) / (1024 * 1024)
	fc.mu.RUnlock()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()
	stats := fc.stats
	stats.FilesCached = cached
	stats.TotalMappedMB = mappedMB
	return stats
}

// Close unmaps all files and releases descriptors.
func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.cache {
		if mf.mapped {
			if err := mf.Data.Unmap(); err != nil {
				errs = append(errs, fmt.Errorf("unmap %q: %w", path, err))
			}
		}
		if mf.file != nil {
			if err := mf.file.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %q: %w", path, err))
			}
		}
	}
	fc.cache = make(map[string]*MappedFile)
	fc.bytes = 0

	fc.logger.Debug("file cache closed",
		"files_loaded", fc.stats.FilesLoaded,
		"cache_hits", fc.stats.CacheHits,
		"mmap_failures", fc.stats.MmapFailures)

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

func (fc *fileCacheImpl) record(update func(*FileCacheStats)) {
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}
