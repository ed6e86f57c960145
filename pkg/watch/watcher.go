// Package watch re-runs an analysis when source files below a directory
// change.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/wcspec/pkg/scanner"
)

// ChangeFunc receives the absolute paths changed since the last call.
type ChangeFunc func(changed []string)

// Options configures a Watcher.
type Options struct {
	// Debounce groups rapid changes into one callback. Default: 200ms.
	Debounce time.Duration

	// Scan decides which paths are source files. Zero value uses
	// scanner.DefaultScanConfig().
	Scan scanner.ScanConfig

	Logger *slog.Logger
}

// Watcher watches a directory tree and calls back once per burst of
// changes.
//
// **Usage:**
//
//	w, err := watch.New(root, func(changed []string) { rebuild() }, watch.Options{})
//	if err != nil {
//	    return err
//	}
//	if err := w.Start(); err != nil {
//	    return err
//	}
//	defer w.Stop()
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	onChange ChangeFunc
	logger   *slog.Logger
	options  Options

	// Debouncing
	pending map[string]struct{}
	timer   *time.Timer
	pendMu  sync.Mutex

	// Lifecycle
	stopChan chan struct{}
	done     chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// New creates a watcher over root.
func New(root string, onChange ChangeFunc, options Options) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if options.Debounce <= 0 {
		options.Debounce = 200 * time.Millisecond
	}
	if len(options.Scan.Include) == 0 && len(options.Scan.Exclude) == 0 {
		options.Scan = scanner.DefaultScanConfig()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		watcher:  fw,
		root:     absRoot,
		onChange: onChange,
		logger:   logger,
		options:  options,
		pending:  make(map[string]struct{}),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start adds watches for every non-excluded directory and begins
// processing events in the background.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.started = true

	w.logger.Info("file watcher started", "root", w.root)
	go w.eventLoop()
	return nil
}

// Stop stops the watcher and drops pending changes. Safe to call more than
// once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.pendMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = make(map[string]struct{})
	w.pendMu.Unlock()

	err := w.watcher.Close()
	if w.started {
		<-w.done
	}
	w.logger.Info("file watcher stopped")
	return err
}

func (w *Watcher) addTree(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Continue on error
		}
		if !d.IsDir() || path == dir {
			return nil
		}
		if w.excluded(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.excluded(path) {
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	if !w.included(path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "file", path)
	w.schedule(path)
}

// schedule records a change and (re)starts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.pendMu.Lock()
	defer w.pendMu.Unlock()

	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.options.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendMu.Lock()
	if len(w.pending) == 0 {
		w.pendMu.Unlock()
		return
	}
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]struct{})
	w.pendMu.Unlock()

	sort.Strings(changed)
	w.logger.Debug("changes detected", "files", len(changed))
	if w.onChange != nil {
		w.onChange(changed)
	}
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) excluded(path string) bool {
	rel := w.rel(path)
	for _, pattern := range w.options.Scan.Exclude {
		if m, _ := doublestar.Match(pattern, rel); m {
			return true
		}
	}
	return false
}

func (w *Watcher) included(path string) bool {
	if len(w.options.Scan.Include) == 0 {
		return true
	}
	rel := w.rel(path)
	for _, pattern := range w.options.Scan.Include {
		if m, _ := doublestar.Match(pattern, rel); m {
			return true
		}
	}
	return false
}

// Stats reports watcher state.
type Stats struct {
	PendingChanges int
	IsRunning      bool
}

// Stats returns current watcher statistics.
func (w *Watcher) Stats() Stats {
	w.pendMu.Lock()
	pending := len(w.pending)
	w.pendMu.Unlock()

	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	return Stats{PendingChanges: pending, IsRunning: running}
}
