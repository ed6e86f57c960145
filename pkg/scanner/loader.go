package scanner

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/gnana997/wcspec/pkg/program"
	"github.com/gnana997/wcspec/pkg/util"
)

// LoadedFile is a parsed analysis root with its likely registration count.
type LoadedFile struct {
	File          *program.SourceFile
	Registrations int
}

// LoadAll adds each file to p in parallel and counts the registration
// sites of every loaded file. Results are sorted by path. Errors on
// individual files are logged but don't stop the pipeline.
func LoadAll(files []string, p *program.Program, logger *slog.Logger) ([]LoadedFile, int) {
	if len(files) == 0 {
		return nil, 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	numWorkers := util.GetOptimalPoolSize()
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	paths := make(chan string, numWorkers*2)
	type resultOrError struct {
		result LoadedFile
		err    error
		file   string
	}
	results := make(chan resultOrError, numWorkers)

	// Start workers.
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				f, err := p.AddFile(path)
				if err != nil {
					results <- resultOrError{err: err, file: path}
					continue
				}
				results <- resultOrError{result: LoadedFile{File: f, Registrations: countRegistrations(p, f, logger)}}
			}
		}()
	}

	// Submit jobs.
	go func() {
		for _, f := range files {
			paths <- f
		}
		close(paths)
		wg.Wait()
		close(results)
	}()

	// Collect results.
	var loaded []LoadedFile
	failed := 0
	for r := range results {
		if r.err != nil {
			logger.Warn("load failed", "file", r.file, "error", r.err)
			failed++
			continue
		}
		loaded = append(loaded, r.result)
	}

	sort.Slice(loaded, func(i, j int) bool { return loaded[i].File.Path < loaded[j].File.Path })
	return loaded, failed
}

func countRegistrations(p *program.Program, f *program.SourceFile, logger *slog.Logger) int {
	sites, err := p.QueryManager().FindRegistrations(f.Tree(), f.Lang, f.IsTSX, f.Source)
	if err != nil {
		logger.Debug("registration query failed", "file", f.Path, "error", err)
		return 0
	}
	return len(sites)
}
