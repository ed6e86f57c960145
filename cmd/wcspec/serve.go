package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/gnana997/wcspec/pkg/catalog"
	mcpserver "github.com/gnana997/wcspec/pkg/mcp"
	"github.com/gnana997/wcspec/pkg/mcplog"
	"github.com/gnana997/wcspec/pkg/scanner"
	"github.com/gnana997/wcspec/pkg/watch"
)

var serveFlagKeys = map[string]string{
	"catalog":  "serve.catalog",
	"dir":      "serve.dir",
	"watch":    "serve.watch",
	"log-file": "serve.log_file",
	"name":     "output.name",
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Serve a component catalog to MCP clients over stdin/stdout.

The catalog is either loaded from a file written by "wcspec analyze"
(--catalog) or built by analyzing a directory (--dir, default "."). With
--watch the directory is re-analyzed whenever a source file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, withPersistent(serveFlagKeys, analyzerFlagKeys)); err != nil {
				return err
			}
			return a.runServe()
		},
	}
	f := cmd.Flags()
	f.String("catalog", "", "Serve a catalog file (.json, .yaml)")
	f.String("dir", "", "Analyze this directory and serve the result")
	f.Bool("watch", false, "Re-analyze --dir when files change")
	f.String("log-file", "", "Append one JSON line per tool call to this file")
	f.String("name", "", "Catalog name (default: directory name)")
	addAnalyzerFlags(cmd)
	return cmd
}

func (a *app) runServe() error {
	sc := a.cfg.Serve
	if sc.Catalog != "" && sc.Dir != "" {
		return fmt.Errorf("--catalog and --dir are mutually exclusive")
	}
	if sc.Catalog != "" && sc.Watch {
		return fmt.Errorf("--watch requires --dir")
	}

	callLog, err := mcplog.NewLogger(sc.LogFile)
	if err != nil {
		return err
	}
	defer callLog.Close()

	if sc.Catalog != "" {
		qs, err := catalog.LoadAndQuery(sc.Catalog)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		return mcpserver.NewServer(qs, callLog).ServeStdio()
	}

	dir := sc.Dir
	if dir == "" {
		dir = "."
	}
	s, err := a.newScanner()
	if err != nil {
		return err
	}
	defer s.Close()

	qs, err := a.scanQuery(s, dir)
	if err != nil {
		return err
	}
	srv := mcpserver.NewServer(qs, callLog)

	if sc.Watch {
		var mu sync.Mutex
		w, err := watch.New(dir, func(changed []string) {
			mu.Lock()
			defer mu.Unlock()
			qs, err := a.scanQuery(s, dir)
			if err != nil {
				a.logger.Error("re-analysis failed", "error", err)
				return
			}
			srv.SetQueryService(qs)
			a.logger.Info("catalog reloaded", "changed", len(changed))
		}, watch.Options{Debounce: sc.Debounce, Scan: a.scanConfig(), Logger: a.logger})
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	return srv.ServeStdio()
}

// scanQuery analyzes dir and indexes the result for querying. A catalog that
// fails validation is still served.
func (a *app) scanQuery(s *scanner.Scanner, dir string) (*catalog.QueryService, error) {
	cat, stats, err := s.Run(dir, a.scanConfig(), a.buildConfig(dir))
	if cat == nil {
		return nil, err
	}
	if err != nil {
		a.logger.Warn("catalog validation failed", "error", err)
	}
	a.logger.Info("catalog built",
		"components", stats.ComponentsDetected, "diagnostics", stats.Diagnostics, "ms", stats.TotalTimeMs)
	return catalog.NewQueryService(cat, cat.BuildIndex()), nil
}
