package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/wcspec/pkg/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-analyze a directory on change and rewrite the catalog",
		Args:  cobra.MaximumNArgs(1),
		Example: `  wcspec watch src --outFile custom-elements.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, withPersistent(outputFlagKeys, analyzerFlagKeys)); err != nil {
				return err
			}
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return a.runWatch(cmd, dir)
		},
	}
	addOutputFlags(cmd)
	addAnalyzerFlags(cmd)
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, dir string) error {
	if a.cfg.Output.File == "" {
		return fmt.Errorf("watch requires --outFile")
	}
	format, err := a.outputFormat()
	if err != nil {
		return err
	}

	s, err := a.newScanner()
	if err != nil {
		return err
	}
	defer s.Close()

	rebuild := func() error {
		cat, stats, err := s.Run(dir, a.scanConfig(), a.buildConfig(dir))
		if cat == nil {
			return err
		}
		if err := a.writeCatalog(cmd.OutOrStdout(), cat, format); err != nil {
			return err
		}
		printDiagnostics(cmd.ErrOrStderr(), cat.Diagnostics)
		a.logger.Info("catalog updated",
			"components", stats.ComponentsDetected, "ms", stats.TotalTimeMs)
		return nil
	}
	if err := rebuild(); err != nil {
		return err
	}

	var mu sync.Mutex
	w, err := watch.New(dir, func(changed []string) {
		mu.Lock()
		defer mu.Unlock()
		a.logger.Debug("re-analyzing", "changed", changed)
		if err := rebuild(); err != nil {
			a.logger.Error("re-analysis failed", "error", err)
		}
	}, watch.Options{Debounce: a.cfg.Serve.Debounce, Scan: a.scanConfig(), Logger: a.logger})
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl+C to stop)\n", dir)
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()
	<-ctx.Done()
	return nil
}
