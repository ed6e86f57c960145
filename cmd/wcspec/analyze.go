package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gnana997/wcspec/pkg/catalog"
	"github.com/gnana997/wcspec/pkg/scanner"
)

// errDiagnostics signals that analysis reported error diagnostics. They have
// already been printed, so main only sets the exit code.
var errDiagnostics = errors.New("analysis reported errors")

var outputFlagKeys = map[string]string{
	"format":  "output.format",
	"outFile": "output.file",
	"name":    "output.name",
}

var analyzerFlagKeys = map[string]string{
	"features":               "analyze.features",
	"analyzeDependencies":    "analyze.dependencies",
	"analyzeDefaultLibrary":  "analyze.default_library",
	"analyzeGlobalFeatures":  "analyze.global_features",
	"analyzeAllDeclarations": "analyze.all_declarations",
	"includeNonPublic":       "analyze.non_public",
}

// addOutputFlags registers the flags shared by analyze and watch.
func addOutputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("format", "", "Output format: json, yaml or markdown (default: from --outFile extension, else json)")
	f.String("outFile", "", "Write the catalog to this file instead of stdout")
	f.String("name", "", "Catalog name (default: directory name)")
}

// addAnalyzerFlags registers the flags of every command that runs an
// analysis.
func addAnalyzerFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("features", nil, "Only collect these features: member, method, event, slot, css-property, css-part")
	f.Bool("analyzeDependencies", false, "Also analyze declarations in node_modules")
	f.Bool("analyzeDefaultLibrary", false, "Also report built-in DOM elements")
	f.Bool("analyzeGlobalFeatures", false, "Collect HTMLElement and event map augmentations")
	f.Bool("analyzeAllDeclarations", false, "Also report component classes that are never registered")
	f.Bool("includeNonPublic", false, "Keep protected and private members")
}

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [globs...]",
		Short: "Analyze components and write a catalog",
		Long: `Analyze the given files, directories or glob patterns (default: the current
directory) and write a catalog of every custom element found.

Diagnostics are printed to stderr. The command exits non-zero when any
diagnostic has error severity.`,
		Example: `  wcspec analyze
  wcspec analyze "src/**/*.ts" --format markdown --outFile COMPONENTS.md
  wcspec analyze src --features member,event --analyzeGlobalFeatures`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, withPersistent(outputFlagKeys, analyzerFlagKeys)); err != nil {
				return err
			}
			return a.runAnalyze(cmd, args)
		},
	}
	addOutputFlags(cmd)
	addAnalyzerFlags(cmd)
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := a.outputFormat()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	files, err := scanner.ExpandGlobs(".", args, a.scanConfig())
	if err != nil {
		return err
	}

	s, err := a.newScanner()
	if err != nil {
		return err
	}
	defer s.Close()

	cat, stats, err := s.RunFiles(files, a.buildConfig(analysisRoot(args)))
	if cat == nil {
		return err
	}
	if err != nil {
		a.logger.Warn("catalog validation failed", "error", err)
	}
	a.logger.Info("analysis complete",
		"files", stats.FilesLoaded,
		"components", stats.ComponentsDetected,
		"diagnostics", stats.Diagnostics,
		"ms", stats.TotalTimeMs)

	if err := a.writeCatalog(cmd.OutOrStdout(), cat, format); err != nil {
		return err
	}
	printDiagnostics(cmd.ErrOrStderr(), cat.Diagnostics)
	if cat.HasErrors() {
		return errDiagnostics
	}
	return nil
}

// analysisRoot picks the directory module paths are reported relative to: a
// single directory argument, otherwise the working directory.
func analysisRoot(args []string) string {
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			return args[0]
		}
	}
	return "."
}

// writeCatalog renders cat to --outFile when set, otherwise to stdout.
func (a *app) writeCatalog(stdout io.Writer, cat *catalog.Catalog, format catalog.Format) error {
	path := a.cfg.Output.File
	if path == "" {
		return cat.Write(stdout, format)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := cat.Write(f, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	a.logger.Info("catalog written", "path", path, "format", format)
	return nil
}

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow, color.Bold)
	locationText = color.New(color.Faint)
)

// printDiagnostics writes one line per diagnostic followed by a summary.
func printDiagnostics(w io.Writer, diags []catalog.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	var errs, warns int
	for _, d := range diags {
		loc := d.File
		if d.Line > 0 {
			loc = fmt.Sprintf("%s:%d", d.File, d.Line)
		}
		locationText.Fprint(w, loc)
		fmt.Fprint(w, ": ")
		if d.Severity == "error" {
			errs++
			errorLabel.Fprint(w, "error")
		} else {
			warns++
			warningLabel.Fprint(w, "warning")
		}
		fmt.Fprintf(w, ": %s\n", d.Message)
	}
	fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errs, warns)
}
