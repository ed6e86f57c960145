package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gnana997/wcspec/pkg/analyzer"
	"github.com/gnana997/wcspec/pkg/catalog"
	"github.com/gnana997/wcspec/pkg/scanner"
	"github.com/gnana997/wcspec/pkg/util"
)

// Config holds the contents of .wcspec/config.yaml merged with WCSPEC_*
// environment variables and command-line flags.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Analyze AnalyzeConfig `mapstructure:"analyze"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Output  OutputConfig  `mapstructure:"output"`
	Serve   ServeConfig   `mapstructure:"serve"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AnalyzeConfig struct {
	Features             []string `mapstructure:"features"`
	Dependencies         bool     `mapstructure:"dependencies"`
	DefaultLibrary       bool     `mapstructure:"default_library"`
	GlobalFeatures       bool     `mapstructure:"global_features"`
	AllDeclarations      bool     `mapstructure:"all_declarations"`
	NonPublic            bool     `mapstructure:"non_public"`
	ExcludedDeclarations []string `mapstructure:"excluded_declarations"`
}

type ScanConfig struct {
	Include []string `mapstructure:"include"`
	Exclude []string `mapstructure:"exclude"`
}

type OutputConfig struct {
	Format  string `mapstructure:"format"`
	File    string `mapstructure:"file"`
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

type ServeConfig struct {
	Catalog  string        `mapstructure:"catalog"`
	Dir      string        `mapstructure:"dir"`
	Watch    bool          `mapstructure:"watch"`
	LogFile  string        `mapstructure:"log_file"`
	Debounce time.Duration `mapstructure:"debounce"`
}

func setDefaults(v *viper.Viper) {
	// Logging defaults
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	// Scan defaults
	scan := scanner.DefaultScanConfig()
	v.SetDefault("scan.include", scan.Include)
	v.SetDefault("scan.exclude", scan.Exclude)

	// Output defaults
	v.SetDefault("output.format", "")
	v.SetDefault("output.version", "1.0")

	// Serve defaults
	v.SetDefault("serve.debounce", "200ms")
}

// app carries the state shared by every subcommand of one invocation.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     Config
	logger  *slog.Logger
}

func newApp() *app {
	v := viper.New()
	setDefaults(v)
	return &app{v: v, logger: util.NewDiscardLogger()}
}

// setup binds the running command's flags to config keys, reads the config
// file and environment, and builds the logger. Binding happens here rather
// than at construction because several commands share a key.
func (a *app) setup(cmd *cobra.Command, flagKeys map[string]string) error {
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			return fmt.Errorf("unknown flag %q", flag)
		}
		if err := a.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".wcspec")
	}

	a.v.SetEnvPrefix("WCSPEC")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
		// Config file not found; use defaults and environment
	}

	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	a.logger = util.NewLogger(util.LoggerConfig{
		Level:  util.ParseLogLevel(a.cfg.Log.Level),
		Format: util.LogFormat(a.cfg.Log.Format),
		Output: cmd.ErrOrStderr(),
	})
	util.SetDefault(a.logger)
	return nil
}

// analyzerConfig translates the analyze section into an analyzer.Config.
func (a *app) analyzerConfig() (analyzer.Config, error) {
	ac := a.cfg.Analyze
	cfg := analyzer.Config{
		Logger:                 a.logger,
		AnalyzeDependencies:    ac.Dependencies,
		AnalyzeDefaultLibrary:  ac.DefaultLibrary,
		AnalyzeGlobalFeatures:  ac.GlobalFeatures,
		AnalyzeAllDeclarations: ac.AllDeclarations,
	}
	if len(ac.ExcludedDeclarations) > 0 {
		cfg.ExcludedDeclarationNames = ac.ExcludedDeclarations
	}
	for _, raw := range ac.Features {
		for _, name := range strings.Split(raw, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			kind, ok := analyzer.ParseFeatureKind(name)
			if !ok {
				return cfg, fmt.Errorf("unknown feature %q", name)
			}
			cfg.Features = append(cfg.Features, kind)
		}
	}
	return cfg, nil
}

func (a *app) scanConfig() scanner.ScanConfig {
	sc := scanner.ScanConfig{Include: a.cfg.Scan.Include, Exclude: a.cfg.Scan.Exclude}
	if len(sc.Include) == 0 && len(sc.Exclude) == 0 {
		return scanner.DefaultScanConfig()
	}
	return sc
}

func (a *app) buildConfig(root string) scanner.CatalogBuildConfig {
	return scanner.CatalogBuildConfig{
		Name:             a.cfg.Output.Name,
		Version:          a.cfg.Output.Version,
		RootDir:          root,
		IncludeLibrary:   a.cfg.Analyze.Dependencies || a.cfg.Analyze.DefaultLibrary,
		IncludeNonPublic: a.cfg.Analyze.NonPublic,
	}
}

// outputFormat resolves the catalog format from --format, falling back to the
// output file's extension.
func (a *app) outputFormat() (catalog.Format, error) {
	if a.cfg.Output.Format != "" {
		return catalog.ParseFormat(a.cfg.Output.Format)
	}
	if ext := filepath.Ext(a.cfg.Output.File); ext != "" {
		if f, err := catalog.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return catalog.FormatJSON, nil
}

// newScanner creates a scanner from the loaded config. Callers close it.
func (a *app) newScanner() (*scanner.Scanner, error) {
	cfg, err := a.analyzerConfig()
	if err != nil {
		return nil, err
	}
	return scanner.NewScanner(cfg, a.logger), nil
}
