package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. Each call gets its own viper instance
// so tests can run commands side by side.
func newRootCmd() *cobra.Command {
	a := newApp()

	root := &cobra.Command{
		Use:   "wcspec",
		Short: "Static analyzer for web components",
		Long: `wcspec discovers custom element declarations in JavaScript and TypeScript
sources and reports their attributes, properties, methods, events, slots,
CSS custom properties and CSS parts, merged across inheritance and mixins.

Supported declaration styles:
- Lit and Polymer decorators and static properties
- plain HTMLElement subclasses with observedAttributes
- JSDoc tags (@element, @fires, @slot, @cssprop, @csspart, ...)
- Stencil @Component, @Prop and @Event
- JSX IntrinsicElements declarations`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./.wcspec/config.yaml)")
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "text", "Log format (json, text)")

	root.AddCommand(
		newAnalyzeCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
		newWatchCmd(a),
		newSetupCmd(),
		newVersionCmd(),
	)
	return root
}

// persistentFlagKeys maps the root flags onto config keys.
var persistentFlagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
}

// withPersistent merges command flag keys with the root flag keys.
func withPersistent(keySets ...map[string]string) map[string]string {
	out := make(map[string]string, len(persistentFlagKeys))
	for k, v := range persistentFlagKeys {
		out[k] = v
	}
	for _, keys := range keySets {
		for k, v := range keys {
			out[k] = v
		}
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wcspec %s\n", version)
		},
	}
}
