package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// serverName is the key wcspec is registered under in agent configs.
const serverName = "wcspec"

type agentMethod int

const (
	// methodCLI registers through the agent's own `mcp add` subcommand.
	methodCLI agentMethod = iota
	// methodFile merges an entry into the agent's JSON config file.
	methodFile
)

// agentDef describes how to find one MCP-capable agent and register the
// catalog server with it.
type agentDef struct {
	ID          string
	DisplayName string
	Method      agentMethod
	Binary      string        // CLI agents: executable looked up on PATH
	DirMarkers  []string      // file agents: directories that mark the agent as present
	ConfigPath  func() string // file agents: config file to merge into
	ServersKey  string        // "servers" for VS Code, "mcpServers" elsewhere
	NeedsScope  bool
	ExtraFields map[string]string
}

// detectedAgent is an agent found on this machine.
type detectedAgent struct {
	Def        agentDef
	Configured bool
	ConfigFile string
}

type setupOptions struct {
	auto bool
	// serveArgs are passed to `wcspec` by the agent when it starts the server.
	serveArgs []string
}

// Replaced in tests.
var (
	lookPathFunc = exec.LookPath
	statFunc     = os.Stat
	runAgentCLI  = func(w io.Writer, binary string, args ...string) error {
		cmd := exec.Command(binary, args...)
		cmd.Stdout = w
		cmd.Stderr = w
		return cmd.Run()
	}
)

var agentRegistry = []agentDef{
	{
		ID: "claude_code", DisplayName: "Claude Code",
		Method: methodCLI, Binary: "claude", NeedsScope: true,
	},
	{
		ID: "openai_codex", DisplayName: "OpenAI Codex",
		Method: methodCLI, Binary: "codex", NeedsScope: true,
	},
	{
		ID: "vscode_copilot", DisplayName: "VS Code Copilot",
		Method: methodFile, DirMarkers: []string{".vscode"},
		ConfigPath:  func() string { return filepath.Join(".vscode", "mcp.json") },
		ServersKey:  "servers",
		ExtraFields: map[string]string{"type": "stdio"},
	},
	{
		ID: "cursor", DisplayName: "Cursor",
		Method: methodFile, DirMarkers: []string{".cursor"},
		ConfigPath: func() string { return filepath.Join(".cursor", "mcp.json") },
		ServersKey: "mcpServers",
	},
	{
		ID: "claude_desktop", DisplayName: "Claude Desktop",
		Method:     methodFile,
		ConfigPath: claudeDesktopConfigPath,
		ServersKey: "mcpServers",
	},
}

var (
	okMark   = color.New(color.FgGreen)
	failMark = color.New(color.FgRed)
)

func newSetupCmd() *cobra.Command {
	var catalogPath, dir string
	opts := setupOptions{}
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with installed AI agents",
		Long: `Detect MCP-capable agents (Claude Code, Codex, VS Code, Cursor, Claude
Desktop) and register "wcspec serve" with each of them.

Agents with a CLI are configured through their "mcp add" command; the
others get an entry merged into their JSON config file. Existing entries
are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if catalogPath != "" && dir != "" {
				return fmt.Errorf("--catalog and --dir are mutually exclusive")
			}
			opts.serveArgs = serveArgs(catalogPath, dir)
			return executeSetup(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.auto, "auto", false, "Configure every detected agent without prompting")
	f.StringVar(&catalogPath, "catalog", "", "Have agents serve this catalog file")
	f.StringVar(&dir, "dir", "", "Have agents analyze this directory")
	return cmd
}

// serveArgs builds the arguments agents start the server with. Paths are
// made absolute since agents rarely share our working directory.
func serveArgs(catalogPath, dir string) []string {
	args := []string{"serve"}
	abs := func(p string) string {
		if a, err := filepath.Abs(p); err == nil {
			return a
		}
		return p
	}
	switch {
	case catalogPath != "":
		args = append(args, "--catalog", abs(catalogPath))
	case dir != "":
		args = append(args, "--dir", abs(dir))
	}
	return args
}

func claudeDesktopConfigPath() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

// detectAgents returns the registered agents present on this machine.
func detectAgents() []detectedAgent {
	var out []detectedAgent
	for _, def := range agentRegistry {
		switch def.Method {
		case methodCLI:
			if _, err := lookPathFunc(def.Binary); err == nil {
				out = append(out, detectedAgent{
					Def:        def,
					Configured: hasServerEntry(".mcp.json", "mcpServers"),
				})
			}

		case methodFile:
			path, found := locateConfig(def)
			if found {
				out = append(out, detectedAgent{
					Def:        def,
					ConfigFile: path,
					Configured: hasServerEntry(path, def.ServersKey),
				})
			}
		}
	}
	return out
}

// locateConfig finds a file agent's config path. Agents with directory
// markers are project-local; the others are present when the config's
// parent directory exists.
func locateConfig(def agentDef) (string, bool) {
	if def.ConfigPath == nil {
		return "", false
	}
	for _, marker := range def.DirMarkers {
		if _, err := statFunc(marker); err == nil {
			return def.ConfigPath(), true
		}
	}
	if len(def.DirMarkers) > 0 {
		return "", false
	}
	path := def.ConfigPath()
	if _, err := statFunc(filepath.Dir(path)); err != nil {
		return "", false
	}
	return path, true
}

// hasServerEntry reports whether the JSON file at path already registers
// wcspec under serversKey.
func hasServerEntry(path, serversKey string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return false
	}
	servers, _ := config[serversKey].(map[string]any)
	_, ok := servers[serverName]
	return ok
}

// serverEntry is the config object agents use to launch the server.
func serverEntry(serveArgs []string, extra map[string]string) map[string]any {
	args := make([]any, 0, len(serveArgs))
	for _, a := range serveArgs {
		args = append(args, a)
	}
	entry := map[string]any{
		"command": serverName,
		"args":    args,
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry adds the wcspec entry under serversKey to the JSON
// document existing (empty means a new document). It returns nil, nil when
// an entry is already there.
func mergeServerEntry(existing []byte, serversKey string, serveArgs []string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}
	servers[serverName] = serverEntry(serveArgs, extra)
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func configureFileAgent(def agentDef, configPath string, serveArgs []string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	var existing []byte
	if data, err := os.ReadFile(configPath); err == nil {
		existing = data
	}
	merged, err := mergeServerEntry(existing, def.ServersKey, serveArgs, def.ExtraFields)
	if err != nil {
		return fmt.Errorf("%s: %w", configPath, err)
	}
	if merged == nil {
		return nil
	}
	return os.WriteFile(configPath, merged, 0644)
}

// cliAgentArgs builds `mcp add [--scope s] wcspec -- wcspec serve ...`.
func cliAgentArgs(scope string, serveArgs []string) []string {
	args := []string{"mcp", "add"}
	if scope != "" {
		args = append(args, "--scope", scope)
	}
	args = append(args, serverName, "--", serverName)
	return append(args, serveArgs...)
}

// promptYesNo asks question and defaults to yes on empty input or EOF.
func promptYesNo(in *bufio.Scanner, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s ", question)
	if !in.Scan() {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(in.Text())) {
	case "", "y", "yes":
		return true
	}
	return false
}

// promptScope returns "project", "user" or "" to skip.
func promptScope(in *bufio.Scanner, w io.Writer, agent string) string {
	fmt.Fprintf(w, "\n%s: add the wcspec MCP server?\n", agent)
	fmt.Fprintln(w, "  [1] Project scope (shared with team)")
	fmt.Fprintln(w, "  [2] User scope (personal, global)")
	fmt.Fprintln(w, "  [3] Skip")
	fmt.Fprint(w, "  > ")

	if !in.Scan() {
		return "project"
	}
	switch strings.TrimSpace(in.Text()) {
	case "", "1":
		return "project"
	case "2":
		return "user"
	}
	return ""
}

// executeSetup detects agents and configures the ones the user accepts.
// Agents that fail to configure are reported and counted in the error.
func executeSetup(r io.Reader, w io.Writer, opts setupOptions) error {
	if len(opts.serveArgs) == 0 {
		opts.serveArgs = []string{"serve"}
	}
	detected := detectAgents()
	if len(detected) == 0 {
		fmt.Fprintln(w, "No supported AI agents detected.")
		return nil
	}

	fmt.Fprintln(w, "Detected AI agents:")
	for _, d := range detected {
		if d.Configured {
			fmt.Fprintf(w, "  * %s (already configured)\n", d.Def.DisplayName)
		} else {
			fmt.Fprintf(w, "  * %s\n", d.Def.DisplayName)
		}
	}
	fmt.Fprintln(w)

	in := bufio.NewScanner(r)
	if !opts.auto && !promptYesNo(in, w, "Configure agents? [Y/n]") {
		return nil
	}

	failed := 0
	for _, d := range detected {
		if d.Configured {
			fmt.Fprintf(w, "\n%s: already configured, skipping\n", d.Def.DisplayName)
			continue
		}
		if err := configureAgent(in, w, d, opts); err != nil {
			failMark.Fprintf(w, "  ! %s: %v\n", d.Def.DisplayName, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d agent(s) could not be configured", failed)
	}
	return nil
}

func configureAgent(in *bufio.Scanner, w io.Writer, d detectedAgent, opts setupOptions) error {
	switch d.Def.Method {
	case methodCLI:
		scope := "project"
		if !opts.auto && d.Def.NeedsScope {
			if scope = promptScope(in, w, d.Def.DisplayName); scope == "" {
				fmt.Fprintln(w, "  skipped")
				return nil
			}
		}
		if err := runAgentCLI(w, d.Def.Binary, cliAgentArgs(scope, opts.serveArgs)...); err != nil {
			return err
		}
		okMark.Fprintf(w, "  + %s configured (scope: %s)\n", d.Def.DisplayName, scope)

	case methodFile:
		if !opts.auto && !promptYesNo(in, w, fmt.Sprintf("\n%s: add to %s? [Y/n]", d.Def.DisplayName, d.ConfigFile)) {
			fmt.Fprintln(w, "  skipped")
			return nil
		}
		if err := configureFileAgent(d.Def, d.ConfigFile, opts.serveArgs); err != nil {
			return err
		}
		okMark.Fprintf(w, "  + %s configured (%s)\n", d.Def.DisplayName, d.ConfigFile)
	}
	return nil
}
