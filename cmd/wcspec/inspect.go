package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/wcspec/pkg/catalog"
)

const maxWidth = 80

var inspectFlagKeys = map[string]string{
	"catalog": "serve.catalog",
	"dir":     "serve.dir",
}

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <tag-or-class>",
		Short: "Show one component's API",
		Args:  cobra.ExactArgs(1),
		Example: `  wcspec inspect my-button
  wcspec inspect MyButton --catalog custom-elements.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, withPersistent(inspectFlagKeys, analyzerFlagKeys)); err != nil {
				return err
			}
			qs, err := a.loadQuery()
			if err != nil {
				return err
			}
			comp, ok := qs.GetComponent(args[0])
			if !ok {
				return fmt.Errorf("component %q not found", args[0])
			}
			printComponentHuman(cmd.OutOrStdout(), comp)
			return nil
		},
	}
	f := cmd.Flags()
	f.String("catalog", "", "Read a catalog file instead of analyzing")
	f.String("dir", "", "Analyze this directory (default \".\")")
	addAnalyzerFlags(cmd)
	return cmd
}

// loadQuery reads --catalog when set, otherwise analyzes --dir.
func (a *app) loadQuery() (*catalog.QueryService, error) {
	if path := a.cfg.Serve.Catalog; path != "" {
		qs, err := catalog.LoadAndQuery(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		return qs, nil
	}
	dir := a.cfg.Serve.Dir
	if dir == "" {
		dir = "."
	}
	s, err := a.newScanner()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return a.scanQuery(s, dir)
}

// printComponentHuman prints a human-readable component summary.
func printComponentHuman(w io.Writer, comp *catalog.Component) {
	header := "<" + comp.TagName + ">"
	if comp.TagName == "" {
		header = comp.ClassName
	} else if comp.ClassName != "" {
		header += "  " + comp.ClassName
	}
	if comp.Deprecated != nil {
		header += "  [DEPRECATED]"
	}
	fmt.Fprintln(w, header)
	if comp.Module != "" {
		if comp.Line > 0 {
			fmt.Fprintf(w, "  %s:%d\n", comp.Module, comp.Line)
		} else {
			fmt.Fprintf(w, "  %s\n", comp.Module)
		}
	}
	if comp.Deprecated != nil && comp.Deprecated.Reason != "" {
		fmt.Fprintf(w, "  Deprecated: %s\n", comp.Deprecated.Reason)
	}
	if comp.Superclass != "" || len(comp.Mixins) > 0 {
		heritage := comp.Superclass
		if len(comp.Mixins) > 0 {
			heritage = strings.TrimSpace(heritage + " with " + strings.Join(comp.Mixins, ", "))
		}
		fmt.Fprintf(w, "  extends %s\n", heritage)
	}

	if comp.Description != "" {
		fmt.Fprintln(w)
		printWrapped(w, comp.Description, 0, maxWidth)
	}

	attrs := make([]row, len(comp.Attributes))
	for i, at := range comp.Attributes {
		attrs[i] = row{
			cells:     []string{at.Name, at.Type, orDash(at.Default)},
			notes:     []string{at.Description, allowedNote(at.AllowedValues)},
			flags:     flags(at.Required, at.Deprecated != nil),
			inherited: at.InheritedFrom,
		}
	}
	printSection(w, "Attributes", []string{"NAME", "TYPE", "DEFAULT"}, attrs)

	props := make([]row, len(comp.Properties))
	for i, p := range comp.Properties {
		props[i] = row{
			cells:     []string{p.Name, p.Type, orDash(p.Default)},
			notes:     []string{p.Description},
			flags:     flags(p.Required, p.Deprecated != nil),
			inherited: p.InheritedFrom,
		}
	}
	printSection(w, "Properties", []string{"NAME", "TYPE", "DEFAULT"}, props)

	methods := make([]row, len(comp.Methods))
	for i, m := range comp.Methods {
		methods[i] = row{
			cells:     []string{m.Name, orDash(m.Signature)},
			notes:     []string{m.Description},
			flags:     flags(false, m.Deprecated != nil),
			inherited: m.InheritedFrom,
		}
	}
	printSection(w, "Methods", []string{"NAME", "SIGNATURE"}, methods)

	events := make([]row, len(comp.Events))
	for i, e := range comp.Events {
		events[i] = row{
			cells:     []string{e.Name, orDash(e.Type)},
			notes:     []string{e.Description},
			flags:     flags(false, e.Deprecated != nil),
			inherited: e.InheritedFrom,
		}
	}
	printSection(w, "Events", []string{"NAME", "TYPE"}, events)

	slots := make([]row, len(comp.Slots))
	for i, s := range comp.Slots {
		name := s.Name
		if name == "" {
			name = "(default)"
		}
		slots[i] = row{cells: []string{name}, notes: []string{s.Description}, flags: flags(false, s.Deprecated != nil)}
	}
	printSection(w, "Slots", []string{"NAME"}, slots)

	cssProps := make([]row, len(comp.CSSProperties))
	for i, c := range comp.CSSProperties {
		cssProps[i] = row{
			cells: []string{c.Name, orDash(c.Syntax), orDash(c.Default)},
			notes: []string{c.Description},
			flags: flags(false, c.Deprecated != nil),
		}
	}
	printSection(w, "CSS Properties", []string{"NAME", "SYNTAX", "DEFAULT"}, cssProps)

	parts := make([]row, len(comp.CSSParts))
	for i, c := range comp.CSSParts {
		parts[i] = row{cells: []string{c.Name}, notes: []string{c.Description}, flags: flags(false, c.Deprecated != nil)}
	}
	printSection(w, "CSS Parts", []string{"NAME"}, parts)
}

type row struct {
	cells     []string
	notes     []string
	flags     string
	inherited string
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func flags(required, deprecated bool) string {
	var out []string
	if required {
		out = append(out, "required")
	}
	if deprecated {
		out = append(out, "deprecated")
	}
	if len(out) == 0 {
		return ""
	}
	return "[" + strings.Join(out, ", ") + "]"
}

func allowedNote(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return "allowed: " + strings.Join(values, " | ")
}

// printSection renders a table with dynamic column widths.
func printSection(w io.Writer, title string, headers []string, rows []row) {
	fmt.Fprintln(w)
	if len(rows) == 0 {
		fmt.Fprintf(w, "%s  (none)\n", title)
		return
	}
	fmt.Fprintln(w, title)

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, c := range r.cells {
			if len(c) > widths[i] {
				widths[i] = len(c)
			}
		}
	}

	line := func(cells []string) string {
		var sb strings.Builder
		sb.WriteString(" ")
		for i, c := range cells {
			sb.WriteString(" ")
			if i < len(cells)-1 {
				fmt.Fprintf(&sb, "%-*s ", widths[i], c)
			} else {
				sb.WriteString(c)
			}
		}
		return sb.String()
	}

	fmt.Fprintln(w, line(headers))
	sep := 0
	for _, wd := range widths {
		sep += wd + 2
	}
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", sep-2))

	for _, r := range rows {
		text := line(r.cells)
		if r.flags != "" {
			text += " " + r.flags
		}
		if r.inherited != "" {
			text += " (from " + r.inherited + ")"
		}
		fmt.Fprintln(w, text)
		for _, n := range r.notes {
			if n != "" {
				printWrapped(w, n, widths[0]+4, maxWidth)
			}
		}
	}
}

// printWrapped prints text word-wrapped at width with the given left indent.
func printWrapped(w io.Writer, text string, indent, width int) {
	words := strings.Fields(text)
	prefix := strings.Repeat(" ", indent)
	line := prefix
	for _, word := range words {
		if len(line)+len(word)+1 > width && line != prefix {
			fmt.Fprintln(w, line)
			line = prefix + word
		} else if line == prefix {
			line += word
		} else {
			line += " " + word
		}
	}
	if line != prefix {
		fmt.Fprintln(w, line)
	}
}
