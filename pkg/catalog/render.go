package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names an output format for a rendered catalog.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps a flag value or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json, yaml or markdown)", s)
}

// Write renders c to w in the given format.
func (c *Catalog) Write(w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		return c.WriteYAML(w)
	case FormatMarkdown:
		return c.WriteMarkdown(w)
	default:
		return c.WriteJSON(w)
	}
}

// WriteJSON writes the catalog as indented JSON.
func (c *Catalog) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode catalog JSON: %w", err)
	}
	return nil
}

// WriteYAML writes the catalog as YAML.
func (c *Catalog) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode catalog YAML: %w", err)
	}
	return enc.Close()
}

// WriteMarkdown writes one section per component with a table for each
// non-empty feature kind.
func (c *Catalog) WriteMarkdown(w io.Writer) error {
	var b strings.Builder
	if c.Name != "" {
		fmt.Fprintf(&b, "# %s\n\n", c.Name)
	}

	for _, comp := range c.Components {
		fmt.Fprintf(&b, "## %s\n\n", comp.TagName)
		if comp.Description != "" {
			b.WriteString(comp.Description + "\n\n")
		}
		if comp.Deprecated != nil {
			b.WriteString("**Deprecated**")
			if comp.Deprecated.Reason != "" {
				b.WriteString(": " + comp.Deprecated.Reason)
			}
			b.WriteString("\n\n")
		}

		if len(comp.Attributes) > 0 {
			rows := make([][]string, 0, len(comp.Attributes))
			for _, a := range comp.Attributes {
				rows = append(rows, []string{a.Name, a.FieldName, a.Type, a.Default, a.Description})
			}
			writeTable(&b, "Attributes", []string{"Attribute", "Property", "Type", "Default", "Description"}, rows)
		}
		if len(comp.Properties) > 0 {
			rows := make([][]string, 0, len(comp.Properties))
			for _, p := range comp.Properties {
				rows = append(rows, []string{p.Name, p.Attribute, p.Type, p.Default, p.Description})
			}
			writeTable(&b, "Properties", []string{"Property", "Attribute", "Type", "Default", "Description"}, rows)
		}
		if len(comp.Methods) > 0 {
			rows := make([][]string, 0, len(comp.Methods))
			for _, m := range comp.Methods {
				rows = append(rows, []string{m.Name, m.Signature, m.Description})
			}
			writeTable(&b, "Methods", []string{"Method", "Signature", "Description"}, rows)
		}
		if len(comp.Events) > 0 {
			rows := make([][]string, 0, len(comp.Events))
			for _, e := range comp.Events {
				rows = append(rows, []string{e.Name, e.Type, e.Description})
			}
			writeTable(&b, "Events", []string{"Event", "Type", "Description"}, rows)
		}
		if len(comp.Slots) > 0 {
			rows := make([][]string, 0, len(comp.Slots))
			for _, s := range comp.Slots {
				name := s.Name
				if name == "" {
					name = "(default)"
				}
				rows = append(rows, []string{name, strings.Join(s.PermittedTagNames, ", "), s.Description})
			}
			writeTable(&b, "Slots", []string{"Name", "Permitted Tag Names", "Description"}, rows)
		}
		if len(comp.CSSProperties) > 0 {
			rows := make([][]string, 0, len(comp.CSSProperties))
			for _, p := range comp.CSSProperties {
				rows = append(rows, []string{p.Name, p.Syntax, p.Default, p.Description})
			}
			writeTable(&b, "CSS Custom Properties", []string{"Property", "Syntax", "Default", "Description"}, rows)
		}
		if len(comp.CSSParts) > 0 {
			rows := make([][]string, 0, len(comp.CSSParts))
			for _, p := range comp.CSSParts {
				rows = append(rows, []string{p.Name, p.Description})
			}
			writeTable(&b, "CSS Shadow Parts", []string{"Part", "Description"}, rows)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTable(b *strings.Builder, title string, header []string, rows [][]string) {
	fmt.Fprintf(b, "### %s\n\n", title)
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = markdownCell(cell)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	b.WriteString("\n")
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
