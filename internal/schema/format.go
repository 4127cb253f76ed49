package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/invopop/jsonschema"

	"github.com/musher-dev/mcpterm/internal/mcp"
)

const wrapWidth = 72

// UsageHint renders a command line template for running the tool, e.g.
// ":mcp run search <query:string> [limit:integer]".
func UsageHint(name string, s *jsonschema.Schema) string {
	parts := []string{":mcp run " + name}

	for _, p := range Params(s) {
		typ := TypeName(p.Schema, "value")
		if p.Required {
			parts = append(parts, fmt.Sprintf("<%s:%s>", p.Name, typ))
		} else {
			parts = append(parts, fmt.Sprintf("[%s:%s]", p.Name, typ))
		}
	}

	return strings.Join(parts, " ")
}

// Compact renders a one-line signature: "search: (query: string, [limit]: integer)".
func Compact(tool mcp.Tool) string {
	s, err := Parse(tool.InputSchema)
	if err != nil {
		return tool.Name + ": (?)"
	}

	params := declared(s)
	if len(params) == 0 {
		return tool.Name + ": ()"
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		typ := TypeName(p.Schema, "any")
		if p.Required {
			parts = append(parts, fmt.Sprintf("%s: %s", p.Name, typ))
		} else {
			parts = append(parts, fmt.Sprintf("[%s]: %s", p.Name, typ))
		}
	}

	return fmt.Sprintf("%s: (%s)", tool.Name, strings.Join(parts, ", "))
}

// Summary shortens a tool description to fit width cells.
func Summary(description string, width int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(description), "\n")
	return ansi.Truncate(line, width, "...")
}

// Detailed renders a multi-line description of the tool and its parameters.
func Detailed(tool mcp.Tool) []string {
	lines := []string{"Tool: " + tool.Name, ""}

	lines = append(lines, "Description:")
	if strings.TrimSpace(tool.Description) == "" {
		lines = append(lines, "  (no description)")
	} else {
		lines = append(lines, wrap(tool.Description, 2)...)
	}

	lines = append(lines, "", "Parameters:")

	s, err := Parse(tool.InputSchema)
	if err != nil {
		lines = append(lines, "  (schema unavailable: "+err.Error()+")")
		return lines
	}

	params := declared(s)
	if len(params) == 0 {
		lines = append(lines, "  (no parameters)")
	}

	for _, p := range params {
		lines = append(lines, "")
		lines = append(lines, formatParam(p)...)
	}

	lines = append(lines, "", "Usage:", "  "+UsageHint(tool.Name, s))

	return lines
}

func formatParam(p Param) []string {
	requirement := "optional"
	if p.Required {
		requirement = "required"
	}

	lines := []string{fmt.Sprintf("  • %s (%s, %s)", p.Name, TypeName(p.Schema, "any"), requirement)}

	description := "(no description)"
	if p.Schema != nil && strings.TrimSpace(p.Schema.Description) != "" {
		description = p.Schema.Description
	}

	lines = append(lines, wrap(description, 4)...)

	if p.Schema == nil {
		return lines
	}

	if len(p.Schema.Enum) > 0 {
		values := make([]string, 0, len(p.Schema.Enum))
		for _, v := range p.Schema.Enum {
			values = append(values, enumValue(v))
		}

		lines = append(lines, "    Allowed values: "+strings.Join(values, ", "))
	}

	if p.Schema.Default != nil {
		if data, err := json.Marshal(p.Schema.Default); err == nil {
			lines = append(lines, "    Default: "+string(data))
		}
	}

	if p.Schema.Minimum != "" {
		lines = append(lines, "    Minimum: "+p.Schema.Minimum.String())
	}

	if p.Schema.Maximum != "" {
		lines = append(lines, "    Maximum: "+p.Schema.Maximum.String())
	}

	return lines
}

func enumValue(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(data)
}

func wrap(text string, indent int) []string {
	pad := strings.Repeat(" ", indent)
	wrapped := ansi.Wordwrap(strings.TrimSpace(text), wrapWidth, "")

	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		lines[i] = pad + strings.TrimRight(line, " ")
	}

	return lines
}
