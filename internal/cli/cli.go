// Package cli runs the PDF editing tools from the command line, in-process
// through the tool registry, and renders their results for a terminal.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdfedit/internal/registry"
	"github.com/sirupsen/logrus"
)

// OutputFormat controls how tool results are rendered.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Runner executes CLI commands against the tool registry.
type Runner struct {
	logger *logrus.Logger
	output OutputFormat
	out    io.Writer
}

// NewRunner creates a Runner writing to out in the given format.
func NewRunner(logger *logrus.Logger, output OutputFormat, out io.Writer) *Runner {
	return &Runner{logger: logger, output: output, out: out}
}

// ListTools prints all registered tools with their descriptions.
func (r *Runner) ListTools() error {
	names := registry.GetEnabledToolNames()

	type entry struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	entries := make([]entry, 0, len(names))
	for _, name := range names {
		tool, _ := registry.GetTool(name)
		entries = append(entries, entry{Name: name, Description: firstSentence(tool.Definition().Description)})
	}

	if r.output == OutputJSON {
		return writeJSON(r.out, entries)
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\n", e.Name, e.Description)
	}
	return w.Flush()
}

// HelpTool prints the parameters of a single tool.
func (r *Runner) HelpTool(name string) error {
	resolved, found := resolveTool(name)
	if !found {
		return fmt.Errorf("unknown tool: %s", name)
	}
	tool, _ := registry.GetTool(resolved)
	def := tool.Definition()

	if r.output == OutputJSON {
		return writeJSON(r.out, def)
	}

	fmt.Fprintf(r.out, "Tool: %s\n\n%s\n\n", def.Name, def.Description)

	props := def.InputSchema.Properties
	if len(props) == 0 {
		fmt.Fprintln(r.out, "No parameters.")
		return nil
	}

	required := make(map[string]bool, len(def.InputSchema.Required))
	for _, name := range def.InputSchema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	slices.Sort(names)

	fmt.Fprintln(r.out, "Parameters:")
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, pName := range names {
		pMap, ok := props[pName].(map[string]any)
		if !ok {
			continue
		}
		pType, _ := pMap["type"].(string)
		pDesc, _ := pMap["description"].(string)

		reqMark := ""
		if required[pName] {
			reqMark = " (required)"
		}
		fmt.Fprintf(w, "  --%s\t%s\t%s%s\n", toFlagName(pName), pType, pDesc, reqMark)
	}
	return w.Flush()
}

// RunTool executes a tool by name. args are --key=value / --key value flags,
// bare --flag for booleans, or a JSON object; flags take precedence.
func (r *Runner) RunTool(ctx context.Context, name string, args []string) error {
	resolved, found := resolveTool(name)
	if !found {
		return fmt.Errorf("unknown tool: %s (run 'mcp-pdfedit cli list' to see available tools)", name)
	}
	tool, _ := registry.GetTool(resolved)

	params, err := parseArgs(args, tool.Definition())
	if err != nil {
		return fmt.Errorf("argument error: %w", err)
	}

	result, err := tool.Execute(ctx, r.logger, params)
	if err != nil {
		return fmt.Errorf("tool error: %w", err)
	}

	return r.renderResult(result)
}

// parseArgs converts CLI arguments into tool arguments, using the tool's
// schema to coerce booleans and map kebab-case flags to parameter names.
func parseArgs(args []string, def mcp.Tool) (map[string]any, error) {
	params := make(map[string]any)

	types := make(map[string]string, len(def.InputSchema.Properties))
	flags := make(map[string]string, len(def.InputSchema.Properties))
	for name, prop := range def.InputSchema.Properties {
		if pm, ok := prop.(map[string]any); ok {
			if t, ok := pm["type"].(string); ok {
				types[name] = t
			}
		}
		flags[toFlagName(name)] = name
	}
	resolve := func(flag string) string {
		if name, ok := flags[flag]; ok {
			return name
		}
		return strings.ReplaceAll(flag, "-", "_")
	}

	var fromJSON map[string]any
	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case strings.HasPrefix(arg, "{"):
			if err := json.Unmarshal([]byte(arg), &fromJSON); err != nil {
				return nil, fmt.Errorf("invalid JSON argument: %w", err)
			}

		case strings.HasPrefix(arg, "--"):
			stripped := strings.TrimPrefix(arg, "--")
			if flag, raw, ok := strings.Cut(stripped, "="); ok {
				name := resolve(flag)
				params[name] = coerceValue(raw, types[name])
				continue
			}

			name := resolve(stripped)
			if types[name] == "boolean" {
				params[name] = true
				continue
			}
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("flag --%s requires a value", stripped)
			}
			params[name] = coerceValue(args[i], types[name])

		default:
			return nil, fmt.Errorf("unexpected argument: %s (use --key=value flags or pass a JSON object)", arg)
		}
	}

	for k, v := range fromJSON {
		if _, exists := params[k]; !exists {
			params[k] = v
		}
	}
	return params, nil
}

// coerceValue converts a flag value to the JSON Schema type of its parameter.
func coerceValue(raw, schemaType string) any {
	switch schemaType {
	case "boolean":
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
		switch strings.ToLower(raw) {
		case "yes":
			return true
		case "no":
			return false
		}
	case "number", "integer":
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

// renderResult writes a tool result. In text mode JSON results that look like
// an editing response get a coloured summary before the raw JSON.
func (r *Runner) renderResult(result *mcp.CallToolResult) error {
	if result == nil {
		return nil
	}

	if r.output == OutputJSON {
		return writeJSON(r.out, result)
	}

	for _, content := range result.Content {
		c, ok := content.(mcp.TextContent)
		if !ok {
			data, _ := json.MarshalIndent(content, "", "  ")
			fmt.Fprintln(r.out, string(data))
			continue
		}

		var decoded map[string]any
		if err := json.Unmarshal([]byte(c.Text), &decoded); err == nil {
			if msg, ok := decoded["error"].(string); ok {
				PrintError(r.out, msg)
			}
		}
		fmt.Fprintln(r.out, c.Text)
	}

	if result.IsError {
		return fmt.Errorf("tool returned an error")
	}
	return nil
}

// resolveTool looks a tool up by name, also accepting kebab-case.
func resolveTool(name string) (string, bool) {
	if _, ok := registry.GetTool(name); ok {
		return name, true
	}
	snakeName := strings.ReplaceAll(name, "-", "_")
	if _, ok := registry.GetTool(snakeName); ok {
		return snakeName, true
	}
	return name, false
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func firstSentence(s string) string {
	if before, _, found := strings.Cut(s, ". "); found {
		return before + "."
	}
	return s
}

// toFlagName converts snake_case to kebab-case.
func toFlagName(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}
