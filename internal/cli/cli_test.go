package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdfedit/internal/editor"
	"github.com/sammcj/mcp-pdfedit/internal/edits"
	"github.com/sammcj/mcp-pdfedit/internal/llm"
	"github.com/sammcj/mcp-pdfedit/internal/registry"
	"github.com/sammcj/mcp-pdfedit/internal/render"
	"github.com/sammcj/mcp-pdfedit/internal/testutils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoTool returns its arguments as JSON.
type echoTool struct{}

func (echoTool) Definition() mcp.Tool {
	return mcp.NewTool("pdf_echo",
		mcp.WithDescription("Echo arguments. Used by tests."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path")),
		mcp.WithBoolean("include_original", mcp.Description("Flag")),
		mcp.WithNumber("limit", mcp.Description("Count")),
	)
}

func (echoTool) Execute(_ context.Context, _ *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func setupRegistry(t *testing.T) {
	t.Helper()
	t.Setenv("DISABLED_TOOLS", "")
	registry.Init(testutils.CreateTestLogger())
	registry.Register(echoTool{})
	color.NoColor = true
}

func TestParseArgs(t *testing.T) {
	def := echoTool{}.Definition()

	tests := []struct {
		name string
		args []string
		want map[string]any
	}{
		{
			name: "equals form with kebab flag",
			args: []string{"--file-path=/tmp/a.pdf"},
			want: map[string]any{"file_path": "/tmp/a.pdf"},
		},
		{
			name: "separate value",
			args: []string{"--file-path", "/tmp/a.pdf", "--limit", "3"},
			want: map[string]any{"file_path": "/tmp/a.pdf", "limit": int64(3)},
		},
		{
			name: "bare boolean",
			args: []string{"--include-original", "--file-path=/tmp/a.pdf"},
			want: map[string]any{"include_original": true, "file_path": "/tmp/a.pdf"},
		},
		{
			name: "flags override JSON",
			args: []string{`{"file_path": "/tmp/json.pdf", "limit": 2}`, "--file-path=/tmp/flag.pdf"},
			want: map[string]any{"file_path": "/tmp/flag.pdf", "limit": float64(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args, def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	def := echoTool{}.Definition()

	for _, args := range [][]string{
		{"positional"},
		{"--file-path"},
		{"{not json"},
	} {
		_, err := parseArgs(args, def)
		assert.Error(t, err, args)
	}
}

func TestCoerceValue(t *testing.T) {
	assert.Equal(t, true, coerceValue("yes", "boolean"))
	assert.Equal(t, false, coerceValue("false", "boolean"))
	assert.Equal(t, "maybe", coerceValue("maybe", "boolean"))
	assert.Equal(t, int64(42), coerceValue("42", "integer"))
	assert.Equal(t, 1.5, coerceValue("1.5", "number"))
	assert.Equal(t, "42", coerceValue("42", "string"))
}

func TestToFlagName(t *testing.T) {
	assert.Equal(t, "include-original", toFlagName("include_original"))
	assert.Equal(t, "file-path", toFlagName("file_path"))
}

func TestRunner_ListAndHelp(t *testing.T) {
	setupRegistry(t)

	var out bytes.Buffer
	runner := NewRunner(testutils.CreateTestLogger(), OutputText, &out)
	require.NoError(t, runner.ListTools())
	assert.Contains(t, out.String(), "pdf_echo")
	assert.Contains(t, out.String(), "Echo arguments.")
	assert.NotContains(t, out.String(), "Used by tests")

	out.Reset()
	require.NoError(t, runner.HelpTool("pdf-echo"))
	assert.Contains(t, out.String(), "--file-path")
	assert.Contains(t, out.String(), "(required)")

	assert.Error(t, runner.HelpTool("missing"))
}

func TestRunner_RunTool(t *testing.T) {
	setupRegistry(t)

	var out bytes.Buffer
	runner := NewRunner(testutils.CreateTestLogger(), OutputText, &out)
	require.NoError(t, runner.RunTool(context.Background(), "pdf-echo", []string{"--file-path=/tmp/a.pdf"}))
	assert.Contains(t, out.String(), `"file_path":"/tmp/a.pdf"`)

	err := runner.RunTool(context.Background(), "unknown", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mcp-pdfedit cli list")

	out.Reset()
	jsonRunner := NewRunner(testutils.CreateTestLogger(), OutputJSON, &out)
	require.NoError(t, jsonRunner.RunTool(context.Background(), "pdf_echo", []string{"--file-path", "/tmp/b.pdf"}))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Contains(t, decoded, "content")
}

func TestPrintProposal(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	PrintProposal(&out, &editor.ProposeResult{
		Proposal: &edits.Proposal{
			Edits: edits.Set{
				edits.Replace{OriginalText: "Background", NewText: "Fundamentals"},
				edits.Highlight{TargetText: "budgett"},
			},
			Summary: "Two edits",
			Source:  edits.SourceModel,
			Model:   "gemini-2.0-flash",
		},
		Checks: []edits.Check{
			{Index: 0, Found: true},
			{Index: 1, Found: false, Suggestion: "budget"},
		},
	})

	text := out.String()
	assert.Contains(t, text, "Two edits (model, gemini-2.0-flash)")
	assert.Contains(t, text, `1. replace "Background" -> "Fundamentals"  found`)
	assert.Contains(t, text, `2. highlight "budgett"  missing (did you mean "budget"?)`)
}

func TestPrintOutputAndProbe(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	PrintOutput(&out,
		&editor.GenerateResult{Counts: render.Counts{Drawn: 3, Replaced: 1}, Warnings: []string{"page count mismatch"}},
		&editor.ExportResult{Location: "/tmp/edited.pdf", Size: "1.2 KB"},
	)
	assert.Contains(t, out.String(), "3 spans drawn, 1 replaced, 0 highlighted")
	assert.Contains(t, out.String(), "warning: page count mismatch")
	assert.Contains(t, out.String(), "Wrote /tmp/edited.pdf (1.2 KB)")

	out.Reset()
	PrintProbe(&out, llm.Status{Attempts: []llm.Attempt{{Model: "m1", Error: "quota"}}})
	assert.Contains(t, out.String(), "unavailable")
	assert.Contains(t, out.String(), "m1: quota")

	out.Reset()
	PrintProbe(&out, llm.Status{Ready: true, Model: "m2"})
	assert.Equal(t, "ready m2\n", out.String())
}
