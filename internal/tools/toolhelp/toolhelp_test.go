package toolhelp_test

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdfedit/internal/registry"
	"github.com/sammcj/mcp-pdfedit/internal/testutils"
	"github.com/sammcj/mcp-pdfedit/internal/tools"
	"github.com/sammcj/mcp-pdfedit/internal/tools/toolhelp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainTool struct{}

func (plainTool) Definition() mcp.Tool {
	return mcp.NewTool("pdf_clear", mcp.WithDescription("Discard a session"))
}

func (plainTool) Execute(context.Context, *logrus.Logger, map[string]any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("ok"), nil
}

type documentedTool struct{ plainTool }

func (documentedTool) Definition() mcp.Tool {
	return mcp.NewTool("pdf_edit", mcp.WithDescription("Edit a PDF"), mcp.WithString("file_path", mcp.Required()))
}

func (documentedTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		WhenToUse: "Quick edits",
		Troubleshooting: []tools.TroubleshootingTip{
			{Problem: "No changes", Solution: "Quote the exact text"},
		},
	}
}

func TestToolHelp(t *testing.T) {
	t.Setenv("DISABLED_TOOLS", "")
	registry.Init(testutils.CreateTestLogger())
	registry.Register(plainTool{})
	registry.Register(documentedTool{})
	help := &toolhelp.ToolHelpTool{}
	registry.Register(help)

	def := help.Definition()
	assert.Equal(t, "get_tool_help", def.Name)

	result, err := help.Execute(context.Background(), testutils.CreateTestLogger(), map[string]any{"tool_name": "pdf_edit"})
	require.NoError(t, err)

	var response toolhelp.ToolHelpResponse
	testutils.DecodeResult(t, result, &response)
	assert.Equal(t, "Edit a PDF", response.Description)
	assert.Contains(t, response.InputSchema.Required, "file_path")
	require.NotNil(t, response.Extended)
	assert.Equal(t, "Quick edits", response.Extended.WhenToUse)
	assert.Len(t, response.Extended.Troubleshooting, 1)
}

func TestToolHelp_Errors(t *testing.T) {
	t.Setenv("DISABLED_TOOLS", "")
	registry.Init(testutils.CreateTestLogger())
	registry.Register(plainTool{})
	help := &toolhelp.ToolHelpTool{}

	for _, args := range []map[string]any{
		{},
		{"tool_name": "pdf_clear"},
		{"tool_name": "missing"},
	} {
		_, err := help.Execute(context.Background(), testutils.CreateTestLogger(), args)
		assert.Error(t, err, args)
	}
}
