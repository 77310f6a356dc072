// Package toolhelp serves the extended usage notes that tools can provide.
package toolhelp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdfedit/internal/registry"
	"github.com/sammcj/mcp-pdfedit/internal/tools"
	"github.com/sirupsen/logrus"
)

// ToolHelpTool returns examples, parameter notes and troubleshooting for
// registered tools. Register it after the tools it describes.
type ToolHelpTool struct{}

// ToolHelpResponse is the help for one tool.
type ToolHelpResponse struct {
	ToolName    string              `json:"tool_name"`
	Description string              `json:"description"`
	InputSchema mcp.ToolInputSchema `json:"input_schema"`
	Extended    *tools.ExtendedHelp `json:"extended_info,omitempty"`
}

// Definition returns the tool's definition for MCP registration
func (t *ToolHelpTool) Definition() mcp.Tool {
	names := registry.GetToolNamesWithExtendedHelp()

	description := "Get detailed examples and troubleshooting for the PDF editing tools, useful after an unexpected error."
	if len(names) == 0 {
		description = "No tools currently provide extended help information."
	}

	return mcp.NewTool(
		"get_tool_help",
		mcp.WithDescription(description),
		mcp.WithString("tool_name",
			mcp.Required(),
			mcp.Description("Name of the tool to get help for"),
			mcp.Enum(names...),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

// Execute returns the help for the named tool
func (t *ToolHelpTool) Execute(_ context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	toolName, err := tools.RequiredString(args, "tool_name")
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	logger.WithField("tool_name", toolName).Debug("Executing get_tool_help tool")

	tool, exists := registry.GetTool(toolName)
	provider, hasHelp := tool.(tools.ExtendedHelpProvider)
	if !exists || !hasHelp {
		return nil, fmt.Errorf("tool '%s' not found, disabled, or without extended help. Tools with extended help: %s",
			toolName, strings.Join(registry.GetToolNamesWithExtendedHelp(), ", "))
	}

	definition := tool.Definition()
	response := ToolHelpResponse{
		ToolName:    toolName,
		Description: definition.Description,
		InputSchema: definition.InputSchema,
		Extended:    provider.ProvideExtendedInfo(),
	}

	return tools.NewToolResultJSON(response)
}
