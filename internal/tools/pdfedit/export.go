package pdfedit

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdfedit/internal/editor"
	"github.com/sammcj/mcp-pdfedit/internal/tools"
	"github.com/sirupsen/logrus"
)

// ExportTool writes the edited and original documents.
type ExportTool struct {
	svc *editor.Service
}

// ExportResponse lists the files written by an export.
type ExportResponse struct {
	SessionID string                 `json:"session_id"`
	Files     []*editor.ExportResult `json:"files"`
}

// Definition returns the tool's definition for MCP registration
func (t *ExportTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_export",
		mcp.WithDescription(`Write the edited PDF (edited_<name>_<timestamp>.pdf) and optionally a copy of the original (original_<name>) to a directory.`),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session returned by pdf_load"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Absolute directory or URL to write to (defaults to PDFEDIT_OUTPUT_DIR or ~/.mcp-pdfedit/exports)"),
		),
		mcp.WithBoolean("include_original",
			mcp.Description("Also write a copy of the original document (default: true)"),
			mcp.DefaultBool(true),
		),
		mcp.WithBoolean("include_edited",
			mcp.Description("Write the edited document (default: true)"),
			mcp.DefaultBool(true),
		),
	)
}

// Execute writes the requested files
func (t *ExportTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	logger.Debug("Executing pdf_export tool")

	sessionID, err := tools.RequiredString(args, "session_id")
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	dir, err := parseOutputDir(args)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	var variants []editor.Variant
	if tools.OptionalBool(args, "include_edited", true) {
		variants = append(variants, editor.Edited)
	}
	if tools.OptionalBool(args, "include_original", true) {
		variants = append(variants, editor.Original)
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("invalid parameters: nothing to export")
	}

	response := ExportResponse{SessionID: sessionID}
	for _, variant := range variants {
		result, err := t.svc.Export(ctx, sessionID, variant, dir)
		if err != nil {
			return tools.NewToolResultJSON(map[string]any{
				"error":      err.Error(),
				"session_id": sessionID,
				"variant":    variant,
				"files":      response.Files,
			})
		}
		response.Files = append(response.Files, result)
	}

	logger.WithFields(logrus.Fields{
		"session": sessionID,
		"files":   len(response.Files),
	}).Debug("pdf_export completed")

	return tools.NewToolResultJSON(response)
}
