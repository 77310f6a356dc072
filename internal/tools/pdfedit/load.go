package pdfedit

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdfedit/internal/editor"
	"github.com/sammcj/mcp-pdfedit/internal/tools"
	"github.com/sirupsen/logrus"
)

// LoadTool reads a PDF into an editing session.
type LoadTool struct {
	svc *editor.Service
}

// Definition returns the tool's definition for MCP registration
func (t *LoadTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_load",
		mcp.WithDescription(`Load a PDF into an editing session. Extracts positioned text spans and plain text, and returns a session_id used by the other pdf_ tools together with document statistics and a text preview.`),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF, or a URL (s3://, gs://, https://)"),
		),
		mcp.WithString("session_id",
			mcp.Description("Existing session to load the document into (replaces its document and edits)"),
		),
		mcp.WithString("api_key",
			mcp.Description("Gemini API key for this session only (overrides the server default)"),
		),
	)
}

// Execute loads the document
func (t *LoadTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	logger.Debug("Executing pdf_load tool")

	location, err := parseLocation(args, "file_path")
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	result, err := t.svc.Load(ctx, location, editor.LoadOptions{
		SessionID: tools.OptionalString(args, "session_id"),
		APIKey:    tools.OptionalString(args, "api_key"),
	})
	if err != nil {
		return tools.NewToolResultJSON(map[string]any{
			"error":     err.Error(),
			"file_path": location,
		})
	}

	logger.WithFields(logrus.Fields{
		"session": result.SessionID,
		"pages":   result.Stats.Pages,
	}).Debug("pdf_load completed")

	return tools.NewToolResultJSON(result)
}

// ProvideExtendedInfo provides detailed usage information for the tool
func (t *LoadTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Load a local report",
				Arguments: map[string]any{
					"file_path": "/Users/username/documents/report.pdf",
				},
				ExpectedResult: "Returns a session_id, file size, page/span/character counts and the first 500 characters of text",
			},
			{
				Description: "Replace the document in an existing session",
				Arguments: map[string]any{
					"file_path":  "/Users/username/documents/report-v2.pdf",
					"session_id": "2f6b1c1e-4c1a-4d8e-9d8e-1b2c3d4e5f60",
				},
				ExpectedResult: "Same session_id with the new document; earlier proposals and output are discarded",
			},
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "Result has degraded: true and diagnostics",
				Solution: "The PDF could only be partly read. Proposals still work on whatever text was found, but rendering needs at least one page of spans.",
			},
			{
				Problem:  "file exceeds the maximum allowed size",
				Solution: "Raise PDFEDIT_MAX_FILE_SIZE_MB (default 10).",
			},
		},
		ParameterDetails: map[string]string{
			"file_path":  "Absolute path ending in .pdf, or any URL the storage layer supports. The file must start with a %PDF- header.",
			"session_id": "Optional. Reuses the session; without it a new session is created.",
			"api_key":    "Optional. At least 20 characters. Used only by this session.",
		},
		WhenToUse:    "First step of any edit: load the PDF, then call pdf_propose_edits with the session_id.",
		WhenNotToUse: "Scanned PDFs without a text layer: there is nothing to edit.",
	}
}
