package pdfedit

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdfedit/internal/edits"
	"github.com/sammcj/mcp-pdfedit/internal/editor"
	"github.com/sammcj/mcp-pdfedit/internal/tools"
	"github.com/sirupsen/logrus"
)

// ApplyTool renders the session's edits into a new document.
type ApplyTool struct {
	svc *editor.Service
}

// Definition returns the tool's definition for MCP registration
func (t *ApplyTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_apply_edits",
		mcp.WithDescription(`Render the edited PDF for a session. Uses the edits from pdf_propose_edits, or an explicit JSON list of edits when "edits" is given. Returns per-span counts; use pdf_export to write the result.`),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session returned by pdf_load"),
		),
		mcp.WithString("edits",
			mcp.Description(`Optional JSON array replacing the proposed edits, e.g. [{"type":"replace","original_text":"old","new_text":"new"},{"type":"highlight","text_to_highlight":"budget"}]`),
		),
		mcp.WithString("summary",
			mcp.Description("Optional summary stored with explicit edits"),
		),
	)
}

// Execute renders the document
func (t *ApplyTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	logger.Debug("Executing pdf_apply_edits tool")

	sessionID, err := tools.RequiredString(args, "session_id")
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	var result *editor.GenerateResult
	if raw := tools.OptionalString(args, "edits"); raw != "" {
		set, parseErr := edits.ParseSet(raw)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid parameters: edits: %w", parseErr)
		}
		// Explicit edits replace the proposal only once they render
		result, err = t.svc.GenerateWith(ctx, sessionID, set, tools.OptionalString(args, "summary"))
	} else {
		result, err = t.svc.Generate(ctx, sessionID)
	}
	if err != nil {
		return tools.NewToolResultJSON(map[string]any{
			"error":      err.Error(),
			"session_id": sessionID,
		})
	}

	logger.WithFields(logrus.Fields{
		"session": sessionID,
		"counts":  result.Counts.String(),
	}).Debug("pdf_apply_edits completed")

	return tools.NewToolResultJSON(result)
}
