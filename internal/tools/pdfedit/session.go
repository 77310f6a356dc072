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

// StatusTool reports on one session or lists them all.
type StatusTool struct {
	svc *editor.Service
}

// StatusResponse is a session status with fresh advisory checks.
type StatusResponse struct {
	*editor.Status
	Checks []edits.Check `json:"checks,omitempty"`
}

// Definition returns the tool's definition for MCP registration
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_status",
		mcp.WithDescription(`Show the state of a PDF editing session (document, proposal, checks, render counts), or list all sessions when no session_id is given.`),
		mcp.WithString("session_id",
			mcp.Description("Session to inspect"),
		),
	)
}

// Execute reports status
func (t *StatusTool) Execute(_ context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	logger.Debug("Executing pdf_status tool")

	sessionID := tools.OptionalString(args, "session_id")
	if sessionID == "" {
		return tools.NewToolResultJSON(map[string]any{"sessions": t.svc.Sessions()})
	}

	status, err := t.svc.Status(sessionID)
	if err != nil {
		return tools.NewToolResultJSON(map[string]any{
			"error":      err.Error(),
			"session_id": sessionID,
		})
	}

	response := StatusResponse{Status: status}
	if status.Proposal != nil {
		response.Checks, _ = t.svc.Check(sessionID)
	}
	return tools.NewToolResultJSON(response)
}

// ClearTool discards a session.
type ClearTool struct {
	svc *editor.Service
}

// Definition returns the tool's definition for MCP registration
func (t *ClearTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_clear",
		mcp.WithDescription(`Discard a PDF editing session and everything it holds (document, edits, rendered output).`),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session to discard"),
		),
	)
}

// Execute clears the session
func (t *ClearTool) Execute(_ context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	logger.Debug("Executing pdf_clear tool")

	sessionID, err := tools.RequiredString(args, "session_id")
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	return tools.NewToolResultJSON(map[string]any{
		"session_id": sessionID,
		"cleared":    t.svc.Clear(sessionID),
	})
}
