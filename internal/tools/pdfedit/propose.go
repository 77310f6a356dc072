package pdfedit

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdfedit/internal/editor"
	"github.com/sammcj/mcp-pdfedit/internal/tools"
	"github.com/sirupsen/logrus"
)

// ProposeTool asks the model for edits to a loaded document.
type ProposeTool struct {
	svc *editor.Service
}

// Definition returns the tool's definition for MCP registration
func (t *ProposeTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_propose_edits",
		mcp.WithDescription(`Turn a natural-language instruction into replace and highlight edits for a loaded PDF. Returns the proposed modifications with a check of whether each target text exists in the document. Nothing is rendered until pdf_apply_edits is called.`),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session returned by pdf_load"),
		),
		mcp.WithString("instruction",
			mcp.Required(),
			mcp.Description("What to change, e.g. \"Change 'Chapter 2: Background' to 'Chapter 2: Fundamentals' and highlight financial terms\""),
		),
	)
}

// Execute proposes edits
func (t *ProposeTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	logger.Debug("Executing pdf_propose_edits tool")

	sessionID, err := tools.RequiredString(args, "session_id")
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	instruction, err := tools.RequiredString(args, "instruction")
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	result, err := t.svc.Propose(ctx, sessionID, instruction)
	if err != nil {
		response := map[string]any{
			"error":      err.Error(),
			"session_id": sessionID,
		}
		// A failed model call still leaves an (empty) proposal on the session
		if result != nil {
			response["proposal"] = result.Proposal
		}
		return tools.NewToolResultJSON(response)
	}

	logger.WithFields(logrus.Fields{
		"session": sessionID,
		"source":  result.Proposal.Source,
		"edits":   len(result.Proposal.Edits),
	}).Debug("pdf_propose_edits completed")

	return tools.NewToolResultJSON(result)
}

// ProvideExtendedInfo provides detailed usage information for the tool
func (t *ProposeTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Rename a heading",
				Arguments: map[string]any{
					"session_id":  "2f6b1c1e-4c1a-4d8e-9d8e-1b2c3d4e5f60",
					"instruction": "Change 'Chapter 2: Background' to 'Chapter 2: Fundamentals'",
				},
				ExpectedResult: "One replace modification with a check showing the original text was found",
			},
			{
				Description: "Highlight content",
				Arguments: map[string]any{
					"session_id":  "2f6b1c1e-4c1a-4d8e-9d8e-1b2c3d4e5f60",
					"instruction": "Highlight all financial information",
				},
				ExpectedResult: "Highlight modifications for phrases mentioning budgets, costs, revenue and similar terms",
			},
		},
		CommonPatterns: []string{
			"Review the checks: edits whose text is not found will have no effect when applied",
			"Quote exact phrases in the instruction ('old' to 'new') so the keyword fallback can act if the model answer is unusable",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "proposal.source is fallback",
				Solution: "The model did not return valid JSON. A keyword heuristic produced the edits instead. Set PDFEDIT_DEBUG=true to see the raw response.",
			},
			{
				Problem:  "no generative model is available",
				Solution: "None of the configured models accepted the API key. Check GEMINI_API_KEY or pass api_key to pdf_load, and PDFEDIT_MODELS.",
			},
		},
		WhenToUse: "After pdf_load, to plan edits before rendering them.",
	}
}
