package pdfedit

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sammcj/mcp-pdfedit/internal/editor"
	"github.com/sammcj/mcp-pdfedit/internal/tools"
	"github.com/sirupsen/logrus"
)

// EditTool runs the whole pipeline in one call.
type EditTool struct {
	svc *editor.Service
}

// Definition returns the tool's definition for MCP registration
func (t *EditTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_edit",
		mcp.WithDescription(`Edit a PDF in one step: load it, propose edits from the instruction, render them and write edited_<name>_<timestamp>.pdf. Use the separate pdf_ tools instead when you want to review the proposed edits first.`),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF, or a URL"),
		),
		mcp.WithString("instruction",
			mcp.Required(),
			mcp.Description("What to change in the document"),
		),
		mcp.WithString("output_dir",
			mcp.Description("Absolute directory or URL for the edited file (defaults to PDFEDIT_OUTPUT_DIR or ~/.mcp-pdfedit/exports)"),
		),
		mcp.WithString("api_key",
			mcp.Description("Gemini API key for this call only"),
		),
	)
}

// Execute runs load, propose, apply and export
func (t *EditTool) Execute(ctx context.Context, logger *logrus.Logger, args map[string]any) (*mcp.CallToolResult, error) {
	logger.Debug("Executing pdf_edit tool")

	location, err := parseLocation(args, "file_path")
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	instruction, err := tools.RequiredString(args, "instruction")
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	dir, err := parseOutputDir(args)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	result, err := t.svc.Run(ctx, editor.RunOptions{
		Location:    location,
		Instruction: instruction,
		APIKey:      tools.OptionalString(args, "api_key"),
		OutputDir:   dir,
	})
	if err != nil {
		return tools.NewToolResultJSON(map[string]any{
			"error":     err.Error(),
			"file_path": location,
			"partial":   result,
		})
	}

	logger.WithFields(logrus.Fields{
		"file_path": location,
		"output":    result.Export.Location,
	}).Debug("pdf_edit completed")

	return tools.NewToolResultJSON(result)
}

// ProvideExtendedInfo provides detailed usage information for the tool
func (t *EditTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Rename a chapter and highlight costs",
				Arguments: map[string]any{
					"file_path":   "/Users/username/documents/thesis.pdf",
					"instruction": "Change 'Chapter 2: Background' to 'Chapter 2: Fundamentals' and highlight financial information",
					"output_dir":  "/Users/username/documents/edited",
				},
				ExpectedResult: "Writes edited_thesis_<timestamp>.pdf and returns the proposal, render counts and export location",
			},
		},
		ParameterDetails: map[string]string{
			"instruction": "Natural language. Quoted 'old' to 'new' phrases work even when the model answer cannot be parsed.",
			"output_dir":  "Optional absolute directory or URL. Local directories are created when missing.",
		},
		WhenToUse:    "Quick edits where reviewing the proposal first is not needed.",
		WhenNotToUse: "When the edits should be checked or adjusted before rendering; use pdf_load, pdf_propose_edits, pdf_apply_edits and pdf_export instead.",
	}
}
