// Package pdfedit exposes the PDF editing pipeline as MCP tools.
package pdfedit

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sammcj/mcp-pdfedit/internal/editor"
	"github.com/sammcj/mcp-pdfedit/internal/tools"
)

// All returns every PDF editing tool bound to svc.
func All(svc *editor.Service) []tools.Tool {
	return []tools.Tool{
		&LoadTool{svc: svc},
		&ProposeTool{svc: svc},
		&ApplyTool{svc: svc},
		&ExportTool{svc: svc},
		&EditTool{svc: svc},
		&StatusTool{svc: svc},
		&ClearTool{svc: svc},
	}
}

// parseLocation accepts an absolute local path or a URL.
func parseLocation(args map[string]any, name string) (string, error) {
	location, err := tools.RequiredString(args, name)
	if err != nil {
		return "", err
	}
	if strings.Contains(location, "://") {
		return location, nil
	}
	if !filepath.IsAbs(location) {
		return "", fmt.Errorf("%s must be an absolute path or a URL", name)
	}
	if !strings.HasSuffix(strings.ToLower(location), ".pdf") {
		return "", fmt.Errorf("%s must be a PDF file (.pdf extension)", name)
	}
	return location, nil
}

// parseOutputDir accepts an empty value or an absolute directory or URL.
func parseOutputDir(args map[string]any) (string, error) {
	dir := tools.OptionalString(args, "output_dir")
	if dir == "" || strings.Contains(dir, "://") || filepath.IsAbs(dir) {
		return dir, nil
	}
	return "", fmt.Errorf("output_dir must be an absolute path")
}
