// Package testutils holds helpers shared by package tests: loggers, generated
// PDF fixtures, fake generators and MCP result decoding.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
)

// CreateTestLogger creates a logger suitable for testing
func CreateTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return logger
}

// CreateTestContext creates a context suitable for testing
func CreateTestContext() context.Context {
	return context.Background()
}

// Line is a run of text placed on a fixture page. Y is the baseline measured
// from the top of the page.
type Line struct {
	X, Y float64
	Size float64
	Font string
	Text string
}

// Page describes one fixture page in points.
type Page struct {
	Width, Height float64
	Lines         []Line
}

// LetterPage returns a US Letter page holding the given lines.
func LetterPage(lines ...Line) Page {
	return Page{Width: 612, Height: 792, Lines: lines}
}

// BuildPDF renders fixture pages with core fonts and returns the file bytes.
func BuildPDF(t *testing.T, pages ...Page) []byte {
	t.Helper()

	doc := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt", Size: fpdf.SizeType{Wd: 612, Ht: 792}})
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)

	for _, page := range pages {
		doc.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for _, line := range page.Lines {
			family := line.Font
			if family == "" {
				family = "Helvetica"
			}
			size := line.Size
			if size == 0 {
				size = 12
			}
			doc.SetFont(family, "", size)
			doc.Text(line.X, line.Y, line.Text)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("failed to build fixture PDF: %v", err)
	}
	return buf.Bytes()
}

// FakeGenerator returns canned responses and records prompts.
type FakeGenerator struct {
	mu       sync.Mutex
	Response string
	Err      error
	Prompts  []string
}

// Generate implements the generator contract used by the proposer.
func (f *FakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// Calls returns how many prompts were sent.
func (f *FakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Prompts)
}

// ResultText returns the text of the first content item of a tool result.
func ResultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected content in tool result")
	}
	textContent, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected TextContent, got %T", result.Content[0])
	}
	return textContent.Text
}

// DecodeResult unmarshals the JSON text of a tool result into v.
func DecodeResult(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()

	if err := json.Unmarshal([]byte(ResultText(t, result)), v); err != nil {
		t.Fatalf("Failed to parse tool result JSON: %v", err)
	}
}
