// Package render rebuilds a document from its spans with edits applied:
// replacements rewrite span text and highlights are painted over matching
// spans.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sammcj/mcp-pdfedit/internal/document"
	"github.com/sammcj/mcp-pdfedit/internal/edits"
	"github.com/sammcj/mcp-pdfedit/internal/extract"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

// ErrNoPages is returned when there is nothing to render.
var ErrNoPages = errors.New("no pages to render")

const (
	highlightAlpha     = 0.35
	highlightBlendMode = "Multiply"
	outlineWidth       = 2.0
)

// Renderer produces output documents from span pages and an edit set.
type Renderer struct {
	logger *logrus.Logger
}

// New creates a Renderer.
func New(logger *logrus.Logger) *Renderer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Renderer{logger: logger}
}

// Render draws every page with its spans, applying the replacements of set
// to span text and painting its highlights over spans whose original text
// contains the target. The output has one page per input page with the same
// size. Per-span failures are recorded in the Report, never returned.
func (r *Renderer) Render(pages []document.Page, set edits.Set) ([]byte, *Report, error) {
	if len(pages) == 0 {
		return nil, nil, ErrNoPages
	}

	first := pageSize(pages[0])
	pdf := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt", Size: first})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(true)

	c := &canvas{
		pdf:        pdf,
		translate:  pdf.UnicodeTranslatorFromDescriptor(""),
		report:     &Report{Pages: len(pages)},
		highlights: set.Highlights(),
		logger:     r.logger,
	}

	for i, page := range pages {
		pdf.AddPageFormat("P", pageSize(page))
		if pdf.Err() {
			return nil, nil, fmt.Errorf("failed to add page %d: %w", i+1, pdf.Error())
		}
		c.drawPage(i, page, set)
	}

	data, err := writeAndReadBack(pdf)
	if err != nil {
		return nil, nil, err
	}

	if n, err := api.PageCount(bytes.NewReader(data), extract.Configuration()); err != nil {
		c.report.warnf("could not verify output page count: %v", err)
	} else if n != len(pages) {
		c.report.warnf("output has %d pages, expected %d", n, len(pages))
	}

	counts := c.report.Counts()
	r.logger.WithFields(logrus.Fields{
		"pages":       len(pages),
		"drawn":       counts.Drawn + counts.DrawnWithDefaults,
		"skipped":     counts.Skipped,
		"replaced":    counts.Replaced,
		"highlighted": counts.Marked + counts.Outlined,
	}).Debug("Rendered document")

	return data, c.report, nil
}

func pageSize(page document.Page) fpdf.SizeType {
	w, h := page.Width, page.Height
	if w <= 0 || h <= 0 {
		w, h = document.LetterWidth, document.LetterHeight
	}
	return fpdf.SizeType{Wd: w, Ht: h}
}

// writeAndReadBack round-trips the document through a temporary file, which
// is removed whatever the outcome.
func writeAndReadBack(pdf *fpdf.Fpdf) ([]byte, error) {
	tmp, err := os.CreateTemp("", "pdfedit-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary output: %w", err)
	}
	path := tmp.Name()
	defer func() { _ = os.Remove(path) }()
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to prepare temporary output: %w", err)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return nil, fmt.Errorf("failed to write output document: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read output document: %w", err)
	}
	return data, nil
}

type canvas struct {
	pdf        *fpdf.Fpdf
	translate  func(string) string
	report     *Report
	highlights []edits.Highlight
	logger     *logrus.Logger
}

func (c *canvas) drawPage(pageIndex int, page document.Page, set edits.Set) {
	for i, span := range page.Spans {
		c.drawSpan(pageIndex, i, span, set)
	}

	// Highlights go on top of the finished page text.
	for i, span := range page.Spans {
		for _, h := range c.highlights {
			if h.Matches(span.Text) {
				c.highlight(pageIndex, i, span, h)
			}
		}
	}
}

func (c *canvas) drawSpan(pageIndex, spanIndex int, span document.Span, set edits.Set) {
	text := set.Rewrite(span.Text)
	result := SpanResult{
		Page:     pageIndex,
		Span:     spanIndex,
		Text:     text,
		Replaced: text != span.Text,
	}

	if strings.TrimSpace(text) == "" {
		result.Outcome = Blank
		c.report.Spans = append(c.report.Spans, result)
		return
	}

	if err := c.text(span, text); err == nil {
		result.Outcome = Drawn
	} else {
		c.pdf.ClearError()
		if fallbackErr := c.defaultText(span, text); fallbackErr == nil {
			result.Outcome = DrawnWithDefaults
			result.Reason = err.Error()
		} else {
			c.pdf.ClearError()
			result.Outcome = SpanSkipped
			result.Reason = fallbackErr.Error()
			c.logger.WithError(fallbackErr).WithFields(logrus.Fields{
				"page": pageIndex + 1,
				"span": spanIndex,
			}).Warn("Could not draw span")
		}
	}

	c.report.Spans = append(c.report.Spans, result)
}

// text draws with the span's own font, size and colour.
func (c *canvas) text(span document.Span, text string) error {
	family, style, ok := coreFont(span.FontName)
	if !ok {
		return fmt.Errorf("unsupported font %q", span.FontName)
	}
	if span.FontSize <= 0 {
		return fmt.Errorf("invalid font size %v", span.FontSize)
	}

	encoded, err := c.encode(text)
	if err != nil {
		return err
	}

	color := span.Color.Resolve()
	c.pdf.SetFont(family, style, span.FontSize)
	c.pdf.SetTextColor(int(color.R), int(color.G), int(color.B))
	c.pdf.Text(span.BBox.X0, span.BBox.Y0+span.FontSize, encoded)
	return c.pdf.Error()
}

// defaultText draws in Helvetica at the default size. The text colour is
// reset to the library default; fpdf keeps colour state between calls, so
// leaving it alone would reuse the previous span's colour.
func (c *canvas) defaultText(span document.Span, text string) error {
	encoded, err := c.encode(text)
	if err != nil {
		return err
	}

	c.pdf.SetFont(familyHelvetica, "", document.DefaultFontSize)
	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.Text(span.BBox.X0, span.BBox.Y0+document.DefaultFontSize, encoded)
	return c.pdf.Error()
}

// encode converts text for the core fonts, which only cover Windows-1252.
// The translator silently substitutes anything else, so such text is
// refused instead.
func (c *canvas) encode(text string) (string, error) {
	if missing := unencodable(text); missing != "" {
		return "", fmt.Errorf("characters %q not available in core fonts", missing)
	}
	return c.translate(text), nil
}

func unencodable(text string) string {
	var missing []rune
	seen := make(map[rune]bool)
	for _, r := range text {
		if _, ok := charmap.Windows1252.EncodeRune(r); ok || seen[r] {
			continue
		}
		seen[r] = true
		missing = append(missing, r)
	}
	return string(missing)
}

func (c *canvas) highlight(pageIndex, spanIndex int, span document.Span, h edits.Highlight) {
	result := HighlightResult{Page: pageIndex, Span: spanIndex, Target: h.TargetText}

	if err := c.fill(span.BBox); err == nil {
		result.Outcome = Marked
	} else {
		c.pdf.ClearError()
		c.pdf.SetAlpha(1, "Normal")
		if outlineErr := c.outline(span.BBox); outlineErr == nil {
			result.Outcome = Outlined
			result.Reason = err.Error()
		} else {
			c.pdf.ClearError()
			result.Outcome = HighlightSkipped
			result.Reason = outlineErr.Error()
		}
	}

	c.report.Highlights = append(c.report.Highlights, result)
}

func (c *canvas) fill(box document.BBox) error {
	if box.Width() <= 0 || box.Height() <= 0 {
		return fmt.Errorf("empty highlight area")
	}
	color := document.HighlightColor
	c.pdf.SetAlpha(highlightAlpha, highlightBlendMode)
	c.pdf.SetFillColor(int(color.R), int(color.G), int(color.B))
	c.pdf.Rect(box.X0, box.Y0, box.Width(), box.Height(), "F")
	c.pdf.SetAlpha(1, "Normal")
	return c.pdf.Error()
}

func (c *canvas) outline(box document.BBox) error {
	if box.Width() < 0 || box.Height() < 0 {
		return fmt.Errorf("inverted highlight area")
	}
	color := document.HighlightColor
	c.pdf.SetDrawColor(int(color.R), int(color.G), int(color.B))
	c.pdf.SetLineWidth(outlineWidth)
	c.pdf.Rect(box.X0, box.Y0, box.Width(), box.Height(), "D")
	return c.pdf.Error()
}
