// Package document holds the page and span model shared by the extraction,
// proposal and rendering stages.
package document

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultFontSize is used when a span has no usable size or a draw falls back.
const DefaultFontSize = 12.0

// Letter page geometry in points, used when a page declares no MediaBox.
const (
	LetterWidth  = 612.0
	LetterHeight = 792.0
)

// Color is an RGB triple. Set is false for the "inherit/none" sentinel.
type Color struct {
	R   uint8 `json:"r"`
	G   uint8 `json:"g"`
	B   uint8 `json:"b"`
	Set bool  `json:"set"`
}

var (
	// ColorNone is the sentinel for spans whose source colour is unknown.
	ColorNone = Color{}

	DefaultTextColor = RGB(0, 0, 0)
	HighlightColor   = RGB(255, 255, 0)
)

// RGB returns an explicit colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, Set: true}
}

// ColorFromInt decodes a packed 0xRRGGBB value. Zero is treated as the
// sentinel, matching how extractors report an absent fill colour.
func ColorFromInt(v int) Color {
	if v == 0 {
		return ColorNone
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

// Resolve returns c, or DefaultTextColor for the sentinel.
func (c Color) Resolve() Color {
	if !c.Set {
		return DefaultTextColor
	}
	return c
}

// BBox is a rectangle in points with a top-left origin.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

func (b BBox) Width() float64  { return b.X1 - b.X0 }
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Span is a run of text sharing one font, size and colour.
type Span struct {
	Text     string  `json:"text"`
	BBox     BBox    `json:"bbox"`
	FontSize float64 `json:"font_size"`
	FontName string  `json:"font_name"`
	Color    Color   `json:"color"`
}

// Page is one source page. Index is zero based.
type Page struct {
	Index  int     `json:"index"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Spans  []Span  `json:"spans"`
}

// Stats summarises an extracted document.
type Stats struct {
	Pages      int `json:"total_pages"`
	Spans      int `json:"total_text_blocks"`
	Characters int `json:"total_characters"`
}

// ComputeStats counts pages, spans and span characters.
func ComputeStats(pages []Page) Stats {
	stats := Stats{Pages: len(pages)}
	for _, page := range pages {
		stats.Spans += len(page.Spans)
		for _, span := range page.Spans {
			stats.Characters += utf8.RuneCountInString(span.Text)
		}
	}
	return stats
}

func (s Stats) String() string {
	return fmt.Sprintf("%d pages, %d text blocks, %d characters", s.Pages, s.Spans, s.Characters)
}

// FormatFileSize renders a byte count as B, KB or MB.
func FormatFileSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

// DefaultPreviewLength is the display limit used by Preview callers.
const DefaultPreviewLength = 500

// Preview collapses whitespace and truncates text for display.
func Preview(text string, max int) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	if cleaned == "" {
		return "No text available"
	}
	if max > 0 && utf8.RuneCountInString(cleaned) > max {
		runes := []rune(cleaned)
		cleaned = string(runes[:max]) + "..."
	}
	return cleaned
}
