// Package extract reads PDF bytes into positioned text spans and into plain
// running text.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/sammcj/mcp-pdfedit/internal/document"
	"golang.org/x/text/unicode/norm"
)

// ErrExtraction wraps every failure to read a document.
var ErrExtraction = errors.New("failed to extract PDF")

// Grouping thresholds, in multiples of the glyph's font size.
const (
	baselineTolerance = 0.3
	wordGap           = 0.25
	columnGap         = 3.0
	backtrack         = 1.0

	// estimatedAdvance stands in for glyph widths when the font has no /Widths
	// array, which is the case for the standard 14 fonts.
	estimatedAdvance = 0.5

	// descent below the baseline included in a span's box.
	descent = 0.25
)

// glyph is one positioned character as reported by the PDF reader. Y is the
// baseline in PDF user space (origin bottom left).
type glyph struct {
	Font string
	Size float64
	X, Y float64
	W    float64
	S    string
}

// Spans extracts every page of the document with its text spans. Any failure
// returns no pages; there is no partial recovery.
func Spans(data []byte) (pages []document.Page, err error) {
	defer func() {
		// The reader panics on some malformed input
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	count := reader.NumPage()
	pages = make([]document.Page, 0, count)
	for i := 1; i <= count; i++ {
		p := reader.Page(i)
		page := document.Page{Index: i - 1, Width: document.LetterWidth, Height: document.LetterHeight}
		if p.V.IsNull() {
			pages = append(pages, page)
			continue
		}

		page.Width, page.Height = pageSize(p.V)

		content := p.Content()
		glyphs := make([]glyph, 0, len(content.Text))
		for _, t := range content.Text {
			glyphs = append(glyphs, glyph{Font: t.Font, Size: t.FontSize, X: t.X, Y: t.Y, W: t.W, S: t.S})
		}
		page.Spans = groupGlyphs(glyphs, page.Height)
		pages = append(pages, page)
	}

	return pages, nil
}

// pageSize reads the MediaBox, following the page tree for inherited values.
func pageSize(v pdf.Value) (float64, float64) {
	for node, depth := v, 0; !node.IsNull() && depth < 32; node, depth = node.Key("Parent"), depth+1 {
		box := node.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() < 4 {
			continue
		}
		w := math.Abs(box.Index(2).Float64() - box.Index(0).Float64())
		h := math.Abs(box.Index(3).Float64() - box.Index(1).Float64())
		if w > 0 && h > 0 {
			return w, h
		}
	}
	return document.LetterWidth, document.LetterHeight
}

// spanBuilder accumulates glyphs that belong to one span.
type spanBuilder struct {
	font      string
	size      float64
	baseline  float64
	x0, x1    float64
	lastEnd   float64
	text      strings.Builder
	hasWidths bool
	runes     int
}

func (b *spanBuilder) accepts(g glyph) bool {
	if g.Font != b.font || math.Abs(g.Size-b.size) > 0.01 {
		return false
	}
	unit := effectiveSize(b.size)
	if math.Abs(g.Y-b.baseline) > baselineTolerance*unit {
		return false
	}
	gap := g.X - b.lastEnd
	return gap >= -backtrack*unit && gap <= columnGap*unit
}

func (b *spanBuilder) add(g glyph) {
	unit := effectiveSize(b.size)
	if b.runes > 0 && g.X-b.lastEnd > wordGap*unit {
		if s := b.text.String(); !strings.HasSuffix(s, " ") && !strings.HasPrefix(g.S, " ") {
			b.text.WriteByte(' ')
			b.runes++
		}
	}

	b.text.WriteString(g.S)
	b.runes += utf8.RuneCountInString(g.S)

	advance := math.Max(g.W, 0)
	if advance > 0 {
		b.hasWidths = true
	}
	b.lastEnd = g.X + advance
	b.x0 = math.Min(b.x0, g.X)
	b.x1 = math.Max(b.x1, g.X+advance)
}

func (b *spanBuilder) span(pageHeight float64) (document.Span, bool) {
	text := norm.NFC.String(b.text.String())
	if strings.TrimSpace(text) == "" {
		return document.Span{}, false
	}

	unit := effectiveSize(b.size)
	x1 := b.x1
	if !b.hasWidths {
		x1 = math.Max(x1, b.x0+estimatedAdvance*unit*float64(b.runes))
	}

	top := pageHeight - b.baseline - unit
	return document.Span{
		Text:     text,
		BBox:     document.BBox{X0: b.x0, Y0: top, X1: x1, Y1: pageHeight - b.baseline + descent*unit},
		FontSize: unit,
		FontName: b.font,
		Color:    document.ColorNone,
	}, true
}

// groupGlyphs merges glyphs in content order into spans and converts their
// boxes to a top-left origin.
func groupGlyphs(glyphs []glyph, pageHeight float64) []document.Span {
	var spans []document.Span
	var cur *spanBuilder

	flush := func() {
		if cur == nil {
			return
		}
		if s, ok := cur.span(pageHeight); ok {
			spans = append(spans, s)
		}
		cur = nil
	}

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if cur == nil || !cur.accepts(g) {
			flush()
			cur = &spanBuilder{font: g.Font, size: g.Size, baseline: g.Y, x0: g.X, x1: g.X, lastEnd: g.X}
		}
		cur.add(g)
	}
	flush()

	return spans
}

func effectiveSize(size float64) float64 {
	size = math.Abs(size)
	if size < 0.5 {
		return document.DefaultFontSize
	}
	return size
}
