package render

import (
	"fmt"
	"strings"
)

// SpanOutcome is what happened to one span.
type SpanOutcome string

const (
	Drawn             SpanOutcome = "drawn"
	DrawnWithDefaults SpanOutcome = "drawn_with_defaults"
	SpanSkipped       SpanOutcome = "skipped"
	// Blank spans (after replacement) are intentionally not drawn.
	Blank SpanOutcome = "blank"
)

// HighlightOutcome is what happened to one highlight over one span.
type HighlightOutcome string

const (
	Marked           HighlightOutcome = "marked"
	Outlined         HighlightOutcome = "outlined"
	HighlightSkipped HighlightOutcome = "skipped"
)

// SpanResult records the drawing of one span.
type SpanResult struct {
	Page     int         `json:"page"`
	Span     int         `json:"span"`
	Text     string      `json:"text"`
	Replaced bool        `json:"replaced,omitempty"`
	Outcome  SpanOutcome `json:"outcome"`
	Reason   string      `json:"reason,omitempty"`
}

// HighlightResult records one highlight applied over one span.
type HighlightResult struct {
	Page    int              `json:"page"`
	Span    int              `json:"span"`
	Target  string           `json:"target"`
	Outcome HighlightOutcome `json:"outcome"`
	Reason  string           `json:"reason,omitempty"`
}

// Report is the per-span account of a render.
type Report struct {
	Pages      int               `json:"pages"`
	Spans      []SpanResult      `json:"spans"`
	Highlights []HighlightResult `json:"highlights"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// Counts is an aggregate view of a Report.
type Counts struct {
	Drawn             int `json:"drawn"`
	DrawnWithDefaults int `json:"drawn_with_defaults"`
	Skipped           int `json:"skipped"`
	Blank             int `json:"blank"`
	Replaced          int `json:"replaced"`
	Marked            int `json:"highlights_marked"`
	Outlined          int `json:"highlights_outlined"`
	HighlightSkipped  int `json:"highlights_skipped"`
}

// Counts tallies outcomes.
func (r *Report) Counts() Counts {
	var c Counts
	if r == nil {
		return c
	}
	for _, s := range r.Spans {
		switch s.Outcome {
		case Drawn:
			c.Drawn++
		case DrawnWithDefaults:
			c.DrawnWithDefaults++
		case SpanSkipped:
			c.Skipped++
		case Blank:
			c.Blank++
		}
		if s.Replaced {
			c.Replaced++
		}
	}
	for _, h := range r.Highlights {
		switch h.Outcome {
		case Marked:
			c.Marked++
		case Outlined:
			c.Outlined++
		case HighlightSkipped:
			c.HighlightSkipped++
		}
	}
	return c
}

func (c Counts) String() string {
	parts := []string{
		fmt.Sprintf("%d spans drawn", c.Drawn+c.DrawnWithDefaults),
	}
	if c.DrawnWithDefaults > 0 {
		parts = append(parts, fmt.Sprintf("%d with default font", c.DrawnWithDefaults))
	}
	if c.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", c.Skipped))
	}
	parts = append(parts,
		fmt.Sprintf("%d replaced", c.Replaced),
		fmt.Sprintf("%d highlighted", c.Marked+c.Outlined),
	)
	return strings.Join(parts, ", ")
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
