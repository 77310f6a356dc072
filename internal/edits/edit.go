// Package edits models the replace and highlight instructions proposed for a
// document, and how they are parsed, validated and applied to span text.
package edits

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Kind discriminates the edit variants.
type Kind string

const (
	KindReplace   Kind = "replace"
	KindHighlight Kind = "highlight"
)

// Edit is either a Replace or a Highlight.
type Edit interface {
	Kind() Kind
	// Target is the text the edit looks for in the document.
	Target() string
	sealed()
}

// Replace substitutes every occurrence of OriginalText with NewText.
type Replace struct {
	OriginalText string
	NewText      string
	Context      string
	Note         string
}

func (Replace) Kind() Kind { return KindReplace }
func (r Replace) Target() string { return r.OriginalText }
func (Replace) sealed() {}

// Apply performs a global substitution when s contains OriginalText.
func (r Replace) Apply(s string) string {
	if r.OriginalText == "" || !strings.Contains(s, r.OriginalText) {
		return s
	}
	return strings.ReplaceAll(s, r.OriginalText, r.NewText)
}

// Highlight marks spans whose text contains TargetText, ignoring case.
type Highlight struct {
	TargetText string
	Context    string
	Reason     string
	Note       string
}

func (Highlight) Kind() Kind { return KindHighlight }
func (h Highlight) Target() string { return h.TargetText }
func (Highlight) sealed() {}

// Matches reports whether text contains the target under Unicode case folding.
func (h Highlight) Matches(text string) bool {
	if strings.TrimSpace(h.TargetText) == "" {
		return false
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(text), fold.String(h.TargetText))
}

// Set is an ordered list of edits in the order the model produced them.
type Set []Edit

// Replacements returns the Replace edits in order.
func (s Set) Replacements() []Replace {
	var out []Replace
	for _, e := range s {
		if r, ok := e.(Replace); ok {
			out = append(out, r)
		}
	}
	return out
}

// Highlights returns the Highlight edits in order.
func (s Set) Highlights() []Highlight {
	var out []Highlight
	for _, e := range s {
		if h, ok := e.(Highlight); ok {
			out = append(out, h)
		}
	}
	return out
}

// Rewrite applies every Replace in order to text. Each replacement sees the
// output of the ones before it.
func (s Set) Rewrite(text string) string {
	for _, r := range s.Replacements() {
		text = r.Apply(text)
	}
	return text
}

// wireEdit is the JSON shape exchanged with the model and with tool callers.
type wireEdit struct {
	Type            string  `json:"type"`
	OriginalText    *string `json:"original_text,omitempty"`
	NewText         *string `json:"new_text,omitempty"`
	TextToHighlight *string `json:"text_to_highlight,omitempty"`
	TargetText      *string `json:"target_text,omitempty"`
	Context         string  `json:"context,omitempty"`
	Reason          string  `json:"reason,omitempty"`
	Note            string  `json:"humanization_note,omitempty"`
}

func (w wireEdit) edit() (Edit, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(w.Type))) {
	case KindReplace:
		if w.OriginalText == nil || *w.OriginalText == "" {
			return nil, fmt.Errorf("replace edit missing original_text")
		}
		if w.NewText == nil {
			return nil, fmt.Errorf("replace edit missing new_text")
		}
		return Replace{OriginalText: *w.OriginalText, NewText: *w.NewText, Context: w.Context, Note: w.Note}, nil
	case KindHighlight:
		target := w.TextToHighlight
		if target == nil || *target == "" {
			target = w.TargetText
		}
		if target == nil || strings.TrimSpace(*target) == "" {
			return nil, fmt.Errorf("highlight edit missing text_to_highlight")
		}
		return Highlight{TargetText: *target, Context: w.Context, Reason: w.Reason, Note: w.Note}, nil
	case "":
		return nil, fmt.Errorf("edit missing type")
	default:
		return nil, fmt.Errorf("unknown edit type %q", w.Type)
	}
}

func toWire(e Edit) wireEdit {
	switch v := e.(type) {
	case Replace:
		return wireEdit{Type: string(KindReplace), OriginalText: &v.OriginalText, NewText: &v.NewText, Context: v.Context, Note: v.Note}
	case Highlight:
		return wireEdit{Type: string(KindHighlight), TextToHighlight: &v.TargetText, Context: v.Context, Reason: v.Reason, Note: v.Note}
	}
	return wireEdit{}
}

// MarshalJSON writes the set in the model's response schema.
func (s Set) MarshalJSON() ([]byte, error) {
	wire := make([]wireEdit, 0, len(s))
	for _, e := range s {
		wire = append(wire, toWire(e))
	}
	return json.Marshal(wire)
}

// UnmarshalJSON reads a set, rejecting edits that miss required fields.
func (s *Set) UnmarshalJSON(data []byte) error {
	var wire []wireEdit
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	out := make(Set, 0, len(wire))
	for i, w := range wire {
		e, err := w.edit()
		if err != nil {
			return fmt.Errorf("modification %d: %w", i+1, err)
		}
		out = append(out, e)
	}
	*s = out
	return nil
}
