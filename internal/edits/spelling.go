package edits

import (
	"fmt"

	"github.com/sammcj/m2e/pkg/converter"
)

// Speller rewrites replacement text from American to British spelling.
type Speller struct {
	conv *converter.Converter
}

// NewSpeller loads the m2e dictionaries.
func NewSpeller() (*Speller, error) {
	conv, err := converter.NewConverter()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise converter: %w", err)
	}
	return &Speller{conv: conv}, nil
}

// Apply converts the NewText of every Replace edit and returns the new set
// with the number of edits that changed. Smart quotes are normalised.
func (s *Speller) Apply(set Set) (Set, int) {
	out := make(Set, 0, len(set))
	changed := 0
	for _, e := range set {
		if r, ok := e.(Replace); ok {
			converted := s.conv.ConvertToBritish(r.NewText, true)
			if converted != r.NewText {
				r.NewText = converted
				changed++
			}
			e = r
		}
		out = append(out, e)
	}
	return out, changed
}
