package edits

import (
	"fmt"
	"regexp"
	"strings"
)

var changePattern = regexp.MustCompile(`change\s+['"]([^'"]+)['"]\s+to\s+['"]([^'"]+)['"]`)

// FinancialTerms are scanned in order when a fallback highlight is requested.
var FinancialTerms = []string{"financial", "money", "cost", "budget", "revenue", "profit", "investment", "price", "fee"}

// Fallback derives edits from the instruction alone, without a model. It
// recognises "change 'A' to 'B'" and a request to highlight financial
// content, producing at most one edit of each kind.
func Fallback(text, instruction string) *Proposal {
	var set Set
	query := strings.ToLower(instruction)
	lowerText := strings.ToLower(text)

	if strings.Contains(query, "change") && strings.Contains(query, "to") {
		if m := changePattern.FindStringSubmatch(query); m != nil {
			oldText, newText := m[1], m[2]
			if strings.Contains(lowerText, oldText) {
				set = append(set, Replace{
					OriginalText: oldText,
					NewText:      newText,
					Context:      "Found in text: " + oldText,
				})
			}
		}
	}

	if strings.Contains(query, "highlight") {
		for _, term := range FinancialTerms {
			if strings.Contains(lowerText, term) {
				set = append(set, Highlight{
					TargetText: term,
					Context:    "Found financial term: " + term,
					Reason:     "Contains financial content",
				})
				break
			}
		}
	}

	return &Proposal{
		Edits:   set,
		Summary: fmt.Sprintf("Fallback modification created for: %s", instruction),
		Source:  SourceFallback,
	}
}
