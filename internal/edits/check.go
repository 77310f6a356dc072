package edits

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Check is the advisory result of looking an edit's target up in the
// document text. It never blocks application.
type Check struct {
	Index      int    `json:"index"`
	Type       Kind   `json:"type"`
	Target     string `json:"target"`
	Found      bool   `json:"found"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// CheckAll reports, for each edit, whether its target occurs in text. Replace
// targets must match exactly; highlight targets ignore case. Missing targets
// get the closest document line as a suggestion.
func CheckAll(set Set, text string) []Check {
	var candidates []string
	checks := make([]Check, 0, len(set))

	for i, e := range set {
		c := Check{Index: i, Type: e.Kind(), Target: e.Target()}

		switch v := e.(type) {
		case Replace:
			c.Found = strings.Contains(text, v.OriginalText)
		case Highlight:
			c.Found = v.Matches(text)
		}

		if c.Found {
			c.Message = "Text found in document"
		} else {
			c.Message = "Text not found in document - modification may not work"
			if candidates == nil {
				candidates = documentLines(text)
			}
			c.Suggestion = closest(c.Target, candidates)
		}
		checks = append(checks, c)
	}

	return checks
}

func documentLines(text string) []string {
	lines := []string{}
	for line := range strings.SplitSeq(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// closest returns the best fuzzy match for target among lines, or "".
func closest(target string, lines []string) string {
	if len(lines) == 0 || strings.TrimSpace(target) == "" {
		return ""
	}
	matches := fuzzy.Find(target, lines)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}
