package render

import "strings"

// Core font families available without embedding.
const (
	familyHelvetica = "Helvetica"
	familyTimes     = "Times"
	familyCourier   = "Courier"
)

var familyHints = []struct {
	family string
	hints  []string
}{
	{familyCourier, []string{"courier", "mono", "consolas"}},
	// Checked before serif hints: "MS Sans Serif" names both.
	{familyHelvetica, []string{"helvetica", "arial", "calibri", "verdana", "sans"}},
	{familyTimes, []string{"times", "georgia", "garamond", "cambria", "serif", "roman"}},
}

// coreFont maps a source font name to a core family and style. ok is false
// when the name resembles none of the core families.
func coreFont(name string) (family, style string, ok bool) {
	lower := strings.ToLower(stripSubsetPrefix(name))
	if lower == "" {
		return "", "", false
	}

	for _, candidate := range familyHints {
		for _, hint := range candidate.hints {
			if strings.Contains(lower, hint) {
				family = candidate.family
				break
			}
		}
		if family != "" {
			break
		}
	}
	if family == "" {
		return "", "", false
	}

	if strings.Contains(lower, "bold") || strings.Contains(lower, "black") || strings.Contains(lower, "heavy") {
		style += "B"
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		style += "I"
	}
	return family, style, true
}

// stripSubsetPrefix drops the six-letter tag embedded subsets carry, as in
// "ABCDEF+Calibri".
func stripSubsetPrefix(name string) string {
	if len(name) < 8 || name[6] != '+' {
		return name
	}
	for i := 0; i < 6; i++ {
		if name[i] < 'A' || name[i] > 'Z' {
			return name
		}
	}
	return name[7:]
}
