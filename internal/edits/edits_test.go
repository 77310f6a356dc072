package edits_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sammcj/mcp-pdfedit/internal/edits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidResponse(t *testing.T) {
	raw := `{
		"modifications": [
			{"type": "replace", "original_text": "Chapter 2", "new_text": "Part Two", "context": "heading", "humanization_note": "friendlier"},
			{"type": "highlight", "text_to_highlight": "budget", "reason": "financial"},
			{"type": "HIGHLIGHT", "target_text": "revenue"}
		],
		"summary": "Two changes",
		"humanization_approach": "Warmer tone"
	}`

	p, err := edits.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, edits.SourceModel, p.Source)
	assert.Equal(t, "Two changes", p.Summary)
	assert.Equal(t, "Warmer tone", p.Approach)
	require.Len(t, p.Edits, 3)
	assert.Equal(t, edits.Replace{OriginalText: "Chapter 2", NewText: "Part Two", Context: "heading", Note: "friendlier"}, p.Edits[0])
	assert.Equal(t, edits.Highlight{TargetText: "budget", Reason: "financial"}, p.Edits[1])
	assert.Equal(t, edits.Highlight{TargetText: "revenue"}, p.Edits[2])
}

func TestParse_EmptyNewTextIsAllowed(t *testing.T) {
	p, err := edits.Parse(`{"modifications": [{"type": "replace", "original_text": "draft", "new_text": ""}]}`)
	require.NoError(t, err)
	require.Len(t, p.Edits, 1)
	assert.Equal(t, "", p.Edits[0].(edits.Replace).NewText)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"not json":              `Sure! Here are your edits.`,
		"missing modifications": `{"summary": "nothing"}`,
		"null modifications":    `{"modifications": null}`,
		"modifications object":  `{"modifications": {}}`,
		"missing original":      `{"modifications": [{"type": "replace", "new_text": "x"}]}`,
		"empty original":        `{"modifications": [{"type": "replace", "original_text": "", "new_text": "x"}]}`,
		"missing new text":      `{"modifications": [{"type": "replace", "original_text": "x"}]}`,
		"missing highlight":     `{"modifications": [{"type": "highlight", "reason": "x"}]}`,
		"unknown type":          `{"modifications": [{"type": "delete", "original_text": "x"}]}`,
		"missing type":          `{"modifications": [{"original_text": "x", "new_text": "y"}]}`,
		"array at top level":    `[{"type": "highlight", "text_to_highlight": "x"}]`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := edits.Parse(raw)
			assert.ErrorIs(t, err, edits.ErrInvalidResponse)
			assert.Nil(t, p)
		})
	}
}

func TestSet_JSONRoundTrip(t *testing.T) {
	set := edits.Set{
		edits.Replace{OriginalText: "a", NewText: "b", Context: "c"},
		edits.Highlight{TargetText: "fee", Reason: "money"},
	}

	data, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"replace"`)
	assert.Contains(t, string(data), `"text_to_highlight":"fee"`)

	decoded, err := edits.ParseSet(string(data))
	require.NoError(t, err)
	assert.Equal(t, set, decoded)
}

func TestSet_Rewrite(t *testing.T) {
	t.Run("global substitution in order", func(t *testing.T) {
		set := edits.Set{
			edits.Replace{OriginalText: "cat", NewText: "dog"},
			edits.Highlight{TargetText: "dog"},
			edits.Replace{OriginalText: "dog house", NewText: "kennel"},
		}
		assert.Equal(t, "dog and kennel", set.Rewrite("cat and cat house"))
	})

	t.Run("case sensitive", func(t *testing.T) {
		set := edits.Set{edits.Replace{OriginalText: "chapter 2", NewText: "part two"}}
		assert.Equal(t, "Chapter 2", set.Rewrite("Chapter 2"))
	})

	t.Run("idempotent once target is gone", func(t *testing.T) {
		set := edits.Set{edits.Replace{OriginalText: "Background", NewText: "Fundamentals"}}
		once := set.Rewrite("Chapter 2: Background")
		assert.Equal(t, "Chapter 2: Fundamentals", once)
		assert.Equal(t, once, set.Rewrite(once))
	})

	t.Run("empty set is identity", func(t *testing.T) {
		assert.Equal(t, "unchanged", edits.Set(nil).Rewrite("unchanged"))
	})
}

func TestHighlight_Matches(t *testing.T) {
	h := edits.Highlight{TargetText: "BUDGET"}
	assert.True(t, h.Matches("The budget was approved"))
	assert.True(t, edits.Highlight{TargetText: "\u00c9cole"}.Matches("une \u00e9cole"))
	assert.False(t, h.Matches("The cost was approved"))
	assert.False(t, edits.Highlight{TargetText: " "}.Matches("anything"))
}

func TestFallback_ChangeInstruction(t *testing.T) {
	text := "Contents\nChapter 2: Background\nChapter 3: Method"

	p := edits.Fallback(text, "Change 'Chapter 2: Background' to 'Chapter 2: Fundamentals'")

	assert.Equal(t, edits.SourceFallback, p.Source)
	assert.Equal(t, "Fallback modification created for: Change 'Chapter 2: Background' to 'Chapter 2: Fundamentals'", p.Summary)
	require.Len(t, p.Edits, 1)
	assert.Equal(t, edits.Replace{
		OriginalText: "chapter 2: background",
		NewText:      "chapter 2: fundamentals",
		Context:      "Found in text: chapter 2: background",
	}, p.Edits[0])
}

func TestFallback_ChangeWithDoubleQuotes(t *testing.T) {
	p := edits.Fallback("the old name", `change "old name" to "new name"`)
	require.Len(t, p.Edits, 1)
	assert.Equal(t, "old name", p.Edits[0].(edits.Replace).OriginalText)
}

func TestFallback_ChangeTargetMissing(t *testing.T) {
	p := edits.Fallback("nothing relevant", "change 'absent' to 'present'")
	assert.Empty(t, p.Edits)
}

func TestFallback_HighlightFirstKeywordOnly(t *testing.T) {
	text := "The annual Budget covers price changes and every fee."

	p := edits.Fallback(text, "highlight financial information")

	require.Len(t, p.Edits, 1)
	assert.Equal(t, edits.Highlight{
		TargetText: "budget",
		Context:    "Found financial term: budget",
		Reason:     "Contains financial content",
	}, p.Edits[0])
}

func TestFallback_BothRules(t *testing.T) {
	text := "Chapter 1: Intro. Profit rose."
	p := edits.Fallback(text, "Change 'Intro' to 'Overview' and highlight money terms")

	require.Len(t, p.Edits, 2)
	assert.Equal(t, edits.KindReplace, p.Edits[0].Kind())
	assert.Equal(t, "profit", p.Edits[1].Target())
}

func TestFallback_NoRules(t *testing.T) {
	p := edits.Fallback("some text", "make it friendlier")
	assert.Empty(t, p.Edits)
	assert.True(t, strings.HasPrefix(p.Summary, "Fallback modification created for:"))
}

func TestCheckAll(t *testing.T) {
	text := "Quarterly Report\nThe Budget is final\nRevenue grew"
	set := edits.Set{
		edits.Replace{OriginalText: "Quarterly Report", NewText: "Q3 Report"},
		edits.Replace{OriginalText: "quarterly report", NewText: "x"},
		edits.Highlight{TargetText: "budget"},
		edits.Highlight{TargetText: "Revenu grw"},
	}

	checks := edits.CheckAll(set, text)
	require.Len(t, checks, 4)

	assert.True(t, checks[0].Found)
	assert.Equal(t, "Text found in document", checks[0].Message)
	assert.Empty(t, checks[0].Suggestion)

	assert.False(t, checks[1].Found, "replace targets are case sensitive")
	assert.True(t, checks[2].Found, "highlight targets ignore case")

	assert.False(t, checks[3].Found)
	assert.Equal(t, edits.KindHighlight, checks[3].Type)
	assert.Equal(t, "Revenue grew", checks[3].Suggestion)
}

func TestSpeller_Apply(t *testing.T) {
	speller, err := edits.NewSpeller()
	require.NoError(t, err)

	set := edits.Set{
		edits.Replace{OriginalText: "a", NewText: "The color of the organization"},
		edits.Highlight{TargetText: "color"},
		edits.Replace{OriginalText: "b", NewText: "plain words"},
	}

	out, changed := speller.Apply(set)
	assert.Equal(t, 1, changed)
	require.Len(t, out, 3)
	assert.Contains(t, out[0].(edits.Replace).NewText, "colour")
	assert.Equal(t, set[1], out[1])
	assert.Equal(t, "plain words", out[2].(edits.Replace).NewText)
	assert.Equal(t, "The color of the organization", set[0].(edits.Replace).NewText)
}
