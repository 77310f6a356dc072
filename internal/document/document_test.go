package document_test

import (
	"strings"
	"testing"

	"github.com/sammcj/mcp-pdfedit/internal/document"
	"github.com/stretchr/testify/assert"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{10*1024*1024 + 512*1024, "10.5 MB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, document.FormatFileSize(tt.size))
	}
}

func TestComputeStats(t *testing.T) {
	pages := []document.Page{
		{Index: 0, Spans: []document.Span{{Text: "Hello"}, {Text: "Wörld"}}},
		{Index: 1},
	}

	stats := document.ComputeStats(pages)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 2, stats.Spans)
	assert.Equal(t, 10, stats.Characters)
	assert.Equal(t, "2 pages, 2 text blocks, 10 characters", stats.String())
}

func TestColor(t *testing.T) {
	assert.Equal(t, document.DefaultTextColor, document.ColorNone.Resolve())
	assert.Equal(t, document.ColorNone, document.ColorFromInt(0))

	red := document.ColorFromInt(0xff0000)
	assert.Equal(t, document.RGB(255, 0, 0), red)
	assert.Equal(t, red, red.Resolve())
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "No text available", document.Preview("  \n\t ", 10))
	assert.Equal(t, "a b c", document.Preview(" a\n\nb   c ", 10))
	assert.Equal(t, "abcde...", document.Preview("abcdefgh", 5))
	assert.Equal(t, strings.Repeat("é", 3)+"...", document.Preview(strings.Repeat("é", 6), 3))
}
