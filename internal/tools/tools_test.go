package tools

import (
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentHelpers(t *testing.T) {
	args := map[string]any{
		"file_path": "  /tmp/a.pdf ",
		"blank":     "   ",
		"count":     3,
		"flag":      true,
	}

	value, err := RequiredString(args, "file_path")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a.pdf", value)

	for _, name := range []string{"blank", "count", "missing"} {
		_, err := RequiredString(args, name)
		assert.EqualError(t, err, "missing or invalid required parameter: "+name)
	}

	assert.Equal(t, "", OptionalString(args, "count"))
	assert.True(t, OptionalBool(args, "flag", false))
	assert.True(t, OptionalBool(args, "missing", true))
	assert.False(t, OptionalBool(args, "file_path", false))
}

func TestNewToolResultJSON(t *testing.T) {
	result, err := NewToolResultJSON(map[string]any{"session_id": "report-1", "pages": 2})
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &decoded))
	assert.Equal(t, "report-1", decoded["session_id"])
	assert.Contains(t, text.Text, "\n  ")

	_, err = NewToolResultJSON(make(chan int))
	assert.Error(t, err)
}
