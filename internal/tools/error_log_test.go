package tools

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []ErrorLogEntry {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	var entries []ErrorLogEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry ErrorLogEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestErrorLog_RecordRedactsCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tool-errors.log")
	log, err := NewErrorLog(path, logrus.New())
	require.NoError(t, err)
	defer func() { _ = log.Close() }()

	log.Record("pdf_edit", map[string]any{
		"file_path": "/tmp/a.pdf",
		"api_key":   "secret-key-0123456789abcdef",
		"edits":     strings.Repeat("x", 600),
	}, errors.New("boom"), "stdio")
	log.Record("pdf_load", nil, nil, "stdio")

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "pdf_edit", entries[0].ToolName)
	assert.Equal(t, "boom", entries[0].Error)
	assert.Equal(t, "[redacted]", entries[0].Arguments["api_key"])
	assert.Equal(t, "/tmp/a.pdf", entries[0].Arguments["file_path"])
	assert.Len(t, entries[0].Arguments["edits"], maxLoggedArgLength+3)
}

func TestErrorLog_Prune(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool-errors.log")
	log, err := NewErrorLog(path, logrus.New())
	require.NoError(t, err)
	defer func() { _ = log.Close() }()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return now.AddDate(0, 0, -90) }
	log.Record("pdf_load", nil, errors.New("old"), "")
	log.now = func() time.Time { return now.AddDate(0, 0, -1) }
	log.Record("pdf_load", nil, errors.New("recent"), "")

	log.now = func() time.Time { return now }
	require.NoError(t, log.Prune(ErrorLogRetention))

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "recent", entries[0].Error)

	// Still writable after pruning
	log.Record("pdf_load", nil, errors.New("after"), "")
	assert.Len(t, readEntries(t, path), 2)
}

func TestErrorLog_DisabledAndNil(t *testing.T) {
	t.Setenv(EnvLogToolErrors, "")
	log, err := OpenErrorLog(logrus.New())
	require.NoError(t, err)
	assert.Nil(t, log)

	// A nil log is usable
	log.Record("pdf_load", nil, errors.New("ignored"), "")
	assert.NoError(t, log.Prune(time.Hour))
	assert.NoError(t, log.Close())
	assert.Empty(t, log.Path())
}
