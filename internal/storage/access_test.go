package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sammcj/mcp-pdfedit/internal/storage"
	"github.com/sammcj/mcp-pdfedit/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Check(t *testing.T) {
	secrets := filepath.Join(t.TempDir(), "secrets")
	policy := storage.NewPolicy(
		[]string{secrets, " ", "/etc/*.key"},
		[]string{"*.internal.example", "Metadata.Google.Internal"},
	)

	tests := []struct {
		location string
		denied   bool
	}{
		{secrets, true},
		{filepath.Join(secrets, "id_rsa.pdf"), true},
		{"file://" + filepath.ToSlash(filepath.Join(secrets, "a.pdf")), true},
		{secrets + "-public/report.pdf", false},
		{"/etc/server.key", true},
		{"/tmp/report.pdf", false},
		{"https://docs.internal.example/a.pdf", true},
		{"https://internal.example/a.pdf", true},
		{"http://metadata.google.internal/computeMetadata", true},
		{"https://example.com/report.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			err := policy.Check(tt.location)
			if tt.denied {
				assert.ErrorIs(t, err, storage.ErrAccessDenied)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicy_NilAllowsEverything(t *testing.T) {
	var policy *storage.Policy
	assert.NoError(t, policy.Check("/etc/shadow"))
}

func TestPolicy_HomeExpansion(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	policy := storage.NewPolicy([]string{"~/.ssh"}, nil)
	assert.ErrorIs(t, policy.Check(filepath.Join(home, ".ssh", "config")), storage.ErrAccessDenied)
	assert.ErrorIs(t, policy.Check("~/.ssh/known_hosts"), storage.ErrAccessDenied)
}

func TestStore_PolicyGuardsReadAndWrite(t *testing.T) {
	denied := t.TempDir()
	path := filepath.Join(denied, "input.pdf")
	require.NoError(t, os.WriteFile(path, samplePDF(t), 0o600))

	store := storage.New(0, testutils.CreateTestLogger()).WithPolicy(storage.NewPolicy([]string{denied}, nil))
	ctx := testutils.CreateTestContext()

	_, err := store.Read(ctx, path)
	assert.ErrorIs(t, err, storage.ErrAccessDenied)

	_, err = store.Write(ctx, filepath.Join(denied, "out"), "a.pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, storage.ErrAccessDenied)
	assert.NoDirExists(t, filepath.Join(denied, "out"))

	_, err = store.Write(ctx, t.TempDir(), "a.pdf", []byte("%PDF-1.4"))
	assert.NoError(t, err)
}
