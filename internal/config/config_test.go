package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sammcj/mcp-pdfedit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvModels, "")
	t.Setenv(config.EnvConfigFile, "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.UseDefaultKey)
	assert.Equal(t, config.DefaultModels, cfg.Models)
	assert.Equal(t, config.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 2000, cfg.PromptChars)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize())
	assert.Zero(t, cfg.LLMTimeout)
	assert.Zero(t, cfg.LLMRateLimit)
	assert.Contains(t, cfg.DenyPaths, "~/.ssh")
	assert.Empty(t, cfg.DenyDomains)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv(config.EnvModels, "model-a, model-b ,")
	t.Setenv(config.EnvDebug, "true")
	t.Setenv(config.EnvLLMTimeout, "30")
	t.Setenv(config.EnvMaxFileSizeMB, "2")
	t.Setenv(config.EnvUseDefaultKey, "false")
	t.Setenv(config.EnvDenyDomains, "*.internal.example, metadata.google.internal")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"model-a", "model-b"}, cfg.Models)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, int64(2*1024*1024), cfg.MaxFileSize())
	assert.False(t, cfg.UseDefaultKey)
	assert.Equal(t, []string{"*.internal.example", "metadata.google.internal"}, cfg.DenyDomains)
	assert.Equal(t, config.DefaultDenyPaths, cfg.DenyPaths)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pdfedit.yaml")
	content := strings.Join([]string{
		"gemini_api_key: abcdefghijklmnopqrstuvwxyz",
		"prompt_chars: 500",
		"llm_timeout: 12",
		"british_spelling: true",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv(config.EnvConfigFile, path)
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvPromptChars, "")
	t.Setenv(config.EnvLLMTimeout, "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz", cfg.APIKey)
	assert.Equal(t, 500, cfg.PromptChars)
	assert.Equal(t, 12*time.Second, cfg.LLMTimeout)
	assert.True(t, cfg.BritishSpelling)
	assert.Equal(t, config.DefaultModels, cfg.Models)
}

func TestLoad_MissingYAMLFile(t *testing.T) {
	t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := config.Load()
	assert.Error(t, err)
}

func TestResolveAPIKey(t *testing.T) {
	const defaultKey = "default-key-0123456789"
	const sessionKey = "session-key-0123456789"

	tests := []struct {
		name       string
		useDefault bool
		apiKey     string
		override   string
		want       string
		wantErr    error
	}{
		{name: "override wins", useDefault: true, apiKey: defaultKey, override: sessionKey, want: sessionKey},
		{name: "default used", useDefault: true, apiKey: defaultKey, want: defaultKey},
		{name: "default disabled", useDefault: false, apiKey: defaultKey, wantErr: config.ErrNoAPIKey},
		{name: "nothing configured", useDefault: true, wantErr: config.ErrNoAPIKey},
		{name: "short override", useDefault: true, apiKey: defaultKey, override: "short", wantErr: config.ErrInvalidAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.UseDefaultKey = tt.useDefault
			cfg.APIKey = tt.apiKey

			got, err := cfg.ResolveAPIKey(tt.override)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateAPIKey(t *testing.T) {
	assert.ErrorIs(t, config.ValidateAPIKey(""), config.ErrNoAPIKey)
	assert.ErrorIs(t, config.ValidateAPIKey(strings.Repeat("x", 19)), config.ErrInvalidAPIKey)
	assert.NoError(t, config.ValidateAPIKey(strings.Repeat("x", 20)))
}
