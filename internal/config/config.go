package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load
const (
	EnvAPIKey          = "GEMINI_API_KEY"
	EnvUseDefaultKey   = "PDFEDIT_USE_DEFAULT_KEY"
	EnvModels          = "PDFEDIT_MODELS"
	EnvBaseURL         = "PDFEDIT_BASE_URL"
	EnvDebug           = "PDFEDIT_DEBUG"
	EnvMaxFileSizeMB   = "PDFEDIT_MAX_FILE_SIZE_MB"
	EnvPromptChars     = "PDFEDIT_PROMPT_CHARS"
	EnvLLMTimeout      = "PDFEDIT_LLM_TIMEOUT"    // seconds, 0 disables the timeout
	EnvLLMRateLimit    = "PDFEDIT_LLM_RATE_LIMIT" // requests per second, 0 is unlimited
	EnvMaxTokens       = "PDFEDIT_MAX_TOKENS"
	EnvTemperature     = "PDFEDIT_TEMPERATURE"
	EnvBritishSpelling = "PDFEDIT_BRITISH_SPELLING"
	EnvOutputDir       = "PDFEDIT_OUTPUT_DIR"
	EnvConfigFile      = "PDFEDIT_CONFIG"
	EnvDenyPaths       = "PDFEDIT_DENY_PATHS"   // comma list, replaces the defaults
	EnvDenyDomains     = "PDFEDIT_DENY_DOMAINS" // comma list
)

// Defaults
const (
	DefaultBaseURL       = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultMaxFileSizeMB = 10
	DefaultPromptChars   = 2000
	DefaultMaxTokens     = 8192
	DefaultTemperature   = 0.4
	MinAPIKeyLength      = 20
)

// DefaultModels is tried in order when probing a credential.
var DefaultModels = []string{
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
	"gemini-2.5-pro",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-pro",
	"gemini-pro",
}

// DefaultDenyPaths are credential stores no document should be read from or
// written to.
var DefaultDenyPaths = []string{
	"~/.ssh",
	"~/.aws",
	"~/.gnupg",
	"~/.kube",
	"~/.docker/config.json",
	"~/.config/gcloud",
	"~/.netrc",
	"/etc/shadow",
	"/etc/sudoers",
}

var (
	ErrNoAPIKey      = errors.New("no API key configured")
	ErrInvalidAPIKey = errors.New("API key is too short to be valid")
)

// Config holds the settings shared by the CLI and the MCP server.
type Config struct {
	APIKey          string        `yaml:"gemini_api_key"`
	UseDefaultKey   bool          `yaml:"use_default_key"`
	Models          []string      `yaml:"models"`
	BaseURL         string        `yaml:"base_url"`
	Debug           bool          `yaml:"debug"`
	MaxFileSizeMB   int           `yaml:"max_file_size_mb"`
	PromptChars     int           `yaml:"prompt_chars"`
	LLMTimeout      time.Duration `yaml:"-"`
	LLMRateLimit    float64       `yaml:"llm_rate_limit"`
	MaxTokens       int           `yaml:"max_tokens"`
	Temperature     float64       `yaml:"temperature"`
	BritishSpelling bool          `yaml:"british_spelling"`
	OutputDir       string        `yaml:"output_dir"`
	DenyPaths       []string      `yaml:"deny_paths"`
	DenyDomains     []string      `yaml:"deny_domains"`

	// TimeoutSeconds mirrors LLMTimeout for the YAML file.
	TimeoutSeconds int `yaml:"llm_timeout"`
}

// Default returns a configuration with every field at its default value.
func Default() *Config {
	return &Config{
		UseDefaultKey: true,
		Models:        append([]string(nil), DefaultModels...),
		BaseURL:       DefaultBaseURL,
		MaxFileSizeMB: DefaultMaxFileSizeMB,
		PromptChars:   DefaultPromptChars,
		MaxTokens:     DefaultMaxTokens,
		Temperature:   DefaultTemperature,
		DenyPaths:     append([]string(nil), DefaultDenyPaths...),
	}
}

// Load builds the configuration from an optional .env file, the optional YAML
// file named by PDFEDIT_CONFIG, and environment variables, in that order of
// increasing precedence.
func Load() (*Config, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if c.TimeoutSeconds > 0 {
		c.LLMTimeout = time.Duration(c.TimeoutSeconds) * time.Second
	}
	if len(c.Models) == 0 {
		c.Models = append([]string(nil), DefaultModels...)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.APIKey = getEnvString(EnvAPIKey, c.APIKey)
	c.UseDefaultKey = getEnvBool(EnvUseDefaultKey, c.UseDefaultKey)
	c.BaseURL = getEnvString(EnvBaseURL, c.BaseURL)
	c.Debug = getEnvBool(EnvDebug, c.Debug)
	c.MaxFileSizeMB = getEnvInt(EnvMaxFileSizeMB, c.MaxFileSizeMB)
	c.PromptChars = getEnvInt(EnvPromptChars, c.PromptChars)
	c.LLMRateLimit = getEnvFloat(EnvLLMRateLimit, c.LLMRateLimit)
	c.MaxTokens = getEnvInt(EnvMaxTokens, c.MaxTokens)
	c.Temperature = getEnvFloat(EnvTemperature, c.Temperature)
	c.BritishSpelling = getEnvBool(EnvBritishSpelling, c.BritishSpelling)
	c.OutputDir = getEnvString(EnvOutputDir, c.OutputDir)

	if seconds := getEnvInt(EnvLLMTimeout, -1); seconds >= 0 {
		c.LLMTimeout = time.Duration(seconds) * time.Second
	}

	c.Models = getEnvList(EnvModels, c.Models)
	c.DenyPaths = getEnvList(EnvDenyPaths, c.DenyPaths)
	c.DenyDomains = getEnvList(EnvDenyDomains, c.DenyDomains)
}

// MaxFileSize returns the upload limit in bytes.
func (c *Config) MaxFileSize() int64 {
	if c.MaxFileSizeMB <= 0 {
		return int64(DefaultMaxFileSizeMB) * 1024 * 1024
	}
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// ResolveAPIKey picks the credential for a session. A non-empty override always
// wins; otherwise the default credential is used when UseDefaultKey is set.
func (c *Config) ResolveAPIKey(override string) (string, error) {
	key := strings.TrimSpace(override)
	if key == "" && c.UseDefaultKey {
		key = strings.TrimSpace(c.APIKey)
	}
	if key == "" {
		return "", fmt.Errorf("%w: set %s or pass an api_key", ErrNoAPIKey, EnvAPIKey)
	}
	if err := ValidateAPIKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// ValidateAPIKey performs the basic shape check applied before any model call.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if len(key) < MinAPIKeyLength {
		return fmt.Errorf("%w: need at least %d characters", ErrInvalidAPIKey, MinAPIKeyLength)
	}
	return nil
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(envVar string, defaultValue float64) float64 {
	if value := os.Getenv(envVar); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvString gets a string environment variable with a default value
func getEnvString(envVar string, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList reads a comma-separated list. Blank entries are dropped and an
// empty result keeps the default.
func getEnvList(envVar string, defaultValue []string) []string {
	var list []string
	for item := range strings.SplitSeq(os.Getenv(envVar), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		return defaultValue
	}
	return list
}

func getEnvBool(envVar string, defaultValue bool) bool {
	if value := os.Getenv(envVar); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
