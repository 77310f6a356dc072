// Package llm talks to the generative model behind the edit proposer through
// an OpenAI-compatible chat completions API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sammcj/mcp-pdfedit/internal/utils/httpclient"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrEmptyResponse is returned when the model answers without any choices.
var ErrEmptyResponse = errors.New("no response choices returned from model")

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures a Client.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	// Timeout bounds a single call. Zero means no client-side timeout.
	Timeout time.Duration
	// RateLimit is the maximum number of requests per second. Zero is unlimited.
	RateLimit  float64
	HTTPClient *http.Client
}

// Client is a Generator bound to one credential and one model.
type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      *logrus.Logger
}

// NewClient creates a chat completions client. Retries are disabled: a failed
// call is reported to the caller, never repeated.
func NewClient(opts Options, logger *logrus.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = httpclient.New(httpclient.Options{Timeout: opts.Timeout, Logger: logger})
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(ensureTrailingSlash(opts.BaseURL)))
	}

	client := openai.NewClient(reqOpts...)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1) // Allow burst of 1
	}

	return &Client{
		client:      &client,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		timeout:     opts.Timeout,
		limiter:     limiter,
		logger:      logger,
	}, nil
}

// Model returns the model identifier the client calls.
func (c *Client) Model() string {
	return c.model
}

// Generate sends prompt as a single user message and returns the first choice.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, prompt, c.maxTokens)
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	start := time.Now()
	response, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("model call to %s failed: %w", c.model, err)
	}

	if len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			"model":             c.model,
			"duration":          time.Since(start),
			"prompt_tokens":     response.Usage.PromptTokens,
			"completion_tokens": response.Usage.CompletionTokens,
		}).Debug("Model call completed")
	}

	return response.Choices[0].Message.Content, nil
}

func ensureTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
