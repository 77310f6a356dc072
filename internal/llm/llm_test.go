package llm_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sammcj/mcp-pdfedit/internal/llm"
	"github.com/sammcj/mcp-pdfedit/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key-0123456789abcdef"

type chatServer struct {
	mu       sync.Mutex
	requests []map[string]any
	reply    func(model string) (int, string)
}

func (s *chatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
		http.NotFound(w, r)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.requests = append(s.requests, body)
	s.mu.Unlock()

	model, _ := body["model"].(string)
	status, content := s.reply(model)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(content))
}

func (s *chatServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func completion(model, content string) string {
	encoded, _ := json.Marshal(content)
	return fmt.Sprintf(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": %q,
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": %s}}],
		"usage": {"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7}
	}`, model, encoded)
}

func newServer(t *testing.T, reply func(model string) (int, string)) (*chatServer, string) {
	t.Helper()
	cs := &chatServer{reply: reply}
	srv := httptest.NewServer(cs)
	t.Cleanup(srv.Close)
	return cs, srv.URL
}

func TestNewClient_RequiresKeyAndModel(t *testing.T) {
	_, err := llm.NewClient(llm.Options{Model: "m"}, nil)
	assert.Error(t, err)

	_, err = llm.NewClient(llm.Options{APIKey: testKey}, nil)
	assert.Error(t, err)
}

func TestClient_Generate(t *testing.T) {
	cs, url := newServer(t, func(model string) (int, string) {
		return http.StatusOK, completion(model, `{"modifications": []}`)
	})

	client, err := llm.NewClient(llm.Options{
		APIKey:      testKey,
		BaseURL:     url,
		Model:       "gemini-test",
		MaxTokens:   256,
		Temperature: 0.4,
	}, testutils.CreateTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "gemini-test", client.Model())

	out, err := client.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"modifications": []}`, out)

	require.Equal(t, 1, cs.count())
	req := cs.requests[0]
	assert.Equal(t, "gemini-test", req["model"])
	assert.EqualValues(t, 256, req["max_tokens"])
	messages, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
}

func TestClient_EmptyChoices(t *testing.T) {
	_, url := newServer(t, func(model string) (int, string) {
		return http.StatusOK, fmt.Sprintf(`{"id": "x", "object": "chat.completion", "created": 1, "model": %q, "choices": []}`, model)
	})

	client, err := llm.NewClient(llm.Options{APIKey: testKey, BaseURL: url, Model: "m"}, nil)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestClient_ServerErrorIsNotRetried(t *testing.T) {
	cs, url := newServer(t, func(string) (int, string) {
		return http.StatusInternalServerError, `{"error": {"message": "boom"}}`
	})

	client, err := llm.NewClient(llm.Options{APIKey: testKey, BaseURL: url, Model: "m"}, nil)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 1, cs.count())
}

func TestClient_CancelledContext(t *testing.T) {
	_, url := newServer(t, func(model string) (int, string) {
		return http.StatusOK, completion(model, "late")
	})

	client, err := llm.NewClient(llm.Options{APIKey: testKey, BaseURL: url, Model: "m", RateLimit: 1}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Generate(ctx, "hello")
	assert.Error(t, err)
}

func TestProbe_FirstWorkingModelWins(t *testing.T) {
	cs, url := newServer(t, func(model string) (int, string) {
		if model == "broken" {
			return http.StatusNotFound, `{"error": {"message": "model not found"}}`
		}
		return http.StatusOK, completion(model, "ready")
	})

	status := llm.Probe(context.Background(), llm.Options{APIKey: testKey, BaseURL: url}, []string{"broken", "good", "unused"}, testutils.CreateTestLogger())

	assert.True(t, status.Ready)
	assert.Equal(t, "good", status.Model)
	require.Len(t, status.Attempts, 2)
	assert.Equal(t, "broken", status.Attempts[0].Model)
	assert.NotEmpty(t, status.Attempts[0].Error)
	assert.Empty(t, status.Attempts[1].Error)
	assert.Equal(t, 2, cs.count())
	assert.Equal(t, "ready (good)", status.String())
}

func TestProbe_AllModelsFail(t *testing.T) {
	_, url := newServer(t, func(string) (int, string) {
		return http.StatusUnauthorized, `{"error": {"message": "bad key"}}`
	})

	status := llm.Probe(context.Background(), llm.Options{APIKey: testKey, BaseURL: url}, []string{"a", "b"}, nil)

	assert.False(t, status.Ready)
	assert.Empty(t, status.Model)
	require.Len(t, status.Attempts, 2)
	assert.Contains(t, status.String(), "unavailable: a:")
}

func TestProbe_NoModels(t *testing.T) {
	status := llm.Probe(context.Background(), llm.Options{APIKey: testKey}, nil, nil)
	assert.False(t, status.Ready)
	assert.Equal(t, "unavailable: no models configured", status.String())
}
