package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashureev/studyguide/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newAnthropicServer(t *testing.T, status int, body string, seen *anthropicRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAnthropic(t *testing.T, url string) *AnthropicClient {
	t.Helper()
	c, err := NewAnthropic(AnthropicConfig{
		APIKey:   "test-key",
		BaseURL:  url + "/v1/",
		Defaults: Defaults{Model: "claude-test", MaxTokens: 4000, Temperature: 0.1, Timeout: 5 * time.Second},
	})
	require.NoError(t, err)
	return c
}

func TestAnthropicGenerate(t *testing.T) {
	var seen anthropicRequest
	srv := newAnthropicServer(t, http.StatusOK,
		`{"content":[{"type":"text","text":"Use Kinesis "},{"type":"tool_use"},{"type":"text","text":"Data Streams."}]}`, &seen)

	text, err := newTestAnthropic(t, srv.URL).Generate(context.Background(), Request{
		System: "You are an ingestion expert.",
		Prompt: "Question:\nHow do I stream data?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Use Kinesis Data Streams.", text)

	assert.Equal(t, "claude-test", seen.Model)
	assert.Equal(t, 4000, seen.MaxTokens)
	assert.InDelta(t, 0.1, seen.Temperature, 1e-9)
	assert.Equal(t, "You are an ingestion expert.", seen.System)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "user", seen.Messages[0].Role)
}

func TestAnthropicRequestOverrides(t *testing.T) {
	var seen anthropicRequest
	srv := newAnthropicServer(t, http.StatusOK, `{"content":[{"type":"text","text":"ok"}]}`, &seen)

	zero := 0.0
	_, err := newTestAnthropic(t, srv.URL).Generate(context.Background(), Request{
		Prompt: "hi", Model: "other", MaxTokens: 10, Temperature: &zero,
	})
	require.NoError(t, err)
	assert.Equal(t, "other", seen.Model)
	assert.Equal(t, 10, seen.MaxTokens)
	assert.Zero(t, seen.Temperature)
}

func TestAnthropicEmptyContent(t *testing.T) {
	srv := newAnthropicServer(t, http.StatusOK, `{"content":[]}`, nil)
	text, err := newTestAnthropic(t, srv.URL).Generate(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, NoResponseText, text)
}

func TestAnthropicErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"throttled", http.StatusTooManyRequests, `{"error":{"type":"rate_limit_error","message":"slow down"}}`, "status 429: slow down"},
		{"plain body", http.StatusBadGateway, `upstream exploded`, "status 502: upstream exploded"},
		{"bad json", http.StatusOK, `{`, "parse response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAnthropicServer(t, tt.status, tt.body, nil)
			_, err := newTestAnthropic(t, srv.URL).Generate(context.Background(), Request{Prompt: "hi"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAnthropicTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	c, err := NewAnthropic(AnthropicConfig{
		APIKey:   "k",
		BaseURL:  srv.URL,
		Defaults: Defaults{Model: "m", MaxTokens: 1, Timeout: 50 * time.Millisecond},
	})
	require.NoError(t, err)
	_, err = c.Generate(context.Background(), Request{Prompt: "hi"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRequiresKeys(t *testing.T) {
	_, err := NewAnthropic(AnthropicConfig{})
	assert.Error(t, err)

	_, err = NewGemini(context.Background(), " ", Defaults{})
	assert.Error(t, err)

	_, err = New(context.Background(), config.ModelConfig{Provider: "openai"}, nil)
	assert.Error(t, err)
}

func TestNewDisabledProvider(t *testing.T) {
	gen, err := New(context.Background(), config.ModelConfig{Provider: config.ProviderNone}, zap.NewNop())
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), Request{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	ok := WithLogging(GeneratorFunc(func(context.Context, Request) (string, error) {
		return "answer", nil
	}), "fake", "m1", logger)
	text, err := ok.Generate(context.Background(), Request{Prompt: "q"})
	require.NoError(t, err)
	assert.Equal(t, "answer", text)

	failing := WithLogging(GeneratorFunc(func(context.Context, Request) (string, error) {
		return "", errors.New("boom")
	}), "fake", "m1", logger)
	_, err = failing.Generate(context.Background(), Request{Prompt: "q", Model: "m2"})
	assert.EqualError(t, err, "boom")

	assert.Equal(t, 1, logs.FilterMessage("model call completed").Len())
	failed := logs.FilterMessage("model call failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "m2", failed[0].ContextMap()["model"])
}
