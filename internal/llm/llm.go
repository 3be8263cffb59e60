// Package llm wraps hosted text-generation services behind one interface.
// Calls are single-shot: no retries, no streaming.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ashureev/studyguide/internal/config"
	"go.uber.org/zap"
)

// NoResponseText is returned when the service answers with no text content.
const NoResponseText = "No response generated"

// ErrNotConfigured is returned by the disabled provider.
var ErrNotConfigured = errors.New("hosted model is not configured")

// Request is one text-in/text-out invocation. Zero-valued fields fall back to
// the client's configured defaults.
type Request struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature *float64
}

// Generator produces text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Defaults carries per-client invocation defaults.
type Defaults struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func (d Defaults) resolve(req Request) (model string, maxTokens int, temperature float64) {
	model, maxTokens, temperature = d.Model, d.MaxTokens, d.Temperature
	if req.Model != "" {
		model = req.Model
	}
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	return model, maxTokens, temperature
}

// withTimeout bounds ctx by d when ctx carries no deadline of its own.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// New builds the generator selected by cfg, wrapped with call logging.
func New(ctx context.Context, cfg config.ModelConfig, logger *zap.Logger) (Generator, error) {
	defaults := Defaults{
		Model:       cfg.ModelID,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}

	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case config.ProviderAnthropic:
		gen, err = NewAnthropic(AnthropicConfig{
			APIKey:   cfg.AnthropicAPIKey,
			BaseURL:  cfg.AnthropicBaseURL,
			Defaults: defaults,
		})
	case config.ProviderGemini:
		gen, err = NewGemini(ctx, cfg.GoogleAPIKey, defaults)
	case config.ProviderNone:
		gen = Disabled{}
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithLogging(gen, cfg.Provider, defaults.Model, logger), nil
}

// Disabled fails every call with ErrNotConfigured.
type Disabled struct{}

// Generate implements Generator.
func (Disabled) Generate(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}
