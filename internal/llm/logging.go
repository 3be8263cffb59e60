package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type loggedGenerator struct {
	next     Generator
	provider string
	model    string
	logger   *zap.Logger
}

// WithLogging records latency and failures of every call.
func WithLogging(next Generator, provider, model string, logger *zap.Logger) Generator {
	if logger == nil {
		return next
	}
	return &loggedGenerator{next: next, provider: provider, model: model, logger: logger}
}

func (g *loggedGenerator) Generate(ctx context.Context, req Request) (string, error) {
	model := g.model
	if req.Model != "" {
		model = req.Model
	}
	start := time.Now()
	text, err := g.next.Generate(ctx, req)
	fields := []zap.Field{
		zap.String("provider", g.provider),
		zap.String("model", model),
		zap.Int("prompt_len", len(req.Prompt)),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		g.logger.Warn("model call failed", append(fields, zap.Error(err))...)
		return "", err
	}
	g.logger.Debug("model call completed", append(fields, zap.Int("response_len", len(text)))...)
	return text, nil
}
