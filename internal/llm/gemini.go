package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient calls the Gemini API through google.golang.org/genai.
type GeminiClient struct {
	client   *genai.Client
	defaults Defaults
}

// NewGemini creates a Gemini client. An API key is required.
func NewGemini(ctx context.Context, apiKey string, defaults Defaults) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("llm: GOOGLE_API_KEY is required for the gemini provider")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: client, defaults: defaults}, nil
}

// Generate runs one GenerateContent call.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := withTimeout(ctx, c.defaults.Timeout)
	defer cancel()

	model, maxTokens, temperature := c.defaults.resolve(req)
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		MaxOutputTokens: int32(maxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return NoResponseText, nil
	}
	return text, nil
}
