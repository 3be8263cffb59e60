package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashureev/studyguide/internal/domain"
	"github.com/ashureev/studyguide/internal/llm"
)

// Specialist answers questions for one domain with a fixed system instruction.
type Specialist struct {
	tag    domain.Tag
	system string
	gen    llm.Generator
}

// NewSpecialist creates the handler for tag backed by gen.
func NewSpecialist(tag domain.Tag, gen llm.Generator) (*Specialist, error) {
	system := SystemPrompt(tag)
	if system == "" {
		return nil, fmt.Errorf("agent: no specialist for domain %q", tag)
	}
	if gen == nil {
		return nil, fmt.Errorf("agent: generator is nil")
	}
	return &Specialist{tag: tag, system: system, gen: gen}, nil
}

// Domain implements Handler.
func (s *Specialist) Domain() domain.Tag { return s.tag }

// Process makes one hosted call and returns its text unmodified. Failures
// come back as *Error with KindHostedService.
func (s *Specialist) Process(ctx context.Context, question, contextText string) (string, error) {
	text, err := s.gen.Generate(ctx, llm.Request{
		System: s.system,
		Prompt: BuildPrompt(question, contextText),
	})
	if err != nil {
		return "", &Error{Kind: KindHostedService, Domain: s.tag, Err: err}
	}
	return text, nil
}

// BuildPrompt labels the question and, when present, the context before it.
func BuildPrompt(question, contextText string) string {
	if strings.TrimSpace(contextText) == "" {
		return "Question:\n" + question
	}
	return "Context:\n" + contextText + "\n\nQuestion:\n" + question
}
