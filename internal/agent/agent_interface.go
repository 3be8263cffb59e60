package agent

import (
	"context"

	"github.com/ashureev/studyguide/internal/domain"
)

// Handler answers questions for one domain.
type Handler interface {
	// Domain returns the tag this handler serves.
	Domain() domain.Tag

	// Process answers question, using contextText when it is non-empty.
	Process(ctx context.Context, question, contextText string) (string, error)
}

// ContextFunc supplies extra context for the coordinator handler, such as a
// summary of the learner's progress.
type ContextFunc func(ctx context.Context) string

// Ensure Specialist implements Handler.
var _ Handler = (*Specialist)(nil)
