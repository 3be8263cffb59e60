package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashureev/studyguide/internal/domain"
	"github.com/ashureev/studyguide/internal/llm"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs the question pipeline: classify, ask each selected handler
// in turn, then merge.
type Service struct {
	router      *Router
	handlers    map[domain.Tag]Handler
	synth       *Synthesizer
	coordinator ContextFunc
	logger      *zap.Logger
	newID       func() string
}

// Option configures a Service.
type Option func(*Service)

// WithHandler replaces the handler for h.Domain().
func WithHandler(h Handler) Option {
	return func(s *Service) { s.handlers[h.Domain()] = h }
}

// WithCoordinatorContext sets the context source for coordinator questions.
func WithCoordinatorContext(fn ContextFunc) Option {
	return func(s *Service) { s.coordinator = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithIDGenerator overrides answer id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService builds a Service with one Specialist per tag, all backed by gen.
func NewService(gen llm.Generator, opts ...Option) (*Service, error) {
	s := &Service{
		router:   NewRouter(),
		handlers: make(map[domain.Tag]Handler, len(domain.Tags)),
		synth:    NewSynthesizer(gen),
		logger:   zap.NewNop(),
		newID:    uuid.NewString,
	}
	for _, tag := range domain.Tags {
		sp, err := NewSpecialist(tag, gen)
		if err != nil {
			return nil, err
		}
		s.handlers[tag] = sp
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Router returns the classifier used by Ask.
func (s *Service) Router() *Router { return s.router }

// Classify exposes the routing decision without calling any handler.
func (s *Service) Classify(question string) []domain.Tag {
	return s.router.Classify(question)
}

// Ask answers one question. Handlers run sequentially in canonical tag order.
// The returned error is non-nil only for a blank question or when every
// selected handler failed; partial failures are reported in Answer.Failures.
func (s *Service) Ask(ctx context.Context, req AskRequest) (*Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, &Error{Kind: KindInvalidInput, Err: ErrEmptyQuestion}
	}

	tags := s.router.Classify(question)
	answer := &Answer{
		ID:       s.newID(),
		Question: question,
		Domains:  tags,
	}
	start := time.Now()

	var failures []error
	for _, tag := range tags {
		h, ok := s.handlers[tag]
		if !ok {
			failures = append(failures, &Error{Kind: KindHostedService, Domain: tag, Err: fmt.Errorf("no handler registered")})
			continue
		}

		contextText := req.Context
		if tag == domain.TagCoordinator && s.coordinator != nil {
			contextText = joinContext(s.coordinator(ctx), req.Context)
		}

		text, err := h.Process(ctx, question, contextText)
		if err != nil {
			s.logger.Warn("specialist failed", zap.String("domain", string(tag)), zap.Error(err))
			failures = append(failures, err)
			continue
		}
		answer.Responses = append(answer.Responses, SpecialistResponse{
			Domain: tag,
			Label:  tag.Label(),
			Text:   text,
		})
	}
	for _, err := range failures {
		answer.Failures = append(answer.Failures, failureFrom(err))
	}

	if len(answer.Responses) == 0 {
		err := &Error{Kind: KindHostedService, Err: errors.Join(unwrapAll(failures)...)}
		if len(failures) == 1 {
			err.Domain = failureFrom(failures[0]).Domain
		}
		return answer, err
	}

	text, err := s.synth.Synthesize(ctx, question, answer.Responses)
	if err != nil {
		s.logger.Warn("synthesis failed, using concatenated answers", zap.Error(err))
		answer.Degraded = true
		answer.Failures = append(answer.Failures, failureFrom(err))
	}
	answer.Text = text
	if len(failures) > 0 {
		answer.Degraded = true
	}

	s.logger.Info("question answered",
		zap.String("id", answer.ID),
		zap.Strings("domains", tagStrings(tags)),
		zap.Int("responses", len(answer.Responses)),
		zap.Bool("degraded", answer.Degraded),
		zap.Duration("elapsed", time.Since(start)))
	return answer, nil
}

func joinContext(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

func unwrapAll(errs []error) []error {
	out := make([]error, 0, len(errs))
	for _, err := range errs {
		var e *Error
		if errors.As(err, &e) && e.Err != nil {
			out = append(out, e.Err)
			continue
		}
		out = append(out, err)
	}
	return out
}

func tagStrings(tags []domain.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
