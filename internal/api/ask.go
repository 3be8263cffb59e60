package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ashureev/studyguide/internal/agent"
	"github.com/ashureev/studyguide/internal/domain"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Asker answers questions. *agent.Service implements it.
type Asker interface {
	Ask(ctx context.Context, req agent.AskRequest) (*agent.Answer, error)
	Router() *agent.Router
}

// AskHandler serves the question endpoints.
type AskHandler struct {
	svc     Asker
	limiter *RateLimiter
	logger  *zap.Logger
}

// NewAskHandler creates the question handler. limiter may be nil.
func NewAskHandler(svc Asker, limiter *RateLimiter, logger *zap.Logger) *AskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AskHandler{svc: svc, limiter: limiter, logger: logger}
}

// RegisterRoutes registers the question routes.
func (h *AskHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/ask", h.Ask)
	r.Post("/api/classify", h.Classify)
}

type errorBody struct {
	Error   string          `json:"error"`
	Kind    agent.ErrorKind `json:"kind,omitempty"`
	Message string          `json:"message,omitempty"`
	Failed  []agent.Failure `json:"failures,omitempty"`
	Domains []domain.Tag    `json:"domains,omitempty"`
}

// Ask handles POST /api/ask.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow(clientKey(r)) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req agent.AskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	answer, err := h.svc.Ask(r.Context(), req)
	if err != nil {
		body := errorBody{Kind: agent.KindOf(err), Message: err.Error()}
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, agent.ErrEmptyQuestion):
			body.Error = "question is required"
			status = http.StatusBadRequest
		default:
			body.Error = "all specialists failed"
		}
		if answer != nil {
			body.Failed = answer.Failures
			body.Domains = answer.Domains
		}
		h.logger.Warn("ask failed",
			zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
			zap.Int("status", status),
			zap.Error(err))
		JSON(w, status, body)
		return
	}

	JSON(w, http.StatusOK, answer)
}

type classifyResponse struct {
	Domains []domain.Tag  `json:"domains"`
	Matches []agent.Match `json:"matches"`
}

// Classify handles POST /api/classify.
func (h *AskHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req agent.AskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	matches := h.svc.Router().Explain(req.Question)
	resp := classifyResponse{Matches: matches}
	for _, m := range matches {
		resp.Domains = append(resp.Domains, m.Tag)
	}
	JSON(w, http.StatusOK, resp)
}
