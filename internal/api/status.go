package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StatusInfo describes the running configuration reported by /api/status.
type StatusInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Backend  string `json:"backend"`
	Basis    string `json:"basis"`
}

// StatusHandler reports API and dependency health.
type StatusHandler struct {
	*Handler
	info    StatusInfo
	timeout time.Duration
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(base *Handler, info StatusInfo) *StatusHandler {
	return &StatusHandler{Handler: base, info: info, timeout: 5 * time.Second}
}

// RegisterRoutes registers the status route.
func (h *StatusHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/status", h.Status)
}

// Status returns the health of the API and the progress store.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := map[string]interface{}{
		"status":     "healthy",
		"checks":     checks,
		"model":      h.info,
		"curriculum": h.curriculum.Counts(),
	}
	statusCode := http.StatusOK

	if err := h.repo.Ping(ctx); err != nil {
		h.logger.Error("progress store health check failed", zap.Error(err))
		status["status"] = "degraded"
		checks["progress_store"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["progress_store"] = "ok"
	}

	JSON(w, statusCode, status)
}
