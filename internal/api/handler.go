// Package api provides HTTP handlers for the study guide API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ashureev/studyguide/internal/curriculum"
	"github.com/ashureev/studyguide/internal/progress"
	"github.com/ashureev/studyguide/internal/store"
	"go.uber.org/zap"
)

// defaultMaxRequestBodySize is the default maximum allowed request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20

// Handler provides common handler utilities.
type Handler struct {
	progress   *progress.Store
	curriculum *curriculum.Curriculum
	repo       store.Repository
	logger     *zap.Logger
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(p *progress.Store, c *curriculum.Curriculum, repo store.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		progress:   p,
		curriculum: c,
		repo:       repo,
		logger:     logger,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	return decodeBody(w, r, v, false)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be omitted.
// An empty body, chunked or not, leaves v untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	return decodeBody(w, r, v, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, defaultMaxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
