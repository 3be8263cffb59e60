package api

import (
	"errors"
	"net/http"

	"github.com/ashureev/studyguide/internal/curriculum"
	"github.com/ashureev/studyguide/internal/domain"
	"github.com/ashureev/studyguide/internal/progress"
	"github.com/ashureev/studyguide/internal/recommend"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProgressHandler serves progress, recommendation and curriculum routes.
type ProgressHandler struct {
	*Handler
}

// NewProgressHandler creates a progress handler.
func NewProgressHandler(base *Handler) *ProgressHandler {
	return &ProgressHandler{Handler: base}
}

// RegisterRoutes registers the progress routes.
func (h *ProgressHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/progress", h.GetProgress)
	r.Put("/api/progress/{type}/{id}", h.MarkSection)
	r.Delete("/api/progress", h.Reset)
	r.Get("/api/recommendations", h.Recommendations)
	r.Get("/api/curriculum", h.Curriculum)
}

type progressResponse struct {
	Progress domain.ProgressDocument `json:"progress"`
	Summary  progress.Summary        `json:"summary"`
}

// GetProgress handles GET /api/progress.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, progressResponse{
		Progress: h.progress.Snapshot(),
		Summary:  h.progress.Summary(),
	})
}

type markRequest struct {
	Complete *bool `json:"complete"`
}

type markResponse struct {
	domain.SectionKey
	domain.ProgressRecord
	Title string `json:"title"`
}

// MarkSection handles PUT /api/progress/{type}/{id}. An absent "complete"
// field marks the section complete.
func (h *ProgressHandler) MarkSection(w http.ResponseWriter, r *http.Request) {
	sectionType, ok := domain.ParseSectionType(chi.URLParam(r, "type"))
	if !ok {
		Error(w, http.StatusBadRequest, "unknown section type")
		return
	}
	id := chi.URLParam(r, "id")
	if !h.curriculum.Has(sectionType, id) {
		Error(w, http.StatusNotFound, "section not found")
		return
	}

	req := markRequest{}
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	complete := true
	if req.Complete != nil {
		complete = *req.Complete
	}

	rec, err := h.progress.MarkComplete(r.Context(), sectionType, id, complete)
	if err != nil {
		switch {
		case errors.Is(err, progress.ErrPersist):
			h.logger.Error("progress not persisted", zap.Error(err))
			Error(w, http.StatusInternalServerError, "progress updated but could not be saved")
		case errors.Is(err, progress.ErrUnknownSectionType), errors.Is(err, progress.ErrEmptySectionID):
			Error(w, http.StatusBadRequest, err.Error())
		default:
			Error(w, http.StatusInternalServerError, "failed to update progress")
		}
		return
	}

	JSON(w, http.StatusOK, markResponse{
		SectionKey:     domain.SectionKey{Type: sectionType, ID: id},
		ProgressRecord: rec,
		Title:          h.curriculum.DisplayTitle(sectionType, id),
	})
}

// Reset handles DELETE /api/progress.
func (h *ProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.progress.Reset(r.Context()); err != nil {
		h.logger.Error("progress reset not persisted", zap.Error(err))
		Error(w, http.StatusInternalServerError, "progress reset but could not be saved")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "reset",
		"summary": h.progress.Summary(),
	})
}

// Recommendations handles GET /api/recommendations.
func (h *ProgressHandler) Recommendations(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recommend.Next(h.progress, h.curriculum),
	})
}

type curriculumEntry struct {
	curriculum.Section
	DisplayTitle string `json:"display_title"`
	Complete     bool   `json:"complete"`
}

// Curriculum handles GET /api/curriculum; every section carries its
// completion flag.
func (h *ProgressHandler) Curriculum(w http.ResponseWriter, _ *http.Request) {
	entries := func(t domain.SectionType, sections []curriculum.Section) []curriculumEntry {
		out := make([]curriculumEntry, 0, len(sections))
		for _, s := range sections {
			out = append(out, curriculumEntry{
				Section:      s,
				DisplayTitle: h.curriculum.DisplayTitle(t, s.ID),
				Complete:     h.progress.IsComplete(t, s.ID),
			})
		}
		return out
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"study_guide": entries(domain.SectionStudyGuide, h.curriculum.StudyGuide),
		"labs":        entries(domain.SectionLabs, h.curriculum.Labs),
	})
}
