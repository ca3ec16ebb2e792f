package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gearinhere/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type editDraftRequest struct {
	Content *string `json:"content"`
}

type publishResponse struct {
	Message    string `json:"message"`
	PostID     int64  `json:"post_id"`
	StatusCode int    `json:"status_code"`
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var req domain.DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	draft, err := s.pipeline.Prepare(r.Context(), req)
	if err != nil {
		s.respondWithStageError(w, err, zap.String("url", req.URL), zap.String("source", req.Source))
		return
	}
	s.respondWithJSON(w, http.StatusCreated, draft)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	draft, err := s.pipeline.Draft(r.Context(), id)
	if err != nil {
		s.respondWithStageError(w, err, zap.String("draft_id", id))
		return
	}
	s.respondWithJSON(w, http.StatusOK, draft)
}

func (s *Server) handleEditDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req editDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == nil {
		s.respondWithError(w, http.StatusBadRequest, "Request body must contain content")
		return
	}

	draft, err := s.pipeline.Edit(r.Context(), id, *req.Content)
	if err != nil {
		s.respondWithStageError(w, err, zap.String("draft_id", id))
		return
	}
	s.respondWithJSON(w, http.StatusOK, draft)
}

func (s *Server) handlePublishDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var opts domain.PublishOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.pipeline.Publish(r.Context(), id, opts)
	if err != nil {
		s.respondWithStageError(w, err, zap.String("draft_id", id))
		return
	}
	s.respondWithJSON(w, http.StatusCreated, publishResponse{
		Message:    "Published successfully!",
		PostID:     result.PostID,
		StatusCode: result.StatusCode,
	})
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.drafts.Ping(ctx); err != nil {
		s.logger.Error("health check failed for draft store", zap.Error(err))
		s.respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Helper Functions ---

// respondWithStageError maps pipeline errors onto operator-facing answers.
// Remote error detail stays in the logs.
func (s *Server) respondWithStageError(w http.ResponseWriter, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	switch {
	case errors.Is(err, domain.ErrInvalidURL),
		errors.Is(err, domain.ErrInvalidSource),
		errors.Is(err, domain.ErrCategoryNotFound):
		s.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDraftNotFound):
		s.respondWithError(w, http.StatusNotFound, "Draft not found")
	case errors.Is(err, domain.ErrExtractionTransport):
		s.logger.Warn("extraction failed", fields...)
		s.respondWithError(w, http.StatusBadGateway, "Could not fetch product page")
	case errors.Is(err, domain.ErrGeneration):
		s.logger.Error("generation failed", fields...)
		s.respondWithError(w, http.StatusBadGateway, "Could not generate review")
	case errors.Is(err, domain.ErrPublish):
		s.logger.Error("publish failed", fields...)
		s.respondWithError(w, http.StatusBadGateway, domain.NoticePublishFailed)
	default:
		s.logger.Error("request failed", fields...)
		s.respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
		code = http.StatusInternalServerError
		response = []byte(`{"error":"Internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
