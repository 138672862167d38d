package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devpilot/devpilot/internal/app/logging"
	"github.com/devpilot/devpilot/internal/application/dto"
	"github.com/devpilot/devpilot/internal/domain/model"
	"github.com/devpilot/devpilot/internal/domain/repository"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.workflow.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "reason": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	var req dto.StartTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	summary, err := s.workflow.Start(r.Context(), req)
	if err != nil {
		// The task may exist even though its first generation failed; hand
		// the caller its state so the id is known for a retry.
		var genErr *model.GenerationError
		if summary != nil && errors.As(err, &genErr) {
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error": err.Error(),
				"task":  summary,
			})
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	summary, err := s.workflow.GetState(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	filter := repository.TaskFilter{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.Status(raw)
		if !status.IsValid() {
			writeError(w, http.StatusBadRequest, errors.New("invalid status filter"))
			return
		}
		filter.Statuses = []model.Status{status}
	}

	summaries, err := s.workflow.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": summaries})
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	reviewedStage := r.URL.Query().Get("stage")
	summary, err := s.workflow.SubmitReview(r.Context(), r.PathValue("id"), reviewedStage, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	summary, err := s.workflow.Retry(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	summary, err := s.workflow.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// writeDomainError maps domain errors onto HTTP status codes: unknown task
// 404, ordering/terminal conflicts 409, generation failures 502, invariant
// violations 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var genErr *model.GenerationError
	var invalidErr *model.InvalidStageInputError

	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, model.ErrStaleGate), errors.Is(err, model.ErrTerminalState):
		writeError(w, http.StatusConflict, err)
	case errors.As(err, &genErr):
		writeError(w, http.StatusBadGateway, err)
	case errors.As(err, &invalidErr):
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("write response: %v", err)
	}
}
