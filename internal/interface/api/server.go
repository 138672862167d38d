package api

import (
	"context"
	"net/http"
	"time"

	"github.com/devpilot/devpilot/internal/app/logging"
	workflowusecase "github.com/devpilot/devpilot/internal/application/usecase/workflow"
)

// Server exposes the workflow over a thin HTTP API plus a minimal HTML view
// of generated artifacts.
type Server struct {
	workflow *workflowusecase.UseCase
	httpSrv  *http.Server
}

// NewServer creates an HTTP server for the workflow
func NewServer(workflow *workflowusecase.UseCase, listen string) *Server {
	s := &Server{workflow: workflow}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/v1/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/v1/tasks", s.handleStartTask)
	mux.HandleFunc("GET /api/v1/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("POST /api/v1/tasks/{id}/review", s.handleSubmitReview)
	mux.HandleFunc("POST /api/v1/tasks/{id}/retry", s.handleRetry)
	mux.HandleFunc("POST /api/v1/tasks/{id}/cancel", s.handleCancel)
	mux.HandleFunc("GET /tasks/{id}/artifacts/{stage}", s.handleArtifactView)

	s.httpSrv = &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler (used by tests)
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// ListenAndServe blocks serving HTTP until Shutdown
func (s *Server) ListenAndServe() error {
	logging.Info("HTTP API listening on %s", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
