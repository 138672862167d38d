package api

import (
	"bytes"
	"fmt"
	"html"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/devpilot/devpilot/internal/app/logging"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// handleArtifactView renders an artifact's markdown content as an HTML page.
func (s *Server) handleArtifactView(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")
	stage := r.PathValue("stage")

	artifact, err := s.workflow.GetArtifact(r.Context(), taskID, stage)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var body bytes.Buffer
	if err := markdown.Convert([]byte(artifact.Content), &body); err != nil {
		logging.Error("render artifact %s/%s: %v", taskID, stage, err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s - %s</title></head>
<body>
<p><strong>Task:</strong> %s &middot; <strong>Stage:</strong> %s &middot; <strong>Approval:</strong> %s</p>
<hr>
%s
</body>
</html>`,
		html.EscapeString(taskID),
		html.EscapeString(stage),
		html.EscapeString(taskID),
		html.EscapeString(stage),
		html.EscapeString(artifact.Approval),
		body.String(),
	)
}
