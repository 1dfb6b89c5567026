package http

import (
	"context"
	"net/http"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/session"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady reports whether storage answers and how many sessions are live.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.deps.Storage == nil {
		checks["storage"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else if err := s.deps.Storage.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "check", "storage", "error", err)
		checks["storage"] = "unavailable"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}
	checks["sessions"] = s.deps.Sessions.Len()

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := core.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": names})
}

// handleSession re-resolves the screen so a dashboard session whose profile
// disappeared falls back to onboarding.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	st, err := s.deps.Router.Resolve(r.Context(), sess)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(st))
}
