package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ov := s.getOverview(r.Context(), year, month)
	writeJSON(w, http.StatusOK, ov)
}

// handleReconcile triggers a reconciliation pass on demand. The pass is
// idempotent per calendar month, so hitting this repeatedly is harmless.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.Reconcile(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Reconcile error", "error", err)
		writeError(w, err)
		return
	}
	if result.Changed {
		s.invalidateOverviews()
	}
	writeJSON(w, http.StatusOK, result)
}
