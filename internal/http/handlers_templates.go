package http

import (
	"log/slog"
	"net/http"

	"quantofalta/internal/core"
	"quantofalta/internal/services"
)

type createTemplateRequest struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	DueDay   int    `json:"dueDay"`
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	in := services.TemplateInput{
		Name:     sanitizeInput(req.Name),
		Amount:   amount,
		Category: sanitizeInput(req.Category),
		DueDay:   req.DueDay,
	}

	tpl, err := s.service.AddTemplate(r.Context(), in)
	if err != nil {
		slog.ErrorContext(r.Context(), "Template create error", "error", err, "name", in.Name)
		writeError(w, err)
		return
	}

	s.invalidateOverviews()
	writeJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()
	tpls := snap.Templates
	if tpls == nil {
		tpls = []core.RecurringTemplate{}
	}
	writeJSON(w, http.StatusOK, tpls)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteTemplate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
