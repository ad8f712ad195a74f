package http

import (
	"log/slog"
	"net/http"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	name := sanitizeInput(req.Name)
	if err := s.service.AddCategory(r.Context(), name); err != nil {
		slog.ErrorContext(r.Context(), "Category create error", "error", err, "category", name)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nil)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()
	cats := snap.Categories
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	oldName := r.PathValue("name")

	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	newName := sanitizeInput(req.Name)
	if err := s.service.RenameCategory(r.Context(), oldName, newName); err != nil {
		slog.ErrorContext(r.Context(), "Category rename error", "error", err, "from", oldName, "to", newName)
		writeError(w, err)
		return
	}
	s.invalidateOverviews()
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.service.DeleteCategory(r.Context(), name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
