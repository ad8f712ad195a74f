package http

import (
	"log/slog"
	"net/http"
	"strings"

	"quantofalta/internal/core"
	"quantofalta/internal/services"
)

type createGoalRequest struct {
	Name         string `json:"name"`
	TargetAmount string `json:"targetAmount"`
	Deadline     string `json:"deadline"`
}

type updateGoalAmountRequest struct {
	Amount string `json:"amount"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	target, err := core.ParseAmount(req.TargetAmount)
	if err != nil {
		writeError(w, err)
		return
	}
	deadline, err := core.ParseDate(strings.TrimSpace(req.Deadline))
	if err != nil {
		writeError(w, err)
		return
	}

	in := services.GoalInput{
		Name:         sanitizeInput(req.Name),
		TargetAmount: target,
		Deadline:     deadline,
	}

	goal, err := s.service.AddGoal(r.Context(), in)
	if err != nil {
		slog.ErrorContext(r.Context(), "Goal create error", "error", err, "name", in.Name)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Snapshot()
	goals := snap.Goals
	if goals == nil {
		goals = []core.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleUpdateGoalAmount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateGoalAmountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Saved amount may legitimately be zero, so this parse allows it.
	amount, err := core.ParseSavedAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.service.UpdateGoalAmount(r.Context(), id, amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteGoal(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
