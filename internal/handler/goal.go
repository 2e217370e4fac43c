package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strideapp/stride/internal/handler/dto"
	"github.com/strideapp/stride/internal/service"
)

// GoalHandler handles HTTP requests for goal operations.
type GoalHandler struct {
	svc    *service.GoalService
	logger *slog.Logger
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(svc *service.GoalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	goal, err := h.svc.CreateGoal(r.Context(), service.CreateGoalInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("goal_created", "goal_id", goal.ID)

	writeJSON(w, http.StatusCreated, dto.ToGoalResponse(goal))
}

// Get handles GET /api/v1/goals/{id}.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Goal ID is required")
		return
	}

	goal, err := h.svc.GetGoal(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGoalResponse(goal))
}

// List handles GET /api/v1/goals.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.ListGoals(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGoalListResponse(goals))
}

// Update handles PATCH /api/v1/goals/{id}.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Goal ID is required")
		return
	}

	var req dto.UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	goal, err := h.svc.UpdateGoal(r.Context(), service.UpdateGoalInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("goal_updated", "goal_id", goal.ID)

	writeJSON(w, http.StatusOK, dto.ToGoalResponse(goal))
}

// Delete handles DELETE /api/v1/goals/{id}.
// Responds with the deleted record.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Goal ID is required")
		return
	}

	goal, err := h.svc.DeleteGoal(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("goal_deleted", "goal_id", id)

	writeJSON(w, http.StatusOK, dto.ToGoalResponse(goal))
}

// handleServiceError maps goal service errors to HTTP responses.
func (h *GoalHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, "GOAL_NOT_FOUND", "Goal not found")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Title is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
