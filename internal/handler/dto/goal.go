package dto

import (
	"time"

	"github.com/strideapp/stride/internal/model"
)

// CreateGoalRequest is the body of POST /api/v1/goals.
type CreateGoalRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateGoalRequest is the body of PATCH /api/v1/goals/{id}.
type UpdateGoalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// GoalResponse is the API view of a goal.
type GoalResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GoalListResponse wraps a list of goals.
type GoalListResponse struct {
	Goals []GoalResponse `json:"goals"`
}

// ToGoalResponse converts a model to its API view.
func ToGoalResponse(goal *model.Goal) GoalResponse {
	return GoalResponse{
		ID:          goal.ID,
		Title:       goal.Title,
		Description: goal.Description,
		CreatedAt:   goal.CreatedAt,
		UpdatedAt:   goal.UpdatedAt,
	}
}

// ToGoalListResponse converts a slice of models to the list payload.
func ToGoalListResponse(goals []*model.Goal) GoalListResponse {
	out := GoalListResponse{Goals: make([]GoalResponse, 0, len(goals))}
	for _, goal := range goals {
		out.Goals = append(out.Goals, ToGoalResponse(goal))
	}
	return out
}
