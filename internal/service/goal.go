package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/repository"
)

// Goal service errors.
var (
	ErrGoalNotFound  = errors.New("goal not found")
	ErrTitleRequired = errors.New("title is required")
)

// GoalStore is the durable backend for goals. Implemented by
// *repository.Repository.
type GoalStore interface {
	CreateGoal(ctx context.Context, title string, description *string) (*model.Goal, error)
	GetGoal(ctx context.Context, id string) (*model.Goal, error)
	ListGoals(ctx context.Context) ([]*model.Goal, error)
	UpdateGoal(ctx context.Context, id string, params repository.UpdateGoalParams) (*model.Goal, error)
	DeleteGoal(ctx context.Context, id string) (*model.Goal, error)
}

// GoalService handles goal CRUD. Goals go straight to the store; there is
// no cache in front of this resource.
type GoalService struct {
	store GoalStore
}

// NewGoalService creates a new GoalService.
func NewGoalService(store GoalStore) *GoalService {
	return &GoalService{store: store}
}

// CreateGoalInput defines input for creating a goal.
type CreateGoalInput struct {
	Title       string
	Description *string
}

// CreateGoal persists a new goal.
func (s *GoalService) CreateGoal(ctx context.Context, input CreateGoalInput) (*model.Goal, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	goal, err := s.store.CreateGoal(ctx, input.Title, input.Description)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	return goal, nil
}

// GetGoal retrieves a goal by ID.
func (s *GoalService) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	goal, err := s.store.GetGoal(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("get goal: %w", err)
	}

	return goal, nil
}

// ListGoals retrieves all goals.
func (s *GoalService) ListGoals(ctx context.Context) ([]*model.Goal, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	return goals, nil
}

// UpdateGoalInput defines input for a partial goal update.
type UpdateGoalInput struct {
	ID          string
	Title       *string
	Description *string
}

// UpdateGoal applies a partial update.
func (s *GoalService) UpdateGoal(ctx context.Context, input UpdateGoalInput) (*model.Goal, error) {
	if input.Title != nil && *input.Title == "" {
		return nil, ErrTitleRequired
	}

	goal, err := s.store.UpdateGoal(ctx, input.ID, repository.UpdateGoalParams{
		Title:       input.Title,
		Description: input.Description,
	})
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("update goal: %w", err)
	}

	return goal, nil
}

// DeleteGoal removes a goal and returns the deleted record.
func (s *GoalService) DeleteGoal(ctx context.Context, id string) (*model.Goal, error) {
	goal, err := s.store.DeleteGoal(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("delete goal: %w", err)
	}

	return goal, nil
}
