package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/strideapp/stride/internal/model"
)

// ErrGoalNotFound is returned for operations on a missing goal.
var ErrGoalNotFound = errors.New("goal not found")

// UpdateGoalParams carries the optional fields of a partial goal update.
type UpdateGoalParams struct {
	Title       *string
	Description *string
}

// CreateGoal inserts a new goal and returns the persisted record.
func (r *Repository) CreateGoal(ctx context.Context, title string, description *string) (*model.Goal, error) {
	query := `
		INSERT INTO goals (id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, title, description, created_at, updated_at
	`

	now := time.Now().UTC()
	goal, err := scanGoal(r.pool.QueryRow(ctx, query, ulid.Make().String(), title, description, now))
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

// GetGoal retrieves a goal by ID.
func (r *Repository) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	query := `
		SELECT id, title, description, created_at, updated_at
		FROM goals
		WHERE id = $1
	`

	goal, err := scanGoal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	return goal, nil
}

// ListGoals retrieves all goals ordered by creation time.
func (r *Repository) ListGoals(ctx context.Context) ([]*model.Goal, error) {
	query := `
		SELECT id, title, description, created_at, updated_at
		FROM goals
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]*model.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}

	return goals, nil
}

// UpdateGoal applies a partial update and returns the fresh row.
func (r *Repository) UpdateGoal(ctx context.Context, id string, params UpdateGoalParams) (*model.Goal, error) {
	query := `
		UPDATE goals
		SET title       = COALESCE($2, title),
		    description = COALESCE($3, description),
		    updated_at  = $4
		WHERE id = $1
		RETURNING id, title, description, created_at, updated_at
	`

	goal, err := scanGoal(r.pool.QueryRow(ctx, query, id, params.Title, params.Description, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	return goal, nil
}

// DeleteGoal removes a goal and returns the deleted record.
func (r *Repository) DeleteGoal(ctx context.Context, id string) (*model.Goal, error) {
	query := `
		DELETE FROM goals
		WHERE id = $1
		RETURNING id, title, description, created_at, updated_at
	`

	goal, err := scanGoal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to delete goal: %w", err)
	}

	return goal, nil
}

// scanGoal scans a single row into a Goal model.
func scanGoal(row pgx.Row) (*model.Goal, error) {
	var goal model.Goal

	err := row.Scan(
		&goal.ID,
		&goal.Title,
		&goal.Description,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &goal, nil
}
