package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"

	"github.com/strideapp/stride/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint violations.
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// UpdateUserParams carries the optional fields of a partial user update.
// Nil fields are left untouched.
type UpdateUserParams struct {
	DisplayName  *string
	PasswordHash *string
}

// CreateUser inserts a new user and returns the persisted record.
// Uniqueness is enforced by the database index, not a prior existence
// check, so concurrent creates cannot race past it.
func (r *Repository) CreateUser(ctx context.Context, username string, displayName *string, passwordHash string) (*model.User, error) {
	query := `
		INSERT INTO users (id, username, display_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, username, display_name, password_hash, created_at, updated_at
	`

	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, query, ulid.Make().String(), username, displayName, passwordHash, now)

	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (r *Repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	query := `
		SELECT id, username, display_name, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByUsername retrieves a user by username. Used by the login flow.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, display_name, password_hash, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// ListUsers retrieves all users ordered by creation time.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, username, display_name, password_hash, created_at, updated_at
		FROM users
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateUser applies a partial update and returns the fresh row.
// Username is immutable and cannot be changed here.
func (r *Repository) UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error) {
	query := `
		UPDATE users
		SET display_name  = COALESCE($2, display_name),
		    password_hash = COALESCE($3, password_hash),
		    updated_at    = $4
		WHERE id = $1
		RETURNING id, username, display_name, password_hash, created_at, updated_at
	`

	row := r.pool.QueryRow(ctx, query, id, params.DisplayName, params.PasswordHash, time.Now().UTC())

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user and returns the deleted record.
func (r *Repository) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	query := `
		DELETE FROM users
		WHERE id = $1
		RETURNING id, username, display_name, password_hash, created_at, updated_at
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	return user, nil
}

// scanUser scans a single row into a User model.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}
