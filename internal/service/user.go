// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/strideapp/stride/internal/auth"
	"github.com/strideapp/stride/internal/cache"
	"github.com/strideapp/stride/internal/metrics"
	"github.com/strideapp/stride/internal/model"
	"github.com/strideapp/stride/internal/repository"
)

// Service errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordRequired   = errors.New("password is required")
)

// UserStore is the durable backend for user records. Implemented by
// *repository.Repository; tests substitute an in-memory double.
type UserStore interface {
	CreateUser(ctx context.Context, username string, displayName *string, passwordHash string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, id string, params repository.UpdateUserParams) (*model.User, error)
	DeleteUser(ctx context.Context, id string) (*model.User, error)
}

// UserCache is the side cache for user records. Implemented by *cache.Cache.
type UserCache interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
	GetUserList(ctx context.Context) ([]*model.User, error)
	SetUserList(ctx context.Context, users []*model.User) error
	InvalidateUserList(ctx context.Context) error
}

// UserService coordinates the durable store and the side cache for every
// user operation. All cache interaction lives here: reads populate on miss,
// writes commit to the store first and only then touch the cache, so the
// cache is never ahead of the durable truth. A crash between the two steps
// leaves the cache stale, not wrong-and-authoritative; the entry heals on
// the next write to the same key. Cache failures degrade to store reads and
// never surface as the operation's result.
type UserService struct {
	store   UserStore
	cache   UserCache
	tokens  *auth.TokenManager
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, userCache UserCache, tokens *auth.TokenManager, logger *slog.Logger, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		cache:   userCache,
		tokens:  tokens,
		logger:  logger,
		metrics: recorder,
	}
}

// loginDummyDigest is what the unknown-username path verifies against, so
// both login failure modes pay the same argon2 cost. Generated once; the
// password behind it is never accepted because the branch always fails.
var loginDummyDigest = sync.OnceValue(func() string {
	digest, err := auth.HashPassword("nobody")
	if err != nil {
		return ""
	}
	return digest
})

// Login verifies the credentials and mints a session token for the username.
// Unknown username and wrong password both return ErrInvalidCredentials, and
// both paths run a digest verification, so neither the error value nor the
// response time reveals which half was wrong.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			_, _ = auth.VerifyPassword(password, loginDummyDigest())
			s.metrics.IncLoginFailed()
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("login lookup: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailed()
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncTokenIssued()
	return token, nil
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Username    string
	DisplayName *string
	Password    string
}

// CreateUser hashes the password, persists the record, then refreshes the
// cache: the collection snapshot is invalidated and the new record's key is
// populated. No cache mutation happens if the store write fails.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if input.Username == "" {
		return nil, ErrUsernameRequired
	}
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, input.Username, input.DisplayName, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserCreated()
	s.refreshAfterWrite(ctx, user)

	return user, nil
}

// GetUser serves a user record cache-first. A miss falls through to the
// store and populates the single-record key. NotFound is never cached.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	cached, err := s.cache.GetUser(ctx, id)
	if err == nil {
		s.metrics.IncUserCacheHit()
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		// Cache unavailable: fall through to the store, log, carry on.
		s.logger.Warn("user cache read failed", "user_id", id, "error", err)
	} else {
		s.metrics.IncUserCacheMiss()
	}

	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.cache.SetUser(ctx, user); err != nil {
		s.warnCacheWrite("populate user key", user.ID, err)
	}

	return user, nil
}

// ListUsers serves the collection snapshot cache-first, populating it from
// the store on miss.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	cached, err := s.cache.GetUserList(ctx)
	if err == nil {
		s.metrics.IncUserCacheHit()
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("user list cache read failed", "error", err)
	} else {
		s.metrics.IncUserCacheMiss()
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	if err := s.cache.SetUserList(ctx, users); err != nil {
		s.warnCacheWrite("populate user list", "", err)
	}

	return users, nil
}

// UpdateUserInput defines input for a partial user update. Nil fields are
// left untouched; the username is immutable and not updatable.
type UpdateUserInput struct {
	ID          string
	DisplayName *string
	Password    *string
}

// UpdateUser commits the partial update to the store, then overwrites the
// single-record key with the row the store returned. Writing the RETURNING
// row rather than the caller's view keeps the cache from regressing when
// two updates race: whatever the store handed back was durable truth at
// commit time.
func (s *UserService) UpdateUser(ctx context.Context, input UpdateUserInput) (*model.User, error) {
	params := repository.UpdateUserParams{
		DisplayName: input.DisplayName,
	}

	if input.Password != nil {
		if *input.Password == "" {
			return nil, ErrPasswordRequired
		}
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		params.PasswordHash = &hash
	}

	user, err := s.store.UpdateUser(ctx, input.ID, params)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.metrics.IncUserUpdated()
	s.refreshAfterWrite(ctx, user)

	return user, nil
}

// DeleteUser removes the record from the store, then purges every cache
// trace: the single-record key and the collection snapshot. Returns the
// deleted record.
func (s *UserService) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user: %w", err)
	}

	s.metrics.IncUserDeleted()

	if err := s.cache.DeleteUser(ctx, id); err != nil {
		s.warnCacheWrite("delete user key", id, err)
	}
	if err := s.cache.InvalidateUserList(ctx); err != nil {
		s.warnCacheWrite("invalidate user list", id, err)
	}

	return user, nil
}

// TokenTTL returns the lifetime of issued tokens.
func (s *UserService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// refreshAfterWrite runs the post-commit cache steps shared by create and
// update: drop the collection snapshot, overwrite the single-record key.
func (s *UserService) refreshAfterWrite(ctx context.Context, user *model.User) {
	if err := s.cache.InvalidateUserList(ctx); err != nil {
		s.warnCacheWrite("invalidate user list", user.ID, err)
	}
	if err := s.cache.SetUser(ctx, user); err != nil {
		s.warnCacheWrite("overwrite user key", user.ID, err)
	}
}

// warnCacheWrite records an absorbed cache mutation failure. The entry the
// step meant to fix may now be stale until the next write to its key, which
// is why the failure is always logged.
func (s *UserService) warnCacheWrite(step, userID string, err error) {
	s.metrics.IncCacheWriteError()
	if userID != "" {
		s.logger.Warn("cache write failed", "step", step, "user_id", userID, "error", err)
		return
	}
	s.logger.Warn("cache write failed", "step", step, "error", err)
}
