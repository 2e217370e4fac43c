package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/strideapp/stride/internal/model"
)

// Cache keys. Entries carry no TTL: correctness rests on explicit
// invalidation by the write path, so an entry left behind by a lost
// invalidation stays until the next write touches its key.
const (
	userKeyPrefix = "user:"
	userListKey   = "users:all"
)

// ErrCacheMiss indicates the requested key is not in the cache.
var ErrCacheMiss = errors.New("cache miss")

// userKey derives the single-record cache key for a user ID.
func userKey(id string) string {
	return userKeyPrefix + id
}

// GetUser retrieves a cached user snapshot by ID.
// Returns ErrCacheMiss if not present.
func (c *Cache) GetUser(ctx context.Context, id string) (*model.User, error) {
	data, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode cached user: %w", err)
	}

	return &user, nil
}

// SetUser stores a user snapshot under its single-record key.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	if err := c.client.Set(ctx, userKey(user.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}

	return nil
}

// DeleteUser removes a user's single-record key.
func (c *Cache) DeleteUser(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, userKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete user from cache: %w", err)
	}
	return nil
}

// GetUserList retrieves the cached collection snapshot.
// Returns ErrCacheMiss if not present.
func (c *Cache) GetUserList(ctx context.Context) ([]*model.User, error) {
	data, err := c.client.Get(ctx, userListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var users []*model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode cached user list: %w", err)
	}

	return users, nil
}

// SetUserList stores the full collection snapshot.
func (c *Cache) SetUserList(ctx context.Context, users []*model.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("failed to encode user list: %w", err)
	}

	if err := c.client.Set(ctx, userListKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to cache user list: %w", err)
	}

	return nil
}

// InvalidateUserList drops the collection snapshot. Any single-record write
// calls this: the collection key has no finer invalidation granularity, so
// the next list read goes back to the store.
func (c *Cache) InvalidateUserList(ctx context.Context) error {
	if err := c.client.Del(ctx, userListKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user list: %w", err)
	}
	return nil
}
