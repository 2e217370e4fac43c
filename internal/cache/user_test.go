package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/strideapp/stride/internal/model"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewFromClient(client), mr
}

func testUser(id, username string) *model.User {
	name := "Display " + username
	return &model.User{
		ID:           id,
		Username:     username,
		DisplayName:  &name,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCache_UserRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	user := testUser("01HX1", "alice")

	if err := c.SetUser(ctx, user); err != nil {
		t.Fatalf("SetUser failed: %v", err)
	}

	got, err := c.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}

	if got.ID != user.ID || got.Username != user.Username {
		t.Errorf("snapshot mismatch: got %+v, want %+v", got, user)
	}
	if got.DisplayName == nil || *got.DisplayName != *user.DisplayName {
		t.Errorf("display name not preserved: %+v", got.DisplayName)
	}
	if got.PasswordHash != user.PasswordHash {
		t.Errorf("digest not preserved in snapshot")
	}
}

func TestCache_GetUser_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.GetUser(context.Background(), "absent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestCache_DeleteUser(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	user := testUser("01HX2", "bob")
	if err := c.SetUser(ctx, user); err != nil {
		t.Fatalf("SetUser failed: %v", err)
	}

	if err := c.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := c.GetUser(ctx, user.ID); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestCache_UserListRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	users := []*model.User{testUser("01HX3", "alice"), testUser("01HX4", "bob")}

	if err := c.SetUserList(ctx, users); err != nil {
		t.Fatalf("SetUserList failed: %v", err)
	}

	got, err := c.GetUserList(ctx)
	if err != nil {
		t.Fatalf("GetUserList failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
	if got[0].Username != "alice" || got[1].Username != "bob" {
		t.Errorf("list order or content mismatch: %+v", got)
	}
}

func TestCache_InvalidateUserList(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.SetUserList(ctx, []*model.User{testUser("01HX5", "alice")}); err != nil {
		t.Fatalf("SetUserList failed: %v", err)
	}

	if err := c.InvalidateUserList(ctx); err != nil {
		t.Fatalf("InvalidateUserList failed: %v", err)
	}

	if _, err := c.GetUserList(ctx); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after invalidation, got %v", err)
	}
}

func TestCache_EntriesHaveNoTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	user := testUser("01HX6", "carol")
	if err := c.SetUser(ctx, user); err != nil {
		t.Fatalf("SetUser failed: %v", err)
	}

	// Entries rely on explicit invalidation, not expiry.
	if ttl := mr.TTL("user:" + user.ID); ttl != 0 {
		t.Errorf("expected no TTL on cache entry, got %s", ttl)
	}

	mr.FastForward(240 * time.Hour)

	if _, err := c.GetUser(ctx, user.ID); err != nil {
		t.Errorf("entry should survive arbitrary time without invalidation: %v", err)
	}
}

func TestCache_Unavailable(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	mr.Close()

	if _, err := c.GetUser(ctx, "x"); err == nil || errors.Is(err, ErrCacheMiss) {
		t.Errorf("want transport error distinct from ErrCacheMiss, got %v", err)
	}
	if err := c.SetUser(ctx, testUser("01HX7", "dave")); err == nil {
		t.Error("expected error writing to closed redis")
	}
}
