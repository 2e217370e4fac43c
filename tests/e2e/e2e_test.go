//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type userResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
}

type userListResponse struct {
	Users []userResponse `json:"users"`
}

type goalResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// TestE2ESmoke walks the full credential lifecycle against a running
// instance: login as the seeded admin, create a user, read it through
// the cache path, update it, verify the list reflects the change,
// exercise goals, and delete everything created.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("STRIDE_BASE_URL", "http://localhost:8080")
	adminUser := envOrDefault("STRIDE_ADMIN_USERNAME", "admin")
	adminPass := os.Getenv("STRIDE_ADMIN_PASSWORD")
	if adminPass == "" {
		t.Fatalf("STRIDE_ADMIN_PASSWORD is required for e2e tests")
	}

	token := login(t, baseURL, adminUser, adminPass)

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	username := "alice-" + suffix

	created := createUser(t, baseURL, token, username, "sup3rsecret", "Alice")
	if created.Username != username {
		t.Fatalf("created user has username %q, want %q", created.Username, username)
	}

	// Two consecutive reads: the second is served from cache and must
	// return the same record.
	first := getUser(t, baseURL, token, created.ID)
	second := getUser(t, baseURL, token, created.ID)
	if first.ID != second.ID || first.Username != second.Username {
		t.Fatalf("repeated reads disagree: %+v vs %+v", first, second)
	}

	updated := updateUser(t, baseURL, token, created.ID, map[string]any{"display_name": "Alice Cooper"})
	if updated.DisplayName == nil || *updated.DisplayName != "Alice Cooper" {
		t.Fatalf("display name not updated: %+v", updated.DisplayName)
	}

	// A read after the update must see the new value, not a stale
	// cache entry.
	afterUpdate := getUser(t, baseURL, token, created.ID)
	if afterUpdate.DisplayName == nil || *afterUpdate.DisplayName != "Alice Cooper" {
		t.Fatalf("stale read after update: %+v", afterUpdate.DisplayName)
	}

	if !listContains(t, baseURL, token, created.ID) {
		t.Fatal("created user missing from list")
	}

	// The new user can authenticate with their own credentials.
	aliceToken := login(t, baseURL, username, "sup3rsecret")
	if aliceToken == "" {
		t.Fatal("expected a non-empty token for the new user")
	}

	goal := createGoal(t, baseURL, token, "Ship the release", "before Friday")
	deleteResource(t, baseURL, token, "/api/v1/goals/"+goal.ID)

	deleteResource(t, baseURL, token, "/api/v1/users/"+created.ID)
	if listContains(t, baseURL, token, created.ID) {
		t.Fatal("deleted user still present in list")
	}

	resp := doJSON(t, http.MethodGet, baseURL+"/api/v1/users/"+created.ID, token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted user, got %d", resp.StatusCode)
	}
}

func TestE2EUnauthorized(t *testing.T) {
	baseURL := envOrDefault("STRIDE_BASE_URL", "http://localhost:8080")

	resp, err := http.Get(baseURL + "/api/v1/users")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func login(t *testing.T, baseURL, username, password string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, baseURL+"/token", "", map[string]any{
		"username": username,
		"password": password,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login for %q returned %d: %s", username, resp.StatusCode, readBody(t, resp))
	}

	var tok tokenResponse
	decode(t, resp, &tok)
	if tok.TokenType != "bearer" {
		t.Fatalf("unexpected token type %q", tok.TokenType)
	}
	return tok.AccessToken
}

func createUser(t *testing.T, baseURL, token, username, password, displayName string) userResponse {
	t.Helper()

	resp := doJSON(t, http.MethodPost, baseURL+"/api/v1/users", token, map[string]any{
		"username":     username,
		"password":     password,
		"display_name": displayName,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create user returned %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var user userResponse
	decode(t, resp, &user)
	return user
}

func getUser(t *testing.T, baseURL, token, id string) userResponse {
	t.Helper()

	resp := doJSON(t, http.MethodGet, baseURL+"/api/v1/users/"+id, token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get user returned %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var user userResponse
	decode(t, resp, &user)
	return user
}

func updateUser(t *testing.T, baseURL, token, id string, body map[string]any) userResponse {
	t.Helper()

	resp := doJSON(t, http.MethodPatch, baseURL+"/api/v1/users/"+id, token, body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update user returned %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var user userResponse
	decode(t, resp, &user)
	return user
}

func listContains(t *testing.T, baseURL, token, id string) bool {
	t.Helper()

	resp := doJSON(t, http.MethodGet, baseURL+"/api/v1/users", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list users returned %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var list userListResponse
	decode(t, resp, &list)
	for _, u := range list.Users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func createGoal(t *testing.T, baseURL, token, title, description string) goalResponse {
	t.Helper()

	resp := doJSON(t, http.MethodPost, baseURL+"/api/v1/goals", token, map[string]any{
		"title":       title,
		"description": description,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create goal returned %d: %s", resp.StatusCode, readBody(t, resp))
	}

	var goal goalResponse
	decode(t, resp, &goal)
	return goal
}

func deleteResource(t *testing.T, baseURL, token, path string) {
	t.Helper()

	resp := doJSON(t, http.MethodDelete, baseURL+path, token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete %s returned %d: %s", path, resp.StatusCode, readBody(t, resp))
	}
}

func doJSON(t *testing.T, method, url, token string, body map[string]any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(data)
}
