// Package dto defines request/response shapes for the HTTP API.
package dto

import (
	"time"

	"github.com/strideapp/stride/internal/model"
)

// LoginRequest is the body of POST /token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the successful login payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// CreateUserRequest is the body of POST /api/v1/users.
type CreateUserRequest struct {
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name"`
	Password    string  `json:"password"`
}

// UpdateUserRequest is the body of PATCH /api/v1/users/{id}.
// Absent fields are left untouched; the username cannot be changed.
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name"`
	Password    *string `json:"password"`
}

// UserResponse is the API view of a user record. The password digest never
// appears here.
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName *string   `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserListResponse wraps a list of users.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToUserResponse converts a model to its API view.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// ToUserListResponse converts a slice of models to the list payload.
func ToUserListResponse(users []*model.User) UserListResponse {
	out := UserListResponse{Users: make([]UserResponse, 0, len(users))}
	for _, user := range users {
		out.Users = append(out.Users, ToUserResponse(user))
	}
	return out
}
