package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/strideapp/stride/internal/service"
)

func TestUserHandler_ServiceErrorMapping(t *testing.T) {
	h := &UserHandler{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        service.ErrUserNotFound,
			wantStatus: 404,
			wantCode:   "USER_NOT_FOUND",
		},
		{
			// A duplicate username on create is a client error, not a
			// resource conflict, and surfaces as 400.
			name:       "duplicate username",
			err:        service.ErrUsernameExists,
			wantStatus: 400,
			wantCode:   "USERNAME_TAKEN",
		},
		{
			name:       "missing username",
			err:        service.ErrUsernameRequired,
			wantStatus: 400,
			wantCode:   "USERNAME_REQUIRED",
		},
		{
			name:       "missing password",
			err:        service.ErrPasswordRequired,
			wantStatus: 400,
			wantCode:   "PASSWORD_REQUIRED",
		},
		{
			name:       "unexpected error",
			err:        errors.New("connection reset"),
			wantStatus: 500,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			h.handleServiceError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var response map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response["code"] != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, response["code"])
			}
		})
	}
}
