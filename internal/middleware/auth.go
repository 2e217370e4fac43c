package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/strideapp/stride/internal/auth"
)

// bearerPrefix is the expected Authorization scheme.
const bearerPrefix = "Bearer "

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens *auth.TokenManager
}

// Auth returns a middleware that authenticates requests with a bearer
// token. On success the token's subject is injected into the request
// context. Missing, malformed, badly signed and expired tokens all produce
// the same 401 body; the concrete reason goes to the log only, so the
// response leaks nothing about why the token was rejected. The subject is
// deliberately not re-checked against the store: tokens are stateless and
// remain valid for their full lifetime even if the user is deleted.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearerToken(r)
			if tokenString == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			subject, err := cfg.Tokens.Validate(tokenString)
			if err != nil {
				// err wraps ErrInvalidToken with the parse/signature/expiry
				// detail; the detail stays internal.
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", err.Error()),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ctx := auth.ContextWithSubject(r.Context(), subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token out of the Authorization header.
// Returns empty string if the header is absent or not a bearer credential.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
}

// writeAuthError writes the uniform 401 response.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "unauthorized",
		"code":  "UNAUTHORIZED",
	})
}
