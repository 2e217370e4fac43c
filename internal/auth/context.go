package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// subjectContextKey is the context key for the authenticated subject.
const subjectContextKey contextKey = "auth_subject"

// ContextWithSubject adds the authenticated subject (username) to the context.
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// SubjectFromContext retrieves the authenticated subject from the context.
// Returns empty string if the request is unauthenticated.
func SubjectFromContext(ctx context.Context) string {
	subject, ok := ctx.Value(subjectContextKey).(string)
	if !ok {
		return ""
	}
	return subject
}
