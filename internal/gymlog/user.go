package gymlog

import (
	"context"
	"strings"
)

type userIDKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user id.
// Only the auth middleware should call it.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, or ErrUnauthorized
// when none was set.
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	if !ok {
		return "", ErrUnauthorized
	}
	return CheckUserID(userID)
}

// CheckUserID rejects blank user ids.
func CheckUserID(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrUnauthorized
	}
	return userID, nil
}
