package http

import (
	"context"

	"toolshed-backend/internal/domain"
)

type contextKey string

const userKey contextKey = "user"

// WithUser stores the authenticated caller on ctx.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated caller, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok && user != nil
}
