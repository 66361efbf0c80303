package httpx

import (
	"context"

	"github.com/openquest/questlog/internal/domain/model"
)

// userKey is an unexported context key type to avoid collisions across
// packages. Centralized here so all handlers/middleware use the same key.
type userKey struct{}

// SetUserInContext returns a child context that carries the authenticated user.
func SetUserInContext(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUserFromContext returns the authenticated user from context and a
// boolean indicating presence. RequireAuth guarantees presence downstream.
func GetUserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey{}).(model.User)
	return user, ok
}
