package handlers

import (
	"context"

	"github.com/iudanet/taskkeeper/internal/models"
)

type contextKey string

// userKey is the request context key carrying the authenticated session payload
const userKey contextKey = "user"

// SetUser returns a context carrying the authenticated session payload
func SetUser(ctx context.Context, payload *models.TokenPayload) context.Context {
	return context.WithValue(ctx, userKey, payload)
}

// GetUser extracts the authenticated session payload from the request context.
// Returns nil when the request did not pass the auth middleware.
func GetUser(ctx context.Context) *models.TokenPayload {
	payload, ok := ctx.Value(userKey).(*models.TokenPayload)
	if !ok {
		return nil
	}
	return payload
}
