package utils

import (
	"context"
	"errors"
)

type contextKey string

const ContextCallerKey contextKey = "caller"

// Caller identifies the authenticated user and the token used for the request.
type Caller struct {
	UserID  uint
	TokenID uint
}

// ErrSessionExpired is returned by a SessionFetcher for a known token
// whose expiry has passed.
var ErrSessionExpired = errors.New("session expired")

// SessionData is what a SessionFetcher resolves a bearer token into.
type SessionData struct {
	UserID  uint
	TokenID uint
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, ContextCallerKey, c)
}

func GetCallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(ContextCallerKey).(Caller)
	return c, ok
}
