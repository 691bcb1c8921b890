package dispatch

import (
	"context"
	"strings"
)

type ctxKey int

const (
	bearerKey ctxKey = iota
	requestIDKey
)

// WithBearerToken returns a context whose dispatch calls carry
// "Authorization: Bearer <token>". A "Bearer " prefix on token is tolerated.
func WithBearerToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, bearerKey, token)
}

// BearerToken returns the token stored by WithBearerToken, or "".
func BearerToken(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(bearerKey).(string)
	return s
}

// WithRequestID propagates an inbound request id as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(requestIDKey).(string)
	return s
}
