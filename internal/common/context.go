package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID   contextKey = "request_id"
	ContextKeyKeyIdentity contextKey = "key_identity"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithKeyIdentity adds the authenticated API-key identity to the context
func WithKeyIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, ContextKeyKeyIdentity, identity)
}

// KeyIdentityFromContext extracts the API-key identity from context
func KeyIdentityFromContext(ctx context.Context) string {
	if identity, ok := ctx.Value(ContextKeyKeyIdentity).(string); ok {
		return identity
	}
	return ""
}
