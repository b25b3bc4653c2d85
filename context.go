package grantkit

import (
	"context"
)

// Context keys for GrantKit values.
type contextKey string

const (
	contextKeyCurrentUser contextKey = "grantkit:current_user"
	contextKeyRequestID   contextKey = "grantkit:request_id"
)

// WithCurrentUser adds the acting user's reference to the context. This is
// the caller permission checks and secured mutations run against.
func WithCurrentUser(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, contextKeyCurrentUser, ref)
}

// CurrentUser retrieves the acting user's reference from context.
// Returns empty string (anonymous) if not set.
func CurrentUser(ctx context.Context) string {
	if v := ctx.Value(contextKeyCurrentUser); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context for change-message
// correlation.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestID retrieves the request ID from context.
// Returns empty string if not set.
func RequestID(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
