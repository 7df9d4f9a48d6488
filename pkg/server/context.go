package server

import "context"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// contextKeyRequestID is the context key for request ID
	contextKeyRequestID contextKey = "requestID"
	// contextKeyAPIVersion is the context key for API version
	contextKeyAPIVersion contextKey = "apiVersion"
)

// RequestIDFrom returns the request ID stored by the middleware, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// APIVersionFrom returns the negotiated API version stored by the middleware.
// Falls back to the default version when the middleware has not run.
func APIVersionFrom(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyAPIVersion).(string); ok {
		return v
	}
	return DefaultAPIVersion
}
