package context

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// correlationIDKey carries the request correlation ID through the system,
// from the inbound HTTP request down to repository and mail calls.
const correlationIDKey contextKey = "correlation_id"

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// GetCorrelationID retrieves the correlation ID from the context, or an
// empty string if none is present.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}
