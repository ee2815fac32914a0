package messagebus

import "context"

type correlationIDKey struct{}

// CorrelationID returns the id the bus assigned to the top-level Handle call that ctx belongs to.
func CorrelationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationIDKey{}).(string)
	return id, ok
}

func withCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}
