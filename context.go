package authkit

import "context"

type requestIDContextKey struct{}

// WithRequestID attaches a caller-chosen correlation id to ctx. The transport
// sends it as X-Request-Id instead of generating one, so a UI action can be
// traced across every call it triggers.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}
