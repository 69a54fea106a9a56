package typeroute

import (
	"context"
	"net/http"
)

// contextKey namespaces stored values by their Go type, so two middlewares
// storing different types can never collide.
type contextKey[T any] struct{}

// SetValue returns a request whose context carries val, keyed by its type.
// Middleware stores request-scoped data this way; RequestID uses it for the
// request ID.
func SetValue[T any](r *http.Request, val T) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), contextKey[T]{}, val))
}

// GetValue retrieves a value stored with SetValue. The second return is
// false when no value of type T is present.
func GetValue[T any](ctx context.Context) (T, bool) {
	val, ok := ctx.Value(contextKey[T]{}).(T)
	return val, ok
}
