// Package request assigns a correlation ID to every incoming request.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKeyRequestID struct{}

// Header carrying the correlation ID in and out of the gateway.
const Header = "X-Request-ID"

// RequestID middleware reuses an inbound X-Request-ID when present,
// otherwise generates one, and reflects it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), contextKeyRequestID{}, id)
		w.Header().Set(Header, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the correlation ID from the context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a correlation ID into a context. Useful for tests
// that don't run the full middleware chain.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, id)
}
