package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/kbukum/fetchkit/fetch"
)

// HeaderRequestID is the request correlation header.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID returns a context carrying id for RequestID to forward.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID sets X-Request-ID on requests that lack it, forwarding the ID
// from the request context when present and generating a UUID otherwise.
func RequestID() fetch.Middleware {
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderRequestID) != "" {
				return next(req)
			}
			id := RequestIDFromContext(req.Context())
			if id == "" {
				id = uuid.NewString()
			}
			out := req.Clone(req.Context())
			out.Header.Set(HeaderRequestID, id)
			return next(out)
		}
	}
}
