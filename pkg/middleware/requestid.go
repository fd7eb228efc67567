package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/liber-scholasticum/live-search/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID returns middleware that assigns each request a unique ID
// (reusing an incoming X-Request-ID header if the client supplied one),
// stores it on the request context via pkg/logger, and echoes it back in
// the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDContextKey{}, id)
		ctx = logger.WithRequestID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID stored on r's context by RequestID,
// or "" if none is present.
func GetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDContextKey{}).(string)
	return id
}

type requestIDContextKey struct{}
