// Package request provides request-ID middleware so every log line and audit
// event can be correlated back to one HTTP request.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"scouthub/pkg/requestcontext"
)

const headerRequestID = "X-Request-Id"

// RequestID assigns each request an ID, honoring one supplied by a trusted
// upstream proxy, and echoes it in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
