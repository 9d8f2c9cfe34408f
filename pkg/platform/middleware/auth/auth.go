// Package auth provides the bearer-token middleware. It validates the token
// signature, hands the raw claim payload to the principal validator, and
// attaches the resulting trusted principal to the request context. No
// handler behind this middleware ever sees an unvalidated principal.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "scouthub/pkg/domain-errors"
	"scouthub/pkg/platform/httputil"
	request "scouthub/pkg/platform/middleware/request"

	"scouthub/internal/principal"
	"scouthub/pkg/requestcontext"
)

// TokenValidator verifies a bearer token and returns its raw claim payload.
// The payload is untrusted until the principal validator accepts it.
type TokenValidator interface {
	ValidateToken(tokenString string) (map[string]any, error)
}

func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthenticated access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "missing or invalid Authorization header"))
				return
			}

			rawClaims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthenticated access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthenticated, "invalid or expired token"))
				return
			}

			p, err := principal.Validate(rawClaims)
			if err != nil {
				logger.WarnContext(ctx, "rejected principal payload",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, p)))
		})
	}
}
