// Package httpapi assembles the HTTP router: platform middleware first, then
// the authenticated feature surface. Handlers stay in their feature packages.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scouthub/internal/application"
	"scouthub/pkg/platform/middleware/auth"
	request "scouthub/pkg/platform/middleware/request"
	"scouthub/pkg/platform/middleware/requesttime"
)

// NewRouter wires all endpoints. Everything under the auth middleware sees
// only validated principals.
func NewRouter(appHandler *application.Handler, tokenValidator auth.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokenValidator, logger))
		appHandler.Register(r)
	})

	return r
}
