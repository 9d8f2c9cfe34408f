// Package application is the instructor-application feature facade. It
// re-exports the module's service, handler and store constructors so wiring
// code (cmd/server) only imports one package per feature.
package application

import (
	"log/slog"

	"scouthub/internal/application/handler"
	"scouthub/internal/application/metrics"
	"scouthub/internal/application/models"
	"scouthub/internal/application/service"
	appstore "scouthub/internal/application/store/application"
	templatestore "scouthub/internal/application/store/template"
	"scouthub/internal/storage"
)

type (
	Service = service.Service
	Handler = handler.Handler
	Metrics = metrics.Metrics

	Store           = service.ApplicationStore
	TemplateCatalog = service.TemplateCatalog
	ProfileChecker  = service.ProfileChecker
	AuditPublisher  = service.AuditPublisher
)

// Re-exported service options.
var (
	WithLogger         = service.WithLogger
	WithMetrics        = service.WithMetrics
	WithAuditPublisher = service.WithAuditPublisher
	WithProfileChecker = service.WithProfileChecker
	WithDownloadTTL    = service.WithDownloadTTL
)

// NewService builds the application service.
func NewService(apps Store, templates TemplateCatalog, objects storage.ObjectURLProvider, opts ...service.Option) *Service {
	return service.New(apps, templates, objects, opts...)
}

// NewHandler builds the HTTP handler for the feature.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return handler.New(svc, logger)
}

// NewMetrics registers the feature's Prometheus metrics.
func NewMetrics() *Metrics {
	return metrics.New()
}

// NewInMemoryStore builds the in-memory application store (dev mode, tests).
func NewInMemoryStore() *appstore.InMemory {
	return appstore.NewInMemory()
}

// NewInMemoryTemplateCatalog builds an in-memory template catalog from the
// given entries.
func NewInMemoryTemplateCatalog(templates ...models.RequirementTemplate) *templatestore.InMemory {
	return templatestore.NewInMemory(templates...)
}

// SeedTemplates returns the default requirement catalog.
func SeedTemplates() []models.RequirementTemplate {
	return templatestore.SeedCatalog()
}
