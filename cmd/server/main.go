package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"scouthub/internal/application"
	appstore "scouthub/internal/application/store/application"
	templatestore "scouthub/internal/application/store/template"
	"scouthub/internal/audit"
	httpapi "scouthub/internal/http"
	jwttoken "scouthub/internal/jwt_token"
	"scouthub/internal/platform/config"
	"scouthub/internal/platform/httpserver"
	"scouthub/internal/platform/logger"
	platformredis "scouthub/internal/platform/redis"
	"scouthub/internal/policy"
	"scouthub/internal/storage"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal feature packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apps, cleanup, err := buildApplicationStore(cfg)
	if err != nil {
		log.Error("failed to initialize application store", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	catalog, redisClient, err := buildTemplateCatalog(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize template catalog", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditPublisher := audit.NewPublisher(audit.NewInMemoryStore())
	var publisher application.AuditPublisher = auditPublisher
	auditQueue := make(chan audit.Event, policy.AuditQueueDepth)
	var kafkaSink *audit.KafkaSink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err = audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("failed to connect audit kafka sink", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		publisher = &queueingPublisher{inner: auditPublisher, queue: auditQueue, log: log}
	}

	svc := application.NewService(
		apps,
		catalog,
		storage.NewHMACSigner(cfg.ObjectStoreURL, cfg.ObjectStoreSigningKey),
		application.WithLogger(log),
		application.WithMetrics(application.NewMetrics()),
		application.WithAuditPublisher(publisher),
		application.WithDownloadTTL(cfg.DownloadURLTTL),
	)

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	router := httpapi.NewRouter(application.NewHandler(svc, log), tokens, log)
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting scouthub server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if kafkaSink != nil {
		worker := audit.NewWorker(kafkaSink, auditQueue)
		group.Go(func() error {
			err := worker.Run(groupCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// buildApplicationStore selects postgres when configured, in-memory dev mode
// otherwise.
func buildApplicationStore(cfg config.Server) (application.Store, func(), error) {
	if cfg.PostgresURL == "" {
		return application.NewInMemoryStore(), nil, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}
	if _, err := db.Exec(appstore.Schema); err != nil {
		db.Close()
		return nil, nil, err
	}
	return appstore.NewPostgres(db), func() { db.Close() }, nil
}

// buildTemplateCatalog seeds the default catalog and layers the redis
// read-through cache on top when configured.
func buildTemplateCatalog(ctx context.Context, cfg config.Server) (application.TemplateCatalog, *platformredis.Client, error) {
	catalog := templatestore.NewInMemory(templatestore.SeedCatalog()...)

	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return catalog, nil, nil
	}
	return templatestore.NewRedisCache(client.Client, catalog, policy.TemplateCacheTTL), client, nil
}

// queueingPublisher persists events synchronously and forwards a copy to the
// background sink without ever blocking the request path.
type queueingPublisher struct {
	inner *audit.Publisher
	queue chan audit.Event
	log   *slog.Logger
}

func (p *queueingPublisher) Emit(ctx context.Context, event audit.Event) error {
	if err := p.inner.Emit(ctx, event); err != nil {
		return err
	}
	select {
	case p.queue <- event:
	default:
		p.log.Warn("audit queue full, dropping sink copy", "action", event.Action)
	}
	return nil
}
