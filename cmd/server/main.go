// Command server runs the agent onboarding portal: the applicant wizard API,
// the admin review API, and the background audit worker.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	adminhandler "agentportal/internal/admin/handler"
	adminservice "agentportal/internal/admin/service"
	"agentportal/internal/application/draft"
	"agentportal/internal/application/handler"
	appmetrics "agentportal/internal/application/metrics"
	"agentportal/internal/application/service"
	"agentportal/internal/application/store"
	"agentportal/internal/audit"
	"agentportal/internal/identity"
	"agentportal/internal/notify"
	"agentportal/internal/platform/config"
	"agentportal/internal/platform/httpserver"
	"agentportal/internal/platform/logger"
	"agentportal/internal/platform/metrics"
	"agentportal/internal/platform/middleware"
	"agentportal/internal/platform/postgres"
	"agentportal/internal/platform/redis"
)

const auditInboxSize = 256

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Draft store: Redis when configured, in-memory otherwise.
	var drafts service.DraftStore
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		drafts = draft.NewRedisStore(redisClient.Client, cfg.Draft.TTL)
		log.Info("draft store: redis", "ttl", cfg.Draft.TTL)
	} else {
		drafts = draft.NewInMemoryStore()
		log.Warn("draft store: in-memory, drafts will not survive a restart")
	}

	// Record + audit stores: Postgres when configured, in-memory otherwise.
	var records store.Store
	var auditStore audit.Store
	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		records = store.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		log.Info("application store: postgres", "host", cfg.Postgres.Host)
	} else {
		records = store.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Warn("application store: in-memory, records will not survive a restart")
	}

	var notifier service.Notifier
	if cfg.Email.Enabled {
		sesNotifier, err := notify.NewSESNotifier(ctx, cfg.Email.AWSRegion, cfg.Email.Sender, cfg.Email.ReplyTo, log)
		if err != nil {
			log.Error("ses notifier setup failed", "error", err)
			os.Exit(1)
		}
		notifier = sesNotifier
	} else {
		notifier = notify.NewLogNotifier(log)
	}

	auditInbox := make(chan audit.Event, auditInboxSize)
	auditPublisher := audit.NewPublisher(auditInbox, log)
	auditWorker := audit.NewWorker(auditStore, auditInbox, log)

	appMetrics := appmetrics.New()
	httpMetrics := metrics.New()

	applicationService := service.New(drafts, records, cfg.Submit, log,
		service.WithNotifier(notifier),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(appMetrics),
	)
	adminService := adminservice.New(records, log,
		adminservice.WithNotifier(notifier),
		adminservice.WithAuditPublisher(auditPublisher),
		adminservice.WithMetrics(appMetrics),
	)

	resolver := identity.NewJWTResolver(cfg.Auth.JWTSigningKey)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(httpMetrics))
	r.Use(middleware.ClientMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(resolver, log))
		handler.New(applicationService, log).Register(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAdmin(cfg.Auth.AdminAPIKeyHash, log))
		adminhandler.New(adminService, log).Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, r)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting agent portal", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := auditWorker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
