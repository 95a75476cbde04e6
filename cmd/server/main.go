package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accounthandler "github.com/natovichat/rent-management-app-sub001/internal/account/handler"
	accountservice "github.com/natovichat/rent-management-app-sub001/internal/account/service"
	accountstore "github.com/natovichat/rent-management-app-sub001/internal/account/store"
	"github.com/natovichat/rent-management-app-sub001/internal/audit"
	ownerhandler "github.com/natovichat/rent-management-app-sub001/internal/owner/handler"
	ownerservice "github.com/natovichat/rent-management-app-sub001/internal/owner/service"
	ownerstore "github.com/natovichat/rent-management-app-sub001/internal/owner/store"
	"github.com/natovichat/rent-management-app-sub001/internal/ownership/cache"
	ownershiphandler "github.com/natovichat/rent-management-app-sub001/internal/ownership/handler"
	ownershipservice "github.com/natovichat/rent-management-app-sub001/internal/ownership/service"
	ownershipstore "github.com/natovichat/rent-management-app-sub001/internal/ownership/store"
	"github.com/natovichat/rent-management-app-sub001/internal/platform/config"
	"github.com/natovichat/rent-management-app-sub001/internal/platform/httpserver"
	"github.com/natovichat/rent-management-app-sub001/internal/platform/logger"
	"github.com/natovichat/rent-management-app-sub001/internal/platform/metrics"
	"github.com/natovichat/rent-management-app-sub001/internal/platform/middleware"
	"github.com/natovichat/rent-management-app-sub001/internal/platform/postgres"
	platformredis "github.com/natovichat/rent-management-app-sub001/internal/platform/redis"
	propertyhandler "github.com/natovichat/rent-management-app-sub001/internal/property/handler"
	propertyservice "github.com/natovichat/rent-management-app-sub001/internal/property/service"
	propertystore "github.com/natovichat/rent-management-app-sub001/internal/property/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Stores: Postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		accounts   accountstore.Store
		owners     ownerstore.Store
		properties propertystore.Store
		ownerships ownershipstore.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		accounts = accountstore.NewPostgres(db)
		owners = ownerstore.NewPostgres(db)
		properties = propertystore.NewPostgres(db)
		ownerships = ownershipstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		accounts = accountstore.NewInMemory()
		owners = ownerstore.NewInMemory()
		properties = propertystore.NewInMemory()
		ownerships = ownershipstore.NewInMemory()
		log.Info("using in-memory stores")
	}

	// Audit: always to the log, additionally to Kafka when brokers are set.
	auditor := audit.Publisher(audit.NewLogPublisher(log))
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, log)
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafka.Close(flushCtx); err != nil {
				log.Warn("kafka publisher close", "error", err)
			}
		}()
		auditor = audit.Multi{audit.NewLogPublisher(log), kafka}
		log.Info("audit events publishing to kafka", "brokers", cfg.KafkaBrokers)
	}

	// Optional Redis cache for active ownership totals.
	totals := cache.TotalCache(cache.Nop{})
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		totals = cache.NewRedis(redisClient, log)
		log.Info("ownership total cache enabled")
	}

	accountSvc := accountservice.New(accounts,
		accountservice.WithLogger(log),
		accountservice.WithMetrics(m),
	)
	propertySvc := propertyservice.New(properties,
		propertyservice.WithLogger(log),
		propertyservice.WithAuditPublisher(auditor),
	)
	// The owner service checks stakes through the ownership store directly,
	// avoiding a service-level cycle with the ownership service.
	ownerSvc := ownerservice.New(owners, ownerships,
		ownerservice.WithLogger(log),
		ownerservice.WithAuditPublisher(auditor),
	)
	ownershipSvc := ownershipservice.New(ownerships, propertySvc, ownerSvc,
		ownershipservice.WithLogger(log),
		ownershipservice.WithMetrics(m),
		ownershipservice.WithAuditPublisher(auditor),
		ownershipservice.WithTotalCache(totals),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Admin surface: bootstrap and manage accounts.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminToken, log))
		accounthandler.New(accountSvc, log).Register(r)
	})

	// Account-scoped surface: everything below requires a resolved account.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAccount(accountSvc, cfg.JWTSigningKey, log))
		ownerhandler.New(ownerSvc, log).Register(r)
		propertyhandler.New(propertySvc, log).Register(r)
		ownershiphandler.New(ownershipSvc, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, r)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
