package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"authgate/internal/auth/csrf"
	"authgate/internal/auth/identity"
	"authgate/internal/auth/identity/google"
	"authgate/internal/auth/refresh"
	"authgate/internal/auth/service"
	"authgate/internal/cache"
	jwttoken "authgate/internal/jwt_token"
	"authgate/internal/platform/config"
	"authgate/internal/platform/httpserver"
	"authgate/internal/platform/kafka/producer"
	"authgate/internal/platform/logger"
	"authgate/internal/platform/metrics"
	"authgate/internal/platform/redis"
	httptransport "authgate/internal/transport/http"
	"authgate/internal/user"
	audit "authgate/pkg/platform/audit"
	"authgate/pkg/platform/audit/publishers/security"
	"authgate/pkg/platform/audit/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "authgate: %v\n", err)
		os.Exit(1)
	}
}

// run wires dependencies and owns the process lifecycle. The HTTP server and
// the audit worker run in one errgroup; a signal or either failing stops both.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	store := cache.NewRedisStore(redisClient.Client)

	users, closeUsers, err := openUserStore(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer closeUsers()

	m := metrics.New(prometheus.DefaultRegisterer)

	publisher := security.NewPublisher(cfg.Audit.BufferSize)
	workerOpts := []worker.Option{worker.WithSink("log", audit.NewLogSink(log))}
	if len(cfg.Audit.KafkaBrokers) > 0 {
		kafka, err := producer.New(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			return err
		}
		defer kafka.Close()
		workerOpts = append(workerOpts, worker.WithSink("kafka", kafka))
		log.InfoContext(ctx, "security events shipped to kafka", "topic", cfg.Audit.KafkaTopic)
	}
	auditWorker := worker.NewWorker(publisher, log, workerOpts...)

	signer, err := jwttoken.NewService(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret)
	if err != nil {
		return err
	}
	manager, err := refresh.NewManager(store, signer, cfg.Auth.RefreshTTL,
		refresh.WithLogger(log),
		refresh.WithAuditor(publisher),
		refresh.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	guard := csrf.NewGuard(store,
		csrf.WithTTL(cfg.Auth.CSRFTTL),
		csrf.WithLogger(log),
		csrf.WithAuditor(publisher),
		csrf.WithMetrics(m),
	)

	serviceOpts := []service.Option{
		service.WithLogger(log),
		service.WithAuditor(publisher),
		service.WithMetrics(m),
	}
	if cfg.Auth.GoogleClientID != "" {
		reconciler, err := newGoogleReconciler(ctx, cfg.Auth, store, users, log, publisher, m)
		if err != nil {
			return err
		}
		serviceOpts = append(serviceOpts, service.WithIdentity(reconciler))
	} else {
		log.WarnContext(ctx, "GOOGLE_WEB_CLIENT_ID not set, provider sign-in disabled")
	}
	authService, err := service.New(users, signer, manager, guard, cfg.Auth.AccessTTL, serviceOpts...)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Handler: httptransport.New(authService, log, httptransport.Config{
			RefreshTTL:  manager.TTL(),
			Development: cfg.IsDevelopment(),
		}),
		Validator:   jwttoken.NewJWTServiceAdapter(signer),
		CSRF:        guard,
		Health:      redisClient,
		Gatherer:    prometheus.DefaultGatherer,
		Logger:      log,
		CORSOrigins: cfg.CORSOrigins,
		Development: cfg.IsDevelopment(),
	})
	srv := httpserver.New(cfg.Addr, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return auditWorker.Run(gctx)
	})
	g.Go(func() error {
		log.InfoContext(gctx, "starting authgate", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openUserStore uses Postgres when DB_URL is set and an in-memory store
// otherwise.
func openUserStore(ctx context.Context, dsn string, log *slog.Logger) (user.Repository, func(), error) {
	if dsn == "" {
		log.WarnContext(ctx, "DB_URL not set, users are kept in memory")
		return user.New(), func() {}, nil
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := user.NewPostgres(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	log.InfoContext(ctx, "postgres user store ready")
	return store, func() { _ = db.Close() }, nil
}

func newGoogleReconciler(
	ctx context.Context,
	cfg config.AuthConfig,
	store cache.Store,
	users user.Repository,
	log *slog.Logger,
	auditor audit.SecurityAuditor,
	m *metrics.Metrics,
) (*identity.Service, error) {
	verifier, err := google.NewVerifier(ctx, cfg.GoogleClientID)
	if err != nil {
		return nil, err
	}
	opts := []identity.Option{
		identity.WithLogger(log),
		identity.WithAuditor(auditor),
		identity.WithMetrics(m),
	}
	if cfg.GoogleClientSecret != "" {
		opts = append(opts, identity.WithCodeExchanger(
			google.NewExchanger(cfg.GoogleClientID, cfg.GoogleClientSecret, google.Endpoint),
		))
	}
	return identity.NewService(store, users, verifier, opts...)
}
