package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/wishboard-backend/api/controllers"
	"github.com/angelmondragon/wishboard-backend/api/routes"
	"github.com/angelmondragon/wishboard-backend/internal/auth"
	"github.com/angelmondragon/wishboard-backend/internal/uploads"
	"github.com/angelmondragon/wishboard-backend/internal/users"
	"github.com/angelmondragon/wishboard-backend/internal/wishboards"
	"github.com/angelmondragon/wishboard-backend/pkg/auth/session"
	"github.com/angelmondragon/wishboard-backend/pkg/config"
	"github.com/angelmondragon/wishboard-backend/pkg/db"
	"github.com/angelmondragon/wishboard-backend/pkg/env"
	"github.com/angelmondragon/wishboard-backend/pkg/logger"
	"github.com/angelmondragon/wishboard-backend/pkg/metrics"
	"github.com/angelmondragon/wishboard-backend/pkg/migrate"
	"github.com/angelmondragon/wishboard-backend/pkg/redis"
	"github.com/angelmondragon/wishboard-backend/pkg/storage/local"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	store, err := local.New(cfg.Uploads.Dir)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	verifier, err := auth.NewGoogleVerifier(cfg.Google.ClientID)
	if err != nil {
		return err
	}
	usersService, err := users.NewService(users.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		Verifier:       verifier,
		Users:          usersService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return err
	}
	uploadService, err := uploads.NewService(uploads.ServiceParams{
		Store:     store,
		URLPrefix: cfg.Uploads.URLPrefix,
		MaxBytes:  cfg.Uploads.MaxBytes(),
		Metrics:   httpMetrics,
	})
	if err != nil {
		return err
	}
	boardsService, err := wishboards.NewService(wishboards.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		return err
	}

	router := routes.NewRouter(routes.Params{
		Config: cfg,
		Logger: logg,
		Readiness: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
			"storage":  store,
		},
		Cache:         redisClient,
		Sessions:      sessionManager,
		Metrics:       httpMetrics,
		Gatherer:      registry,
		AuthService:   authService,
		UsersService:  usersService,
		UploadService: uploadService,
		BoardsService: boardsService,
		UploadDir:     store.Dir(),
	})

	port := env.Get("PORT", cfg.App.Port)
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"instance":   env.InstanceID(),
		"upload_dir": store.Dir(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logg.Info(logCtx, "api server stopped")
	return nil
}
