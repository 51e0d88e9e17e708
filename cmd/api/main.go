package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/youscore/youscore-backend/api/routes"
	"github.com/youscore/youscore-backend/internal/auth"
	"github.com/youscore/youscore-backend/internal/notifications"
	"github.com/youscore/youscore-backend/internal/predictions"
	"github.com/youscore/youscore-backend/internal/settings"
	"github.com/youscore/youscore-backend/internal/users"
	"github.com/youscore/youscore-backend/pkg/auth/session"
	"github.com/youscore/youscore-backend/pkg/config"
	"github.com/youscore/youscore-backend/pkg/db"
	"github.com/youscore/youscore-backend/pkg/instance"
	"github.com/youscore/youscore-backend/pkg/logger"
	"github.com/youscore/youscore-backend/pkg/metrics"
	"github.com/youscore/youscore-backend/pkg/migrate"
	"github.com/youscore/youscore-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	notificationSvc, err := notifications.NewService(notificationRepo, cfg.Access, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	userSvc, err := users.NewService(userRepo, cfg.Access, cfg.Password, notificationSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	predictionSvc, err := predictions.NewService(
		predictions.NewRepository(dbClient.DB()),
		userRepo,
		notificationSvc,
		userSvc,
		cfg.Access,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create predictions service", err)
		os.Exit(1)
	}

	settingsSvc, err := settings.NewService(settings.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	authSvc, err := auth.NewService(userSvc, sessionManager, cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	if err := authSvc.EnsureAdmin(context.Background(), cfg.Admin); err != nil {
		logg.Error(context.Background(), "failed to ensure admin account", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Sessions:      sessionManager,
			HTTPMetrics:   httpMetrics,
			MetricsHandle: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			Auth:          authSvc,
			Users:         userSvc,
			Predictions:   predictionSvc,
			Notifications: notificationSvc,
			Settings:      settingsSvc,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(stopCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
