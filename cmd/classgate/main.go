package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/openlearnco/classgate/pkg/api"
	"github.com/openlearnco/classgate/pkg/auth"
	"github.com/openlearnco/classgate/pkg/backend"
	"github.com/openlearnco/classgate/pkg/config"
	"github.com/openlearnco/classgate/pkg/csrf"
	"github.com/openlearnco/classgate/pkg/middleware"
	"github.com/openlearnco/classgate/pkg/observability"
	"github.com/openlearnco/classgate/pkg/ratelimit"
	"github.com/openlearnco/classgate/pkg/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	var registry *prometheus.Registry
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
	}

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, metrics)

	limiterConfig := &ratelimit.Config{
		MaxAttempts: cfg.Security.MaxLoginAttempts,
		Window:      cfg.Security.LoginWindow,
	}

	var limiter ratelimit.Limiter
	var memLimiter *ratelimit.AttemptLimiter
	var redisClient *redis.Client
	if cfg.Security.LimiterBackend == "redis" {
		redisOpts, err := redis.ParseURL(cfg.Security.RedisURL)
		if err != nil {
			logger.WithError(err).Error("invalid redis URL")
			os.Exit(1)
		}
		if cfg.Security.RedisPassword != "" {
			redisOpts.Password = cfg.Security.RedisPassword
		}
		redisOpts.DB = cfg.Security.RedisDB
		redisClient = redis.NewClient(redisOpts)
		limiter = ratelimit.NewRedisLimiter(redisClient, limiterConfig, logger, "loginlimit")
	} else {
		memLimiter = ratelimit.NewAttemptLimiter(limiterConfig, logger)
		limiter = memLimiter
	}

	validator := auth.NewValidator()

	guardConfig := middleware.DefaultGuardConfig()
	guardConfig.SecureCookies = cfg.Security.Production
	routeGuard, err := middleware.NewRouteGuard(validator, guardConfig, logger, metrics)
	if err != nil {
		logger.WithError(err).Error("failed to initialize route guard")
		os.Exit(1)
	}

	csrfGuard := csrf.NewGuard(cfg.Security.CSRFTTL, cfg.Security.Production)
	composer := session.NewComposer(backendClient, logger)
	orchestrator := session.NewOrchestrator(limiter, backendClient, logger, metrics)

	handlerLog := logrus.New()
	handlerLog.SetFormatter(&logrus.JSONFormatter{})

	authHandlers := api.NewAuthHandlers(
		orchestrator,
		composer,
		backendClient,
		csrfGuard,
		routeGuard,
		cfg.Security.SessionTTL,
		cfg.Security.Production,
		handlerLog,
	)

	health := observability.NewHealthChecker(backendClient, redisClient)

	server := api.NewServer(api.ServerOptions{
		AuthHandlers: authHandlers,
		RouteGuard:   routeGuard,
		CSRFGuard:    csrfGuard,
		Health:       health,
		Logger:       logger,
		Metrics:      metrics,
		Registry:     registry,
		HandlerLog:   handlerLog,
	})

	// The expiry sweep only bounds memory; the limiter treats expired
	// entries as fresh regardless, so a missed run is harmless.
	scheduler := cron.New()
	if memLimiter != nil {
		schedule := fmt.Sprintf("@every %s", cfg.Security.SweepInterval)
		if _, err := scheduler.AddFunc(schedule, func() {
			defer observability.RecoverPanic(logger, "limiter sweep")
			removed := memLimiter.Sweep()
			if metrics != nil {
				metrics.RateLimitEntriesActive.Set(float64(memLimiter.Len()))
			}
			if removed > 0 {
				logger.WithField("removed", removed).Debug("swept expired rate limit entries")
			}
		}); err != nil {
			logger.WithError(err).Error("failed to schedule limiter sweep")
			os.Exit(1)
		}
		scheduler.Start()
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		stopCtx := scheduler.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
		return nil
	})
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error {
			return redisClient.Close()
		})
	}

	go func() {
		logger.WithField("addr", addr).Info("classgate listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}
}
