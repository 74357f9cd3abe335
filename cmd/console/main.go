package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/oakfield-health/practice-console/internal/api"
	"github.com/oakfield-health/practice-console/internal/calendar"
	"github.com/oakfield-health/practice-console/internal/config"
	"github.com/oakfield-health/practice-console/internal/dashboard"
	"github.com/oakfield-health/practice-console/internal/icsexport"
	"github.com/oakfield-health/practice-console/internal/observability/metrics"
	"github.com/oakfield-health/practice-console/internal/querycache"
	"github.com/oakfield-health/practice-console/internal/server"
	"github.com/oakfield-health/practice-console/internal/session"
	"github.com/oakfield-health/practice-console/internal/view"
	"github.com/oakfield-health/practice-console/pkg/logging"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting practice console",
		"env", cfg.Env,
		"port", cfg.Port,
		"api", cfg.APIBaseURL,
	)

	loc := cfg.Location()

	sess, err := session.Open(cfg.TokenPath, logger)
	if err != nil {
		logger.Error("failed to open session store", "error", err)
		os.Exit(1)
	}
	if exp, ok := sess.ExpiresAt(); ok {
		logger.Info("session restored", "expiresAt", exp)
	}

	registry := prometheus.NewRegistry()
	clientMetrics := metrics.NewClientMetrics(registry)

	client := api.NewClient(cfg.APIBaseURL, logger,
		api.WithCredentials(sess),
		api.WithMetrics(clientMetrics),
		api.WithTimeout(cfg.APITimeout),
		api.WithUnauthorizedHook(sess.Clear),
	)

	store, err := newCacheStore(cfg)
	if err != nil {
		logger.Error("failed to initialize cache backend", "error", err)
		os.Exit(1)
	}
	cache := querycache.NewDayEventCache(store, cfg.CacheTTL, clientMetrics)

	gridCfg := calendar.GridConfig{
		StepMinutes: cfg.SlotStepMinutes,
		Window: calendar.Window{
			StartMin: cfg.DayStartHour * 60,
			EndMin:   cfg.DayEndHour * 60,
		},
	}
	cal := view.NewCalendar(client, cache, loc, gridCfg, logger,
		view.WithDefaultDuration(cfg.DefaultDurationMinutes),
	)

	handler := server.New(server.Config{
		Logger:         logger,
		Client:         client,
		Calendar:       cal,
		Dashboard:      dashboard.NewBuilder(client, cache, loc, logger),
		Exporter:       icsexport.New(),
		Session:        sess,
		Location:       loc,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Periodic refresh keeps the visible view close to the backend even when
	// another operator mutates the schedule.
	var scheduler *cron.Cron
	if cfg.RefreshSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.RefreshSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout)
			defer cancel()
			if err := cal.Refresh(ctx); err != nil {
				logger.Warn("scheduled refresh failed", "error", err)
			}
		})
		if err != nil {
			logger.Error("invalid refresh schedule", "schedule", cfg.RefreshSchedule, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	go func() {
		logger.Info("console listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("console stopped")
}

func newCacheStore(cfg *config.Config) (querycache.Store, error) {
	if cfg.CacheBackend != "redis" {
		return querycache.NewMemoryStore(), nil
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return querycache.NewRedisStore(client), nil
}
