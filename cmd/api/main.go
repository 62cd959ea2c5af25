package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/partshub/api/internal/auth"
	cataloghttp "github.com/partshub/api/internal/catalog/adapters/http"
	catalogpostgres "github.com/partshub/api/internal/catalog/adapters/postgres"
	catalogredis "github.com/partshub/api/internal/catalog/adapters/redis"
	catalogapp "github.com/partshub/api/internal/catalog/app"
	catalogports "github.com/partshub/api/internal/catalog/ports"
	"github.com/partshub/api/internal/clock"
	"github.com/partshub/api/internal/config"
	"github.com/partshub/api/internal/database"
	idempostgres "github.com/partshub/api/internal/idempotency/postgres"
	"github.com/partshub/api/internal/kafka"
	ordersadapters "github.com/partshub/api/internal/orders/adapters"
	orderscatalog "github.com/partshub/api/internal/orders/adapters/catalog"
	ordershttp "github.com/partshub/api/internal/orders/adapters/http"
	orderspostgres "github.com/partshub/api/internal/orders/adapters/postgres"
	ordersapp "github.com/partshub/api/internal/orders/app"
	ordersmetrics "github.com/partshub/api/internal/orders/metrics"
	ordersports "github.com/partshub/api/internal/orders/ports"
	"github.com/partshub/api/internal/telemetry"
	usershttp "github.com/partshub/api/internal/users/adapters/http"
	userspostgres "github.com/partshub/api/internal/users/adapters/postgres"
	usersapp "github.com/partshub/api/internal/users/app"
	"github.com/partshub/api/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(telemetry.ParseLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telCfg := telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	}

	var telOpts []telemetry.Option
	if cfg.Telemetry.OTelEndpoint == "" {
		telOpts = append(telOpts,
			telemetry.WithTraceExporter(telemetry.NewNoopTraceExporter()),
			telemetry.WithMetricExporter(telemetry.NewNoopMetricExporter()),
		)
	}

	tel, err := telemetry.Initialize(ctx, telCfg, telOpts...)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	meter := tel.MeterProvider().Meter("github.com/partshub/api")

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations completed successfully")
	}

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	webMetrics, err := web.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create order metrics", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	clk := clock.NewSystem()

	var catalogRepo catalogports.PartRepository = catalogpostgres.NewRepository(pool)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		catalogRepo = catalogredis.NewCachedRepository(catalogRepo, rdb, cfg.Redis.CacheTTL, logger)
		logger.Info("catalog cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}
	catalogService := catalogapp.NewService(catalogRepo, clk)

	usersService := usersapp.NewService(userspostgres.NewRepository(pool), tokens, clk)

	var eventBus ordersports.EventBus
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaMetrics, err := kafka.NewMetrics(meter)
		if err != nil {
			logger.Error("failed to create kafka metrics", "error", err)
			os.Exit(1)
		}
		producer, err := kafka.NewEventBus(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		eventBus = ordersadapters.NewObservableEventBus(producer, kafkaMetrics)
		logger.Info("kafka event bus enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	} else {
		eventBus = kafka.NewNoopEventBus()
		logger.Info("kafka brokers not configured, order events are logged only")
	}

	ordersRepo := ordersadapters.NewObservableRepository(orderspostgres.NewRepository(pool), dbMetrics)
	ordersService := ordersapp.NewService(
		ordersRepo,
		orderscatalog.NewPartsReader(catalogService),
		eventBus,
		idempostgres.NewStore(pool),
		clk,
		logger,
		orderMetrics,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	usershttp.NewHandler(usersService).Register(mux, tokens)
	cataloghttp.NewHandler(catalogService).Register(mux, tokens)
	ordershttp.NewHandler(ordersService).Register(mux, tokens)

	handler := withRecovery(withLogging(web.WithMetrics(mux, webMetrics)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.InfoContext(r.Context(), "http request", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.ErrorContext(r.Context(), "panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
