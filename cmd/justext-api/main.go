package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/justext/internal/config"
	"github.com/kailas-cloud/justext/internal/db"
	dbRedis "github.com/kailas-cloud/justext/internal/db/redis"
	logpkg "github.com/kailas-cloud/justext/internal/logger"
	"github.com/kailas-cloud/justext/internal/metrics"
	usagerepo "github.com/kailas-cloud/justext/internal/repository/usage"
	chiTransport "github.com/kailas-cloud/justext/internal/transport/chi"
	healthuc "github.com/kailas-cloud/justext/internal/usecase/health"
	"github.com/kailas-cloud/justext/internal/usecase/ledger"
	usageuc "github.com/kailas-cloud/justext/internal/usecase/usage"
	"github.com/kailas-cloud/justext/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting justext API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int64("max_words", cfg.Quota.MaxWords),
		zap.Int("width", cfg.Justify.Width),
		zap.String("usage_store", cfg.UsageStore.Driver),
	)

	// Register ledger metrics explicitly (no init())
	metrics.RegisterLedgerMetrics()

	tokens := ledger.New(cfg.Quota.MaxWords, logger)

	// Optional write-behind usage mirror. Valkey speaks the same protocol.
	var store db.Store
	if cfg.UsageStore.Enabled() {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.UsageStore.Addrs,
			Username: cfg.UsageStore.Username,
			Password: cfg.UsageStore.Password,
			DB:       cfg.UsageStore.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create usage store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		readiness := time.Duration(cfg.UsageStore.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Usage store not ready", zap.Error(err))
		}
		logger.Info("Connected to usage store", zap.Strings("addrs", cfg.UsageStore.Addrs))

		ttl := time.Duration(cfg.UsageStore.TTLHours) * time.Hour
		tokens.WithRecorder(usagerepo.New(store, cfg.UsageStore.KeyPrefix, ttl))
	}

	// Pass nil interface (not typed nil pointer!) if the store is not configured.
	var pinger healthuc.StorePinger
	if store != nil {
		pinger = store
	}

	usageSvc := usageuc.New(tokens)
	healthSvc := healthuc.New(tokens, pinger)

	server := chiTransport.NewServer(tokens, usageSvc, healthSvc, logger).
		WithWidth(cfg.Justify.Width).
		WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes).
		WithIssueLimiter(chiTransport.NewIPRateLimiter(cfg.RateLimit.IssuePerSecond, cfg.RateLimit.IssueBurst))

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully", zap.Int("tokens_issued", tokens.Count()))
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
