package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hoverpoint/internal/config"
	"github.com/kailas-cloud/hoverpoint/internal/db"
	dbRedis "github.com/kailas-cloud/hoverpoint/internal/db/redis"
	dbValkey "github.com/kailas-cloud/hoverpoint/internal/db/valkey"
	"github.com/kailas-cloud/hoverpoint/internal/domain/geo"
	logpkg "github.com/kailas-cloud/hoverpoint/internal/logger"
	"github.com/kailas-cloud/hoverpoint/internal/metrics"
	"github.com/kailas-cloud/hoverpoint/internal/repository/targetcache"
	chiTransport "github.com/kailas-cloud/hoverpoint/internal/transport/chi"
	healthuc "github.com/kailas-cloud/hoverpoint/internal/usecase/health"
	missionuc "github.com/kailas-cloud/hoverpoint/internal/usecase/mission"
	"github.com/kailas-cloud/hoverpoint/internal/usecase/target"
	"github.com/kailas-cloud/hoverpoint/internal/version"
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

	logger.Info("Starting hoverpoint API server",
		zap.String("version", version.String()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("ellipsoid", cfg.Solver.Ellipsoid),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterTargetMetrics()

	ellipsoid, err := geo.EllipsoidByName(cfg.Solver.Ellipsoid)
	if err != nil {
		logger.Fatal("Unknown ellipsoid", zap.String("ellipsoid", cfg.Solver.Ellipsoid), zap.Error(err))
	}

	// Base solver, undecorated: the health probe uses it directly.
	targetCfg := cfg.TargetConfig()
	base := target.New(geo.NewTransformer(ellipsoid), targetCfg, logger)

	var solver target.Solver = base

	// Pass nil interface (not typed nil pointer!) when the cache is off.
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled {
		store := mustCacheStore(cfg.Cache, logger)
		defer store.Close()

		solver = targetcache.New(solver, store, targetCfg, ellipsoid.Name,
			time.Duration(cfg.Cache.TTLSec)*time.Second, logger)
		cachePinger = store
	}
	solver = target.NewInstrumented(solver, logger)

	missionSvc := missionuc.New(missionuc.NewBuilder(logger), solver, cfg.MissionDefaults(), logger)
	healthSvc := healthuc.New(healthuc.NewSolverProbe(base), cachePinger)

	server := chiTransport.NewServer(solver, missionSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
			Code:    chiTransport.ErrorResponseCodeBadRequest,
			Message: "route not found",
		})
	})
	server.Register(r)

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	logger.Info("Server stopped gracefully")
}

// mustCacheStore connects the solution cache store selected by cfg.Driver and waits for it.
func mustCacheStore(cfg config.CacheConfig, logger *zap.Logger) db.Store {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case db.DriverValkey:
		store, err = dbValkey.NewStore(dbValkey.Config{
			Addrs:      cfg.Addrs,
			Password:   cfg.Password,
			ClientName: "hoverpoint",
		})
	case db.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	default:
		logger.Fatal("Unknown cache driver", zap.String("driver", cfg.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache not ready", zap.Error(err))
	}
	logger.Info("Connected to cache", zap.String("driver", cfg.Driver), zap.Strings("addrs", cfg.Addrs))
	return store
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
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
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("mission_id", ww.Header().Get("X-Mission-ID")),
			)
		})
	}
}
