package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/logsift/internal/config"
	"github.com/kailas-cloud/logsift/internal/domain/rule"
	logpkg "github.com/kailas-cloud/logsift/internal/logger"
	"github.com/kailas-cloud/logsift/internal/metrics"
	"github.com/kailas-cloud/logsift/internal/rulebundle"
	"github.com/kailas-cloud/logsift/internal/source"
	sourcedir "github.com/kailas-cloud/logsift/internal/source/dir"
	sourceredis "github.com/kailas-cloud/logsift/internal/source/redis"
	chiTransport "github.com/kailas-cloud/logsift/internal/transport/chi"
	healthuc "github.com/kailas-cloud/logsift/internal/usecase/health"
	searchuc "github.com/kailas-cloud/logsift/internal/usecase/search"
	"github.com/kailas-cloud/logsift/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search daemon",
	Long: `Serves the search API over the sources named in the configuration
file: directories of log files and Redis keys written by collectors.
Configuration is read from ./config/<env>.yaml with env taken from the
ENV variable (default "local").`,
	Run: func(_ *cobra.Command, _ []string) {
		runServe()
	},
}

func runServe() {
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

	logger.Info("Starting logsift API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("dir_sources", len(cfg.Sources.Dirs)),
		zap.Bool("redis_source", cfg.Sources.Redis != nil),
	)

	// Build diagnostic sources (composition root)
	health := healthuc.New()
	var providers []source.Provider

	for _, dc := range cfg.Sources.Dirs {
		src, err := sourcedir.New(sourcedir.Config{
			Path:     dc.Path,
			Pattern:  dc.Pattern,
			MaxBytes: int64(dc.MaxSizeMB) << 20,
		})
		if err != nil {
			logger.Fatal("Failed to create directory source",
				zap.String("path", dc.Path), zap.Error(err))
		}
		providers = append(providers, src)
		health.Register(dc.Name, src)
	}

	if rc := cfg.Sources.Redis; rc != nil {
		src, err := sourceredis.New(sourceredis.Config{
			Addrs:    rc.Addrs,
			Username: rc.Username,
			Password: rc.Password,
			DB:       rc.DB,
			Prefix:   rc.KeyPrefix,
		})
		if err != nil {
			logger.Fatal("Failed to create redis source", zap.Error(err))
		}
		defer src.Close()

		ctx := context.Background()
		if err := src.WaitForReady(ctx, time.Duration(rc.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis source not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", rc.Addrs))

		providers = append(providers, src)
		health.Register("redis", src)
	}

	provider := source.NewMulti(providers...)

	// Startup rule set; requests may still carry their own mapping.
	rules, err := loadRules(cfg.Rules.Path)
	if err != nil {
		logger.Fatal("Failed to load rules",
			zap.String("path", cfg.Rules.Path), zap.Error(err))
	}
	if !rules.IsEmpty() {
		logger.Info("Loaded startup rules",
			zap.Int("rules", rules.Len()), zap.String("path", cfg.Rules.Path))
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	searchSvc := searchuc.NewInstrumented(
		searchuc.New(provider).WithWorkers(cfg.Search.Workers),
		logger,
	)

	server := chiTransport.NewServer(searchSvc, provider, health, rules, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
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

// loadRules reads a startup rule set: a JSON mapping, or a compiled bundle
// when the path ends in .bundle. An empty path means requests must carry
// their own rules.
func loadRules(path string) (rule.Set, error) {
	if path == "" {
		return rule.Set{}, nil
	}
	if filepath.Ext(path) == ".bundle" {
		return rulebundle.ReadFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rule.Set{}, err
	}
	return rule.ParseMapping(data)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"error": map[string]string{
							"code":    "internal_error",
							"message": "internal error",
						},
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

			// Per-request logger with request_id
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
