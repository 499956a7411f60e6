package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-insights/internal/config"
	"github.com/stemsi/exstem-insights/internal/database"
	"github.com/stemsi/exstem-insights/internal/handler"
	"github.com/stemsi/exstem-insights/internal/logger"
	"github.com/stemsi/exstem-insights/internal/repository"
	"github.com/stemsi/exstem-insights/internal/router"
	"github.com/stemsi/exstem-insights/internal/service"
	"github.com/stemsi/exstem-insights/internal/validator"
	"github.com/stemsi/exstem-insights/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Bool("snapshot_cache", cfg.SnapshotCacheEnabled).
		Msg("Starting ExStem Insights")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Student Source ────────────────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	var source service.StudentSource = studentRepo

	workerCtx, workerCancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	var (
		rdb       *redis.Client
		inspector handler.SnapshotInspector
	)
	if cfg.SnapshotCacheEnabled {
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		cache := repository.NewSnapshotCache(studentRepo, rdb, cfg.SnapshotTTL, log)
		source = cache
		inspector = cache

		// Refresh the snapshot at startup, then keep it fresh.
		snapshotWorker := worker.NewSnapshotWorker(cache, rdb, cfg.SnapshotRefreshInterval, log)
		go func() {
			defer close(done)
			snapshotWorker.Start(workerCtx)
		}()
	} else {
		close(done)
	}

	// ─── Initialize Services & Handlers ────────────────────────────────
	authService := service.NewAuthService(cfg.JWTSecret, 24*time.Hour)
	studentService := service.NewStudentService(source, log)

	handlers := &router.Handlers{
		Analytics: handler.NewAnalyticsHandler(studentService),
		System:    handler.NewSystemHandler(inspector),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	workerCancel()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Snapshot worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
