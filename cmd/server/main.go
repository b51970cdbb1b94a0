package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/config"
	"github.com/stemsi/examsession/internal/database"
	"github.com/stemsi/examsession/internal/handler"
	"github.com/stemsi/examsession/internal/logger"
	"github.com/stemsi/examsession/internal/middleware"
	"github.com/stemsi/examsession/internal/random"
	"github.com/stemsi/examsession/internal/repository"
	"github.com/stemsi/examsession/internal/router"
	"github.com/stemsi/examsession/internal/service"
	"github.com/stemsi/examsession/internal/validator"
	"github.com/stemsi/examsession/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting exam session service")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Randomness ────────────────────────────────────────────────────
	rnd, seed, err := random.NewFromConfig(cfg.RandomSeed)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed question sampler")
	}
	log.Info().Int64("seed", seed).Msg("Question sampler seeded")

	// ─── Event Feed ────────────────────────────────────────────────────
	var sink worker.Sink = worker.NewLogSink(log)
	if rdb != nil {
		sink = worker.NewRedisSink(rdb)
	}
	eventWorker := worker.NewEventWorker(sink, cfg.EventQueueSize, cfg.EventBatchSize, cfg.EventBatchTimeout, log)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		eventWorker.Start(workerCtx)
		close(workerDone)
	}()

	// ─── Initialize Repositories ───────────────────────────────────────
	accountRepo := repository.NewAccountRepository()
	poolRepo := repository.NewQuestionPoolRepository()
	examRepo := repository.NewExamRepository()
	sessionRepo := repository.NewExamSessionRepository()

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, accountRepo, log)
	if err := authService.BootstrapAdmin(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap admin account")
	}
	poolService := service.NewQuestionPoolService(poolRepo, log)
	examService := service.NewExamService(examRepo, poolRepo, sessionRepo, eventWorker, log)
	sessionService := service.NewExamSessionService(examRepo, sessionRepo, rnd, eventWorker, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, log),
		Admin:         handler.NewAdminHandler(authService, log),
		Pool:          handler.NewQuestionPoolHandler(poolService, log),
		Exam:          handler.NewExamHandler(examService, log),
		StudentPortal: handler.NewStudentPortalHandler(examService, sessionService, log),
		WS:            handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	loginLimiter := middleware.NewRateLimiter(ctx, cfg.LoginRateLimit, time.Minute)
	r := router.SetupRouter(authService, handlers, cfg, loginLimiter, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	srvLog := logger.Component(log, "http_server")
	go func() {
		srvLog.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvLog.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		srvLog.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the event worker and wait for it to drain.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Event worker did not drain in time")
	}
	if n := eventWorker.Dropped(); n > 0 {
		log.Warn().Int64("dropped", n).Msg("Events dropped during run")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
