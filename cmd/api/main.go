package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/typing-backend/internal/api"
	"github.com/baharkarakas/typing-backend/internal/auth"
	"github.com/baharkarakas/typing-backend/internal/cache"
	"github.com/baharkarakas/typing-backend/internal/config"
	"github.com/baharkarakas/typing-backend/internal/db"
	"github.com/baharkarakas/typing-backend/internal/logger"
	"github.com/baharkarakas/typing-backend/internal/mailer"
	"github.com/baharkarakas/typing-backend/internal/metrics"
	"github.com/baharkarakas/typing-backend/internal/repository/postgres"
	"github.com/baharkarakas/typing-backend/internal/services"
	"github.com/baharkarakas/typing-backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	sqlDB := db.OpenSQL(pool)
	defer sqlDB.Close()

	if cfg.Migrate {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	var leaders cache.Leaderboard = cache.Noop{}
	if cfg.UseRedis() {
		rc, err := cache.NewRedisLeaderboard(ctx, cfg.RedisURL, cache.DefaultPrefix, cfg.LeadersCacheTTL)
		if err != nil {
			// the leaderboard still works straight from postgres
			log.Warn("redis unavailable, leaderboard cache disabled", "err", err)
		} else {
			defer rc.Close()
			leaders = rc
		}
	}

	var mail mailer.Mailer = mailer.NewLog(log)
	if cfg.ResendAPIKey != "" {
		mail = mailer.NewResend(cfg.ResendAPIKey, cfg.FromEmail)
	}

	wp := worker.NewPool(4, worker.DefaultQueueSize)
	defer wp.Stop()

	store := postgres.NewStore(sqlDB)
	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:   cfg,
		Log:   log,
		TM:    tm,
		Users: services.NewUserService(store, tm, mail, wp, cfg.FrontendURL, log),
		Tests: services.NewTypingTestService(store, leaders, log),
		Texts: services.NewTextService(store),
		Certs: services.NewCertificateService(store),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "redis", cfg.UseRedis())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
