package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkaroui/soapdir/internal/app/migrate"
	"github.com/nkaroui/soapdir/internal/config"
	httpx "github.com/nkaroui/soapdir/internal/http"
	"github.com/nkaroui/soapdir/internal/logger"
	"github.com/nkaroui/soapdir/internal/repository/postgres"
	"github.com/nkaroui/soapdir/internal/service/post"
	"github.com/nkaroui/soapdir/internal/service/user"
	"github.com/nkaroui/soapdir/internal/soap"
	"github.com/nkaroui/soapdir/internal/util"
)

func main() {
	cfg := config.Load()
	log := logger.New("api", slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	defer runner.Close()
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if err := runner.Ensure(ctx); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)

	userRegistry := soap.NewRegistry(log)
	user.New(repo, log).Register(userRegistry)

	postRegistry := soap.NewRegistry(log)
	post.New(repo, util.NewRealClock(), log).Register(postRegistry)

	userContract := loadContract(log, cfg.UserContractPath)
	postContract := loadContract(log, cfg.PostContractPath)

	limiter := httpx.NewMemoryRateLimiter()
	if addr := strings.TrimSpace(cfg.RateLimitRedisAddr); addr != "" {
		redisLimiter, err := httpx.NewRedisRateLimiter(addr, cfg.RateLimitRedisPass, cfg.RateLimitRedisDB, log)
		if err != nil {
			log.Warn("redis rate limiter unavailable", "error", err)
		} else {
			limiter = redisLimiter
		}
	}

	router := httpx.NewRouter(log, userRegistry, postRegistry, userContract, postContract, limiter, cfg.DispatchTimeout, pool.Ping)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

// loadContract reads a contract artifact once at startup. A missing file is
// tolerated; the ?wsdl endpoint just answers 404 for that service.
func loadContract(log *slog.Logger, path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("contract artifact unavailable", "path", path, "error", err)
		return nil
	}
	return data
}
