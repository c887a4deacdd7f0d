package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kapu/chessmate/internal/account"
	"github.com/kapu/chessmate/internal/archive"
	appcfg "github.com/kapu/chessmate/internal/config"
	"github.com/kapu/chessmate/internal/gamestore"
	"github.com/kapu/chessmate/internal/httpapi"
	"github.com/kapu/chessmate/internal/match"
	"github.com/kapu/chessmate/internal/msgcat"
	"github.com/kapu/chessmate/internal/obslog"
	"github.com/kapu/chessmate/internal/security"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url error: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		cancel()
		log.Fatalf("redis ping error: %v", err)
	}
	cancel()

	msgs, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	events := match.NewRedisEvents(rdb)
	managerOpts := []match.Option{match.WithPublisher(events)}

	// The Postgres move archive is optional; the service runs on Redis alone.
	if cfg.DatabaseURL != "" {
		repo, err := archive.NewRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("move archive init error: %v", err)
		}
		defer repo.Close()
		managerOpts = append(managerOpts, match.WithArchive(repo))
	}

	matches := match.NewManager(gamestore.NewRedisStore(rdb), managerOpts...)
	tokens := security.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL)

	serverOpts := []httpapi.ServerOption{
		httpapi.WithSubscriber(events),
		httpapi.WithPinger(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
	}
	if cfg.BcryptCost > 0 {
		serverOpts = append(serverOpts, httpapi.WithBcryptCost(cfg.BcryptCost))
	}
	api := httpapi.NewServer(account.NewRedisStore(rdb), tokens, matches, msgs, serverOpts...)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		obslog.L().Info("server_listen", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		obslog.L().Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		obslog.L().Warn("shutdown_error", zap.Error(err))
	}
}
