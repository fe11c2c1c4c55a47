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

	"yacht-dice/internal/auth"
	"yacht-dice/internal/broadcast"
	"yacht-dice/internal/cache"
	"yacht-dice/internal/config"
	"yacht-dice/internal/db"
	"yacht-dice/internal/engine"
	"yacht-dice/internal/game"
	"yacht-dice/internal/logging"
	"yacht-dice/internal/server"
	"yacht-dice/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		sessions game.SessionRepository
		players  game.PlayerRepository
		states   game.GameStateRepository
		names    auth.NameResolver
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL, db.PoolOptions{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
		if err != nil {
			return err
		}
		sessions, players, states = db.NewSessions(conn), db.NewPlayers(conn), db.NewStates(conn)
		names = db.NewUserDirectory(conn)
		logger.Info("using postgres storage")
	} else {
		memory := store.New()
		sessions, players, states = memory.Sessions(), memory.Players(), memory.States()
		names = auth.ClaimNames{}
		logger.Warn("DATABASE_URL is not set; sessions live in memory only")
	}

	sessions, closeCache := withPublicSessionCache(ctx, cfg, sessions, logger)
	defer closeCache()

	var verifier server.TokenVerifier
	if cfg.JWTSecret != "" {
		v, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
		if err != nil {
			return err
		}
		verifier = v
	} else {
		logger.Warn("JWT_SECRET is not set; only guests can play")
	}

	hub := broadcast.NewHub(logger)
	eng := engine.New(sessions, players, states, hub, engine.Options{
		JoinCodeAttempts: cfg.JoinCodeAttempts,
		Logger:           logger,
	})
	srv := server.New(eng, hub, verifier, names, cfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("yacht-dice server listening", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// withPublicSessionCache wraps sessions with the Redis-backed public listing
// cache when REDIS_URL is set. An unreachable Redis leaves sessions unwrapped.
func withPublicSessionCache(ctx context.Context, cfg config.Config, sessions game.SessionRepository, logger *slog.Logger) (game.SessionRepository, func()) {
	if cfg.RedisURL == "" {
		return sessions, func() {}
	}
	client, err := cache.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable; public session cache disabled", "error", err)
		return sessions, func() {}
	}
	logger.Info("public session cache enabled", "ttl", cfg.PublicSessionsTTL)
	cached := cache.NewPublicSessions(sessions, cache.NewRedis(client), cfg.PublicSessionsTTL, logger)
	return cached, func() { _ = client.Close() }
}
