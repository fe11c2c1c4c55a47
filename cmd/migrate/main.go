package main

import (
	"flag"
	"log/slog"
	"os"

	"yacht-dice/internal/config"
	"yacht-dice/internal/db"
	"yacht-dice/internal/logging"
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

	dir := flag.String("dir", cfg.MigrationsPath, "migrations directory")
	flag.Parse()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is not set")
		os.Exit(1)
	}
	if err := db.Migrate(cfg.DatabaseURL, *dir); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied", "dir", *dir)
}
