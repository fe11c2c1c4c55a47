// Command devtoken mints a bearer token signed with JWT_SECRET for local
// testing against a running server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"yacht-dice/internal/auth"
	"yacht-dice/internal/config"
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
	logger := logging.New(os.Stderr, cfg.LogLevel)

	subject := flag.String("subject", "", "user id to put in the token")
	name := flag.String("name", "", "display name claim")
	role := flag.String("role", "player", "role claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	token, err := mint(cfg, auth.Claims{Subject: *subject, Name: *name, Role: *role}, *ttl)
	if err != nil {
		logger.Error("mint token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func mint(cfg config.Config, claims auth.Claims, ttl time.Duration) (string, error) {
	if claims.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive")
	}
	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return "", err
	}
	return verifier.Sign(claims, ttl)
}
