package main

import (
	"testing"
	"time"

	"yacht-dice/internal/auth"
	"yacht-dice/internal/config"
)

func TestMintVerifies(t *testing.T) {
	cfg := config.Config{JWTSecret: "dev-secret", JWTIssuer: "yacht-dice"}
	token, err := mint(cfg, auth.Claims{Subject: "user-1", Name: "Ada", Role: "player"}, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	claims, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Name != "Ada" {
		t.Fatalf("unexpected claims %#v", claims)
	}
}

func TestMintRejectsBadInput(t *testing.T) {
	cfg := config.Config{JWTSecret: "dev-secret"}
	if _, err := mint(cfg, auth.Claims{}, time.Hour); err == nil {
		t.Fatalf("expected missing subject to fail")
	}
	if _, err := mint(cfg, auth.Claims{Subject: "user-1"}, 0); err == nil {
		t.Fatalf("expected zero ttl to fail")
	}
	if _, err := mint(config.Config{}, auth.Claims{Subject: "user-1"}, time.Hour); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
}
