package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScaffold(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	upPath, downPath, err := scaffold(dir, "add_rematch", now)
	if err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	if filepath.Base(upPath) != "20260301120000_add_rematch.up.sql" {
		t.Fatalf("unexpected up path %s", upPath)
	}
	if _, err := os.Stat(downPath); err != nil {
		t.Fatalf("expected down migration: %v", err)
	}
	if _, _, err := scaffold(dir, "add_rematch", now); err == nil {
		t.Fatalf("expected existing migration to be refused")
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"", "two words", "a/b"} {
		if err := validateName(name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
	if err := validateName("add_rematch"); err != nil {
		t.Fatalf("expected valid name, got %v", err)
	}
}
