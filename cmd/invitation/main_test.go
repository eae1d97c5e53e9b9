package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_UnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"dance"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestRun_ServeRequiresConfig(t *testing.T) {
	t.Setenv("DB_CONNECTION", "")
	configPath := filepath.Join(t.TempDir(), "missing.yaml")
	err := run(context.Background(), []string{"-config", configPath})
	if err == nil || !strings.Contains(err.Error(), "invitation init") {
		t.Fatalf("expected missing config error, got %v", err)
	}
}

func TestRun_InvalidPort(t *testing.T) {
	if err := run(context.Background(), []string{"serve", "-port", "70000"}); err == nil {
		t.Fatalf("expected invalid port error")
	}
}

func TestRun_InitThenMigrateAndCleanup(t *testing.T) {
	t.Setenv("DB_CONNECTION", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RATE_LIMIT_BACKEND", "")
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	ctx := context.Background()

	initArgs := []string{"init", "-config", configPath, "-db-path", filepath.Join(dir, "wedding.db"),
		"-admin-email", "planner@example.com", "-admin-password", "planner-password"}
	if err := run(ctx, initArgs); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := run(ctx, []string{"migrate", "-config", configPath}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := run(ctx, []string{"create-user", "-config", configPath, "-email", "ann@example.com", "-name", "Ann", "-password", "ann-password", "-max-guests", "2"}); err != nil {
		t.Fatalf("create-user: %v", err)
	}
	if err := run(ctx, []string{"cleanup", "-config", configPath}); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}
