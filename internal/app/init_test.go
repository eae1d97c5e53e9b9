package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/blissevent/invitation/internal/config"
	"github.com/blissevent/invitation/internal/db"
	"github.com/blissevent/invitation/internal/models"
	internalsettings "github.com/blissevent/invitation/internal/settings"
)

func TestRunInit_WritesConfigAndAdmin(t *testing.T) {
	t.Setenv(config.EnvDBConnection, "")
	t.Setenv(config.EnvJWTSecret, "")
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	ctx := context.Background()

	req := InitRequest{
		DatabaseType:  "sqlite",
		DatabasePath:  filepath.Join(dir, "wedding.db"),
		SiteName:      "Ann & Bob",
		AdminEmail:    " Planner@Example.com ",
		AdminName:     "Planner",
		AdminPassword: "correct horse",
	}
	if err := RunInit(ctx, config.AppConfig{ConfigPath: configPath}, req, 8080); err != nil {
		t.Fatalf("RunInit: %v", err)
	}
	if !ConfigExists(configPath) {
		t.Fatalf("expected config file at %s", configPath)
	}
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("expected config mode 0600, got %v", info.Mode().Perm())
	}

	jwtCfg, err := config.LoadJWTConfig(configPath)
	if err != nil {
		t.Fatalf("LoadJWTConfig: %v", err)
	}
	if len(jwtCfg.Secret) != 64 {
		t.Fatalf("expected generated 32-byte hex secret, got %q", jwtCfg.Secret)
	}
	if config.LoadCronSecret(configPath) == "" {
		t.Fatalf("expected generated cron secret")
	}

	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		t.Fatalf("LoadDatabaseDSN: %v", err)
	}
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })

	var admin models.User
	if errFind := conn.Where("email = ?", "planner@example.com").Take(&admin).Error; errFind != nil {
		t.Fatalf("find admin: %v", errFind)
	}
	if admin.Role != models.RoleAdmin {
		t.Fatalf("expected admin role, got %q", admin.Role)
	}
	if admin.Password == req.AdminPassword {
		t.Fatalf("expected hashed password")
	}
	if got := internalsettings.NewStore(conn).SiteName(ctx); got != "Ann & Bob" {
		t.Fatalf("expected site name to be stored, got %q", got)
	}

	if errAgain := RunInit(ctx, config.AppConfig{ConfigPath: configPath}, req, 8080); !errors.Is(errAgain, ErrConfigExists) {
		t.Fatalf("expected ErrConfigExists on second init, got %v", errAgain)
	}
}

func TestRunInit_RejectsShortPassword(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	err := RunInit(context.Background(), config.AppConfig{ConfigPath: configPath}, InitRequest{
		DatabasePath:  filepath.Join(dir, "wedding.db"),
		AdminEmail:    "admin@example.com",
		AdminPassword: "short",
	}, 8080)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if ConfigExists(configPath) {
		t.Fatalf("expected no config file after failed init")
	}
}

func TestCreateUserWithConn(t *testing.T) {
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "invitation-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	ctx := context.Background()

	user, err := CreateUserWithConn(ctx, conn, CreateUserParams{Email: "Ann@Example.com", Name: "Ann", Password: "ann-password", MaxGuests: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Email != "ann@example.com" || user.Role != models.RoleGuest || user.MaxGuests != 3 {
		t.Fatalf("unexpected user %+v", user)
	}
	if _, errDup := CreateUserWithConn(ctx, conn, CreateUserParams{Email: "ann@example.com", Name: "Ann again", Password: "ann-password"}); errDup == nil {
		t.Fatalf("expected duplicate email error")
	}
	if _, errRole := CreateUserWithConn(ctx, conn, CreateUserParams{Email: "x@example.com", Name: "X", Password: "x-password", Role: "owner"}); errRole == nil {
		t.Fatalf("expected unknown role error")
	}
}
