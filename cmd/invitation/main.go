package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/blissevent/invitation/internal/app"
	"github.com/blissevent/invitation/internal/config"
	"github.com/blissevent/invitation/internal/models"

	log "github.com/sirupsen/logrus"
)

const defaultPort = 3000

// main runs the CLI entrypoint and exits on unrecoverable command errors.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if errRun := run(ctx, os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		stop()
		os.Exit(1)
	}
}

// run dispatches the subcommand. Without one it starts the server.
func run(ctx context.Context, args []string) error {
	command := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}
	switch command {
	case "serve":
		return runServe(ctx, args)
	case "migrate":
		return runMigrate(ctx, args)
	case "cleanup":
		return runCleanup(ctx, args)
	case "create-user":
		return runCreateUser(ctx, args)
	case "init":
		return runInit(ctx, args)
	default:
		return fmt.Errorf("unknown command %q (want serve, migrate, cleanup, create-user or init)", command)
	}
}

// newFlagSet returns a flag set with the shared -config flag.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	return fs, cfgPath
}

// loadAppConfig applies the -config flag over the environment.
func loadAppConfig(cfgPath string) (config.AppConfig, error) {
	appCfg, err := config.LoadFromEnv()
	if err != nil {
		return config.AppConfig{}, err
	}
	if strings.TrimSpace(cfgPath) != "" {
		appCfg.ConfigPath = config.ResolveConfigPath(cfgPath)
	}
	return appCfg, nil
}

func runServe(ctx context.Context, args []string) error {
	fs, cfgPath := newFlagSet("serve")
	port := fs.Int("port", defaultPort, "server port when the config sets none")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}
	if errValidate := validatePort(*port); errValidate != nil {
		return errValidate
	}
	appCfg, err := loadAppConfig(*cfgPath)
	if err != nil {
		return err
	}
	configPath := config.ResolveConfigPath(appCfg.ConfigPath)
	if !app.ConfigExists(configPath) && strings.TrimSpace(os.Getenv(config.EnvDBConnection)) == "" {
		return fmt.Errorf("config not found at %s; run `invitation init` first", configPath)
	}
	return app.RunServer(ctx, appCfg, *port)
}

func runMigrate(ctx context.Context, args []string) error {
	fs, cfgPath := newFlagSet("migrate")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}
	appCfg, err := loadAppConfig(*cfgPath)
	if err != nil {
		return err
	}
	if errMigrate := app.Migrate(ctx, appCfg); errMigrate != nil {
		return errMigrate
	}
	log.Info("migrations applied")
	return nil
}

func runCleanup(ctx context.Context, args []string) error {
	fs, cfgPath := newFlagSet("cleanup")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}
	appCfg, err := loadAppConfig(*cfgPath)
	if err != nil {
		return err
	}
	deleted, errCleanup := app.Cleanup(ctx, appCfg)
	if errCleanup != nil {
		return errCleanup
	}
	log.WithField("deleted", deleted).Info("rate limit cleanup completed")
	return nil
}

func runCreateUser(ctx context.Context, args []string) error {
	fs, cfgPath := newFlagSet("create-user")
	email := fs.String("email", "", "login email")
	name := fs.String("name", "", "display name")
	password := fs.String("password", "", "password (or env INVITATION_PASSWORD)")
	role := fs.String("role", string(models.RoleGuest), "guest or admin")
	maxGuests := fs.Int("max-guests", 1, "party size allowed on the RSVP")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}
	if *password == "" {
		*password = os.Getenv("INVITATION_PASSWORD")
	}
	appCfg, err := loadAppConfig(*cfgPath)
	if err != nil {
		return err
	}
	dsn, err := config.LoadDatabaseDSN(config.ResolveConfigPath(appCfg.ConfigPath))
	if err != nil {
		return err
	}
	if errCreate := app.CreateUser(ctx, dsn, app.CreateUserParams{
		Email:     *email,
		Name:      *name,
		Password:  *password,
		Role:      models.UserRole(strings.ToLower(strings.TrimSpace(*role))),
		MaxGuests: *maxGuests,
	}); errCreate != nil {
		return errCreate
	}
	log.WithFields(log.Fields{"email": *email, "role": *role}).Info("user created")
	return nil
}

func runInit(ctx context.Context, args []string) error {
	fs, cfgPath := newFlagSet("init")
	port := fs.Int("port", defaultPort, "server port written to the config")
	var req app.InitRequest
	fs.StringVar(&req.DatabaseType, "db-type", "sqlite", "sqlite or postgres")
	fs.StringVar(&req.DatabasePath, "db-path", "", "sqlite database file")
	fs.StringVar(&req.DatabaseHost, "db-host", "", "postgres host")
	fs.IntVar(&req.DatabasePort, "db-port", 5432, "postgres port")
	fs.StringVar(&req.DatabaseUser, "db-user", "", "postgres user")
	fs.StringVar(&req.DatabasePassword, "db-password", "", "postgres password")
	fs.StringVar(&req.DatabaseName, "db-name", "", "postgres database name")
	fs.StringVar(&req.DatabaseSSLMode, "db-sslmode", "", "postgres sslmode")
	fs.StringVar(&req.SiteName, "site-name", "", "site name shown to guests")
	fs.StringVar(&req.AdminEmail, "admin-email", "", "first admin login email")
	fs.StringVar(&req.AdminName, "admin-name", "", "first admin display name")
	fs.StringVar(&req.AdminPassword, "admin-password", "", "first admin password (or env INVITATION_PASSWORD)")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}
	if errValidate := validatePort(*port); errValidate != nil {
		return errValidate
	}
	if req.AdminPassword == "" {
		req.AdminPassword = os.Getenv("INVITATION_PASSWORD")
	}
	appCfg, err := loadAppConfig(*cfgPath)
	if err != nil {
		return err
	}
	errInit := app.RunInit(ctx, appCfg, req, *port)
	if errors.Is(errInit, app.ErrConfigExists) {
		log.Warn("config already exists; leaving it untouched")
	}
	return errInit
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
