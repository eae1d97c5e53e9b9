package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/blissevent/invitation/internal/auth"
	"github.com/blissevent/invitation/internal/config"
	"github.com/blissevent/invitation/internal/db"
	"github.com/blissevent/invitation/internal/gifts"
	"github.com/blissevent/invitation/internal/http/api/admin"
	"github.com/blissevent/invitation/internal/http/api/front"
	"github.com/blissevent/invitation/internal/http/middleware"
	"github.com/blissevent/invitation/internal/logging"
	"github.com/blissevent/invitation/internal/observability"
	"github.com/blissevent/invitation/internal/ratelimit"
	"github.com/blissevent/invitation/internal/rsvp"
	internalsettings "github.com/blissevent/invitation/internal/settings"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Components holds the wired application services sharing one database handle.
type Components struct {
	DB       *gorm.DB
	Metrics  *observability.Metrics
	Limiter  *ratelimit.Limiter
	Quotas   *ratelimit.Quotas
	Users    *auth.GormUserStore
	Sessions *auth.Sessions
	Settings *internalsettings.Store
	RSVPs    *rsvp.Service
	Gifts    *gifts.Service

	sessionCfg config.SessionConfig
	cronSecret string
	closeStore func() error
}

// ComponentsConfig carries the resolved configuration for NewComponents.
type ComponentsConfig struct {
	JWT        config.JWTConfig
	Session    config.SessionConfig
	RateLimit  config.RateLimitConfig
	CronSecret string
	// NewRedisClient overrides the Redis client constructor; nil uses go-redis.
	NewRedisClient ratelimit.RedisClientFactory
}

// NewComponents wires services around an open, migrated connection.
func NewComponents(ctx context.Context, conn *gorm.DB, cfg ComponentsConfig) (*Components, error) {
	if conn == nil {
		return nil, fmt.Errorf("app: nil database connection")
	}
	store, closeStore, errStore := ratelimit.NewStoreFromConfig(ctx, cfg.RateLimit, conn, cfg.NewRedisClient)
	if errStore != nil {
		return nil, errStore
	}

	settingsStore := internalsettings.NewStore(conn)
	users := auth.NewGormUserStore(conn)
	return &Components{
		DB:         conn,
		Metrics:    observability.NewMetrics(),
		Limiter:    ratelimit.NewLimiter(store, nil),
		Quotas:     ratelimit.NewQuotas(ratelimit.DefaultQuotas(cfg.RateLimit), settingsStore),
		Users:      users,
		Sessions:   auth.NewSessions(cfg.JWT, nil),
		Settings:   settingsStore,
		RSVPs:      rsvp.NewService(conn, users, nil),
		Gifts:      gifts.NewService(conn, nil),
		sessionCfg: cfg.Session,
		cronSecret: cfg.CronSecret,
		closeStore: closeStore,
	}, nil
}

// Router builds the HTTP engine with every route registered.
func (c *Components) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.GinLogger())
	engine.Use(c.Metrics.GinMiddleware())

	authn := middleware.NewAuthenticator(c.Sessions, c.sessionCfg)
	guard := middleware.NewGuard(c.Limiter, c.Quotas, c.Metrics)

	engine.GET("/metrics", gin.WrapH(c.Metrics.Handler()))

	admin.RegisterAdminRoutes(engine, admin.Services{
		DB:         c.DB,
		Authn:      authn,
		Guard:      guard,
		Limiter:    c.Limiter,
		Metrics:    c.Metrics,
		RSVPs:      c.RSVPs,
		Gifts:      c.Gifts,
		Settings:   c.Settings,
		CronSecret: c.cronSecret,
	})
	front.RegisterFrontRoutes(engine, front.Services{
		Gate:     auth.NewGate(c.Users, c.Limiter, c.Quotas, c.Metrics),
		Sessions: c.Sessions,
		Authn:    authn,
		Guard:    guard,
		RSVPs:    c.RSVPs,
		Gifts:    c.Gifts,
		Settings: c.Settings,
	})
	registerPages(engine, authn, c.Settings, c.sessionCfg)
	return engine
}

// Close releases the counter store and the database handle.
func (c *Components) Close() error {
	var errs []error
	if c.closeStore != nil {
		if errStore := c.closeStore(); errStore != nil {
			errs = append(errs, fmt.Errorf("close rate limit store: %w", errStore))
		}
	}
	if errDB := db.Close(c.DB); errDB != nil {
		errs = append(errs, fmt.Errorf("close database: %w", errDB))
	}
	return errors.Join(errs...)
}

// openDatabase loads the DSN, connects and migrates.
func openDatabase(configPath string) (*gorm.DB, string, error) {
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return nil, "", err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return nil, "", err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		_ = db.Close(conn)
		return nil, "", errMigrate
	}
	return conn, dsn, nil
}

// loadComponentsConfig resolves every config section NewComponents needs.
func loadComponentsConfig(configPath string) (ComponentsConfig, error) {
	jwtCfg, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return ComponentsConfig{}, errJWT
	}
	sessionCfg, errSession := config.LoadSessionConfig(configPath)
	if errSession != nil {
		return ComponentsConfig{}, errSession
	}
	rateLimitCfg, errRateLimit := config.LoadRateLimitConfig(configPath)
	if errRateLimit != nil {
		return ComponentsConfig{}, errRateLimit
	}
	return ComponentsConfig{
		JWT:        jwtCfg,
		Session:    sessionCfg,
		RateLimit:  rateLimitCfg,
		CronSecret: config.LoadCronSecret(configPath),
	}, nil
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	conn, _, err := openDatabase(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return err
	}
	return db.Close(conn)
}

// Cleanup runs the expired counter sweep once and returns the deleted count.
func Cleanup(ctx context.Context, cfg config.AppConfig) (int64, error) {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	conn, _, err := openDatabase(configPath)
	if err != nil {
		return 0, err
	}
	rateLimitCfg, errRateLimit := config.LoadRateLimitConfig(configPath)
	if errRateLimit != nil {
		_ = db.Close(conn)
		return 0, errRateLimit
	}
	store, closeStore, errStore := ratelimit.NewStoreFromConfig(ctx, rateLimitCfg, conn, nil)
	if errStore != nil {
		_ = db.Close(conn)
		return 0, errStore
	}
	defer func() {
		if errClose := closeStore(); errClose != nil {
			log.WithError(errClose).Warn("close rate limit store")
		}
		if errClose := db.Close(conn); errClose != nil {
			log.WithError(errClose).Warn("close database")
		}
	}()
	return ratelimit.NewLimiter(store, nil).Cleanup(ctx)
}

// RunServer boots the HTTP server and blocks until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig, defaultPort int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	if errLogging := logging.Setup(config.LoadLoggingConfig(configPath)); errLogging != nil {
		return errLogging
	}
	serverCfg, errServer := config.LoadServerConfig(configPath, defaultPort)
	if errServer != nil {
		return errServer
	}
	componentsCfg, errComponents := loadComponentsConfig(configPath)
	if errComponents != nil {
		return errComponents
	}

	conn, dsn, err := openDatabase(configPath)
	if err != nil {
		return err
	}
	if summary, errSummary := summarizeDSN(dsn); errSummary == nil {
		log.WithFields(summary.fields()).Info("database ready")
	}
	if hasAdmin, errAdmin := HasAdminUser(conn); errAdmin != nil {
		log.WithError(errAdmin).Warn("check admin account")
	} else if !hasAdmin {
		log.Warn("no admin account yet; create one with `invitation create-user -role admin`")
	}

	components, errWire := NewComponents(ctx, conn, componentsCfg)
	if errWire != nil {
		_ = db.Close(conn)
		return errWire
	}
	defer func() {
		if errClose := components.Close(); errClose != nil {
			log.WithError(errClose).Warn("shutdown cleanup failed")
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              net.JoinHostPort(serverCfg.Host, strconv.Itoa(serverCfg.Port)),
		Handler:           components.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.Errorf("server shutdown error: %v", errShutdown)
		}
	}()

	log.Infof("starting server on %s with config=%s", srv.Addr, configPath)
	if errListen := srv.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
		return errListen
	}
	log.Info("server stopped")
	return nil
}
