package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/bookmarkd/internal/config"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkd/internal/logger"
	"github.com/MrSnakeDoc/bookmarkd/internal/redis"
	"github.com/MrSnakeDoc/bookmarkd/internal/sources/seed"
	"github.com/MrSnakeDoc/bookmarkd/internal/store"
	redisstore "github.com/MrSnakeDoc/bookmarkd/internal/store/redis"
	"github.com/MrSnakeDoc/bookmarkd/internal/store/sqlite"
	"github.com/MrSnakeDoc/bookmarkd/internal/utils"
	"github.com/MrSnakeDoc/bookmarkd/internal/version"
)

const startupTimeout = 30 * time.Second

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	db          *sql.DB
	redisClient *goredis.Client
}

// New wires configuration, storage and the HTTP server. Any failure here
// aborts startup; resources opened so far are released.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	loggerClient.Info("opening database", logger.String("url", cfg.Redacted().DatabaseURL))
	db, err := sqlite.Open(ctx, sqlite.OpenOptions{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var bookmarks store.Bookmarks = sqlite.NewStore(db)

	var redisClient *goredis.Client
	if cfg.CacheEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
		}, loggerClient)
		if err != nil {
			utils.Close(db)
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		bookmarks = redisstore.NewCachedStore(bookmarks, redisClient, cfg.CacheTTL, loggerClient)
		loggerClient.Info("redis cache enabled", logger.Duration("ttl", cfg.CacheTTL))
	} else {
		loggerClient.Info("redis address not configured, cache disabled")
	}

	if cfg.SeedFile != "" {
		n, err := seed.NewSeeder(cfg.SeedFile, bookmarks, loggerClient).Run(ctx)
		if err != nil {
			utils.Close(db)
			if redisClient != nil {
				utils.Close(redisClient)
			}
			return nil, fmt.Errorf("failed to seed bookmarks: %w", err)
		}
		loggerClient.Info("seed complete", logger.Int("inserted", n))
	}

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		Store:           bookmarks,
		RedisClient:     redisClient,
		APIToken:        cfg.APIToken,
		CORSOrigins:     cfg.CORSOrigins,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		db:          db,
		redisClient: redisClient,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting bookmarkd v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("bookmarkd %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.closeResources()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.closeResources()
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeResources()
	a.logger.Info("✅ bookmarkd stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

func (a *App) closeResources() {
	utils.MustClose("database", a.db, a.logger)
	if a.redisClient != nil {
		utils.MustClose("redis", a.redisClient, a.logger)
	}
}
