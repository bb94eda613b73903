// Package app wires the registry, its persistence and the MCP and admin surfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/mockingbird/internal/config"
	"github.com/MrSnakeDoc/mockingbird/internal/httpserver"
	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/mockserver"
	"github.com/MrSnakeDoc/mockingbird/internal/redis"
	"github.com/MrSnakeDoc/mockingbird/internal/scheduler"
	"github.com/MrSnakeDoc/mockingbird/internal/sources/seed"
	"github.com/MrSnakeDoc/mockingbird/internal/store"
	filestore "github.com/MrSnakeDoc/mockingbird/internal/store/file"
	redisstore "github.com/MrSnakeDoc/mockingbird/internal/store/redis"
	"github.com/MrSnakeDoc/mockingbird/internal/tools"
	"github.com/MrSnakeDoc/mockingbird/internal/utils"
	"github.com/MrSnakeDoc/mockingbird/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	store       store.Store
	redisClient *goredis.Client
	registry    *mockserver.Registry
	tools       *tools.Server
	admin       *httpserver.Server
	watcher     *scheduler.ConfigWatcher
	poller      *scheduler.StorePoller

	stdin  io.Reader
	stdout io.Writer
}

// New builds the application from cfg. It connects to Redis when the redis
// store is selected and fails if it stays unreachable.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	st, redisClient, err := OpenStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}
	loggerClient.Info("store initialized",
		logger.String("backend", st.Name()))

	registry := mockserver.NewRegistry(st, loggerClient, mockserver.Options{
		Host:         cfg.MockHost,
		DrainTimeout: cfg.DrainTimeout,
	})

	a := &App{
		cfg:         cfg,
		logger:      loggerClient,
		store:       st,
		redisClient: redisClient,
		registry:    registry,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
	}

	if cfg.MCPStdio {
		a.tools = tools.NewServer(registry, loggerClient, version.Version)
	}

	if cfg.Watch {
		switch s := st.(type) {
		case *filestore.Store:
			a.watcher = scheduler.NewConfigWatcher(s.Dir(), registry, loggerClient, scheduler.DefaultDebounce)
		default:
			a.poller = scheduler.NewStorePoller(registry, loggerClient, cfg.PollInterval)
		}
	}

	if cfg.AdminListen != "" {
		d := deps.Deps{
			Logger:       loggerClient,
			StartTime:    time.Now(),
			Version:      version.Version,
			Commit:       version.Commit,
			BuildDate:    version.BuildDate,
			GoVersion:    version.GoVersion,
			TimeNow:      time.Now,
			Registry:     registry,
			Store:        st,
			PingTimeout:  cfg.RedisPingTimeout,
			WatchEnabled: cfg.Watch,
		}
		a.admin = httpserver.New(cfg.AdminListen, loggerClient, d)
	}

	return a, nil
}

// OpenStore builds the configured persistence backend. The returned client is
// nil for the file store.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Store, *goredis.Client, error) {
	if cfg.StoreBackend != config.StoreRedis {
		return filestore.New(cfg.ConfigDir), nil, nil
	}

	client, err := redis.Connect(ctx, redis.ConnectOptions{
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
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return redisstore.NewStore(client), client, nil
}

// Run serves until SIGINT/SIGTERM, or until the MCP client closes stdin.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("Starting mockingbird %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.bootstrap(ctx)

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			a.logger.Warn("config watcher disabled", logger.Error(err))
			a.watcher = nil
		}
	}
	if a.poller != nil {
		if err := a.poller.Start(ctx); err != nil {
			return fmt.Errorf("failed to start store poller: %w", err)
		}
		a.logger.Info("store poller started",
			logger.Duration("interval", a.cfg.PollInterval))
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.admin != nil {
		g.Go(func() error {
			if err := a.admin.Start(); err != nil {
				return fmt.Errorf("admin server error: %w", err)
			}
			return nil
		})
	}

	if a.tools != nil {
		g.Go(func() error {
			if err := a.tools.Serve(gctx, a.stdin, a.stdout); err != nil {
				return fmt.Errorf("mcp server error: %w", err)
			}
			// The client went away, there is nobody left to drive the servers.
			if gctx.Err() == nil {
				return errStdioClosed
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")
		return a.shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errStdioClosed) {
		return err
	}

	a.logger.Info("✅ mockingbird stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

var errStdioClosed = errors.New("mcp stdio closed")

// bootstrap restores persisted servers then applies the seed file.
// Failures are logged, a partially seeded process is still useful.
func (a *App) bootstrap(ctx context.Context) {
	if a.cfg.Restore {
		n, err := scheduler.NewRestorer(a.store, a.registry, a.logger).Restore(ctx)
		if err != nil {
			a.logger.Warn("some persisted servers could not be restored",
				logger.Int("restored", n),
				logger.Error(err))
		}
	}

	if a.cfg.SeedFile == "" {
		return
	}
	f, err := seed.NewLoader(a.cfg.SeedFile).Load()
	if err != nil {
		a.logger.Error("failed to load seed file",
			logger.String("file", a.cfg.SeedFile),
			logger.Error(err))
		return
	}
	res, err := seed.Apply(ctx, a.registry, f, a.logger)
	if err != nil {
		a.logger.Warn("seed file applied with errors", logger.Error(err))
	}
	a.logger.Info("seed file applied",
		logger.String("file", a.cfg.SeedFile),
		logger.Int("servers", res.Servers),
		logger.Int("endpoints", res.Endpoints))
}

func (a *App) shutdown() error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.poller != nil {
		a.poller.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.admin != nil {
		if err := a.admin.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop admin server: %w", err))
		}
	}
	if err := a.registry.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop mock servers: %w", err))
	}

	if a.redisClient != nil {
		utils.MustClose(a.redisClient, a.logger, "redis")
	}

	return errors.Join(errs...)
}
