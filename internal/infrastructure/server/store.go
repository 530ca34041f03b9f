package server

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostFrame/internal/domain/post"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/config"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostFrame/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/PostFrame/internal/store"
	"github.com/GriffinCanCode/PostFrame/internal/store/cache"
	"github.com/GriffinCanCode/PostFrame/internal/store/memory"
	"github.com/GriffinCanCode/PostFrame/internal/store/rest"
	"github.com/GriffinCanCode/PostFrame/internal/store/sqlstore"
)

// closer releases a resource opened for the store
type closer func() error

// OpenStore builds the Content Store selected by cfg.Store.Driver, wrapped
// with metrics and, when enabled, the redis cache. The returned function
// releases every connection it opened.
func OpenStore(ctx context.Context, cfg *config.Config, metrics *monitoring.Metrics, logger *logging.Logger) (post.Store, func() error, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	var (
		backend post.Store
		closers []closer
	)

	switch cfg.Store.Driver {
	case "memory":
		s, err := memory.NewFromGlob(cfg.Store.SeedGlob)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed memory store: %w", err)
		}
		logger.Info("Memory store seeded",
			zap.String("pattern", cfg.Store.SeedGlob),
			zap.Int("posts", s.Len()))
		backend = s

	case "postgres", "sqlite":
		db, err := sqlstore.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() error { return sqlstore.Close(db) })

		s := sqlstore.New(db)
		if cfg.Store.Driver == "sqlite" {
			if err := seedSQL(ctx, s, cfg.Store.SeedGlob, logger); err != nil {
				_ = sqlstore.Close(db)
				return nil, nil, err
			}
		}
		backend = s

	case "rest":
		restCfg := rest.DefaultConfig()
		restCfg.BaseURL = cfg.Store.URL
		restCfg.APIKey = cfg.Store.APIKey
		restCfg.Timeout = cfg.Store.Timeout
		backend = rest.New(restCfg, rest.WithLogger(logger))

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	backend = store.Instrument(backend, cfg.Store.Driver, metrics, logger)

	if cfg.Cache.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, cache will fall through", zap.String("addr", cfg.Cache.Addr), zap.Error(err))
		}
		closers = append(closers, client.Close)

		cacheCfg := cache.DefaultConfig()
		cacheCfg.Prefix = cfg.Cache.Prefix
		cacheCfg.TTL = cfg.Cache.TTL
		cacheOpts := []cache.Option{cache.WithLogger(logger)}
		if metrics != nil {
			cacheOpts = append(cacheOpts, cache.WithRecorder(metrics))
		}
		backend = cache.New(backend, client, cacheCfg, cacheOpts...)
		logger.Info("Read-through cache enabled", zap.String("addr", cfg.Cache.Addr), zap.Duration("ttl", cfg.Cache.TTL))
	}

	release := func() error {
		var first error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	return backend, release, nil
}

// seedSQL creates the schema and loads the seed files into a local database
func seedSQL(ctx context.Context, s *sqlstore.Store, pattern string, logger *logging.Logger) error {
	if err := s.Migrate(ctx); err != nil {
		return err
	}
	if pattern == "" {
		return nil
	}
	posts, err := memory.LoadGlob(pattern)
	if err != nil {
		return fmt.Errorf("failed to read seed files: %w", err)
	}
	for _, p := range posts {
		if err := s.Put(ctx, p); err != nil {
			return err
		}
	}
	logger.Info("SQLite store seeded", zap.String("pattern", pattern), zap.Int("posts", len(posts)))
	return nil
}
