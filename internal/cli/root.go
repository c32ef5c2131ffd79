package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/habitlens/internal/analytics"
	"github.com/julianstephens/habitlens/internal/cache"
	"github.com/julianstephens/habitlens/internal/config"
	"github.com/julianstephens/habitlens/internal/constants"
	"github.com/julianstephens/habitlens/internal/journal"
	"github.com/julianstephens/habitlens/internal/keyring"
	"github.com/julianstephens/habitlens/internal/logger"
	"github.com/julianstephens/habitlens/internal/models"
	"github.com/julianstephens/habitlens/internal/plot"
	"github.com/julianstephens/habitlens/internal/storage"
	"github.com/julianstephens/habitlens/internal/storage/postgres"
	"github.com/julianstephens/habitlens/internal/storage/sqlite"
	"github.com/julianstephens/habitlens/internal/streak"
	"github.com/julianstephens/habitlens/internal/utils"
)

// Context carries the wired services every command runs against.
type Context struct {
	Config   *config.Config
	Store    storage.Provider
	Cache    cache.PageCache
	Renderer plot.Renderer
	Journal  *journal.Service
	Engine   *analytics.Engine
	Streaks  *streak.Calculator
	// Controls are the analytics defaults after config overrides.
	Controls analytics.Controls
}

// OpenStore picks the storage driver for a configured DSN. PostgreSQL DSNs
// must not embed a password; the keyring or HABITLENS_DB_CONNECTION supply one.
func OpenStore(configured string) (storage.Provider, error) {
	if utils.IsPostgresDSN(configured) {
		if _, err := postgres.ValidateConnString(configured); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: store the password with 'habitlens keyring set' or %s", err, constants.EnvDBConnection)
			}
			return nil, err
		}
	}

	dsn := keyring.ResolveDSN(configured)
	if utils.IsPostgresDSN(dsn) {
		return postgres.New(dsn), nil
	}
	return sqlite.NewStore(dsn), nil
}

// NewPageCache returns the Redis cache when redis.addr is set, falling back
// to an in-process cache when Redis is unset or unreachable.
func NewPageCache(ctx context.Context, cfg *config.Config) cache.PageCache {
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryCache(cfg.Cache.TTL)
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: keyring.ResolveRedisPassword(cfg.Redis.Password),
		DB:       cfg.Redis.DB,
		TTL:      cfg.Cache.TTL,
	})
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", "addr", cfg.Redis.Addr, "error", err)
		return cache.NewMemoryCache(cfg.Cache.TTL)
	}
	return rc
}

// NewContext wires the services for store. The renderer is built once here
// and shared by every analytics run.
func NewContext(ctx context.Context, cfg *config.Config, store storage.Provider) (*Context, error) {
	renderer, err := plot.NewRenderer(plot.Options{
		Width:    cfg.Plot.Width,
		Height:   cfg.Plot.Height,
		FontPath: utils.ExpandPath(cfg.Plot.Font),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up plot renderer: %w", err)
	}

	loc := cfg.Location()
	pageCache := NewPageCache(ctx, cfg)
	j := journal.NewService(store, pageCache, journal.WithLocation(loc))

	return &Context{
		Config:   cfg,
		Store:    store,
		Cache:    pageCache,
		Renderer: renderer,
		Journal:  j,
		Engine:   analytics.NewEngine(store, renderer, analytics.WithMaxWorkers(cfg.Analytics.MaxWorkers)),
		Streaks:  streak.NewCalculator(store, j.Now),
		Controls: analytics.DefaultsFromConfig(cfg.Analytics),
	}, nil
}

// ActingUser resolves the configured user, creating it on first use.
func (c *Context) ActingUser(ctx context.Context) (models.User, error) {
	return c.Journal.ResolveUser(ctx, c.Config.User)
}

// Close releases the cache and the store
func (c *Context) Close() error {
	var errs []error
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	return errors.Join(errs...)
}
