package container

import (
	"context"
	"fmt"
	"time"

	"cotdex/adapters/cache"
	"cotdex/adapters/sqlstore"
	"cotdex/app"
	"cotdex/domain/network"
	"cotdex/internal"
	"cotdex/internal/config"
	"cotdex/internal/errors"
	"cotdex/internal/migration"
	"cotdex/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB    *sqlx.DB
	Store ports.AssociationStore
	Cache ports.CacheStore
	Style *network.Style

	// Services
	Network *app.NetworkService

	badger *cache.BadgerStore
	memory *cache.MemoryStore
}

// memorySweepInterval is how often expired in-process cache entries are
// dropped.
const memorySweepInterval = time.Minute

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLevel(cfg.LogLevel)),
	}, nil
}

// Init connects to the database, prepares the schema and builds the service
func (c *Container) Init(ctx context.Context) error {
	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	c.DB = db

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	return c.InitWithStore(sqlstore.NewAssociationRepository(db))
}

// InitWithStore builds the cache, style and service around an existing store
func (c *Container) InitWithStore(store ports.AssociationStore) error {
	c.Store = store

	if err := c.initCache(); err != nil {
		return errors.Wrap(err, "failed to initialize cache")
	}

	style := network.DefaultStyle()
	if path := c.Config.Style.File; path != "" {
		loaded, err := network.LoadStyle(path)
		if err != nil {
			return errors.Wrap(err, "failed to load style file")
		}
		style = loaded
		c.Logger.Info("style loaded from %s", path)
	}
	c.Style = style

	c.Network = app.NewNetworkService(app.NetworkServiceConfig{
		Store:  c.Store,
		Cache:  c.Cache,
		Style:  c.Style,
		TTL:    c.Config.Cache.TTL,
		Logger: c.Logger,
	})
	return nil
}

func (c *Container) initCache() error {
	switch c.Config.Cache.Backend {
	case "badger":
		store, err := cache.OpenBadger(cache.BadgerConfig{
			Path:       c.Config.Cache.BadgerPath,
			GCInterval: 10 * time.Minute,
		}, c.Logger)
		if err != nil {
			return err
		}
		c.badger = store
		c.Cache = store
	case "memory", "":
		store := cache.NewMemoryStore()
		store.StartSweeper(memorySweepInterval)
		c.memory = store
		c.Cache = store
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown cache backend %q", c.Config.Cache.Backend))
	}
	c.Logger.Info("result cache: %s, ttl %s", c.Config.Cache.Backend, c.Config.Cache.TTL)
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if c.memory != nil {
		c.memory.Close()
	}
	if c.badger != nil {
		if err := c.badger.Close(); err != nil {
			firstErr = err
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
