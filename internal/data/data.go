package data

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"tagcurator/internal/conf"
	pkgredis "tagcurator/internal/pkg/redis"
)

const (
	driverFile     = "file"
	driverPostgres = "postgres"

	sinkFile     = "file"
	sinkPostgres = "postgres"
	sinkRedis    = "redis"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(
	NewData,
	NewPostRepo,
	NewTagTableRepo,
	NewDuplicateRepo,
	NewImageProbe,
	NewSinks,
	NewDeprecationFetcher,
	NewDeprecationStore,
)

// Data holds the database and cache clients. Each one is nil unless a
// configured post source or sink needs it.
type Data struct {
	Pool  *pgxpool.Pool  // pgx pool for queries and COPY
	DB    *sql.DB        // database/sql view of Pool for migrations
	Cache pkgredis.Cache // redis sink target
}

// NewData new a data instance
func NewData(c *conf.Data, in *conf.Input, out *conf.Output, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	d := &Data{}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	needSink := func(name string) bool { return slices.Contains(out.Sinks, name) }

	if in.Posts.Driver == driverPostgres || needSink(sinkPostgres) {
		ctx := context.Background()
		// config pool
		pgxConfig, err := newPgxPoolConfig(c)
		if err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.NewWithConfig(ctx, pgxConfig)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		// database/sql over the same pool for migrations
		db := stdlib.OpenDBFromPool(pool)
		closers = append(closers, func() {
			helper.Info("closing db connections")
			db.Close()
			pool.Close()
		})
		d.Pool = pool
		d.DB = db

		if needSink(sinkPostgres) {
			if err := RunMigrate(c, db); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("migration failed: %w", err)
			}
		}
	}

	if needSink(sinkRedis) {
		cache, closeCache, err := NewRedisCache(c, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, closeCache)
		d.Cache = cache
	}

	return d, cleanup, nil
}

// newPgxPoolConfig creates a pgxpool.Config from conf.Data
func newPgxPoolConfig(c *conf.Data) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(c.Database.Source)
	if err != nil {
		return nil, err
	}
	// Configure connection pool settings
	pool := c.Database.Pool
	if pool.MaxOpenConns > 0 {
		cfg.MaxConns = pool.MaxOpenConns
	}
	if pool.MinIdleConns > 0 {
		cfg.MinConns = pool.MinIdleConns
	}
	if pool.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = time.Duration(pool.MaxConnLifetime) * time.Minute
	}
	if pool.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = time.Duration(pool.MaxConnIdleTime) * time.Minute
	}

	return cfg, nil
}
