package data

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	redis "github.com/redis/go-redis/v9"

	"tagcurator/internal/conf"
	pkgredis "tagcurator/internal/pkg/redis"
)

// NewRedisCache creates a new Redis cache from configuration.
func NewRedisCache(c *conf.Data, logger log.Logger) (pkgredis.Cache, func(), error) {
	helper := log.NewHelper(logger)

	// Build connection options from config
	opts := &redis.Options{
		Addr:         c.Redis.Addr,
		Network:      c.Redis.Network,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		ReadTimeout:  conf.ParseDuration(c.Redis.ReadTimeout, 3*time.Second),
		WriteTimeout: conf.ParseDuration(c.Redis.WriteTimeout, 3*time.Second),
	}

	client := redis.NewClient(opts)

	// Test connection with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		helper.Errorf("failed to connect to Redis at %s: %v", c.Redis.Addr, err)
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	helper.Infof("connected to Redis at %s", c.Redis.Addr)

	cache := pkgredis.NewFromClient(client)
	cleanup := func() {
		helper.Info("closing Redis connection")
		cache.Close()
	}

	return cache, cleanup, nil
}
