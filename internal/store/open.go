package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	DatabaseURL   string
}

// Open builds the repository selected by opts.Driver.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Repository, error) {
	switch opts.Driver {
	case "", DriverMemory:
		logger.Info("using in-memory draft store")
		return NewMemory(), nil

	case DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		repo, err := NewRedis(pingCtx, &RedisConfig{RedisClient: client, TTL: opts.TTL})
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		logger.Info("using redis draft store", zap.String("addr", opts.RedisAddr), zap.Int("db", opts.RedisDB))
		return repo, nil

	case DriverPostgres:
		repo, err := NewPostgres(ctx, &PostgresConfig{DSN: opts.DatabaseURL})
		if err != nil {
			return nil, err
		}
		logger.Info("using postgres draft store")
		return repo, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
