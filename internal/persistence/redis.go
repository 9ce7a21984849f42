package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helpdesk-tools/ticket-triage/internal/config"
	"github.com/helpdesk-tools/ticket-triage/pkg/cache"
)

// Triage lookups sit on the request path, so Redis gets short timeouts and
// a slow server degrades to cache misses instead of stalling requests.
const (
	redisDialTimeout = 2 * time.Second
	redisIOTimeout   = 500 * time.Millisecond
	redisPingTimeout = 2 * time.Second
)

// Redis backs the optional triage result cache.
type Redis struct {
	Client *redis.Client
	prefix string
}

// NewRedis builds the client. It returns nil when REDIS_ADDR is unset. An
// unreachable server is logged but not fatal since the cache is optional.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("REDIS_ADDR not provided; triage cache disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable; triage results will not be cached until it recovers",
			zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("triage cache connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}

	return &Redis{Client: client, prefix: cfg.KeyPrefix}
}

// Cache returns the triage cache bound to this client and key prefix, or
// nil when Redis is disabled.
func (r *Redis) Cache() *cache.Cache {
	if r == nil || r.Client == nil {
		return nil
	}
	if r.prefix == "" {
		return cache.New(r.Client)
	}
	return cache.New(r.Client, cache.WithPrefix(r.prefix))
}

func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping reports cache health on the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
