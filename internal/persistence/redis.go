package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rtcstack/rtc-token-service/internal/config"
)

// Redis wraps the go-redis client used for request throttling.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration. An empty address yields a
// disabled wrapper.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("REDIS_ADDR not provided; rate limiting disabled")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Enabled reports whether a client is configured.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// Close closes the client.
func (r *Redis) Close() {
	if r.Enabled() {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// IncrWindow increments key and starts its expiry on the first hit of a window.
func (r *Redis) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	if !r.Enabled() {
		return 0, errors.New("redis client not configured")
	}
	return incrWindow(ctx, r.Client, key, window)
}

type windowCommands interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// incrWindow sets the expiry with a plain EXPIRE on the first hit. EXPIRE NX needs Redis 7.
func incrWindow(ctx context.Context, c windowCommands, key string, window time.Duration) (int64, error) {
	hits, err := c.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if hits == 1 {
		if err := c.Expire(ctx, key, window).Err(); err != nil {
			return hits, err
		}
	}
	return hits, nil
}
