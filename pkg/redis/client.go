package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/config"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
)

const (
	keyNamespace  = "lc"
	lockPrefix    = "lock"
	sessionPrefix = "session"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client wraps the redis connection helpers needed by the platform.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// Locker is the serialized critical section used to guard duplicate payment
// creation per order/preorder target.
type Locker interface {
	AcquireLock(ctx context.Context, scope, id string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, scope, id string) error
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "redis connection established")
	}
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	return opts, nil
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

// Close releases the underlying pool.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// AcquireLock takes a best-effort exclusive lock for the given scope/id pair.
func (c *Client) AcquireLock(ctx context.Context, scope, id string, ttl time.Duration) (bool, error) {
	return c.store.SetNX(ctx, key(lockPrefix, scope, id), "1", ttl).Result()
}

// ReleaseLock frees a previously acquired lock.
func (c *Client) ReleaseLock(ctx context.Context, scope, id string) error {
	return c.store.Del(ctx, key(lockPrefix, scope, id)).Err()
}

// SetSession records an active token id until its expiry.
func (c *Client) SetSession(ctx context.Context, jti string, ttl time.Duration) error {
	return c.store.Set(ctx, key(sessionPrefix, "jti", jti), "1", ttl).Err()
}

// HasSession reports whether the token id is still active.
func (c *Client) HasSession(ctx context.Context, jti string) (bool, error) {
	err := c.store.Get(ctx, key(sessionPrefix, "jti", jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func key(parts ...string) string {
	return keyNamespace + ":" + strings.Join(parts, ":")
}
