package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medsupply/cotizaciones-api/pkg/config"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
)

const namespace = "medsupply"

// PendingMarker occupies a reserved idempotency key until the response is stored.
const PendingMarker = "pending"

var errNotConnected = errors.New("redis client not connected")

// IdempotencyStore keeps the responses of create requests per caller scope
// and Idempotency-Key.
type IdempotencyStore interface {
	// Reserve claims scope/key for ttl. When the key is already taken it
	// returns the stored value, which is PendingMarker while the first
	// request is still running.
	Reserve(ctx context.Context, scope, key string, ttl time.Duration) (stored string, reserved bool, err error)
	// Complete replaces the reservation with the final payload.
	Complete(ctx context.Context, scope, key, payload string, ttl time.Duration) error
	// Release drops a reservation so the client may retry.
	Release(ctx context.Context, scope, key string) error
}

type commands interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	ExpireNX(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Client backs the login limiter and the idempotency middleware.
type Client struct {
	cmd  commands
	conn *redis.Client
}

var _ IdempotencyStore = (*Client)(nil)

// New connects and pings; the caller owns Close.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	conn := redis.NewClient(opts)
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "addr", opts.Addr), "redis connection established")
	}
	return &Client{cmd: conn, conn: conn}, nil
}

// optionsFromConfig prefers the URL; explicit pool and timeout settings fill
// whatever the URL leaves unset.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis url or address is required")
	}
	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}
	setDefault(&opts.PoolSize, cfg.PoolSize)
	setDefault(&opts.MinIdleConns, cfg.MinIdleConns)
	setDefault(&opts.DialTimeout, cfg.DialTimeout)
	setDefault(&opts.ReadTimeout, cfg.ReadTimeout)
	setDefault(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

// Hit counts one event in the fixed window named by key and returns the
// running total. The expiry is set with NX on every hit so a counter can
// never outlive its window.
func (c *Client) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	if c.cmd == nil {
		return 0, errNotConnected
	}
	k := Key("rate_limit", key)
	count, err := c.cmd.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if window > 0 {
		if err := c.cmd.ExpireNX(ctx, k, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (c *Client) Reserve(ctx context.Context, scope, key string, ttl time.Duration) (string, bool, error) {
	if c.cmd == nil {
		return "", false, errNotConnected
	}
	k := Key("idempotency", scope, key)
	// The first holder may expire between SETNX and GET; one retry covers it.
	for range 2 {
		ok, err := c.cmd.SetNX(ctx, k, PendingMarker, ttl).Result()
		if err != nil {
			return "", false, err
		}
		if ok {
			return "", true, nil
		}
		stored, err := c.cmd.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", false, err
		}
		return stored, false, nil
	}
	return "", false, fmt.Errorf("idempotency key %s kept expiring", k)
}

func (c *Client) Complete(ctx context.Context, scope, key, payload string, ttl time.Duration) error {
	if c.cmd == nil {
		return errNotConnected
	}
	return c.cmd.Set(ctx, Key("idempotency", scope, key), payload, ttl).Err()
}

func (c *Client) Release(ctx context.Context, scope, key string) error {
	if c.cmd == nil {
		return errNotConnected
	}
	return c.cmd.Del(ctx, Key("idempotency", scope, key)).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	if c.cmd == nil {
		return errNotConnected
	}
	return c.cmd.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Key joins the non-blank parts under the service namespace.
func Key(parts ...string) string {
	out := []string{namespace}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ":")
}
