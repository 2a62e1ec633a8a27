package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nerrad567/govee-web/internal/infrastructure/config"
)

const defaultPingTimeout = 3 * time.Second

// Client is a go-redis client built from service configuration.
//
// It embeds *goredis.Client, so it satisfies goredis.Cmdable and can be
// handed straight to the directory cache.
//
// Thread Safety:
//   - All methods are safe for concurrent use; go-redis pools connections.
type Client struct {
	*goredis.Client
	addr string
}

// Method names on Client must not shadow goredis.Cmdable.
var _ goredis.Cmdable = (*Client)(nil)

// New builds a client from the configured URI without dialling.
//
// Parameters:
//   - cfg: Redis configuration (uri, timeouts, pool size)
//
// Returns:
//   - *Client: Client ready for use; the first command opens a connection
//   - error: ErrInvalidURI if the URI cannot be parsed
func New(cfg config.RedisConfig) (*Client, error) {
	opts, err := buildOptions(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		Client: goredis.NewClient(opts),
		addr:   opts.Addr,
	}, nil
}

// buildOptions parses the URI and layers the configured timeouts on top.
// Values already present in the URI query (dial_timeout etc.) are overridden
// only when the config sets a positive value.
func buildOptions(cfg config.RedisConfig) (*goredis.Options, error) {
	opts, err := goredis.ParseURL(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	if cfg.DialTimeoutSeconds > 0 {
		opts.DialTimeout = time.Duration(cfg.DialTimeoutSeconds) * time.Second
	}
	if cfg.ReadTimeoutSeconds > 0 {
		opts.ReadTimeout = time.Duration(cfg.ReadTimeoutSeconds) * time.Second
	}
	if cfg.WriteTimeoutSeconds > 0 {
		opts.WriteTimeout = time.Duration(cfg.WriteTimeoutSeconds) * time.Second
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	// Fail fast instead of retrying against a dead backend.
	opts.MaxRetries = -1

	return opts, nil
}

// Addr returns the host:port the client connects to.
func (c *Client) Addr() string {
	return c.addr
}

// CheckConnection pings the server within a short timeout.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: nil if the server replied, wrapped ErrPingFailed otherwise
func (c *Client) CheckConnection(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if err := c.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPingFailed, c.addr, err)
	}
	return nil
}

// Close releases all pooled connections. Safe to call on a nil client.
func (c *Client) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
