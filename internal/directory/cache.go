package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/nerrad567/govee-web/internal/device"
)

// Well-known keys owned by the cache.
const (
	DirectoryKey = "govee_devices"
	HealthKey    = "govee_health_check"

	healthValue = "hello"
)

// DefaultTTL is used when NewRedisCache is given a non-positive TTL.
const DefaultTTL = 300 * time.Second

// Fetcher loads the live directory from the upstream API.
type Fetcher interface {
	FetchDirectory(ctx context.Context) (device.Directory, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (device.Directory, error)

// FetchDirectory calls f.
func (f FetcherFunc) FetchDirectory(ctx context.Context) (device.Directory, error) {
	return f(ctx)
}

// Logger defines the logging interface used by the cache.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// RedisCache serves the device directory cache-aside from Redis.
//
// Concurrent misses each fetch upstream and each write the key; the last
// writer wins and every write carries the same TTL. No in-process locking
// is done, go-redis pools connections safely.
type RedisCache struct {
	rdb     redis.Cmdable
	fetcher Fetcher
	ttl     time.Duration
	logger  Logger
}

// NewRedisCache creates a cache over rdb that falls back to fetcher on a miss.
//
// Parameters:
//   - rdb: Redis client (any go-redis Cmdable)
//   - fetcher: Upstream directory source
//   - ttl: Expiry applied to every directory write
func NewRedisCache(rdb redis.Cmdable, fetcher Fetcher, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		rdb:     rdb,
		fetcher: fetcher,
		ttl:     ttl,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the cache.
func (c *RedisCache) SetLogger(logger Logger) {
	c.logger = logger
}

// TTL returns the expiry applied to directory writes.
func (c *RedisCache) TTL() time.Duration {
	return c.ttl
}

// List returns the device directory.
//
// A cached payload is returned as is. A corrupt payload is an error, not a
// miss. On a miss the upstream directory is fetched and written back with
// the TTL; a failed write is logged and the fresh directory is still
// returned.
//
// Returns:
//   - device.Directory: Cached or freshly fetched directory
//   - error: *Error of kind Connection, Read, Serialization, or Upstream
func (c *RedisCache) List(ctx context.Context) (device.Directory, error) {
	payload, err := c.rdb.Get(ctx, DirectoryKey).Bytes()
	switch {
	case err == nil:
		dir, err := decodeDirectory(payload)
		if err != nil {
			return nil, &Error{Kind: KindSerialization, Key: DirectoryKey, Err: err}
		}
		c.logger.Debug("cache hit", "key", DirectoryKey, "devices", len(dir))
		stats.Record(ctx, MCacheHits.M(1))
		return dir, nil

	case errors.Is(err, redis.Nil):
		c.logger.Debug("cache miss", "key", DirectoryKey)
		stats.Record(ctx, MCacheMisses.M(1))
		return c.refresh(ctx)

	default:
		return nil, classify(err, DirectoryKey, KindRead)
	}
}

// refresh fetches the directory upstream and populates the cache.
func (c *RedisCache) refresh(ctx context.Context) (device.Directory, error) {
	start := time.Now()
	dir, err := c.fetcher.FetchDirectory(ctx)
	recordFetch(ctx, start, err)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Err: err}
	}
	if dir == nil {
		dir = device.Directory{}
	}

	payload, err := json.Marshal(dir)
	if err != nil {
		return nil, &Error{Kind: KindSerialization, Key: DirectoryKey, Err: err}
	}

	if err := c.rdb.SetEx(ctx, DirectoryKey, payload, c.ttl).Err(); err != nil {
		werr := classify(err, DirectoryKey, KindWrite)
		c.logger.Warn("cache write failed, serving uncached directory",
			"key", DirectoryKey, "kind", werr.Kind.String(), "error", err)
		stats.Record(ctx, MCacheWriteFailures.M(1))
	}

	return dir, nil
}

// decodeDirectory parses a cached payload. The payload must be a JSON array
// and every element must carry a device id and model; anything else was not
// written by refresh.
func decodeDirectory(payload []byte) (device.Directory, error) {
	var dir device.Directory
	if err := json.Unmarshal(payload, &dir); err != nil {
		return nil, err
	}
	if dir == nil {
		return nil, errors.New("payload is null")
	}
	for i, d := range dir {
		if d.ID == "" || d.Model == "" {
			return nil, fmt.Errorf("entry %d has no device id or model", i)
		}
	}
	return dir, nil
}

func recordFetch(ctx context.Context, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyOutcome, outcome)},
		MUpstreamFetches.M(1),
		MUpstreamLatencyMs.M(sinceInMilliseconds(start)),
	)
}

// HealthCheck writes the sentinel value under HealthKey.
//
// Returns:
//   - error: nil if the backend accepted the write, *Error of kind
//     Connection or HealthCheck otherwise
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	if err := c.rdb.Set(ctx, HealthKey, healthValue, 0).Err(); err != nil {
		return classify(err, HealthKey, KindHealthCheck)
	}
	return nil
}

var _ device.DirectoryCache = (*RedisCache)(nil)
