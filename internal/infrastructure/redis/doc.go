// Package redis provides the shared Redis connection used by the device
// directory cache.
//
// It wraps github.com/redis/go-redis/v9, building client options from the
// connection URI and applying the configured dial, read, and write timeouts.
// The connection is lazy: New never dials, so the service starts even while
// the cache backend is down and reports the outage per request instead.
//
// Usage:
//
//	client, err := redis.New(cfg.Redis)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	cache := directory.NewRedisCache(client, upstream, cfg.RedisTTL())
package redis
