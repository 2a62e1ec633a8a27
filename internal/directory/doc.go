// Package directory implements the cache-aside device directory.
//
// On every List the Redis key "govee_devices" is read. A hit is decoded and
// returned. A miss fetches the directory upstream, writes it back with SETEX
// and the configured TTL, and returns it. Expiry is left entirely to Redis.
//
// Failure policy:
//   - backend unreachable on read: ErrConnection, upstream is not called
//   - GET rejected by the server: ErrRead
//   - payload does not decode: ErrSerialization, never treated as a miss
//   - upstream fetch failed: ErrUpstream
//   - SETEX failed after a successful fetch: logged at warn, fresh data returned
//
// HealthCheck writes "hello" to "govee_health_check" without a TTL.
package directory
