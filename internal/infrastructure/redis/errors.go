package redis

import "errors"

// Sentinel errors for Redis connection management.
var (
	// ErrInvalidURI indicates the connection URI could not be parsed.
	ErrInvalidURI = errors.New("redis: invalid connection uri")

	// ErrPingFailed indicates the server did not answer a PING.
	ErrPingFailed = errors.New("redis: ping failed")
)
