package influxdb

import "errors"

// Sentinel errors returned by Connect and HealthCheck. Point writes never
// return errors; failures reach the SetOnError callback instead.
var (
	// ErrDisabled is returned by Connect when telemetry is switched off.
	// Callers treat it as "skip", not as a startup failure.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrConnectionFailed means the startup ping failed or reported unhealthy.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrNotConnected is returned by HealthCheck after Close.
	ErrNotConnected = errors.New("influxdb: not connected")
)
