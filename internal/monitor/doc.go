// Package monitor probes the directory cache backend in the background.
//
// A Probe runs the controller's HealthCheck on a cron schedule (for example
// "@every 30s"), logs when the backend goes from healthy to unhealthy or
// back, and records the latest result in the cache/healthy gauge.
//
// The probe is observational only. Requests never consult its result.
package monitor
