// Package api implements the HTTP surface of goveeweb.
//
// This package provides:
//   - Directory and device endpoints backed by the device.Controller
//   - /health, reporting whether the directory cache backend is reachable
//   - Optional /metrics (Prometheus) and /api/v1/audit endpoints
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Error Mapping
//
// Handlers never format internal errors for clients. An unknown device is a
// 404, a malformed body or colour is a 400, and every other failure
// (cache backend, upstream API) is a 500 with code internal_error and a
// fixed message. The cause is logged with the request ID instead.
//
// # Routes
//
//	GET  /health
//	GET  /metrics                       when metrics are enabled
//	GET  /api/v1/devices
//	GET  /api/v1/devices/{id}
//	PUT  /api/v1/devices/{id}/toggle    {"state": "on"|"off"}
//	PUT  /api/v1/devices/{id}/color     {"color": "#ff8800"}
//	GET  /api/v1/audit                  when the audit store is enabled
//	GET  /api/v1/system
//
// Trailing slashes are stripped before routing.
package api
