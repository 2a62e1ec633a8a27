// Package logging provides structured logging for govee-web.
//
// It wraps log/slog so every entry carries the service name and build
// version, in JSON for production or text for development.
//
// Configuration:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log the Govee API key or the Redis password.
package logging
