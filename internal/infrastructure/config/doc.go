// Package config handles loading and validating govee-web configuration.
//
// This package manages:
//   - Loading configuration from an optional YAML file
//   - Overriding with GOVEE_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - The Govee API key should be set via GOVEE_API_KEY, never committed
//   - String() redacts the API key and any password in the Redis URI
//
// Usage:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.SocketAddr())
package config
