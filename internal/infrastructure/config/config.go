package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix shared by every environment variable override.
const EnvPrefix = "GOVEE_"

// DefaultRemoteAPIURL is the public Govee developer API endpoint.
const DefaultRemoteAPIURL = "https://developer-api.govee.com"

// Config is the root configuration structure for the service.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Govee    GoveeConfig    `yaml:"govee"`
	Redis    RedisConfig    `yaml:"redis"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Monitor  MonitorConfig  `yaml:"monitor"`
}

// GoveeConfig contains the upstream vendor API settings.
type GoveeConfig struct {
	APIKey         string `yaml:"api_key"`
	RemoteAPIURL   string `yaml:"remote_api_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RedisConfig contains the directory cache backend settings.
type RedisConfig struct {
	URI                 string `yaml:"uri"`
	TTLSeconds          int    `yaml:"ttl_seconds"`
	DialTimeoutSeconds  int    `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	PoolSize            int    `yaml:"pool_size"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	BindAddr string           `yaml:"bind_addr"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MQTTConfig contains MQTT broker connection settings for event publishing.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings for state telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// DatabaseConfig contains the SQLite settings for the command audit trail.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MetricsConfig contains Prometheus exporter settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// MonitorConfig contains the background cache probe settings.
// An empty Schedule disables the probe.
type MonitorConfig struct {
	Schedule string `yaml:"schedule"`
}

// Load reads configuration and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults), skipped when path is empty
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GOVEE_KEY or GOVEE_SECTION_KEY
// For example: GOVEE_API_KEY, GOVEE_REDIS_URI, GOVEE_REDIS_TTL_SECONDS
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for environment only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Govee: GoveeConfig{
			RemoteAPIURL:   DefaultRemoteAPIURL,
			TimeoutSeconds: 10,
		},
		Redis: RedisConfig{
			TTLSeconds:          300,
			DialTimeoutSeconds:  5,
			ReadTimeoutSeconds:  3,
			WriteTimeoutSeconds: 3,
			PoolSize:            10,
		},
		API: APIConfig{
			BindAddr: "127.0.0.1",
			Port:     3000,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "goveeweb",
			},
			QoS:         1,
			TopicPrefix: "govee",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Database: DatabaseConfig{
			Path:        "./data/goveeweb.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Metrics: MetricsConfig{
			Namespace: "goveeweb",
		},
		Monitor: MonitorConfig{
			Schedule: "@every 30s",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// The variable names for the core settings match the ones the service has always read.
func applyEnvOverrides(cfg *Config) error {
	// Upstream
	if v := os.Getenv(EnvPrefix + "API_KEY"); v != "" {
		cfg.Govee.APIKey = v
	}
	if v := os.Getenv(EnvPrefix + "REMOTE_API_URL"); v != "" {
		cfg.Govee.RemoteAPIURL = v
	}

	// Cache backend
	if v := os.Getenv(EnvPrefix + "REDIS_URI"); v != "" {
		cfg.Redis.URI = v
	}
	if err := envInt(EnvPrefix+"REDIS_TTL_SECONDS", &cfg.Redis.TTLSeconds); err != nil {
		return err
	}

	// API
	if v := os.Getenv(EnvPrefix + "BIND_ADDR"); v != "" {
		cfg.API.BindAddr = v
	}
	if err := envInt(EnvPrefix+"PORT", &cfg.API.Port); err != nil {
		return err
	}

	// Logging
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// MQTT
	if v := os.Getenv(EnvPrefix + "MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv(EnvPrefix + "MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv(EnvPrefix + "MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv(EnvPrefix + "INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Audit database
	if v := os.Getenv(EnvPrefix + "DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	return nil
}

// envInt parses an integer environment variable into dst when it is set.
func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %q is not an integer", key, v)
	}
	*dst = n
	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Upstream
	if c.Govee.APIKey == "" {
		errs = append(errs, "govee.api_key is required (set GOVEE_API_KEY environment variable)")
	}
	if u, err := url.Parse(c.Govee.RemoteAPIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, "govee.remote_api_url must be an absolute http(s) URL")
	}
	if c.Govee.TimeoutSeconds < 1 {
		errs = append(errs, "govee.timeout_seconds must be positive")
	}

	// Cache backend
	if c.Redis.URI == "" {
		errs = append(errs, "redis.uri is required (set GOVEE_REDIS_URI environment variable)")
	} else if _, err := redis.ParseURL(c.Redis.URI); err != nil {
		errs = append(errs, fmt.Sprintf("redis.uri is invalid: %v", err))
	}
	if c.Redis.TTLSeconds < 1 {
		errs = append(errs, "redis.ttl_seconds must be positive")
	}

	// API
	if net.ParseIP(c.API.BindAddr) == nil {
		errs = append(errs, "api.bind_addr must be an IP address")
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Optional sinks
	if c.MQTT.Enabled && (c.MQTT.QoS < 0 || c.MQTT.QoS > 2) {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the audit database is enabled")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors: " + strings.Join(errs, "; "))
	}

	return nil
}

// RedisTTL returns the directory cache TTL as a Duration.
func (c *Config) RedisTTL() time.Duration {
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

// RequestTimeout returns the upstream request timeout as a Duration.
func (g GoveeConfig) RequestTimeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// SocketAddr returns the host:port the HTTP server listens on.
func (c *Config) SocketAddr() string {
	return c.API.SocketAddr()
}

// SocketAddr returns the host:port the HTTP server listens on.
func (a APIConfig) SocketAddr() string {
	return net.JoinHostPort(a.BindAddr, strconv.Itoa(a.Port))
}

// GetReadTimeout returns the API read timeout as a Duration.
func (a APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(a.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (a APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(a.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (a APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(a.Timeouts.Idle) * time.Second
}

// String renders a settings summary with credentials redacted.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Settings:\n")
	fmt.Fprintf(&b, "  api_key:           ******\n")
	fmt.Fprintf(&b, "  remote_api_url:    %s\n", c.Govee.RemoteAPIURL)
	fmt.Fprintf(&b, "  redis_uri:         %s\n", redactURI(c.Redis.URI))
	fmt.Fprintf(&b, "  redis_ttl_seconds: %d\n", c.Redis.TTLSeconds)
	fmt.Fprintf(&b, "  bind_addr:         %s\n", c.API.BindAddr)
	fmt.Fprintf(&b, "  port:              %d\n", c.API.Port)
	fmt.Fprintf(&b, "  mqtt:              %s\n", enabled(c.MQTT.Enabled))
	fmt.Fprintf(&b, "  influxdb:          %s\n", enabled(c.InfluxDB.Enabled))
	fmt.Fprintf(&b, "  audit database:    %s\n", enabled(c.Database.Enabled))
	fmt.Fprintf(&b, "  metrics:           %s", enabled(c.Metrics.Enabled))
	return b.String()
}

// redactURI masks any password embedded in a connection URI.
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "******")
	}
	return u.String()
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
