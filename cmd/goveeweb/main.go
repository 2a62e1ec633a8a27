// goveeweb is an HTTP façade over the Govee developer API.
//
// It lists and controls the lights on a Govee account, keeping the device
// directory in Redis so repeated listings do not hit the vendor's rate limits.
//
// Usage:
//
//	goveeweb check   [--config path]   validate settings and print them
//	goveeweb server  [--config path]   serve HTTP until SIGINT/SIGTERM
//	goveeweb version                   print build information
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nerrad567/govee-web/internal/api"
	"github.com/nerrad567/govee-web/internal/audit"
	"github.com/nerrad567/govee-web/internal/device"
	"github.com/nerrad567/govee-web/internal/directory"
	"github.com/nerrad567/govee-web/internal/events"
	"github.com/nerrad567/govee-web/internal/govee"
	"github.com/nerrad567/govee-web/internal/infrastructure/config"
	"github.com/nerrad567/govee-web/internal/infrastructure/database"
	"github.com/nerrad567/govee-web/internal/infrastructure/influxdb"
	"github.com/nerrad567/govee-web/internal/infrastructure/logging"
	"github.com/nerrad567/govee-web/internal/infrastructure/mqtt"
	"github.com/nerrad567/govee-web/internal/infrastructure/redis"
	"github.com/nerrad567/govee-web/internal/metrics"
	"github.com/nerrad567/govee-web/internal/monitor"
	"github.com/nerrad567/govee-web/internal/telemetry"
	"github.com/nerrad567/govee-web/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// defaultConfigPath is read when present; a missing file means env-only settings.
const defaultConfigPath = "configs/config.yaml"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `Usage: goveeweb <command> [flags]

Commands:
  check     Load and validate settings, then print them
  server    Run the HTTP server
  version   Print version information

Flags for check and server:
  -c, --config string   YAML config file (default $GOVEE_CONFIG or configs/config.yaml if present)
`

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := runCLI(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// runCLI dispatches a subcommand and returns the process exit code.
func runCLI(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	switch cmd := args[0]; cmd {
	case "version":
		fmt.Fprintf(stdout, "goveeweb %s (commit %s, built %s)\n", version, commit, date)
		return exitOK

	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK

	case "check", "server":
		flags := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
		flags.SetOutput(stderr)
		configFlag := flags.StringP("config", "c", "", "YAML config file")
		if err := flags.Parse(args[1:]); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				return exitOK
			}
			return exitUsage
		}

		cfg, err := loadConfig(*configFlag)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}

		if cmd == "check" {
			fmt.Fprintln(stdout, "Settings OK")
			fmt.Fprintln(stdout, cfg.String())
			return exitOK
		}

		if err := run(ctx, cfg); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		return exitOK

	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}
}

// loadConfig resolves the config path and loads it.
func loadConfig(flagPath string) (*config.Config, error) {
	path, err := resolveConfigPath(flagPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// resolveConfigPath picks the config file: the flag, then GOVEE_CONFIG, then
// the default path if it exists. "" means environment variables only.
func resolveConfigPath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if path := os.Getenv(config.EnvPrefix + "CONFIG"); path != "" {
		return path, nil
	}
	_, err := os.Stat(defaultConfigPath)
	switch {
	case err == nil:
		return defaultConfigPath, nil
	case errors.Is(err, os.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("checking %s: %w", defaultConfigPath, err)
	}
}

// run wires every component from cfg and serves until ctx is cancelled.
//
// Parameters:
//   - ctx: Cancelled on shutdown signals
//   - cfg: Validated configuration
//
// Returns:
//   - error: nil on clean shutdown, or error describing a startup failure
func run(ctx context.Context, cfg *config.Config) error {
	log := logging.New(cfg.Logging, version)
	log.Info("starting goveeweb",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Directory cache. The client is lazy, so a Redis outage at startup is
	// reported per request and by /health rather than failing here.
	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("creating redis client: %w", err)
	}
	defer func() {
		log.Info("closing redis client")
		if closeErr := rdb.Close(); closeErr != nil {
			log.Error("error closing redis client", "error", closeErr)
		}
	}()
	if pingErr := rdb.CheckConnection(ctx); pingErr != nil {
		log.Warn("redis not reachable at startup", "addr", rdb.Addr(), "error", pingErr)
	} else {
		log.Info("redis client ready", "addr", rdb.Addr(), "ttl_seconds", cfg.Redis.TTLSeconds)
	}

	upstream := govee.New(cfg.Govee)
	upstream.SetLogger(log.Component("govee"))

	cache := directory.NewRedisCache(rdb, upstream, cfg.RedisTTL())
	cache.SetLogger(log.Component("directory"))

	controller := device.NewController(cache, upstream)
	controller.SetLogger(log.Component("device"))

	components := make(map[string]api.HealthChecker)

	// MQTT events (optional)
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	switch {
	case errors.Is(err, mqtt.ErrDisabled):
		log.Info("MQTT events disabled")
	case err != nil:
		return fmt.Errorf("connecting to MQTT: %w", err)
	default:
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		publisher := events.NewPublisher(mqttClient)
		controller.AddCommandSink(publisher)
		controller.AddStateSink(publisher)
		components["mqtt"] = mqttClient
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	}

	// InfluxDB telemetry (optional)
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB telemetry disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		controller.AddStateSink(telemetry.NewWriter(influxClient))
		components["influxdb"] = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	// Audit trail (optional)
	var auditRepo audit.Repository
	if cfg.Database.Enabled {
		db, err := openAuditDB(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()

		repo := audit.NewSQLiteRepository(db.DB)
		recorder := audit.NewRecorder(repo, audit.DefaultQueueSize)
		recorder.SetLogger(log.Component("audit"))
		defer func() {
			log.Info("flushing audit log")
			_ = recorder.Close()
		}()

		controller.AddCommandSink(recorder)
		auditRepo = repo
		components["database"] = db
		log.Info("audit database ready", "path", db.Path())
	} else {
		log.Info("audit trail disabled")
	}

	// Prometheus metrics (optional)
	var metricsHandler *metrics.Exporter
	if cfg.Metrics.Enabled {
		metricsHandler, err = metrics.NewExporter(cfg.Metrics.Namespace)
		if err != nil {
			return fmt.Errorf("starting metrics exporter: %w", err)
		}
		defer metricsHandler.Close()
	}

	// Background cache probe
	probe, err := monitor.NewProbe(controller, cfg.Monitor.Schedule)
	switch {
	case errors.Is(err, monitor.ErrDisabled):
		log.Info("cache monitor disabled")
	case err != nil:
		return fmt.Errorf("starting cache monitor: %w", err)
	default:
		probe.SetLogger(log.Component("monitor"))
		probe.Start()
		defer probe.Stop()
	}

	deps := api.Deps{
		Config:     cfg.API,
		Logger:     log,
		Devices:    controller,
		Audit:      auditRepo,
		Components: components,
		Version:    version,
	}
	if metricsHandler != nil {
		deps.Metrics = metricsHandler
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal", "address", server.Addr())

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// openAuditDB opens the SQLite database and applies the embedded migrations.
func openAuditDB(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
