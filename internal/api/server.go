package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/govee-web/internal/audit"
	"github.com/nerrad567/govee-web/internal/device"
	"github.com/nerrad567/govee-web/internal/infrastructure/config"
	"github.com/nerrad567/govee-web/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// DeviceService is the device.Controller surface the handlers use.
type DeviceService interface {
	ListDevices(ctx context.Context) (device.Directory, error)
	GetState(ctx context.Context, id string) (device.State, error)
	SetPower(ctx context.Context, id string, power device.PowerState) error
	SetColor(ctx context.Context, id string, color device.Color) error
	HealthCheck(ctx context.Context) error
}

// HealthChecker is an optional component reported by /api/v1/system.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	Logger     *logging.Logger
	Devices    DeviceService
	Audit      audit.Repository         // optional: enables /api/v1/audit
	Metrics    http.Handler             // optional: enables /metrics
	Components map[string]HealthChecker // optional: reported by /api/v1/system
	Version    string
}

// Server is the HTTP API server.
//
// It is created with New(), started with Start() and stopped with Close().
type Server struct {
	cfg        config.APIConfig
	logger     *logging.Logger
	devices    DeviceService
	auditRepo  audit.Repository
	metrics    http.Handler
	components map[string]HealthChecker
	version    string
	startTime  time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Logger and Devices are required, everything else is optional
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if deps.Devices == nil {
		return nil, errors.New("device service is required")
	}

	return &Server{
		cfg:        deps.Config,
		logger:     deps.Logger,
		devices:    deps.Devices,
		auditRepo:  deps.Audit,
		metrics:    deps.Metrics,
		components: deps.Components,
		version:    deps.Version,
		startTime:  time.Now(),
	}, nil
}

// Start binds the listen address and serves requests in the background.
//
// Binding happens before Start returns, so a port already in use is reported
// here rather than logged later.
//
// Parameters:
//   - ctx: Context for the listen call
//
// Returns:
//   - error: If the address cannot be bound
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.SocketAddr()

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	s.mu.Lock()
	s.server = srv
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("API server listening", "address", ln.Addr().String())

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
