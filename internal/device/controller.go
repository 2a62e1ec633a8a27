package device

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Logger defines the logging interface used by the Controller.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DirectoryCache serves the device directory and reports cache health.
// The production implementation is directory.RedisCache.
type DirectoryCache interface {
	List(ctx context.Context) (Directory, error)
	HealthCheck(ctx context.Context) error
}

// Upstream issues live reads and commands against the vendor API for an
// already-resolved device.
type Upstream interface {
	State(ctx context.Context, d Device) (State, error)
	Turn(ctx context.Context, d Device, power PowerState) error
	SetColor(ctx context.Context, d Device, c Color) error
}

// CommandSink is notified after the upstream accepted a command.
type CommandSink interface {
	DeviceCommanded(ctx context.Context, cmd Command) error
}

// StateSink is notified after a live state read.
type StateSink interface {
	DeviceStateRead(ctx context.Context, st State) error
}

// Controller resolves device identifiers through the directory cache and
// forwards state reads and commands to the upstream API.
//
// It holds no per-device state. Sinks are optional observers; their errors
// are logged and never fail the call.
//
// Sinks must be registered before the Controller is shared between goroutines.
type Controller struct {
	cache    DirectoryCache
	upstream Upstream
	logger   Logger

	commandSinks []CommandSink
	stateSinks   []StateSink

	now func() time.Time
}

// NewController creates a Controller over the given cache and upstream client.
func NewController(cache DirectoryCache, upstream Upstream) *Controller {
	return &Controller{
		cache:    cache,
		upstream: upstream,
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

// AddCommandSink registers an observer for accepted commands.
func (c *Controller) AddCommandSink(s CommandSink) {
	c.commandSinks = append(c.commandSinks, s)
}

// AddStateSink registers an observer for live state reads.
func (c *Controller) AddStateSink(s StateSink) {
	c.stateSinks = append(c.stateSinks, s)
}

// ListDevices returns the current directory from the cache.
func (c *Controller) ListDevices(ctx context.Context) (Directory, error) {
	return c.cache.List(ctx)
}

// Resolve finds the first device whose ID equals id exactly.
//
// Directories are household-sized, so this is a linear scan over a fresh
// listing rather than an index.
//
// Returns:
//   - Device: The matching device
//   - error: *NotFoundError if no device matches, or the listing error
func (c *Controller) Resolve(ctx context.Context, id string) (Device, error) {
	dir, err := c.ListDevices(ctx)
	if err != nil {
		return Device{}, err
	}

	d, ok := lo.Find(dir, func(d Device) bool {
		return d.ID == id
	})
	if !ok {
		return Device{}, &NotFoundError{ID: id}
	}
	return d, nil
}

// GetState resolves id and reads its live state from the upstream API.
func (c *Controller) GetState(ctx context.Context, id string) (State, error) {
	d, err := c.Resolve(ctx, id)
	if err != nil {
		return State{}, err
	}

	st, err := c.upstream.State(ctx, d)
	if err != nil {
		return State{}, fmt.Errorf("reading state of %s: %w", d.ID, err)
	}
	if st.Name == "" {
		st.Name = d.Name
	}

	for _, s := range c.stateSinks {
		if err := s.DeviceStateRead(ctx, st); err != nil {
			c.logger.Warn("state sink failed", "device", d.ID, "error", err)
		}
	}
	return st, nil
}

// SetPower resolves id and switches it on or off.
func (c *Controller) SetPower(ctx context.Context, id string, power PowerState) error {
	d, err := c.Resolve(ctx, id)
	if err != nil {
		return err
	}

	if err := c.upstream.Turn(ctx, d, power); err != nil {
		return fmt.Errorf("turning %s %s: %w", d.ID, power, err)
	}

	c.logger.Info("device power set", "device", d.ID, "state", power)
	c.notifyCommand(ctx, d, CommandTurn, power)
	return nil
}

// SetColor resolves id and sets its colour.
func (c *Controller) SetColor(ctx context.Context, id string, color Color) error {
	d, err := c.Resolve(ctx, id)
	if err != nil {
		return err
	}

	if err := c.upstream.SetColor(ctx, d, color); err != nil {
		return fmt.Errorf("setting color of %s: %w", d.ID, err)
	}

	c.logger.Info("device color set", "device", d.ID, "color", color.Hex())
	c.notifyCommand(ctx, d, CommandColor, color)
	return nil
}

// HealthCheck probes the directory cache backend.
func (c *Controller) HealthCheck(ctx context.Context) error {
	return c.cache.HealthCheck(ctx)
}

func (c *Controller) notifyCommand(ctx context.Context, d Device, name string, value any) {
	if len(c.commandSinks) == 0 {
		return
	}

	cmd := Command{
		DeviceID:  d.ID,
		Model:     d.Model,
		Name:      name,
		Value:     value,
		IssuedAt:  c.now().UTC(),
		RequestID: RequestIDFromContext(ctx),
	}
	for _, s := range c.commandSinks {
		if err := s.DeviceCommanded(ctx, cmd); err != nil {
			c.logger.Warn("command sink failed", "device", d.ID, "command", name, "error", err)
		}
	}
}
