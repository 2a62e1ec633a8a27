package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

// checkTimeout bounds one health check.
const checkTimeout = 5 * time.Second

// ErrDisabled is returned by NewProbe for an empty schedule.
var ErrDisabled = errors.New("monitor: schedule is empty")

// MCacheHealthy is 1 after a successful check and 0 after a failed one.
var MCacheHealthy = stats.Int64("cache/healthy", "Result of the last cache backend health check", stats.UnitDimensionless)

// CacheHealthyView exposes the latest MCacheHealthy value.
var CacheHealthyView = &view.View{
	Name:        "cache/healthy",
	Measure:     MCacheHealthy,
	Description: "1 if the last cache health check passed, else 0",
	Aggregation: view.LastValue(),
}

// Checker is anything with a health check, such as *device.Controller.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// Logger defines the logging interface used by the Probe.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

type status int

const (
	statusUnknown status = iota
	statusHealthy
	statusUnhealthy
)

// Probe schedules health checks and tracks transitions.
type Probe struct {
	checker  Checker
	schedule string
	cron     *cron.Cron
	logger   Logger

	mu   sync.Mutex
	last status
}

// NewProbe validates schedule and returns a stopped Probe.
//
// Parameters:
//   - checker: The health check to run
//   - schedule: A cron spec such as "@every 30s" or "0 */5 * * * *"
//
// Returns:
//   - *Probe: Ready to Start
//   - error: ErrDisabled for an empty schedule, or the cron parse error
func NewProbe(checker Checker, schedule string) (*Probe, error) {
	if schedule == "" {
		return nil, ErrDisabled
	}

	p := &Probe{
		checker:  checker,
		schedule: schedule,
		cron:     cron.New(),
		logger:   noopLogger{},
	}
	if err := p.cron.AddFunc(schedule, p.run); err != nil {
		return nil, fmt.Errorf("parsing monitor schedule %q: %w", schedule, err)
	}
	return p, nil
}

// SetLogger sets the logger for the probe. Call it before Start.
func (p *Probe) SetLogger(logger Logger) {
	p.logger = logger
}

// Start begins running checks on the schedule.
func (p *Probe) Start() {
	p.logger.Info("cache monitor started", "schedule", p.schedule)
	p.cron.Start()
}

// Stop halts the schedule. A check already in flight finishes on its own.
func (p *Probe) Stop() {
	p.cron.Stop()
}

// Healthy reports whether the most recent check passed.
func (p *Probe) Healthy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last == statusHealthy
}

func (p *Probe) run() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	_ = p.Check(ctx)
}

// Check runs one health check now, records the gauge and logs a
// transition if the result differs from the previous check.
func (p *Probe) Check(ctx context.Context) error {
	err := p.checker.HealthCheck(ctx)

	next := statusHealthy
	var gauge int64 = 1
	if err != nil {
		next = statusUnhealthy
		gauge = 0
	}
	stats.Record(ctx, MCacheHealthy.M(gauge))

	p.mu.Lock()
	prev := p.last
	p.last = next
	p.mu.Unlock()

	switch {
	case prev == next:
	case next == statusUnhealthy:
		p.logger.Warn("cache backend unhealthy", "error", err)
	case prev == statusUnhealthy:
		p.logger.Info("cache backend recovered")
	default:
		p.logger.Info("cache backend healthy")
	}
	return err
}
