package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/govee-web/internal/device"
)

// DefaultQueueSize is the number of entries buffered before new ones are dropped.
const DefaultQueueSize = 256

// writeTimeout bounds a single background insert.
const writeTimeout = 5 * time.Second

var (
	// ErrQueueFull is returned when an entry is dropped because the writer is behind.
	ErrQueueFull = errors.New("audit: queue full, entry dropped")

	// ErrClosed is returned for commands recorded after Close.
	ErrClosed = errors.New("audit: recorder closed")
)

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

// Recorder writes accepted commands to a Repository asynchronously.
// It implements device.CommandSink.
type Recorder struct {
	repo   Repository
	logger Logger

	mu     sync.RWMutex
	closed bool
	queue  chan *Entry
	done   chan struct{}
}

var _ device.CommandSink = (*Recorder)(nil)

// NewRecorder starts the background writer. size <= 0 uses DefaultQueueSize.
// Call Close to flush queued entries and stop the writer.
func NewRecorder(repo Repository, size int) *Recorder {
	if size <= 0 {
		size = DefaultQueueSize
	}
	r := &Recorder{
		repo:   repo,
		logger: noopLogger{},
		queue:  make(chan *Entry, size),
		done:   make(chan struct{}),
	}
	go r.drain()
	return r
}

// SetLogger sets the logger used for failed writes.
// Call it before the first command is recorded.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// DeviceCommanded enqueues cmd without blocking.
func (r *Recorder) DeviceCommanded(_ context.Context, cmd device.Command) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}

	entry := &Entry{
		DeviceID:  cmd.DeviceID,
		Model:     cmd.Model,
		Action:    cmd.Name,
		Value:     valueString(cmd.Value),
		RequestID: cmd.RequestID,
		CreatedAt: cmd.IssuedAt,
	}

	select {
	case r.queue <- entry:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting entries, writes everything already queued and
// returns once the writer has exited. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	<-r.done
	return nil
}

func (r *Recorder) drain() {
	defer close(r.done)
	for entry := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.repo.Create(ctx, entry); err != nil {
			r.logger.Error("audit write failed",
				"device", entry.DeviceID,
				"action", entry.Action,
				"error", err,
			)
		}
		cancel()
	}
}

func valueString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
