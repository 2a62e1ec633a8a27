package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/govee-web/internal/device"
)

// memRepo is an in-memory Repository. If block is set, Create waits on it.
type memRepo struct {
	mu      sync.Mutex
	entries []Entry
	block   chan struct{}
	err     error
}

func (m *memRepo) Create(_ context.Context, e *Entry) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memRepo) List(context.Context, Filter) (*ListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &ListResult{Entries: append([]Entry(nil), m.entries...), Total: len(m.entries)}, nil
}

type errLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *errLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msg)
}

func TestRecorder_WritesCommands(t *testing.T) {
	repo := &memRepo{}
	rec := NewRecorder(repo, 4)

	issued := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, rec.DeviceCommanded(context.Background(), device.Command{
		DeviceID: "bulb1", Model: "H6159", Name: device.CommandTurn,
		Value: device.PowerOn, IssuedAt: issued, RequestID: "req-7",
	}))
	require.NoError(t, rec.DeviceCommanded(context.Background(), device.Command{
		DeviceID: "bulb1", Model: "H6159", Name: device.CommandColor,
		Value: device.Color{R: 255, G: 128},
	}))
	require.NoError(t, rec.Close())

	require.Len(t, repo.entries, 2)
	assert.Equal(t, Entry{
		DeviceID: "bulb1", Model: "H6159", Action: "turn", Value: "on",
		RequestID: "req-7", CreatedAt: issued,
	}, repo.entries[0])
	assert.Equal(t, "#ff8000", repo.entries[1].Value)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	repo := &memRepo{block: make(chan struct{})}
	rec := NewRecorder(repo, 1)
	cmd := device.Command{DeviceID: "bulb1", Name: device.CommandTurn, Value: device.PowerOff}

	// The writer takes the first entry and blocks in Create, the second
	// fills the queue and eventually a third has nowhere to go.
	var dropped bool
	for range 10 {
		if err := rec.DeviceCommanded(context.Background(), cmd); errors.Is(err, ErrQueueFull) {
			dropped = true
			break
		}
	}
	assert.True(t, dropped, "expected ErrQueueFull once the queue filled")

	close(repo.block)
	require.NoError(t, rec.Close())
}

func TestRecorder_AfterClose(t *testing.T) {
	rec := NewRecorder(&memRepo{}, 0)
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())

	err := rec.DeviceCommanded(context.Background(), device.Command{DeviceID: "x", Name: "turn"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRecorder_LogsWriteFailures(t *testing.T) {
	repo := &memRepo{err: errors.New("disk full")}
	logger := &errLogger{}
	rec := NewRecorder(repo, 2)
	rec.SetLogger(logger)

	require.NoError(t, rec.DeviceCommanded(context.Background(), device.Command{DeviceID: "x", Name: "turn"}))
	require.NoError(t, rec.Close())

	assert.Equal(t, []string{"audit write failed"}, logger.msgs)
}
