package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats/view"
)

type fakeChecker struct {
	mu    sync.Mutex
	err   error
	calls atomic.Int32
}

func (f *fakeChecker) HealthCheck(context.Context) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeChecker) set(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Info(msg string, _ ...any) { l.add("info: " + msg) }
func (l *recordingLogger) Warn(msg string, _ ...any) { l.add("warn: " + msg) }

func (l *recordingLogger) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, s)
}

func TestNewProbe(t *testing.T) {
	t.Run("empty schedule is disabled", func(t *testing.T) {
		_, err := NewProbe(&fakeChecker{}, "")
		assert.ErrorIs(t, err, ErrDisabled)
	})

	t.Run("invalid schedule", func(t *testing.T) {
		_, err := NewProbe(&fakeChecker{}, "every now and then")
		assert.Error(t, err)
	})

	t.Run("valid schedules", func(t *testing.T) {
		for _, spec := range []string{"@every 30s", "0 */5 * * * *", "@hourly"} {
			_, err := NewProbe(&fakeChecker{}, spec)
			assert.NoError(t, err, spec)
		}
	})
}

func TestProbe_CheckTransitions(t *testing.T) {
	checker := &fakeChecker{}
	logger := &recordingLogger{}
	p, err := NewProbe(checker, "@every 1h")
	require.NoError(t, err)
	p.SetLogger(logger)
	ctx := context.Background()

	assert.False(t, p.Healthy(), "unknown before the first check")

	require.NoError(t, p.Check(ctx))
	require.NoError(t, p.Check(ctx))
	assert.True(t, p.Healthy())

	checker.set(errors.New("connection refused"))
	assert.Error(t, p.Check(ctx))
	assert.Error(t, p.Check(ctx))
	assert.False(t, p.Healthy())

	checker.set(nil)
	require.NoError(t, p.Check(ctx))

	assert.Equal(t, []string{
		"info: cache backend healthy",
		"warn: cache backend unhealthy",
		"info: cache backend recovered",
	}, logger.lines)
}

func TestProbe_RecordsGauge(t *testing.T) {
	require.NoError(t, view.Register(CacheHealthyView))
	t.Cleanup(func() { view.Unregister(CacheHealthyView) })

	checker := &fakeChecker{err: errors.New("down")}
	p, err := NewProbe(checker, "@every 1h")
	require.NoError(t, err)

	_ = p.Check(context.Background())

	rows, err := view.RetrieveData(CacheHealthyView.Name)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	last, ok := rows[0].Data.(*view.LastValueData)
	require.True(t, ok)
	assert.Equal(t, 0.0, last.Value)

	checker.set(nil)
	_ = p.Check(context.Background())

	rows, err = view.RetrieveData(CacheHealthyView.Name)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rows[0].Data.(*view.LastValueData).Value)
}

func TestProbe_StartRunsOnSchedule(t *testing.T) {
	checker := &fakeChecker{}
	p, err := NewProbe(checker, "@every 1s")
	require.NoError(t, err)

	p.Start()
	defer p.Stop()

	assert.Eventually(t, func() bool {
		return checker.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
	assert.Eventually(t, p.Healthy, time.Second, 10*time.Millisecond)
}
