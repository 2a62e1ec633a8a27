package directory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/stats/view"

	"github.com/nerrad567/govee-web/internal/device"
)

// countingFetcher returns a fixed directory and counts calls.
type countingFetcher struct {
	dir   device.Directory
	err   error
	calls atomic.Int32
}

func (f *countingFetcher) FetchDirectory(context.Context) (device.Directory, error) {
	f.calls.Add(1)
	return f.dir, f.err
}

// failCommandHook makes every command with the given name fail.
type failCommandHook struct {
	name string
	err  error
}

func (h failCommandHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h failCommandHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == h.name {
			cmd.SetErr(h.err)
			return h.err
		}
		return next(ctx, cmd)
	}
}

func (h failCommandHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

// recordingLogger keeps warn messages.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}
func (l *recordingLogger) Error(string, ...any) {}
func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func sampleDirectory() device.Directory {
	return device.Directory{
		{ID: "bulb1", Model: "H6003", Name: "Desk", Controllable: true, Retrievable: true, SupportedCommands: []string{"turn", "color"}},
		{ID: "strip", Model: "H6159", Name: "Shelf", Controllable: true, Retrievable: true, SupportedCommands: []string{"turn"}},
	}
}

func newTestCache(t *testing.T, fetcher Fetcher, ttl time.Duration) (*RedisCache, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1, DialTimeout: time.Second})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisCache(rdb, fetcher, ttl), mr, rdb
}

func TestList_HitServesCacheWithoutUpstream(t *testing.T) {
	fetcher := &countingFetcher{dir: device.Directory{{ID: "other"}}}
	cache, mr, _ := newTestCache(t, fetcher, 300*time.Second)

	require.NoError(t, mr.Set(DirectoryKey, `[{"device":"bulb1","model":"H6003","deviceName":"Desk","controllable":true,"retrievable":true,"supportCmds":["turn","color"]},{"device":"strip","model":"H6159","deviceName":"Shelf","controllable":true,"retrievable":true,"supportCmds":["turn"]}]`))

	dir, err := cache.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, sampleDirectory(), dir)
	assert.Zero(t, fetcher.calls.Load())
}

func TestList_MissFetchesOnceAndStoresWithTTL(t *testing.T) {
	fetcher := &countingFetcher{dir: sampleDirectory()}
	cache, mr, _ := newTestCache(t, fetcher, 300*time.Second)

	dir, err := cache.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, sampleDirectory(), dir)
	assert.EqualValues(t, 1, fetcher.calls.Load())

	require.True(t, mr.Exists(DirectoryKey))
	assert.Equal(t, 300*time.Second, mr.TTL(DirectoryKey))
	stored, err := mr.Get(DirectoryKey)
	require.NoError(t, err)
	assert.Contains(t, stored, `"device":"bulb1"`)
}

func TestList_IdempotentWithinTTL(t *testing.T) {
	fetcher := &countingFetcher{dir: sampleDirectory()}
	cache, _, _ := newTestCache(t, fetcher, time.Minute)

	first, err := cache.List(context.Background())
	require.NoError(t, err)
	second, err := cache.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestList_RefetchesAfterExpiry(t *testing.T) {
	fetcher := &countingFetcher{dir: sampleDirectory()}
	cache, mr, _ := newTestCache(t, fetcher, 10*time.Second)

	_, err := cache.List(context.Background())
	require.NoError(t, err)

	mr.FastForward(11 * time.Second)
	require.False(t, mr.Exists(DirectoryKey))

	_, err = cache.List(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, fetcher.calls.Load())
}

func TestList_WriteFailureStillReturnsFreshDirectory(t *testing.T) {
	fetcher := &countingFetcher{dir: sampleDirectory()}
	cache, mr, rdb := newTestCache(t, fetcher, time.Minute)
	rdb.AddHook(failCommandHook{name: "setex", err: errors.New("OOM command not allowed")})
	logger := &recordingLogger{}
	cache.SetLogger(logger)

	dir, err := cache.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, sampleDirectory(), dir)
	assert.False(t, mr.Exists(DirectoryKey))
	assert.Len(t, logger.warns, 1)
}

func TestList_BackendDownIsConnectionErrorWithoutUpstream(t *testing.T) {
	fetcher := &countingFetcher{dir: sampleDirectory()}
	cache, mr, _ := newTestCache(t, fetcher, time.Minute)
	mr.Close()

	_, err := cache.List(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.Equal(t, KindConnection, KindOf(err))
	assert.Zero(t, fetcher.calls.Load())
}

func TestList_ReadFailureIsReadError(t *testing.T) {
	fetcher := &countingFetcher{dir: sampleDirectory()}
	cache, mr, _ := newTestCache(t, fetcher, time.Minute)

	// A list under the directory key makes GET fail with WRONGTYPE.
	_, err := mr.Lpush(DirectoryKey, "x")
	require.NoError(t, err)

	_, err = cache.List(context.Background())

	assert.ErrorIs(t, err, ErrRead)
	assert.Zero(t, fetcher.calls.Load())
}

func TestList_CorruptPayloadIsSerializationError(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "not json"},
		{name: "wrong shape", payload: `{"devices":[]}`},
		{name: "truncated", payload: `[{"device":"bulb1"`},
		{name: "null", payload: `null`},
		{name: "null entry", payload: `[null]`},
		{name: "empty entry", payload: `[{}]`},
		{name: "unrelated fields", payload: `[{"unrelated":1}]`},
		{name: "missing model", payload: `[{"device":"bulb1"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &countingFetcher{dir: sampleDirectory()}
			cache, mr, _ := newTestCache(t, fetcher, time.Minute)
			require.NoError(t, mr.Set(DirectoryKey, tt.payload))

			_, err := cache.List(context.Background())

			assert.ErrorIs(t, err, ErrSerialization)
			assert.Zero(t, fetcher.calls.Load())
			// The corrupt entry is left alone.
			got, _ := mr.Get(DirectoryKey)
			assert.Equal(t, tt.payload, got)
		})
	}
}

func TestList_UpstreamFailurePropagates(t *testing.T) {
	upErr := errors.New("401 unauthorized")
	fetcher := &countingFetcher{err: upErr}
	cache, mr, _ := newTestCache(t, fetcher, time.Minute)

	_, err := cache.List(context.Background())

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, upErr)
	assert.False(t, mr.Exists(DirectoryKey))
}

func TestList_EmptyDirectoryIsCached(t *testing.T) {
	fetcher := &countingFetcher{dir: nil}
	cache, mr, _ := newTestCache(t, fetcher, time.Minute)

	dir, err := cache.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, dir)
	assert.Empty(t, dir)
	got, _ := mr.Get(DirectoryKey)
	assert.Equal(t, "[]", got)
}

func TestList_ConcurrentMissesEachFetch(t *testing.T) {
	const callers = 4

	var entered sync.WaitGroup
	entered.Add(callers)
	release := make(chan struct{})
	var calls atomic.Int32

	fetcher := FetcherFunc(func(context.Context) (device.Directory, error) {
		calls.Add(1)
		entered.Done()
		<-release
		return sampleDirectory(), nil
	})
	cache, mr, _ := newTestCache(t, fetcher, time.Minute)

	var done sync.WaitGroup
	for range callers {
		done.Add(1)
		go func() {
			defer done.Done()
			dir, err := cache.List(context.Background())
			assert.NoError(t, err)
			assert.Len(t, dir, 2)
		}()
	}

	entered.Wait()
	close(release)
	done.Wait()

	assert.EqualValues(t, callers, calls.Load())
	assert.Equal(t, time.Minute, mr.TTL(DirectoryKey))
}

func TestHealthCheck(t *testing.T) {
	cache, mr, _ := newTestCache(t, &countingFetcher{}, time.Minute)

	require.NoError(t, cache.HealthCheck(context.Background()))

	got, err := mr.Get(HealthKey)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Zero(t, mr.TTL(HealthKey))

	mr.Close()
	err = cache.HealthCheck(context.Background())
	assert.ErrorIs(t, err, ErrConnection)
}

func TestHealthCheck_WriteRejected(t *testing.T) {
	cache, _, rdb := newTestCache(t, &countingFetcher{}, time.Minute)
	rdb.AddHook(failCommandHook{name: "set", err: errors.New("READONLY You can't write against a read only replica")})

	err := cache.HealthCheck(context.Background())

	assert.ErrorIs(t, err, ErrHealthCheck)
	assert.NotErrorIs(t, err, ErrConnection)
}

func TestNewRedisCache_DefaultTTL(t *testing.T) {
	cache := NewRedisCache(nil, &countingFetcher{}, 0)
	assert.Equal(t, DefaultTTL, cache.TTL())
}

func TestList_RecordsHitAndMissMetrics(t *testing.T) {
	require.NoError(t, view.Register(CacheHitsView, CacheMissesView))
	t.Cleanup(func() { view.Unregister(CacheHitsView, CacheMissesView) })

	cache, _, _ := newTestCache(t, &countingFetcher{dir: sampleDirectory()}, time.Minute)
	_, err := cache.List(context.Background())
	require.NoError(t, err)
	_, err = cache.List(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, countOf(t, CacheMissesView.Name))
	assert.EqualValues(t, 1, countOf(t, CacheHitsView.Name))
}

func countOf(t *testing.T, name string) int64 {
	t.Helper()
	rows, err := view.RetrieveData(name)
	require.NoError(t, err)
	var total int64
	for _, r := range rows {
		total += r.Data.(*view.CountData).Value
	}
	return total
}
