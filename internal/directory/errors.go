package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/redis/go-redis/v9"
)

// Kind classifies a directory cache failure.
type Kind int

// Failure kinds. Only KindWrite on the miss path is swallowed by List;
// every other kind is returned to the caller.
const (
	KindConnection Kind = iota + 1
	KindRead
	KindWrite
	KindSerialization
	KindUpstream
	KindHealthCheck
)

var kindNames = map[Kind]string{
	KindConnection:    "connection",
	KindRead:          "read",
	KindWrite:         "write",
	KindSerialization: "serialization",
	KindUpstream:      "upstream",
	KindHealthCheck:   "health check",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinel errors, one per Kind. An *Error matches the sentinel of its kind:
//
//	if errors.Is(err, directory.ErrConnection) {
//	    // cache backend unreachable
//	}
var (
	ErrConnection    = errors.New("directory: cache backend unreachable")
	ErrRead          = errors.New("directory: cache read failed")
	ErrWrite         = errors.New("directory: cache write failed")
	ErrSerialization = errors.New("directory: cached payload is not a directory")
	ErrUpstream      = errors.New("directory: upstream fetch failed")
	ErrHealthCheck   = errors.New("directory: health check failed")
)

var kindSentinels = map[Kind]error{
	KindConnection:    ErrConnection,
	KindRead:          ErrRead,
	KindWrite:         ErrWrite,
	KindSerialization: ErrSerialization,
	KindUpstream:      ErrUpstream,
	KindHealthCheck:   ErrHealthCheck,
}

// Error is a classified directory cache failure carrying its cause.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("directory: %s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("directory: %s error on %q: %v", e.Kind, e.Key, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// classify wraps a backend error, promoting transport failures to
// KindConnection and leaving command failures as fallback.
func classify(err error, key string, fallback Kind) *Error {
	kind := fallback
	if isConnectionError(err) {
		kind = KindConnection
	}
	return &Error{Kind: kind, Key: key, Err: err}
}

// isConnectionError reports whether err means the backend could not be
// reached, as opposed to it rejecting a command. Timeouts count as
// connection failures.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	switch {
	case errors.As(err, &netErr):
		return true
	case errors.Is(err, redis.ErrClosed),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}
