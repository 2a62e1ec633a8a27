package govee

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for Govee API calls.
var (
	// ErrUnauthorized indicates the API key was rejected (401/403).
	ErrUnauthorized = errors.New("govee: unauthorized")

	// ErrRateLimited indicates the API returned 429.
	ErrRateLimited = errors.New("govee: rate limited")

	// ErrRequestFailed indicates a transport failure or a non-success reply.
	ErrRequestFailed = errors.New("govee: request failed")

	// ErrMalformedResponse indicates a reply body that could not be decoded.
	ErrMalformedResponse = errors.New("govee: malformed response")

	// ErrUnsupportedCommand indicates the device does not accept the command.
	// It is returned before any request is sent.
	ErrUnsupportedCommand = errors.New("govee: command not supported by device")
)

// APIError is a non-success reply from the Govee API.
//
// Status is the HTTP status; Code and Message come from the JSON envelope
// when one was present.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("govee: api error %d (code %d): %s", e.Status, e.Code, msg)
}

// Is maps the reply onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests || e.Code == http.StatusTooManyRequests
	case ErrRequestFailed:
		return true
	}
	return false
}
