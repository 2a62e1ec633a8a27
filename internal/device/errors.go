package device

import (
	"errors"
	"fmt"
)

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID is not in the directory.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrInvalidInput is the parent of all malformed-command errors.
	ErrInvalidInput = errors.New("device: invalid input")

	// ErrInvalidColor is returned when a colour string cannot be parsed.
	ErrInvalidColor = errors.New("device: invalid color")

	// ErrInvalidPowerState is returned for power states other than on/off.
	ErrInvalidPowerState = errors.New("device: invalid power state")
)

// NotFoundError carries the identifier that failed to resolve.
// It matches ErrDeviceNotFound.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("device: %q not found", e.ID)
}

// Is reports whether target is ErrDeviceNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrDeviceNotFound
}

// InvalidInputError describes a rejected command argument.
// It matches ErrInvalidInput as well as its specific cause.
type InvalidInputError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%v: %s %q", e.Err, e.Field, e.Value)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
