package cache

import (
	"errors"
	"fmt"

	"github.com/IvanBrykalov/blockcache/device"
)

var (
	// ErrResourceExhausted is returned by Read when every slot is referenced.
	// The pool is too small for the workload or references are leaking.
	ErrResourceExhausted = errors.New("cache: no free slots")

	// ErrNotHeld is returned when a Buf is used without holding its slot:
	// after Release, on a zero Buf, or by an Unpin with no matching Pin.
	ErrNotHeld = errors.New("cache: buffer not held")

	// ErrDeviceIO is matched by every *DeviceError.
	ErrDeviceIO = errors.New("cache: device I/O failed")

	// ErrInvalidOptions is returned by New for unusable Options.
	ErrInvalidOptions = errors.New("cache: invalid options")
)

// DeviceError reports a failed device transfer. The operation is not retried.
type DeviceError struct {
	Op      string // "read" or "write"
	Dev     device.DeviceID
	BlockNo device.BlockNo
	Err     error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("cache: %s dev %d block %d: %v", e.Op, e.Dev, e.BlockNo, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDeviceIO) true for any DeviceError.
func (e *DeviceError) Is(target error) bool { return target == ErrDeviceIO }
