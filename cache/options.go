package cache

import (
	"fmt"

	"github.com/go-kit/log"

	"github.com/IvanBrykalov/blockcache/device"
)

const (
	// DefaultSlots is the pool size used when Options.Slots is zero.
	DefaultSlots = 30
	// DefaultBlockSize is the block size used when Options.BlockSize is zero.
	DefaultBlockSize = 1024
)

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// Hooks are called outside the metadata lock and must be safe for
// concurrent use.
type Metrics interface {
	Hit()
	Miss()
	// Evict is called when a miss recycles a slot that cached another block.
	Evict()
	DeviceRead()
	DeviceWrite()
	// Exhausted is called when Read finds no free slot.
	Exhausted()
	// Busy reports the number of referenced slots. Concurrent callers may
	// deliver snapshots out of order, so the value can briefly lag.
	Busy(n int)
}

// Options configures a Cache. Zero values are safe except Device;
// defaults are applied in New():
//   - Slots == 0     => DefaultSlots
//   - BlockSize == 0 => DefaultBlockSize
//   - nil Metrics    => NoopMetrics
//   - nil Logger     => log.NewNopLogger()
type Options struct {
	// Slots is the fixed number of cached blocks. The pool never grows.
	Slots int

	// BlockSize is the size in bytes of every block on every device.
	BlockSize int

	// Device performs the block I/O. Required.
	Device device.Device

	// Observability
	Metrics Metrics
	Logger  log.Logger

	// PanicOnFatal makes exhaustion, misuse of a Buf and device failures
	// panic instead of returning an error.
	PanicOnFatal bool
}

// withDefaults validates opt and fills in defaults.
func (opt Options) withDefaults() (Options, error) {
	if opt.Slots == 0 {
		opt.Slots = DefaultSlots
	}
	if opt.BlockSize == 0 {
		opt.BlockSize = DefaultBlockSize
	}
	switch {
	case opt.Slots < 0:
		return opt, fmt.Errorf("%w: Slots must be > 0, got %d", ErrInvalidOptions, opt.Slots)
	case opt.BlockSize < 0:
		return opt, fmt.Errorf("%w: BlockSize must be > 0, got %d", ErrInvalidOptions, opt.BlockSize)
	case opt.Device == nil:
		return opt, fmt.Errorf("%w: Device is required", ErrInvalidOptions)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = log.NewNopLogger()
	}
	return opt, nil
}
