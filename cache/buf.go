package cache

import (
	"github.com/go-kit/log/level"

	"github.com/IvanBrykalov/blockcache/device"
	"github.com/IvanBrykalov/blockcache/internal/sleeplock"
)

// Buf is the capability to one locked cache slot, returned by Read. Holding
// a live Buf proves possession of the slot's content lock.
//
// A Buf must be used by one goroutine at a time and is dead after Release:
// every later method reports ErrNotHeld, and Data returns nil.
type Buf struct {
	c       *Cache
	i       int
	tok     sleeplock.Token
	dev     device.DeviceID
	blockno device.BlockNo
}

// Dev returns the device of the cached block.
func (b *Buf) Dev() device.DeviceID { return b.dev }

// BlockNo returns the block number of the cached block.
func (b *Buf) BlockNo() device.BlockNo { return b.blockno }

// Data returns the block contents. The slice aliases the cache slot: it may
// be read and modified until Release and must not be retained past it.
func (b *Buf) Data() []byte {
	if !b.held() {
		return nil
	}
	return b.c.pool.slots[b.i].data
}

// Write stores the buffer contents to the device synchronously. It does not
// release the buffer, including when the device fails.
func (b *Buf) Write() error {
	if !b.held() {
		return b.misuse("write")
	}
	c := b.c
	if err := c.opt.Device.WriteBlock(b.dev, b.blockno, c.pool.slots[b.i].data); err != nil {
		level.Warn(c.opt.Logger).Log("msg", "device write failed", "dev", b.dev, "block", b.blockno, "err", err)
		return c.fatal(&DeviceError{Op: "write", Dev: b.dev, BlockNo: b.blockno, Err: err})
	}
	c.writes.Add(1)
	c.opt.Metrics.DeviceWrite()
	return nil
}

// Release unlocks the buffer and drops its reference. Once no references
// remain the block becomes the most recently used candidate for reuse.
func (b *Buf) Release() error {
	if !b.held() {
		return b.misuse("release")
	}
	busy, err := b.c.pool.release(b.i, b.tok)
	if err != nil {
		return b.misuse("release")
	}
	b.c.opt.Metrics.Busy(busy)
	return nil
}

// Pin adds a reference that keeps the block cached after Release, until a
// matching Unpin. Pinned blocks are never chosen for reuse.
func (b *Buf) Pin() error {
	if !b.held() {
		return b.misuse("pin")
	}
	b.c.pool.pin(b.i)
	return nil
}

// Unpin drops a reference added by Pin, possibly through another Buf of the
// same block.
func (b *Buf) Unpin() error {
	if !b.held() {
		return b.misuse("unpin")
	}
	if err := b.c.pool.unpin(b.i); err != nil {
		return b.misuse("unpin")
	}
	return nil
}

func (b *Buf) held() bool {
	return b != nil && b.c != nil && b.c.pool.slots[b.i].lock.Holding(b.tok)
}

func (b *Buf) misuse(op string) error {
	if b == nil || b.c == nil {
		return ErrNotHeld
	}
	level.Error(b.c.opt.Logger).Log("msg", "buffer not held", "op", op, "dev", b.dev, "block", b.blockno)
	return b.c.fatal(ErrNotHeld)
}
