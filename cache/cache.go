package cache

import (
	"sync/atomic"

	"github.com/go-kit/log/level"

	"github.com/IvanBrykalov/blockcache/device"
	"github.com/IvanBrykalov/blockcache/internal/sleeplock"
	"github.com/IvanBrykalov/blockcache/internal/util"
)

// Cache is a fixed pool of block buffers in front of a device.
// All methods are safe for concurrent use by multiple goroutines.
type Cache struct {
	pool *pool
	opt  Options

	tokens atomic.Uint64 // last holder token handed out

	_      util.CacheLinePad
	reads  util.PaddedAtomicUint64
	writes util.PaddedAtomicUint64
}

// Stats is a point-in-time view of a Cache.
type Stats struct {
	Slots     int // pool size
	Busy      int // slots with at least one reference
	Cached    int // slots currently caching a block
	Hits      uint64
	Misses    uint64
	Evictions uint64 // misses that displaced another block
	Reads     uint64 // blocks read from the device
	Writes    uint64 // blocks written to the device
}

// New constructs a Cache with the provided Options. Every slot starts empty
// and the slot array is never resized afterwards.
func New(opt Options) (*Cache, error) {
	opt, err := opt.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Cache{
		pool: newPool(opt.Slots, opt.BlockSize),
		opt:  opt,
	}, nil
}

// Read returns a locked Buf holding the contents of block blockno of dev,
// loading it from the device if the cached copy is not valid. Read waits
// while another Buf holds the same block.
//
// The caller has exclusive use of the block until it calls Release.
// Reading from device.NoDevice fails with a *DeviceError wrapping
// device.ErrNoDevice without touching the pool.
func (c *Cache) Read(dev device.DeviceID, blockno device.BlockNo) (*Buf, error) {
	if dev == device.NoDevice {
		// NoDevice marks empty slots and must never become a cached key.
		return nil, c.fatal(&DeviceError{Op: "read", Dev: dev, BlockNo: blockno, Err: device.ErrNoDevice})
	}
	tok := sleeplock.Token(c.tokens.Add(1))
	g, err := c.pool.get(key{dev: dev, blockno: blockno}, tok)
	if err != nil {
		c.opt.Metrics.Exhausted()
		level.Error(c.opt.Logger).Log("msg", "no free buffers", "dev", dev, "block", blockno, "slots", len(c.pool.slots))
		return nil, c.fatal(err)
	}
	c.observe(g)

	b := &Buf{c: c, i: g.i, tok: tok, dev: dev, blockno: blockno}
	s := &c.pool.slots[g.i]
	if !s.valid {
		if err := c.opt.Device.ReadBlock(dev, blockno, s.data); err != nil {
			// Give the slot back still invalid; the next Read retries the load.
			if busy, rerr := c.pool.release(g.i, tok); rerr == nil {
				c.opt.Metrics.Busy(busy)
			}
			derr := &DeviceError{Op: "read", Dev: dev, BlockNo: blockno, Err: err}
			level.Warn(c.opt.Logger).Log("msg", "device read failed", "dev", dev, "block", blockno, "err", err)
			return nil, c.fatal(derr)
		}
		s.valid = true
		c.reads.Add(1)
		c.opt.Metrics.DeviceRead()
	}
	return b, nil
}

// Invalidate forgets every cached block of dev that no Buf references and
// returns how many were dropped. Referenced blocks stay cached. Call it
// before unmounting or replacing a device.
func (c *Cache) Invalidate(dev device.DeviceID) int {
	n := c.pool.invalidate(dev)
	level.Debug(c.opt.Logger).Log("msg", "invalidated device", "dev", dev, "slots", n)
	return n
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	var st Stats
	c.pool.snapshot(&st)
	st.Reads = c.reads.Load()
	st.Writes = c.writes.Load()
	return st
}

// Len returns the number of slots in the pool.
func (c *Cache) Len() int { return len(c.pool.slots) }

// BlockSize returns the size of every buffer.
func (c *Cache) BlockSize() int { return c.opt.BlockSize }

// ---- helpers ----

func (c *Cache) observe(g grant) {
	if g.hit {
		c.opt.Metrics.Hit()
	} else {
		c.opt.Metrics.Miss()
	}
	if g.evicted != noKey {
		c.opt.Metrics.Evict()
		level.Debug(c.opt.Logger).Log("msg", "evicted block", "dev", g.evicted.dev, "block", g.evicted.blockno, "slot", g.i)
	}
	c.opt.Metrics.Busy(g.busy)
}

// fatal applies Options.PanicOnFatal to err.
func (c *Cache) fatal(err error) error {
	if c.opt.PanicOnFatal {
		panic(err)
	}
	return err
}
