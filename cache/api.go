package cache

import "github.com/IvanBrykalov/blockcache/device"

// BlockCache is the surface a file-system layer needs from the cache.
// *Cache implements it; tests of higher layers may substitute their own.
//
// Typical use:
//
//	b, err := c.Read(dev, n) // b holds the block's content lock
//	...modify b.Data()...
//	err = b.Write()          // synchronous write-through
//	err = b.Release()        // b must not be used afterwards
type BlockCache interface {
	// Read returns a locked Buf with valid contents for (dev, blockno).
	// It fails with ErrResourceExhausted when every slot is referenced and
	// with a *DeviceError when the load fails.
	Read(dev device.DeviceID, blockno device.BlockNo) (*Buf, error)

	// Invalidate drops unreferenced cached blocks of dev.
	Invalidate(dev device.DeviceID) int

	// Stats returns a snapshot of hit/miss/eviction and I/O counters.
	Stats() Stats
}

var _ BlockCache = (*Cache)(nil)
