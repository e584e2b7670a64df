// Package cache implements a fixed-size buffer cache of disk blocks.
//
// The cache keeps a fixed pool of block-sized buffers in memory to cut
// device I/O, and it is the single synchronization point for blocks shared
// by concurrent callers: only one Buf for a given block is live at a time.
//
// Design
//
//   - Pool: Options.Slots buffers are allocated once by New. The pool never
//     grows, shrinks, or frees a buffer; recycling only reassigns the block
//     a slot caches.
//
//   - Recency: slots sit on a circular, index-linked list ordered from most
//     to least recently released. A miss recycles the unreferenced slot
//     closest to the tail (LRU on release order). A slot only moves, to the
//     head, when its last reference goes away.
//
//   - Locks: a spin lock guards slot identity, reference counts, the key
//     index and the list. It is never held across I/O or while waiting for
//     a buffer. Each slot also has a sleeping content lock, held from Read
//     to Release and across device transfers; waiters park instead of
//     spinning.
//
//   - I/O: Read loads a block lazily, only if the slot's copy is not valid.
//     Buf.Write goes straight to the device. There is no delayed write.
//
//   - Pinning: Buf.Pin and Buf.Unpin adjust the reference count without
//     touching the content lock, so a block can stay cached across a span in
//     which no Buf for it is held.
//
//   - Failures: running out of free slots, using a dead Buf and device
//     errors are reported as ErrResourceExhausted, ErrNotHeld and
//     *DeviceError. Nothing is retried. Set Options.PanicOnFatal to abort
//     instead.
//
// Basic usage
//
//	tbl := device.NewTable()
//	_ = tbl.Mount(1, device.NewRamdisk(1024, 4096))
//	c, err := cache.New(cache.Options{Slots: 64, BlockSize: 1024, Device: tbl})
//	if err != nil {
//	    return err
//	}
//	b, err := c.Read(1, 42)
//	if err != nil {
//	    return err
//	}
//	copy(b.Data(), "hello")
//	if err := b.Write(); err != nil {
//	    _ = b.Release()
//	    return err
//	}
//	return b.Release()
//
// Exporting metrics (Prometheus adapter)
//
//	m := prom.New(nil, "blockcache", "demo", nil) // implements Metrics
//	c, err := cache.New(cache.Options{Device: tbl, Metrics: m})
package cache
