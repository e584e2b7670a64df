package device

import "sync"

// Ramdisk is a BlockDevice backed by memory. It also counts reads and writes
// so callers can observe how much I/O reached the device.
type Ramdisk struct {
	mu     sync.RWMutex
	data   []byte
	bs     int
	n      uint32
	closed bool

	reads, writes uint64
}

// NewRamdisk returns a zero-filled ramdisk of n blocks of bs bytes each.
func NewRamdisk(bs int, n uint32) *Ramdisk {
	return &Ramdisk{data: make([]byte, bs*int(n)), bs: bs, n: n}
}

func (r *Ramdisk) BlockSize() int    { return r.bs }
func (r *Ramdisk) NumBlocks() uint32 { return r.n }

// ReadBlock copies block n into buf.
func (r *Ramdisk) ReadBlock(n BlockNo, buf []byte) error {
	if err := checkIO(r, n, buf); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	off := int(n) * r.bs
	copy(buf, r.data[off:off+r.bs])
	r.reads++
	return nil
}

// WriteBlock copies buf into block n.
func (r *Ramdisk) WriteBlock(n BlockNo, buf []byte) error {
	if err := checkIO(r, n, buf); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	off := int(n) * r.bs
	copy(r.data[off:off+r.bs], buf)
	r.writes++
	return nil
}

// Counts returns the number of successful reads and writes so far.
func (r *Ramdisk) Counts() (reads, writes uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reads, r.writes
}

// Close marks the ramdisk closed; later I/O fails with ErrClosed.
func (r *Ramdisk) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

var _ BlockDevice = (*Ramdisk)(nil)
