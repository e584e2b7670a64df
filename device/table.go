package device

import (
	"fmt"
	"sync"
)

// Table implements Device by routing each request to the BlockDevice mounted
// under its id. Mount and Unmount may run concurrently with I/O.
type Table struct {
	mu   sync.RWMutex
	devs map[DeviceID]BlockDevice
}

// NewTable returns an empty device table.
func NewTable() *Table {
	return &Table{devs: make(map[DeviceID]BlockDevice)}
}

// Mount attaches bd under id.
func (t *Table) Mount(id DeviceID, bd BlockDevice) error {
	if id == NoDevice {
		return fmt.Errorf("%w: reserved id %d", ErrNoDevice, id)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.devs[id]; ok {
		return fmt.Errorf("%w: %d", ErrBusy, id)
	}
	t.devs[id] = bd
	return nil
}

// Unmount detaches and returns the device under id. It does not close it.
func (t *Table) Unmount(id DeviceID) (BlockDevice, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bd, ok := t.devs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoDevice, id)
	}
	delete(t.devs, id)
	return bd, nil
}

// Lookup returns the device mounted under id.
func (t *Table) Lookup(id DeviceID) (BlockDevice, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	bd, ok := t.devs[id]
	return bd, ok
}

// ReadBlock implements Device.
func (t *Table) ReadBlock(dev DeviceID, blockno BlockNo, buf []byte) error {
	bd, ok := t.Lookup(dev)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoDevice, dev)
	}
	return bd.ReadBlock(blockno, buf)
}

// WriteBlock implements Device.
func (t *Table) WriteBlock(dev DeviceID, blockno BlockNo, buf []byte) error {
	bd, ok := t.Lookup(dev)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoDevice, dev)
	}
	return bd.WriteBlock(blockno, buf)
}

var _ Device = (*Table)(nil)
