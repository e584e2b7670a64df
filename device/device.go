// Package device defines the block device interface consumed by the cache
// and a few implementations: an in-memory ramdisk, a file-backed device and
// a Table that routes requests to mounted devices by id.
//
// All I/O is synchronous: a call returns only once the whole block has been
// transferred or an error occurred. The buffer length decides how many bytes
// move and must equal the device's block size.
package device

import (
	"errors"
	"math"
)

// DeviceID names a mounted device.
type DeviceID uint32

// BlockNo is a block number within a device.
type BlockNo uint32

// NoDevice marks an unused cache slot. It is never a valid mount id.
const NoDevice DeviceID = math.MaxUint32

var (
	// ErrNoDevice is returned for requests to an id with nothing mounted.
	ErrNoDevice = errors.New("device: no such device")
	// ErrBusy is returned by Mount when the id is already in use.
	ErrBusy = errors.New("device: id already mounted")
	// ErrOutOfRange is returned for block numbers past the end of the device.
	ErrOutOfRange = errors.New("device: block out of range")
	// ErrBlockSize is returned when a buffer does not match the block size.
	ErrBlockSize = errors.New("device: buffer does not match block size")
	// ErrClosed is returned by a device after Close.
	ErrClosed = errors.New("device: closed")
)

// Device is the block I/O surface the cache consumes. It addresses blocks by
// (device id, block number) and transfers exactly len(buf) bytes.
type Device interface {
	ReadBlock(dev DeviceID, blockno BlockNo, buf []byte) error
	WriteBlock(dev DeviceID, blockno BlockNo, buf []byte) error
}

// BlockDevice is a single device of fixed-size blocks.
type BlockDevice interface {
	ReadBlock(n BlockNo, buf []byte) error
	WriteBlock(n BlockNo, buf []byte) error
	BlockSize() int
	NumBlocks() uint32
	Close() error
}

// checkIO validates a request against a device's geometry.
func checkIO(bd BlockDevice, n BlockNo, buf []byte) error {
	if len(buf) != bd.BlockSize() {
		return ErrBlockSize
	}
	if uint32(n) >= bd.NumBlocks() {
		return ErrOutOfRange
	}
	return nil
}
