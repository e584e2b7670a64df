package cache

import (
	"github.com/IvanBrykalov/blockcache/device"
	"github.com/IvanBrykalov/blockcache/internal/sleeplock"
)

// key identifies a cached block.
type key struct {
	dev     device.DeviceID
	blockno device.BlockNo
}

// noKey is the identity of a slot that caches nothing.
var noKey = key{dev: device.NoDevice}

// slot is one cache entry. Its list links live in the pool's recency list at
// the same index.
//
// The pool owns key, refs and pins and mutates them only under its metadata lock.
// data and valid belong to whoever holds lock; valid is also cleared by the
// pool when it reassigns or drops a slot with refs == 0, which no holder can
// observe concurrently.
type slot struct {
	key
	refs  int
	pins  int // references added by pin, included in refs
	valid bool
	data  []byte
	lock  *sleeplock.Lock
}

func newSlot(blockSize int) slot {
	return slot{key: noKey, data: make([]byte, blockSize), lock: sleeplock.New()}
}
