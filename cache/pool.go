package cache

import (
	"github.com/IvanBrykalov/blockcache/device"
	"github.com/IvanBrykalov/blockcache/internal/sleeplock"
	"github.com/IvanBrykalov/blockcache/internal/spinlock"
	"github.com/IvanBrykalov/blockcache/internal/util"
)

// pool owns the slot array, the key index and the recency list.
//
// mu is a spin lock and its critical sections are bounded: an index lookup,
// a list scan and a few field updates. Nothing that can block runs under it;
// in particular a slot's content lock is only acquired after mu is released.
type pool struct {
	// ---- guarded by mu ----
	mu    spinlock.Lock
	slots []slot
	index map[key]int // cached key -> slot index
	lru   recency
	busy  int // slots with refs > 0

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicUint64
	misses util.PaddedAtomicUint64
	evicts util.PaddedAtomicUint64
}

// grant describes what get did, for metrics and logging after mu is dropped.
type grant struct {
	i       int
	hit     bool
	evicted key // previous identity of a reused slot; noKey if none
	busy    int
}

func newPool(n, blockSize int) *pool {
	p := &pool{
		slots: make([]slot, n),
		index: make(map[key]int, n),
		lru:   newRecency(n),
	}
	for i := range p.slots {
		p.slots[i] = newSlot(blockSize)
	}
	return p
}

// get returns the slot caching k, locked for tok. On a miss it recycles the
// unused slot closest to the tail of the recency list and marks it invalid.
// If every slot is referenced it fails with ErrResourceExhausted; it never
// waits for a slot to free up.
func (p *pool) get(k key, tok sleeplock.Token) (grant, error) {
	p.mu.Lock()

	if i, ok := p.index[k]; ok {
		s := &p.slots[i]
		if s.refs == 0 {
			p.busy++
		}
		s.refs++
		g := grant{i: i, hit: true, evicted: noKey, busy: p.busy}
		p.mu.Unlock()
		p.hits.Add(1)

		s.lock.Lock(tok)
		return g, nil
	}

	for i := p.lru.back(); i != p.lru.sentinel(); i = p.lru.prev[i] {
		s := &p.slots[i]
		if s.refs != 0 {
			continue
		}
		g := grant{i: i, evicted: s.key}
		if s.key != noKey {
			delete(p.index, s.key)
		}
		s.key = k
		s.valid = false
		s.refs = 1
		p.index[k] = i
		p.busy++
		g.busy = p.busy
		p.mu.Unlock()
		p.misses.Add(1)
		if g.evicted != noKey {
			p.evicts.Add(1)
		}

		s.lock.Lock(tok)
		return g, nil
	}

	busy := p.busy
	p.mu.Unlock()
	return grant{i: -1, evicted: noKey, busy: busy}, ErrResourceExhausted
}

// release gives back slot i held by tok. The content lock is dropped first;
// then, under mu, the reference goes away and a slot nobody references any
// more moves to the head of the recency list.
func (p *pool) release(i int, tok sleeplock.Token) (busy int, err error) {
	s := &p.slots[i]
	if !s.lock.Unlock(tok) {
		return 0, ErrNotHeld
	}

	p.mu.Lock()
	s.refs--
	if s.refs == 0 {
		p.lru.moveToFront(i)
		p.busy--
	}
	busy = p.busy
	p.mu.Unlock()
	return busy, nil
}

// pin adds a reference to slot i without touching its content lock or its
// list position.
func (p *pool) pin(i int) {
	p.mu.Lock()
	s := &p.slots[i]
	s.refs++
	s.pins++
	p.mu.Unlock()
}

// unpin drops a reference added by pin. Without an outstanding pin it fails
// and leaves refs alone, even if other readers hold references.
func (p *pool) unpin(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := &p.slots[i]
	if s.pins == 0 {
		return ErrNotHeld
	}
	s.pins--
	s.refs--
	return nil
}

// invalidate drops the identity of every unreferenced slot caching a block
// of dev and reports how many it dropped. Referenced slots are skipped.
func (p *pool) invalidate(dev device.DeviceID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for i := range p.slots {
		s := &p.slots[i]
		if s.key == noKey || s.dev != dev || s.refs != 0 {
			continue
		}
		delete(p.index, s.key)
		s.key = noKey
		s.valid = false
		n++
	}
	return n
}

// snapshot fills the counters of st that need mu.
func (p *pool) snapshot(st *Stats) {
	p.mu.Lock()
	st.Slots = len(p.slots)
	st.Busy = p.busy
	st.Cached = len(p.index)
	p.mu.Unlock()

	st.Hits = p.hits.Load()
	st.Misses = p.misses.Load()
	st.Evictions = p.evicts.Load()
}
