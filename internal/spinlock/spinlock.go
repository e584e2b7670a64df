// Package spinlock provides a non-blocking mutual exclusion lock.
package spinlock

import (
	"runtime"
	"sync/atomic"
)

// Lock is a test-and-test-and-set spin lock. A waiter never parks on a
// lock queue; it yields the processor between attempts and retries.
//
// Critical sections must be short and must not block: no I/O, no channel
// operations and no acquisition of a blocking lock while a Lock is held.
// Lock is not reentrant. The zero value is an unlocked Lock.
type Lock struct {
	held atomic.Bool
}

// Lock acquires l, spinning until it becomes free.
func (l *Lock) Lock() {
	for {
		if l.held.CompareAndSwap(false, true) {
			return
		}
		// Spin on a plain load so contended waiters do not hammer the
		// cache line with CAS traffic.
		for l.held.Load() {
			runtime.Gosched()
		}
	}
}

// TryLock acquires l if it is free and reports whether it did.
func (l *Lock) TryLock() bool { return l.held.CompareAndSwap(false, true) }

// Unlock releases l. Unlocking a free Lock panics.
func (l *Lock) Unlock() {
	if !l.held.CompareAndSwap(true, false) {
		panic("spinlock: unlock of unlocked lock")
	}
}

// Locked reports whether l is currently held by anyone.
func (l *Lock) Locked() bool { return l.held.Load() }
