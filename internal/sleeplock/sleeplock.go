// Package sleeplock provides a blocking mutual exclusion lock that records
// which holder owns it.
//
// Go has no goroutine identity, so ownership is expressed with a holder
// token: every Lock call is given a token chosen by the caller and the lock
// remembers it until Unlock. Holding(token) answers "is this lock held by
// me" for precondition checks.
package sleeplock

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Token identifies one acquisition of a Lock. The zero Token never holds.
type Token uint64

// Lock is a sleeping lock: contended waiters park until the holder calls
// Unlock, they do not spin. Use New to construct one.
type Lock struct {
	sem   *semaphore.Weighted
	owner atomic.Uint64
}

// New returns an unlocked Lock.
func New() *Lock {
	return &Lock{sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the lock is acquired and records tok as its holder.
// tok must be non-zero.
func (l *Lock) Lock(tok Token) {
	if tok == 0 {
		panic("sleeplock: zero token")
	}
	// Background never cancels, so Acquire cannot fail.
	_ = l.sem.Acquire(context.Background(), 1)
	l.owner.Store(uint64(tok))
}

// TryLock acquires the lock for tok without waiting and reports success.
func (l *Lock) TryLock(tok Token) bool {
	if tok == 0 || !l.sem.TryAcquire(1) {
		return false
	}
	l.owner.Store(uint64(tok))
	return true
}

// Unlock releases the lock if tok holds it and reports whether it did.
// A false result means the caller was not the holder and nothing changed.
func (l *Lock) Unlock(tok Token) bool {
	if tok == 0 || !l.owner.CompareAndSwap(uint64(tok), 0) {
		return false
	}
	l.sem.Release(1)
	return true
}

// Holding reports whether tok is the current holder.
func (l *Lock) Holding(tok Token) bool {
	return tok != 0 && l.owner.Load() == uint64(tok)
}
