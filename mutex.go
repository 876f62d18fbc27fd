// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package keylock

import (
	"container/list"
	"context"
	"time"
)

// mutexRow is the per-key state for a Mutex: a FIFO queue of waiters still
// pending. Existence of the row in the table is the "locked" bit; the
// current holder is never represented in waiters, only in the row's
// presence.
type mutexRow struct {
	waiters list.List // of *waiterNode
}

// Mutex is a per-key exclusive lock with FIFO-fair waiters. Its key space is
// unbounded and sparse: a row materializes only when a key is first
// contended or held, and disappears the instant it is released with no one
// waiting. The zero value is not usable; construct one with NewMutex.
type Mutex[K comparable] struct {
	table  *shardedMap[K, *mutexRow]
	stats  lockStats
	tracer *tracer
}

// NewMutex creates a Mutex ready for use.
func NewMutex[K comparable](opts ...Option) *Mutex[K] {
	s := newSettings(opts)
	return &Mutex[K]{
		table:  newShardedMap[K, *mutexRow](s.shardCount),
		tracer: s.tracer,
	}
}

// IsLocked reports whether k is currently held. The result is advisory: it
// may be stale the instant it is returned.
func (m *Mutex[K]) IsLocked(k K) bool {
	return m.table.probe(k)
}

// Stats returns a snapshot of this mutex's acquire/contention counters.
func (m *Mutex[K]) Stats() Stats { return m.stats.snapshot() }

// Lock acquires exclusive ownership of k, suspending the calling goroutine
// if k is already held until it becomes this goroutine's turn (FIFO among
// everyone already waiting) or ctx is done, whichever happens first. On
// success it returns a WriteGuard that must be unlocked exactly once. On
// cancellation it returns ctx.Err() and guarantees the lock was never
// silently left unreleased on the caller's behalf — see abandon below.
func (m *Mutex[K]) Lock(ctx context.Context, k K) (*WriteGuard[K], error) {
	start := time.Now()
	w := newWaiterNode()
	acquiredImmediately := false

	m.table.withRow(k, func(rows map[K]*mutexRow) {
		row, held := rows[k]
		if !held {
			rows[k] = &mutexRow{}
			acquiredImmediately = true
			return
		}
		w.elem = row.waiters.PushBack(w)
	})

	m.tracer.event("lock_request", k)

	if !acquiredImmediately {
		select {
		case <-w.ch:
			// Granted: we are now the holder of k's row.
		case <-ctx.Done():
			err := ctx.Err()
			m.abandon(k, w)
			return nil, err
		}
	}

	m.stats.recordAcquire(!acquiredImmediately, time.Since(start))
	m.tracer.event("lock_acquired", k)

	g := &WriteGuard[K]{key: k, release: func() { m.unlock(k) }}
	return g, nil
}

// unlock implements the release algorithm: hand the row to the next
// waiter in FIFO order, or remove the row entirely if no one is waiting.
//
// The grant itself happens while the row lock is still held, not after
// releasing it. This is what closes the race against abandon: a
// concurrently-cancelled waiter's check of w.granted and removal from the
// queue run under the same per-row exclusion as the dequeue-and-grant here,
// so the two operations serialize instead of interleaving. Granting after
// releasing the lock would leave a window where abandon observes
// granted==false and the waiter already dequeued, does nothing, and the
// grant that follows is never observed by anyone — an orphaned holder that
// can never be released.
func (m *Mutex[K]) unlock(k K) {
	m.tracer.event("unlock", k)
	m.table.withRow(k, func(rows map[K]*mutexRow) {
		row, held := rows[k]
		if !held {
			panic("keylock: unlock of a key with no row present")
		}
		front := row.waiters.Front()
		if front == nil {
			delete(rows, k)
			return
		}
		row.waiters.Remove(front)
		front.Value.(*waiterNode).grant()
	})
}

// abandon implements the cancellation-safety strategy from the design
// notes: a waiter dropped while still parked is removed from its queue with
// no effect on lock state; a waiter dropped after having already raced to
// Granted (the releaser got there first) must immediately forward the
// grant on, exactly as an Unlock would, since no guard will ever be
// produced to release it later. Both checks happen under the same row lock
// unlock uses to perform its own grant, which is what makes the race safe:
// whichever of the two reaches the lock first determines the outcome
// completely, with no gap for a grant to be missed.
func (m *Mutex[K]) abandon(k K, w *waiterNode) {
	handOff := false
	m.table.withRow(k, func(rows map[K]*mutexRow) {
		if w.granted.Load() {
			handOff = true
			return
		}
		if row, held := rows[k]; held && w.elem != nil {
			row.waiters.Remove(w.elem)
		}
	})
	if handOff {
		m.unlock(k)
	}
}

// WaitUntilUnlocked suspends until the holder of k and every waiter queued
// ahead of this call have released k, or until ctx is done, whichever
// happens first. Unlike Lock, it never creates a row and never keeps k: if
// k is free, it returns immediately; otherwise it queues like Lock and,
// when its turn comes and k is handed to it, forwards that grant at once to
// the next waiter (or removes the row if there is none). k may therefore
// already be held by a later waiter by the time it returns. This is what
// lets RwLock's readers wait behind writers without keeping the
// write-mutex themselves.
func (m *Mutex[K]) WaitUntilUnlocked(ctx context.Context, k K) error {
	_, err := m.waitUntilUnlocked(ctx, k)
	return err
}

// waitUntilUnlocked is WaitUntilUnlocked's implementation, additionally
// reporting whether the call actually had to park — used internally by
// RwLock.Read to attribute wait time accurately instead of guessing from
// elapsed wall-clock time.
func (m *Mutex[K]) waitUntilUnlocked(ctx context.Context, k K) (waited bool, err error) {
	w := newWaiterNode()
	mustWait := false

	m.table.withRow(k, func(rows map[K]*mutexRow) {
		row, held := rows[k]
		if !held {
			return
		}
		mustWait = true
		w.elem = row.waiters.PushBack(w)
	})

	if !mustWait {
		return false, nil
	}

	select {
	case <-w.ch:
		// We were handed the row as though we were the new holder; we
		// don't want it, so forward it on immediately.
		m.unlock(k)
		return true, nil
	case <-ctx.Done():
		err := ctx.Err()
		m.abandon(k, w)
		return true, err
	}
}
