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

// Package keylock implements a keyed, per-key reader/writer lock whose key
// space is unbounded and sparse.
//
// Consider a storage engine that wants page- or row-level locking: there may
// be millions of possible page identifiers, but at any moment only a handful
// are actually contended. Keeping one *sync.RWMutex per identifier up front
// wastes memory proportional to the whole key space; a single global lock
// serializes operations on unrelated pages for no reason. This package
// instead materializes state for a key only when it is first contended, and
// reclaims it the moment no one holds or awaits it.
//
// ## Overview
//
// Two types sit on top of a shared concurrent table of per-key state:
//
//   - Mutex[K] is a per-key exclusive lock with FIFO-fair waiters.
//   - RwLock[K] is a per-key shared/exclusive lock: it composes a Mutex[K]
//     for writer exclusion with a per-key reader count and writer-wait set.
//
// Existence of a key's row in the table *is* the "locked" bit: if the row
// exists the key is held (or in the middle of being handed off); the queue
// inside the row holds only waiters still pending, never the current
// holder. An empty queue with a row present means "held, nobody waiting" —
// never "unlocked". The row disappears when a holder releases the key with
// nobody left waiting, which is also the moment the key becomes free for a
// fresh, uncontended acquire.
//
// ## Suspension model
//
// Every acquire takes a context.Context. Acquiring an uncontended key never
// blocks. Acquiring a contended key parks the calling goroutine on a channel
// until the lock's previous holder releases it, or until the context is
// cancelled — whichever happens first. Goroutines parked this way do not
// occupy an OS thread; the Go runtime schedules around them exactly the way
// a cooperative executor would schedule around a suspended future. A
// released guard never blocks: releasing a lock is always synchronous,
// bounded work proportional to the number of waiters being handed off.
//
// Locks are advisory and are not reentrant: acquiring the same key twice
// from the same goroutine deadlocks, just as it would with sync.Mutex.
// Guards carry no protected value — callers correlate keys with their own
// data.
package keylock
