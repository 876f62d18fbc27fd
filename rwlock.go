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
	"context"
	"time"
)

// readerRow is the per-key state for RwLock's reader side: how many live
// ReadGuards exist for the key, and the set of writers parked waiting for
// that count to drain to zero.
type readerRow struct {
	count   int
	writers []*waiterNode
}

// RwLock is a per-key shared/exclusive lock. It composes a Mutex[K], used
// for writer exclusion and as the idleness signal readers wait on, with a
// reader-count table of its own. As with Mutex, per-key state materializes
// lazily and is reclaimed the moment it is no longer needed. The zero value
// is not usable; construct one with NewRwLock.
type RwLock[K comparable] struct {
	writeMu *Mutex[K]
	readers *shardedMap[K, *readerRow]
	stats   lockStats
	tracer  *tracer
}

// NewRwLock creates an RwLock ready for use.
func NewRwLock[K comparable](opts ...Option) *RwLock[K] {
	s := newSettings(opts)
	return &RwLock[K]{
		writeMu: NewMutex[K](opts...),
		readers: newShardedMap[K, *readerRow](s.shardCount),
		tracer:  s.tracer,
	}
}

// IsWriteLocked reports whether k currently has a writer holding or
// draining for it. Advisory, like Mutex.IsLocked.
func (rw *RwLock[K]) IsWriteLocked(k K) bool { return rw.writeMu.IsLocked(k) }

// Stats returns a snapshot of this RwLock's reader-side acquire counters.
// Write acquisitions are counted by the composed write-mutex, which is not
// exported; this method reports only the Read path.
func (rw *RwLock[K]) Stats() Stats { return rw.stats.snapshot() }

// Read acquires one unit of shared access to k. It first waits on k's
// write-mutex, queued in FIFO order behind any writer already holding or
// waiting for it (and passing straight through if the mutex is idle), then
// increments k's reader count. On success it returns a ReadGuard that must
// be unlocked exactly once.
func (rw *RwLock[K]) Read(ctx context.Context, k K) (*ReadGuard[K], error) {
	start := time.Now()
	waited, err := rw.writeMu.waitUntilUnlocked(ctx, k)
	if err != nil {
		return nil, err
	}

	rw.readers.withRow(k, func(rows map[K]*readerRow) {
		row, ok := rows[k]
		if !ok {
			row = &readerRow{}
			rows[k] = row
		}
		row.count++
	})

	rw.stats.recordAcquire(waited, time.Since(start))
	rw.tracer.event("read_acquired", k)

	g := &ReadGuard[K]{key: k, release: func() { rw.releaseRead(k) }}
	return g, nil
}

func (rw *RwLock[K]) releaseRead(k K) {
	rw.tracer.event("read_release", k)
	var toWake []*waiterNode
	rw.readers.withRow(k, func(rows map[K]*readerRow) {
		row, ok := rows[k]
		if !ok || row.count == 0 {
			panic("keylock: read-unlock of a key with no live readers")
		}
		row.count--
		if row.count == 0 {
			toWake = row.writers
			delete(rows, k)
		}
	})
	for _, w := range toWake {
		w.grant()
	}
}

// Write acquires exclusive access to k: first the write-mutex (so no other
// writer can make progress and no new reader can pass Read's first step),
// then, only if readers are currently present, waits for the last of them
// to drop their guard. Returns the same *WriteGuard[K] type Mutex.Lock
// returns, releasing the write-mutex on Unlock exactly as Mutex does.
func (rw *RwLock[K]) Write(ctx context.Context, k K) (*WriteGuard[K], error) {
	g, err := rw.writeMu.Lock(ctx, k)
	if err != nil {
		return nil, err
	}

	w := newWaiterNode()
	mustDrain := false
	rw.readers.withRow(k, func(rows map[K]*readerRow) {
		row, ok := rows[k]
		if ok && row.count > 0 {
			mustDrain = true
			row.writers = append(row.writers, w)
		}
	})

	if mustDrain {
		select {
		case <-w.ch:
		case <-ctx.Done():
			cerr := ctx.Err()
			rw.abandonWrite(k, w)
			g.Unlock()
			return nil, cerr
		}
	}

	rw.tracer.event("write_acquired", k)
	return g, nil
}

// abandonWrite removes w from k's writer-wait set if it is still there.
// If the last reader already fired it concurrently, w is simply no longer
// present and this is a no-op; either way the caller is responsible for
// releasing the write-mutex it already holds.
func (rw *RwLock[K]) abandonWrite(k K, w *waiterNode) {
	rw.readers.withRow(k, func(rows map[K]*readerRow) {
		row, ok := rows[k]
		if !ok {
			return
		}
		for i, ww := range row.writers {
			if ww == w {
				row.writers = append(row.writers[:i], row.writers[i+1:]...)
				break
			}
		}
	})
}
