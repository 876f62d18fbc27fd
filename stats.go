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
	"sync/atomic"
	"time"
)

// Stats holds a snapshot of advisory locking statistics for a Mutex or
// RwLock. It is modeled on osakka-entitydb's LockStats/GetStats: a small set
// of atomic counters that never affect correctness or timing of the lock
// itself, useful only for observing contention from the outside.
type Stats struct {
	Acquires    int64
	Contentions int64
	WaitTime    time.Duration
}

// lockStats is the live, per-instance counter set; snapshot copies it out.
type lockStats struct {
	acquires    atomic.Int64
	contentions atomic.Int64
	waitNanos   atomic.Int64
}

func (s *lockStats) recordAcquire(waited bool, wait time.Duration) {
	s.acquires.Add(1)
	if waited {
		s.contentions.Add(1)
		s.waitNanos.Add(int64(wait))
	}
}

func (s *lockStats) snapshot() Stats {
	return Stats{
		Acquires:    s.acquires.Load(),
		Contentions: s.contentions.Load(),
		WaitTime:    time.Duration(s.waitNanos.Load()),
	}
}
