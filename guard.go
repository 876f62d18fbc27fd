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

import "sync/atomic"

// WriteGuard is a scoped, exclusive ownership token for a single key. It is
// not reentrant, not copyable in any meaningful sense, and must be unlocked
// exactly once. Unlocking it more than once panics, the same way unlocking
// an already-unlocked sync.Mutex panics — a library bug, not a recoverable
// condition.
type WriteGuard[K comparable] struct {
	key      K
	unlocked atomic.Bool
	release  func()
}

// Key returns the key this guard holds exclusive ownership of.
func (g *WriteGuard[K]) Key() K { return g.key }

// Unlock releases the exclusive lock on the guard's key. It must be called
// exactly once.
func (g *WriteGuard[K]) Unlock() {
	if !g.unlocked.CompareAndSwap(false, true) {
		panic("keylock: WriteGuard unlocked twice")
	}
	g.release()
}

// ReadGuard is a scoped ownership token for one unit of shared (reader)
// access to a key. It must be unlocked exactly once.
type ReadGuard[K comparable] struct {
	key      K
	unlocked atomic.Bool
	release  func()
}

// Key returns the key this guard holds a shared read on.
func (g *ReadGuard[K]) Key() K { return g.key }

// Unlock releases this guard's share of the read lock on its key.
func (g *ReadGuard[K]) Unlock() {
	if !g.unlocked.CompareAndSwap(false, true) {
		panic("keylock: ReadGuard unlocked twice")
	}
	g.release()
}
