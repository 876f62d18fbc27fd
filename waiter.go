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
	"sync/atomic"
)

// waiterNode is a parked acquire operation sitting in a key's row, awaiting
// notification. It plays the role the spec calls the notifier handle plus
// the transition cell: ch is closed exactly once, by whichever goroutine
// hands the lock to this waiter, and granted records that fact so the
// waiter can tell a genuine grant apart from a context cancellation that
// raced with one.
//
// A waiterNode is heap-allocated and referenced by pointer from both the
// row's queue and the parked goroutine's stack — the "shared state cell"
// the design notes recommend in place of an unsafe pointer into the
// acquiring operation's own frame. Go's garbage collector keeps it alive as
// long as either side still holds a reference, so there is nothing to
// refcount by hand.
type waiterNode struct {
	ch      chan struct{}
	granted atomic.Bool
	elem    *list.Element // this waiter's node in the owning queue, if queued
}

func newWaiterNode() *waiterNode {
	return &waiterNode{ch: make(chan struct{})}
}

// grant flips the transition cell and fires the notifier. Safe to call
// exactly once per waiter; release paths only ever pop a waiter once.
func (w *waiterNode) grant() {
	w.granted.Store(true)
	close(w.ch)
}
