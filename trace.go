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
	"log"
	"sync/atomic"
)

// Logger is the minimal sink lock-operation tracing writes to. *log.Logger
// from the standard library satisfies it. Kept deliberately narrow so
// callers can adapt whatever structured logger their own application uses
// without this package depending on one.
//
// This mirrors osakka-entitydb's logger package, which is itself a small
// hand-rolled wrapper over the standard log package rather than a
// third-party logging library — no third-party logger appears anywhere in
// the example corpus this module is grounded on, so none is introduced
// here either.
type Logger interface {
	Printf(format string, args ...any)
}

// tracer emits lock-operation events when enabled, following
// traced_locks.go's pattern of wrapping an operation with
// "<op>_acquire"/"<op>_acquired" style markers keyed by lock name and key.
type tracer struct {
	logger  Logger
	name    string
	enabled atomic.Bool
}

func newTracer(logger Logger, name string) *tracer {
	t := &tracer{logger: logger, name: name}
	if logger != nil {
		t.enabled.Store(true)
	}
	return t
}

func noopTracer() *tracer {
	return &tracer{}
}

func (t *tracer) event(op string, key any) {
	if t == nil || !t.enabled.Load() {
		return
	}
	t.logger.Printf("[keylock] lock=%s key=%v op=%s", t.name, key, op)
}

// stdLogger adapts the standard library's *log.Logger to the Logger
// interface; it is what StdLogger returns. A *log.Logger passed straight to
// WithTracing is used as the Logger directly, without this wrapper.
type stdLogger struct{ l *log.Logger }

func (s stdLogger) Printf(format string, args ...any) { s.l.Printf(format, args...) }

// StdLogger wraps a *log.Logger for use with WithTracing.
func StdLogger(l *log.Logger) Logger { return stdLogger{l} }
