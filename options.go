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

// Option configures a Mutex or RwLock at construction time. There is no
// persistent configuration, no file, and no environment variable involved —
// every option is a construction-time parameter, the same idiom the pack
// uses for constructors like NewShardedLock(numShards int).
type Option func(*settings)

type settings struct {
	shardCount int
	tracer     *tracer
}

func newSettings(opts []Option) *settings {
	s := &settings{tracer: noopTracer()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithShardCount sets the number of shards the underlying keyed-waiter
// table is partitioned into. More shards reduce contention between
// unrelated keys at the cost of a little more memory; it has no effect on
// correctness. The default is 64.
func WithShardCount(n int) Option {
	return func(s *settings) { s.shardCount = n }
}

// WithTracing enables lock-operation tracing through logger, modeled on the
// pack's traced_locks.go. Disabled by default; when disabled the tracer
// adds no overhead beyond a single atomic load per event.
func WithTracing(logger Logger, name string) Option {
	return func(s *settings) { s.tracer = newTracer(logger, name) }
}
