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
	"testing"
)

var benchmarkWorkloads = []struct {
	name        string
	concurrency int
}{
	{"Serial", 1},
	{"LowConcurrency", 2},
	{"MediumConcurrency", 10},
	{"HighConcurrency", 50},
}

// BenchmarkMutexLockUnlock measures round-trip Lock/Unlock latency on a
// single, always-contended key across a range of concurrency levels, the
// same workload shape as the teacher's benchmarkLocking harness.
func BenchmarkMutexLockUnlock(b *testing.B) {
	for _, w := range benchmarkWorkloads {
		b.Run(w.name, func(b *testing.B) {
			m := NewMutex[int]()
			ctx := context.Background()
			b.SetParallelism(w.concurrency)
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					g, err := m.Lock(ctx, 0)
					if err != nil {
						b.Fatal(err)
					}
					g.Unlock()
				}
			})
		})
	}
}

// BenchmarkRwLockReadHeavy measures Read/Unlock throughput under a
// read-dominated workload on a single key.
func BenchmarkRwLockReadHeavy(b *testing.B) {
	for _, w := range benchmarkWorkloads {
		b.Run(w.name, func(b *testing.B) {
			rw := NewRwLock[int]()
			ctx := context.Background()
			b.SetParallelism(w.concurrency)
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					g, err := rw.Read(ctx, 0)
					if err != nil {
						b.Fatal(err)
					}
					g.Unlock()
				}
			})
		})
	}
}

// BenchmarkMutexDistinctKeys measures throughput when concurrent goroutines
// never contend with each other, exercising shard distribution rather than
// the waiter queue.
func BenchmarkMutexDistinctKeys(b *testing.B) {
	m := NewMutex[int]()
	ctx := context.Background()
	b.RunParallel(func(pb *testing.PB) {
		key := 0
		for pb.Next() {
			g, err := m.Lock(ctx, key)
			if err != nil {
				b.Fatal(err)
			}
			g.Unlock()
			key++
		}
	})
}
