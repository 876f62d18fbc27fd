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
	"hash/maphash"
	"sync"
)

// defaultShardCount is the number of shards a table uses when none is given
// via an Option. It sits between the pack's NumLockShards (64, coarse
// general-purpose locking) and NumShards (256, high-churn tag indexing) —
// this library's keys are usually storage-engine identifiers, closer in
// cardinality to the coarser case.
const defaultShardCount = 64

// shardedMap is a concurrent map from K to V, partitioned into shards by a
// generic hash of the key. It is the keyed-waiter table described by the
// design: every operation on a row (lookup, insert-if-absent, conditional
// remove, presence probe) executes while holding that row's shard lock, so
// two goroutines can never observe or mutate the same row concurrently.
// Operations on keys that land in different shards proceed fully in
// parallel, which is what makes the per-key scheme worthwhile in the first
// place: the table itself must never become the single point of contention
// that per-key locking exists to avoid.
type shardedMap[K comparable, V any] struct {
	seed   maphash.Seed
	shards []*mapShard[K, V]
}

type mapShard[K comparable, V any] struct {
	mu   sync.Mutex
	rows map[K]V
}

func newShardedMap[K comparable, V any](shardCount int) *shardedMap[K, V] {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	m := &shardedMap[K, V]{
		seed:   maphash.MakeSeed(),
		shards: make([]*mapShard[K, V], shardCount),
	}
	for i := range m.shards {
		m.shards[i] = &mapShard[K, V]{rows: make(map[K]V)}
	}
	return m
}

func (m *shardedMap[K, V]) shardFor(k K) *mapShard[K, V] {
	h := maphash.Comparable(m.seed, k)
	return m.shards[h%uint64(len(m.shards))]
}

// withRow runs fn with exclusive access to the shard owning k's row map.
// fn may read, insert, mutate, or delete rows[k]; no other goroutine can
// observe the map mid-mutation because the shard's lock is held for the
// entire call. This is the single primitive every acquire/release path in
// the package is built from.
func (m *shardedMap[K, V]) withRow(k K, fn func(rows map[K]V)) {
	sh := m.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fn(sh.rows)
}

// probe reports whether a row currently exists for k. The result is
// advisory: by the time the caller observes it, another goroutine may have
// already inserted or removed the row.
func (m *shardedMap[K, V]) probe(k K) bool {
	sh := m.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.rows[k]
	return ok
}
