// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"math/bits"
	"sync"
)

// DefaultApproxBuckets is BucketApprox's default bucket count: a tuning
// constant, not a contract value, overridable by the caller.
const DefaultApproxBuckets = 2048

// bucketed is the shared machinery behind BucketLinear, BucketApprox, and
// BucketLog: an array of inner List[T] containers indexed by an Indexer,
// with a cursor that tracks the lowest bucket that might still hold work
// so repeated Pop calls do not rescan empty low buckets. Pushing into a
// bucket below the cursor rewinds it — new low-priority work always gets
// picked up, matching the bucketed-container cursor semantics.
type bucketed[T any] struct {
	buckets  []List[T]
	indexer  Indexer[T]
	mapIndex func(int) int

	mu     sync.Mutex
	cursor int
}

func newBucketed[T any](n int, indexer Indexer[T], newInner func() List[T], mapIndex func(int) int) *bucketed[T] {
	if n <= 0 {
		panic("worklist: bucket count must be > 0")
	}
	buckets := make([]List[T], n)
	for i := range buckets {
		buckets[i] = newInner()
	}
	return &bucketed[T]{buckets: buckets, indexer: indexer, mapIndex: mapIndex}
}

func (b *bucketed[T]) Push(item T) {
	idx := b.mapIndex(b.indexer(item))
	b.buckets[idx].Push(item)
	b.mu.Lock()
	if idx < b.cursor {
		b.cursor = idx
	}
	b.mu.Unlock()
}

func (b *bucketed[T]) Aborted(item T) {
	b.Push(item)
}

func (b *bucketed[T]) Pop() (T, bool) {
	return b.TryPop()
}

func (b *bucketed[T]) TryPop() (T, bool) {
	b.mu.Lock()
	start := b.cursor
	b.mu.Unlock()

	for i := start; i < len(b.buckets); i++ {
		if item, ok := b.buckets[i].TryPop(); ok {
			b.mu.Lock()
			if i > b.cursor {
				b.cursor = i
			}
			b.mu.Unlock()
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (b *bucketed[T]) Empty() bool {
	for _, bucket := range b.buckets {
		if !bucket.Empty() {
			return false
		}
	}
	return true
}

func (b *bucketed[T]) Seed(items []T) {
	for _, item := range items {
		b.Push(item)
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// BucketLinear indexes buckets directly by the Indexer's value, clipped
// to [0, numBuckets). Suited to indexers with a known, small range.
type BucketLinear[T any] struct {
	*bucketed[T]
}

// NewBucketLinear creates a BucketLinear with numBuckets slots, each
// backed by a fresh inner List[T] from newInner.
func NewBucketLinear[T any](numBuckets int, indexer Indexer[T], newInner func() List[T]) *BucketLinear[T] {
	return &BucketLinear[T]{bucketed: newBucketed(numBuckets, indexer, newInner, func(i int) int {
		return clampIndex(i, numBuckets)
	})}
}

// BucketApprox maps the Indexer's value onto a fixed, small number of
// buckets by modulus, trading exact ordering for a bounded bucket count
// when the indexer's range is large or unknown.
type BucketApprox[T any] struct {
	*bucketed[T]
}

// NewBucketApprox creates a BucketApprox. numBuckets defaults to
// DefaultApproxBuckets when <= 0.
func NewBucketApprox[T any](numBuckets int, indexer Indexer[T], newInner func() List[T]) *BucketApprox[T] {
	if numBuckets <= 0 {
		numBuckets = DefaultApproxBuckets
	}
	return &BucketApprox[T]{bucketed: newBucketed(numBuckets, indexer, newInner, func(i int) int {
		if i < 0 {
			i = -i
		}
		return i % numBuckets
	})}
}

// BucketLog maps the Indexer's value onto bucket floor(log2(value)),
// clipped to the bucket array — idx 0 and 1 both land in bucket 0, idx 2
// and 3 in bucket 1, and so on; coarse near zero, coarser still at the
// high end, a good fit when the indexer's value spans many orders of
// magnitude (e.g. edge weight, queue depth).
type BucketLog[T any] struct {
	*bucketed[T]
}

// NewBucketLog creates a BucketLog with numBuckets slots (default 64,
// enough to cover the full range of a 64-bit indexer value).
func NewBucketLog[T any](numBuckets int, indexer Indexer[T], newInner func() List[T]) *BucketLog[T] {
	if numBuckets <= 0 {
		numBuckets = 64
	}
	return &BucketLog[T]{bucketed: newBucketed(numBuckets, indexer, newInner, func(i int) int {
		if i < 0 {
			i = 0
		}
		bin := bits.Len(uint(i)) - 1
		if bin < 0 {
			bin = 0
		}
		return clampIndex(bin, numBuckets)
	})}
}
