// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sync"

	"code.hybscloud.com/forall/pagepool"
)

// UnboundedFIFO is a fully shared multi-producer multi-consumer FIFO of
// linked chunks, classic two-lock-queue style: producers only ever take
// the tail lock, consumers only ever take the head lock, and the two
// never block each other except at the single-chunk boundary. Drained
// leading chunks are reclaimed to the page pool lazily, once a consumer
// actually steps past them, never eagerly.
//
// Unlike ChunkedFIFO, there is no per-worker private chunk: every
// producer appends directly into the shared tail chunk. One
// UnboundedFIFO instance is shared by every worker — construct it once
// and hand the same pointer to every WithWorkList call site.
type UnboundedFIFO[T any] struct {
	w        *pagepool.Worker
	chunkCap int

	headMu sync.Mutex
	head   *chunk[T]

	tailMu sync.Mutex
	tail   *chunk[T]
}

// NewUnboundedFIFO creates an UnboundedFIFO whose chunks are allocated
// and recycled through owner's page freelist.
func NewUnboundedFIFO[T any](owner *pagepool.Worker, chunkCap int) *UnboundedFIFO[T] {
	if chunkCap <= 0 {
		chunkCap = DefaultChunkCapacity
	}
	return &UnboundedFIFO[T]{w: owner, chunkCap: chunkCap}
}

func (f *UnboundedFIFO[T]) Push(item T) {
	f.tailMu.Lock()
	defer f.tailMu.Unlock()

	if f.tail == nil {
		ch := newChunk[T](f.w, f.chunkCap)
		f.headMu.Lock()
		f.head = ch
		f.headMu.Unlock()
		f.tail = ch
	}
	if !f.tail.push(item) {
		ch := newChunk[T](f.w, f.chunkCap)
		f.tail.next = ch
		f.tail = ch
		f.tail.push(item)
	}
}

func (f *UnboundedFIFO[T]) Aborted(item T) {
	f.Push(item)
}

func (f *UnboundedFIFO[T]) Pop() (T, bool) {
	return f.TryPop()
}

func (f *UnboundedFIFO[T]) TryPop() (T, bool) {
	f.headMu.Lock()
	defer f.headMu.Unlock()

	for {
		if f.head == nil {
			var zero T
			return zero, false
		}
		if item, ok := f.head.pop(); ok {
			return item, true
		}
		if f.head.next == nil {
			var zero T
			return zero, false
		}
		drained := f.head
		f.head = f.head.next
		f.w.FreePage(drained.page)
	}
}

func (f *UnboundedFIFO[T]) Empty() bool {
	f.headMu.Lock()
	defer f.headMu.Unlock()
	for ch := f.head; ch != nil; ch = ch.next {
		if !ch.empty() {
			return false
		}
	}
	return true
}

func (f *UnboundedFIFO[T]) Seed(items []T) {
	for _, item := range items {
		f.Push(item)
	}
}
