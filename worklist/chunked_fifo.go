// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sync"
	"sync/atomic"

	"code.hybscloud.com/forall/pagepool"
)

// DefaultChunkCapacity is the default ring buffer size within one chunk,
// matching the queue chunk default from the data model this package
// implements.
const DefaultChunkCapacity = 64

// chunk is a fixed-capacity ring buffer, one link in ChunkedFIFO's shared
// list. page is an opaque lifecycle token from pagepool: a chunk reserves
// one page for as long as it is in circulation and returns it to its
// owning worker's freelist once fully drained. The items themselves live
// in ordinary Go-managed memory — T may be any type, including one
// carrying pointers the garbage collector must trace, which raw mmap'd
// memory cannot participate in — so the page tracks the chunk's
// allocation lifetime, not its storage.
type chunk[T any] struct {
	items             []T
	head, tail, count int
	page              uintptr
	next              *chunk[T]
}

func newChunk[T any](w *pagepool.Worker, capacity int) *chunk[T] {
	return &chunk[T]{items: make([]T, capacity), page: w.AllocPage()}
}

func (c *chunk[T]) push(item T) bool {
	if c.count == len(c.items) {
		return false
	}
	c.items[c.tail] = item
	c.tail = (c.tail + 1) % len(c.items)
	c.count++
	return true
}

func (c *chunk[T]) pop() (T, bool) {
	if c.count == 0 {
		var zero T
		return zero, false
	}
	item := c.items[c.head]
	var zero T
	c.items[c.head] = zero
	c.head = (c.head + 1) % len(c.items)
	c.count--
	return item, true
}

func (c *chunk[T]) empty() bool { return c.count == 0 }

// chunkedCore is the state shared by every worker's ChunkedFIFO wrapper:
// the singly-linked list of chunks awaiting consumption, guarded by a
// single mutex on the head/tail pointers and on item-level Pop (pushing a
// full chunk is the amortized-per-K-items operation; only it and Pop need
// the lock, never per-item Push).
type chunkedCore[T any] struct {
	pool     *pagepool.Pool
	chunkCap int

	mu       sync.Mutex
	head     *chunk[T]
	tail     *chunk[T]
	draining *chunk[T]
}

func (c *chunkedCore[T]) pushChunk(ch *chunk[T]) {
	c.mu.Lock()
	if c.tail == nil {
		c.head = ch
	} else {
		c.tail.next = ch
	}
	c.tail = ch
	c.mu.Unlock()
}

// ChunkedFIFO is a multi-producer multi-consumer FIFO built from linked
// fixed-capacity chunks. Each worker fills its own chunk privately and
// only takes the shared lock once every chunkCap pushes, when the chunk
// is full and must join the shared list; consumers take the lock per
// Pop. Construct one instance per worker via the factory from
// NewChunkedFIFO so WithWorkList's func() List[T] contract is satisfied.
type ChunkedFIFO[T any] struct {
	core *chunkedCore[T]
	w    *pagepool.Worker
	cur  *chunk[T]
}

// NewChunkedFIFO returns a factory suitable for forall.WithWorkList: each
// call returns a new ChunkedFIFO[T] sharing the same underlying chunk
// list, bound to the next sequential worker id.
func NewChunkedFIFO[T any](pool *pagepool.Pool, chunkCap int) func() List[T] {
	if chunkCap <= 0 {
		chunkCap = DefaultChunkCapacity
	}
	core := &chunkedCore[T]{pool: pool, chunkCap: chunkCap}
	var nextID atomic.Int64
	return func() List[T] {
		id := int(nextID.Add(1) - 1)
		return &ChunkedFIFO[T]{core: core, w: pool.Worker(id)}
	}
}

// Push appends to this worker's own chunk. A chunk that fills up is
// flushed into the shared list immediately rather than held back for the
// next Push — other workers can only ever see a chunk once it joins the
// shared list, so delaying the flush would delay cross-worker visibility
// for no benefit (the lock is already amortized over chunkCap pushes
// either way).
func (f *ChunkedFIFO[T]) Push(item T) {
	if f.cur == nil {
		f.cur = newChunk[T](f.w, f.core.chunkCap)
	}
	if !f.cur.push(item) {
		f.core.pushChunk(f.cur)
		f.cur = newChunk[T](f.w, f.core.chunkCap)
		f.cur.push(item)
	}
	if f.cur.count == len(f.cur.items) {
		f.core.pushChunk(f.cur)
		f.cur = nil
	}
}

func (f *ChunkedFIFO[T]) Aborted(item T) {
	f.Push(item)
}

func (f *ChunkedFIFO[T]) Pop() (T, bool) {
	return f.TryPop()
}

func (f *ChunkedFIFO[T]) TryPop() (T, bool) {
	if item, ok := f.popShared(); ok {
		return item, true
	}
	// Nothing shared is available; fall back to this worker's own
	// not-yet-flushed chunk rather than block on another worker filling
	// one, since nobody else can see f.cur until it is full anyway.
	if f.cur != nil {
		return f.cur.pop()
	}
	var zero T
	return zero, false
}

func (f *ChunkedFIFO[T]) popShared() (T, bool) {
	f.core.mu.Lock()
	defer f.core.mu.Unlock()
	for {
		if f.core.draining != nil && !f.core.draining.empty() {
			return f.core.draining.pop()
		}
		if f.core.draining != nil {
			f.w.FreePage(f.core.draining.page)
			f.core.draining = nil
		}
		if f.core.head == nil {
			var zero T
			return zero, false
		}
		f.core.draining = f.core.head
		f.core.head = f.core.head.next
		if f.core.head == nil {
			f.core.tail = nil
		}
	}
}

// Empty reports whether the shared chunk list and this caller's own
// not-yet-flushed chunk are both empty. Another worker's own unflushed
// chunk is invisible here, the same snapshot limitation every List[T]'s
// Empty carries.
func (f *ChunkedFIFO[T]) Empty() bool {
	f.core.mu.Lock()
	coreEmpty := (f.core.draining == nil || f.core.draining.empty()) && f.core.head == nil
	f.core.mu.Unlock()
	return coreEmpty && (f.cur == nil || f.cur.empty())
}

func (f *ChunkedFIFO[T]) Seed(items []T) {
	for _, item := range items {
		f.Push(item)
	}
}
