// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sync/atomic"

	"code.hybscloud.com/forall/perworker"
)

// pad is cache line padding, the same idiom used throughout this module.
type pad [64]byte

// circularArray is dequeWorker's resizable backing store. It is immutable
// once published: a resize allocates a new, larger array and atomically
// swaps it in, never mutates one that a thief might be reading.
type circularArray[T any] struct {
	capacity int64
	buffer   []T
}

func newCircularArray[T any](capacity int64) *circularArray[T] {
	return &circularArray[T]{capacity: capacity, buffer: make([]T, capacity)}
}

func (a *circularArray[T]) get(i int64) T    { return a.buffer[i%a.capacity] }
func (a *circularArray[T]) put(i int64, v T) { a.buffer[i%a.capacity] = v }

// dequeWorker is one worker's Chase-Lev work-stealing deque: the owner
// pushes and pops at the bottom (LIFO), thieves steal from the top
// (FIFO). Memory ordering follows the source algorithm exactly — relaxed
// on the owner's own top/bottom updates, acquire/release and a CAS on the
// last-element race between Pop and Steal.
type dequeWorker[T any] struct {
	_      pad
	top    atomic.Int64
	_      pad
	bottom atomic.Int64
	_      pad
	array  atomic.Pointer[circularArray[T]]
}

func newDequeWorker[T any](initialCapacity int64) *dequeWorker[T] {
	if initialCapacity <= 0 {
		initialCapacity = 32
	}
	d := &dequeWorker[T]{}
	d.array.Store(newCircularArray[T](initialCapacity))
	return d
}

// push adds an item at bottom. Owner-only, not thread-safe against
// concurrent push/pop from any other goroutine.
func (d *dequeWorker[T]) push(item T) {
	bottom := d.bottom.Load()
	top := d.top.Load()
	array := d.array.Load()

	size := bottom - top
	if size >= array.capacity-1 {
		array = d.resize(bottom, top, array)
		d.array.Store(array)
	}

	array.put(bottom, item)
	d.bottom.Store(bottom + 1)
}

// pop removes and returns the item at bottom. Owner-only.
func (d *dequeWorker[T]) pop() (T, bool) {
	bottom := d.bottom.Load() - 1
	array := d.array.Load()
	d.bottom.Store(bottom)

	top := d.top.Load()
	if top > bottom {
		d.bottom.Store(bottom + 1)
		var zero T
		return zero, false
	}

	item := array.get(bottom)
	if top == bottom {
		ok := d.top.CompareAndSwap(top, top+1)
		d.bottom.Store(bottom + 1)
		if !ok {
			var zero T
			return zero, false
		}
		return item, true
	}

	return item, true
}

// steal removes and returns the item at top. Safe for any number of
// concurrent thieves and concurrent with the owner's push/pop.
func (d *dequeWorker[T]) steal() (T, bool) {
	top := d.top.Load()
	bottom := d.bottom.Load()
	if top >= bottom {
		var zero T
		return zero, false
	}

	array := d.array.Load()
	item := array.get(top)
	if !d.top.CompareAndSwap(top, top+1) {
		var zero T
		return zero, false
	}
	return item, true
}

func (d *dequeWorker[T]) isEmpty() bool {
	bottom := d.bottom.Load()
	top := d.top.Load()
	return bottom-top <= 0
}

func (d *dequeWorker[T]) resize(bottom, top int64, oldArray *circularArray[T]) *circularArray[T] {
	newArray := newCircularArray[T](oldArray.capacity * 2)
	for i := top; i < bottom; i++ {
		newArray.put(i, oldArray.get(i))
	}
	return newArray
}

// StealLocal gives every worker its own work-stealing deque: the owner
// pushes and pops locally without contention, and when a worker's own
// deque runs dry it steals from a neighbor before reporting empty.
// Construct one instance per worker via the factory returned by
// NewStealLocal.
type StealLocal[T any] struct {
	slots *perworker.Slots[*dequeWorker[T]]
	id    int
}

// NewStealLocal returns a factory suitable for forall.WithWorkList: every
// call returns a StealLocal[T] bound to the next sequential worker id,
// all sharing the same per-worker deque array so stealing can cross
// instances.
func NewStealLocal[T any](workers int, initialCapacity int64) func() List[T] {
	slots := perworker.New[*dequeWorker[T]](workers, nil)
	for i := 0; i < workers; i++ {
		*slots.Local(i) = newDequeWorker[T](initialCapacity)
	}
	var nextID atomic.Int64
	return func() List[T] {
		id := int(nextID.Add(1) - 1)
		return &StealLocal[T]{slots: slots, id: id}
	}
}

func (s *StealLocal[T]) Push(item T) {
	(*s.slots.Local(s.id)).push(item)
}

func (s *StealLocal[T]) Aborted(item T) {
	s.Push(item)
}

// TryPop tries this worker's own deque, then one steal attempt against
// its immediate neighbor, without retrying further.
func (s *StealLocal[T]) TryPop() (T, bool) {
	if item, ok := (*s.slots.Local(s.id)).pop(); ok {
		return item, true
	}
	if item, ok := (*s.slots.Next(s.id)).steal(); ok {
		return item, true
	}
	var zero T
	return zero, false
}

// Pop tries this worker's own deque, then steals around the full ring of
// neighbors before reporting empty.
func (s *StealLocal[T]) Pop() (T, bool) {
	if item, ok := (*s.slots.Local(s.id)).pop(); ok {
		return item, true
	}
	n := s.slots.Size()
	for i := 1; i < n; i++ {
		victim := *s.slots.Remote((s.id + i) % n)
		if item, ok := victim.steal(); ok {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (s *StealLocal[T]) Empty() bool {
	for i := 0; i < s.slots.Size(); i++ {
		if !(*s.slots.Remote(i)).isEmpty() {
			return false
		}
	}
	return true
}

func (s *StealLocal[T]) Seed(items []T) {
	for _, item := range items {
		s.Push(item)
	}
}
