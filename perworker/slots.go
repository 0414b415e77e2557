// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package perworker

// pad is cache line padding, the same idiom ringqueue uses between queue
// fields, applied here between worker slots instead.
type pad [64]byte

type paddedSlot[T any] struct {
	value T
	_     pad
}

// Slots holds one T per worker, padded to avoid false sharing between
// workers that touch adjacent slots concurrently.
//
// Every accessor takes the calling worker's id explicitly: Go has no
// goroutine-local storage, so the id that the original per-thread design
// would read implicitly is threaded through instead, assigned once at
// ForEach entry and closed over by each worker's goroutine body.
type Slots[T any] struct {
	slots []paddedSlot[T]
	merge func(a, b *T)
}

// New creates Slots for n workers. merge folds two slots together for
// Reduce and may be nil if the caller never calls Reduce.
func New[T any](n int, merge func(a, b *T)) *Slots[T] {
	if n < 1 {
		panic("perworker: n must be >= 1")
	}
	return &Slots[T]{
		slots: make([]paddedSlot[T], n),
		merge: merge,
	}
}

// Local returns the slot belonging to worker id.
func (s *Slots[T]) Local(id int) *T {
	return &s.slots[id].value
}

// Remote returns the slot belonging to worker i, for a caller that is not
// worker i itself. Named separately from Local purely to mark intent at
// call sites (e.g. StealLocal stealing from a neighbor); the access is
// otherwise identical.
func (s *Slots[T]) Remote(i int) *T {
	return &s.slots[i].value
}

// Next returns the slot one worker past id, wrapping around. StealLocal
// uses this to pick a steal target.
func (s *Slots[T]) Next(id int) *T {
	return &s.slots[(id+1)%len(s.slots)].value
}

// Size returns the number of worker slots.
func (s *Slots[T]) Size() int {
	return len(s.slots)
}

// Reduce folds every slot pairwise through merge and returns the result.
// Intended for executor teardown, after every worker goroutine has joined
// — Reduce itself does no synchronization.
func (s *Slots[T]) Reduce() *T {
	if s.merge == nil {
		panic("perworker: Reduce called without a merge function")
	}
	acc := &s.slots[0].value
	for i := 1; i < len(s.slots); i++ {
		s.merge(acc, &s.slots[i].value)
	}
	return acc
}
