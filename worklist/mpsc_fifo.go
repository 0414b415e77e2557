// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sync/atomic"

	"code.hybscloud.com/forall/ringqueue"
	"code.hybscloud.com/spin"
)

// mpscFIFOCore is the state shared by every producer's MPSCFIFO wrapper:
// one SPSC lane per producer, and the single round-robin cursor the
// consumer side advances across calls.
type mpscFIFOCore[T any] struct {
	lanes  []*ringqueue.SPSC[T]
	cursor atomic.Int64
	count  atomic.Int64
}

// MPSCFIFO gives each producer its own lock-free SPSC lane; a single
// logical consumer round-robins across every lane. The round-robin
// cursor is intentionally not reset between drains — a consumer that
// drains everything and returns later resumes scanning from wherever it
// left off, rather than biasing every fresh drain toward lane 0.
type MPSCFIFO[T any] struct {
	core *mpscFIFOCore[T]
	id   int
}

// NewMPSCFIFO returns a factory suitable for forall.WithWorkList: each
// call returns an MPSCFIFO[T] bound to the next sequential producer lane,
// all sharing the same lane set and round-robin cursor.
func NewMPSCFIFO[T any](producers int, laneCapacity int) func() List[T] {
	core := &mpscFIFOCore[T]{lanes: make([]*ringqueue.SPSC[T], producers)}
	for i := range core.lanes {
		core.lanes[i] = ringqueue.NewSPSC[T](laneCapacity)
	}
	var nextID atomic.Int64
	return func() List[T] {
		id := int(nextID.Add(1) - 1)
		return &MPSCFIFO[T]{core: core, id: id}
	}
}

// Push is infallible: a lane that is momentarily full is retried with a
// CPU-pause backoff rather than surfaced as an error, matching every
// other List[T] variant's infallible Push contract.
func (m *MPSCFIFO[T]) Push(item T) {
	sw := spin.Wait{}
	for {
		if err := m.core.lanes[m.id].Enqueue(&item); err == nil {
			m.core.count.Add(1)
			return
		}
		sw.Once()
	}
}

func (m *MPSCFIFO[T]) Aborted(item T) {
	m.Push(item)
}

// TryPop advances the shared cursor by exactly one lane and checks only
// that lane, win or lose — the round-robin step. Pop below repeats this
// for a full cycle of lanes before giving up.
func (m *MPSCFIFO[T]) TryPop() (T, bool) {
	idx := int(uint64(m.core.cursor.Add(1)-1) % uint64(len(m.core.lanes)))
	item, err := m.core.lanes[idx].Dequeue()
	if err != nil {
		var zero T
		return zero, false
	}
	m.core.count.Add(-1)
	return item, true
}

func (m *MPSCFIFO[T]) Pop() (T, bool) {
	for i := 0; i < len(m.core.lanes); i++ {
		if item, ok := m.TryPop(); ok {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (m *MPSCFIFO[T]) Empty() bool {
	return m.core.count.Load() <= 0
}

func (m *MPSCFIFO[T]) Seed(items []T) {
	for _, item := range items {
		m.Push(item)
	}
}
