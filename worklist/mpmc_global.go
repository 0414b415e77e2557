// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"sync/atomic"

	"code.hybscloud.com/forall/ringqueue"
	"code.hybscloud.com/spin"
)

// MPMCGlobal is a List[T] backed by a single ringqueue.MPMC: every worker
// holding a reference pushes and pops against the same queue. This is the
// concrete shared layer NewLocalGlobal and NewLocalFilter are meant to
// wrap — LocalGlobal's local deque absorbs the uncontended common case,
// and MPMCGlobal only sees the traffic that actually needs to cross
// workers.
type MPMCGlobal[T any] struct {
	q     *ringqueue.MPMC[T]
	count atomic.Int64
}

// NewMPMCGlobal creates an MPMCGlobal with the given capacity, rounded up
// to the next power of 2 by ringqueue.
func NewMPMCGlobal[T any](capacity int) *MPMCGlobal[T] {
	return &MPMCGlobal[T]{q: ringqueue.NewMPMC[T](capacity)}
}

// Push is infallible: a momentarily full queue is retried with a
// CPU-pause backoff rather than surfaced as an error, matching every
// other List[T] variant's infallible Push contract.
func (g *MPMCGlobal[T]) Push(item T) {
	sw := spin.Wait{}
	for {
		if err := g.q.Enqueue(&item); err == nil {
			g.count.Add(1)
			return
		}
		sw.Once()
	}
}

func (g *MPMCGlobal[T]) Aborted(item T) {
	g.Push(item)
}

func (g *MPMCGlobal[T]) Pop() (T, bool) {
	sw := spin.Wait{}
	for {
		if item, err := g.q.Dequeue(); err == nil {
			g.count.Add(-1)
			return item, true
		}
		if g.count.Load() <= 0 {
			var zero T
			return zero, false
		}
		sw.Once()
	}
}

func (g *MPMCGlobal[T]) TryPop() (T, bool) {
	item, err := g.q.Dequeue()
	if err != nil {
		var zero T
		return zero, false
	}
	g.count.Add(-1)
	return item, true
}

func (g *MPMCGlobal[T]) Empty() bool {
	return g.count.Load() <= 0
}

func (g *MPMCGlobal[T]) Seed(items []T) {
	for _, item := range items {
		g.Push(item)
	}
}
