// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import "container/list"

// LocalGlobal pairs a non-concurrent per-worker deque with one shared
// concurrent List[T]. Push and Pop prefer the local deque; Aborted always
// targets the global layer, so a rolled-back item is visible to every
// worker rather than pinned to whichever one happened to abort it.
//
// The global layer is injected at construction and may be any other
// List[T] — a BucketLog whose own per-bucket container is a ChunkedFIFO
// is a perfectly ordinary global layer here, but the natural fit is an
// MPMCGlobal: every worker pushes into it (on Aborted) and pops from it
// concurrently, which is exactly MPMCGlobal's contract. NewLocalGlobalMPMC
// wires that up directly.
type LocalGlobal[T any] struct {
	local  *list.List
	global List[T]
}

// NewLocalGlobal creates a LocalGlobal with an empty local deque and the
// given global layer, shared by every worker that owns a LocalGlobal
// pointed at the same global instance.
func NewLocalGlobal[T any](global List[T]) *LocalGlobal[T] {
	return &LocalGlobal[T]{local: list.New(), global: global}
}

// NewLocalGlobalMPMC returns a factory suitable for forall.WithWorkList:
// every call returns a LocalGlobal[T] with its own empty local deque,
// sharing one MPMCGlobal of the given capacity as the global layer.
func NewLocalGlobalMPMC[T any](capacity int) func() List[T] {
	global := NewMPMCGlobal[T](capacity)
	return func() List[T] {
		return NewLocalGlobal[T](global)
	}
}

func (g *LocalGlobal[T]) Push(item T) {
	g.local.PushBack(item)
}

// Aborted always routes to the global layer: unlike Push, a rolled-back
// item should not wait behind this worker's own backlog.
func (g *LocalGlobal[T]) Aborted(item T) {
	g.global.Aborted(item)
}

func (g *LocalGlobal[T]) Pop() (T, bool) {
	if item, ok := g.popLocal(); ok {
		return item, true
	}
	return g.global.Pop()
}

func (g *LocalGlobal[T]) TryPop() (T, bool) {
	if item, ok := g.popLocal(); ok {
		return item, true
	}
	return g.global.TryPop()
}

func (g *LocalGlobal[T]) popLocal() (T, bool) {
	back := g.local.Back()
	if back == nil {
		var zero T
		return zero, false
	}
	g.local.Remove(back)
	return back.Value.(T), true
}

func (g *LocalGlobal[T]) Empty() bool {
	return g.local.Len() == 0 && g.global.Empty()
}

func (g *LocalGlobal[T]) Seed(items []T) {
	g.global.Seed(items)
}

// LocalFilter is a LocalGlobal variant where Push decides local vs.
// global by comparing the item's Indexer value against a per-worker
// cursor, and Pop advances that cursor from whatever the global layer
// yields. Items the cursor has already passed stay local (cheap, no
// contention); items still ahead of it go to the shared global layer so
// other workers can help drain them as the cursor catches up.
type LocalFilter[T any] struct {
	*LocalGlobal[T]
	indexer Indexer[T]
	cursor  int
}

// NewLocalFilter creates a LocalFilter with the given global layer and
// indexing function, cursor starting at 0.
func NewLocalFilter[T any](global List[T], indexer Indexer[T]) *LocalFilter[T] {
	return &LocalFilter[T]{LocalGlobal: NewLocalGlobal[T](global), indexer: indexer}
}

func (f *LocalFilter[T]) Push(item T) {
	if f.indexer(item) <= f.cursor {
		f.LocalGlobal.Push(item)
		return
	}
	f.global.Push(item)
}

func (f *LocalFilter[T]) Pop() (T, bool) {
	item, ok := f.LocalGlobal.Pop()
	if ok {
		if idx := f.indexer(item); idx > f.cursor {
			f.cursor = idx
		}
	}
	return item, ok
}

func (f *LocalFilter[T]) TryPop() (T, bool) {
	item, ok := f.LocalGlobal.TryPop()
	if ok {
		if idx := f.indexer(item); idx > f.cursor {
			f.cursor = idx
		}
	}
	return item, ok
}
