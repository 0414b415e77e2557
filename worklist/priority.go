// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import (
	"container/heap"
	"sync"
)

// Priority is a mutex-guarded priority queue ordered by a caller-supplied
// comparator (true when a sorts before b).
type Priority[T any] struct {
	mu   sync.Mutex
	heap priorityHeap[T]
}

// NewPriority creates an empty Priority ordered by less.
func NewPriority[T any](less func(a, b T) bool) *Priority[T] {
	return &Priority[T]{heap: priorityHeap[T]{less: less}}
}

func (p *Priority[T]) Push(item T) {
	p.mu.Lock()
	heap.Push(&p.heap, item)
	p.mu.Unlock()
}

func (p *Priority[T]) Pop() (T, bool) {
	return p.TryPop()
}

func (p *Priority[T]) TryPop() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.heap.Len() == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop(&p.heap).(T), true
}

func (p *Priority[T]) Aborted(item T) {
	p.Push(item)
}

func (p *Priority[T]) Empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.heap.Len() == 0
}

func (p *Priority[T]) Seed(items []T) {
	p.mu.Lock()
	for _, item := range items {
		heap.Push(&p.heap, item)
	}
	p.mu.Unlock()
}

// priorityHeap implements container/heap.Interface over a slice of T.
type priorityHeap[T any] struct {
	data []T
	less func(a, b T) bool
}

func (h *priorityHeap[T]) Len() int            { return len(h.data) }
func (h *priorityHeap[T]) Less(i, j int) bool  { return h.less(h.data[i], h.data[j]) }
func (h *priorityHeap[T]) Swap(i, j int)       { h.data[i], h.data[j] = h.data[j], h.data[i] }
func (h *priorityHeap[T]) Push(x any)          { h.data = append(h.data, x.(T)) }
func (h *priorityHeap[T]) Pop() any {
	n := len(h.data)
	item := h.data[n-1]
	var zero T
	h.data[n-1] = zero
	h.data = h.data[:n-1]
	return item
}
