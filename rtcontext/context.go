// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtcontext

import "code.hybscloud.com/forall/worklist"

// DefaultScratchSize is the initial size of a Context's bump allocator
// arena, chosen generously enough that most operators never trigger a
// grow within an iteration.
const DefaultScratchSize = 4096

// conflictSignal is the unexported sentinel Acquire panics with when a
// lock is already held by another active context. It carries no data —
// the worker loop that recovers it already knows which iteration and
// which item were running.
type conflictSignal struct{}

// IsConflict reports whether a recovered panic value is the conflict
// signal Acquire raises, as opposed to some other panic (a precondition
// violation, an operator bug) that should propagate rather than trigger
// a rollback-and-requeue.
func IsConflict(recovered any) bool {
	_, ok := recovered.(conflictSignal)
	return ok
}

// Context is one worker's reusable per-iteration state: the locks it has
// acquired this iteration, a scratch bump allocator, and a buffer of
// items pushed by the operator that only reach the real work list once
// the iteration commits.
type Context[T any] struct {
	acquired []*Lock[T]

	scratch    []byte
	scratchLen int

	pushBuf []T
}

// NewContext creates a Context with the given scratch arena size. A size
// of 0 uses DefaultScratchSize.
func NewContext[T any](scratchSize int) *Context[T] {
	if scratchSize <= 0 {
		scratchSize = DefaultScratchSize
	}
	return &Context[T]{scratch: make([]byte, scratchSize)}
}

// StartIteration resets the context for a fresh iteration, reusing the
// acquired-lock slice, push buffer, and scratch arena's backing storage
// rather than reallocating them.
func (c *Context[T]) StartIteration() {
	c.acquired = c.acquired[:0]
	c.pushBuf = c.pushBuf[:0]
	c.scratchLen = 0
}

// Acquire attempts to take lock for this context's current iteration.
// Already holding it is a no-op. Taking it for the first time records it
// so CommitIteration/CancelIteration can release it later. Finding it
// held by another active context panics with the conflict signal — the
// worker loop recovers this, rolls the iteration back via
// CancelIteration, and requeues the item.
func (c *Context[T]) Acquire(lock *Lock[T]) {
	if lock.owner.CompareAndSwap(nil, c) {
		c.acquired = append(c.acquired, lock)
		return
	}
	if lock.owner.Load() == c {
		return
	}
	panic(conflictSignal{})
}

// CommitIteration releases every lock acquired this iteration and flushes
// the push buffer into dest, then resets the scratch arena.
func (c *Context[T]) CommitIteration(dest worklist.List[T]) {
	c.releaseAll()
	for _, item := range c.pushBuf {
		dest.Push(item)
	}
	c.pushBuf = c.pushBuf[:0]
	c.scratchLen = 0
}

// CancelIteration releases every lock acquired this iteration and
// discards the push buffer without flushing it, then resets the scratch
// arena. The push buffer's capacity is retained for reuse.
func (c *Context[T]) CancelIteration() {
	c.releaseAll()
	c.pushBuf = c.pushBuf[:0]
	c.scratchLen = 0
}

func (c *Context[T]) releaseAll() {
	for _, lock := range c.acquired {
		lock.owner.CompareAndSwap(c, nil)
	}
	c.acquired = c.acquired[:0]
}

// ScratchAlloc returns an n-byte slice from the scratch arena, growing
// the arena (doubling) if it does not have room. The returned slice is
// only valid until the next StartIteration/CommitIteration/
// CancelIteration — callers must not retain it past the iteration.
func (c *Context[T]) ScratchAlloc(n int) []byte {
	if c.scratchLen+n > len(c.scratch) {
		newSize := len(c.scratch) * 2
		if newSize == 0 {
			newSize = DefaultScratchSize
		}
		for newSize < c.scratchLen+n {
			newSize *= 2
		}
		grown := make([]byte, newSize)
		copy(grown, c.scratch[:c.scratchLen])
		c.scratch = grown
	}
	b := c.scratch[c.scratchLen : c.scratchLen+n]
	c.scratchLen += n
	return b
}

func (c *Context[T]) push(item T) {
	c.pushBuf = append(c.pushBuf, item)
}
