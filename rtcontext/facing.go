// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtcontext

import "sync/atomic"

// Facing is the handle an operator actually sees — a narrower view over
// Context that exposes only what an iteration is allowed to do: push new
// work, allocate scratch memory, acquire a lock, or request that every
// worker stop after the current round.
type Facing[T any] struct {
	ctx *Context[T]
	brk *atomic.Bool
}

// NewFacing wraps ctx for operator use. brk is the executor's shared
// break flag; every worker's Facing shares the same pointer so
// BreakLoop called by any one operator invocation is visible to all.
func NewFacing[T any](ctx *Context[T], brk *atomic.Bool) *Facing[T] {
	return &Facing[T]{ctx: ctx, brk: brk}
}

// Push buffers item; it only reaches the real work list if this
// iteration commits.
func (f *Facing[T]) Push(item T) {
	f.ctx.push(item)
}

// Alloc returns n scratch bytes valid for the remainder of this
// iteration.
func (f *Facing[T]) Alloc(n int) []byte {
	return f.ctx.ScratchAlloc(n)
}

// Acquire takes lock for this iteration, panicking with the conflict
// signal if another active iteration already holds it.
func (f *Facing[T]) Acquire(lock *Lock[T]) {
	f.ctx.Acquire(lock)
}

// BreakLoop requests that every worker exit at its next batch boundary.
func (f *Facing[T]) BreakLoop() {
	f.brk.Store(true)
}
