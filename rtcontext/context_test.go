// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtcontext_test

import (
	"sync/atomic"
	"testing"

	"code.hybscloud.com/forall/rtcontext"
	"code.hybscloud.com/forall/worklist"
)

func TestAcquireSameContextIsNoOp(t *testing.T) {
	ctx := rtcontext.NewContext[int](0)
	ctx.StartIteration()
	lock := rtcontext.NewLock[int]()

	ctx.Acquire(lock)
	ctx.Acquire(lock) // same context, second acquire must not panic
}

func TestAcquireConflictPanics(t *testing.T) {
	lock := rtcontext.NewLock[int]()

	a := rtcontext.NewContext[int](0)
	a.StartIteration()
	a.Acquire(lock)

	b := rtcontext.NewContext[int](0)
	b.StartIteration()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected Acquire to panic on conflicting ownership")
		}
		if !rtcontext.IsConflict(r) {
			t.Fatalf("recovered value is not the conflict signal: %v", r)
		}
	}()
	b.Acquire(lock)
}

func TestCommitIterationFlushesPushBuffer(t *testing.T) {
	ctx := rtcontext.NewContext[int](0)
	ctx.StartIteration()

	dest := worklist.NewLIFO[int]()
	var brk atomic.Bool
	f := rtcontext.NewFacing[int](ctx, &brk)

	f.Push(10)
	f.Push(20)

	if !dest.Empty() {
		t.Fatal("pushed items must not reach dest before commit")
	}
	ctx.CommitIteration(dest)

	if dest.Empty() {
		t.Fatal("expected pushed items in dest after commit")
	}
}

func TestCancelIterationDiscardsPushBufferAndReleasesLocks(t *testing.T) {
	ctx := rtcontext.NewContext[int](0)
	lock := rtcontext.NewLock[int]()

	ctx.StartIteration()
	ctx.Acquire(lock)
	dest := worklist.NewLIFO[int]()
	var brk atomic.Bool
	f := rtcontext.NewFacing[int](ctx, &brk)
	f.Push(99)

	ctx.CancelIteration()
	ctx.CommitIteration(dest) // nothing left to flush after cancel reset pushBuf

	if !dest.Empty() {
		t.Fatal("expected no items flushed after CancelIteration discarded the push buffer")
	}

	// lock must have been released by CancelIteration: a fresh context can
	// now acquire it without conflict.
	other := rtcontext.NewContext[int](0)
	other.StartIteration()
	other.Acquire(lock)
}

func TestScratchAllocGrowsArena(t *testing.T) {
	ctx := rtcontext.NewContext[int](8)
	ctx.StartIteration()

	b := ctx.ScratchAlloc(64)
	if len(b) != 64 {
		t.Fatalf("ScratchAlloc(64) returned %d bytes", len(b))
	}
	b[0] = 1 // must not panic: arena grew to fit
}

func TestBreakLoopSetsSharedFlag(t *testing.T) {
	ctx := rtcontext.NewContext[int](0)
	ctx.StartIteration()
	var brk atomic.Bool
	f := rtcontext.NewFacing[int](ctx, &brk)

	f.BreakLoop()
	if !brk.Load() {
		t.Fatal("expected BreakLoop to set the shared flag")
	}
}
