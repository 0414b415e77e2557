// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist_test

import (
	"testing"

	"code.hybscloud.com/forall/worklist"
)

func TestLocalGlobalPrefersLocal(t *testing.T) {
	global := worklist.NewFIFOLocked[int]()
	global.Push(100)

	lg := worklist.NewLocalGlobal[int](global)
	lg.Push(1)
	lg.Push(2)

	got, ok := lg.Pop()
	if !ok || got != 2 {
		t.Fatalf("Pop() = (%d, %v), want (2, true) — local should win over global", got, ok)
	}
}

func TestLocalGlobalFallsThroughToGlobal(t *testing.T) {
	global := worklist.NewFIFOLocked[int]()
	global.Push(42)

	lg := worklist.NewLocalGlobal[int](global)
	got, ok := lg.Pop()
	if !ok || got != 42 {
		t.Fatalf("Pop() = (%d, %v), want (42, true)", got, ok)
	}
}

func TestLocalGlobalAbortedTargetsGlobal(t *testing.T) {
	global := worklist.NewFIFOLocked[int]()
	lg := worklist.NewLocalGlobal[int](global)

	lg.Push(1) // stays local
	lg.Aborted(2)

	if global.Empty() {
		t.Fatal("Aborted item should have landed in the global layer")
	}
	got, _ := global.Pop()
	if got != 2 {
		t.Fatalf("global layer held %d, want 2", got)
	}
}

func TestLocalGlobalMPMCSharesAbortedAcrossWorkers(t *testing.T) {
	factory := worklist.NewLocalGlobalMPMC[int](8)
	a := factory()
	b := factory()

	a.Aborted(7)

	got, ok := b.Pop()
	if !ok || got != 7 {
		t.Fatalf("Pop() on the other worker's LocalGlobal = (%d, %v), want (7, true) — the MPMCGlobal layer must be shared", got, ok)
	}
}

func TestMPMCGlobalPushPop(t *testing.T) {
	g := worklist.NewMPMCGlobal[int](4)
	if !g.Empty() {
		t.Fatal("fresh MPMCGlobal should be empty")
	}
	g.Push(1)
	g.Push(2)
	if g.Empty() {
		t.Fatal("MPMCGlobal holding items should not report empty")
	}
	if got, ok := g.TryPop(); !ok || got != 1 {
		t.Fatalf("TryPop() = (%d, %v), want (1, true)", got, ok)
	}
	if got, ok := g.Pop(); !ok || got != 2 {
		t.Fatalf("Pop() = (%d, %v), want (2, true)", got, ok)
	}
	if !g.Empty() {
		t.Fatal("drained MPMCGlobal should report empty")
	}
	if _, ok := g.TryPop(); ok {
		t.Fatal("TryPop() on an empty MPMCGlobal should report false")
	}
}

func TestLocalFilterRoutesByCursor(t *testing.T) {
	global := worklist.NewFIFOLocked[item]()
	lf := worklist.NewLocalFilter[item](global, func(it item) int { return it.priority })

	lf.Push(item{priority: 0}) // cursor starts at 0, <= cursor → local
	lf.Push(item{priority: 5}) // ahead of cursor → global

	if global.Empty() {
		t.Fatal("expected the ahead-of-cursor item to land in the global layer")
	}

	got, ok := lf.Pop()
	if !ok || got.priority != 0 {
		t.Fatalf("Pop() = (%+v, %v), want priority 0 from the local layer first", got, ok)
	}
}
