// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abort_test

import (
	"testing"

	"code.hybscloud.com/forall/abort"
	"code.hybscloud.com/forall/worklist"
)

func TestEagerPolicyStaysLocal(t *testing.T) {
	topo := abort.Topology{Sockets: 1, WorkersPerSocket: 4}
	h := abort.NewHandler[int](4, topo, abort.Eager, func() worklist.List[int] { return worklist.NewLIFO[int]() })

	h.Push(2, 7)

	got, ok := h.LocalQueue(2).TryPop()
	if !ok || got != 7 {
		t.Fatalf("LocalQueue(2).TryPop() = (%d, %v), want (7, true)", got, ok)
	}
}

func TestBasicPolicyDiffusesToSocketLeader(t *testing.T) {
	topo := abort.Topology{Sockets: 2, WorkersPerSocket: 4}
	h := abort.NewHandler[int](8, topo, abort.Basic, func() worklist.List[int] { return worklist.NewLIFO[int]() })

	h.Push(5, 42) // socket(5)=1, target socket = 1/2 = 0, leader = 0

	got, ok := h.LocalQueue(0).TryPop()
	if !ok || got != 42 {
		t.Fatalf("LocalQueue(0).TryPop() = (%d, %v), want (42, true)", got, ok)
	}
	if _, ok := h.LocalQueue(5).TryPop(); ok {
		t.Fatal("expected Basic to diffuse away from the originating worker")
	}
}

func TestDoublePolicyOddRetriesStayLocal(t *testing.T) {
	topo := abort.Topology{Sockets: 2, WorkersPerSocket: 4}
	h := abort.NewHandler[int](8, topo, abort.Double, func() worklist.List[int] { return worklist.NewLIFO[int]() })

	h.PushAborted(6, 99, 0) // retries becomes 1, odd

	got, ok := h.LocalQueue(6).TryPop()
	if !ok || got != 99 {
		t.Fatalf("LocalQueue(6).TryPop() = (%d, %v), want (99, true)", got, ok)
	}
}

func TestDoublePolicyEvenRetriesHalveTowardLeader(t *testing.T) {
	topo := abort.Topology{Sockets: 2, WorkersPerSocket: 4}
	h := abort.NewHandler[int](8, topo, abort.Double, func() worklist.List[int] { return worklist.NewLIFO[int]() })

	h.PushAborted(6, 99, 1) // retries becomes 2, leader(socket 1) = 4, midpoint = 5

	got, ok := h.LocalQueue(5).TryPop()
	if !ok || got != 99 {
		t.Fatalf("LocalQueue(5).TryPop() = (%d, %v), want (99, true)", got, ok)
	}
}

func TestDoublePolicyLeaderDiffusesAcrossSockets(t *testing.T) {
	topo := abort.Topology{Sockets: 2, WorkersPerSocket: 4}
	h := abort.NewHandler[int](8, topo, abort.Double, func() worklist.List[int] { return worklist.NewLIFO[int]() })

	h.PushAborted(4, 99, 1) // worker 4 is the leader of socket 1; retries=2, diffuse to leaderOf(0)

	got, ok := h.LocalQueue(0).TryPop()
	if !ok || got != 99 {
		t.Fatalf("LocalQueue(0).TryPop() = (%d, %v), want (99, true)", got, ok)
	}
}

func TestBoundedPolicyThresholds(t *testing.T) {
	topo := abort.Topology{Sockets: 2, WorkersPerSocket: 4}
	h := abort.NewHandler[int](8, topo, abort.Bounded, func() worklist.List[int] { return worklist.NewLIFO[int]() })

	h.PushAborted(6, 1, 0) // retries=1 < 2: local
	if got, ok := h.LocalQueue(6).TryPop(); !ok || got != 1 {
		t.Fatalf("retries=1 should stay local, got (%d, %v)", got, ok)
	}

	h.PushAborted(6, 2, 1) // retries=2: halve toward leader (4) -> 5
	if got, ok := h.LocalQueue(5).TryPop(); !ok || got != 2 {
		t.Fatalf("retries=2 should halve toward the leader, got (%d, %v)", got, ok)
	}

	h.PushAborted(6, 3, 4) // retries=5: diffuse across sockets like Basic
	if got, ok := h.LocalQueue(0).TryPop(); !ok || got != 3 {
		t.Fatalf("retries=5 should diffuse across sockets, got (%d, %v)", got, ok)
	}
}

func TestDefaultPolicyPicksBasicForSmallMachines(t *testing.T) {
	if abort.DefaultPolicy(abort.Topology{Sockets: 1}) != abort.Basic {
		t.Fatal("expected Basic for a single-socket machine")
	}
	if abort.DefaultPolicy(abort.Topology{Sockets: 2}) != abort.Basic {
		t.Fatal("expected Basic for a two-socket machine")
	}
	if abort.DefaultPolicy(abort.Topology{Sockets: 4}) != abort.Double {
		t.Fatal("expected Double beyond two sockets")
	}
}
