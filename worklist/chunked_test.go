// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist_test

import (
	"testing"

	"code.hybscloud.com/forall/pagepool"
	"code.hybscloud.com/forall/worklist"
)

func TestChunkedFIFOOrderWithinOneWorker(t *testing.T) {
	pool := pagepool.New(2)
	factory := worklist.NewChunkedFIFO[int](pool, 4)

	a := factory()
	for i := 1; i <= 10; i++ {
		a.Push(i)
	}
	for i := 1; i <= 10; i++ {
		got, ok := a.Pop()
		if !ok || got != i {
			t.Fatalf("Pop() = (%d, %v), want (%d, true)", got, ok, i)
		}
	}
	if !a.Empty() {
		t.Fatal("expected ChunkedFIFO to be empty")
	}
}

func TestChunkedFIFOCrossWorker(t *testing.T) {
	pool := pagepool.New(2)
	factory := worklist.NewChunkedFIFO[int](pool, 2)

	producer := factory()
	consumer := factory()

	for i := 0; i < 6; i++ {
		producer.Push(i)
	}

	seen := make(map[int]bool)
	for i := 0; i < 6; i++ {
		got, ok := consumer.Pop()
		if !ok {
			t.Fatalf("Pop() #%d reported empty early", i)
		}
		seen[got] = true
	}
	for i := 0; i < 6; i++ {
		if !seen[i] {
			t.Fatalf("missing item %d", i)
		}
	}
}

func TestUnboundedFIFOGrowsAndDrains(t *testing.T) {
	pool := pagepool.New(1)
	f := worklist.NewUnboundedFIFO[int](pool.Worker(0), 3)

	for i := 0; i < 20; i++ {
		f.Push(i)
	}
	for i := 0; i < 20; i++ {
		got, ok := f.Pop()
		if !ok || got != i {
			t.Fatalf("Pop() = (%d, %v), want (%d, true)", got, ok, i)
		}
	}
	if !f.Empty() {
		t.Fatal("expected UnboundedFIFO to be empty")
	}
}
