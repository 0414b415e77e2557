// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist_test

import (
	"testing"

	"code.hybscloud.com/forall/worklist"
)

func TestLIFOOrder(t *testing.T) {
	l := worklist.NewLIFO[int]()
	l.Seed([]int{1, 2, 3})
	for _, want := range []int{3, 2, 1} {
		got, ok := l.Pop()
		if !ok || got != want {
			t.Fatalf("Pop() = (%d, %v), want (%d, true)", got, ok, want)
		}
	}
	if !l.Empty() {
		t.Fatal("expected LIFO to be empty")
	}
	if _, ok := l.Pop(); ok {
		t.Fatal("Pop on empty LIFO should report false")
	}
}

func TestLIFOAborted(t *testing.T) {
	l := worklist.NewLIFO[string]()
	l.Aborted("retry-me")
	got, ok := l.TryPop()
	if !ok || got != "retry-me" {
		t.Fatalf("TryPop() = (%q, %v), want (retry-me, true)", got, ok)
	}
}

func TestFIFOLockedOrder(t *testing.T) {
	f := worklist.NewFIFOLocked[int]()
	f.Seed([]int{1, 2, 3})
	for _, want := range []int{1, 2, 3} {
		got, ok := f.Pop()
		if !ok || got != want {
			t.Fatalf("Pop() = (%d, %v), want (%d, true)", got, ok, want)
		}
	}
	if !f.Empty() {
		t.Fatal("expected FIFOLocked to be empty")
	}
}
