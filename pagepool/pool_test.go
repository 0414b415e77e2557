// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pagepool_test

import (
	"testing"
	"unsafe"

	"code.hybscloud.com/forall/pagepool"
)

func TestAllocFreeRoundTrip(t *testing.T) {
	pool := pagepool.New(2)
	w := pool.Worker(0)

	p := w.AllocPage()
	if p == 0 {
		t.Fatal("AllocPage returned nil address")
	}

	*(*byte)(unsafe.Pointer(p)) = 0x42
	if got := *(*byte)(unsafe.Pointer(p)); got != 0x42 {
		t.Fatalf("page not writable: got %x", got)
	}

	w.FreePage(p)
}

func TestFreedPageIsReused(t *testing.T) {
	pool := pagepool.New(1)
	w := pool.Worker(0)

	p1 := w.AllocPage()
	w.FreePage(p1)
	p2 := w.AllocPage()

	if p1 != p2 {
		t.Fatalf("expected freelist reuse: first=%x second=%x", p1, p2)
	}
}

func TestFreeByDifferentWorkerRejoinsOwner(t *testing.T) {
	pool := pagepool.New(2)
	owner := pool.Worker(0)
	other := pool.Worker(1)

	p := owner.AllocPage()
	other.FreePage(p)

	// The page must come back out of worker 0's freelist, not worker 1's.
	if got := owner.AllocPage(); got != p {
		t.Fatalf("page did not rejoin its owner's freelist: got %x want %x", got, p)
	}
}

func TestPrealloc(t *testing.T) {
	pool := pagepool.New(4)
	pool.Prealloc(8)
	if pool.PagesOutstanding() < 8 {
		t.Fatalf("PagesOutstanding = %d, want >= 8", pool.PagesOutstanding())
	}
}

func TestAllocLargeFreeLarge(t *testing.T) {
	pool := pagepool.New(1)
	before := pool.PagesOutstanding()

	addr := pool.AllocLarge(pagepool.PageSize*4, true)
	if addr == 0 {
		t.Fatal("AllocLarge returned nil address")
	}
	if got := pool.PagesOutstanding(); got != before+4 {
		t.Fatalf("PagesOutstanding = %d, want %d", got, before+4)
	}

	pool.FreeLarge(addr, pagepool.PageSize*4)
	if got := pool.PagesOutstanding(); got != before {
		t.Fatalf("PagesOutstanding after FreeLarge = %d, want %d", got, before)
	}
}

func TestFreePageOfUnknownAddressPanics(t *testing.T) {
	pool := pagepool.New(1)
	w := pool.Worker(0)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for FreePage of an unowned address")
		}
	}()
	w.FreePage(0xdeadbeef)
}

func TestWorkerIDOutOfRangePanics(t *testing.T) {
	pool := pagepool.New(1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range worker id")
		}
	}()
	pool.Worker(5)
}
