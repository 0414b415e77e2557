// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringqueue_test

import (
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/forall/ringqueue"
)

// TestSPSCBasic tests basic SPSC operations. SPSC is wait-free both ways.
func TestSPSCBasic(t *testing.T) {
	q := ringqueue.NewSPSC[int](3)

	if q.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", q.Cap())
	}

	for i := range 4 {
		v := i + 100
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}

	v := 999
	if err := q.Enqueue(&v); !errors.Is(err, ringqueue.ErrWouldBlock) {
		t.Fatalf("Enqueue on full: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if val != i+100 {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, val, i+100)
		}
	}

	if _, err := q.Dequeue(); !errors.Is(err, ringqueue.ErrWouldBlock) {
		t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
	}
}

// TestMPMCBasic tests basic MPMC operations.
func TestMPMCBasic(t *testing.T) {
	q := ringqueue.NewMPMC[int](3)

	for i := range 4 {
		v := i + 100
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}

	v := 999
	if err := q.Enqueue(&v); !errors.Is(err, ringqueue.ErrWouldBlock) {
		t.Fatalf("Enqueue on full: got %v, want ErrWouldBlock", err)
	}

	seen := make(map[int]bool)
	for range 4 {
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		seen[val] = true
	}
	for i := range 4 {
		if !seen[i+100] {
			t.Fatalf("missing %d", i+100)
		}
	}
}

// TestMPMCConcurrent hammers a shared MPMC from many producers and
// consumers and checks that every enqueued value is dequeued exactly once.
func TestMPMCConcurrent(t *testing.T) {
	const (
		producers = 8
		perProd   = 2000
	)
	q := ringqueue.NewMPMC[int](256)

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := range producers {
		go func(base int) {
			defer wg.Done()
			for i := range perProd {
				v := base*perProd + i
				for q.Enqueue(&v) != nil {
					// backpressure: retry
				}
			}
		}(p)
	}

	got := make([]bool, producers*perProd)
	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	count := 0
	for count < producers*perProd {
		val, err := q.Dequeue()
		if err != nil {
			select {
			case <-done:
				// producers finished but a straggler value may still be
				// mid-flight through Enqueue's FAA; keep polling briefly.
			default:
			}
			continue
		}
		mu.Lock()
		if got[val] {
			mu.Unlock()
			t.Fatalf("value %d dequeued twice", val)
		}
		got[val] = true
		mu.Unlock()
		count++
	}
}

// TestMPMCDrain verifies Drain lets the consumer empty an MPMC queue
// after producers stop without tripping the livelock threshold.
func TestMPMCDrain(t *testing.T) {
	q := ringqueue.NewMPMC[int](4)
	for i := range 4 {
		v := i
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	q.Drain()
	for i := range 4 {
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if val != i {
			t.Fatalf("got %d want %d", val, i)
		}
	}
}

func TestBuilderSelection(t *testing.T) {
	if _, ok := any(ringqueue.BuildSPSC[int](ringqueue.New(4).SingleProducer().SingleConsumer())).(*ringqueue.SPSC[int]); !ok {
		t.Fatalf("BuildSPSC did not return *SPSC[int]")
	}
	if _, ok := any(ringqueue.BuildMPMC[int](ringqueue.New(4))).(*ringqueue.MPMC[int]); !ok {
		t.Fatalf("BuildMPMC did not return *MPMC[int]")
	}
}

func TestNewPanicsBelowMinCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for capacity < 2")
		}
	}()
	ringqueue.NewMPMC[int](1)
}
