// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ringqueue provides the bounded lock-free ring buffer algorithms
// that the rest of this module composes into the work-item structures of
// package worklist.
//
//   - SPSC: Single-Producer Single-Consumer (Lamport ring buffer)
//   - MPMC: Multi-Producer Multi-Consumer (FAA, SCQ-style)
//
// # Quick Start
//
//	q := ringqueue.NewSPSC[Event](1024)
//	q := ringqueue.NewMPMC[*Request](4096)
//
// Builder API auto-selects the algorithm from producer/consumer arity:
//
//	q := ringqueue.Build[Event](ringqueue.New(1024).SingleProducer().SingleConsumer()) // → SPSC
//	q := ringqueue.Build[Event](ringqueue.New(1024))                                    // → MPMC
//
// # Basic Usage
//
//	q := ringqueue.NewMPMC[int](1024)
//
//	value := 42
//	err := q.Enqueue(&value)
//	if ringqueue.IsWouldBlock(err) {
//	    // Queue is full - handle backpressure
//	}
//
//	elem, err := q.Dequeue()
//	if ringqueue.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// # Who uses which algorithm
//
// worklist.MPSCFIFO gives each producer worker its own SPSC — the single
// consumer round-robins over them. worklist.MPMCGlobal, the concrete
// shared layer LocalGlobal and LocalFilter are built to share, is a
// single MPMC: every worker both pushes (on Aborted) and pops from it
// concurrently. worklist.StealLocal's per-worker deque is its own
// Chase-Lev implementation, not one of this package's algorithms — the
// owner-LIFO/thief-FIFO split and lock-free resize it needs have no
// equivalent here. pagepool's per-worker freelists are not shared across
// workers at all, so nothing in pagepool uses this package either.
//
// # Capacity and Length
//
// Capacity rounds up to the next power of 2. Minimum capacity is 2.
// Length is intentionally not provided because accurate counts in
// lock-free algorithms require expensive cross-core synchronization.
//
// # Graceful Shutdown
//
// MPMC, the FAA-based queue, includes a threshold mechanism that prevents
// livelock; this can make Dequeue return ErrWouldBlock even when items
// remain, while waiting for producer activity to reset the threshold.
// When producers are done, call Drain (see [Drainer]) so consumers can
// fully drain without further threshold checks.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channel, WaitGroup) but not the acquire-release orderings these
// algorithms rely on for ABA-safe slot reuse, so concurrent use of these
// queues can produce false positives under -race. [RaceEnabled] reports
// whether the detector is active; this package's own concurrent test
// (TestMPMCConcurrent) does not consult it and runs either way.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomics with explicit memory ordering,
// and [code.hybscloud.com/spin] for CPU-pause backoff.
package ringqueue
