// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package worklist holds the work-item collections the executor in
// package forall drains while running an operator over a dynamically
// growing set of items.
//
// Every variant implements List[T]:
//
//	type List[T any] interface {
//	    Push(item T)
//	    Pop() (T, bool)
//	    TryPop() (T, bool)
//	    Aborted(item T)
//	    Empty() bool
//	    Seed(items []T)
//	}
//
// Pop blocks only in the sense of retrying internally against contention;
// it never waits on another goroutine to produce work. TryPop is the same
// operation spelled out for callers that want to fall through to another
// source (another worker's list, the abort handler's local queue) on an
// empty result rather than retry.
//
// Variants range from a single mutex-guarded slice (LIFO, FIFOLocked) up
// through chunked and bucketed multi-producer containers (ChunkedFIFO,
// UnboundedFIFO, BucketLinear/Approx/Log) to genuinely concurrent,
// lock-free designs (StealLocal's per-worker work-stealing deque,
// MPSCFIFO's per-producer ring, MPMCGlobal's shared ring). LocalGlobal and
// LocalFilter compose any other List[T] as their shared layer, so e.g. a
// LocalGlobal's global container can itself be a BucketLog whose
// per-bucket container is a ChunkedFIFO — composition is by constructor
// injection, never a runtime tag. NewLocalGlobalMPMC wires the natural
// default: one shared MPMCGlobal every worker's LocalGlobal points at.
package worklist
