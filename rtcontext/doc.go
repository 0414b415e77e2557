// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rtcontext holds the per-worker execution state an operator runs
// inside: logical locks for conflict detection, a scratch bump allocator,
// and a push buffer that only reaches the work list once an iteration
// commits.
//
// One Context[T] is constructed per worker and reused across iterations —
// StartIteration resets it in place rather than allocating a fresh one, so
// a long-running executor generates no steady-state garbage from context
// bookkeeping.
//
// Conflict detection uses Go's idiomatic non-local jump: Acquire panics
// with an unexported sentinel when a lock is already held by another
// active context, and the worker loop recovers it, rolling the iteration
// back and requeuing the item instead of letting the panic escape.
package rtcontext
