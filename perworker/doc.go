// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package perworker holds one cache-line-aligned slot per worker.
//
// Slots[T] holds one T per worker, indexed by a worker id assigned once
// rather than discovered through goroutine-local storage, which Go does
// not have. worklist's StealLocal keeps its per-worker deques in Slots;
// LocalGlobal's local deques and the executor's rtcontext contexts are
// held per instance or in plain slices instead.
package perworker
