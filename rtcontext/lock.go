// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtcontext

import "sync/atomic"

// Lock is a single-word logical lock: a CAS cell holding the Context that
// currently owns it, or nil when unowned. Locks carry no data of their
// own — they exist purely to detect two iterations touching the same
// piece of caller state concurrently.
type Lock[T any] struct {
	owner atomic.Pointer[Context[T]]
}

// NewLock returns an unowned Lock.
func NewLock[T any]() *Lock[T] {
	return &Lock[T]{}
}
