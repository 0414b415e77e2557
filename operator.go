// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package forall

import "code.hybscloud.com/forall/rtcontext"

// Operator is the per-item function ForEach drives. f exposes a push
// buffer, a scratch allocator, a shared break flag, and logical locking
// through the running iteration's rtcontext.Context.
//
// Operator must not block: there is no separate debug/release
// enforcement tier in Go, so this is a contract on the caller, not a
// property the worker loop checks.
type Operator[T any] func(item T, f *rtcontext.Facing[T])
