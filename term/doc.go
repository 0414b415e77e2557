// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package term detects quiescence across a fixed set of workers using a
// token-ring colouring protocol adequate for shared memory: each worker
// is white or black, a token circulates the worker indices, and a full
// white lap with every worker white at the handoff declares termination.
package term
