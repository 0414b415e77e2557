// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package forall is the top-level entry point: ForEach drives a pool of
// worker goroutines over a growing, self-refilling work list, running an
// Operator under optimistic conflict detection and requeuing rolled-back
// items through abort.Handler's NUMA-aware diffusion policy until the
// term.Detector token ring declares quiescence.
package forall
