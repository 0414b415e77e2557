// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abort

import "code.hybscloud.com/forall/worklist"

// Handler routes conflicted iterations back into circulation. Each worker
// owns one local queue, created by newQueue; Push and PushAborted pick a
// target worker by the configured Policy and enqueue onto that worker's
// queue via worklist.List.Aborted.
type Handler[T any] struct {
	topo   Topology
	policy Policy
	queues []worklist.List[T]
}

// NewHandler builds a Handler for workers workers, each with its own
// queue produced by calling newQueue once per worker.
func NewHandler[T any](workers int, topo Topology, policy Policy, newQueue func() worklist.List[T]) *Handler[T] {
	h := &Handler[T]{
		topo:   topo,
		policy: policy,
		queues: make([]worklist.List[T], workers),
	}
	for i := range h.queues {
		h.queues[i] = newQueue()
	}
	return h
}

// LocalQueue returns the requeue side of worker's abort queue — what the
// worker loop drains on its abort-queue pass.
func (h *Handler[T]) LocalQueue(worker int) worklist.List[T] {
	return h.queues[worker]
}

// Push requeues item as a first-time abort (retries=1) originating from
// worker, and reports which worker's queue it landed on so the caller can
// mark that worker black if it differs from worker.
func (h *Handler[T]) Push(worker int, item T) int {
	return h.route(worker, item, 1)
}

// PushAborted requeues item, which has already been aborted retries
// times, incrementing the retry count before choosing its target, and
// reports which worker's queue it landed on.
func (h *Handler[T]) PushAborted(worker int, item T, retries int) int {
	return h.route(worker, item, retries+1)
}

func (h *Handler[T]) route(worker int, item T, retries int) int {
	target := h.target(worker, retries)
	h.queues[target].Aborted(item)
	return target
}

func (h *Handler[T]) target(worker, retries int) int {
	switch h.policy {
	case Basic:
		return h.basicTarget(worker)
	case Double:
		return h.doubleTarget(worker, retries)
	case Bounded:
		return h.boundedTarget(worker, retries)
	default: // Eager
		return worker
	}
}

func (h *Handler[T]) basicTarget(worker int) int {
	targetSocket := h.socketOf(worker) / 2
	return h.leaderOf(targetSocket)
}

func (h *Handler[T]) doubleTarget(worker, retries int) int {
	if retries%2 == 1 {
		return worker
	}
	socket := h.socketOf(worker)
	leader := h.leaderOf(socket)
	if worker != leader {
		return h.midpoint(worker, leader)
	}
	return h.leaderOf(socket / 2)
}

func (h *Handler[T]) boundedTarget(worker, retries int) int {
	switch {
	case retries < 2:
		return worker
	case retries < 5:
		leader := h.leaderOf(h.socketOf(worker))
		return h.midpoint(worker, leader)
	default:
		return h.basicTarget(worker)
	}
}

// midpoint halves the distance between worker and leader, the "push to
// the midpoint" diffusion step Double and Bounded share.
func (h *Handler[T]) midpoint(worker, leader int) int {
	return leader + (worker-leader)/2
}

func (h *Handler[T]) socketOf(worker int) int {
	if h.topo.WorkersPerSocket <= 0 {
		return 0
	}
	return worker / h.topo.WorkersPerSocket
}

// leaderOf returns the first worker of socket, clamped into range so a
// diffusion step never indexes outside h.queues.
func (h *Handler[T]) leaderOf(socket int) int {
	if socket < 0 {
		socket = 0
	}
	leader := socket * h.topo.WorkersPerSocket
	if leader >= len(h.queues) {
		leader = len(h.queues) - 1
	}
	if leader < 0 {
		leader = 0
	}
	return leader
}
