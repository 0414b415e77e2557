// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abort

// Policy selects how a rolled-back item's requeue target is chosen
// relative to the worker that was running it when it conflicted.
//
// Conflicts cluster on hot data: aggressive local retries are cheap when
// few iterations touch the item, but a sustained conflict means the item
// needs to migrate to a different socket to break the cycle. The four
// policies trade off locality against that migration.
type Policy int

const (
	// Eager always requeues on the local worker.
	Eager Policy = iota

	// Basic pushes onto the leader worker of the socket at index
	// current_socket/2 — a binary diffusion tree over sockets that
	// converges contention at the lowest-numbered leader.
	Basic

	// Double keeps the item local on odd retry counts; on even counts it
	// halves the distance to the local socket's leader, or — if already
	// at the leader — diffuses to the leader of socket/2.
	Double

	// Bounded stays local for the first retry, halves toward the socket
	// leader for retries 2-4, and diffuses across sockets like Basic from
	// retry 5 on.
	Bounded
)

// DefaultPolicy picks Basic for a two-socket-or-smaller machine and
// Double otherwise, matching the point where binary diffusion alone stops
// converging fast enough to be worth its simplicity.
func DefaultPolicy(topo Topology) Policy {
	if topo.Sockets <= 2 {
		return Basic
	}
	return Double
}
