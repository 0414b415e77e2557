// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package abort

import "github.com/tklauser/numcpus"

// Topology is a configuration value describing the simulated NUMA layout
// a diffusion policy spreads requeues across. Real NUMA discovery is out
// of scope — worker count and layout are configured, not probed; this
// struct is the configuration knob Basic/Double/Bounded read.
type Topology struct {
	Sockets          int
	WorkersPerSocket int
}

// DefaultCoresPerSocket is used by DefaultTopology when the caller does
// not pin a socket size.
const DefaultCoresPerSocket = 8

// DefaultTopology derives a Topology from the host's online CPU count,
// dividing it into sockets of coresPerSocket workers each (coresPerSocket
// <= 0 uses DefaultCoresPerSocket). If the online count cannot be read,
// it falls back to a single socket of coresPerSocket workers.
func DefaultTopology(coresPerSocket int) Topology {
	if coresPerSocket <= 0 {
		coresPerSocket = DefaultCoresPerSocket
	}
	online, err := numcpus.GetOnline()
	if err != nil || online <= 0 {
		return Topology{Sockets: 1, WorkersPerSocket: coresPerSocket}
	}
	sockets := online / coresPerSocket
	if sockets < 1 {
		sockets = 1
	}
	return Topology{Sockets: sockets, WorkersPerSocket: coresPerSocket}
}
