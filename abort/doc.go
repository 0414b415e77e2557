// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package abort routes rolled-back work items back into circulation after
// a conflict, using a NUMA-aware diffusion policy so retries land near
// where they were running rather than thrashing across sockets.
//
// Topology is a configuration value, not something probed from the OS:
// real NUMA discovery is out of scope for this runtime — worker count and
// layout are configured by the caller, defaulting to a socket count
// derived from github.com/tklauser/numcpus's online CPU count.
package abort
