// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package forall

// Blank-imported for their init-time side effects only: automaxprocs sets
// GOMAXPROCS from the enclosing cgroup's CPU quota, and automemlimit sets
// GOMEMLIMIT from the cgroup's memory limit. Neither reads application
// configuration — this is runtime tuning, not a config surface — so
// defaultWorkers below still asks numcpus directly rather than trusting
// GOMAXPROCS to reflect physical cores.
import (
	_ "github.com/KimMachineGun/automemlimit/memlimit"
	_ "go.uber.org/automaxprocs/maxprocs"
)
