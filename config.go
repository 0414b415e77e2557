// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package forall

import (
	"github.com/tklauser/numcpus"

	"code.hybscloud.com/forall/abort"
	"code.hybscloud.com/forall/worklist"
)

// leaderBatch is the per-round cap on iterations a socket leader (or any
// worker when WithParallelBreak is set) drains from a queue before
// re-checking the termination signal.
const leaderBatch = 64

// Config is ForEach's trait tuple, built by starting from defaultConfig
// and then applying Option values over it. There is no way to
// construct an Option outside this package's With* functions, so an
// "unrecognised trait" — a construction-time error in the original — is
// unrepresentable at the Go type level instead of checked at runtime.
type Config[T any] struct {
	loopName string

	disableConflictDetection bool
	noPushes                 bool
	parallelBreak            bool
	moreStats                bool

	perIterAlloc int

	newList  func() worklist.List[T]
	workers  int
	chunkCap int

	topology  Topology
	policy    abort.Policy
	policySet bool
}

// Topology is an alias kept local to forall's doc surface; WithTopology
// takes the same abort.Topology value the abort handler consumes.
type Topology = abort.Topology

// Option configures one trait of a ForEach call.
type Option[T any] func(*Config[T])

// WithLoopName labels this run for statistics.
func WithLoopName[T any](name string) Option[T] {
	return func(c *Config[T]) { c.loopName = name }
}

// WithoutConflictDetection skips the optimistic Acquire/rollback
// machinery entirely: the operator must not call Facing.Acquire, and no
// recover frame or abort handler is set up. Pushes still collect in the
// iteration's push buffer and reach the work list when it commits.
func WithoutConflictDetection[T any]() Option[T] {
	return func(c *Config[T]) { c.disableConflictDetection = true }
}

// WithNoPushes declares that the operator never calls Facing.Push. It is
// a contract hint, not an enforcement switch — CommitIteration already
// flushes an empty push buffer for free.
func WithNoPushes[T any]() Option[T] {
	return func(c *Config[T]) { c.noPushes = true }
}

// WithPerIterAlloc reserves bytes of scratch arena per iteration's
// rtcontext.Context, grown on demand past that if an iteration needs
// more.
func WithPerIterAlloc[T any](bytes int) Option[T] {
	return func(c *Config[T]) { c.perIterAlloc = bytes }
}

// WithParallelBreak forces the bounded batch size even for non-leader
// workers, so a Facing.BreakLoop request is noticed at the next batch
// boundary rather than after an unbounded drain.
func WithParallelBreak[T any]() Option[T] {
	return func(c *Config[T]) { c.parallelBreak = true }
}

// WithMoreStats logs one summary line with the committed and aborted
// iteration counts when ForEach finishes.
func WithMoreStats[T any]() Option[T] {
	return func(c *Config[T]) { c.moreStats = true }
}

// WithWorkList selects the work-item container: newList is called once
// per worker, the same contract worklist's factory-returning
// constructors (NewChunkedFIFO, NewStealLocal, NewMPSCFIFO) satisfy.
// Unset, ForEach builds a worklist.NewChunkedFIFO backed by a fresh
// pagepool.Pool sized to WithWorkers/WithChunkCapacity.
func WithWorkList[T any](newList func() worklist.List[T]) Option[T] {
	return func(c *Config[T]) { c.newList = newList }
}

// WithWorkers sets the worker count. Unset, it defaults to
// numcpus.GetOnline().
func WithWorkers[T any](n int) Option[T] {
	return func(c *Config[T]) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithTopology overrides the socket layout abort.Handler diffuses
// retries across. Unset, it defaults to abort.DefaultTopology.
func WithTopology[T any](topo abort.Topology) Option[T] {
	return func(c *Config[T]) { c.topology = topo }
}

// WithAbortPolicy pins the abort diffusion policy. Unset, it defaults
// per abort.DefaultPolicy(topology).
func WithAbortPolicy[T any](p abort.Policy) Option[T] {
	return func(c *Config[T]) {
		c.policy = p
		c.policySet = true
	}
}

// WithChunkCapacity sets the chunk size the default work list and the
// abort queues use. Unset, it defaults to worklist.DefaultChunkCapacity.
// When WithWorkList is set it no longer affects the work list, but it
// still sizes the abort queues' chunks.
func WithChunkCapacity[T any](n int) Option[T] {
	return func(c *Config[T]) {
		if n > 0 {
			c.chunkCap = n
		}
	}
}

func defaultConfig[T any]() Config[T] {
	return Config[T]{
		workers:  defaultWorkers(),
		chunkCap: worklist.DefaultChunkCapacity,
		topology: abort.DefaultTopology(abort.DefaultCoresPerSocket),
	}
}

func defaultWorkers() int {
	n, err := numcpus.GetOnline()
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// batchSize returns leaderBatch for a socket leader, or for any worker
// once WithParallelBreak is set, and 0 (drain unboundedly) otherwise.
func (c *Config[T]) batchSize(worker int) int {
	if c.parallelBreak || c.isSocketLeader(worker) {
		return leaderBatch
	}
	return 0
}

func (c *Config[T]) isSocketLeader(worker int) bool {
	per := c.topology.WorkersPerSocket
	if per <= 0 {
		return worker == 0
	}
	return worker%per == 0
}

func (c *Config[T]) abortPolicy() abort.Policy {
	if c.policySet {
		return c.policy
	}
	return abort.DefaultPolicy(c.topology)
}
