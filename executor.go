// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package forall

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/forall/abort"
	"code.hybscloud.com/forall/pagepool"
	"code.hybscloud.com/forall/rtcontext"
	"code.hybscloud.com/forall/term"
	"code.hybscloud.com/forall/worklist"
	"code.hybscloud.com/spin"
)

// aborted wraps an item with the retry count abort.Handler's diffusion
// policies need. worklist.List[T] only ever stores a bare T, so the
// retry count that would travel with the item in the original design
// has to travel as part of the item type itself here — forall
// instantiates its own abort.Handler[aborted[T]] rather than
// abort.Handler[T] to carry it.
type aborted[T any] struct {
	item    T
	retries int
}

// ForEach distributes seed across WithWorkers workers (default
// numcpus.GetOnline()) and runs op over every item, including items op
// pushes through Facing.Push, until the work list is empty on every
// worker or a break has been raised. It returns a non-nil error if ctx
// is cancelled (ctx.Err()) or if a worker goroutine hit an unrecoverable
// condition — pagepool running out of address space to map.
func ForEach[T any](ctx context.Context, seed []T, op Operator[T], opts ...Option[T]) error {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}

	var pool *pagepool.Pool
	queues := make([]worklist.List[T], cfg.workers)
	if cfg.newList != nil {
		for i := range queues {
			queues[i] = cfg.newList()
		}
	} else {
		pool = pagepool.New(cfg.workers)
		factory := worklist.NewChunkedFIFO[T](pool, cfg.chunkCap)
		for i := range queues {
			queues[i] = factory()
		}
	}
	distributeSeed(queues, seed)

	var abortHandler *abort.Handler[aborted[T]]
	if !cfg.disableConflictDetection {
		if pool == nil {
			pool = pagepool.New(cfg.workers)
		}
		abortFactory := worklist.NewChunkedFIFO[aborted[T]](pool, cfg.chunkCap)
		abortHandler = abort.NewHandler[aborted[T]](cfg.workers, cfg.topology, cfg.abortPolicy(), abortFactory)
	}

	contexts := make([]*rtcontext.Context[T], cfg.workers)
	for i := range contexts {
		contexts[i] = rtcontext.NewContext[T](cfg.perIterAlloc)
	}

	var brk atomic.Bool
	e := &executor[T]{
		cfg:          &cfg,
		op:           op,
		queues:       queues,
		abortHandler: abortHandler,
		detector:     term.NewDetector(cfg.workers),
		contexts:     contexts,
		brk:          &brk,
	}

	for {
		g, gctx := errgroup.WithContext(ctx)
		done := make([]bool, cfg.workers)
		for w := 0; w < cfg.workers; w++ {
			worker := w
			g.Go(func() error {
				return e.runRound(gctx, worker, &done[worker])
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		allDone := true
		for _, d := range done {
			if !d {
				allDone = false
				break
			}
		}
		if allDone {
			if cfg.moreStats {
				log.Printf("forall: loop %q workers=%d committed=%d aborted=%d",
					cfg.loopName, cfg.workers, e.committed.Load(), e.aborted.Load())
			}
			return nil
		}
		e.detector.Reset()
	}
}

// distributeSeed splits seed into roughly equal contiguous slices, one
// per worker, and Seeds each worker's own queue with its slice — the
// Go realization of "each worker calls push_initial on its own slice."
func distributeSeed[T any](queues []worklist.List[T], seed []T) {
	n := len(queues)
	if n == 0 || len(seed) == 0 {
		return
	}
	per := len(seed) / n
	rem := len(seed) % n
	start := 0
	for i, q := range queues {
		end := start + per
		if i < rem {
			end++
		}
		q.Seed(seed[start:end])
		start = end
	}
}

// executor holds the state shared by every worker goroutine for the
// duration of one ForEach call.
type executor[T any] struct {
	cfg          *Config[T]
	op           Operator[T]
	queues       []worklist.List[T]
	abortHandler *abort.Handler[aborted[T]]
	detector     *term.Detector
	contexts     []*rtcontext.Context[T]
	brk          *atomic.Bool

	// committed/aborted are only maintained precisely enough to back the
	// WithMoreStats summary; ordinary runs pay their cost (one atomic add
	// per iteration) regardless, since splitting that out behind the flag
	// would need its own branch on every iteration for no real savings.
	committed atomic.Int64
	aborted   atomic.Int64
}

// runRound is one worker's pass through the worker loop: drain the main
// queue and, if conflict detection is active, the abort queue, in bounded
// or unbounded batches, signalling the termination detector after each
// pair of batches, until it reports quiescence or the break flag is seen
// at a batch boundary. *done reports whether this worker saw global emptiness or
// the break flag at that point — false means the caller should start a
// fresh round after the barrier.
func (e *executor[T]) runRound(ctx context.Context, worker int, done *bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if msg, ok := oomPanic(r); ok {
				err = fmt.Errorf("forall: %s", msg)
				return
			}
			panic(r)
		}
	}()

	tokenWorker := e.detector.Worker(worker)
	main := e.queues[worker]
	n := e.cfg.batchSize(worker)

	sw := spin.Wait{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if e.brk.Load() {
			break
		}

		didWork := e.runMainBatch(worker, main, n)
		if e.abortHandler != nil {
			didWork = e.runAbortBatch(worker, n) || didWork
		}

		tokenWorker.SignalWorked(didWork)
		if didWork {
			sw.Reset()
		} else {
			sw.Once()
		}
		if !tokenWorker.Working() {
			break
		}
	}

	if main.Empty() || e.brk.Load() {
		*done = true
		return nil
	}
	tokenWorker.InitializeThread()
	return nil
}

// runMainBatch pops up to n items (n <= 0 drains unboundedly) from
// worker's own main queue, running the per-iteration protocol on each.
func (e *executor[T]) runMainBatch(worker int, list worklist.List[T], n int) bool {
	didWork := false
	for count := 0; n <= 0 || count < n; count++ {
		item, ok := list.TryPop()
		if !ok {
			break
		}
		didWork = true
		e.runMainIteration(worker, item)
	}
	return didWork
}

func (e *executor[T]) runMainIteration(worker int, item T) {
	ctx := e.contexts[worker]
	dest := e.queues[worker]

	if e.cfg.disableConflictDetection {
		e.invokeOperator(ctx, dest, item)
		e.committed.Add(1)
		return
	}
	if e.invokeOperatorWithRecover(ctx, dest, item) {
		e.aborted.Add(1)
		if target := e.abortHandler.Push(worker, aborted[T]{item: item, retries: 1}); target != worker {
			e.detector.TaintRemote(target)
		}
		return
	}
	e.committed.Add(1)
}

// runAbortBatch is step 2 of the worker loop: the same batch shape as
// runMainBatch, over worker's local abort queue.
func (e *executor[T]) runAbortBatch(worker int, n int) bool {
	queue := e.abortHandler.LocalQueue(worker)
	didWork := false
	for count := 0; n <= 0 || count < n; count++ {
		wrapped, ok := queue.TryPop()
		if !ok {
			break
		}
		didWork = true
		e.runAbortIteration(worker, wrapped)
	}
	return didWork
}

func (e *executor[T]) runAbortIteration(worker int, wrapped aborted[T]) {
	ctx := e.contexts[worker]
	dest := e.queues[worker]

	if e.invokeOperatorWithRecover(ctx, dest, wrapped.item) {
		e.aborted.Add(1)
		target := e.abortHandler.PushAborted(worker, aborted[T]{item: wrapped.item, retries: wrapped.retries + 1}, wrapped.retries)
		if target != worker {
			e.detector.TaintRemote(target)
		}
		return
	}
	e.committed.Add(1)
}

// invokeOperator runs op with no conflict-recovery wrapper, the fast
// path WithoutConflictDetection selects: pushes still buffer through
// Context so Facing stays a single concrete type, but no defer/recover
// frame guards the call since no Acquire in this mode can conflict.
func (e *executor[T]) invokeOperator(ctx *rtcontext.Context[T], dest worklist.List[T], item T) {
	ctx.StartIteration()
	f := rtcontext.NewFacing[T](ctx, e.brk)
	e.op(item, f)
	ctx.CommitIteration(dest)
}

// invokeOperatorWithRecover runs op under the conflict-detection path,
// reporting whether the iteration conflicted (and was rolled back) so
// the caller can hand it to abortHandler.
func (e *executor[T]) invokeOperatorWithRecover(ctx *rtcontext.Context[T], dest worklist.List[T], item T) (conflicted bool) {
	defer func() {
		if r := recover(); r != nil {
			if rtcontext.IsConflict(r) {
				conflicted = true
				ctx.CancelIteration()
				return
			}
			panic(r)
		}
	}()
	ctx.StartIteration()
	f := rtcontext.NewFacing[T](ctx, e.brk)
	e.op(item, f)
	ctx.CommitIteration(dest)
	return false
}

// oomPanic reports whether a recovered panic value is pagepool's
// out-of-memory panic specifically — not one of its other "pagepool:"
// precondition-violation panics (bad worker id, double free), which
// stay fatal to the process like any other internal invariant breach.
func oomPanic(r any) (string, bool) {
	msg, ok := r.(string)
	if !ok || !strings.HasPrefix(msg, "pagepool:") || !strings.Contains(msg, "out of memory") {
		return "", false
	}
	return msg, true
}
