// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package term

import "code.hybscloud.com/atomix"

// Detector tracks quiescence across a fixed number of workers. A worker
// turns black by doing work or by being the target of a cross-worker
// push (TaintRemote); it turns white again when it forwards the token (a
// black holder first marks the token black for the rest of that lap), or
// through InitializeThread or Reset. Termination is declared once the token
// has completed a full lap of every worker index while staying white,
// and worker 0 is white at the handoff.
//
// Go has no goroutine-local storage, so per-worker state lives behind a
// Worker handle bound to one index rather than an implicit "current
// thread" — the same pattern pagepool.Pool.Worker uses.
type Detector struct {
	n int

	colors []atomix.Bool

	holder     atomix.Int64
	tokenWhite atomix.Bool
	terminated atomix.Bool
}

// NewDetector builds a Detector for a fixed set of workers workers. The
// token starts at worker 0, white.
func NewDetector(workers int) *Detector {
	d := &Detector{
		n:      workers,
		colors: make([]atomix.Bool, workers),
	}
	d.tokenWhite.Store(true)
	return d
}

// Worker returns the handle worker id uses to report its own loop
// passes. id must be in [0, workers).
func (d *Detector) Worker(id int) *Worker {
	return &Worker{d: d, id: id}
}

// Working reports whether the detector has not yet declared termination.
func (d *Detector) Working() bool {
	return !d.terminated.LoadAcquire()
}

// TaintRemote marks worker black because some other worker just pushed
// work onto its queue. A local push never taints — only a push crossing
// worker boundaries can resurrect quiescence.
func (d *Detector) TaintRemote(worker int) {
	d.colors[worker].Store(true)
}

// Reset clears the whole detector — token back at worker 0, white,
// termination flag cleared — for a fresh round after the executor's
// barrier. Unlike Worker.InitializeThread this is called once by the
// executor, not once per worker.
func (d *Detector) Reset() {
	for i := range d.colors {
		d.colors[i].Store(false)
	}
	d.holder.StoreRelease(0)
	d.tokenWhite.Store(true)
	d.terminated.StoreRelease(false)
}

func (d *Detector) signalWorked(worker int, didWork bool) {
	if didWork {
		d.colors[worker].Store(true)
	}
	if d.holder.LoadAcquire() != int64(worker) {
		return
	}

	if d.colors[worker].Load() {
		d.tokenWhite.Store(false)
		d.colors[worker].Store(false)
	}

	next := (worker + 1) % d.n
	if next == 0 {
		if d.tokenWhite.Load() && !d.colors[0].Load() {
			d.terminated.StoreRelease(true)
		}
		d.tokenWhite.Store(true)
	}
	d.holder.StoreRelease(int64(next))
}

// Worker is one worker's view onto a Detector: the methods spec.md §4.6
// gives with no explicit worker argument, bound instead to the index
// this handle was issued for.
type Worker struct {
	d  *Detector
	id int
}

// SignalWorked records whether this worker did any work this loop pass
// and, if it currently holds the token, advances it — declaring
// termination when a full lap finishes white.
//
// Every worker calls this once per loop pass, win or lose the token; the
// token-holder check inside is cheap enough to make that affordable.
func (w *Worker) SignalWorked(didWork bool) {
	w.d.signalWorked(w.id, didWork)
}

// Working reports whether the detector has not yet declared termination.
func (w *Worker) Working() bool {
	return w.d.Working()
}

// InitializeThread resets this worker's own colour to white. Workers
// call this before entering a new refill round past the barrier.
func (w *Worker) InitializeThread() {
	w.d.colors[w.id].Store(false)
}
