// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pagepool

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/atomix"
	"golang.org/x/sys/unix"
)

// PageSize is the fixed page size every AllocPage/FreePage call moves.
const PageSize = 4096

// pad is cache line padding, continuing ringqueue's padding idiom one
// level up from queue fields to freelist heads.
type pad [64]byte

// pageNode overlays the first machine word of a free page. Pages are
// never read or written by the pool except through this header, so
// reusing their own storage for the freelist link costs nothing extra.
type pageNode struct {
	next *pageNode
}

type freelist struct {
	_    pad
	head atomic.Pointer[pageNode]
	_    pad
}

// Pool is an OS page allocator with one lock-free freelist per worker.
//
// A page freed by worker i rejoins worker i's freelist, never another
// worker's — the same ownership rule as the original allocator's
// thread-local free list, expressed here as an explicit worker index
// since Go has no goroutine-local storage.
type Pool struct {
	workers []freelist

	mu      sync.Mutex
	ownerOf map[uintptr]int

	outstanding atomix.Int64
}

// New creates a Pool with one freelist per worker.
func New(workers int) *Pool {
	if workers < 1 {
		panic("pagepool: workers must be >= 1")
	}
	return &Pool{
		workers: make([]freelist, workers),
		ownerOf: make(map[uintptr]int),
	}
}

// Worker returns the handle a single worker goroutine uses to allocate
// and free pages. id must be in [0, workers) as passed to New.
func (p *Pool) Worker(id int) *Worker {
	if id < 0 || id >= len(p.workers) {
		panic("pagepool: worker id out of range")
	}
	return &Worker{pool: p, id: id}
}

// PagesOutstanding returns the number of pages currently obtained from
// the OS and not yet returned via FreeLarge. Pages cycling through
// AllocPage/FreePage's freelists do not affect this count — they are
// never Munmap'd.
func (p *Pool) PagesOutstanding() int64 {
	return p.outstanding.LoadAcquire()
}

// Prealloc warms every worker's freelist with roughly n/workers pages
// each, amortizing the first round of mmap calls before the run starts.
func (p *Pool) Prealloc(n int) {
	for i := 0; i < n; i++ {
		w := p.Worker(i % len(p.workers))
		w.FreePage(w.allocFromOS())
	}
}

// Worker is the per-goroutine handle for page allocation. A Worker must
// only be used by the worker goroutine it was issued to.
type Worker struct {
	pool *Pool
	id   int
}

// AllocPage returns a PageSize-aligned page, preferring this worker's own
// freelist over a fresh OS mapping.
func (w *Worker) AllocPage() uintptr {
	fl := &w.pool.workers[w.id]
	for {
		head := fl.head.Load()
		if head == nil {
			break
		}
		if fl.head.CompareAndSwap(head, head.next) {
			return uintptr(unsafe.Pointer(head))
		}
	}
	return w.allocFromOS()
}

// FreePage returns p to the freelist of the worker that first allocated
// it, not necessarily this one.
func (w *Worker) FreePage(p uintptr) {
	w.pool.mu.Lock()
	owner, ok := w.pool.ownerOf[p]
	w.pool.mu.Unlock()
	if !ok {
		panic("pagepool: FreePage of an address this pool never allocated")
	}

	fl := &w.pool.workers[owner]
	node := (*pageNode)(unsafe.Pointer(p))
	for {
		head := fl.head.Load()
		node.next = head
		if fl.head.CompareAndSwap(head, node) {
			return
		}
	}
}

// allocFromOS maps one fresh page, trying huge+populate, populate, then
// an ordinary anonymous mapping, and records this worker as its owner.
func (w *Worker) allocFromOS() uintptr {
	p := mmapFallback(PageSize)
	w.pool.outstanding.AddAcqRel(1)

	w.pool.mu.Lock()
	w.pool.ownerOf[p] = w.id
	w.pool.mu.Unlock()

	return p
}

// AllocLarge maps bytes (rounded up to a page multiple) for a caller that
// needs more than one page at a time.
// When prefault is true, the kernel is asked to populate the mapping
// immediately instead of faulting pages in lazily.
func (p *Pool) AllocLarge(bytes int, prefault bool) uintptr {
	if bytes <= 0 {
		panic("pagepool: AllocLarge requires bytes > 0")
	}
	n := roundUpPage(bytes)
	addr := mmapFallbackOpts(n, prefault)
	p.outstanding.AddAcqRel(int64(n / PageSize))
	return addr
}

// FreeLarge unmaps bytes previously obtained from AllocLarge. Unlike
// FreePage, this is a real Munmap — large allocations never enter a
// worker's freelist.
func (p *Pool) FreeLarge(addr uintptr, bytes int) {
	n := roundUpPage(bytes)
	mem := unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
	if err := unix.Munmap(mem); err != nil {
		panic(fmt.Sprintf("pagepool: munmap failed: %v", err))
	}
	p.outstanding.AddAcqRel(-int64(n / PageSize))
}

func roundUpPage(n int) int {
	return (n + PageSize - 1) &^ (PageSize - 1)
}

// mmapFallback maps n bytes using the full huge→populate→ordinary
// fallback chain, used by the per-page OS path.
func mmapFallback(n int) uintptr {
	return mmapFallbackOpts(n, true)
}

// mmapFallbackOpts implements the fallback chain described in doc.go.
// prefault additionally requests MAP_POPULATE on the non-huge attempts
// when the caller wants pages faulted in eagerly (AllocLarge's contract).
func mmapFallbackOpts(n int, prefault bool) uintptr {
	prot := unix.PROT_READ | unix.PROT_WRITE

	if mem, err := unix.Mmap(-1, 0, n, prot, unix.MAP_ANON|unix.MAP_PRIVATE|unix.MAP_HUGETLB|unix.MAP_POPULATE); err == nil {
		return uintptr(unsafe.Pointer(&mem[0]))
	}

	if prefault {
		if mem, err := unix.Mmap(-1, 0, n, prot, unix.MAP_ANON|unix.MAP_PRIVATE|unix.MAP_POPULATE); err == nil {
			return uintptr(unsafe.Pointer(&mem[0]))
		}
	}

	if mem, err := unix.Mmap(-1, 0, n, prot, unix.MAP_ANON|unix.MAP_PRIVATE); err == nil {
		return uintptr(unsafe.Pointer(&mem[0]))
	}

	panic(fmt.Sprintf("pagepool: out of memory mapping %d bytes", n))
}
