// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pagepool obtains and recycles fixed-size OS pages for the
// work-item containers in package worklist.
//
// A Pool maps anonymous, private memory in page-sized chunks and hands it
// back out through per-worker freelists, so a worker that frees a page it
// once allocated gets it back without another syscall. Large allocations
// (AllocLarge/FreeLarge) bypass the freelist entirely and go straight to
// the OS, for callers that need more than one page at a time. worklist's
// chunks do not use them: each chunk takes a single page via AllocPage.
//
// Mapping tries progressively less aggressive mmap flag combinations —
// huge pages with population, then population alone, then a plain
// anonymous mapping — and panics only once every attempt has failed.
// AllocPage's OS path always tries all three; AllocLarge tries population
// alone only when prefault is set.
package pagepool
