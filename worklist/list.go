// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

// List is the common interface every work-item container implements.
//
// Pop and TryPop both return (zero, false) on an empty container — the
// idiomatic Go substitute for an option<T> return. Pop is free to retry
// internally against contention before giving up; TryPop is the same
// operation for a caller that wants to move on immediately rather than
// retry (e.g. to fall through to a neighbor's queue or an abort handler).
type List[T any] interface {
	// Push adds a fresh item, produced by a running iteration's push
	// buffer or by Seed.
	Push(item T)

	// Pop removes and returns one item, retrying internally against
	// transient contention before reporting empty.
	Pop() (T, bool)

	// TryPop removes and returns one item without retrying; an empty
	// result here is not necessarily a durable "no more work" signal on
	// containers that also retry.
	TryPop() (T, bool)

	// Aborted re-adds an item that rolled back after a conflict. Some
	// variants route this to a different internal queue than Push (e.g.
	// LocalGlobal always routes Aborted to its global layer).
	Aborted(item T)

	// Empty reports whether the container currently holds no items. Like
	// ringqueue's queues, this is a snapshot with no synchronization
	// guarantee against concurrent Push/Pop.
	Empty() bool

	// Seed bulk-loads the initial work items before a run starts.
	Seed(items []T)
}

// Indexer supplies the bucketing key bucketed containers group items by.
type Indexer[T any] func(item T) int
