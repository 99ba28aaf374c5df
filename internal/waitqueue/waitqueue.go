// Package waitqueue implements the object-internal wait queue primitive
// that the virtual-object layer links waiters into: a per-object list of
// sleep records, and the sleep record itself (a per-thread node that may be
// linked into zero or more queues at once).
//
// This is the "external collaborator" boundary from the core's point of
// view: the core (package vfspoll) never inspects a Queue's internals, it
// only joins and leaves them through the *list.Element returned by Link.
package waitqueue

import (
	"container/list"
	"sync"
)

// Record is a per-thread sleep record. The same Record is shared across
// every Queue a thread joins while parked in a single call, mirroring the
// source's DEFINE_WAIT(__wait) reused across every wtable entry.
type Record struct {
	mu    sync.Mutex
	ch    chan struct{}
	fired bool
}

// NewRecord allocates an unfired sleep record.
func NewRecord() *Record {
	return &Record{ch: make(chan struct{})}
}

// Fire wakes the thread owning this record. Safe to call more than once and
// from any goroutine; only the first call has an effect.
func (r *Record) Fire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.fired {
		r.fired = true
		close(r.ch)
	}
}

// C returns the channel that becomes readable once Fire has been called.
func (r *Record) C() <-chan struct{} {
	return r.ch
}

// Queue is an object-internal wait queue: a list of linked sleep records
// plus the bookkeeping needed to wake some or all of them.
type Queue struct {
	mu   sync.Mutex
	subs list.List // of *Record
}

// New creates an empty queue.
func New() *Queue {
	q := &Queue{}
	q.subs.Init()
	return q
}

// Link joins rec to the queue, returning a handle that must be passed to
// Unlink exactly once. Duplicate Link calls for the same record are
// tolerated (spec.md §4.2: "duplicate registrations on the same queue are
// permitted").
func (q *Queue) Link(rec *Record) *list.Element {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.subs.PushBack(rec)
}

// Unlink detaches a previously linked element. Safe to call with a nil
// element (no-op), so callers can unconditionally Unlink during teardown.
func (q *Queue) Unlink(e *list.Element) {
	if e == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subs.Remove(e)
}

// Wake fires every record currently linked into the queue. This is the
// object's I/O-completion path calling back into the core's wake protocol;
// it does not itself remove entries from the queue (that happens when the
// woken call tears down its WaitTable).
func (q *Queue) Wake() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for e := q.subs.Front(); e != nil; e = e.Next() {
		e.Value.(*Record).Fire()
	}
}

// Len reports the number of currently linked records, mainly useful for the
// no-leak testable property (spec.md §8).
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.subs.Len()
}
