package vfspoll

import (
	"container/list"

	"github.com/lancs-net/vfspoll/internal/waitqueue"
)

// waitRow is the Go shape of spec.md's WaitEntry: a borrowed queue
// reference, the currently-linked sleep record (nil until the first
// link), the element handle needed to unlink, and an optional cleanup
// invoked exactly once at teardown.
type waitRow struct {
	queue   *waitqueue.Queue
	cleanup func()
	rec     *waitqueue.Record
	elem    *list.Element
}

// waitTable is the per-call, single-threaded bookkeeping of which object
// queues this call has joined (spec.md §4.1). It is created empty at call
// entry and drained at call exit by teardown; nothing about it is safe for
// concurrent use, by design, since only the call's own goroutine ever
// touches it.
type waitTable struct {
	rows        []*waitRow
	allocFailAt int // test hook: row index at which add fails with ENOMEM; <0 disables
}

func newWaitTable() *waitTable {
	return &waitTable{allocFailAt: -1}
}

// add appends a fresh row for queue, returning ErrNoMemory if the table's
// injected allocation-failure hook fires on this call (see
// errors.go / ErrNoMemory and call_internal_test.go).
func (t *waitTable) add(queue *waitqueue.Queue, cleanup func()) (*waitRow, error) {
	if t.allocFailAt >= 0 && len(t.rows) >= t.allocFailAt {
		return nil, ErrNoMemory
	}
	row := &waitRow{queue: queue, cleanup: cleanup}
	t.rows = append(t.rows, row)
	return row, nil
}

// linkAll (re-)links every row onto its queue using rec, first unlinking
// any previous record the row was linked with. Spec.md §4.3 step 3b: the
// park loop calls this once per iteration, not just on the first one --
// a sleep record is a one-shot latch (see waitqueue.Record), so re-
// entering step 3 on a rescan-found-nothing iteration requires swapping
// in a fresh record and re-registering it on every queue, rather than
// trusting a record that may already have fired.
func (t *waitTable) linkAll(rec *waitqueue.Record) {
	for _, row := range t.rows {
		if row.elem != nil {
			row.queue.Unlink(row.elem)
		}
		row.rec = rec
		row.elem = row.queue.Link(rec)
	}
}

// teardown unlinks every row from its queue, runs its cleanup if present,
// and drops it from the table. Spec.md invariant I3: this runs on every
// exit path, regardless of whether the table was ever linked (an unlinked
// row's elem is nil, and Queue.Unlink tolerates that).
func (t *waitTable) teardown() {
	for _, row := range t.rows {
		row.queue.Unlink(row.elem)
		if row.cleanup != nil {
			row.cleanup()
		}
	}
	t.rows = nil
}

// linkedCount reports how many rows are currently linked, used by the
// Idempotent-zero-timeout testable property.
func (t *waitTable) linkedCount() int {
	n := 0
	for _, row := range t.rows {
		if row.elem != nil {
			n++
		}
	}
	return n
}

// WaitSink is the restricted, append-only view of a waitTable that the
// virtual-object layer is handed during the registration scan. Objects may
// only Join queues through it; they can never iterate, unlink, or observe
// other objects' rows. A nil *WaitSink means "do not register" (the scan
// engine passes nil whenever addToQueue is false).
type WaitSink struct {
	t *waitTable
}

// Join registers queue (with an optional cleanup) on behalf of the object
// currently being probed. It is a no-op on a nil sink, so object
// implementations do not need to special-case the no-register path
// themselves. The returned error is ErrNoMemory under the same injectable
// test hook as waitTable.add.
func (s *WaitSink) Join(queue *waitqueue.Queue, cleanup func()) error {
	if s == nil || s.t == nil {
		return nil
	}
	_, err := s.t.add(queue, cleanup)
	return err
}
