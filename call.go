package vfspoll

import (
	"context"

	"github.com/lancs-net/vfspoll/internal/filetable"
	"github.com/lancs-net/vfspoll/internal/sched"
)

// call is the ephemeral, call-local state driving one blocking
// multiplexed wait: spec.md §3's Call context. It is never shared across
// goroutines and never outlives runCall.
type call struct {
	ft         *filetable.Table
	fds        []FdRequest
	deadline   deadline
	wtable     *waitTable
	readyCount int
	thread     *sched.Thread
}

// runCall drives the SCANNING -> PARKED -> RESCANNING -> DONE state
// machine of spec.md §4.3. cpu lets callers share one simulated per-CPU
// interrupt-mask domain across concurrently-parking callers (pass nil to
// give the call its own).
func runCall(ctx context.Context, ft *filetable.Table, fds []FdRequest, dl deadline, cpu *sched.CPU) (int, error) {
	c := &call{
		ft:       ft,
		fds:      fds,
		deadline: dl,
		wtable:   newWaitTable(),
		thread:   sched.NewThread(cpu),
	}
	// I3: every exit path, including an early return from the
	// registration scan, drains and tears down the wait table.
	defer c.wtable.teardown()

	// Boundary behaviour (spec.md §8): an empty descriptor array can
	// never become ready and has nothing to park on, so it returns 0
	// immediately regardless of deadline.
	if len(c.fds) == 0 {
		return 0, nil
	}

	// SCANNING
	if err := c.registrationScan(); err != nil {
		return -1, err
	}
	if c.readyCount > 0 {
		return c.readyCount, nil
	}

	// Immediate-return shortcut (spec.md §4.3 step 2).
	if c.deadline.immediate {
		return 0, nil
	}

	return c.parkLoop(ctx)
}

// registrationScan is spec.md §4.3 step 1: probe every FdRequest with
// addToQueue=true, aborting the whole call on the first probe error.
func (c *call) registrationScan() error {
	for i := range c.fds {
		ready, err := scan(c.ft, &c.fds[i], c.wtable, true)
		if err != nil {
			return err
		}
		if ready > 0 {
			c.readyCount++
		}
	}
	return nil
}

// rescan is spec.md §4.3 step 4: probe every FdRequest with
// addToQueue=false and a nil wait table, recomputing readyCount as the
// number of FdRequests with a non-empty Ready.
func (c *call) rescan() (int, error) {
	count := 0
	for i := range c.fds {
		ready, err := scan(c.ft, &c.fds[i], nil, false)
		if err != nil {
			return 0, err
		}
		if ready > 0 {
			count++
		}
	}
	c.readyCount = count
	return count, nil
}

// parkLoop implements the PARKED <-> RESCANNING cycle of spec.md §4.3
// steps 3-4: link onto every queue, rescan once with the link now in
// effect, and only yield if that rescan found nothing. Every iteration
// that finds nothing re-enters step 3 from scratch -- a fresh record is
// linked in place of the old one -- rather than re-yielding on a record
// that may have already fired.
func (c *call) parkLoop(ctx context.Context) (int, error) {
	for {
		// I4: join-queues + set-deadline + clear-runnable + hand-off
		// all happen inside one masked window.
		restore := c.thread.CPU().MaskIRQ()
		rec := c.thread.Rearm()
		c.wtable.linkAll(rec)
		c.thread.SetWakeupTime(c.deadline.at, c.deadline.never)
		c.thread.MarkBlocked()
		restore()

		// Enqueue-then-recheck: this iteration's record is now linked
		// into every queue, so re-probe immediately, before parking.
		// This closes the window between an object's last readiness
		// probe (the registration scan, or the previous iteration's
		// rescan) and the link actually taking effect -- a wake that
		// lands anywhere in that window is caught here directly by
		// re-querying the object, without depending on the queue at
		// all.
		n, err := c.rescan()
		if err != nil {
			return -1, err
		}
		if n > 0 || c.deadline.passed(sched.Now()) || ctxDone(ctx) {
			// Teardown step 5: self-wake before the deferred
			// wtable.teardown() unlinks everything, covering the
			// case where we left PARKED via readiness rather than
			// the scheduler's timed wake.
			c.thread.MarkRunnable()
			return n, nil
		}

		c.thread.Yield(ctx)
	}
}

func ctxDone(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
