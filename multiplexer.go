package vfspoll

import (
	"context"
	"time"

	"github.com/lancs-net/vfspoll/internal/filetable"
	"github.com/lancs-net/vfspoll/internal/sched"
)

// Multiplexer is the Go shape of the interface-adapter layer (spec.md
// §4.4): a thin, stateless-except-for-its-file-table wrapper around the
// block/wake protocol, grounded on the teacher's *watcher receiver-method
// style (NewWatcher / (*watcher).Read / (*watcher).WaitIO, ...) rather
// than bare package-level functions, since every adapter here needs a
// file table to resolve descriptors against.
type Multiplexer struct {
	ft  *filetable.Table
	cpu *sched.CPU
}

// New creates a Multiplexer resolving descriptors against ft. Every call
// made through one Multiplexer shares a simulated per-CPU interrupt-mask
// domain, the way every thread on a real machine shares the same CPU's
// IRQ mask while running on it.
func New(ft *filetable.Table) *Multiplexer {
	return &Multiplexer{ft: ft, cpu: sched.NewCPU()}
}

// Poll is the array multiplex adapter of spec.md §4.4.1. It returns the
// number of entries with a non-empty Ready mask on success, 0 on pure
// timeout or on an empty fds slice (spec.md §8 boundary behaviour), and a
// non-nil error otherwise.
//
// timeoutMS follows spec.md §4.3's sentinels: negative waits indefinitely,
// zero returns immediately, positive is a millisecond timeout.
func (m *Multiplexer) Poll(fds []FdRequest, timeoutMS int) (int, error) {
	return runCall(nil, m.ft, fds, deadlineFromTimeoutMS(timeoutMS, false), m.cpu)
}

// PPoll is the signal-masked variant of spec.md §4.4.2. sigmask, when
// non-nil, is installed as the thread's blocked-signal set for the
// duration of the call and restored afterward; ctx provides the idiomatic
// Go cancellation hook, translated into an immediate deadline rather than
// a new cancellation path, so the core's non-goal of "no cancellation
// other than deadline or readiness" still holds from the core's point of
// view.
func (m *Multiplexer) PPoll(ctx context.Context, fds []FdRequest, timeout *time.Duration, sigmask *SigSet) (int, error) {
	if sigmask != nil {
		restore, err := sigmask.install()
		if err != nil {
			return -1, err
		}
		n, callErr := runCall(ctx, m.ft, fds, deadlineFromDuration(timeout), m.cpu)
		restoreErr := restore()
		if callErr != nil {
			return -1, callErr
		}
		if restoreErr != nil {
			return -1, restoreErr
		}
		return n, nil
	}

	return runCall(ctx, m.ft, fds, deadlineFromDuration(timeout), m.cpu)
}
