// Package sched provides the scheduler collaborator the core's block/wake
// protocol (spec.md §4.3) relies on: the "current thread" for a call, the
// block/unblock primitives, the monotonic clock, and per-CPU interrupt
// masking.
//
// There is no real single-CPU cooperative scheduler backing a Go program,
// so this package simulates one thread per blocking call with a goroutine
// parked on a channel, and simulates per-CPU interrupt masking with a
// mutex guarding the region the spec calls the atomicity barrier (I4). The
// guarantee that matters -- no wake-up is lost between joining the wait
// queues and actually going to sleep -- holds regardless, because Fire on
// an unbuffered-but-closed channel (waitqueue.Record) latches permanently.
package sched

import (
	"context"
	"time"

	"github.com/lancs-net/vfspoll/internal/waitqueue"
)

// Now returns the current monotonic-clock instant, mirroring
// ukplat_monotonic_clock(). time.Time in Go already carries a monotonic
// reading, so arithmetic on the values returned here is monotonic as long
// as they are never round-tripped through wall-clock serialization.
func Now() time.Time {
	return time.Now()
}

// CPU models a single per-CPU interrupt mask. One CPU is shared by every
// Thread created from it.
type CPU struct {
	irq chan struct{}
}

// NewCPU returns a CPU with interrupts initially unmasked.
func NewCPU() *CPU {
	c := &CPU{irq: make(chan struct{}, 1)}
	c.irq <- struct{}{}
	return c
}

// MaskIRQ masks interrupts on this CPU and returns a function that restores
// them. Spec I4: join-queues + set-deadline + clear-runnable + hand-off-to-
// scheduler must all happen inside one masked window.
func (c *CPU) MaskIRQ() (restore func()) {
	<-c.irq
	return func() { c.irq <- struct{}{} }
}

// Thread is the scheduler's view of the goroutine driving one blocking
// call. A fresh Thread is created per call (spec.md's "current thread" is
// call-scoped here, never reused across calls).
type Thread struct {
	cpu        *CPU
	record     *waitqueue.Record
	wakeupTime time.Time
	noWakeup   bool // true => "Never", scheduler timed-wake does not apply
	runnable   bool
}

// NewThread creates a thread bound to its own private CPU. Passing a shared
// *CPU lets tests exercise I4 across concurrently-parking callers.
func NewThread(cpu *CPU) *Thread {
	if cpu == nil {
		cpu = NewCPU()
	}
	return &Thread{cpu: cpu, record: waitqueue.NewRecord(), runnable: true}
}

// CPU returns the thread's interrupt-mask domain.
func (t *Thread) CPU() *CPU { return t.cpu }

// Record returns the thread's current sleep record, the value linked into
// every wait queue the thread joins (spec.md §4.3 step 3b).
func (t *Thread) Record() *waitqueue.Record { return t.record }

// Rearm replaces the thread's sleep record with a fresh, unfired one and
// returns it. A Record is a one-shot latch (Fire permanently closes its
// channel), so re-entering step 3 on a rescan-found-nothing iteration
// requires a new Record each time around the park loop -- reusing the
// same already-fired Record would make Yield return instantly forever.
func (t *Thread) Rearm() *waitqueue.Record {
	t.record = waitqueue.NewRecord()
	return t.record
}

// SetWakeupTime stamps the scheduler's timed-wake deadline. never == true
// (or a zero at) means "no timeout" (spec.md's Never sentinel).
func (t *Thread) SetWakeupTime(at time.Time, never bool) {
	t.wakeupTime = at
	t.noWakeup = never
}

// MarkBlocked marks the thread not-runnable and notifies the scheduler it
// is blocked (spec.md §4.3 step 3d). There is no separate scheduler run
// queue to notify in this simulation; the flag exists so Yield and tests
// can observe the state transition.
func (t *Thread) MarkBlocked() { t.runnable = false }

// MarkRunnable self-wakes the thread (step 5 "mark the thread runnable").
func (t *Thread) MarkRunnable() { t.runnable = true }

// Runnable reports the thread's current runnable flag.
func (t *Thread) Runnable() bool { return t.runnable }

// Yield blocks until the thread's record fires, the scheduler's timed-wake
// deadline arrives, or ctx is cancelled -- whichever happens first. This is
// the single suspension point named in spec.md §5 ("Suspension points").
func (t *Thread) Yield(ctx context.Context) {
	var timerC <-chan time.Time
	if !t.noWakeup && !t.wakeupTime.IsZero() {
		timer := time.NewTimer(time.Until(t.wakeupTime))
		defer timer.Stop()
		timerC = timer.C
	}

	if ctx == nil {
		select {
		case <-t.record.C():
		case <-timerC:
		}
		return
	}

	select {
	case <-t.record.C():
	case <-timerC:
	case <-ctx.Done():
	}
}
