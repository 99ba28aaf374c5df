package sched_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lancs-net/vfspoll/internal/sched"
)

func TestCPUMaskIRQSerializes(t *testing.T) {
	cpu := sched.NewCPU()
	restore := cpu.MaskIRQ()

	done := make(chan struct{})
	go func() {
		cpu.MaskIRQ() // must block until restore() below runs
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second MaskIRQ acquired while first was still held")
	case <-time.After(20 * time.Millisecond):
	}

	restore()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second MaskIRQ never acquired after restore")
	}
}

func TestThreadYieldWakesOnRecordFire(t *testing.T) {
	th := sched.NewThread(nil)
	th.SetWakeupTime(time.Time{}, true)

	go func() {
		time.Sleep(5 * time.Millisecond)
		th.Record().Fire()
	}()

	start := time.Now()
	th.Yield(nil)
	assert.True(t, time.Since(start) >= 4*time.Millisecond)
}

func TestThreadYieldWakesOnTimeout(t *testing.T) {
	th := sched.NewThread(nil)
	th.SetWakeupTime(sched.Now().Add(20*time.Millisecond), false)

	start := time.Now()
	th.Yield(nil)
	assert.True(t, time.Since(start) >= 15*time.Millisecond)
}

func TestThreadYieldWakesOnContextCancel(t *testing.T) {
	th := sched.NewThread(nil)
	th.SetWakeupTime(time.Time{}, true)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	th.Yield(ctx)
	assert.True(t, time.Since(start) >= 4*time.Millisecond)
}

func TestThreadRearmReplacesRecord(t *testing.T) {
	th := sched.NewThread(nil)
	old := th.Record()
	old.Fire()

	fresh := th.Rearm()
	assert.NotSame(t, old, fresh)
	assert.Same(t, fresh, th.Record())

	select {
	case <-fresh.C():
		t.Fatal("a freshly rearmed record must not already be fired")
	default:
	}
}

func TestThreadRunnableFlag(t *testing.T) {
	th := sched.NewThread(nil)
	assert.True(t, th.Runnable())
	th.MarkBlocked()
	assert.False(t, th.Runnable())
	th.MarkRunnable()
	assert.True(t, th.Runnable())
}
