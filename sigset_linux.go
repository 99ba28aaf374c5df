//go:build linux
// +build linux

package vfspoll

import (
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"
)

// SigSet is the Go analogue of sigset_t, used by PPoll to install a
// thread-directed signal mask for the duration of a call (spec.md
// §4.4.2). Signal masking is genuinely thread-directed on POSIX systems,
// so installing one pins the calling goroutine to its OS thread for the
// duration via runtime.LockOSThread -- unlike most of this package, which
// only simulates the source's single-CPU model, this is real
// sigprocmask(2)/pthread_sigmask(3) via golang.org/x/sys/unix.
type SigSet struct {
	raw unix.Sigset_t
}

// NewSigSet builds a SigSet containing the given signals.
func NewSigSet(sigs ...syscall.Signal) *SigSet {
	s := &SigSet{}
	for _, sig := range sigs {
		s.Add(sig)
	}
	return s
}

// Add adds sig to the set. Sigset_t on linux is a fixed array of uint64
// words, one bit per signal number (signals are 1-indexed).
func (s *SigSet) Add(sig syscall.Signal) {
	bit := uint(sig) - 1
	s.raw.Val[bit/64] |= 1 << (bit % 64)
}

// install atomically installs s as the thread's blocked-signal set,
// returning a function that restores the previous mask.
func (s *SigSet) install() (restore func() error, err error) {
	runtime.LockOSThread()
	var old unix.Sigset_t
	if err := unix.PthreadSigmask(unix.SIG_SETMASK, &s.raw, &old); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	return func() error {
		defer runtime.UnlockOSThread()
		return unix.PthreadSigmask(unix.SIG_SETMASK, &old, nil)
	}, nil
}
