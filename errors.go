package vfspoll

import "errors"

// Sentinel errors surfaced by the core, named after the errno values they
// stand in for (spec.md §6, "Error codes").
var (
	// ErrFault corresponds to EFAULT: a nil fds slice with a non-zero
	// length request, or a nil bitset structure where one was required.
	// No code path in this package returns it: a Go slice carries its own
	// length, and Select treats a nil *FdSet as an empty set.
	ErrFault = errors.New("vfspoll: invalid argument (EFAULT)")

	// ErrBadFd corresponds to EBADF: a descriptor did not resolve, or the
	// resolved object uses the default no-poll stub.
	ErrBadFd = errors.New("vfspoll: bad file descriptor (EBADF)")

	// ErrNoMemory corresponds to ENOMEM: the WaitTable could not grow.
	// Go's allocator does not fail synchronously the way a kernel heap
	// can, so this is only ever returned when a test has installed the
	// injectable allocation-failure hook (the waitTable.allocFailAt field
	// in waittable.go) to exercise the resource-error testable property of
	// spec.md §8.
	ErrNoMemory = errors.New("vfspoll: wait table allocation failed (ENOMEM)")
)

// EINTR (spec.md §6) has no code path in this package: PPoll's ctx
// cancellation is deliberately translated into an immediate deadline
// rather than a signal-delivery interruption (see multiplexer.go), and
// nothing else in the core observes an asynchronous signal. There is
// accordingly no errEINTR sentinel here; add one only alongside real
// signal-driven wake support.
