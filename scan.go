package vfspoll

import (
	"fmt"

	"github.com/lancs-net/vfspoll/internal/filetable"
)

// scan performs the scan engine's five steps from spec.md §4.2 for a
// single FdRequest:
//
//  1. resolve pfd.Fd via the file table; on failure, set pfd.Ready = NVal
//     and return an error wrapping ErrBadFd;
//  2. look up the backing object and invoke Ops.Poll;
//  3. release the file-table reference unconditionally;
//  4. store a positive probe result into pfd.Ready, otherwise leave it
//     untouched;
//  5. return the probe's result verbatim.
//
// wt is nil whenever addToQueue is false (the readiness-only rescan), so
// the WaitSink handed to the object is also nil in that case.
func scan(ft *filetable.Table, pfd *FdRequest, wt *waitTable, addToQueue bool) (Events, error) {
	handle, err := ft.Resolve(pfd.Fd)
	if err != nil {
		pfd.Ready = NVal
		return 0, fmt.Errorf("poll fd %d: %w", pfd.Fd, ErrBadFd)
	}
	defer handle.Release()

	ops, ok := handle.Object().(Ops)
	if !ok {
		pfd.Ready = NVal
		return 0, fmt.Errorf("poll fd %d: object does not implement Ops: %w", pfd.Fd, ErrBadFd)
	}

	var sink *WaitSink
	if addToQueue {
		sink = &WaitSink{t: wt}
	}

	ready, err := ops.Poll(pfd.Interest, sink, addToQueue)
	if err != nil {
		return 0, err
	}
	if ready > 0 {
		pfd.Ready = ready
	}
	return ready, nil
}
