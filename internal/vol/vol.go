// Package vol is a minimal virtual-object layer: concrete object kinds
// implementing vfspoll.Ops, used to exercise the multiplexer core in this
// module's own tests and cmd/pollcat. Per spec.md §1, the core proper
// never implements object-specific readiness logic; everything here lives
// strictly behind the Ops boundary.
package vol

import (
	"errors"

	"github.com/lancs-net/vfspoll"
)

// ErrUnsupportedConn is returned when a net.Conn does not expose the raw
// fd access (SyscallConn) a Socket needs to dup() its descriptor, mirroring
// the teacher's ErrUnsupported in watcher.go's dupconn helper.
var ErrUnsupportedConn = errors.New("vol: connection does not support SyscallConn")

// ErrWouldBlock is returned by Pipe's Read/Write when the operation cannot
// complete without blocking; callers are expected to multiplex on the
// Pipe via vfspoll.Multiplexer.Poll/Select instead of blocking here.
var ErrWouldBlock = errors.New("vol: operation would block")

// Console is a demonstration object kind with no readiness logic of its
// own, exercising the default no-poll stub of spec.md §6
// ("vfscore_nopoll" in original_source/lib/vfscore/include/vfscore/poll.h):
// every probe against a Console fails with vfspoll.ErrBadFd.
type Console struct {
	vfspoll.NoPollStub
}

// NewConsole returns a Console object.
func NewConsole() *Console { return &Console{} }
