//go:build !linux
// +build !linux

package vol

import (
	"errors"
	"net"

	"github.com/lancs-net/vfspoll"
)

// ErrSocketUnsupported is returned by NewSocket on platforms where this
// port's epoll-backed Socket is not implemented (see socket_linux.go).
var ErrSocketUnsupported = errors.New("vol: Socket is only implemented for linux in this port")

// Socket is a stub on non-linux platforms.
type Socket struct{}

// NewSocket always fails on this platform.
func NewSocket(conn net.Conn) (*Socket, error) {
	return nil, ErrSocketUnsupported
}

func (s *Socket) Poll(vfspoll.Events, *vfspoll.WaitSink, bool) (vfspoll.Events, error) {
	return 0, ErrSocketUnsupported
}
func (s *Socket) Read(b []byte) (int, error)  { return 0, ErrSocketUnsupported }
func (s *Socket) Write(b []byte) (int, error) { return 0, ErrSocketUnsupported }
func (s *Socket) Fd() int                     { return -1 }
func (s *Socket) Close() error                { return nil }
