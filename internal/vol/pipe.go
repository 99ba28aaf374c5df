package vol

import (
	"io"
	"sync"

	"github.com/lancs-net/vfspoll"
	"github.com/lancs-net/vfspoll/internal/waitqueue"
)

// Pipe is an in-process, fixed-capacity byte pipe implementing
// vfspoll.Ops. It is grounded on the teacher's fdDesc.readers/writers
// lists in watcher.go: a Pipe keeps one wait queue for blocked readers and
// one for blocked writers, and wakes the relevant queue whenever a
// Write/Read/Close changes what the other side could observe.
type Pipe struct {
	mu      sync.Mutex
	buf     []byte
	cap     int
	closed  bool
	readers *waitqueue.Queue
	writers *waitqueue.Queue
}

// NewPipe creates a Pipe with the given byte capacity.
func NewPipe(capacity int) *Pipe {
	return &Pipe{cap: capacity, readers: waitqueue.New(), writers: waitqueue.New()}
}

// Write appends up to len(b) bytes, bounded by remaining capacity. It
// never blocks: if the pipe is full it returns ErrWouldBlock so the
// caller multiplexes on vfspoll.Write readiness instead.
func (p *Pipe) Write(b []byte) (int, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	free := p.cap - len(p.buf)
	if free <= 0 {
		p.mu.Unlock()
		return 0, ErrWouldBlock
	}
	n := len(b)
	if n > free {
		n = free
	}
	p.buf = append(p.buf, b[:n]...)
	p.mu.Unlock()

	p.readers.Wake()
	return n, nil
}

// Read copies out up to len(b) buffered bytes. It never blocks: on an
// empty, open pipe it returns ErrWouldBlock; on an empty, closed pipe it
// returns io.EOF.
func (p *Pipe) Read(b []byte) (int, error) {
	p.mu.Lock()
	if len(p.buf) == 0 {
		closed := p.closed
		p.mu.Unlock()
		if closed {
			return 0, io.EOF
		}
		return 0, ErrWouldBlock
	}
	n := copy(b, p.buf)
	p.buf = p.buf[n:]
	p.mu.Unlock()

	p.writers.Wake()
	return n, nil
}

// Close marks the pipe closed and wakes every blocked reader and writer so
// they observe Hup on their next rescan.
func (p *Pipe) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.readers.Wake()
	p.writers.Wake()
	return nil
}

// Poll implements vfspoll.Ops.
func (p *Pipe) Poll(interest vfspoll.Events, sink *vfspoll.WaitSink, addToQueue bool) (vfspoll.Events, error) {
	p.mu.Lock()
	var ready vfspoll.Events
	if interest.Any(vfspoll.Read) && (len(p.buf) > 0 || p.closed) {
		ready |= vfspoll.Read
	}
	if interest.Any(vfspoll.Write) && !p.closed && len(p.buf) < p.cap {
		ready |= vfspoll.Write
	}
	if p.closed {
		ready |= vfspoll.Hup
	}
	p.mu.Unlock()

	if ready != 0 || sink == nil {
		return ready, nil
	}

	if interest.Any(vfspoll.Read) {
		if err := sink.Join(p.readers, nil); err != nil {
			return 0, err
		}
	}
	if interest.Any(vfspoll.Write) {
		if err := sink.Join(p.writers, nil); err != nil {
			return 0, err
		}
	}
	return 0, nil
}
