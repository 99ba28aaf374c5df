// Package filetable implements the file table collaborator named in
// spec.md §1: resolution of an integer descriptor to an object handle plus
// a reference count. It knows nothing about readiness, polling, or the
// multiplexer core -- it is deliberately generic over the object type so
// the core can depend on it without creating an import cycle with the
// virtual-object layer.
//
// Grounded on the teacher's descs map[int]*fdDesc / connIdents bookkeeping
// in watcher.go, generalized with its own lock: the teacher only ever
// touches descs from its single loop goroutine, but a file table serving a
// multiplexer core must tolerate concurrent Resolve calls from every
// blocked waiter.
package filetable

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Resolve when fd does not name a live entry.
var ErrNotFound = errors.New("filetable: descriptor not found")

// ErrExists is returned by Insert when fd is already registered.
var ErrExists = errors.New("filetable: descriptor already registered")

type entry struct {
	obj  any
	refs int
}

// Table is the process-wide (or test-scoped) descriptor table.
type Table struct {
	mu   sync.RWMutex
	objs map[int]*entry
}

// New returns an empty table.
func New() *Table {
	return &Table{objs: make(map[int]*entry)}
}

// Insert registers obj under fd. It is the caller's job to pick a fd that
// is not already in use; Insert reports ErrExists otherwise.
func (t *Table) Insert(fd int, obj any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.objs[fd]; ok {
		return fmt.Errorf("insert fd %d: %w", fd, ErrExists)
	}
	t.objs[fd] = &entry{obj: obj}
	return nil
}

// Remove drops fd from the table regardless of outstanding references.
// Handles already resolved before the Remove continue to work (their
// Release just decrements a refcount nobody reads again); this mirrors the
// teacher's releaseConn, which deletes from descs and closes the fd
// without waiting for in-flight polls to notice.
func (t *Table) Remove(fd int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.objs, fd)
}

// Handle is a refcounted reference to a resolved object. It must be
// released exactly once.
type Handle struct {
	t   *Table
	fd  int
	e   *entry
	obj any
}

// Object returns the resolved object. Callers type-assert it against
// whatever interface their layer expects (e.g. vol.Ops).
func (h *Handle) Object() any { return h.obj }

// Fd returns the descriptor this handle was resolved from.
func (h *Handle) Fd() int { return h.fd }

// Release drops the handle's reference. The scan engine calls this
// unconditionally after every probe (spec.md §4.2 step 3), regardless of
// whether the probe succeeded.
func (h *Handle) Release() {
	h.t.mu.Lock()
	defer h.t.mu.Unlock()
	h.e.refs--
}

// Resolve looks up fd and returns a new reference to it. Returns
// ErrNotFound if fd is not registered.
func (t *Table) Resolve(fd int) (*Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.objs[fd]
	if !ok {
		return nil, fmt.Errorf("resolve fd %d: %w", fd, ErrNotFound)
	}
	e.refs++
	return &Handle{t: t, fd: fd, e: e, obj: e.obj}, nil
}

// RefCount reports the current reference count for fd, for tests.
func (t *Table) RefCount(fd int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.objs[fd]; ok {
		return e.refs
	}
	return 0
}
