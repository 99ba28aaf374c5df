package vfspoll

// Ops is the single core operation the virtual-object layer exposes per
// spec.md §3 ("External object handle"): a readiness probe that both
// reports currently-true events and, when addToQueue is true and the
// object is not currently ready, joins the caller onto the object's
// internal wait queue through sink.
//
// Return convention, bit-identical in spirit to the source contract: a
// non-nil error means the probe failed (the caller aborts the whole call);
// otherwise the returned Events is the bitmask of currently-ready events,
// which may be zero. When addToQueue is true and the object is not ready,
// an implementation MUST call sink.Join at least once before returning.
type Ops interface {
	Poll(interest Events, sink *WaitSink, addToQueue bool) (Events, error)
}

// NoPollStub is the default poll behaviour for object kinds that do not
// implement their own readiness logic, matching vfscore_nopoll in
// original_source/lib/vfscore/include/vfscore/poll.h: every probe is a
// hard error, and nothing is ever linked onto a wait queue.
type NoPollStub struct{}

// Poll always fails with ErrBadFd, never touching sink.
func (NoPollStub) Poll(Events, *WaitSink, bool) (Events, error) {
	return 0, ErrBadFd
}
