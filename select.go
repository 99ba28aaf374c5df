package vfspoll

import "time"

// Select is the bitset multiplex adapter of spec.md §4.4.3: it translates
// up to three descriptor bitsets into a temporary FdRequest array, invokes
// Poll, and translates the result back.
//
// On error the bitsets are left unchanged. On success all three bitsets
// are cleared and then populated with exactly the descriptors whose
// corresponding Ready bit came back set; the return value is the total
// number of bits set across all three sets (spec.md: "the return value is
// the total number of bits set", which can exceed the number of ready
// FdRequests when one descriptor is both readable and writable).
func (m *Multiplexer) Select(nfds int, read, write, except *FdSet, timeout *time.Duration) (int, error) {
	if nfds < 0 {
		nfds = 0
	}

	// Supplemented from original_source/lib/vfscore/poll.c's select():
	// the original overestimates its scratch allocation to nfds entries
	// rather than computing the exact count up front; we mirror that by
	// pre-sizing the scratch slice's capacity to nfds even though fewer
	// entries will usually be appended.
	scratch := make([]FdRequest, 0, nfds)
	for i := 0; i < nfds; i++ {
		var interest Events
		if read != nil && read.IsSet(i) {
			interest |= Read
		}
		if write != nil && write.IsSet(i) {
			interest |= Write
		}
		if except != nil && except.IsSet(i) {
			interest |= Error
		}
		if interest != 0 {
			scratch = append(scratch, FdRequest{Fd: i, Interest: interest})
		}
	}

	_, err := m.PPoll(nil, scratch, timeout, nil)
	if err != nil {
		return -1, err
	}

	if read != nil {
		read.Zero()
	}
	if write != nil {
		write.Zero()
	}
	if except != nil {
		except.Zero()
	}

	total := 0
	for _, req := range scratch {
		if read != nil && req.Ready.Any(Read) {
			read.Set(req.Fd)
			total++
		}
		if write != nil && req.Ready.Any(Write) {
			write.Set(req.Fd)
			total++
		}
		if except != nil && req.Ready.Any(Error) {
			except.Set(req.Fd)
			total++
		}
	}
	return total, nil
}
