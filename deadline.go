package vfspoll

import (
	"time"

	"github.com/lancs-net/vfspoll/internal/sched"
)

// deadline is the core's internal representation of spec.md §4.3's three
// states: Never, Immediate, or a concrete monotonic instant.
type deadline struct {
	at        time.Time
	never     bool
	immediate bool
}

func neverDeadline() deadline     { return deadline{never: true} }
func immediateDeadline() deadline { return deadline{immediate: true} }

// deadlineFromTimeoutMS implements spec.md §4.3's arithmetic:
//
//	timeout <  0 -> Never
//	timeout == 0 -> Immediate
//	timeout >  0 -> now + timeout*1e6 nanoseconds
//
// buggy, when true, reproduces the original source's literal
// `now() + timeout*1000` (microseconds-against-a-nanosecond-clock) bug
// flagged as an open question in spec.md §9. Production call sites always
// pass false; only the regression test in call_internal_test.go sets it.
func deadlineFromTimeoutMS(timeoutMS int, buggy bool) deadline {
	switch {
	case timeoutMS < 0:
		return neverDeadline()
	case timeoutMS == 0:
		return immediateDeadline()
	default:
		d := time.Duration(timeoutMS) * time.Millisecond
		if buggy {
			d = time.Duration(timeoutMS) * time.Microsecond
		}
		return deadline{at: sched.Now().Add(d)}
	}
}

func deadlineFromDuration(d *time.Duration) deadline {
	if d == nil {
		return neverDeadline()
	}
	if *d <= 0 {
		return immediateDeadline()
	}
	return deadline{at: sched.Now().Add(*d)}
}

// passed reports whether now has reached or passed the deadline. Never and
// Immediate deadlines never "pass" in this sense; Immediate is handled as
// a separate shortcut in runCall before any parking occurs.
func (d deadline) passed(now time.Time) bool {
	if d.never || d.immediate {
		return false
	}
	return !now.Before(d.at)
}
