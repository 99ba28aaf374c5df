// Package testharness is the peripheral test-registration plumbing named
// in spec.md §1 as present in the repo but outside the multiplexer core.
// It is grounded on original_source/lib/uktest/test.c: explicit suite
// registration, per-case assertion counters, and a summary report -- but,
// per spec.md §9's note on "Global mutable state", suites are registered
// from an explicit call at an initialisation entry point (Register), never
// from a package-level init() that runs regardless of whether the harness
// is wanted.
package testharness

import (
	"fmt"
	"sync"
)

// Case is a single named test case within a Suite.
type Case struct {
	Name string
	Fn   func(*T)
}

// Suite groups related cases, mirroring struct uk_testsuite.
type Suite struct {
	Name        string
	Cases       []Case
	FailedCases int
}

// T tracks assertion counts for one running case, mirroring struct
// uk_testcase's total_asserts/failed_asserts.
type T struct {
	CaseName      string
	TotalAsserts  int
	FailedAsserts int
	failMessages  []string
}

// Assert records one assertion; failures are accumulated rather than
// aborting the case, matching uktest's "keep counting" behaviour.
func (t *T) Assert(cond bool, format string, args ...any) {
	t.TotalAsserts++
	if !cond {
		t.FailedAsserts++
		t.failMessages = append(t.failMessages, fmt.Sprintf(format, args...))
	}
}

// Failed reports whether any assertion in this case failed.
func (t *T) Failed() bool { return t.FailedAsserts > 0 }

// Messages returns the recorded failure messages, in assertion order.
func (t *T) Messages() []string { return t.failMessages }

var (
	mu     sync.Mutex
	suites []*Suite
)

// Register adds suite to the process-wide registry. Call this explicitly
// from your program's initialisation entry point (e.g. early in main, or
// from a TestMain), not from a package-level init().
func Register(suite *Suite) {
	mu.Lock()
	defer mu.Unlock()
	suites = append(suites, suite)
}

// Reset clears the registry; mainly useful so tests of this package itself
// don't leak state into each other.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	suites = nil
}

// Summary aggregates counters across every registered suite, mirroring
// uk_testsuite_count / uk_testcase_count / uk_test_assert_count and their
// _failed_count counterparts.
type Summary struct {
	Suites        int
	SuitesFailed  int
	Cases         int
	CasesFailed   int
	Asserts       int
	AssertsFailed int
}

// Run executes every registered suite's cases in registration order and
// returns the aggregate summary.
func Run() Summary {
	mu.Lock()
	registered := append([]*Suite(nil), suites...)
	mu.Unlock()

	var s Summary
	s.Suites = len(registered)
	for _, suite := range registered {
		suite.FailedCases = 0
		for _, c := range suite.Cases {
			s.Cases++
			tc := &T{CaseName: c.Name}
			c.Fn(tc)
			s.Asserts += tc.TotalAsserts
			s.AssertsFailed += tc.FailedAsserts
			if tc.Failed() {
				s.CasesFailed++
				suite.FailedCases++
			}
		}
		if suite.FailedCases > 0 {
			s.SuitesFailed++
		}
	}
	return s
}

// String renders the summary the way uk_test_print_stats logs it.
func (s Summary) String() string {
	return fmt.Sprintf(
		"Test Summary:\n - Suites:     %d failed, %d total\n - Cases:      %d failed, %d total\n - Assertions: %d failed, %d total",
		s.SuitesFailed, s.Suites, s.CasesFailed, s.Cases, s.AssertsFailed, s.Asserts,
	)
}
