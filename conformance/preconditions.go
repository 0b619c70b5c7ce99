package conformance

import (
	"errors"
	"fmt"

	"github.com/roach88/pinvec"
)

// precondCheck is a single precondition check run against a fresh container of
// length n. It returns the expected and actual outcome, which differ on
// failure.
type precondCheck struct {
	name  string
	empty bool // only run on an empty container
	run   func(c pinvec.PinnedVec[int], n int) (expected, actual string)
}

var precondChecks = []precondCheck{
	{name: "get(n)", run: func(c pinvec.PinnedVec[int], n int) (string, string) {
		_, err := c.Get(n)
		return expectErr(c, n, err, pinvec.ErrIndexOutOfRange)
	}},
	{name: "get(-1)", run: func(c pinvec.PinnedVec[int], n int) (string, string) {
		_, err := c.Get(-1)
		return expectErr(c, n, err, pinvec.ErrIndexOutOfRange)
	}},
	{name: "insert(n+1)", run: func(c pinvec.PinnedVec[int], n int) (string, string) {
		err := c.Insert(n+1, -1)
		return expectErr(c, n, err, pinvec.ErrInsertOutOfRange)
	}},
	{name: "remove(n)", run: func(c pinvec.PinnedVec[int], n int) (string, string) {
		_, err := c.Remove(n)
		return expectErr(c, n, err, pinvec.ErrIndexOutOfRange)
	}},
	{name: "truncate(n+1)", run: func(c pinvec.PinnedVec[int], n int) (string, string) {
		err := c.Truncate(n + 1)
		return expectErr(c, n, err, pinvec.ErrTruncateOutOfRange)
	}},
	{name: "truncate(n)", run: func(c pinvec.PinnedVec[int], n int) (string, string) {
		if err := c.Truncate(n); err != nil {
			return "no-op", fmt.Sprintf("error %v", err)
		}
		return expectLen(c, n, "no-op")
	}},
	{name: "pop(empty)", empty: true, run: func(c pinvec.PinnedVec[int], n int) (string, string) {
		if _, ok := c.Pop(); ok {
			return "empty signal", "popped a value"
		}
		return expectLen(c, 0, "empty signal")
	}},
	{name: "clear(empty)", empty: true, run: func(c pinvec.PinnedVec[int], n int) (string, string) {
		c.Clear()
		return expectLen(c, 0, "no-op")
	}},
}

// expectErr checks that err wraps want and that the length is still n.
func expectErr(c pinvec.PinnedVec[int], n int, err, want error) (string, string) {
	expected := fmt.Sprintf("error %q", want)
	switch {
	case err == nil:
		return expected, "no error"
	case !errors.Is(err, want):
		return expected, fmt.Sprintf("error %q", err)
	}
	return expectLen(c, n, expected)
}

func expectLen(c pinvec.PinnedVec[int], n int, expected string) (string, string) {
	if got := c.Len(); got != n {
		return expected, fmt.Sprintf("length changed from %d to %d", n, got)
	}
	return expected, expected
}

// checkPreconditions runs every precondition check at length n. Findings
// go to Report.Preconditions and never count as guarantee violations.
func (v *verifier) checkPreconditions(n int) {
	for _, pc := range precondChecks {
		if pc.empty && n != 0 {
			continue
		}
		v.runPrecondition(pc, n)
	}
}

func (v *verifier) runPrecondition(pc precondCheck, n int) {
	seq := v.clock.Next()
	defer func() {
		if r := recover(); r != nil {
			v.precondition(seq, pc.name, n, "no panic", panicMessage(r))
		}
	}()

	c := v.factory()
	v.grow(c, n)
	if expected, actual := pc.run(c, n); expected != actual {
		v.precondition(seq, pc.name, n, expected, actual)
	}
}

func (v *verifier) precondition(seq int64, name string, n int, expected, actual string) {
	v.report.Preconditions = append(v.report.Preconditions, PreconditionIssue{
		Seq:      seq,
		Check:    name,
		N:        n,
		Expected: expected,
		Actual:   actual,
	})
	v.logger.Debug("precondition issue", "check", name, "n", n, "expected", expected, "actual", actual)
}
