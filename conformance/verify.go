package conformance

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/pinvec"
	"github.com/roach88/pinvec/internal/testutil"
)

// Scenario names used in reports.
const (
	ScenarioSetup  = "setup"
	ScenarioMatrix = "matrix"
)

// Verify runs the guarantee matrix against containers produced by factory
// and returns every finding.
//
// For each base length n of the length plan (0 through 3, a doubling spread,
// capacity-boundary neighbors and targetLen) it builds fresh containers of
// length n, records the identity token of every position, applies one
// mutation and compares tokens over the prefix the applicable guarantee
// protects:
//
//   - G1: Push, and Extend with m swept over [1, max(n, 2)]
//   - G2: Pop, Truncate to n-m with m swept over [0, n], Clear
//   - G3: Insert with p swept over [0, n]
//   - G4: Remove with p swept over [0, n)
//
// Building each container by alternating Push and Extend is itself checked
// as G1 (scenario "setup") before anything else at that length.
// Positions outside the protected prefix are never compared. Two positions
// that resolve to the same slot are a ScenarioError.
//
// After the matrix, every optional interface the container implements
// (CapacityStater, PointerIndexer, Cloner, Swapper, Slicer) is checked at
// the same length; disagreements are CapabilityIssues.
//
// Verify does not stop at the first failure and does not panic; a panic
// inside the implementation is recorded as a ScenarioError.
func Verify(factory Factory, targetLen int, opts ...Option) *Report {
	cfg := newConfig(opts)
	v := newVerifier(factory, cfg, newReport(cfg.ids.Generate(), cfg.name, targetLen))

	v.report.Lengths = lengthPlan(factory, targetLen, cfg)
	v.logger.Info("verification started",
		"run_id", v.report.RunID,
		"target_len", targetLen,
		"lengths", v.report.Lengths,
	)

	for _, n := range v.report.Lengths {
		if cfg.guarantees[pinvec.G1GrowEnd] {
			v.verifyGrowth(n)
		}
		v.checkPreconditions(n)
		if cfg.guarantees[pinvec.G1GrowEnd] {
			v.verifyG1(n)
		}
		if cfg.guarantees[pinvec.G2ShrinkEnd] {
			v.verifyG2(n)
		}
		if cfg.guarantees[pinvec.G3Insert] {
			v.verifyG3(n)
		}
		if cfg.guarantees[pinvec.G4Remove] {
			v.verifyG4(n)
		}
		v.verifyCapabilities(n)
		v.logger.Debug("length verified", "n", n, "violations", len(v.report.Violations))
	}

	v.logger.Info("verification finished",
		"run_id", v.report.RunID,
		"scenarios", v.report.Scenarios,
		"violations", len(v.report.Violations),
		"precondition_issues", len(v.report.Preconditions),
		"scenario_errors", len(v.report.ScenarioErrors),
		"capability_issues", len(v.report.CapabilityIssues),
		"last_seq", v.clock.Current(),
	)
	return v.report
}

type verifier struct {
	factory Factory
	cfg     config
	report  *Report
	clock   *testutil.DeterministicClock
	logger  *slog.Logger

	// next is the value of the next element placed. Values are unique so a
	// failing report can be matched against a debugger view, but they are
	// never used to decide identity.
	next int

	// seenSetup deduplicates growth violations: every length rebuilds the
	// same prefix and would report the same relocation again.
	seenSetup map[pinvec.Mutation]bool
}

func newVerifier(factory Factory, cfg config, report *Report) *verifier {
	return &verifier{
		factory:   factory,
		cfg:       cfg,
		report:    report,
		clock:     testutil.NewDeterministicClock(),
		logger:    cfg.logger,
		seenSetup: make(map[pinvec.Mutation]bool),
	}
}

func (v *verifier) verifyGrowth(n int) {
	seq := v.clock.Next()
	v.report.Scenarios++
	v.report.Checked[pinvec.G1GrowEnd]++

	mut := pinvec.Push(0)
	defer v.recoverScenario(seq, ScenarioSetup, &mut)

	c := v.factory()
	for _, size := range growthChunks(n) {
		mut = chunkMutation(c.Len(), size)
		before, err := capture(c, c.Len())
		if err != nil {
			v.scenarioError(seq, ScenarioSetup, mut, err.Error())
			return
		}
		v.grow(c, size)

		violation, err := check(c, mut, before)
		if err != nil {
			v.scenarioError(seq, ScenarioSetup, mut, err.Error())
			return
		}
		if violation != nil && !v.seenSetup[mut] {
			v.seenSetup[mut] = true
			v.record(seq, ScenarioSetup, *violation)
		}
	}
}

func (v *verifier) verifyG1(n int) {
	v.run(pinvec.Push(n), func(c pinvec.PinnedVec[int]) error {
		c.Push(v.value())
		return nil
	})
	for _, m := range sweep(1, max(n, 2), v.cfg.sweepLimit) {
		v.run(pinvec.Extend(n, m), func(c pinvec.PinnedVec[int]) error {
			c.Extend(v.values(m))
			return nil
		})
	}
}

func (v *verifier) verifyG2(n int) {
	if n > 0 {
		v.run(pinvec.Pop(n), func(c pinvec.PinnedVec[int]) error {
			if _, ok := c.Pop(); !ok {
				return fmt.Errorf("pop on length %d reported empty", c.Len())
			}
			return nil
		})
	}
	for _, m := range sweep(0, n, v.cfg.sweepLimit) {
		newLen := n - m
		v.run(pinvec.Truncate(n, newLen), func(c pinvec.PinnedVec[int]) error {
			return c.Truncate(newLen)
		})
	}
	v.run(pinvec.Clear(n), func(c pinvec.PinnedVec[int]) error {
		c.Clear()
		return nil
	})
}

func (v *verifier) verifyG3(n int) {
	for _, p := range sweep(0, n, v.cfg.sweepLimit) {
		v.run(pinvec.Insert(n, p), func(c pinvec.PinnedVec[int]) error {
			return c.Insert(p, v.value())
		})
	}
}

func (v *verifier) verifyG4(n int) {
	for _, p := range sweep(0, n-1, v.cfg.sweepLimit) {
		v.run(pinvec.Remove(n, p), func(c pinvec.PinnedVec[int]) error {
			_, err := c.Remove(p)
			return err
		})
	}
}

// run executes one matrix scenario on a fresh container of length mut.N.
func (v *verifier) run(mut pinvec.Mutation, apply func(pinvec.PinnedVec[int]) error) {
	const scenario = ScenarioMatrix
	seq := v.clock.Next()
	v.report.Scenarios++
	v.report.Checked[mut.Guarantee()]++
	defer v.recoverScenario(seq, scenario, &mut)

	c := v.factory()
	v.grow(c, mut.N)

	before, err := capture(c, mut.N)
	if err != nil {
		v.scenarioError(seq, scenario, mut, err.Error())
		return
	}

	if err := apply(c); err != nil {
		v.scenarioError(seq, scenario, mut, fmt.Sprintf("unexpected error: %v", err))
		return
	}

	violation, err := check(c, mut, before)
	if err != nil {
		v.scenarioError(seq, scenario, mut, err.Error())
		return
	}
	if violation != nil {
		v.record(seq, scenario, *violation)
	}
}

// grow appends size elements without checking, in the same chunking the
// growth scenario checks.
func (v *verifier) grow(c pinvec.PinnedVec[int], size int) {
	for _, chunk := range growthChunks(size) {
		if chunk == 1 {
			c.Push(v.value())
		} else {
			c.Extend(v.values(chunk))
		}
	}
}

func (v *verifier) value() int {
	v.next++
	return v.next
}

func (v *verifier) values(m int) []int {
	out := make([]int, m)
	for i := range out {
		out[i] = v.value()
	}
	return out
}

func (v *verifier) record(seq int64, scenario string, violation Violation) {
	violation.Seq = seq
	violation.Scenario = scenario
	v.report.Violations = append(v.report.Violations, violation)
	v.logger.Debug("guarantee violated",
		"guarantee", violation.Guarantee.String(),
		"op", violation.Op,
		"n", violation.N,
		"m", violation.M,
		"p", violation.P,
		"position", violation.Position,
	)
}

func (v *verifier) scenarioError(seq int64, scenario string, mut pinvec.Mutation, msg string) {
	v.report.ScenarioErrors = append(v.report.ScenarioErrors, ScenarioError{
		Seq:      seq,
		Scenario: scenario,
		Op:       mut.Op,
		N:        mut.N,
		M:        mut.M,
		P:        mut.P,
		Message:  msg,
	})
	v.logger.Debug("scenario error", "scenario", scenario, "mutation", mut.String(), "message", msg)
}

// recoverScenario turns a panic inside the implementation into a
// ScenarioError. mut points at the mutation in flight.
func (v *verifier) recoverScenario(seq int64, scenario string, mut *pinvec.Mutation) {
	r := recover()
	if r == nil {
		return
	}
	v.scenarioError(seq, scenario, *mut, panicMessage(r))
}

func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		var ge *pinvec.GrowthError
		if errors.As(err, &ge) {
			return fmt.Sprintf("capacity exhausted: %v", err)
		}
		return fmt.Sprintf("panic: %v", err)
	}
	return fmt.Sprintf("panic: %v", r)
}
