package conformance

import (
	"errors"
	"fmt"

	"github.com/roach88/pinvec"
)

// RunScenario applies a scripted scenario to one container from factory
// and returns a report with one StepTrace per step.
//
// The container is first grown to s.InitialLen with the same alternating
// Push/Extend chunking Verify uses, each chunk checked as G1. Each step
// then runs against tokens captured immediately before it. Steps outside
// the contract preconditions must be rejected without changing the length;
// misbehavior there is reported as a PreconditionIssue. A panic ends the
// script with a ScenarioError.
func RunScenario(factory Factory, s *Scenario, opts ...Option) *Report {
	cfg := newConfig(opts)
	name := s.Name
	if cfg.name != "" {
		name = cfg.name + "/" + s.Name
	}

	v := newVerifier(factory, cfg, newReport(cfg.ids.Generate(), name, s.InitialLen))
	v.report.Lengths = []int{s.InitialLen}
	v.report.Scenarios = 1

	v.logger.Info("scenario started", "run_id", v.report.RunID, "scenario", s.Name, "steps", len(s.Steps))
	v.runScript(s)
	v.logger.Info("scenario finished",
		"run_id", v.report.RunID,
		"scenario", s.Name,
		"violations", len(v.report.Violations),
		"precondition_issues", len(v.report.Preconditions),
		"scenario_errors", len(v.report.ScenarioErrors),
		"last_seq", v.clock.Current(),
	)
	return v.report
}

// errStop ends a script after a step left the container in an unknown
// state.
var errStop = errors.New("script stopped")

func (v *verifier) runScript(s *Scenario) {
	c, ok := v.setupScript(s)
	if !ok {
		return
	}

	for i, st := range s.Steps {
		if err := v.runStep(s.Name, i, st, c); errors.Is(err, errStop) {
			return
		}
	}

	if s.FinalLen != nil && c.Len() != *s.FinalLen {
		mut := pinvec.Mutation{N: c.Len()}
		v.scenarioError(v.clock.Next(), s.Name, mut,
			fmt.Sprintf("final length is %d, want %d", c.Len(), *s.FinalLen))
	}
}

// setupScript grows a fresh container to the initial length, checking each
// growth chunk as G1.
func (v *verifier) setupScript(s *Scenario) (c pinvec.PinnedVec[int], ok bool) {
	seq := v.clock.Next()
	mut := pinvec.Push(0)
	defer func() {
		if r := recover(); r != nil {
			v.scenarioError(seq, s.Name, mut, panicMessage(r))
			ok = false
		}
	}()

	c = v.factory()
	for _, size := range growthChunks(s.InitialLen) {
		mut = chunkMutation(c.Len(), size)
		before, err := capture(c, c.Len())
		if err != nil {
			v.scenarioError(seq, s.Name, mut, err.Error())
			return nil, false
		}
		v.grow(c, size)

		v.report.Checked[pinvec.G1GrowEnd]++
		violation, err := check(c, mut, before)
		if err != nil {
			v.scenarioError(seq, s.Name, mut, err.Error())
			return nil, false
		}
		if violation != nil {
			v.record(seq, ScenarioSetup, *violation)
		}
	}
	return c, true
}

func (v *verifier) runStep(scenario string, index int, st Step, c pinvec.PinnedVec[int]) (err error) {
	seq := v.clock.Next()
	n := c.Len()
	mut, rejected, sentinel := st.mutation(n)

	trace := StepTrace{Seq: seq, Step: index, Op: st.Op, N: mut.N, M: mut.M, P: mut.P}
	defer func() {
		if r := recover(); r != nil {
			v.scenarioError(seq, scenario, mut, fmt.Sprintf("step %d %s: %s", index, st, panicMessage(r)))
			trace.Outcome = OutcomeError
			err = errStop
		}
		trace.LenAfter = safeLen(c)
		v.report.Steps = append(v.report.Steps, trace)
	}()

	if want := expectFor(rejected); st.Expect != want {
		v.scenarioError(seq, scenario, mut, fmt.Sprintf("step %d %s on length %d: expect %q, but the step is %s",
			index, st, n, st.Expect, describeExpect(want)))
	}

	if rejected {
		trace.Outcome = OutcomePrecondition
		v.runRejectedStep(seq, index, st, c, sentinel)
		return nil
	}

	trace.Protected = mut.Protected()
	v.report.Checked[mut.Guarantee()]++

	before, cerr := capture(c, n)
	if cerr != nil {
		v.scenarioError(seq, scenario, mut, cerr.Error())
		trace.Outcome = OutcomeError
		return errStop
	}

	if aerr := applyStep(c, st); aerr != nil {
		v.scenarioError(seq, scenario, mut, fmt.Sprintf("step %d %s: unexpected error: %v", index, st, aerr))
		trace.Outcome = OutcomeError
		return errStop
	}

	violation, cerr := check(c, mut, before)
	switch {
	case cerr != nil:
		v.scenarioError(seq, scenario, mut, fmt.Sprintf("step %d %s: %v", index, st, cerr))
		trace.Outcome = OutcomeError
		return errStop
	case violation != nil:
		v.record(seq, scenario, *violation)
		trace.Outcome = OutcomeViolation
	default:
		trace.Outcome = OutcomeOK
	}
	return nil
}

// runRejectedStep runs a step that the contract preconditions forbid and
// checks that it was refused without touching the length.
func (v *verifier) runRejectedStep(seq int64, index int, st Step, c pinvec.PinnedVec[int], sentinel error) {
	n := c.Len()
	name := fmt.Sprintf("step %d %s", index, st)

	var expected, actual string
	if st.Op == pinvec.OpPop {
		expected = "empty signal"
		if _, ok := c.Pop(); ok {
			actual = "popped a value"
		} else {
			expected, actual = expectLen(c, n, expected)
		}
	} else {
		expected, actual = expectErr(c, n, applyStep(c, st), sentinel)
	}

	if expected != actual {
		v.precondition(seq, name, n, expected, actual)
	}
}

// applyStep performs the step's operation. Values placed are negative step
// markers so they are distinguishable from setup values.
func applyStep(c pinvec.PinnedVec[int], st Step) error {
	switch st.Op {
	case pinvec.OpPush:
		c.Push(-1)
	case pinvec.OpExtend:
		vs := make([]int, st.Count)
		for i := range vs {
			vs[i] = -(i + 1)
		}
		c.Extend(vs)
	case pinvec.OpInsert:
		return c.Insert(deref(st.At), -1)
	case pinvec.OpRemove:
		_, err := c.Remove(deref(st.At))
		return err
	case pinvec.OpPop:
		if _, ok := c.Pop(); !ok {
			return fmt.Errorf("pop on length %d reported empty", c.Len())
		}
	case pinvec.OpTruncate:
		return c.Truncate(deref(st.Len))
	case pinvec.OpClear:
		c.Clear()
	}
	return nil
}

func expectFor(rejected bool) string {
	if rejected {
		return ExpectPrecondition
	}
	return ExpectOK
}

func describeExpect(expect string) string {
	if expect == ExpectPrecondition {
		return "outside the contract preconditions"
	}
	return "a valid mutation"
}

// safeLen returns c.Len(), or -1 if it panics.
func safeLen(c pinvec.PinnedVec[int]) (n int) {
	defer func() {
		if recover() != nil {
			n = -1
		}
	}()
	return c.Len()
}
