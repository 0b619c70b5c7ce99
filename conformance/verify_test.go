package conformance

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pinvec"
	"github.com/roach88/pinvec/internal/refvec"
)

func fixedFactory(capacity int) Factory {
	return func() pinvec.PinnedVec[int] { return refvec.NewFixed[int](capacity) }
}

func faultyFactory(capacity int, sabotage refvec.Sabotage) Factory {
	return func() pinvec.PinnedVec[int] { return refvec.NewFaulty[int](capacity, sabotage) }
}

func fixedIDs() Option {
	return WithIDGenerator(FixedRunID("run-golden"))
}

func TestVerify_FixedConforms(t *testing.T) {
	report := Verify(fixedFactory(256), 64, fixedIDs())

	Require(t, report)
	assert.True(t, report.Passed())
	assert.Contains(t, report.Lengths, 0)
	assert.Contains(t, report.Lengths, 64)
	for _, g := range pinvec.AllGuarantees() {
		assert.Positive(t, report.Checked[g], "guarantee %s never checked", g)
	}
}

func TestVerify_PagedConforms(t *testing.T) {
	factory := func() pinvec.PinnedVec[int] { return refvec.NewPaged[int](refvec.WithFirstPage(2)) }

	report := Verify(factory, 70, fixedIDs())

	Require(t, report)
	// Page boundaries of 2, 6, 14, 30, 62 and their neighbors are planned.
	for _, n := range []int{1, 2, 3, 5, 6, 7, 13, 14, 15, 29, 30, 31, 61, 62, 63} {
		assert.Contains(t, report.Lengths, n)
	}
}

func TestVerify_NaiveFailsG1(t *testing.T) {
	factory := func() pinvec.PinnedVec[int] { return refvec.NewNaive[int](0) }

	report := Verify(factory, 32, fixedIDs())

	assert.False(t, report.Passed())
	require.NotEmpty(t, report.ViolationsOf(pinvec.G1GrowEnd))
	for _, v := range report.ViolationsOf(pinvec.G1GrowEnd) {
		assert.GreaterOrEqual(t, v.N, 1, "G1 can not be violated with nothing to protect")
		assert.Less(t, v.Position, v.Protected)
		assert.NotEqual(t, v.Before, v.After)
	}
	assert.Empty(t, report.ViolationsOf(pinvec.G2ShrinkEnd))
	assert.Empty(t, report.ViolationsOf(pinvec.G4Remove))
	assert.Empty(t, report.Preconditions)
	require.Error(t, report.Err())
}

func TestVerify_FaultyDetection(t *testing.T) {
	tests := []struct {
		name     string
		sabotage refvec.Sabotage
		want     pinvec.Guarantee
	}{
		{name: "grow", sabotage: refvec.RelocateOnGrow, want: pinvec.G1GrowEnd},
		{name: "shrink", sabotage: refvec.RelocateOnShrink, want: pinvec.G2ShrinkEnd},
		{name: "insert", sabotage: refvec.RelocateOnInsert, want: pinvec.G3Insert},
		{name: "remove", sabotage: refvec.RelocateOnRemove, want: pinvec.G4Remove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Verify(faultyFactory(64, tt.sabotage), 16, fixedIDs())

			assert.False(t, report.Passed())
			assert.Equal(t, []pinvec.Guarantee{tt.want}, report.ViolatedGuarantees())
			assert.Empty(t, report.Preconditions)
			assert.Empty(t, report.ScenarioErrors)
		})
	}
}

func TestVerify_RemoveAtZeroCarriesNoClaim(t *testing.T) {
	report := Verify(faultyFactory(16, refvec.RelocateOnRemove), 4,
		WithLengths(4), WithGuarantees(pinvec.G4Remove), fixedIDs())

	violations := report.ViolationsOf(pinvec.G4Remove)
	require.Len(t, violations, 3)
	for i, v := range violations {
		assert.Equal(t, i+1, v.P, "remove(0) relocating everything is not a violation")
		assert.Equal(t, v.P, v.Protected)
		assert.Equal(t, v.P, v.Moved)
		assert.Equal(t, 0, v.Position)
	}
}

func TestVerify_InsertAtEndProtectsEverything(t *testing.T) {
	report := Verify(faultyFactory(16, refvec.RelocateOnInsert), 4,
		WithLengths(4), WithGuarantees(pinvec.G3Insert), fixedIDs())

	var atEnd *Violation
	for _, v := range report.ViolationsOf(pinvec.G3Insert) {
		if v.P == 4 {
			atEnd = &v
		}
	}
	require.NotNil(t, atEnd, "insert(4) on length 4 must be checked")
	assert.Equal(t, 4, atEnd.Protected)
	assert.Equal(t, 4, atEnd.Moved)
}

func TestVerify_GrowthAtLengthFour(t *testing.T) {
	report := Verify(fixedFactory(8), 4, WithLengths(4), WithGuarantees(pinvec.G1GrowEnd), fixedIDs())

	Require(t, report)
	// setup, push, extend m=1..4
	assert.Equal(t, 6, report.Checked[pinvec.G1GrowEnd])
}

func TestVerify_ShrinkSweep(t *testing.T) {
	report := Verify(faultyFactory(8, refvec.RelocateOnShrink), 3,
		WithLengths(3), WithGuarantees(pinvec.G2ShrinkEnd), fixedIDs())

	// pop, truncate to 3, 2, 1, 0 and clear. Truncating to 0 and clear
	// protect nothing.
	assert.Equal(t, 6, report.Checked[pinvec.G2ShrinkEnd])
	violations := report.ViolationsOf(pinvec.G2ShrinkEnd)
	require.Len(t, violations, 4)

	var protected []int
	for _, v := range violations {
		protected = append(protected, v.Protected)
	}
	assert.Equal(t, []int{2, 3, 2, 1}, protected)
}

func TestVerify_CapacityExhaustionIsScenarioError(t *testing.T) {
	report := Verify(fixedFactory(4), 4, WithLengths(4), fixedIDs())

	assert.True(t, report.Passed())
	assert.False(t, report.Conformant())
	require.NotEmpty(t, report.ScenarioErrors)
	assert.Contains(t, report.ScenarioErrors[0].Message, "capacity exhausted")
}

func TestVerify_Deterministic(t *testing.T) {
	a := Verify(faultyFactory(64, refvec.RelocateOnInsert|refvec.RelocateOnShrink), 20, fixedIDs())
	b := Verify(faultyFactory(64, refvec.RelocateOnInsert|refvec.RelocateOnShrink), 20, fixedIDs())

	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestVerify_GuaranteeSelection(t *testing.T) {
	report := Verify(fixedFactory(64), 8, WithGuarantees(pinvec.G3Insert), fixedIDs())

	assert.Len(t, report.Checked, 1)
	assert.Positive(t, report.Checked[pinvec.G3Insert])
}

func TestVerify_LogsLastSequence(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	Verify(fixedFactory(8), 1, WithLengths(1), WithGuarantees(pinvec.G4Remove), WithLogger(logger), fixedIDs())

	// six precondition checks, remove(0) and five capabilities
	assert.Contains(t, buf.String(), "msg=\"verification finished\"")
	assert.Contains(t, buf.String(), "last_seq=12")
}

func TestVerify_UsesUUIDByDefault(t *testing.T) {
	report := Verify(fixedFactory(8), 1)
	assert.Len(t, report.RunID, 36)
}

// popsOnEmpty reports a value when popping an empty container.
type popsOnEmpty struct {
	*refvec.Fixed[int]
}

func (p popsOnEmpty) Pop() (int, bool) {
	if p.Len() == 0 {
		return 0, true
	}
	return p.Fixed.Pop()
}

// lenientInsert clamps out-of-range insert positions instead of rejecting
// them.
type lenientInsert struct {
	*refvec.Fixed[int]
}

func (l lenientInsert) Insert(p int, v int) error {
	return l.Fixed.Insert(min(p, l.Len()), v)
}

func TestVerify_PreconditionIssuesAreNotViolations(t *testing.T) {
	t.Run("pop on empty", func(t *testing.T) {
		factory := func() pinvec.PinnedVec[int] { return popsOnEmpty{refvec.NewFixed[int](16)} }

		report := Verify(factory, 2, fixedIDs())

		assert.True(t, report.Passed())
		assert.False(t, report.Conformant())
		require.Len(t, report.Preconditions, 1)
		assert.Equal(t, "pop(empty)", report.Preconditions[0].Check)
		assert.Equal(t, 0, report.Preconditions[0].N)
	})

	t.Run("insert past end", func(t *testing.T) {
		factory := func() pinvec.PinnedVec[int] { return lenientInsert{refvec.NewFixed[int](16)} }

		report := Verify(factory, 2, WithLengths(2), fixedIDs())

		assert.True(t, report.Passed())
		require.Len(t, report.Preconditions, 1)
		issue := report.Preconditions[0]
		assert.Equal(t, "insert(n+1)", issue.Check)
		assert.Equal(t, "no error", issue.Actual)
	})
}

// stuckClear ignores Clear.
type stuckClear struct {
	*refvec.Fixed[int]
}

func (stuckClear) Clear() {}

func TestVerify_WrongLengthIsScenarioError(t *testing.T) {
	factory := func() pinvec.PinnedVec[int] { return stuckClear{refvec.NewFixed[int](16)} }

	report := Verify(factory, 2, WithLengths(2), WithGuarantees(pinvec.G2ShrinkEnd), fixedIDs())

	require.Len(t, report.ScenarioErrors, 1)
	assert.Equal(t, pinvec.OpClear, report.ScenarioErrors[0].Op)
	assert.Contains(t, report.ScenarioErrors[0].Message, "want 0")
}

// sharedSlot hands out one scratch slot for every position, so tokens can
// never change.
type sharedSlot struct {
	*refvec.Naive[int]
	scratch *int
}

func (s sharedSlot) Get(i int) (*int, error) {
	if _, err := s.Naive.Get(i); err != nil {
		return nil, err
	}
	return s.scratch, nil
}

func TestVerify_AliasedSlotsAreScenarioErrors(t *testing.T) {
	factory := func() pinvec.PinnedVec[int] { return sharedSlot{refvec.NewNaive[int](0), new(int)} }

	report := Verify(factory, 2, WithLengths(2), WithGuarantees(pinvec.G2ShrinkEnd), fixedIDs())

	assert.True(t, report.Passed())
	assert.False(t, report.Conformant(), "aliased slots must not certify")
	// pop, truncate to 2, 1, 0 and clear
	require.Len(t, report.ScenarioErrors, 5)
	for _, e := range report.ScenarioErrors {
		assert.Equal(t, "get(0) and get(1) on length 2 return the same slot", e.Message)
	}
}

func TestVerify_AliasedSlotsDuringGrowth(t *testing.T) {
	factory := func() pinvec.PinnedVec[int] { return sharedSlot{refvec.NewNaive[int](0), new(int)} }

	report := Verify(factory, 8, fixedIDs())

	assert.False(t, report.Conformant())
	require.NotEmpty(t, report.ScenarioErrors)
	var setup int
	for _, e := range report.ScenarioErrors {
		assert.Contains(t, e.Message, "return the same slot")
		if e.Scenario == ScenarioSetup {
			setup++
		}
	}
	assert.Positive(t, setup, "the growth check captures the prefix too")
}

func TestVerify_Golden(t *testing.T) {
	report := Verify(fixedFactory(8), 1,
		WithName("fixed"), WithLengths(1), WithGuarantees(pinvec.G4Remove), fixedIDs())
	require.NoError(t, AssertGolden(t, "fixed_remove_len1", report))

	report = Verify(faultyFactory(8, refvec.RelocateOnRemove), 3,
		WithName("faulty-remove"), WithLengths(3), WithGuarantees(pinvec.G4Remove), fixedIDs())
	require.NoError(t, AssertGolden(t, "faulty_remove_len3", report))
}
