package conformance

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pinvec/internal/canon"
)

// AssertGolden compares the canonical JSON form of report against
// testdata/golden/{name}.golden. Run IDs must come from a fixed generator
// (WithIDGenerator(FixedRunID(...))) for the snapshot to be stable.
//
// To regenerate golden files, run the test with -update.
func AssertGolden(t *testing.T, name string, report *Report) error {
	t.Helper()

	data, err := canon.Marshal(report)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
