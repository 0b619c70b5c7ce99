package conformance

import "github.com/roach88/pinvec/internal/testutil"

// IDGenerator produces report run IDs. Reports get a random UUID unless a
// generator is set with WithIDGenerator.
type IDGenerator interface {
	Generate() string
}

// FixedRunID returns a generator that yields id on every call. Golden
// snapshots need it for a stable run ID.
func FixedRunID(id string) IDGenerator {
	return testutil.NewFixedIDGenerator(id)
}

// SequentialRunIDs returns a generator that yields prefix-0001,
// prefix-0002 and so on. Safe for concurrent use.
func SequentialRunIDs(prefix string) IDGenerator {
	return testutil.NewSequentialIDGenerator(prefix)
}
