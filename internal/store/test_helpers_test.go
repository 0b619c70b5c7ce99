package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/pinvec"
	"github.com/roach88/pinvec/conformance"
	"github.com/roach88/pinvec/internal/refvec"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// passingReport verifies a fixed-capacity container that conforms.
func passingReport(runID string) *conformance.Report {
	factory := func() pinvec.PinnedVec[int] { return refvec.NewFixed[int](8) }
	return conformance.Verify(factory, 1,
		conformance.WithName("fixed"),
		conformance.WithLengths(1),
		conformance.WithGuarantees(pinvec.G4Remove),
		conformance.WithIDGenerator(conformance.FixedRunID(runID)),
	)
}

// failingReport verifies a container that relocates on remove. It has two
// G4 violations, at p=1 and p=2.
func failingReport(runID string) *conformance.Report {
	factory := func() pinvec.PinnedVec[int] { return refvec.NewFaulty[int](8, refvec.RelocateOnRemove) }
	return conformance.Verify(factory, 3,
		conformance.WithName("faulty-remove"),
		conformance.WithLengths(3),
		conformance.WithGuarantees(pinvec.G4Remove),
		conformance.WithIDGenerator(conformance.FixedRunID(runID)),
	)
}
