package conformance

import (
	"strings"
	"testing"
)

// Require fails t unless report is conformant, listing every finding.
// Use it from an implementation's own tests:
//
//	func TestMyVecPinning(t *testing.T) {
//		conformance.Require(t, conformance.Verify(func() pinvec.PinnedVec[int] {
//			return myvec.New[int]()
//		}, 1000))
//	}
func Require(t testing.TB, report *Report) {
	t.Helper()
	if report.Conformant() {
		return
	}

	var b strings.Builder
	b.WriteString(report.Summary())
	for _, v := range report.Violations {
		b.WriteString("\n  ")
		b.WriteString(v.Error())
	}
	for _, p := range report.Preconditions {
		b.WriteString("\n  ")
		b.WriteString(p.Error())
	}
	for _, e := range report.ScenarioErrors {
		b.WriteString("\n  ")
		b.WriteString(e.Error())
	}
	for _, c := range report.CapabilityIssues {
		b.WriteString("\n  ")
		b.WriteString(c.Error())
	}
	t.Fatal(b.String())
}
