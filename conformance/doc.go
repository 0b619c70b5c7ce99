// Package conformance verifies that a pinvec.PinnedVec implementation keeps
// the pinned-element guarantees G1 through G4.
//
// Verify drives fresh containers from a factory through a matrix of base
// lengths and mutations, records the identity token of every slot before
// each mutation and compares the protected prefix afterwards. RunScenario
// does the same for scripted mutation sequences loaded from YAML.
//
// Findings fall into three classes that are reported separately:
//
//   - Violations: a protected slot changed identity. Only these make
//     Report.Passed return false.
//   - PreconditionIssues: an out-of-range call was not rejected as the
//     contract requires.
//   - ScenarioErrors: the implementation panicked, ran out of capacity or
//     ended up with the wrong length.
//
// Verification is single-threaded and owns each container for the duration
// of one scenario.
package conformance
