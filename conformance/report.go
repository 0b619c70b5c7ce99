package conformance

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/pinvec"
	"github.com/roach88/pinvec/internal/canon"
)

// Violation is a protected position whose identity token changed across a
// mutation. One violation is recorded per scenario; Position is the first
// moved position and Moved counts all moved protected positions.
type Violation struct {
	Seq       int64            `json:"seq"`
	Guarantee pinvec.Guarantee `json:"guarantee"`
	Scenario  string           `json:"scenario"`
	Op        pinvec.Op        `json:"op"`
	N         int              `json:"n"`
	M         int              `json:"m"`
	P         int              `json:"p"`
	Protected int              `json:"protected"`
	Position  int              `json:"position"`
	Moved     int              `json:"moved"`
	Before    pinvec.Token     `json:"-"`
	After     pinvec.Token     `json:"-"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	return fmt.Sprintf("%s violated by %s(n=%d, m=%d, p=%d) [%s]: position %d moved %s -> %s (%d of %d protected positions moved)",
		v.Guarantee, v.Op, v.N, v.M, v.P, v.Scenario, v.Position, v.Before, v.After, v.Moved, v.Protected)
}

// Canonical implements canon.Canonicaler. Addresses are left out; they
// differ between runs.
func (v Violation) Canonical() any {
	return map[string]any{
		"seq":       v.Seq,
		"guarantee": v.Guarantee.String(),
		"scenario":  v.Scenario,
		"op":        string(v.Op),
		"n":         v.N,
		"m":         v.M,
		"p":         v.P,
		"protected": v.Protected,
		"position":  v.Position,
		"moved":     v.Moved,
	}
}

// PreconditionIssue is a contract precondition that the implementation did
// not signal as required. It is not a guarantee violation.
type PreconditionIssue struct {
	Seq      int64  `json:"seq"`
	Check    string `json:"check"`
	N        int    `json:"n"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// Error implements the error interface.
func (p PreconditionIssue) Error() string {
	return fmt.Sprintf("precondition %s on length %d: expected %s, got %s", p.Check, p.N, p.Expected, p.Actual)
}

// Canonical implements canon.Canonicaler.
func (p PreconditionIssue) Canonical() any {
	return map[string]any{
		"seq":      p.Seq,
		"check":    p.Check,
		"n":        p.N,
		"expected": p.Expected,
		"actual":   p.Actual,
	}
}

// ScenarioError is a scenario that could not be evaluated: the
// implementation panicked, ran out of capacity or reported an unexpected
// length.
type ScenarioError struct {
	Seq      int64     `json:"seq"`
	Scenario string    `json:"scenario"`
	Op       pinvec.Op `json:"op"`
	N        int       `json:"n"`
	M        int       `json:"m"`
	P        int       `json:"p"`
	Message  string    `json:"message"`
}

// Error implements the error interface.
func (e ScenarioError) Error() string {
	return fmt.Sprintf("scenario %s %s(n=%d, m=%d, p=%d): %s", e.Scenario, e.Op, e.N, e.M, e.P, e.Message)
}

// Canonical implements canon.Canonicaler.
func (e ScenarioError) Canonical() any {
	return map[string]any{
		"seq":      e.Seq,
		"scenario": e.Scenario,
		"op":       string(e.Op),
		"n":        e.N,
		"m":        e.M,
		"p":        e.P,
		"message":  e.Message,
	}
}

// CapabilityIssue is an optional capability (swap, slices, pointer
// indexing, clone, capacity state) whose behavior disagrees with its
// documented contract. It is not a guarantee violation.
type CapabilityIssue struct {
	Seq        int64  `json:"seq"`
	Capability string `json:"capability"`
	Check      string `json:"check"`
	N          int    `json:"n"`
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
}

// Error implements the error interface.
func (c CapabilityIssue) Error() string {
	return fmt.Sprintf("capability %s %s on length %d: expected %s, got %s", c.Capability, c.Check, c.N, c.Expected, c.Actual)
}

// Canonical implements canon.Canonicaler.
func (c CapabilityIssue) Canonical() any {
	return map[string]any{
		"seq":        c.Seq,
		"capability": c.Capability,
		"check":      c.Check,
		"n":          c.N,
		"expected":   c.Expected,
		"actual":     c.Actual,
	}
}

// StepTrace records one step of a scripted scenario.
type StepTrace struct {
	Seq       int64     `json:"seq"`
	Step      int       `json:"step"`
	Op        pinvec.Op `json:"op"`
	N         int       `json:"n"`
	M         int       `json:"m"`
	P         int       `json:"p"`
	Protected int       `json:"protected"`
	LenAfter  int       `json:"len_after"`
	Outcome   string    `json:"outcome"`
}

// Step outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeViolation    = "violation"
	OutcomePrecondition = "precondition"
	OutcomeError        = "error"
)

// Canonical implements canon.Canonicaler.
func (s StepTrace) Canonical() any {
	return map[string]any{
		"seq":       s.Seq,
		"step":      s.Step,
		"op":        string(s.Op),
		"n":         s.N,
		"m":         s.M,
		"p":         s.P,
		"protected": s.Protected,
		"len_after": s.LenAfter,
		"outcome":   s.Outcome,
	}
}

// Report aggregates the outcome of a verification run. The verifier never
// stops at the first failure; every finding of the run is here.
//
// Capabilities counts the checks made per optional capability; it is empty
// when the container offers none or the run was scripted.
type Report struct {
	RunID            string                   `json:"run_id"`
	Name             string                   `json:"name,omitempty"`
	TargetLen        int                      `json:"target_len"`
	Lengths          []int                    `json:"lengths"`
	Scenarios        int                      `json:"scenarios"`
	Checked          map[pinvec.Guarantee]int `json:"checked"`
	Capabilities     map[string]int           `json:"capabilities,omitempty"`
	Violations       []Violation              `json:"violations,omitempty"`
	Preconditions    []PreconditionIssue      `json:"preconditions,omitempty"`
	ScenarioErrors   []ScenarioError          `json:"scenario_errors,omitempty"`
	CapabilityIssues []CapabilityIssue        `json:"capability_issues,omitempty"`
	Steps            []StepTrace              `json:"steps,omitempty"`
}

func newReport(runID, name string, targetLen int) *Report {
	return &Report{
		RunID:        runID,
		Name:         name,
		TargetLen:    targetLen,
		Lengths:      []int{},
		Checked:      make(map[pinvec.Guarantee]int),
		Capabilities: make(map[string]int),
	}
}

// Passed reports whether no guarantee was violated.
func (r *Report) Passed() bool {
	return len(r.Violations) == 0
}

// Conformant reports whether the run found nothing at all: no guarantee
// violations, precondition issues, scenario errors or capability issues.
func (r *Report) Conformant() bool {
	return r.Passed() && len(r.Preconditions) == 0 && len(r.ScenarioErrors) == 0 &&
		len(r.CapabilityIssues) == 0
}

// Err joins every finding into one error, or returns nil for a conformant
// run.
func (r *Report) Err() error {
	var errs []error
	for _, v := range r.Violations {
		errs = append(errs, v)
	}
	for _, p := range r.Preconditions {
		errs = append(errs, p)
	}
	for _, e := range r.ScenarioErrors {
		errs = append(errs, e)
	}
	for _, c := range r.CapabilityIssues {
		errs = append(errs, c)
	}
	return errors.Join(errs...)
}

// ViolatedGuarantees returns the distinct violated guarantees in order.
func (r *Report) ViolatedGuarantees() []pinvec.Guarantee {
	seen := make(map[pinvec.Guarantee]bool)
	var out []pinvec.Guarantee
	for _, v := range r.Violations {
		if !seen[v.Guarantee] {
			seen[v.Guarantee] = true
			out = append(out, v.Guarantee)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ViolationsOf returns the violations of guarantee g in run order.
func (r *Report) ViolationsOf(g pinvec.Guarantee) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Guarantee == g {
			out = append(out, v)
		}
	}
	return out
}

// Summary returns a one-line description of the run.
func (r *Report) Summary() string {
	var b strings.Builder
	if r.Name != "" {
		fmt.Fprintf(&b, "%s: ", r.Name)
	}
	fmt.Fprintf(&b, "%d scenarios, %d violations, %d precondition issues, %d scenario errors",
		r.Scenarios, len(r.Violations), len(r.Preconditions), len(r.ScenarioErrors))
	if len(r.CapabilityIssues) > 0 {
		fmt.Fprintf(&b, ", %d capability issues", len(r.CapabilityIssues))
	}
	if g := r.ViolatedGuarantees(); len(g) > 0 {
		names := make([]string, len(g))
		for i, x := range g {
			names[i] = x.String()
		}
		fmt.Fprintf(&b, " (violated: %s)", strings.Join(names, ", "))
	}
	return b.String()
}

// Canonical implements canon.Canonicaler.
func (r *Report) Canonical() any {
	checked := make(map[string]any, len(r.Checked))
	for g, n := range r.Checked {
		checked[g.String()] = n
	}

	out := map[string]any{
		"run_id":          r.RunID,
		"target_len":      r.TargetLen,
		"lengths":         r.Lengths,
		"scenarios":       r.Scenarios,
		"checked":         checked,
		"passed":          r.Passed(),
		"conformant":      r.Conformant(),
		"violations":      canonicalList(r.Violations),
		"preconditions":   canonicalList(r.Preconditions),
		"scenario_errors": canonicalList(r.ScenarioErrors),
	}
	if r.Name != "" {
		out["name"] = r.Name
	}
	if len(r.Capabilities) > 0 {
		capabilities := make(map[string]any, len(r.Capabilities))
		for name, n := range r.Capabilities {
			capabilities[name] = n
		}
		out["capabilities"] = capabilities
		out["capability_issues"] = canonicalList(r.CapabilityIssues)
	}
	if len(r.Steps) > 0 {
		out["steps"] = canonicalList(r.Steps)
	}
	return out
}

// Digest returns a content hash of the canonical report.
func (r *Report) Digest() (string, error) {
	return canon.DigestOf(canon.DomainReport, r)
}

func canonicalList[T canon.Canonicaler](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item.Canonical()
	}
	return out
}

// Fingerprint hashes the canonical report without its run ID. Two runs
// with identical findings share a fingerprint.
func (r *Report) Fingerprint() (string, error) {
	c, _ := r.Canonical().(map[string]any)
	delete(c, "run_id")
	return canon.DigestOf(canon.DomainReport, c)
}
