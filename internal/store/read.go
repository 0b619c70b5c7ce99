package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pinvec"
	"github.com/roach88/pinvec/conformance"
)

// Run is one recorded verification run.
type Run struct {
	RunID          string `json:"run_id"`
	Seq            int64  `json:"seq"`
	Kind           string `json:"kind"`
	Name           string `json:"name"`
	TargetLen      int    `json:"target_len"`
	Scenarios      int    `json:"scenarios"`
	Passed         bool   `json:"passed"`
	Conformant     bool   `json:"conformant"`
	Violations     int    `json:"violations"`
	Preconditions  int    `json:"preconditions"`
	ScenarioErrors int    `json:"scenario_errors"`
	Digest         string `json:"digest"`
	Fingerprint    string `json:"fingerprint"`

	// Report is the canonical JSON of the full report.
	Report string `json:"-"`
}

const selectRun = `
	SELECT run_id, seq, kind, name, target_len, scenarios, passed, conformant,
	       violations, preconditions, scenario_errors, digest, fingerprint, report
	FROM runs`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run                Run
		passed, conformant int
	)
	err := row.Scan(
		&run.RunID,
		&run.Seq,
		&run.Kind,
		&run.Name,
		&run.TargetLen,
		&run.Scenarios,
		&passed,
		&conformant,
		&run.Violations,
		&run.Preconditions,
		&run.ScenarioErrors,
		&run.Digest,
		&run.Fingerprint,
		&run.Report,
	)
	if err != nil {
		return Run{}, err
	}
	run.Passed = passed == 1
	run.Conformant = conformant == 1
	return run, nil
}

// ReadRuns returns the recorded runs named name, or every run when name is
// empty. Results are ordered by seq ASC, run_id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no runs match.
func (s *Store) ReadRuns(ctx context.Context, name string) ([]Run, error) {
	query := selectRun + ` ORDER BY seq ASC, run_id COLLATE BINARY ASC`
	args := []any{}
	if name != "" {
		query = selectRun + ` WHERE name = ? ORDER BY seq ASC, run_id COLLATE BINARY ASC`
		args = append(args, name)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns the run with the given ID.
// Returns found=false if the run does not exist.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, bool, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, selectRun+` WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("read run: %w", err)
	}
	return run, true, nil
}

// LatestRun returns the most recent run named name.
// Returns found=false if no run with that name exists.
func (s *Store) LatestRun(ctx context.Context, name string) (Run, bool, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx,
		selectRun+` WHERE name = ? ORDER BY seq DESC LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("latest run: %w", err)
	}
	return run, true, nil
}

// ReadViolations returns the violations recorded for a run in the order the
// verifier found them. Token addresses are not stored, so Before and After
// are zero.
//
// Returns an empty slice (not nil) if the run has no violations.
func (s *Store) ReadViolations(ctx context.Context, runID string) ([]conformance.Violation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, guarantee, scenario, op, n, m, p, protected, position, moved
		FROM violations
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	violations := []conformance.Violation{}
	for rows.Next() {
		var (
			v         conformance.Violation
			guarantee string
			op        string
		)
		err := rows.Scan(&v.Seq, &guarantee, &v.Scenario, &op, &v.N, &v.M, &v.P, &v.Protected, &v.Position, &v.Moved)
		if err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		if v.Guarantee, err = pinvec.ParseGuarantee(guarantee); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		v.Op = pinvec.Op(op)
		violations = append(violations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}
	return violations, nil
}
