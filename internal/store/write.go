package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pinvec/conformance"
	"github.com/roach88/pinvec/internal/canon"
)

// Run kinds.
const (
	KindVerify   = "verify"
	KindScenario = "scenario"
)

// WriteRun records a report and its violations in one transaction and
// returns the stored run.
//
// Runs are keyed by RunID: writing a report whose RunID is already stored
// is a no-op and returns the existing row. New runs get the next logical seq.
// The report is stored as canonical JSON per RFC 8785.
func (s *Store) WriteRun(ctx context.Context, kind string, report *conformance.Report) (Run, error) {
	if kind != KindVerify && kind != KindScenario {
		return Run{}, fmt.Errorf("write run: unknown kind %q", kind)
	}

	data, err := canon.Marshal(report)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	fingerprint, err := report.Fingerprint()
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	run := Run{
		RunID:          report.RunID,
		Kind:           kind,
		Name:           report.Name,
		TargetLen:      report.TargetLen,
		Scenarios:      report.Scenarios,
		Passed:         report.Passed(),
		Conformant:     report.Conformant(),
		Violations:     len(report.Violations),
		Preconditions:  len(report.Preconditions),
		ScenarioErrors: len(report.ScenarioErrors),
		Digest:         canon.Digest(canon.DomainReport, data),
		Fingerprint:    fingerprint,
		Report:         string(data),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanRun(tx.QueryRowContext(ctx, selectRun+` WHERE run_id = ?`, run.RunID))
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, seq, kind, name, target_len, scenarios, passed, conformant,
		 violations, preconditions, scenario_errors, digest, fingerprint, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`,
		run.RunID,
		run.Seq,
		run.Kind,
		run.Name,
		run.TargetLen,
		run.Scenarios,
		boolToInt(run.Passed),
		boolToInt(run.Conformant),
		run.Violations,
		run.Preconditions,
		run.ScenarioErrors,
		run.Digest,
		run.Fingerprint,
		run.Report,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	for i, v := range report.Violations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO violations
			(run_id, idx, seq, guarantee, scenario, op, n, m, p, protected, position, moved)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`,
			run.RunID,
			i,
			v.Seq,
			v.Guarantee.String(),
			v.Scenario,
			string(v.Op),
			v.N,
			v.M,
			v.P,
			v.Protected,
			v.Position,
			v.Moved,
		)
		if err != nil {
			return Run{}, fmt.Errorf("write violation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
