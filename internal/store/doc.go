// Package store provides SQLite-backed history of verification runs.
//
// Each run of the verifier or of a scripted scenario can be recorded with
// its canonical report, so later runs of the same container can be
// compared against earlier ones.
//
// # Patterns
//
// Logical ordering:
//   - Runs are ordered by seq INTEGER, assigned on insert, NEVER timestamps
//   - Queries use ORDER BY seq ASC, run_id ASC COLLATE BINARY
//
// Idempotency:
//   - run_id is the primary key; recording the same run twice is a no-op
//   - violations are keyed by (run_id, seq)
//
// Canonical storage:
//   - the report column holds RFC 8785 canonical JSON, the same bytes the
//     report digest is computed over
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - foreign_keys=ON: Enforce referential integrity
package store
