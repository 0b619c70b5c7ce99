package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		var version int
		if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
			t.Fatalf("failed to get user_version: %v", err)
		}
		if version != currentSchemaVersion {
			t.Errorf("iteration %d: user_version = %d, want %d", i, version, currentSchemaVersion)
		}
		s.Close()
	}
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	defer s.Close()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}

	for _, tt := range tests {
		if err := s.verifyPragma(tt.name, tt.expected); err != nil {
			t.Error(err)
		}
	}
}

func TestOpen_MigratesPreFingerprintDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE runs (
			run_id          TEXT PRIMARY KEY,
			seq             INTEGER NOT NULL UNIQUE,
			kind            TEXT NOT NULL,
			name            TEXT NOT NULL,
			target_len      INTEGER NOT NULL,
			scenarios       INTEGER NOT NULL,
			passed          INTEGER NOT NULL,
			conformant      INTEGER NOT NULL,
			violations      INTEGER NOT NULL,
			preconditions   INTEGER NOT NULL,
			scenario_errors INTEGER NOT NULL,
			digest          TEXT NOT NULL,
			report          TEXT NOT NULL
		);
		INSERT INTO runs VALUES ('old-run', 1, 'verify', 'fixed', 4, 10, 1, 1, 0, 0, 0, 'abc', '{}');
	`)
	if err != nil {
		t.Fatalf("failed to create old schema: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	var fingerprint string
	if err := s.db.QueryRow("SELECT fingerprint FROM runs WHERE run_id = 'old-run'").Scan(&fingerprint); err != nil {
		t.Fatalf("fingerprint column missing after migration: %v", err)
	}
	if fingerprint != "" {
		t.Errorf("fingerprint = %q, want empty default", fingerprint)
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on empty store = %v, want nil", err)
	}
}
