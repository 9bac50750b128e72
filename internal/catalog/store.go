// Copyright Matt King, 2026. All rights reserved.

// Package catalog persists a record of every letter the toolkit
// produces. The catalog backs the history command and the Notion sync,
// which pushes unsynced rows and marks them done.
// See docs/ARCHITECTURE § Catalog.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Letter is one catalog row: a finished letter and where it came from.
type Letter struct {
	ID         int64
	Filename   string
	PatientKey string
	BodyArea   string
	Referrer   string
	Provenance string
	SourceFile string
	CreatedAt  time.Time
	SyncedAt   *time.Time
}

// Store manages the letter catalog SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog database at path, creating the
// schema when absent.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS letters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT NOT NULL,
			patient_key TEXT NOT NULL,
			body_area TEXT,
			referrer TEXT,
			provenance TEXT,
			source_file TEXT,
			created_at TEXT NOT NULL,
			synced_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_letters_patient ON letters(patient_key)`,
		`CREATE INDEX IF NOT EXISTS idx_letters_created ON letters(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts a letter and returns its row ID.
func (s *Store) Record(ctx context.Context, l Letter) (int64, error) {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO letters (filename, patient_key, body_area, referrer, provenance, source_file, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.Filename, l.PatientKey, l.BodyArea, l.Referrer, l.Provenance,
		l.SourceFile, l.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting letter %s: %w", l.Filename, err)
	}
	return res.LastInsertId()
}

// Recent returns the most recent letters, newest first. limit <= 0
// returns 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Letter, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, patient_key, body_area, referrer, provenance, source_file, created_at, synced_at
		 FROM letters ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent letters: %w", err)
	}
	defer rows.Close()
	return scanLetters(rows)
}

// ByPatient returns every letter for a patient key, newest first.
func (s *Store) ByPatient(ctx context.Context, patientKey string) ([]Letter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, patient_key, body_area, referrer, provenance, source_file, created_at, synced_at
		 FROM letters WHERE patient_key = ? ORDER BY created_at DESC, id DESC`, patientKey)
	if err != nil {
		return nil, fmt.Errorf("querying letters for %s: %w", patientKey, err)
	}
	defer rows.Close()
	return scanLetters(rows)
}

// Unsynced returns letters not yet pushed to the external catalog,
// oldest first so sync order matches creation order.
func (s *Store) Unsynced(ctx context.Context) ([]Letter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, patient_key, body_area, referrer, provenance, source_file, created_at, synced_at
		 FROM letters WHERE synced_at IS NULL ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying unsynced letters: %w", err)
	}
	defer rows.Close()
	return scanLetters(rows)
}

// MarkSynced stamps a letter with the sync time.
func (s *Store) MarkSynced(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE letters SET synced_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("marking letter %d synced: %w", id, err)
	}
	return nil
}

func scanLetters(rows *sql.Rows) ([]Letter, error) {
	var out []Letter
	for rows.Next() {
		var (
			l        Letter
			created  string
			syncedAt sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Filename, &l.PatientKey, &l.BodyArea,
			&l.Referrer, &l.Provenance, &l.SourceFile, &created, &syncedAt); err != nil {
			return nil, fmt.Errorf("scanning letter row: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at %q: %w", created, err)
		}
		l.CreatedAt = t
		if syncedAt.Valid {
			st, err := time.Parse(time.RFC3339Nano, syncedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parsing synced_at %q: %w", syncedAt.String, err)
			}
			l.SyncedAt = &st
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
