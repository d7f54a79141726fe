// Package journal persists completed moves in a SQLite database so
// `dropsort history` can show what went where.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"dropsort/internal/errors"
	"dropsort/internal/organize"
	"dropsort/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the schema changes. An existing journal
// with a different version is rejected rather than migrated; the file
// can simply be deleted.
const schemaVersion = 1

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store records completed moves. It implements organize.Recorder and is
// safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

var _ organize.Recorder = (*Store)(nil)

// Open creates or opens the journal database at path, creating parent
// directories and applying the schema when missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.NewJournalOpenError("cannot create journal directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewJournalOpenError("cannot open journal database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, errors.NewJournalOpenError("cannot apply journal pragma", execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Path returns the journal file location
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one completed move. A move without an ID gains a
// generated UUID; a zero MovedAt gains the current time.
func (s *Store) Record(ctx context.Context, move types.Move) error {
	if move.ID == "" {
		move.ID = uuid.NewString()
	}
	if move.MovedAt.IsZero() {
		move.MovedAt = time.Now().UTC()
	}

	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO moves (id, source_path, destination, category, size_bytes, moved_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			move.ID,
			move.SourcePath,
			move.Destination,
			move.Category,
			move.SizeBytes,
			move.MovedAt.UTC().Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return errors.NewJournalError("cannot record move", err).WithOperation("record")
	}
	return nil
}

// Recent returns up to limit moves, most recently recorded first. A
// non-positive limit selects a default page of 50.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.Move, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_path, destination, category, size_bytes, moved_at
		 FROM moves ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewJournalError("cannot list moves", err).WithOperation("recent")
	}
	defer rows.Close()

	var moves []types.Move
	for rows.Next() {
		var m types.Move
		var movedAt string
		if err := rows.Scan(&m.ID, &m.SourcePath, &m.Destination, &m.Category, &m.SizeBytes, &movedAt); err != nil {
			return nil, errors.NewJournalError("cannot scan move row", err).WithOperation("recent")
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, movedAt); parseErr == nil {
			m.MovedAt = ts
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewJournalError("cannot iterate moves", err).WithOperation("recent")
	}

	return moves, nil
}

// CountByCategory returns the number of recorded moves per category
func (s *Store) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM moves GROUP BY category`)
	if err != nil {
		return nil, errors.NewJournalError("cannot count moves", err).WithOperation("count")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, errors.NewJournalError("cannot scan count row", err).WithOperation("count")
		}
		counts[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewJournalError("cannot iterate counts", err).WithOperation("count")
	}

	return counts, nil
}

// initSchema creates the schema on a fresh database and verifies the
// version on an existing one.
func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return errors.NewJournalOpenError("cannot inspect journal schema", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return errors.NewJournalOpenError("cannot read journal schema version", err)
	}
	if version != schemaVersion {
		return errors.NewJournalOpenError(
			"journal schema version mismatch, delete the journal file to reset", nil)
	}

	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewJournalOpenError("cannot begin schema transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return errors.NewJournalOpenError("cannot create journal schema", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return errors.NewJournalOpenError("cannot record schema version", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.NewJournalOpenError("cannot commit journal schema", err)
	}

	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
