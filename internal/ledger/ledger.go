// Package ledger persists one explicit OutputState per example id in SQLite.
package ledger

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/corpusgen/internal/foundation/errors"
	"git.home.luguber.info/inful/corpusgen/internal/outputstate"
)

// Store implements outputstate.Resolver on top of SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

var (
	_ outputstate.Resolver = (*Store)(nil)
	_ outputstate.Importer = (*Store)(nil)
)

// Open opens or creates the ledger at path. Use ":memory:" for an in-memory
// ledger.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create ledger directory").
				AtPath(path).
				Build()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryState, "failed to open ledger").
			AtPath(path).
			Build()
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryState, "failed to initialize ledger schema").
			AtPath(path).
			Build()
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS outputs (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		file TEXT NOT NULL,
		fingerprint TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_outputs_state ON outputs(state);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Lookup returns the record for id.
func (s *Store) Lookup(ctx context.Context, id string) (outputstate.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, state, file, fingerprint, updated_at FROM outputs WHERE id = ?", id)
	rec, err := scanRecord(row.Scan)
	if stderrors.Is(err, sql.ErrNoRows) {
		return outputstate.Record{}, false, nil
	}
	if err != nil {
		return outputstate.Record{}, false, errors.WrapError(err, errors.CategoryState, "failed to read ledger").
			ForExample(id).
			Build()
	}
	return rec, true, nil
}

// Put inserts or updates rec. Moving an existing id backwards in its
// lifecycle is rejected with a StateError.
func (s *Store) Put(ctx context.Context, rec outputstate.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx, "SELECT state FROM outputs WHERE id = ?", rec.ID).Scan(&current)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("read current state: %w", err)
	default:
		from, perr := outputstate.Parse(current)
		if perr != nil {
			return errors.WrapError(perr, errors.CategoryState, "corrupt ledger entry").
				ForExample(rec.ID).
				Build()
		}
		if !from.CanTransition(rec.State) {
			return errors.StateError("refusing backwards state transition").
				ForExample(rec.ID).
				WithContext("from", from.String()).
				WithContext("to", rec.State.String()).
				Build()
		}
	}

	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO outputs (id, state, file, fingerprint, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			file = excluded.file,
			fingerprint = excluded.fingerprint,
			updated_at = excluded.updated_at`,
		rec.ID, rec.State.String(), rec.File, rec.Fingerprint, updated.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert ledger entry: %w", err)
	}
	return tx.Commit()
}

// List returns every record ordered by id.
func (s *Store) List(ctx context.Context) ([]outputstate.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, state, file, fingerprint, updated_at FROM outputs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var out []outputstate.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return out, nil
}

// ImportUnknown records entries for ids the ledger has never seen and
// returns how many were added. Known ids are left alone: after the first
// import the ledger, not the filesystem, is authoritative.
func (s *Store) ImportUnknown(ctx context.Context, entries map[string]outputstate.Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ledger transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().Unix()
	added := 0
	for _, e := range entries {
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO outputs (id, state, file, fingerprint, updated_at) VALUES (?, ?, ?, '', ?)",
			e.ID, e.State.String(), e.File, now)
		if err != nil {
			return 0, fmt.Errorf("import %s: %w", e.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return added, nil
}

// Delete removes id's record. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM outputs WHERE id = ?", id); err != nil {
		return errors.WrapError(err, errors.CategoryState, "failed to delete ledger entry").
			ForExample(id).
			Build()
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func scanRecord(scan func(dest ...any) error) (outputstate.Record, error) {
	var (
		rec     outputstate.Record
		state   string
		updated int64
	)
	if err := scan(&rec.ID, &state, &rec.File, &rec.Fingerprint, &updated); err != nil {
		return outputstate.Record{}, err
	}
	st, err := outputstate.Parse(state)
	if err != nil {
		return outputstate.Record{}, err
	}
	rec.State = st
	rec.UpdatedAt = time.Unix(updated, 0)
	return rec, nil
}
