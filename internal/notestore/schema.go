// Package notestore is the SQLite-backed persistence layer for notes, tags and
// the links between them.
package notestore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// SchemaVersion is written to PRAGMA user_version. Opening a database that
// carries any other non-zero version drops and recreates every table.
const SchemaVersion = 6

const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id    INTEGER PRIMARY KEY,
	title TEXT,
	text  TEXT,
	date  TEXT
);

CREATE TABLE IF NOT EXISTS tags (
	tag_id   INTEGER PRIMARY KEY,
	tag_name TEXT UNIQUE
);

CREATE TABLE IF NOT EXISTS note_tags (
	note_id INTEGER,
	tag_id  INTEGER,
	FOREIGN KEY (note_id) REFERENCES notes(id),
	FOREIGN KEY (tag_id) REFERENCES tags(tag_id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_note_tags_pair ON note_tags(note_id, tag_id);
CREATE INDEX IF NOT EXISTS idx_note_tags_tag ON note_tags(tag_id);
`

// Link rows reference both parents, so note_tags goes first.
const dropSchemaSQL = `
DROP TABLE IF EXISTS notes_fts;
DROP TABLE IF EXISTS note_tags;
DROP TABLE IF EXISTS tags;
DROP TABLE IF EXISTS notes;
`

// Store owns the database handle for its whole lifetime.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the SQLite database at dsn and brings its schema to
// SchemaVersion. A nil logger falls back to slog.Default().
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("notestore: open db: %w", err)
	}
	// One connection: a single logical writer, and transactions never race
	// with a second handle.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: ping: %w", err)
	}

	s := &Store{conn: conn, logger: logger}
	if err := s.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// migrate creates the schema on a fresh file and performs the destructive
// drop-and-recreate upgrade when the stored version differs.
func (s *Store) migrate(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var version int
		if err := tx.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
			return fmt.Errorf("notestore: read schema version: %w", err)
		}

		if version != 0 && version != SchemaVersion {
			s.logger.Warn("notestore: schema version changed, dropping all tables",
				slog.Int("from", version),
				slog.Int("to", SchemaVersion))
			if _, err := tx.ExecContext(ctx, dropSchemaSQL); err != nil {
				return fmt.Errorf("notestore: drop schema: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, createSchemaSQL); err != nil {
			return fmt.Errorf("notestore: apply schema: %w", err)
		}
		if err := initSearch(ctx, tx); err != nil {
			return fmt.Errorf("notestore: apply search schema: %w", err)
		}

		// PRAGMA does not take bind parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, SchemaVersion)); err != nil {
			return fmt.Errorf("notestore: write schema version: %w", err)
		}
		return nil
	})
}

// withTx runs fn inside a transaction. The transaction is committed only when
// fn returns nil and is rolled back on every other path, including panics.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("notestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after a successful commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("notestore: commit: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
