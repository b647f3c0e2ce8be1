package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// SQLiteStore persists documents in a single local SQLite file. There is no
// server process; the file is the whole backend.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the store file and runs migrations.
// Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	// A single writer at a time keeps transaction semantics simple and
	// matches the one-logical-writer model of the system.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		doc        BLOB NOT NULL,
		PRIMARY KEY (collection, id)
	)`)
	if err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return nil
}

type sqliteQuerier struct {
	q interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	}
}

func (s *sqliteQuerier) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var doc []byte
	err := s.q.QueryRowContext(ctx,
		"SELECT doc FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (s *sqliteQuerier) List(ctx context.Context, collection string) ([][]byte, error) {
	rows, err := s.q.QueryContext(ctx,
		"SELECT doc FROM documents WHERE collection = ? ORDER BY id",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *sqliteQuerier) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection = ?",
		collection,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

func (s *sqliteQuerier) Put(ctx context.Context, collection, id string, doc []byte) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)
		 ON CONFLICT (collection, id) DO UPDATE SET doc = excluded.doc`,
		collection, id, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

func (s *sqliteQuerier) Delete(ctx context.Context, collection, id string) error {
	result, err := s.q.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	return (&sqliteQuerier{q: s.db}).Get(ctx, collection, id)
}

func (s *SQLiteStore) List(ctx context.Context, collection string) ([][]byte, error) {
	return (&sqliteQuerier{q: s.db}).List(ctx, collection)
}

func (s *SQLiteStore) Count(ctx context.Context, collection string) (int64, error) {
	return (&sqliteQuerier{q: s.db}).Count(ctx, collection)
}

func (s *SQLiteStore) Put(ctx context.Context, collection, id string, doc []byte) error {
	return (&sqliteQuerier{q: s.db}).Put(ctx, collection, id, doc)
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	return (&sqliteQuerier{q: s.db}).Delete(ctx, collection, id)
}

func (s *SQLiteStore) ExecTx(ctx context.Context, fn TxFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&sqliteQuerier{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
