package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	UNIQUE (collection, id)
);
CREATE TABLE IF NOT EXISTS unique_keys (
	collection TEXT NOT NULL,
	field      TEXT NOT NULL,
	value      TEXT NOT NULL,
	doc_id     TEXT NOT NULL,
	PRIMARY KEY (collection, field, value)
);
CREATE INDEX IF NOT EXISTS unique_keys_doc ON unique_keys (collection, doc_id);`

// SQLiteStore implements Store on a single SQLite database.
type SQLiteStore struct {
	db          *sql.DB
	constraints constraints
}

// NewSQLiteStore opens (or creates) a SQLite-backed store.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(path string, unique ...UniqueConstraint) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// One connection: ":memory:" databases are per-connection and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db, constraints: newConstraints(unique)}, nil
}

// Get retrieves a document by id.
func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decodeDocument([]byte(body))
}

// Create inserts a document and claims its unique values in one transaction.
func (s *SQLiteStore) Create(ctx context.Context, collection, id string, doc Document) error {
	doc = Compact(doc)
	body, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().Format(time.RFC3339Nano)
		res, err := tx.ExecContext(ctx, `
			INSERT INTO documents (collection, id, body, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (collection, id) DO NOTHING`,
			collection, id, string(body), now, now,
		)
		if err != nil {
			return fmt.Errorf("create %s/%s: %w", collection, id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &ConstraintError{Collection: collection, Value: id}
		}

		for _, field := range s.constraints.fields(collection) {
			value := doc[field]
			if value == "" {
				continue
			}
			if err := s.claim(ctx, tx, collection, field, value, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// Merge overlays fields on an existing document.
func (s *SQLiteStore) Merge(ctx context.Context, collection, id string, fields Document) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var body string
		err := tx.QueryRowContext(ctx,
			"SELECT body FROM documents WHERE collection = ? AND id = ?",
			collection, id,
		).Scan(&body)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("merge %s/%s: %w", collection, id, err)
		}

		current, err := decodeDocument([]byte(body))
		if err != nil {
			return err
		}

		for _, change := range uniqueChanges(s.constraints.fields(collection), current, fields) {
			if change.oldValue != "" {
				if _, err := tx.ExecContext(ctx,
					"DELETE FROM unique_keys WHERE collection = ? AND field = ? AND value = ? AND doc_id = ?",
					collection, change.field, change.oldValue, id,
				); err != nil {
					return fmt.Errorf("release %s: %w", change.field, err)
				}
			}
			if err := s.claim(ctx, tx, collection, change.field, change.newValue, id); err != nil {
				return err
			}
		}

		merged, err := encodeDocument(mergeDocuments(current, fields))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?",
			string(merged), time.Now().UTC().Format(time.RFC3339Nano), collection, id,
		)
		if err != nil {
			return fmt.Errorf("merge %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

// Delete removes a document and its unique claims.
func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
		if err != nil {
			return fmt.Errorf("delete %s/%s: %w", collection, id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM unique_keys WHERE collection = ? AND doc_id = ?", collection, id); err != nil {
			return fmt.Errorf("release claims for %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

// FindEqual returns documents whose field equals value.
func (s *SQLiteStore) FindEqual(ctx context.Context, collection, field, value string, limit int) ([]Snapshot, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	return s.query(ctx, `
		SELECT id, body FROM documents
		WHERE collection = ? AND json_extract(body, ?) = ?
		ORDER BY seq LIMIT ?`,
		collection, "$."+field, value, sqliteLimit(limit),
	)
}

// FindPrefix returns documents whose field starts with prefix, ordered by field.
func (s *SQLiteStore) FindPrefix(ctx context.Context, collection, field, prefix string, limit int) ([]Snapshot, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	path := "$." + field
	return s.query(ctx, `
		SELECT id, body FROM documents
		WHERE collection = ? AND substr(json_extract(body, ?), 1, length(?)) = ?
		ORDER BY json_extract(body, ?), seq LIMIT ?`,
		collection, path, prefix, prefix, path, sqliteLimit(limit),
	)
}

// Scan returns all documents of a collection in insertion order.
func (s *SQLiteStore) Scan(ctx context.Context, collection string) ([]Snapshot, error) {
	return s.query(ctx,
		"SELECT id, body FROM documents WHERE collection = ? ORDER BY seq", collection)
}

// Ping checks the database handle.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) claim(ctx context.Context, tx *sql.Tx, collection, field, value, id string) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO unique_keys (collection, field, value, doc_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, field, value) DO NOTHING`,
		collection, field, value, id,
	)
	if err != nil {
		return fmt.Errorf("claim %s: %w", field, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ConstraintError{Collection: collection, Field: field, Value: value}
	}
	return nil
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...interface{}) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		doc, err := decodeDocument([]byte(body))
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, Snapshot{ID: id, Data: doc})
	}
	return snapshots, rows.Err()
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func sqliteLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
