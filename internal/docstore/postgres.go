package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yigit/studentrecords/internal/db"
	"github.com/yigit/studentrecords/internal/pkg/dberrors"
)

// Constraint names created by the postgres migrations.
const (
	pgDocumentKeyConstraint = "documents_collection_id_key"
	pgUniqueKeyConstraint   = "unique_keys_pkey"
)

// PostgresStore implements Store on a JSONB table.
type PostgresStore struct {
	db          *db.PostgresDB
	constraints constraints
}

// NewPostgresStore creates a store on an open connection pool. The schema is
// expected to be migrated already.
func NewPostgresStore(database *db.PostgresDB, unique ...UniqueConstraint) *PostgresStore {
	return &PostgresStore{db: database, constraints: newConstraints(unique)}
}

// Get retrieves a document by id
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var body string
	err := s.db.Pool.QueryRow(ctx,
		`SELECT body::text FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decodeDocument([]byte(body))
}

// Create inserts a document and its unique claims in one transaction
func (s *PostgresStore) Create(ctx context.Context, collection, id string, doc Document) error {
	doc = Compact(doc)
	body, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3::jsonb)`,
			collection, id, string(body),
		)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, pgDocumentKeyConstraint) {
				return &ConstraintError{Collection: collection, Value: id}
			}
			return fmt.Errorf("create %s/%s: %w", collection, id, err)
		}

		for _, field := range s.constraints.fields(collection) {
			value := doc[field]
			if value == "" {
				continue
			}
			if err := claimPostgres(ctx, tx, collection, field, value, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// Merge overlays fields on an existing document. The row is locked for the
// duration of the transaction.
func (s *PostgresStore) Merge(ctx context.Context, collection, id string, fields Document) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var body string
		err := tx.QueryRow(ctx,
			`SELECT body::text FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
			collection, id,
		).Scan(&body)
		if errors.Is(err, pgx.ErrNoRows) {
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
				if _, err := tx.Exec(ctx,
					`DELETE FROM unique_keys WHERE collection = $1 AND field = $2 AND value = $3 AND doc_id = $4`,
					collection, change.field, change.oldValue, id,
				); err != nil {
					return fmt.Errorf("release %s: %w", change.field, err)
				}
			}
			if err := claimPostgres(ctx, tx, collection, change.field, change.newValue, id); err != nil {
				return err
			}
		}

		merged, err := encodeDocument(mergeDocuments(current, fields))
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE documents SET body = $1::jsonb, updated_at = now() WHERE collection = $2 AND id = $3`,
			string(merged), collection, id,
		); err != nil {
			return fmt.Errorf("merge %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

// Delete removes a document and its unique claims
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx,
			`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
		if err != nil {
			return fmt.Errorf("delete %s/%s: %w", collection, id, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM unique_keys WHERE collection = $1 AND doc_id = $2`, collection, id); err != nil {
			return fmt.Errorf("release claims for %s/%s: %w", collection, id, err)
		}
		return nil
	})
}

// FindEqual returns documents whose field equals value
func (s *PostgresStore) FindEqual(ctx context.Context, collection, field, value string, limit int) ([]Snapshot, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	return s.query(ctx, `
		SELECT id, body::text FROM documents
		WHERE collection = $1 AND body->>($2::text) = $3
		ORDER BY seq LIMIT $4`,
		collection, field, value, pgLimit(limit),
	)
}

// FindPrefix returns documents whose field starts with prefix, ordered by field
func (s *PostgresStore) FindPrefix(ctx context.Context, collection, field, prefix string, limit int) ([]Snapshot, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	return s.query(ctx, `
		SELECT id, body::text FROM documents
		WHERE collection = $1 AND starts_with(body->>($2::text), $3)
		ORDER BY body->>($2::text) COLLATE "C", seq LIMIT $4`,
		collection, field, prefix, pgLimit(limit),
	)
}

// Scan returns all documents of a collection in insertion order
func (s *PostgresStore) Scan(ctx context.Context, collection string) ([]Snapshot, error) {
	return s.query(ctx,
		`SELECT id, body::text FROM documents WHERE collection = $1 ORDER BY seq`, collection)
}

// Ping checks the pool and that the documents table exists
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.Pool.Ping(ctx); err != nil {
		return err
	}
	_, err := s.db.Pool.Exec(ctx, `SELECT 1 FROM documents LIMIT 1`)
	if dberrors.IsUndefinedTable(err) {
		return fmt.Errorf("documents table missing, run migrations: %w", err)
	}
	return err
}

// Close closes the pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...interface{}) ([]Snapshot, error) {
	rows, err := s.db.Pool.Query(ctx, query, args...)
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

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func claimPostgres(ctx context.Context, tx pgx.Tx, collection, field, value, id string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO unique_keys (collection, field, value, doc_id) VALUES ($1, $2, $3, $4)`,
		collection, field, value, id,
	)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, pgUniqueKeyConstraint) {
			return &ConstraintError{Collection: collection, Field: field, Value: value}
		}
		return fmt.Errorf("claim %s: %w", field, err)
	}
	return nil
}

// pgLimit maps a non-positive limit to NULL, which postgres treats as no limit.
func pgLimit(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
