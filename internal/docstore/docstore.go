// Package docstore is the document store adapter used by the application.
//
// A Store holds flat documents (field -> string value) grouped in named
// collections. Drivers exist for SQLite (local and tests), PostgreSQL (JSONB)
// and Redis. All of them provide the same guarantees:
//
//   - Create is an atomic "insert if absent": an existing id is never overwritten
//   - registered unique fields are claimed in the same atomic step as the write
//   - Merge and Delete never create documents and report ErrNotFound instead
//   - Scan enumerates documents in insertion order
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Store errors
var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
	ErrInvalidField  = errors.New("invalid field name")
)

// Document is a flat field/value mapping. Empty values are never persisted.
type Document map[string]string

// Snapshot is a document together with its identifier.
type Snapshot struct {
	ID   string
	Data Document
}

// Store is the collection-scoped document database contract.
type Store interface {
	// Get fetches a single document by id.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Create writes a new document. It fails with a *ConstraintError when the id
	// or any registered unique field value is already taken.
	Create(ctx context.Context, collection, id string, doc Document) error

	// Merge applies fields on top of an existing document.
	Merge(ctx context.Context, collection, id string, fields Document) error

	// Delete removes a document.
	Delete(ctx context.Context, collection, id string) error

	// FindEqual returns documents whose field equals value exactly.
	FindEqual(ctx context.Context, collection, field, value string, limit int) ([]Snapshot, error)

	// FindPrefix returns documents whose field starts with prefix (case-sensitive),
	// ordered by that field.
	FindPrefix(ctx context.Context, collection, field, prefix string, limit int) ([]Snapshot, error)

	// Scan returns every document of the collection in insertion order.
	Scan(ctx context.Context, collection string) ([]Snapshot, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// UniqueConstraint declares a field whose non-empty values must be unique
// across all documents of a collection.
type UniqueConstraint struct {
	Collection string
	Field      string
}

// ConstraintError reports a create or merge that collided with an existing
// document. Field is empty when the id itself collided.
type ConstraintError struct {
	Collection string
	Field      string
	Value      string
}

// Error implements the error interface
func (e *ConstraintError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: id %q already exists", e.Collection, e.Value)
	}
	return fmt.Sprintf("%s: %s %q already exists", e.Collection, e.Field, e.Value)
}

// Is lets errors.Is(err, ErrAlreadyExists) match constraint violations.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrAlreadyExists
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidField reports whether name can be used as a query field. Field names end
// up inside JSON paths, so they are restricted to identifiers.
func ValidField(name string) bool {
	return fieldNamePattern.MatchString(name)
}

func checkField(name string) error {
	if !ValidField(name) {
		return fmt.Errorf("%w: %q", ErrInvalidField, name)
	}
	return nil
}

// Compact returns a copy of doc without empty values.
func Compact(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// constraints indexes unique fields by collection.
type constraints map[string][]string

func newConstraints(list []UniqueConstraint) constraints {
	c := make(constraints)
	for _, uc := range list {
		c[uc.Collection] = append(c[uc.Collection], uc.Field)
	}
	return c
}

func (c constraints) fields(collection string) []string {
	return c[collection]
}
