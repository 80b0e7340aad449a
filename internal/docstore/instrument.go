package docstore

import (
	"context"
	"errors"
	"time"
)

// Observer receives one call per store operation.
type Observer interface {
	ObserveStoreOperation(operation, collection string, duration time.Duration, err error)
}

// Operation names reported to an Observer
const (
	OpGet        = "get"
	OpCreate     = "create"
	OpMerge      = "merge"
	OpDelete     = "delete"
	OpFindEqual  = "find_equal"
	OpFindPrefix = "find_prefix"
	OpScan       = "scan"
)

// Outcome classifies an operation error for metrics labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "conflict"
	default:
		return "error"
	}
}

type instrumentedStore struct {
	next     Store
	observer Observer
}

// Instrument wraps a store so every operation is reported to observer.
func Instrument(store Store, observer Observer) Store {
	if observer == nil {
		return store
	}
	return &instrumentedStore{next: store, observer: observer}
}

func (s *instrumentedStore) observe(op, collection string, start time.Time, err error) {
	s.observer.ObserveStoreOperation(op, collection, time.Since(start), err)
}

func (s *instrumentedStore) Get(ctx context.Context, collection, id string) (Document, error) {
	start := time.Now()
	doc, err := s.next.Get(ctx, collection, id)
	s.observe(OpGet, collection, start, err)
	return doc, err
}

func (s *instrumentedStore) Create(ctx context.Context, collection, id string, doc Document) error {
	start := time.Now()
	err := s.next.Create(ctx, collection, id, doc)
	s.observe(OpCreate, collection, start, err)
	return err
}

func (s *instrumentedStore) Merge(ctx context.Context, collection, id string, fields Document) error {
	start := time.Now()
	err := s.next.Merge(ctx, collection, id, fields)
	s.observe(OpMerge, collection, start, err)
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, collection, id)
	s.observe(OpDelete, collection, start, err)
	return err
}

func (s *instrumentedStore) FindEqual(ctx context.Context, collection, field, value string, limit int) ([]Snapshot, error) {
	start := time.Now()
	snaps, err := s.next.FindEqual(ctx, collection, field, value, limit)
	s.observe(OpFindEqual, collection, start, err)
	return snaps, err
}

func (s *instrumentedStore) FindPrefix(ctx context.Context, collection, field, prefix string, limit int) ([]Snapshot, error) {
	start := time.Now()
	snaps, err := s.next.FindPrefix(ctx, collection, field, prefix, limit)
	s.observe(OpFindPrefix, collection, start, err)
	return snaps, err
}

func (s *instrumentedStore) Scan(ctx context.Context, collection string) ([]Snapshot, error) {
	start := time.Now()
	snaps, err := s.next.Scan(ctx, collection)
	s.observe(OpScan, collection, start, err)
	return snaps, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
