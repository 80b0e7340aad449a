package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/docstore"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

// DefaultStudentCollection is the collection students are stored in
const DefaultStudentCollection = "students"

// StudentConstraints returns the unique fields the store must enforce for
// the student collection. The roll number is the document id and needs no
// separate constraint.
func StudentConstraints(collection string) []docstore.UniqueConstraint {
	return []docstore.UniqueConstraint{
		{Collection: collection, Field: models.FieldRegNo},
	}
}

// StudentRepository handles document store operations for students
type StudentRepository struct {
	store      docstore.Store
	collection string
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(store docstore.Store, collection string) *StudentRepository {
	if collection == "" {
		collection = DefaultStudentCollection
	}
	return &StudentRepository{
		store:      store,
		collection: collection,
	}
}

// Collection returns the collection name
func (r *StudentRepository) Collection() string {
	return r.collection
}

// GetByID fetches a student by storage id
func (r *StudentRepository) GetByID(ctx context.Context, id string) (models.StudentRecord, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, apperrors.NewStudentNotFoundError("Student not found")
		}
		return nil, apperrors.NewStoreError("get student", err)
	}
	return models.StudentRecord(doc), nil
}

// FindOneBy returns the first student whose field equals value exactly.
// found is false when there is none.
func (r *StudentRepository) FindOneBy(ctx context.Context, field, value string) (student models.ListedStudent, found bool, err error) {
	snaps, err := r.store.FindEqual(ctx, r.collection, field, value, 1)
	if err != nil {
		return models.ListedStudent{}, false, apperrors.NewStoreError(fmt.Sprintf("find student by %s", field), err)
	}
	if len(snaps) == 0 {
		return models.ListedStudent{}, false, nil
	}
	return toListed(snaps[0]), true, nil
}

// FindByPrefix returns students whose field starts with prefix, ordered by that field
func (r *StudentRepository) FindByPrefix(ctx context.Context, field, prefix string, limit int) ([]models.ListedStudent, error) {
	snaps, err := r.store.FindPrefix(ctx, r.collection, field, prefix, limit)
	if err != nil {
		return nil, apperrors.NewStoreError(fmt.Sprintf("prefix search on %s", field), err)
	}
	return toListedAll(snaps), nil
}

// GetAll enumerates every student in store order
func (r *StudentRepository) GetAll(ctx context.Context) ([]models.ListedStudent, error) {
	snaps, err := r.store.Scan(ctx, r.collection)
	if err != nil {
		return nil, apperrors.NewStoreError("list students", err)
	}
	return toListedAll(snaps), nil
}

// Create stores a new student keyed by roll number. An existing roll number
// or registration number yields a duplicate conflict.
func (r *StudentRepository) Create(ctx context.Context, record models.StudentRecord) error {
	err := r.store.Create(ctx, r.collection, record.RollNo(), docstore.Document(record))
	if err != nil {
		return r.translateWriteError("create student", err)
	}
	return nil
}

// Update merges fields into an existing student
func (r *StudentRepository) Update(ctx context.Context, id string, fields models.StudentRecord) error {
	err := r.store.Merge(ctx, r.collection, id, docstore.Document(fields))
	if err != nil {
		return r.translateWriteError("update student", err)
	}
	return nil
}

// Delete removes a student
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, r.collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return apperrors.NewStudentNotFoundError("Student not found")
		}
		return apperrors.NewStoreError("delete student", err)
	}
	return nil
}

// Ping checks the store connection
func (r *StudentRepository) Ping(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return apperrors.NewStoreError("ping store", err)
	}
	return nil
}

func (r *StudentRepository) translateWriteError(op string, err error) error {
	var ce *docstore.ConstraintError
	switch {
	case errors.As(err, &ce):
		return DuplicateError(ce.Field, ce.Value)
	case errors.Is(err, docstore.ErrNotFound):
		return apperrors.NewStudentNotFoundError("Student not found")
	default:
		return apperrors.NewStoreError(op, err)
	}
}

// DuplicateError builds the conflict error for a colliding field. An empty
// field means the document id, i.e. the roll number.
func DuplicateError(field, value string) error {
	switch field {
	case "", models.FieldRollNo:
		return apperrors.NewDuplicateError(models.FieldRollNo,
			fmt.Sprintf("Student with Roll Number %s already exists!", value))
	case models.FieldRegNo:
		return apperrors.NewDuplicateError(models.FieldRegNo,
			fmt.Sprintf("Student with Registration Number %s already exists!", value))
	default:
		return apperrors.NewDuplicateError(field,
			fmt.Sprintf("Student with %s %s already exists!", field, value))
	}
}

func toListed(snap docstore.Snapshot) models.ListedStudent {
	return models.ListedStudent{ID: snap.ID, Record: models.StudentRecord(snap.Data)}
}

func toListedAll(snaps []docstore.Snapshot) []models.ListedStudent {
	students := make([]models.ListedStudent, 0, len(snaps))
	for _, snap := range snaps {
		students = append(students, toListed(snap))
	}
	return students
}
