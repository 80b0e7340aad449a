package services

import (
	"context"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

// NoDuplicateMessage is reported when neither identifier is taken
const NoDuplicateMessage = "No duplicate found"

// DuplicateResult is the outcome of a duplicate check
type DuplicateResult struct {
	IsDuplicate   bool
	ConflictField string
	Message       string
}

// Err returns the conflict as an error, or nil when there is none
func (r *DuplicateResult) Err() error {
	if !r.IsDuplicate {
		return nil
	}
	return apperrors.NewDuplicateError(r.ConflictField, r.Message)
}

// DuplicateChecker looks for existing students sharing a roll number or
// registration number
type DuplicateChecker struct {
	studentRepo *repositories.StudentRepository
}

// NewDuplicateChecker creates a new duplicate checker
func NewDuplicateChecker(studentRepo *repositories.StudentRepository) *DuplicateChecker {
	return &DuplicateChecker{studentRepo: studentRepo}
}

// Check queries the roll number first and the registration number second; a
// roll number conflict always wins.
func (d *DuplicateChecker) Check(ctx context.Context, rollNo, regNo string) (*DuplicateResult, error) {
	if rollNo == "" {
		return nil, apperrors.NewMissingFieldError(models.FieldRollNo, "Roll number is required")
	}

	_, found, err := d.studentRepo.FindOneBy(ctx, models.FieldRollNo, rollNo)
	if err != nil {
		return nil, err
	}
	if found {
		return conflict(models.FieldRollNo, rollNo), nil
	}

	if regNo != "" {
		_, found, err := d.studentRepo.FindOneBy(ctx, models.FieldRegNo, regNo)
		if err != nil {
			return nil, err
		}
		if found {
			return conflict(models.FieldRegNo, regNo), nil
		}
	}

	return &DuplicateResult{Message: NoDuplicateMessage}, nil
}

func conflict(field, value string) *DuplicateResult {
	return &DuplicateResult{
		IsDuplicate:   true,
		ConflictField: field,
		Message:       apperrors.PublicMessage(repositories.DuplicateError(field, value)),
	}
}
