package apperrors

import (
	"errors"
	"testing"
)

func TestKindsWrapGenericErrors(t *testing.T) {
	if !errors.Is(ErrStudentNotFound, ErrResourceNotFound) {
		t.Error("ErrStudentNotFound should wrap ErrResourceNotFound")
	}
	if !errors.Is(ErrDuplicateConflict, ErrConflict) {
		t.Error("ErrDuplicateConflict should wrap ErrConflict")
	}
	if !errors.Is(ErrMissingRequiredField, ErrValidationFailed) {
		t.Error("ErrMissingRequiredField should wrap ErrValidationFailed")
	}
}

func TestCustomError(t *testing.T) {
	err := NewDuplicateError("rollNo", "Student with Roll Number R1 already exists!")
	if !errors.Is(err, ErrDuplicateConflict) || !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate error lost its kind: %v", err)
	}
	if PublicMessage(err) != "Student with Roll Number R1 already exists!" {
		t.Errorf("PublicMessage = %q", PublicMessage(err))
	}
	if FieldOf(err) != "rollNo" {
		t.Errorf("FieldOf = %q", FieldOf(err))
	}
}

func TestStoreErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStoreError("scan students", cause)

	if !errors.Is(err, ErrStore) || !errors.Is(err, cause) {
		t.Fatalf("store error should match both kind and cause: %v", err)
	}
	if got := err.Error(); got != "scan students failed: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if PublicMessage(err) != "scan students failed" {
		t.Errorf("PublicMessage leaked the cause: %q", PublicMessage(err))
	}
}

func TestBadRequestError(t *testing.T) {
	err := NewBadRequestError("Barcode is required")
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("bad request error lost its kind: %v", err)
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrResourceNotFound) {
		t.Error("bad request error matched another kind")
	}
	if FieldOf(err) != "" {
		t.Errorf("FieldOf = %q, want empty", FieldOf(err))
	}
}
