package services

import (
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

// CleanRecord drops every empty field. Values are kept verbatim.
func CleanRecord(raw map[string]string) models.StudentRecord {
	record := make(models.StudentRecord, len(raw))
	for field, value := range raw {
		if value != "" {
			record[field] = value
		}
	}
	return record
}

// ValidateRecord cleans raw and requires a roll number
func ValidateRecord(raw map[string]string) (models.StudentRecord, error) {
	record := CleanRecord(raw)
	if record.RollNo() == "" {
		return nil, apperrors.NewMissingFieldError(models.FieldRollNo, "Roll number is required")
	}
	return record, nil
}
