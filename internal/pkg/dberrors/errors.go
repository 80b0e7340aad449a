package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the stores react to.
const (
	CodeUniqueViolation = "23505"
	CodeUndefinedTable  = "42P01"
)

// UniqueViolation reports the constraint name when err is a postgres
// unique_violation.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsDuplicateConstraintError checks for a unique violation on one constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	name, ok := UniqueViolation(err)
	return ok && name == constraintName
}

// IsUndefinedTable is true when the schema has not been migrated.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUndefinedTable
}
