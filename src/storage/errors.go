package storage

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates the referenced conversation or message does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConstraint indicates a primary-key or foreign-key violation: a
	// duplicate id on insert, or a message referencing a nonexistent
	// conversation. These are surfaced to the caller and never retried.
	ErrConstraint = errors.New("constraint violation")
)

// isDuplicateColumn matches only the sqlite duplicate-column error so that
// EnsureSchema's attempt-and-ignore migration cannot mask real failures.
func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

// isConstraintViolation matches sqlite constraint failures (UNIQUE, FOREIGN KEY,
// NOT NULL). The modernc driver reports these in the error text.
func isConstraintViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

// wrapConstraint converts driver-level constraint failures into ErrConstraint
// while leaving infrastructure errors untouched.
func wrapConstraint(err error) error {
	if isConstraintViolation(err) {
		return errors.Join(ErrConstraint, err)
	}
	return err
}
