package repository

import "errors"

var (
	// ErrVersionConflict is returned when a conditional update matched no
	// rows because the entity's version moved since it was read.
	ErrVersionConflict = errors.New("version conflict")

	// ErrDuplicateRecord is returned when an insert violates a uniqueness
	// constraint on an append-only table.
	ErrDuplicateRecord = errors.New("duplicate record")
)
