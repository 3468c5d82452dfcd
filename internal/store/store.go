// Package store persists one GenerationRecord per subject. Implementations
// must make Upsert atomic: a write either fully lands or leaves the stored
// record unchanged.
package store

import (
	"context"
	"errors"

	"designgen-backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict means another writer updated the record between this
	// caller's read and its upsert.
	ErrVersionConflict = errors.New("record version conflict")
)

type RecordStore interface {
	// Get returns the record for a subject, or ErrNotFound.
	Get(ctx context.Context, subjectID string) (*models.GenerationRecord, error)

	// Upsert writes the record. rec.Version must be the version observed at
	// read time (zero for a fresh record); on success the stored version is
	// incremented. A mismatch returns ErrVersionConflict.
	Upsert(ctx context.Context, rec models.GenerationRecord) error
}
