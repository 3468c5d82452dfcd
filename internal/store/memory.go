package store

import (
	"context"
	"sync"

	"designgen-backend/internal/models"
)

// MemoryStore keeps records in process memory. It backs tests and DB-less
// development mode and mirrors the Postgres version-check semantics.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]models.GenerationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]models.GenerationRecord),
	}
}

func (s *MemoryStore) Get(ctx context.Context, subjectID string) (*models.GenerationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[subjectID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, rec models.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[rec.SubjectID]
	if ok && current.Version != rec.Version {
		return ErrVersionConflict
	}
	if !ok && rec.Version != 0 {
		return ErrVersionConflict
	}

	rec.Version++
	s.records[rec.SubjectID] = rec
	return nil
}
