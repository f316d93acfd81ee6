package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/linepulse/internal/domain/model"
)

// MemorySyncStore is an in-process Store for tests and ephemeral runs.
type MemorySyncStore struct {
	mu      sync.RWMutex
	records map[string]model.SyncRecord
}

// NewMemorySyncStore returns an empty store.
func NewMemorySyncStore() *MemorySyncStore {
	return &MemorySyncStore{records: make(map[string]model.SyncRecord)}
}

func (m *MemorySyncStore) Get(_ context.Context, path string) (model.SyncRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[path]
	if !ok {
		return model.SyncRecord{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return rec, nil
}

func (m *MemorySyncStore) List(_ context.Context) ([]model.SyncRecord, error) {
	m.mu.RLock()
	out := make([]model.SyncRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out, nil
}

func (m *MemorySyncStore) Upsert(_ context.Context, rec model.SyncRecord) error {
	if rec.FilePath == "" {
		return ErrInvalidPath
	}
	m.mu.Lock()
	m.records[rec.FilePath] = rec
	m.mu.Unlock()
	return nil
}

func (m *MemorySyncStore) Close() error { return nil }
