package store

import (
	"context"
	"sync"

	"vmforge/internal/resource"
)

// MemoryStore keeps records in process memory. Records are normalized through
// JSON on insert so reads look the same as from the durable stores.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]resource.Record
	index  map[string]map[string]int
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string][]resource.Record),
		index:  make(map[string]map[string]int),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, table string, rec resource.Record) error {
	key, err := recordKey(table, rec)
	if err != nil {
		return err
	}
	doc, err := rec.Clone()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index[table] == nil {
		s.index[table] = make(map[string]int)
	}
	if i, ok := s.index[table][key]; ok {
		s.tables[table][i] = doc
		return nil
	}
	s.index[table][key] = len(s.tables[table])
	s.tables[table] = append(s.tables[table], doc)
	return nil
}

func (s *MemoryStore) SelectOne(ctx context.Context, table, column string, value any) (resource.Record, error) {
	if _, err := KeyColumn(table); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.tables[table] {
		if matches(rec, column, value) {
			return rec.Clone()
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(ctx context.Context, table string, limit int) ([]resource.Record, error) {
	if _, err := KeyColumn(table); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.tables[table]
	out := make([]resource.Record, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		rec, err := rows[i].Clone()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
