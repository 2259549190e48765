package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store used by tests and local development.
// It honors the same CAS semantics as the Postgres implementation.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]map[string]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]map[string]Record)}
}

func (m *Memory) Get(_ context.Context, bucket, key string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.buckets[bucket][key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (m *Memory) Create(_ context.Context, bucket, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[bucket]
	if !ok {
		b = make(map[string]Record)
		m.buckets[bucket] = b
	}
	if _, exists := b[key]; exists {
		return ErrAlreadyExists
	}
	b[key] = Record{Key: key, Value: append([]byte(nil), value...), Version: 1}
	return nil
}

func (m *Memory) CompareAndSwap(_ context.Context, bucket, key string, value []byte, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[bucket]
	if !ok {
		return ErrNotFound
	}
	rec, ok := b[key]
	if !ok {
		return ErrNotFound
	}
	if rec.Version != expectedVersion {
		return ErrVersionConflict
	}
	b[key] = Record{Key: key, Value: append([]byte(nil), value...), Version: rec.Version + 1}
	return nil
}

func (m *Memory) List(_ context.Context, bucket, prefix string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for key, rec := range m.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func cloneRecord(rec Record) Record {
	return Record{Key: rec.Key, Value: append([]byte(nil), rec.Value...), Version: rec.Version}
}
