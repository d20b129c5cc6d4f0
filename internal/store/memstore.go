// Package store persists backlink index snapshots.
// This file contains the interface and in-memory implementation for testing.
package store

import (
	"sync"
)

// SnapshotStore is a key-value store for serialized snapshots.
// This allows swapping between MemStore (testing), SQLiteStore and FSStore.
type SnapshotStore interface {
	// PutSnapshot stores data under key, replacing any previous value.
	PutSnapshot(key string, data []byte) error
	// GetSnapshot returns nil, nil when key is not stored.
	GetSnapshot(key string) ([]byte, error)
	DeleteSnapshot(key string) error

	// Lifecycle
	Close() error
}

// MemStore is an in-memory implementation of SnapshotStore for testing.
type MemStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		snapshots: make(map[string][]byte),
	}
}

// Close is a no-op for MemStore.
func (s *MemStore) Close() error {
	return nil
}

func (s *MemStore) PutSnapshot(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so callers can reuse their buffer
	s.snapshots[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemStore) GetSnapshot(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if data, ok := s.snapshots[key]; ok {
		return append([]byte(nil), data...), nil
	}
	return nil, nil
}

func (s *MemStore) DeleteSnapshot(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, key)
	return nil
}
