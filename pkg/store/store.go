// Package store provides durable keyed custody for engine records. Both
// backends give read-your-writes semantics; atomicity across an operation is
// supplied by the engine's per-resource linearization, not by the store.
package store

import (
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
)

// ErrNotFound is returned when a key has no record.
var ErrNotFound = errors.New("store: key not found")

// Store is the record custody contract.
type Store interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Close() error
}

// Memory is a map-backed Store for tests and ephemeral deployments.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Put inserts or replaces a record.
func (m *Memory) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[string(key)] = cp
	return nil
}

// Get returns the record for key, or ErrNotFound.
func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

// Has reports whether key holds a record.
func (m *Memory) Has(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

// Close satisfies Store; nothing to release.
func (m *Memory) Close() error { return nil }

// Level is a persistent Store backed by LevelDB.
type Level struct {
	db *leveldb.DB
}

// OpenLevel creates or opens a LevelDB store at path.
func OpenLevel(path string) (*Level, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Level{db: db}, nil
}

// Put inserts or replaces a record.
func (l *Level) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

// Get returns the record for key, or ErrNotFound.
func (l *Level) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

// Has reports whether key holds a record.
func (l *Level) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

// Close closes the underlying database.
func (l *Level) Close() error {
	return l.db.Close()
}
