// Package storage provides the keyed offline record backends.
package storage

import (
	"fmt"
	"strings"
	"sync"
)

// Store persists the last successful response body per offline key.
type Store interface {
	Close() error
	// Read returns the stored value and whether the key was present.
	Read(key string) (string, bool, error)
	// Write replaces any value stored under key.
	Write(key, value string) error
}

const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeBBolt  = "bbolt"
	TypeSQLite = "sqlite"
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeMemory:
		return NewMemoryStore(), nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	case TypeSQLite:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite storage requires a path")
		}
		return openSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

type noopStore struct{}

func (noopStore) Close() error                      { return nil }
func (noopStore) Read(string) (string, bool, error) { return "", false, nil }
func (noopStore) Write(string, string) error        { return nil }

// MemoryStore keeps records for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]string
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]string)}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Read(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.records[key]
	return v, ok, nil
}

func (m *MemoryStore) Write(key, value string) error {
	m.mu.Lock()
	m.records[key] = value
	m.mu.Unlock()
	return nil
}
