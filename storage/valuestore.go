// Package storage holds a party's own named input values. Values are seeded
// from configuration or set interactively, and read when a session is
// constructed.
package storage

import (
	"sync"

	"go.dedis.ch/mpcnet/types"
)

// ValueStore is an in-memory store of named scalar values.
type ValueStore interface {
	Get(key string) (types.Scalar, bool)
	Put(key string, value types.Scalar) error
	For(action func(key string, value types.Scalar) error) error
	Len() int
}

// BasicStore implements a thread-safe value store
//
// - implements storage.ValueStore
type BasicStore struct {
	sync.RWMutex
	store map[string]types.Scalar
}

// NewBasicStore returns an empty store.
func NewBasicStore() *BasicStore {
	return &BasicStore{
		store: make(map[string]types.Scalar),
	}
}

// Get implements storage.ValueStore
func (s *BasicStore) Get(key string) (types.Scalar, bool) {
	s.RLock()
	defer s.RUnlock()

	value, ok := s.store[key]
	return value, ok
}

// Put implements storage.ValueStore
func (s *BasicStore) Put(key string, value types.Scalar) error {
	s.Lock()
	defer s.Unlock()

	s.store[key] = value
	return nil
}

// For implements storage.ValueStore
func (s *BasicStore) For(action func(key string, value types.Scalar) error) error {
	s.RLock()
	defer s.RUnlock()

	for k, v := range s.store {
		err := action(k, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// Len implements storage.ValueStore
func (s *BasicStore) Len() int {
	s.RLock()
	defer s.RUnlock()

	return len(s.store)
}
