package memkv

import (
	"bytes"
	"context"
	"sort"
	"sync"
)

// Store is an in-memory implementation of kv.Store for tests and ephemeral
// lexicons. Committed keys are kept sorted; staged writes live in a pending
// map until Commit.
type Store struct {
	mu      sync.RWMutex
	keys    []string
	data    map[string][]byte
	pending map[string][]byte
	closed  bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		data:    make(map[string][]byte),
		pending: make(map[string][]byte),
	}
}

// Close implements kv.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Get returns a committed value.
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, errClosed
	}
	v, ok := s.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

// Put stages a write.
func (s *Store) Put(ctx context.Context, key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed
	}
	s.pending[string(key)] = bytes.Clone(value)
	return nil
}

// Commit applies staged writes.
func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed
	}
	added := false
	for k, v := range s.pending {
		if _, ok := s.data[k]; !ok {
			s.keys = append(s.keys, k)
			added = true
		}
		s.data[k] = v
	}
	if added {
		sort.Strings(s.keys)
	}
	s.pending = make(map[string][]byte)
	return nil
}

// Seek visits committed keys >= from in order.
func (s *Store) Seek(ctx context.Context, from []byte, fn func(key, value []byte) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return errClosed
	}
	i := sort.SearchStrings(s.keys, string(from))
	for ; i < len(s.keys); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		k := s.keys[i]
		if !fn([]byte(k), s.data[k]) {
			return nil
		}
	}
	return nil
}
