package filestore

import (
	"context"
	"io"
	"sync"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/filestore"
)

// Store is an in-memory filestore.Store used by tests and dev mode.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewStore() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	_ = ctx
	_ = contentType
	_ = size
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return filestore.ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

// Has reports whether a blob exists; test helper.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[key]
	return ok
}

// Len reports the number of stored blobs; test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
