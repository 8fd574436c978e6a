package testhelpers

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory storage.Store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	Files map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Files: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "/media/" + key
	s.Files[url] = data
	return url, nil
}

func (s *MemoryStore) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Files, url)
	return nil
}

// Has reports whether url is stored.
func (s *MemoryStore) Has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Files[url]
	return ok
}
