package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

var _ BlobStore = (*MemStore)(nil)

// MemStore is an in-memory BlobStore used in tests
type MemStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	// FailPut forces the next Put to fail when set
	FailPut error
	// FailDelete forces the next Delete to fail when set
	FailDelete error
}

// NewMemStore creates an empty in-memory blob store
func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte)}
}

func (s *MemStore) Put(_ context.Context, key string, r io.Reader, _ string) error {
	if s.FailPut != nil {
		return s.FailPut
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read blob data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *MemStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemStore) Delete(_ context.Context, key string) error {
	if s.FailDelete != nil {
		return s.FailDelete
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// Len returns the number of stored blobs
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// Bytes returns the stored contents for key, nil if absent
func (s *MemStore) Bytes(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobs[key]
}
