package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophdrive/internal/common"
)

type memoryBlob struct {
	data        []byte
	contentType string
}

// MemoryStore keeps blobs in a map. Intended for tests and single-process
// demos.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read blob %s: %w: %w", key, common.ErrBlobUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = memoryBlob{data: data, contentType: contentType}
	return nil
}

func (s *MemoryStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", key, common.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (s *MemoryStore) Stat(ctx context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[key]
	if !ok {
		return 0, fmt.Errorf("blob %s: %w", key, common.ErrNotFound)
	}
	return int64(len(b.data)), nil
}

func (s *MemoryStore) URL(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.blobs[key]; !ok {
		return "", fmt.Errorf("blob %s: %w", key, common.ErrNotFound)
	}
	return "memory://" + key, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return fmt.Errorf("blob %s: %w", key, common.ErrNotFound)
	}
	delete(s.blobs, key)
	return nil
}

// Len reports the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
