// Package blob implements the content-addressed blob store.
package blob

import (
	"context"
	"fmt"
	"sync"

	"github.com/ipfs/go-cid"

	"claimchain/pkg/platform/sentinel"
)

// Store is content-addressed put/get of arbitrary bytes.
type Store interface {
	Put(ctx context.Context, data []byte) (cid.Cid, error)
	Get(ctx context.Context, id cid.Cid) ([]byte, error)
}

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, data []byte) (cid.Cid, error) {
	id, err := ComputeCID(data)
	if err != nil {
		return cid.Undef, fmt.Errorf("compute cid: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id.KeyString()] = append([]byte(nil), data...)
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id cid.Cid) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[id.KeyString()]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}
