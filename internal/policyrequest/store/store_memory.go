package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"claimchain/internal/policyrequest/models"
	"claimchain/pkg/platform/sentinel"
)

// InMemoryStore keeps requests in insertion order.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests []*models.PolicyRequest
	index    map[int64]int
	nextID   int64
}

// New constructs an empty in-memory queue.
func New() *InMemoryStore {
	return &InMemoryStore{index: make(map[int64]int), nextID: 1}
}

func (s *InMemoryStore) Append(_ context.Context, req *models.PolicyRequest) (*models.PolicyRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("policy request is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := req.Clone()
	stored.ID = s.nextID
	stored.Status = models.StatusPending
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.nextID++

	s.index[stored.ID] = len(s.requests)
	s.requests = append(s.requests, stored)
	return stored.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.PolicyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.PolicyRequest, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, req.Clone())
	}
	return out, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id int64) (*models.PolicyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.requests[i].Clone(), nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id int64, status models.Status, iss models.Issuance) (*models.PolicyRequest, error) {
	if status != models.StatusIssued {
		return nil, fmt.Errorf("transition to %q: %w", status, sentinel.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := s.requests[i].MarkIssued(iss); err != nil {
		return nil, err
	}
	return s.requests[i].Clone(), nil
}
