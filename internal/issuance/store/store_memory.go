package store

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"claimchain/internal/issuance/models"
	"claimchain/pkg/platform/sentinel"
)

// InMemoryStore is the index used when no database is configured.
type InMemoryStore struct {
	mu        sync.RWMutex
	byRef     map[string]*models.Record
	byRequest map[int64]string
	byOnchain map[string]string
}

func New() *InMemoryStore {
	return &InMemoryStore{
		byRef:     make(map[string]*models.Record),
		byRequest: make(map[int64]string),
		byOnchain: make(map[string]string),
	}
}

func (s *InMemoryStore) Save(_ context.Context, rec *models.Record) error {
	if rec == nil {
		return fmt.Errorf("issued credential record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byRef[rec.PolicyRef]; ok {
		return models.ErrPolicyRefTaken
	}
	if rec.RequestID != nil {
		if _, ok := s.byRequest[*rec.RequestID]; ok {
			return models.ErrRequestIndexed
		}
	}
	if rec.OnchainPolicyID != nil {
		if _, ok := s.byOnchain[rec.OnchainPolicyID.String()]; ok {
			return models.ErrOnchainPolicyIndexed
		}
	}

	stored := clone(rec)
	s.byRef[rec.PolicyRef] = stored
	if rec.RequestID != nil {
		s.byRequest[*rec.RequestID] = rec.PolicyRef
	}
	if rec.OnchainPolicyID != nil {
		s.byOnchain[rec.OnchainPolicyID.String()] = rec.PolicyRef
	}
	return nil
}

func (s *InMemoryStore) FindByPolicyRef(_ context.Context, policyRef string) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byRef[policyRef]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(rec), nil
}

func (s *InMemoryStore) FindByOnchainPolicyID(_ context.Context, policyID *big.Int) (*models.Record, error) {
	if policyID == nil {
		return nil, sentinel.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.byOnchain[policyID.String()]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.byRef[ref]), nil
}

func clone(rec *models.Record) *models.Record {
	c := *rec
	if rec.RequestID != nil {
		id := *rec.RequestID
		c.RequestID = &id
	}
	if rec.OnchainPolicyID != nil {
		c.OnchainPolicyID = new(big.Int).Set(rec.OnchainPolicyID)
	}
	return &c
}
