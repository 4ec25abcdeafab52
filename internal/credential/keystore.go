package credential

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"claimchain/pkg/platform/sentinel"
)

// KeyStore holds the private keys of DIDs managed by this service.
type KeyStore interface {
	Put(ctx context.Context, did string, key ed25519.PrivateKey) error
	Get(ctx context.Context, did string) (ed25519.PrivateKey, error)
}

type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PrivateKey
}

func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string]ed25519.PrivateKey)}
}

func (s *MemoryKeyStore) Put(_ context.Context, did string, key ed25519.PrivateKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[did] = key
	return nil
}

func (s *MemoryKeyStore) Get(_ context.Context, did string) (ed25519.PrivateKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[did]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return key, nil
}

// LevelDBKeyStore persists key seeds so managed DIDs survive restarts.
type LevelDBKeyStore struct {
	db *leveldb.DB
}

func OpenLevelDBKeyStore(path string) (*LevelDBKeyStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open key store: %w", err)
	}
	return &LevelDBKeyStore{db: db}, nil
}

func NewLevelDBKeyStore(db *leveldb.DB) *LevelDBKeyStore {
	return &LevelDBKeyStore{db: db}
}

func (s *LevelDBKeyStore) Put(_ context.Context, did string, key ed25519.PrivateKey) error {
	return s.db.Put([]byte("key/"+did), key.Seed(), &opt.WriteOptions{Sync: true})
}

func (s *LevelDBKeyStore) Get(_ context.Context, did string) (ed25519.PrivateKey, error) {
	seed, err := s.db.Get([]byte("key/"+did), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("corrupt key seed for %s", did)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

func (s *LevelDBKeyStore) Close() error {
	return s.db.Close()
}
