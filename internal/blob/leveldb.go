package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"claimchain/pkg/platform/sentinel"
)

var keyPrefix = []byte("blob/")

// LevelDBStore persists blobs in a LevelDB database keyed by CID.
type LevelDBStore struct {
	db *leveldb.DB
}

// OpenLevelDB opens (or creates) a LevelDB blob store at path.
func OpenLevelDB(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return &LevelDBStore{db: db}, nil
}

// NewLevelDBStore wraps an already opened database.
func NewLevelDBStore(db *leveldb.DB) *LevelDBStore {
	return &LevelDBStore{db: db}
}

func (s *LevelDBStore) Put(_ context.Context, data []byte) (cid.Cid, error) {
	id, err := ComputeCID(data)
	if err != nil {
		return cid.Undef, fmt.Errorf("compute cid: %w", err)
	}
	if err := s.db.Put(key(id), data, &opt.WriteOptions{Sync: true}); err != nil {
		return cid.Undef, fmt.Errorf("put blob: %w", err)
	}
	return id, nil
}

// Get returns the blob for id. Content that no longer hashes to id is treated
// as corrupt.
func (s *LevelDBStore) Get(_ context.Context, id cid.Cid) ([]byte, error) {
	data, err := s.db.Get(key(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	check, err := ComputeCID(data)
	if err != nil || !check.Equals(id) {
		return nil, fmt.Errorf("blob %s failed integrity check", id)
	}
	return data, nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

func key(id cid.Cid) []byte {
	return append(append([]byte(nil), keyPrefix...), id.Bytes()...)
}
