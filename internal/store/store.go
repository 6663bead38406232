package store

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	dbm "github.com/cosmos/cosmos-db"
)

// Keys under 0x00 belong to the store itself and are excluded from the app hash.
var (
	heightKey      = []byte{0x00, 'h'}
	appHashKey     = []byte{0x00, 'a'}
	dataStartBytes = []byte{0x01}
)

// Store is the persistent record store. Writes accumulate in a block-level
// cache, per-tx branches are cached on top of it, and Commit flushes the
// block cache to the database in one synced batch.
type Store struct {
	db      dbm.DB
	working *Cache

	height  int64
	appHash []byte
}

// Open opens (or creates) the application database under <home>/data.
func Open(home string, backend dbm.BackendType) (*Store, error) {
	dataDir := filepath.Join(home, "data")
	if backend != dbm.MemDBBackend {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir data dir: %w", err)
		}
	}
	db, err := dbm.NewDB("application", backend, dataDir)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return load(db)
}

// NewMemStore returns a store backed by an in-memory database.
func NewMemStore() *Store {
	s, err := load(dbm.NewMemDB())
	if err != nil {
		// An empty memdb has no metadata to decode.
		panic(err)
	}
	return s
}

func load(db dbm.DB) (*Store, error) {
	s := &Store{db: db}
	s.working = NewCache(dbStore{db: db})

	bz, err := db.Get(heightKey)
	if err != nil {
		return nil, fmt.Errorf("read height: %w", err)
	}
	if bz != nil {
		if len(bz) != 8 {
			return nil, fmt.Errorf("decode height: got %d bytes", len(bz))
		}
		s.height = int64(binary.BigEndian.Uint64(bz))
	}
	s.appHash, err = db.Get(appHashKey)
	if err != nil {
		return nil, fmt.Errorf("read app hash: %w", err)
	}
	if s.appHash == nil {
		s.appHash, err = s.hash()
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Height is the last committed block height.
func (s *Store) Height() int64 {
	return s.height
}

// LastAppHash is the app hash of the last committed block.
func (s *Store) LastAppHash() []byte {
	return append([]byte(nil), s.appHash...)
}

// Working exposes the block-level cache; writes to it land in the next Commit.
func (s *Store) Working() KVStore {
	return s.working
}

// Branch returns a write cache over the block-level cache. Callers Write it to
// keep its changes or drop it to discard them.
func (s *Store) Branch() *Cache {
	return NewCache(s.working)
}

// Snapshot returns a throwaway cache over the committed database.
func (s *Store) Snapshot() *Cache {
	return NewCache(dbStore{db: s.db})
}

// WorkingHash computes the app hash over committed state plus the block cache.
func (s *Store) WorkingHash() ([]byte, error) {
	return hashRange(s.working)
}

func (s *Store) hash() ([]byte, error) {
	return hashRange(dbStore{db: s.db})
}

// hashRange is sha256 over every data record as u32le(len(k))||k||u32le(len(v))||v
// in key order.
func hashRange(kv KVStore) ([]byte, error) {
	it, err := kv.Iterator(dataStartBytes, nil)
	if err != nil {
		return nil, fmt.Errorf("iterate state: %w", err)
	}
	defer it.Close()

	h := sha256.New()
	var lenBuf [4]byte
	for ; it.Valid(); it.Next() {
		k, v := it.Key(), it.Value()
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(k)))
		h.Write(lenBuf[:])
		h.Write(k)
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(v)))
		h.Write(lenBuf[:])
		h.Write(v)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("iterate state: %w", err)
	}
	return h.Sum(nil), nil
}

// Commit persists the block cache together with the new height and returns
// the resulting app hash.
func (s *Store) Commit(height int64) ([]byte, error) {
	if s == nil {
		return nil, errStoreIsNil
	}
	appHash, err := s.WorkingHash()
	if err != nil {
		return nil, err
	}

	batch := s.db.NewBatch()
	defer func() { _ = batch.Close() }()

	if err := s.working.writeTo(batch); err != nil {
		return nil, fmt.Errorf("stage writes: %w", err)
	}
	hb := make([]byte, 8)
	binary.BigEndian.PutUint64(hb, uint64(height))
	if err := batch.Set(heightKey, hb); err != nil {
		return nil, fmt.Errorf("stage height: %w", err)
	}
	if err := batch.Set(appHashKey, appHash); err != nil {
		return nil, fmt.Errorf("stage app hash: %w", err)
	}
	if err := batch.WriteSync(); err != nil {
		return nil, fmt.Errorf("write batch: %w", err)
	}

	s.working.Discard()
	s.height = height
	s.appHash = appHash
	return append([]byte(nil), appHash...), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
