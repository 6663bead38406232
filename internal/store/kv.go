package store

import (
	"context"
	"errors"

	dbm "github.com/cosmos/cosmos-db"
)

var (
	errKeyEmpty   = errors.New("key cannot be empty")
	errValueNil   = errors.New("value cannot be nil")
	errStoreIsNil = errors.New("store is nil")
)

// Iterator walks a key range in ascending order. Keys and values must not be
// modified by the caller.
type Iterator interface {
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// KVStore is the record store the modules read and write through.
// Get returns nil for a missing key.
type KVStore interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Iterator(start, end []byte) (Iterator, error)
}

// KVStoreService opens the store bound to an operation's context.
type KVStoreService interface {
	OpenKVStore(ctx context.Context) KVStore
}

type writer interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// dbStore adapts a cosmos-db database to KVStore.
type dbStore struct {
	db dbm.DB
}

func (s dbStore) Get(key []byte) ([]byte, error) {
	return s.db.Get(key)
}

func (s dbStore) Has(key []byte) (bool, error) {
	return s.db.Has(key)
}

func (s dbStore) Set(key, value []byte) error {
	return s.db.Set(key, value)
}

func (s dbStore) Delete(key []byte) error {
	return s.db.Delete(key)
}

func (s dbStore) Iterator(start, end []byte) (Iterator, error) {
	return s.db.Iterator(start, end)
}

// PrefixEndBytes returns the exclusive upper bound of all keys starting with prefix.
func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	end := append([]byte(nil), prefix...)
	for len(end) > 0 {
		if end[len(end)-1] != 0xff {
			end[len(end)-1]++
			return end
		}
		end = end[:len(end)-1]
	}
	return nil
}
