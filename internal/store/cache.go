package store

import (
	"bytes"
	"sort"
)

type cacheEntry struct {
	value   []byte
	deleted bool
}

// Cache buffers writes on top of a parent store. Reads see the buffered
// writes first. Nothing reaches the parent until Write.
type Cache struct {
	parent KVStore
	writes map[string]cacheEntry
}

func NewCache(parent KVStore) *Cache {
	return &Cache{
		parent: parent,
		writes: map[string]cacheEntry{},
	}
}

func (c *Cache) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errKeyEmpty
	}
	if e, ok := c.writes[string(key)]; ok {
		if e.deleted {
			return nil, nil
		}
		return append([]byte(nil), e.value...), nil
	}
	return c.parent.Get(key)
}

func (c *Cache) Has(key []byte) (bool, error) {
	v, err := c.Get(key)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

func (c *Cache) Set(key, value []byte) error {
	if len(key) == 0 {
		return errKeyEmpty
	}
	if value == nil {
		return errValueNil
	}
	c.writes[string(key)] = cacheEntry{value: append([]byte(nil), value...)}
	return nil
}

func (c *Cache) Delete(key []byte) error {
	if len(key) == 0 {
		return errKeyEmpty
	}
	c.writes[string(key)] = cacheEntry{deleted: true}
	return nil
}

// Dirty reports whether the cache holds unwritten changes.
func (c *Cache) Dirty() bool {
	return len(c.writes) > 0
}

// Discard drops all buffered writes.
func (c *Cache) Discard() {
	c.writes = map[string]cacheEntry{}
}

// Write flushes buffered writes into the parent in key order and resets the cache.
func (c *Cache) Write() error {
	if err := c.writeTo(c.parent); err != nil {
		return err
	}
	c.Discard()
	return nil
}

func (c *Cache) writeTo(w writer) error {
	keys := make([]string, 0, len(c.writes))
	for k := range c.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e := c.writes[k]
		if e.deleted {
			if err := w.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := w.Set([]byte(k), e.value); err != nil {
			return err
		}
	}
	return nil
}

// Iterator merges the parent range with buffered writes. The merged view is
// materialized up front.
func (c *Cache) Iterator(start, end []byte) (Iterator, error) {
	merged := map[string][]byte{}

	it, err := c.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	for ; it.Valid(); it.Next() {
		merged[string(it.Key())] = append([]byte(nil), it.Value()...)
	}
	if err := it.Error(); err != nil {
		_ = it.Close()
		return nil, err
	}
	if err := it.Close(); err != nil {
		return nil, err
	}

	for k, e := range c.writes {
		kb := []byte(k)
		if start != nil && bytes.Compare(kb, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(kb, end) >= 0 {
			continue
		}
		if e.deleted {
			delete(merged, k)
			continue
		}
		merged[k] = e.value
	}

	kvs := make([]kvPair, 0, len(merged))
	for k, v := range merged {
		kvs = append(kvs, kvPair{key: []byte(k), value: v})
	}
	sort.Slice(kvs, func(i, j int) bool { return bytes.Compare(kvs[i].key, kvs[j].key) < 0 })
	return &sliceIterator{kvs: kvs}, nil
}

type kvPair struct {
	key   []byte
	value []byte
}

type sliceIterator struct {
	kvs []kvPair
	pos int
}

func (it *sliceIterator) Valid() bool   { return it.pos < len(it.kvs) }
func (it *sliceIterator) Next()         { it.pos++ }
func (it *sliceIterator) Key() []byte   { return it.kvs[it.pos].key }
func (it *sliceIterator) Value() []byte { return it.kvs[it.pos].value }
func (it *sliceIterator) Error() error  { return nil }
func (it *sliceIterator) Close() error  { return nil }
