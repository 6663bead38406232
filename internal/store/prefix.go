package store

// prefixStore scopes every key of a parent store under a fixed prefix.
type prefixStore struct {
	parent KVStore
	prefix []byte
}

func NewPrefixStore(parent KVStore, prefix []byte) KVStore {
	return prefixStore{parent: parent, prefix: append([]byte(nil), prefix...)}
}

func (s prefixStore) key(k []byte) []byte {
	out := make([]byte, 0, len(s.prefix)+len(k))
	out = append(out, s.prefix...)
	return append(out, k...)
}

func (s prefixStore) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, errKeyEmpty
	}
	return s.parent.Get(s.key(key))
}

func (s prefixStore) Has(key []byte) (bool, error) {
	if len(key) == 0 {
		return false, errKeyEmpty
	}
	return s.parent.Has(s.key(key))
}

func (s prefixStore) Set(key, value []byte) error {
	if len(key) == 0 {
		return errKeyEmpty
	}
	return s.parent.Set(s.key(key), value)
}

func (s prefixStore) Delete(key []byte) error {
	if len(key) == 0 {
		return errKeyEmpty
	}
	return s.parent.Delete(s.key(key))
}

func (s prefixStore) Iterator(start, end []byte) (Iterator, error) {
	pstart := s.key(start)
	var pend []byte
	if end == nil {
		pend = PrefixEndBytes(s.prefix)
	} else {
		pend = s.key(end)
	}
	it, err := s.parent.Iterator(pstart, pend)
	if err != nil {
		return nil, err
	}
	return &prefixIterator{Iterator: it, strip: len(s.prefix)}, nil
}

type prefixIterator struct {
	Iterator
	strip int
}

func (it *prefixIterator) Key() []byte {
	return it.Iterator.Key()[it.strip:]
}
