package txctx

import (
	"context"
	"time"

	"sessionclicker/internal/store"
)

type kvStoreService struct {
	prefix []byte
}

// NewKVStoreService scopes a module to "<storeKey>/" inside the transaction's
// store branch.
func NewKVStoreService(storeKey string) store.KVStoreService {
	return kvStoreService{prefix: []byte(storeKey + "/")}
}

func (s kvStoreService) OpenKVStore(ctx context.Context) store.KVStore {
	return store.NewPrefixStore(Unwrap(ctx).Store(), s.prefix)
}

// BlockClock reads the block time of the transaction being executed.
type BlockClock struct{}

func (BlockClock) Now(ctx context.Context) time.Time {
	return Unwrap(ctx).BlockTime()
}
