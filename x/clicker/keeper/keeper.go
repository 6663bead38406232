package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"

	"sessionclicker/internal/store"
	"sessionclicker/internal/txctx"
	"sessionclicker/x/clicker/types"
)

type Keeper struct {
	storeService store.KVStoreService
	clock        types.Clock
}

func NewKeeper(storeService store.KVStoreService, clock types.Clock) Keeper {
	if storeService == nil {
		panic("clicker keeper: store service is nil")
	}
	if clock == nil {
		panic("clicker keeper: clock is nil")
	}
	return Keeper{
		storeService: storeService,
		clock:        clock,
	}
}

func (k Keeper) Logger(ctx context.Context) log.Logger {
	return txctx.Unwrap(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// now is the operation timestamp in unix seconds.
func (k Keeper) now(ctx context.Context) int64 {
	return k.clock.Now(ctx).Unix()
}

func (k Keeper) GetNextSessionID(ctx context.Context) (uint64, error) {
	kv := k.storeService.OpenKVStore(ctx)
	bz, err := kv.Get(types.NextSessionIDKey)
	if err != nil {
		return 0, err
	}
	if bz == nil {
		return 1, nil
	}
	if len(bz) != 8 {
		return 0, fmt.Errorf("invalid nextSessionID encoding")
	}
	return binary.BigEndian.Uint64(bz), nil
}

func (k Keeper) SetNextSessionID(ctx context.Context, next uint64) error {
	kv := k.storeService.OpenKVStore(ctx)
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, next)
	return kv.Set(types.NextSessionIDKey, bz)
}

// GetLedger returns nil, nil when owner has no ledger.
func (k Keeper) GetLedger(ctx context.Context, owner string) (*types.Ledger, error) {
	kv := k.storeService.OpenKVStore(ctx)
	bz, err := kv.Get(types.LedgerKey(owner))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}
	var l types.Ledger
	if err := json.Unmarshal(bz, &l); err != nil {
		return nil, fmt.Errorf("decode ledger %q: %w", owner, err)
	}
	return &l, nil
}

func (k Keeper) SetLedger(ctx context.Context, l *types.Ledger) error {
	if l == nil {
		return fmt.Errorf("ledger is nil")
	}
	if l.Owner == "" {
		return fmt.Errorf("ledger owner is empty")
	}
	bz, err := json.Marshal(l)
	if err != nil {
		return err
	}
	kv := k.storeService.OpenKVStore(ctx)
	return kv.Set(types.LedgerKey(l.Owner), bz)
}

// GetSession returns nil, nil when the session does not exist.
func (k Keeper) GetSession(ctx context.Context, sessionID uint64) (*types.Session, error) {
	kv := k.storeService.OpenKVStore(ctx)
	bz, err := kv.Get(types.SessionKey(sessionID))
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, nil
	}
	var s types.Session
	if err := json.Unmarshal(bz, &s); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", sessionID, err)
	}
	return &s, nil
}

func (k Keeper) SetSession(ctx context.Context, s *types.Session) error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}
	if s.ID == 0 {
		return fmt.Errorf("session id is zero")
	}
	bz, err := json.Marshal(s)
	if err != nil {
		return err
	}
	kv := k.storeService.OpenKVStore(ctx)
	return kv.Set(types.SessionKey(s.ID), bz)
}

// IterateLedgers visits ledgers in owner order until cb returns true.
func (k Keeper) IterateLedgers(ctx context.Context, cb func(l *types.Ledger) (stop bool)) error {
	kv := k.storeService.OpenKVStore(ctx)
	it, err := kv.Iterator(types.LedgerKeyPrefix, store.PrefixEndBytes(types.LedgerKeyPrefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		var l types.Ledger
		if err := json.Unmarshal(it.Value(), &l); err != nil {
			return fmt.Errorf("decode ledger %q: %w", it.Key()[1:], err)
		}
		if cb(&l) {
			break
		}
	}
	return it.Error()
}

// IterateSessions visits sessions in id order until cb returns true.
func (k Keeper) IterateSessions(ctx context.Context, cb func(s *types.Session) (stop bool)) error {
	kv := k.storeService.OpenKVStore(ctx)
	it, err := kv.Iterator(types.SessionKeyPrefix, store.PrefixEndBytes(types.SessionKeyPrefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		key := it.Key()
		if len(key) != 1+8 {
			continue
		}
		var s types.Session
		if err := json.Unmarshal(it.Value(), &s); err != nil {
			return fmt.Errorf("decode session %d: %w", binary.BigEndian.Uint64(key[1:]), err)
		}
		if cb(&s) {
			break
		}
	}
	return it.Error()
}
