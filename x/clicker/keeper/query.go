package keeper

import (
	"context"

	"sessionclicker/x/clicker/types"
)

// Ledger returns the ledger of owner or ErrLedgerNotFound.
func (k Keeper) Ledger(ctx context.Context, owner string) (*types.Ledger, error) {
	l, err := k.GetLedger(ctx, owner)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, types.ErrLedgerNotFound.Wrapf("ledger %q", owner)
	}
	return l, nil
}

// Session returns the session with sessionID or ErrInvalidSession.
func (k Keeper) Session(ctx context.Context, sessionID uint64) (*types.Session, error) {
	s, err := k.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, types.ErrInvalidSession.Wrapf("session %d not found", sessionID)
	}
	return s, nil
}

// Ledgers lists ledger owners in ascending order.
func (k Keeper) Ledgers(ctx context.Context) ([]string, error) {
	owners := []string{}
	err := k.IterateLedgers(ctx, func(l *types.Ledger) bool {
		owners = append(owners, l.Owner)
		return false
	})
	if err != nil {
		return nil, err
	}
	return owners, nil
}
