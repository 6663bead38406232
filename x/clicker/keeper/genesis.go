package keeper

import (
	"context"

	"sessionclicker/x/clicker/types"
)

func (k Keeper) InitGenesis(ctx context.Context, gs *types.GenesisState) error {
	if gs == nil {
		gs = types.DefaultGenesisState()
	}
	if err := types.ValidateGenesis(gs); err != nil {
		return err
	}
	if err := k.SetNextSessionID(ctx, gs.NextSessionID); err != nil {
		return err
	}
	for i := range gs.Ledgers {
		if err := k.SetLedger(ctx, &gs.Ledgers[i]); err != nil {
			return err
		}
	}
	for i := range gs.Sessions {
		if err := k.SetSession(ctx, &gs.Sessions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	next, err := k.GetNextSessionID(ctx)
	if err != nil {
		return nil, err
	}
	gs := &types.GenesisState{NextSessionID: next}

	err = k.IterateLedgers(ctx, func(l *types.Ledger) bool {
		gs.Ledgers = append(gs.Ledgers, *l)
		return false
	})
	if err != nil {
		return nil, err
	}
	err = k.IterateSessions(ctx, func(s *types.Session) bool {
		gs.Sessions = append(gs.Sessions, *s)
		return false
	})
	if err != nil {
		return nil, err
	}
	return gs, nil
}
