package keeper

import (
	"context"

	"sessionclicker/x/clicker/types"
)

// applyReveal credits a verified reveal. Every fallible step runs before the
// first write, so an error leaves both records untouched.
func (k Keeper) applyReveal(ctx context.Context, l *types.Ledger, s *types.Session, clicks uint32, now int64) error {
	total, err := addUint64Checked(l.TotalClicks, uint64(clicks), "totalClicks")
	if err != nil {
		return err
	}
	revealed, err := addUint64Checked(l.SessionsRevealed, 1, "sessionsRevealed")
	if err != nil {
		return err
	}

	nextSession := *s
	nextSession.Revealed = true
	nextSession.ActualClicks = clicks
	nextSession.EndTime = now

	nextLedger := *l
	nextLedger.TotalClicks = total
	nextLedger.LastSessionEnd = now
	nextLedger.ActiveSession = nil
	nextLedger.SessionsRevealed = revealed

	return k.persist(ctx, &nextLedger, &nextSession, l, s)
}

// applyCancel closes the session without credit. lastSessionEnd is left as is.
func (k Keeper) applyCancel(ctx context.Context, l *types.Ledger, s *types.Session, now int64) error {
	cancelled, err := addUint64Checked(l.SessionsCancelled, 1, "sessionsCancelled")
	if err != nil {
		return err
	}

	nextSession := *s
	nextSession.Revealed = true
	nextSession.Cancelled = true
	nextSession.ActualClicks = 0
	nextSession.EndTime = now

	nextLedger := *l
	nextLedger.ActiveSession = nil
	nextLedger.SessionsCancelled = cancelled

	return k.persist(ctx, &nextLedger, &nextSession, l, s)
}

// persist writes the session and ledger and, on success, copies the new
// values into the caller's records.
func (k Keeper) persist(ctx context.Context, nextLedger *types.Ledger, nextSession *types.Session, l *types.Ledger, s *types.Session) error {
	if err := k.SetSession(ctx, nextSession); err != nil {
		return err
	}
	if err := k.SetLedger(ctx, nextLedger); err != nil {
		return err
	}
	*l = *nextLedger
	*s = *nextSession
	return nil
}
