package keeper_test

import (
	"context"
	"math"
	"testing"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/stretchr/testify/require"

	"sessionclicker/internal/commitment"
	"sessionclicker/internal/store"
	"sessionclicker/internal/txctx"
	"sessionclicker/x/clicker/keeper"
	"sessionclicker/x/clicker/types"
)

type fakeClock struct {
	unix int64
}

func (c *fakeClock) Now(context.Context) time.Time {
	return time.Unix(c.unix, 0).UTC()
}

type fixture struct {
	kv    *store.Cache
	clock *fakeClock
	k     keeper.Keeper
	ms    types.MsgServer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &fakeClock{}
	k := keeper.NewKeeper(txctx.NewKVStoreService(types.StoreKey), clock)
	return &fixture{
		kv:    store.NewMemStore().Branch(),
		clock: clock,
		k:     k,
		ms:    keeper.NewMsgServerImpl(k),
	}
}

// ctx returns a fresh transaction environment so each call sees its own events.
func (f *fixture) ctx() context.Context {
	return txctx.Wrap(context.Background(), txctx.New(f.kv, 1, f.clock.Now(context.Background()), nil))
}

func (f *fixture) dump(t *testing.T) map[string]string {
	t.Helper()
	it, err := f.kv.Iterator(nil, nil)
	require.NoError(t, err)
	defer it.Close()
	out := map[string]string{}
	for ; it.Valid(); it.Next() {
		out[string(it.Key())] = string(it.Value())
	}
	return out
}

func (f *fixture) initialize(t *testing.T, player string) {
	t.Helper()
	_, err := f.ms.Initialize(f.ctx(), &types.MsgInitialize{Player: player})
	require.NoError(t, err)
}

func (f *fixture) start(t *testing.T, player string, clicks uint32, nonce uint64) uint64 {
	t.Helper()
	resp, err := f.ms.StartSession(f.ctx(), &types.MsgStartSession{
		Player:     player,
		Commitment: commitment.Commit(clicks, nonce, []byte(player)),
	})
	require.NoError(t, err)
	return resp.SessionID
}

func (f *fixture) end(player string, id uint64, clicks uint32, nonce uint64, maxDuration int64) (*types.MsgEndSessionResponse, error) {
	return f.ms.EndSession(f.ctx(), &types.MsgEndSession{
		Player:             player,
		SessionID:          id,
		Clicks:             clicks,
		Nonce:              nonce,
		MaxSessionDuration: maxDuration,
	})
}

func (f *fixture) ledger(t *testing.T, owner string) *types.Ledger {
	t.Helper()
	l, err := f.k.Ledger(f.ctx(), owner)
	require.NoError(t, err)
	return l
}

func (f *fixture) session(t *testing.T, id uint64) *types.Session {
	t.Helper()
	s, err := f.k.Session(f.ctx(), id)
	require.NoError(t, err)
	return s
}

func attr(ev abci.Event, key string) string {
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func TestInitialize_CreatesIdleLedger(t *testing.T) {
	f := newFixture(t)
	f.clock.unix = 1234

	ctx := f.ctx()
	resp, err := f.ms.Initialize(ctx, &types.MsgInitialize{Player: "alice"})
	require.NoError(t, err)
	require.Equal(t, int64(1234), resp.LastSessionEnd)

	l := f.ledger(t, "alice")
	require.Equal(t, "alice", l.Owner)
	require.Zero(t, l.TotalClicks)
	require.Equal(t, int64(1234), l.LastSessionEnd)
	require.True(t, l.Idle())

	evs := txctx.Unwrap(ctx).EventManager().Events()
	require.Len(t, evs, 1)
	require.Equal(t, types.EventTypeLedgerInitialized, evs[0].Type)
	require.Equal(t, "alice", attr(evs[0], types.AttributeKeyPlayer))

	_, err = f.ms.Initialize(f.ctx(), &types.MsgInitialize{Player: "alice"})
	require.ErrorIs(t, err, types.ErrLedgerAlreadyExists)
}

func TestRevealScenario_RateBoundaryThenSuccess(t *testing.T) {
	f := newFixture(t)
	f.initialize(t, "alice")
	id := f.start(t, "alice", 100, 42)
	require.Equal(t, uint64(1), id)

	f.clock.unix = 10
	before := f.dump(t)

	_, err := f.end("alice", id, 101, 42, 20)
	require.ErrorIs(t, err, types.ErrUnrealisticClickRate)
	require.Equal(t, before, f.dump(t), "failed reveal must not mutate state")
	require.Equal(t, types.SessionStateActive, f.session(t, id).State())

	ctx := f.ctx()
	resp, err := f.ms.EndSession(ctx, &types.MsgEndSession{
		Player:             "alice",
		SessionID:          id,
		Clicks:             100,
		Nonce:              42,
		MaxSessionDuration: 20,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(100), resp.TotalClicks)
	require.Equal(t, int64(10), resp.Duration)

	l := f.ledger(t, "alice")
	require.Equal(t, uint64(100), l.TotalClicks)
	require.Equal(t, int64(10), l.LastSessionEnd)
	require.Nil(t, l.ActiveSession)
	require.Equal(t, uint64(1), l.SessionsRevealed)

	s := f.session(t, id)
	require.True(t, s.Revealed)
	require.False(t, s.Cancelled)
	require.Equal(t, uint32(100), s.ActualClicks)
	require.Equal(t, int64(10), s.EndTime)
	require.Equal(t, types.SessionStateRevealed, s.State())

	evs := txctx.Unwrap(ctx).EventManager().Events()
	require.Len(t, evs, 1)
	require.Equal(t, types.EventTypeSessionEnded, evs[0].Type)
	require.Equal(t, "100", attr(evs[0], types.AttributeKeyTotalClicks))
	require.Equal(t, "10", attr(evs[0], types.AttributeKeyDuration))
}

func TestEndSession_DurationCap(t *testing.T) {
	f := newFixture(t)
	f.initialize(t, "alice")
	id := f.start(t, "alice", 100, 42)

	f.clock.unix = 21
	before := f.dump(t)
	_, err := f.end("alice", id, 100, 42, 20)
	require.ErrorIs(t, err, types.ErrSessionTooLong)
	require.Equal(t, before, f.dump(t))

	f.clock.unix = 20
	_, err = f.end("alice", id, 100, 42, 20)
	require.NoError(t, err)
}

func TestEndSession_CommitmentMismatch(t *testing.T) {
	f := newFixture(t)
	f.initialize(t, "alice")
	id := f.start(t, "alice", 100, 42)
	f.clock.unix = 10
	before := f.dump(t)

	for _, tc := range []struct {
		name   string
		clicks uint32
		nonce  uint64
	}{
		{name: "fewer clicks", clicks: 99, nonce: 42},
		{name: "wrong nonce", clicks: 100, nonce: 43},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.end("alice", id, tc.clicks, tc.nonce, 20)
			require.ErrorIs(t, err, types.ErrInvalidCommitment)
			require.Equal(t, before, f.dump(t))
		})
	}
}

func TestEndSession_CommitmentBoundToPlayer(t *testing.T) {
	f := newFixture(t)
	f.initialize(t, "alice")

	// A commitment computed for another identity cannot be revealed by alice.
	resp, err := f.ms.StartSession(f.ctx(), &types.MsgStartSession{
		Player:     "alice",
		Commitment: commitment.Commit(10, 1, []byte("bob")),
	})
	require.NoError(t, err)

	f.clock.unix = 5
	_, err = f.end("alice", resp.SessionID, 10, 1, 60)
	require.ErrorIs(t, err, types.ErrInvalidCommitment)
}

func TestEndSession_ZeroAndNegativeDurationAdmitOnlyZero(t *testing.T) {
	f := newFixture(t)
	f.clock.unix = 100
	f.initialize(t, "alice")
	id := f.start(t, "alice", 0, 7)

	f.clock.unix = 90
	_, err := f.end("alice", id, 1, 7, 20)
	require.ErrorIs(t, err, types.ErrUnrealisticClickRate)

	resp, err := f.end("alice", id, 0, 7, 20)
	require.NoError(t, err)
	require.Zero(t, resp.TotalClicks)
	require.Zero(t, resp.Duration)
	require.Equal(t, int64(90), f.ledger(t, "alice").LastSessionEnd)
}

func TestStartSession_OnlyOneActive(t *testing.T) {
	f := newFixture(t)
	f.initialize(t, "alice")
	id := f.start(t, "alice", 1, 1)

	before := f.dump(t)
	_, err := f.ms.StartSession(f.ctx(), &types.MsgStartSession{
		Player:     "alice",
		Commitment: commitment.Commit(2, 2, []byte("alice")),
	})
	require.ErrorIs(t, err, types.ErrSessionAlreadyActive)
	require.Equal(t, before, f.dump(t))

	// The commitment is opaque; an all-zero hash hits the same guard.
	_, err = f.ms.StartSession(f.ctx(), &types.MsgStartSession{Player: "alice"})
	require.ErrorIs(t, err, types.ErrSessionAlreadyActive)
	require.Equal(t, before, f.dump(t))

	l := f.ledger(t, "alice")
	require.True(t, l.IsActive(id))
}

func TestStartSession_ZeroCommitmentCannotBeRevealed(t *testing.T) {
	f := newFixture(t)
	f.initialize(t, "alice")

	resp, err := f.ms.StartSession(f.ctx(), &types.MsgStartSession{Player: "alice", Commitment: commitment.Hash{}})
	require.NoError(t, err)

	f.clock.unix = 10
	_, err = f.end("alice", resp.SessionID, 0, 0, 20)
	require.ErrorIs(t, err, types.ErrInvalidCommitment)

	_, err = f.ms.CancelSession(f.ctx(), &types.MsgCancelSession{Player: "alice", SessionID: resp.SessionID})
	require.NoError(t, err)
	require.True(t, f.ledger(t, "alice").Idle())
}

func TestStartSession_RejectsMissingLedgerAndForeignPlayer(t *testing.T) {
	f := newFixture(t)
	c := commitment.Commit(1, 1, []byte("bob"))

	_, err := f.ms.StartSession(f.ctx(), &types.MsgStartSession{Player: "bob", Commitment: c})
	require.ErrorIs(t, err, types.ErrLedgerNotFound)

	f.initialize(t, "alice")
	_, err = f.ms.StartSession(f.ctx(), &types.MsgStartSession{Player: "bob", Ledger: "alice", Commitment: c})
	require.ErrorIs(t, err, types.ErrInvalidPlayer)

	_, err = f.ms.StartSession(f.ctx(), &types.MsgStartSession{Ledger: "alice", Commitment: c})
	require.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestFinalize_TerminalSessionRejectsSecondAttempt(t *testing.T) {
	f := newFixture(t)
	f.initialize(t, "alice")
	id := f.start(t, "alice", 30, 9)
	f.clock.unix = 3

	_, err := f.end("alice", id, 30, 9, 60)
	require.NoError(t, err)
	before := f.dump(t)

	_, err = f.end("alice", id, 30, 9, 60)
	require.ErrorIs(t, err, types.ErrSessionAlreadyRevealed)

	_, err = f.ms.CancelSession(f.ctx(), &types.MsgCancelSession{Player: "alice", SessionID: id})
	require.ErrorIs(t, err, types.ErrSessionAlreadyRevealed)

	require.Equal(t, before, f.dump(t))
	require.Equal(t, uint64(30), f.ledger(t, "alice").TotalClicks)
}

func TestCancelSession_ClosesWithoutCredit(t *testing.T) {
	f := newFixture(t)
	f.clock.unix = 50
	f.initialize(t, "alice")
	id := f.start(t, "alice", 500, 1)

	f.clock.unix = 80
	ctx := f.ctx()
	_, err := f.ms.CancelSession(ctx, &types.MsgCancelSession{Player: "alice", SessionID: id})
	require.NoError(t, err)

	l := f.ledger(t, "alice")
	require.Zero(t, l.TotalClicks)
	require.Equal(t, int64(50), l.LastSessionEnd, "cancel must not move lastSessionEnd")
	require.True(t, l.Idle())
	require.Equal(t, uint64(1), l.SessionsCancelled)

	s := f.session(t, id)
	require.True(t, s.Revealed)
	require.True(t, s.Cancelled)
	require.Zero(t, s.ActualClicks)
	require.Equal(t, int64(80), s.EndTime)
	require.Equal(t, types.SessionStateCancelled, s.State())

	evs := txctx.Unwrap(ctx).EventManager().Events()
	require.Len(t, evs, 1)
	require.Equal(t, types.EventTypeSessionCancelled, evs[0].Type)

	_, err = f.ms.CancelSession(f.ctx(), &types.MsgCancelSession{Player: "alice", SessionID: id})
	require.ErrorIs(t, err, types.ErrSessionAlreadyRevealed)

	next := f.start(t, "alice", 1, 2)
	require.Equal(t, id+1, next)
}

func TestFinalize_RejectsWrongPlayerAndSession(t *testing.T) {
	f := newFixture(t)
	f.initialize(t, "alice")
	f.initialize(t, "bob")
	aliceID := f.start(t, "alice", 10, 1)
	bobID := f.start(t, "bob", 10, 1)
	f.clock.unix = 5
	before := f.dump(t)

	_, err := f.ms.EndSession(f.ctx(), &types.MsgEndSession{
		Player: "bob", Ledger: "alice", SessionID: aliceID, Clicks: 10, Nonce: 1, MaxSessionDuration: 60,
	})
	require.ErrorIs(t, err, types.ErrInvalidPlayer)

	_, err = f.ms.CancelSession(f.ctx(), &types.MsgCancelSession{Player: "bob", Ledger: "alice", SessionID: aliceID})
	require.ErrorIs(t, err, types.ErrInvalidPlayer)

	_, err = f.end("alice", bobID, 10, 1, 60)
	require.ErrorIs(t, err, types.ErrInvalidSession)

	_, err = f.end("alice", 99, 10, 1, 60)
	require.ErrorIs(t, err, types.ErrInvalidSession)

	_, err = f.ms.CancelSession(f.ctx(), &types.MsgCancelSession{Player: "alice", SessionID: 0})
	require.ErrorIs(t, err, types.ErrInvalidSession)

	_, err = f.end("carol", 1, 10, 1, 60)
	require.ErrorIs(t, err, types.ErrLedgerNotFound)

	require.Equal(t, before, f.dump(t))
}

func TestEndSession_TotalClicksOverflow(t *testing.T) {
	f := newFixture(t)
	active := uint64(1)
	require.NoError(t, f.k.InitGenesis(f.ctx(), &types.GenesisState{
		NextSessionID: 2,
		Ledgers: []types.Ledger{{
			Owner:         "alice",
			TotalClicks:   math.MaxUint64 - 5,
			ActiveSession: &active,
		}},
		Sessions: []types.Session{{
			ID:         1,
			Owner:      "alice",
			Ledger:     "alice",
			Commitment: commitment.Commit(10, 3, []byte("alice")),
		}},
	}))

	f.clock.unix = 10
	before := f.dump(t)
	_, err := f.end("alice", 1, 10, 3, 60)
	require.ErrorIs(t, err, types.ErrArithmeticOverflow)
	require.Equal(t, before, f.dump(t))
}

func TestTotalClicks_AccumulateAcrossSessions(t *testing.T) {
	f := newFixture(t)
	f.initialize(t, "alice")

	var want uint64
	for i, clicks := range []uint32{5, 0, 40} {
		id := f.start(t, "alice", clicks, uint64(i))
		f.clock.unix += 10
		_, err := f.end("alice", id, clicks, uint64(i), 10)
		require.NoError(t, err)
		want += uint64(clicks)
		require.Equal(t, want, f.ledger(t, "alice").TotalClicks)
	}
	require.Equal(t, uint64(3), f.ledger(t, "alice").SessionsRevealed)
}
