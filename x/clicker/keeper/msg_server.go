package keeper

import (
	"context"
	"fmt"

	"sessionclicker/internal/commitment"
	"sessionclicker/internal/txctx"
	"sessionclicker/x/clicker/policy"
	"sessionclicker/x/clicker/types"
)

type msgServer struct {
	Keeper
}

var _ types.MsgServer = msgServer{}

func NewMsgServerImpl(k Keeper) types.MsgServer {
	return &msgServer{Keeper: k}
}

func (m msgServer) Initialize(ctx context.Context, req *types.MsgInitialize) (*types.MsgInitializeResponse, error) {
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}

	existing, err := m.GetLedger(ctx, req.Player)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, types.ErrLedgerAlreadyExists.Wrapf("player %q", req.Player)
	}

	now := m.now(ctx)
	l := &types.Ledger{
		Owner:          req.Player,
		TotalClicks:    0,
		LastSessionEnd: now,
		ActiveSession:  nil,
	}
	if err := m.SetLedger(ctx, l); err != nil {
		return nil, err
	}

	txctx.Unwrap(ctx).EventManager().EmitEvent(txctx.NewEvent(
		types.EventTypeLedgerInitialized,
		txctx.NewAttribute(types.AttributeKeyPlayer, req.Player),
		txctx.NewAttribute(types.AttributeKeyLastSessionEnd, fmt.Sprintf("%d", now)),
	))

	return &types.MsgInitializeResponse{LastSessionEnd: now}, nil
}

func (m msgServer) StartSession(ctx context.Context, req *types.MsgStartSession) (*types.MsgStartSessionResponse, error) {
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}

	l, err := m.ownedLedger(ctx, req.Player, req.TargetLedger())
	if err != nil {
		return nil, err
	}
	if !l.Idle() {
		return nil, types.ErrSessionAlreadyActive.Wrapf("ledger %q has open session %d", l.Owner, *l.ActiveSession)
	}

	id, err := m.GetNextSessionID(ctx)
	if err != nil {
		return nil, err
	}
	if id == ^uint64(0) {
		return nil, types.ErrArithmeticOverflow.Wrap("session id space exhausted")
	}
	if existing, err := m.GetSession(ctx, id); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("session %d already exists", id)
	}

	now := m.now(ctx)
	s := &types.Session{
		ID:         id,
		Owner:      req.Player,
		Ledger:     l.Owner,
		Commitment: req.Commitment,
		StartTime:  now,
		Revealed:   false,
	}
	if err := m.SetSession(ctx, s); err != nil {
		return nil, err
	}
	if err := m.SetNextSessionID(ctx, id+1); err != nil {
		return nil, err
	}
	l.ActiveSession = &id
	if err := m.SetLedger(ctx, l); err != nil {
		return nil, err
	}

	m.Logger(ctx).Debug("session started", "player", req.Player, "session", id)
	txctx.Unwrap(ctx).EventManager().EmitEvent(txctx.NewEvent(
		types.EventTypeSessionStarted,
		txctx.NewAttribute(types.AttributeKeyPlayer, req.Player),
		txctx.NewAttribute(types.AttributeKeyLedger, l.Owner),
		txctx.NewAttribute(types.AttributeKeySessionID, fmt.Sprintf("%d", id)),
		txctx.NewAttribute(types.AttributeKeyCommitment, req.Commitment.String()),
		txctx.NewAttribute(types.AttributeKeyStartTime, fmt.Sprintf("%d", now)),
	))

	return &types.MsgStartSessionResponse{SessionID: id, StartTime: now}, nil
}

func (m msgServer) EndSession(ctx context.Context, req *types.MsgEndSession) (*types.MsgEndSessionResponse, error) {
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}

	l, s, err := m.activeSession(ctx, req.Player, req.TargetLedger(), req.SessionID)
	if err != nil {
		return nil, err
	}

	now := m.now(ctx)
	if err := policy.Evaluate(s.StartTime, now, req.MaxSessionDuration, req.Clicks); err != nil {
		return nil, err
	}
	if !commitment.Verify(s.Commitment, req.Clicks, req.Nonce, []byte(req.Player)) {
		return nil, types.ErrInvalidCommitment.Wrapf("session %d: reveal does not match commitment", s.ID)
	}

	if err := m.applyReveal(ctx, l, s, req.Clicks, now); err != nil {
		return nil, err
	}

	duration := policy.SessionDuration(s.StartTime, now)
	m.Logger(ctx).Debug("session ended", "player", req.Player, "session", s.ID, "clicks", req.Clicks)
	txctx.Unwrap(ctx).EventManager().EmitEvent(txctx.NewEvent(
		types.EventTypeSessionEnded,
		txctx.NewAttribute(types.AttributeKeyPlayer, req.Player),
		txctx.NewAttribute(types.AttributeKeyLedger, l.Owner),
		txctx.NewAttribute(types.AttributeKeySessionID, fmt.Sprintf("%d", s.ID)),
		txctx.NewAttribute(types.AttributeKeyClicks, fmt.Sprintf("%d", req.Clicks)),
		txctx.NewAttribute(types.AttributeKeyTotalClicks, fmt.Sprintf("%d", l.TotalClicks)),
		txctx.NewAttribute(types.AttributeKeyDuration, fmt.Sprintf("%d", duration)),
		txctx.NewAttribute(types.AttributeKeyEndTime, fmt.Sprintf("%d", now)),
	))

	return &types.MsgEndSessionResponse{TotalClicks: l.TotalClicks, Duration: duration}, nil
}

func (m msgServer) CancelSession(ctx context.Context, req *types.MsgCancelSession) (*types.MsgCancelSessionResponse, error) {
	if err := req.ValidateBasic(); err != nil {
		return nil, err
	}

	l, s, err := m.activeSession(ctx, req.Player, req.TargetLedger(), req.SessionID)
	if err != nil {
		return nil, err
	}

	now := m.now(ctx)
	if err := m.applyCancel(ctx, l, s, now); err != nil {
		return nil, err
	}

	m.Logger(ctx).Debug("session cancelled", "player", req.Player, "session", s.ID)
	txctx.Unwrap(ctx).EventManager().EmitEvent(txctx.NewEvent(
		types.EventTypeSessionCancelled,
		txctx.NewAttribute(types.AttributeKeyPlayer, req.Player),
		txctx.NewAttribute(types.AttributeKeyLedger, l.Owner),
		txctx.NewAttribute(types.AttributeKeySessionID, fmt.Sprintf("%d", s.ID)),
		txctx.NewAttribute(types.AttributeKeyEndTime, fmt.Sprintf("%d", now)),
	))

	return &types.MsgCancelSessionResponse{}, nil
}

// ownedLedger loads the ledger and checks the caller owns it.
func (m msgServer) ownedLedger(ctx context.Context, player, owner string) (*types.Ledger, error) {
	l, err := m.GetLedger(ctx, owner)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, types.ErrLedgerNotFound.Wrapf("ledger %q", owner)
	}
	if l.Owner != player {
		return nil, types.ErrInvalidPlayer.Wrapf("player %q does not own ledger %q", player, l.Owner)
	}
	return l, nil
}

// activeSession resolves the session a reveal or cancel targets. A terminal
// session reports ErrSessionAlreadyRevealed even though it is no longer the
// ledger's active one.
func (m msgServer) activeSession(ctx context.Context, player, owner string, sessionID uint64) (*types.Ledger, *types.Session, error) {
	l, err := m.ownedLedger(ctx, player, owner)
	if err != nil {
		return nil, nil, err
	}

	s, err := m.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if s == nil || s.Ledger != l.Owner {
		return nil, nil, types.ErrInvalidSession.Wrapf("session %d is not a session of ledger %q", sessionID, l.Owner)
	}
	if s.Revealed {
		return nil, nil, types.ErrSessionAlreadyRevealed.Wrapf("session %d is %s", s.ID, s.State())
	}
	if !l.IsActive(s.ID) {
		return nil, nil, types.ErrInvalidSession.Wrapf("session %d is not the active session of ledger %q", s.ID, l.Owner)
	}
	return l, s, nil
}
