package types

import (
	"context"

	"sessionclicker/internal/commitment"
)

type MsgInitialize struct {
	Player string
}

type MsgInitializeResponse struct {
	LastSessionEnd int64 `json:"lastSessionEnd"`
}

type MsgStartSession struct {
	Player     string
	Ledger     string
	Commitment commitment.Hash
}

type MsgStartSessionResponse struct {
	SessionID uint64 `json:"sessionId"`
	StartTime int64  `json:"startTime"`
}

type MsgEndSession struct {
	Player             string
	Ledger             string
	SessionID          uint64
	Clicks             uint32
	Nonce              uint64
	MaxSessionDuration int64
}

type MsgEndSessionResponse struct {
	TotalClicks uint64 `json:"totalClicks"`
	Duration    int64  `json:"duration"`
}

type MsgCancelSession struct {
	Player    string
	Ledger    string
	SessionID uint64
}

type MsgCancelSessionResponse struct{}

// ledgerOrPlayer resolves the target ledger; a player's own ledger is the default.
func ledgerOrPlayer(ledger, player string) string {
	if ledger == "" {
		return player
	}
	return ledger
}

func (m *MsgInitialize) ValidateBasic() error {
	if m == nil {
		return ErrInvalidRequest.Wrap("nil request")
	}
	if m.Player == "" {
		return ErrInvalidRequest.Wrap("missing player")
	}
	return nil
}

func (m *MsgStartSession) TargetLedger() string {
	return ledgerOrPlayer(m.Ledger, m.Player)
}

func (m *MsgStartSession) ValidateBasic() error {
	if m == nil {
		return ErrInvalidRequest.Wrap("nil request")
	}
	if m.Player == "" {
		return ErrInvalidRequest.Wrap("missing player")
	}
	return nil
}

func (m *MsgEndSession) TargetLedger() string {
	return ledgerOrPlayer(m.Ledger, m.Player)
}

func (m *MsgEndSession) ValidateBasic() error {
	if m == nil {
		return ErrInvalidRequest.Wrap("nil request")
	}
	if m.Player == "" {
		return ErrInvalidRequest.Wrap("missing player")
	}
	return nil
}

func (m *MsgCancelSession) TargetLedger() string {
	return ledgerOrPlayer(m.Ledger, m.Player)
}

func (m *MsgCancelSession) ValidateBasic() error {
	if m == nil {
		return ErrInvalidRequest.Wrap("nil request")
	}
	if m.Player == "" {
		return ErrInvalidRequest.Wrap("missing player")
	}
	return nil
}

// MsgServer is the set of state-changing operations of the module.
type MsgServer interface {
	Initialize(ctx context.Context, req *MsgInitialize) (*MsgInitializeResponse, error)
	StartSession(ctx context.Context, req *MsgStartSession) (*MsgStartSessionResponse, error)
	EndSession(ctx context.Context, req *MsgEndSession) (*MsgEndSessionResponse, error)
	CancelSession(ctx context.Context, req *MsgCancelSession) (*MsgCancelSessionResponse, error)
}
