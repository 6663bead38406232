package types

import (
	"sessionclicker/internal/commitment"
)

// Ledger is the per-player aggregate of cumulative clicks.
type Ledger struct {
	Owner          string `json:"owner"`
	TotalClicks    uint64 `json:"totalClicks"`
	LastSessionEnd int64  `json:"lastSessionEnd"`

	// ActiveSession is the id of the open session, nil when idle.
	ActiveSession *uint64 `json:"activeSession,omitempty"`

	SessionsRevealed  uint64 `json:"sessionsRevealed"`
	SessionsCancelled uint64 `json:"sessionsCancelled"`
}

func (l *Ledger) Idle() bool {
	return l.ActiveSession == nil
}

// IsActive reports whether sessionID is the ledger's open session.
func (l *Ledger) IsActive(sessionID uint64) bool {
	return l.ActiveSession != nil && *l.ActiveSession == sessionID
}

type SessionState string

const (
	SessionStateActive    SessionState = "active"
	SessionStateRevealed  SessionState = "revealed"
	SessionStateCancelled SessionState = "cancelled"
)

// Session is one bounded attempt, from commitment to reveal or cancellation.
type Session struct {
	ID         uint64          `json:"id"`
	Owner      string          `json:"owner"`
	Ledger     string          `json:"ledger"`
	Commitment commitment.Hash `json:"commitment"`
	StartTime  int64           `json:"startTime"`
	EndTime    int64           `json:"endTime,omitempty"`

	// Revealed is terminal: set by EndSession and by CancelSession.
	Revealed     bool   `json:"revealed"`
	Cancelled    bool   `json:"cancelled,omitempty"`
	ActualClicks uint32 `json:"actualClicks"`
}

func (s *Session) State() SessionState {
	switch {
	case !s.Revealed:
		return SessionStateActive
	case s.Cancelled:
		return SessionStateCancelled
	default:
		return SessionStateRevealed
	}
}
