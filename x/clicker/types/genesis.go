package types

import "fmt"

type GenesisState struct {
	NextSessionID uint64    `json:"nextSessionId"`
	Ledgers       []Ledger  `json:"ledgers"`
	Sessions      []Session `json:"sessions"`
}

func DefaultGenesisState() *GenesisState {
	return &GenesisState{
		NextSessionID: 1,
		Ledgers:       nil,
		Sessions:      nil,
	}
}

func ValidateGenesis(gs *GenesisState) error {
	if gs == nil {
		return fmt.Errorf("genesis state is nil")
	}
	if gs.NextSessionID == 0 {
		return fmt.Errorf("next_session_id must be > 0")
	}

	sessions := make(map[uint64]*Session, len(gs.Sessions))
	for i := range gs.Sessions {
		s := &gs.Sessions[i]
		if s.ID == 0 {
			return fmt.Errorf("session id must be > 0")
		}
		if _, dup := sessions[s.ID]; dup {
			return fmt.Errorf("duplicate session id %d", s.ID)
		}
		if s.ID >= gs.NextSessionID {
			return fmt.Errorf("session id %d >= next_session_id %d", s.ID, gs.NextSessionID)
		}
		if s.Owner == "" || s.Ledger == "" {
			return fmt.Errorf("session %d missing owner/ledger", s.ID)
		}
		if s.Owner != s.Ledger {
			return fmt.Errorf("session %d owner %q differs from ledger %q", s.ID, s.Owner, s.Ledger)
		}
		if s.Cancelled && !s.Revealed {
			return fmt.Errorf("session %d cancelled but not revealed", s.ID)
		}
		sessions[s.ID] = s
	}

	ledgers := make(map[string]bool, len(gs.Ledgers))
	for i := range gs.Ledgers {
		l := &gs.Ledgers[i]
		if l.Owner == "" {
			return fmt.Errorf("ledger owner must be set")
		}
		if ledgers[l.Owner] {
			return fmt.Errorf("duplicate ledger %q", l.Owner)
		}
		ledgers[l.Owner] = true

		if l.ActiveSession == nil {
			continue
		}
		s := sessions[*l.ActiveSession]
		if s == nil {
			return fmt.Errorf("ledger %q active session %d not found", l.Owner, *l.ActiveSession)
		}
		if s.Ledger != l.Owner || s.Owner != l.Owner {
			return fmt.Errorf("ledger %q active session %d belongs to %q", l.Owner, s.ID, s.Ledger)
		}
		if s.Revealed {
			return fmt.Errorf("ledger %q active session %d already revealed", l.Owner, s.ID)
		}
	}

	active := make(map[uint64]bool, len(gs.Ledgers))
	for i := range gs.Ledgers {
		if id := gs.Ledgers[i].ActiveSession; id != nil {
			active[*id] = true
		}
	}
	for _, s := range sessions {
		if !ledgers[s.Ledger] {
			return fmt.Errorf("session %d references unknown ledger %q", s.ID, s.Ledger)
		}
		if !s.Revealed && !active[s.ID] {
			return fmt.Errorf("session %d is open but not active on ledger %q", s.ID, s.Ledger)
		}
	}
	return nil
}
