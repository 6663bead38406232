package types

import errorsmod "cosmossdk.io/errors"

// x/clicker sentinel errors.
var (
	ErrInvalidRequest         = errorsmod.Register(ModuleName, 1, "invalid request")
	ErrInvalidPlayer          = errorsmod.Register(ModuleName, 2, "player does not own ledger")
	ErrSessionAlreadyActive   = errorsmod.Register(ModuleName, 3, "session already active")
	ErrInvalidSession         = errorsmod.Register(ModuleName, 4, "session is not the active session")
	ErrSessionAlreadyRevealed = errorsmod.Register(ModuleName, 5, "session already revealed")
	ErrSessionTooLong         = errorsmod.Register(ModuleName, 6, "session too long")
	ErrInvalidCommitment      = errorsmod.Register(ModuleName, 7, "invalid commitment")
	ErrUnrealisticClickRate   = errorsmod.Register(ModuleName, 8, "unrealistic click rate")
	ErrLedgerNotFound         = errorsmod.Register(ModuleName, 9, "ledger not found")
	ErrLedgerAlreadyExists    = errorsmod.Register(ModuleName, 10, "ledger already initialized")
	ErrArithmeticOverflow     = errorsmod.Register(ModuleName, 11, "arithmetic overflow")
)
