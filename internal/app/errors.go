package app

import errorsmod "cosmossdk.io/errors"

// Codespace of the envelope and routing errors raised before a module runs.
const Codespace = "scd"

var (
	ErrTxDecode       = errorsmod.Register(Codespace, 1, "tx decode error")
	ErrUnauthorized   = errorsmod.Register(Codespace, 2, "unauthorized")
	ErrInvalidNonce   = errorsmod.Register(Codespace, 3, "invalid nonce")
	ErrUnknownRequest = errorsmod.Register(Codespace, 4, "unknown request")
)
