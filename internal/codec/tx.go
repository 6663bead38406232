package codec

import (
	"encoding/json"
	"fmt"

	"sessionclicker/internal/commitment"
)

// TxEnvelope is the transaction container.
//
// CometBFT transactions are opaque bytes; scd txs are JSON envelopes routed
// by Type.
type TxEnvelope struct {
	// Basic routing.
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Tx auth:
	// - Nonce: decimal u64, must increase per signer.
	// - Signer: account address of the signer.
	// - Sig: Ed25519 signature over (type, nonce, signer, sha256(value)).
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

const (
	TypeAuthRegisterAccount  = "auth/register_account"
	TypeClickerInitialize    = "clicker/initialize"
	TypeClickerStartSession  = "clicker/start_session"
	TypeClickerEndSession    = "clicker/end_session"
	TypeClickerCancelSession = "clicker/cancel_session"
)

// ---- Auth ----

// Account pubkey registration for tx authentication.
type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}

// ---- Clicker ----

type ClickerInitializeTx struct {
	Player string `json:"player"`
}

type ClickerStartSessionTx struct {
	Player     string          `json:"player"`
	Ledger     string          `json:"ledger,omitempty"` // defaults to player
	Commitment commitment.Hash `json:"commitment"`       // hex (32 bytes)
}

type ClickerEndSessionTx struct {
	Player             string `json:"player"`
	Ledger             string `json:"ledger,omitempty"`
	SessionID          uint64 `json:"sessionId"`
	Clicks             uint32 `json:"clicks"`
	Nonce              uint64 `json:"nonce"`
	MaxSessionDuration int64  `json:"maxSessionDuration"` // seconds
}

type ClickerCancelSessionTx struct {
	Player    string `json:"player"`
	Ledger    string `json:"ledger,omitempty"`
	SessionID uint64 `json:"sessionId"`
}
