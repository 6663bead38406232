package app

import (
	"context"
	"encoding/json"

	"sessionclicker/internal/codec"
	clickertypes "sessionclicker/x/clicker/types"
)

// clickerMsg is a decoded clicker tx ready for the msg server.
type clickerMsg interface {
	ValidateBasic() error
}

// decodeClickerMsg maps a clicker envelope onto its module message and the
// account that must sign it.
func decodeClickerMsg(env codec.TxEnvelope) (clickerMsg, string, error) {
	switch env.Type {
	case codec.TypeClickerInitialize:
		var tx codec.ClickerInitializeTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, "", err
		}
		return &clickertypes.MsgInitialize{Player: tx.Player}, tx.Player, nil

	case codec.TypeClickerStartSession:
		var tx codec.ClickerStartSessionTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, "", err
		}
		return &clickertypes.MsgStartSession{
			Player:     tx.Player,
			Ledger:     tx.Ledger,
			Commitment: tx.Commitment,
		}, tx.Player, nil

	case codec.TypeClickerEndSession:
		var tx codec.ClickerEndSessionTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, "", err
		}
		return &clickertypes.MsgEndSession{
			Player:             tx.Player,
			Ledger:             tx.Ledger,
			SessionID:          tx.SessionID,
			Clicks:             tx.Clicks,
			Nonce:              tx.Nonce,
			MaxSessionDuration: tx.MaxSessionDuration,
		}, tx.Player, nil

	case codec.TypeClickerCancelSession:
		var tx codec.ClickerCancelSessionTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, "", err
		}
		return &clickertypes.MsgCancelSession{
			Player:    tx.Player,
			Ledger:    tx.Ledger,
			SessionID: tx.SessionID,
		}, tx.Player, nil

	default:
		return nil, "", ErrUnknownRequest.Wrapf("unknown tx type: %s", env.Type)
	}
}

func (a *SCDApp) execClickerTx(ctx context.Context, env codec.TxEnvelope) ([]byte, error) {
	msg, signer, err := decodeClickerMsg(env)
	if err != nil {
		return nil, err
	}
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := a.accounts.requireAccountAuth(ctx, env, signer); err != nil {
		return nil, err
	}
	if err := a.accounts.consumeNonce(ctx, env); err != nil {
		return nil, err
	}

	var resp any
	switch m := msg.(type) {
	case *clickertypes.MsgInitialize:
		resp, err = a.clickerMsg.Initialize(ctx, m)
	case *clickertypes.MsgStartSession:
		resp, err = a.clickerMsg.StartSession(ctx, m)
	case *clickertypes.MsgEndSession:
		resp, err = a.clickerMsg.EndSession(ctx, m)
	case *clickertypes.MsgCancelSession:
		resp, err = a.clickerMsg.CancelSession(ctx, m)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

// checkTx is the stateless part of execTx.
func checkTx(txBytes []byte) error {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return ErrTxDecode.Wrap(err.Error())
	}
	if env.Type == codec.TypeAuthRegisterAccount {
		var msg codec.AuthRegisterAccountTx
		if err := decodeValue(env, &msg); err != nil {
			return err
		}
		return requireRegisterAccountAuth(env, msg)
	}
	msg, _, err := decodeClickerMsg(env)
	if err != nil {
		return err
	}
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	return requireSignedEnvelope(env)
}
