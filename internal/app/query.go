package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"sessionclicker/internal/txctx"
	clickertypes "sessionclicker/x/clicker/types"
)

type sessionView struct {
	clickertypes.Session
	State clickertypes.SessionState `json:"state"`
}

type accountView struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey,omitempty"`
	Nonce   uint64 `json:"nonce"`
}

// Query serves committed state.
//
// Paths:
// - /ledger/<owner>
// - /session/<id>
// - /ledgers
// - /account/<addr>
// - /genesis
func (a *SCDApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	height := a.st.Height()
	ctx := txctx.Wrap(context.Background(), txctx.New(a.st.Snapshot(), height, time.Time{}, a.logger))

	v, err := a.query(ctx, strings.TrimSpace(req.Path))
	if err != nil {
		codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Code: code, Codespace: codespace, Log: logMsg, Height: height}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &abci.QueryResponse{Code: 0, Value: b, Height: height}, nil
}

func (a *SCDApp) query(ctx context.Context, path string) (any, error) {
	switch {
	case path == "/ledgers":
		return a.clicker.Ledgers(ctx)

	case path == "/genesis":
		return a.exportGenesis(ctx)

	case strings.HasPrefix(path, "/ledger/"):
		return a.clicker.Ledger(ctx, strings.TrimPrefix(path, "/ledger/"))

	case strings.HasPrefix(path, "/session/"):
		raw := strings.TrimPrefix(path, "/session/")
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, ErrUnknownRequest.Wrapf("invalid session id %q", raw)
		}
		s, err := a.clicker.Session(ctx, id)
		if err != nil {
			return nil, err
		}
		return sessionView{Session: *s, State: s.State()}, nil

	case strings.HasPrefix(path, "/account/"):
		addr := strings.TrimPrefix(path, "/account/")
		pub, err := a.accounts.PubKey(ctx, addr)
		if err != nil {
			return nil, err
		}
		nonce, err := a.accounts.NonceMax(ctx, addr)
		if err != nil {
			return nil, err
		}
		return accountView{Account: addr, PubKey: pub, Nonce: nonce}, nil

	default:
		return nil, ErrUnknownRequest.Wrapf("unknown query path %q", path)
	}
}
