package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"

	"sessionclicker/internal/codec"
	"sessionclicker/internal/store"
	"sessionclicker/internal/txctx"
	clickerkeeper "sessionclicker/x/clicker/keeper"
	clickertypes "sessionclicker/x/clicker/types"
)

const (
	AppVersion uint64 = 1
)

type SCDApp struct {
	*abci.BaseApplication

	logger log.Logger

	mu sync.Mutex
	st *store.Store

	accounts   accounts
	clicker    clickerkeeper.Keeper
	clickerMsg clickertypes.MsgServer

	// Height of the block being finalized; Commit persists under it.
	pendingHeight int64
}

// New opens the application database under <home>/data.
func New(home string, backend dbm.BackendType, logger log.Logger) (*SCDApp, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	st, err := store.Open(home, backend)
	if err != nil {
		return nil, err
	}

	clicker := clickerkeeper.NewKeeper(txctx.NewKVStoreService(clickertypes.StoreKey), txctx.BlockClock{})
	a := &SCDApp{
		BaseApplication: abci.NewBaseApplication(),
		logger:          logger,
		st:              st,
		accounts:        newAccounts(),
		clicker:         clicker,
		clickerMsg:      clickerkeeper.NewMsgServerImpl(clicker),
		pendingHeight:   st.Height(),
	}
	logger.Info("opened application state", "height", st.Height(), "appHash", fmt.Sprintf("%X", st.LastAppHash()))
	return a, nil
}

func (a *SCDApp) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.Close()
}

func (a *SCDApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "scd (v0)",
		Version:          "v0",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height(),
		LastBlockAppHash: a.st.LastAppHash(),
	}, nil
}

// CheckTx runs stateless validation only; signatures and nonces are checked
// at execution.
func (a *SCDApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	if err := checkTx(req.Tx); err != nil {
		codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
		return &abci.CheckTxResponse{Code: code, Codespace: codespace, Log: logMsg}, nil
	}
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *SCDApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	branch := a.st.Branch()
	ctx := txctx.Wrap(context.Background(), txctx.New(branch, req.InitialHeight, req.Time, a.logger))
	if err := a.initGenesis(ctx, req.AppStateBytes); err != nil {
		return nil, fmt.Errorf("init genesis: %w", err)
	}
	if err := branch.Write(); err != nil {
		return nil, err
	}
	appHash, err := a.st.WorkingHash()
	if err != nil {
		return nil, err
	}
	a.logger.Info("initialized chain", "chainId", req.ChainId, "appHash", fmt.Sprintf("%X", appHash))
	return &abci.InitChainResponse{AppHash: appHash}, nil
}

func (a *SCDApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pendingHeight = req.Height

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		res := a.deliverTx(txBytes, req.Height, req.Time.Unix())
		txResults = append(txResults, res)
	}

	appHash, err := a.st.WorkingHash()
	if err != nil {
		return nil, err
	}
	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   appHash,
	}, nil
}

func (a *SCDApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	appHash, err := a.st.Commit(a.pendingHeight)
	if err != nil {
		// Returning the error halts the node instead of diverging silently.
		return nil, err
	}
	a.logger.Info("committed block", "height", a.pendingHeight, "appHash", fmt.Sprintf("%X", appHash))
	return &abci.CommitResponse{}, nil
}

// deliverTx executes one tx against its own branch of the block state. The
// branch reaches the block state only when the tx succeeds.
func (a *SCDApp) deliverTx(txBytes []byte, height int64, nowUnix int64) *abci.ExecTxResult {
	branch := a.st.Branch()
	tctx := txctx.New(branch, height, time.Unix(nowUnix, 0).UTC(), a.logger)
	ctx := txctx.Wrap(context.Background(), tctx)

	data, err := a.execTx(ctx, txBytes)
	if err != nil {
		codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
		a.logger.Debug("tx rejected", "height", height, "codespace", codespace, "code", code, "err", logMsg)
		return &abci.ExecTxResult{Code: code, Codespace: codespace, Log: logMsg}
	}
	if err := branch.Write(); err != nil {
		codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
		return &abci.ExecTxResult{Code: code, Codespace: codespace, Log: logMsg}
	}
	return &abci.ExecTxResult{
		Code:   0,
		Data:   data,
		Events: tctx.EventManager().Events(),
	}
}

func (a *SCDApp) execTx(ctx context.Context, txBytes []byte) ([]byte, error) {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return nil, ErrTxDecode.Wrap(err.Error())
	}

	switch env.Type {
	case codec.TypeAuthRegisterAccount:
		var msg codec.AuthRegisterAccountTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return a.registerAccount(ctx, env, msg)

	case codec.TypeClickerInitialize,
		codec.TypeClickerStartSession,
		codec.TypeClickerEndSession,
		codec.TypeClickerCancelSession:
		return a.execClickerTx(ctx, env)

	default:
		return nil, ErrUnknownRequest.Wrapf("unknown tx type: %s", env.Type)
	}
}

func (a *SCDApp) registerAccount(ctx context.Context, env codec.TxEnvelope, msg codec.AuthRegisterAccountTx) ([]byte, error) {
	if err := requireRegisterAccountAuth(env, msg); err != nil {
		return nil, err
	}
	existing, err := a.accounts.PubKey(ctx, msg.Account)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUnauthorized.Wrapf("account %q already registered", msg.Account)
	}
	if err := a.accounts.consumeNonce(ctx, env); err != nil {
		return nil, err
	}
	if err := a.accounts.SetPubKey(ctx, msg.Account, msg.PubKey); err != nil {
		return nil, err
	}
	txctx.Unwrap(ctx).EventManager().EmitEvent(txctx.NewEvent(
		"AccountRegistered",
		txctx.NewAttribute("account", msg.Account),
	))
	return nil, nil
}

func decodeValue(env codec.TxEnvelope, v any) error {
	if err := json.Unmarshal(env.Value, v); err != nil {
		return ErrTxDecode.Wrapf("bad %s value: %v", env.Type, err)
	}
	return nil
}
