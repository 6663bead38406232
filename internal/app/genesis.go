package app

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"sessionclicker/x/clicker/types"
)

type GenesisAccount struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
	// Nonce is the last accepted tx.nonce; envelopes at or below it stay replayed.
	Nonce uint64 `json:"nonce,omitempty"`
}

// AppGenesis is the app_state document of the CometBFT genesis file.
type AppGenesis struct {
	Accounts []GenesisAccount    `json:"accounts,omitempty"`
	Clicker  *types.GenesisState `json:"clicker,omitempty"`
}

func DefaultAppGenesis() *AppGenesis {
	return &AppGenesis{Clicker: types.DefaultGenesisState()}
}

func (a *SCDApp) initGenesis(ctx context.Context, appState []byte) error {
	gen := DefaultAppGenesis()
	if len(bytes.TrimSpace(appState)) > 0 {
		if err := json.Unmarshal(appState, gen); err != nil {
			return fmt.Errorf("decode app state: %w", err)
		}
	}

	seen := map[string]bool{}
	for _, acc := range gen.Accounts {
		if acc.Account == "" {
			return fmt.Errorf("genesis account missing address")
		}
		if seen[acc.Account] {
			return fmt.Errorf("duplicate genesis account %q", acc.Account)
		}
		seen[acc.Account] = true
		if len(acc.PubKey) != ed25519.PublicKeySize {
			return fmt.Errorf("genesis account %q: pubKey must be %d bytes", acc.Account, ed25519.PublicKeySize)
		}
		if err := a.accounts.SetPubKey(ctx, acc.Account, acc.PubKey); err != nil {
			return err
		}
		if acc.Nonce > 0 {
			if err := a.accounts.SetNonceMax(ctx, acc.Account, acc.Nonce); err != nil {
				return err
			}
		}
	}

	return a.clicker.InitGenesis(ctx, gen.Clicker)
}

func (a *SCDApp) exportGenesis(ctx context.Context) (*AppGenesis, error) {
	gen := &AppGenesis{}
	err := a.accounts.IterateAccounts(ctx, func(addr string, pub []byte) bool {
		gen.Accounts = append(gen.Accounts, GenesisAccount{Account: addr, PubKey: pub})
		return false
	})
	if err != nil {
		return nil, err
	}
	for i := range gen.Accounts {
		gen.Accounts[i].Nonce, err = a.accounts.NonceMax(ctx, gen.Accounts[i].Account)
		if err != nil {
			return nil, err
		}
	}
	gen.Clicker, err = a.clicker.ExportGenesis(ctx)
	if err != nil {
		return nil, err
	}
	return gen, nil
}
