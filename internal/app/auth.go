package app

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"

	"sessionclicker/internal/codec"
	"sessionclicker/internal/store"
	"sessionclicker/internal/txctx"
)

const (
	txAuthDomainV0 = "scd/tx/v0"

	authStoreKey = "auth"
)

var (
	accountPubKeyPrefix = []byte{0x01}
	accountNoncePrefix  = []byte{0x02}
)

func txAuthSignBytesV0(typ string, value []byte, nonce string, signer string) []byte {
	// signBytes = DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || sha256(value)
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(txAuthDomainV0)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, []byte(txAuthDomainV0)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum[:]...)
	return out
}

// accounts stores registered signer keys and the last accepted nonce per signer.
type accounts struct {
	storeService store.KVStoreService
}

func newAccounts() accounts {
	return accounts{storeService: txctx.NewKVStoreService(authStoreKey)}
}

func accountKey(prefix []byte, addr string) []byte {
	return append(append([]byte(nil), prefix...), addr...)
}

// PubKey returns nil when addr has not registered.
func (a accounts) PubKey(ctx context.Context, addr string) ([]byte, error) {
	return a.storeService.OpenKVStore(ctx).Get(accountKey(accountPubKeyPrefix, addr))
}

func (a accounts) SetPubKey(ctx context.Context, addr string, pub []byte) error {
	return a.storeService.OpenKVStore(ctx).Set(accountKey(accountPubKeyPrefix, addr), pub)
}

// NonceMax is the last accepted tx.nonce of signer, 0 if none.
func (a accounts) NonceMax(ctx context.Context, signer string) (uint64, error) {
	bz, err := a.storeService.OpenKVStore(ctx).Get(accountKey(accountNoncePrefix, signer))
	if err != nil {
		return 0, err
	}
	if bz == nil {
		return 0, nil
	}
	if len(bz) != 8 {
		return 0, fmt.Errorf("invalid nonce encoding for %q", signer)
	}
	return binary.BigEndian.Uint64(bz), nil
}

func (a accounts) SetNonceMax(ctx context.Context, signer string, nonce uint64) error {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, nonce)
	return a.storeService.OpenKVStore(ctx).Set(accountKey(accountNoncePrefix, signer), bz)
}

// IterateAccounts visits registered accounts in address order.
func (a accounts) IterateAccounts(ctx context.Context, cb func(addr string, pub []byte) (stop bool)) error {
	kv := a.storeService.OpenKVStore(ctx)
	it, err := kv.Iterator(accountPubKeyPrefix, store.PrefixEndBytes(accountPubKeyPrefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		if cb(string(it.Key()[len(accountPubKeyPrefix):]), append([]byte(nil), it.Value()...)) {
			break
		}
	}
	return it.Error()
}

func requireSignedEnvelope(env codec.TxEnvelope) error {
	if env.Nonce == "" {
		return ErrUnauthorized.Wrap("missing tx.nonce")
	}
	if env.Signer == "" {
		return ErrUnauthorized.Wrap("missing tx.signer")
	}
	if len(env.Sig) == 0 {
		return ErrUnauthorized.Wrap("missing tx.sig")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return ErrUnauthorized.Wrapf("invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	return nil
}

func verifyEnvelopeSig(env codec.TxEnvelope, pub []byte) error {
	msg := txAuthSignBytesV0(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, env.Sig) {
		return ErrUnauthorized.Wrap("invalid signature")
	}
	return nil
}

func requireRegisterAccountAuth(env codec.TxEnvelope, msg codec.AuthRegisterAccountTx) error {
	if msg.Account == "" {
		return ErrUnauthorized.Wrap("missing account")
	}
	if len(msg.PubKey) != ed25519.PublicKeySize {
		return ErrUnauthorized.Wrapf("pubKey must be %d bytes", ed25519.PublicKeySize)
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != msg.Account {
		return ErrUnauthorized.Wrapf("tx signer mismatch: signer=%q want=%q", env.Signer, msg.Account)
	}
	return verifyEnvelopeSig(env, msg.PubKey)
}

func (a accounts) requireAccountAuth(ctx context.Context, env codec.TxEnvelope, account string) error {
	if account == "" {
		return ErrUnauthorized.Wrap("missing account")
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != account {
		return ErrUnauthorized.Wrapf("tx signer mismatch: signer=%q want=%q", env.Signer, account)
	}
	pub, err := a.PubKey(ctx, account)
	if err != nil {
		return err
	}
	if len(pub) != ed25519.PublicKeySize {
		return ErrUnauthorized.Wrapf("account %q missing pubKey (auth/register_account required)", account)
	}
	return verifyEnvelopeSig(env, pub)
}

// consumeNonce accepts env.Nonce only if it is above the signer's last
// accepted nonce.
func (a accounts) consumeNonce(ctx context.Context, env codec.TxEnvelope) error {
	n, err := strconv.ParseUint(env.Nonce, 10, 64)
	if err != nil {
		return ErrInvalidNonce.Wrapf("invalid tx.nonce %q", env.Nonce)
	}
	last, err := a.NonceMax(ctx, env.Signer)
	if err != nil {
		return err
	}
	if n <= last {
		return ErrInvalidNonce.Wrapf("replayed tx.nonce %d (last accepted %d)", n, last)
	}
	return a.SetNonceMax(ctx, env.Signer, n)
}
