package commitment

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

const HashBytes = sha256.Size

// Hash is a binding commitment over (clicks, nonce, player).
type Hash [HashBytes]byte

// Preimage returns the exact bytes that are hashed:
// le32(clicks) || le64(nonce) || player.
func Preimage(clicks uint32, nonce uint64, player []byte) []byte {
	return concatBytes(u32le(clicks), u64le(nonce), player)
}

// Commit computes the commitment a player publishes before a session starts.
func Commit(clicks uint32, nonce uint64, player []byte) Hash {
	return Hash(sha256.Sum256(Preimage(clicks, nonce, player)))
}

// Verify recomputes the commitment for the revealed values and compares it to h.
func Verify(h Hash, clicks uint32, nonce uint64, player []byte) bool {
	got := Commit(clicks, nonce, player)
	return subtle.ConstantTimeCompare(got[:], h[:]) == 1
}

func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashBytes {
		return h, fmt.Errorf("commitment: got %d bytes want %d", len(b), HashBytes)
	}
	copy(h[:], b)
	return h, nil
}

// ParseHash decodes a hex commitment; the 0x prefix is optional.
func ParseHash(s string) (Hash, error) {
	if s == "" {
		return Hash{}, fmt.Errorf("commitment: empty string")
	}
	ss := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if len(ss)%2 != 0 {
		return Hash{}, fmt.Errorf("commitment: odd length hex")
	}
	b, err := hex.DecodeString(ss)
	if err != nil {
		return Hash{}, fmt.Errorf("commitment: %w", err)
	}
	return HashFromBytes(b)
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
