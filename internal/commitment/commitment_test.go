package commitment

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommit_MatchesLayout(t *testing.T) {
	player := []byte("alice")

	want := make([]byte, 0, 4+8+len(player))
	want = binary.LittleEndian.AppendUint32(want, 100)
	want = binary.LittleEndian.AppendUint64(want, 7)
	want = append(want, player...)

	require.Equal(t, want, Preimage(100, 7, player))
	require.Equal(t, Hash(sha256.Sum256(want)), Commit(100, 7, player))
}

func TestVerify_RoundTrip(t *testing.T) {
	cases := []struct {
		clicks uint32
		nonce  uint64
		player []byte
	}{
		{0, 0, []byte("p")},
		{100, 7, []byte("alice")},
		{^uint32(0), ^uint64(0), []byte("bob")},
		{42, 1, nil},
	}
	for _, tc := range cases {
		h := Commit(tc.clicks, tc.nonce, tc.player)
		require.True(t, Verify(h, tc.clicks, tc.nonce, tc.player))
	}
}

func TestVerify_AnyChangedInputFails(t *testing.T) {
	player := []byte("alice")
	h := Commit(100, 7, player)

	require.False(t, Verify(h, 101, 7, player))
	require.False(t, Verify(h, 100, 8, player))
	require.False(t, Verify(h, 100, 7, []byte("alicf")))
	require.False(t, Verify(h, 100, 7, []byte("bob")))

	for i := range h {
		flipped := h
		flipped[i] ^= 0x01
		require.False(t, Verify(flipped, 100, 7, player), "byte %d", i)
	}
}

func TestVerify_BindsPlayer(t *testing.T) {
	h := Commit(10, 99, []byte("alice"))
	require.False(t, Verify(h, 10, 99, []byte("mallory")))
}

func TestParseHash(t *testing.T) {
	h := Commit(5, 5, []byte("x"))

	got, err := ParseHash(h.String())
	require.NoError(t, err)
	require.Equal(t, h, got)

	got, err = ParseHash(h.String()[2:])
	require.NoError(t, err)
	require.Equal(t, h, got)

	_, err = ParseHash("")
	require.Error(t, err)
	_, err = ParseHash("0xabc")
	require.ErrorContains(t, err, "odd length")
	_, err = ParseHash("0xabcd")
	require.ErrorContains(t, err, "got 2 bytes")
	_, err = ParseHash("zz")
	require.Error(t, err)
}

func TestHash_JSON(t *testing.T) {
	type rec struct {
		Commitment Hash `json:"commitment"`
	}
	in := rec{Commitment: Commit(1, 2, []byte("p"))}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	require.Contains(t, string(b), in.Commitment.String())

	var out rec
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, in, out)
}
