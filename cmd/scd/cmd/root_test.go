package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"sessionclicker/internal/commitment"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommitCmd_Deterministic(t *testing.T) {
	out, err := runRoot(t, "commit", "--player", "alice", "--clicks", "100", "--nonce", "42")
	require.NoError(t, err)

	var got commitOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, "alice", got.Player)
	require.Equal(t, uint32(100), got.Clicks)
	require.Equal(t, uint64(42), got.Nonce)
	require.Equal(t, commitment.Commit(100, 42, []byte("alice")), got.Commitment)
}

func TestCommitCmd_RandomNonceVerifies(t *testing.T) {
	out, err := runRoot(t, "commit", "--player", "bob", "--clicks", "7")
	require.NoError(t, err)

	var got commitOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.True(t, commitment.Verify(got.Commitment, 7, got.Nonce, []byte("bob")))
}

func TestCommitCmd_RequiresPlayer(t *testing.T) {
	_, err := runRoot(t, "commit", "--clicks", "1")
	require.ErrorContains(t, err, "--player is required")
}

func TestStartCmd_RejectsBadConfig(t *testing.T) {
	_, err := runRoot(t, "start", "--home", t.TempDir(), "--transport", "carrier-pigeon")
	require.ErrorContains(t, err, "unsupported transport")
}
