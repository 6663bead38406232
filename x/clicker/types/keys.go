package types

import "encoding/binary"

const (
	// ModuleName defines the module name.
	ModuleName = "clicker"

	// StoreKey defines the module store prefix.
	StoreKey = ModuleName
)

var (
	// NextSessionIDKey stores the next session id as big-endian u64.
	NextSessionIDKey = []byte{0x01}

	// LedgerKeyPrefix stores Ledger by owner: LedgerKeyPrefix || owner.
	LedgerKeyPrefix = []byte{0x02}

	// SessionKeyPrefix stores Session by id: SessionKeyPrefix || u64be(sessionID).
	SessionKeyPrefix = []byte{0x03}
)

func LedgerKey(owner string) []byte {
	bz := make([]byte, 0, 1+len(owner))
	bz = append(bz, LedgerKeyPrefix[0])
	return append(bz, owner...)
}

func SessionKey(sessionID uint64) []byte {
	bz := make([]byte, 1+8)
	bz[0] = SessionKeyPrefix[0]
	binary.BigEndian.PutUint64(bz[1:], sessionID)
	return bz
}
