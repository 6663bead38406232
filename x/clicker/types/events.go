package types

const (
	EventTypeLedgerInitialized = "LedgerInitialized"
	EventTypeSessionStarted    = "SessionStarted"
	EventTypeSessionEnded      = "SessionEnded"
	EventTypeSessionCancelled  = "SessionCancelled"

	AttributeKeyPlayer         = "player"
	AttributeKeyLedger         = "ledger"
	AttributeKeySessionID      = "sessionId"
	AttributeKeyCommitment     = "commitment"
	AttributeKeyStartTime      = "startTime"
	AttributeKeyEndTime        = "endTime"
	AttributeKeyClicks         = "clicks"
	AttributeKeyTotalClicks    = "totalClicks"
	AttributeKeyDuration       = "duration"
	AttributeKeyLastSessionEnd = "lastSessionEnd"
)
