// Package policy enforces the timing caps on a session reveal.
package policy

import (
	"math"

	"sessionclicker/x/clicker/types"
)

// RateLimit is the maximum number of clicks credited per second of session.
const RateLimit uint64 = 10

// SessionDuration returns end-start in seconds. A clock that moved backwards
// yields 0; the result saturates at math.MaxInt64.
func SessionDuration(start, end int64) int64 {
	if end <= start {
		return 0
	}
	// end > start, so the unsigned difference is exact.
	d := uint64(end) - uint64(start)
	if d > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(d)
}

// MaxAllowedClicks is duration*RateLimit, saturating at math.MaxUint64.
func MaxAllowedClicks(duration int64) uint64 {
	if duration <= 0 {
		return 0
	}
	d := uint64(duration)
	if d > math.MaxUint64/RateLimit {
		return math.MaxUint64
	}
	return d * RateLimit
}

// Evaluate checks a claimed click count against the duration cap, then the
// rate cap.
func Evaluate(start, end, maxSessionDuration int64, clicks uint32) error {
	duration := SessionDuration(start, end)
	if duration > maxSessionDuration {
		return types.ErrSessionTooLong.Wrapf("duration %ds exceeds max %ds", duration, maxSessionDuration)
	}
	limit := MaxAllowedClicks(duration)
	if uint64(clicks) > limit {
		return types.ErrUnrealisticClickRate.Wrapf("%d clicks in %ds exceeds limit %d", clicks, duration, limit)
	}
	return nil
}
