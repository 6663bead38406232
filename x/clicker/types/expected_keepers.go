package types

import (
	"context"
	"time"
)

// Clock supplies the timestamp an operation runs at. Implementations must
// return the same value for every call within one transaction.
type Clock interface {
	Now(ctx context.Context) time.Time
}
