// Package txctx carries the per-transaction execution environment (store
// branch, block header data, event sink and logger) through a context.Context.
package txctx

import (
	"context"
	"time"

	"cosmossdk.io/log"

	"sessionclicker/internal/store"
)

type contextKey struct{}

// Context is the execution environment of one transaction.
type Context struct {
	kv        store.KVStore
	height    int64
	blockTime time.Time
	events    *EventManager
	logger    log.Logger
}

func New(kv store.KVStore, height int64, blockTime time.Time, logger log.Logger) Context {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return Context{
		kv:        kv,
		height:    height,
		blockTime: blockTime,
		events:    NewEventManager(),
		logger:    logger,
	}
}

func (c Context) Store() store.KVStore        { return c.kv }
func (c Context) Height() int64               { return c.height }
func (c Context) BlockTime() time.Time        { return c.blockTime }
func (c Context) EventManager() *EventManager { return c.events }
func (c Context) Logger() log.Logger          { return c.logger }

// Wrap attaches c to parent.
func Wrap(parent context.Context, c Context) context.Context {
	return context.WithValue(parent, contextKey{}, c)
}

// Unwrap returns the Context attached by Wrap. It panics when none is present:
// keeper code only ever runs under a wrapped context.
func Unwrap(ctx context.Context) Context {
	c, ok := ctx.Value(contextKey{}).(Context)
	if !ok {
		panic("txctx: context carries no transaction environment")
	}
	return c
}
