package utils

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// Recovery fails a transaction that panicked with ErrPanic and logs the
// panic together with the message path. A node keeps processing blocks.
// Writes below a Savepoint are dropped with the panicking transaction.
type Recovery struct{}

var _ vault.Decorator = Recovery{}

func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Checker) (res *vault.CheckResult, err error) {
	defer recovered(ctx, tx, &err)
	return next.Check(ctx, db, tx)
}

func (Recovery) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Deliverer) (res *vault.DeliverResult, err error) {
	defer recovered(ctx, tx, &err)
	return next.Deliver(ctx, db, tx)
}

// recovered must be deferred directly, otherwise recover returns nil.
func recovered(ctx vault.Context, tx vault.Tx, err *error) {
	r := recover()
	if r == nil {
		return
	}
	*err = errors.Wrapf(errors.ErrPanic, "%v", r)
	path := "(missing)"
	if tx != nil {
		path = vault.GetPath(tx)
	}
	vault.GetLogger(ctx).Error("transaction panicked", "path", path, "panic", r)
}
