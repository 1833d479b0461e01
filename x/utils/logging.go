package utils

import (
	"time"

	"github.com/iov-one/vault"
)

// Logging logs every processed transaction with its message path and the
// processing time. Failures are logged as errors, successful deliveries
// as info and successful checks as debug.
type Logging struct{}

var _ vault.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Checker) (*vault.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	entry := logEntry{tx: tx, start: start, err: err, debug: true}
	if err == nil {
		entry.msg = res.Log
	}
	entry.write(ctx)
	return res, err
}

func (Logging) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Deliverer) (*vault.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	entry := logEntry{tx: tx, start: start, err: err}
	if err == nil {
		entry.msg = res.Log
	}
	entry.write(ctx)
	return res, err
}

type logEntry struct {
	tx    vault.Tx
	start time.Time
	msg   string
	err   error
	debug bool
}

func (e logEntry) write(ctx vault.Context) {
	logger := vault.GetLogger(ctx).With(
		"path", vault.GetPath(e.tx),
		"duration", time.Since(e.start)/time.Microsecond,
	)
	switch {
	case e.err != nil:
		logger.Error(e.msg, "err", e.err)
	case e.debug:
		logger.Debug(e.msg)
	default:
		logger.Info(e.msg)
	}
}
