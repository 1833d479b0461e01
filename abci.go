package vault

import (
	"github.com/iov-one/vault/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// DeliverResult is the outcome of a successful transaction delivery.
// Failures are always returned as errors.
type DeliverResult struct {
	// Data is a machine readable return value, for example an ID of a
	// created entity.
	Data []byte
	Log  string
	// Tags are indexed by tendermint and allow searching transactions.
	Tags    []common.KVPair
	GasUsed int64
}

func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    d.Tags,
		GasUsed: d.GasUsed,
	}
}

// CheckResult is the outcome of a successful transaction check.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is the amount of work the transaction is allowed to do.
	GasAllocated int64
	// GasPayment sums everything the transaction pays with, fees included.
	GasPayment int64
}

func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverOrError returns the abci representation of the result or of the
// error if not nil.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err == nil {
		return result.ToABCI()
	}
	return DeliverTxError(err, debug)
}

// CheckOrError returns the abci representation of the result or of the
// error if not nil.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err == nil {
		return result.ToABCI()
	}
	return CheckTxError(err, debug)
}

// DeliverTxError converts an error into a delivery response. Internal
// error details are exposed in debug mode only.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := errorInfo("deliver", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

// CheckTxError converts an error into a check response. Internal error
// details are exposed in debug mode only.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := errorInfo("check", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

func errorInfo(phase string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code == errors.SuccessABCICode {
		return code, log
	}
	return code, "cannot " + phase + " tx: " + log
}
