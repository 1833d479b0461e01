package app

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp is a complete abci.Application. Transactions are decoded and
// passed to the handler, everything else is done by the StoreApp.
type BaseApp struct {
	*StoreApp
	decoder vault.TxDecoder
	handler vault.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

func NewBaseApp(store *StoreApp, decoder vault.TxDecoder, handler vault.Handler, debug bool) BaseApp {
	return BaseApp{
		StoreApp: store.WithDebug(debug),
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

func (b BaseApp) DeliverTx(raw []byte) abci.ResponseDeliverTx {
	tx, err := b.decode(raw)
	if err != nil {
		return vault.DeliverTxError(err, b.debug)
	}
	ctx := b.txContext("deliver_tx", tx)
	res, err := b.handler.Deliver(ctx, b.DeliverStore(), tx)
	return vault.DeliverOrError(res, err, b.debug)
}

func (b BaseApp) CheckTx(raw []byte) abci.ResponseCheckTx {
	tx, err := b.decode(raw)
	if err != nil {
		return vault.CheckTxError(err, b.debug)
	}
	ctx := b.txContext("check_tx", tx)
	res, err := b.handler.Check(ctx, b.CheckStore(), tx)
	return vault.CheckOrError(res, err, b.debug)
}

func (b BaseApp) txContext(call string, tx vault.Tx) vault.Context {
	return vault.WithLogInfo(b.BlockContext(), "call", call, "path", vault.GetPath(tx))
}

// decode never panics. Malformed input is reported as an error.
func (b BaseApp) decode(raw []byte) (tx vault.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(raw)
}
