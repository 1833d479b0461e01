package cash

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/gconf"
	"github.com/iov-one/vault/x"
)

const sendTxCost int64 = 100

// RegisterQuery will register the wallets query under "/wallets".
func RegisterQuery(qr vault.QueryRouter) {
	NewBucket().Register("wallets", qr)
}

// RegisterRoutes will instantiate and register all handlers in this package.
func RegisterRoutes(r vault.Registry, auth x.Authenticator, control Controller) {
	r.Handle(&SendMsg{}, NewSendHandler(auth, control))
	r.Handle(&UpdateConfigurationMsg{}, NewConfigHandler(auth))
}

// SendHandler will handle sending coins.
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ vault.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg.
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check verifies all static requirements, like the message is well formed
// and signed by the source. Funds are checked only by Deliver.
func (h SendHandler) Check(ctx vault.Context, store vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &vault.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the tokens from the source wallet to the destination wallet.
func (h SendHandler) Deliver(ctx vault.Context, store vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(store, msg.Source, msg.Destination, *msg.Amount); err != nil {
		return nil, err
	}
	return &vault.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx vault.Context, tx vault.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source signature missing")
	}
	return &msg, nil
}

// NewConfigHandler returns a handler that allows the configuration owner to
// patch the cash configuration.
func NewConfigHandler(auth x.Authenticator) vault.Handler {
	return gconf.NewUpdateConfigurationHandler(pkgName, auth, func() gconf.OwnedConfig {
		return &Configuration{}
	})
}
