package cash

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x"
)

// FeeCarrier is implemented by messages that declare a fee.
type FeeCarrier interface {
	// GetFee returns the declared fee or nil.
	GetFee() *coin.Coin
	// FeePayer returns the address the fee is charged to.
	FeePayer() vault.Address
}

// FeeDecorator ensures that the fee declared by a message is at least the
// minimal fee configured for its path and moves it from the payer to the
// collector before calling down the stack.
//
// A fee payer must be authenticated. Messages that do not carry a fee are
// accepted only when their path requires no fee.
type FeeDecorator struct {
	auth x.Authenticator
	ctrl CoinMover
}

var _ vault.Decorator = FeeDecorator{}

// NewFeeDecorator returns a FeeDecorator using given authenticator to
// verify the payer.
func NewFeeDecorator(auth x.Authenticator, ctrl CoinMover) FeeDecorator {
	return FeeDecorator{
		auth: auth,
		ctrl: ctrl,
	}
}

// Check verifies and deducts fees before calling down the stack
func (d FeeDecorator) Check(ctx vault.Context, store vault.KVStore, tx vault.Tx, next vault.Checker) (*vault.CheckResult, error) {
	fee, err := d.chargeFee(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	res.GasPayment += toPayment(fee)
	return res, nil
}

// Deliver verifies and deducts fees before calling down the stack
func (d FeeDecorator) Deliver(ctx vault.Context, store vault.KVStore, tx vault.Tx, next vault.Deliverer) (*vault.DeliverResult, error) {
	if _, err := d.chargeFee(ctx, store, tx); err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

// chargeFee returns the fee that was moved to the collector. A zero coin
// is returned when no fee was paid.
func (d FeeDecorator) chargeFee(ctx vault.Context, store vault.KVStore, tx vault.Tx) (coin.Coin, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "cannot get transaction message")
	}
	conf, err := loadConf(store)
	if err != nil {
		return coin.Coin{}, err
	}
	min := conf.MinimalFee(msg.Path())

	var fee coin.Coin
	var payer vault.Address
	if fc, ok := msg.(FeeCarrier); ok {
		if f := fc.GetFee(); f != nil {
			fee = *f
		}
		payer = fc.FeePayer()
	}

	if !min.IsZero() {
		if fee.IsZero() {
			return coin.Coin{}, errors.Wrapf(errors.ErrAmount, "fee required: %s", min)
		}
		if !fee.SameType(min) {
			return coin.Coin{}, errors.Wrapf(errors.ErrCurrency, "fee must be paid in %s, got %s", min.Ticker, fee.Ticker)
		}
		if !fee.IsGTE(min) {
			return coin.Coin{}, errors.Wrapf(errors.ErrAmount, "fee %s is less than required %s", fee, min)
		}
	}
	if fee.IsZero() {
		return fee, nil
	}
	if err := fee.Validate(); err != nil {
		return coin.Coin{}, errors.Wrap(err, "fee")
	}
	if !fee.IsPositive() {
		return coin.Coin{}, errors.Wrap(errors.ErrAmount, "negative fee")
	}
	if !d.auth.HasAddress(ctx, payer) {
		return coin.Coin{}, errors.Wrap(errors.ErrUnauthorized, "fee payer signature missing")
	}
	if err := d.ctrl.MoveCoins(store, payer, conf.CollectorAddress, fee); err != nil {
		return coin.Coin{}, errors.Wrap(err, "cannot pay fee")
	}
	return fee, nil
}

// toPayment converts the fee to a gas payment value. Only the whole part is
// taken into account and the result is capped.
func toPayment(fee coin.Coin) int64 {
	const maxPayment = 1 << 40
	if fee.Whole > maxPayment {
		return maxPayment
	}
	return fee.Whole
}
