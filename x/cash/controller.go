package cash

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
)

// CoinMover is an interface for moving coins between accounts.
type CoinMover interface {
	// MoveCoins removes funds from the source account and adds them to the
	// destination account. The destination wallet is created if needed.
	MoveCoins(db vault.KVStore, src, dest vault.Address, amount coin.Coin) error
}

// Controller is the functionality needed by cash.Handler and
// cash.FeeDecorator. BaseController should work plenty fine, but you can
// add other logic if so desired.
type Controller interface {
	CoinMover

	// Balance returns all coins held by given account. ErrNotFound is
	// returned if the account has no wallet.
	Balance(db vault.ReadOnlyKVStore, addr vault.Address) (coin.Coins, error)

	// ResolveAccount returns ErrNotFound if given address does not
	// reference an existing wallet.
	ResolveAccount(db vault.ReadOnlyKVStore, addr vault.Address) error

	// CoinMint increases the holdings of given account. Minted coins are
	// not taken from any other account.
	CoinMint(db vault.KVStore, dest vault.Address, amount coin.Coin) error
}

// BaseController is a simple implementation of Controller.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

func (c BaseController) Balance(db vault.ReadOnlyKVStore, addr vault.Address) (coin.Coins, error) {
	w, err := c.bucket.Wallet(db, addr)
	if err != nil {
		return nil, err
	}
	return w.Coins, nil
}

func (c BaseController) ResolveAccount(db vault.ReadOnlyKVStore, addr vault.Address) error {
	_, err := c.bucket.Wallet(db, addr)
	return err
}

func (c BaseController) MoveCoins(db vault.KVStore, src, dest vault.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %s", amount)
	}

	sender, err := c.bucket.Wallet(db, src)
	if err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrapf(errors.ErrInsufficientAmount, "%s has no wallet", src)
		}
		return err
	}
	if !sender.Coins.Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s has %s, needs %s",
			src, sender.Coins.Balance(amount.Ticker), amount)
	}
	if sender.Coins, err = sender.Coins.Subtract(amount); err != nil {
		return err
	}
	if err := c.bucket.Save(db, src, sender); err != nil {
		return errors.Wrap(err, "save sender")
	}
	if err := c.add(db, dest, amount); err != nil {
		return errors.Wrap(err, "credit recipient")
	}
	return nil
}

func (c BaseController) CoinMint(db vault.KVStore, dest vault.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %s", amount)
	}
	return c.add(db, dest, amount)
}

func (c BaseController) add(db vault.KVStore, dest vault.Address, amount coin.Coin) error {
	w, err := c.bucket.Wallet(db, dest)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		w = &Set{Metadata: &vault.Metadata{Schema: 1}}
	default:
		return err
	}
	if w.Coins, err = w.Coins.Add(amount); err != nil {
		return err
	}
	return c.bucket.Save(db, dest, w)
}
