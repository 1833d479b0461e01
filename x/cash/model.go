package cash

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/cdc"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
)

// Set is the content of a wallet: all coins held by an address.
type Set struct {
	Metadata *vault.Metadata `json:"metadata"`
	Coins    coin.Coins      `json:"coins"`
}

var _ orm.Model = (*Set)(nil)

func (s *Set) Marshal() ([]byte, error)   { return cdc.Marshal(s) }
func (s *Set) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, s) }

// Validate requires that all coins are in alphabetical order and that no
// coin is negative.
func (s *Set) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", s.Metadata.Validate())
	errs = errors.AppendField(errs, "Coins", s.Coins.Validate())
	if !s.Coins.IsNonNegative() {
		errs = errors.Append(errs, errors.Field("Coins", errors.ErrAmount, "negative holdings"))
	}
	return errs
}

// Bucket stores wallets, using the owner address as the key.
type Bucket struct {
	*orm.ModelBucket[Set, *Set]
}

// NewBucket returns the bucket all wallets are stored in.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket[Set]("cash"),
	}
}

// Save validates and stores the wallet of given address.
func (b Bucket) Save(db vault.KVStore, addr vault.Address, s *Set) error {
	if err := addr.Validate(); err != nil {
		return errors.Wrap(err, "wallet address")
	}
	_, err := b.Put(db, addr, s)
	return err
}

// Wallet returns the wallet of given address. A missing wallet results in
// ErrNotFound.
func (b Bucket) Wallet(db vault.ReadOnlyKVStore, addr vault.Address) (*Set, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.Wrap(err, "wallet address")
	}
	s, err := b.One(db, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "wallet %s", addr)
	}
	return s, nil
}

// WalletWith returns a wallet holding given coins.
func WalletWith(coins ...coin.Coin) (*Set, error) {
	cs, err := coin.CombineCoins(coins...)
	if err != nil {
		return nil, err
	}
	return &Set{Metadata: &vault.Metadata{Schema: 1}, Coins: cs}, nil
}
