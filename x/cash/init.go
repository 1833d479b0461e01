package cash

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/gconf"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file. Address is
// hex encoded.
type GenesisAccount struct {
	Address vault.Address `json:"address"`
	Coins   []coin.Coin   `json:"coins"`
}

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ vault.Initializer = Initializer{}

// FromGenesis will parse initial account info and the cash configuration
// from genesis and save it to the database.
func (Initializer) FromGenesis(opts vault.Options, kv vault.KVStore) error {
	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	bucket := NewBucket()
	for i, acct := range accts {
		wallet, err := WalletWith(acct.Coins...)
		if err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
		if err := bucket.Save(kv, acct.Address, wallet); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
	}
	var conf Configuration
	if err := gconf.InitConfig(kv, opts, pkgName, &conf); err != nil {
		return errors.Wrap(err, "init config")
	}
	return nil
}
