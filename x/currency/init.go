package currency

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ vault.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial token info from genesis and save it to the
// database
func (*Initializer) FromGenesis(opts vault.Options, kv vault.KVStore) error {
	var tokens []struct {
		Ticker string `json:"ticker"`
		Name   string `json:"name"`
	}
	if err := opts.ReadOptions("currencies", &tokens); err != nil {
		return err
	}

	bucket := NewTokenInfoBucket()
	for i, t := range tokens {
		info := &TokenInfo{
			Metadata: &vault.Metadata{Schema: 1},
			Name:     t.Name,
		}
		if err := bucket.Save(kv, t.Ticker, info); err != nil {
			return errors.Wrapf(err, "token #%d", i)
		}
	}
	return nil
}
