package vaultd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x/cash"
	"github.com/iov-one/vault/x/sigs"
	"github.com/iov-one/vault/x/timelock"
	"golang.org/x/crypto/ed25519"
)

// CollectorAddress receives the fees configured by GenInitOptions.
var CollectorAddress = vault.NewCondition("cash", "collector", []byte("fees")).Address()

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode.
//
// Optional arguments are the ticker of the currency and the hex encoded
// address of the account. A new key is generated when no address is given.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "IOV"
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %s", ticker)
		}
	}

	var addr vault.Address
	if len(args) > 1 {
		raw, err := hex.DecodeString(args[1])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "address: %s", err)
		}
		addr = vault.Address(raw)
		if err := addr.Validate(); err != nil {
			return nil, errors.Wrap(err, "address")
		}
	} else {
		// if no address provided, auto-generate one
		// and print out the private key
		a, key, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = a
		fmt.Printf("Private key: %X\n", []byte(key))
	}

	fee := coin.NewCoin(1, 0, ticker)
	state := map[string]interface{}{
		"cash": []cash.GenesisAccount{
			{Address: addr, Coins: []coin.Coin{coin.NewCoin(123456789, 0, ticker)}},
		},
		"currencies": []map[string]string{
			{"ticker": ticker, "name": "Main token"},
		},
		"conf": map[string]interface{}{
			"cash": cash.Configuration{
				Metadata:         &vault.Metadata{Schema: 1},
				Owner:            addr,
				CollectorAddress: CollectorAddress,
				MsgFees: []cash.MsgFee{
					{MsgPath: (&timelock.CreateMsg{}).Path(), Fee: fee},
					{MsgPath: (&timelock.DepositMsg{}).Path(), Fee: fee},
					{MsgPath: (&timelock.WithdrawMsg{}).Path(), Fee: fee},
				},
			},
		},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// GenerateCoinKey returns the address of a freshly generated key together
// with the key itself. You can give coins to this address and hand the key
// to the user to access them.
func GenerateCoinKey() (vault.Address, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, nil, errors.Wrapf(errors.ErrState, "generate key: %s", err)
	}
	return sigs.Condition(pub).Address(), priv, nil
}
