package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/vaulttest"
	"github.com/iov-one/vault/vaulttest/assert"
)

func TestSaveLoad(t *testing.T) {
	owner := vaulttest.NewCondition().Address()

	cases := map[string]struct {
		conf    *limits
		wantErr error
	}{
		"valid": {
			conf: &limits{Owner: owner, MaxItems: 852151421, Label: "x", Deposit: coin.NewCoin(51, 924, "IOV")},
		},
		"short owner address": {
			conf:    &limits{Owner: vault.Address("short"), Deposit: coin.NewCoin(1, 0, "IOV")},
			wantErr: errors.ErrInput,
		},
		"deposit without a ticker": {
			conf:    &limits{Owner: owner},
			wantErr: errors.ErrCurrency,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			assert.IsErr(t, tc.wantErr, Save(db, "limits", tc.conf))

			var got limits
			err := Load(db, "limits", &got)
			if tc.wantErr != nil {
				assert.IsErr(t, errors.ErrNotFound, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.conf, &got)
			assert.IsErr(t, errors.ErrNotFound, Load(db, "other", &got))
		})
	}
}

func TestInitConfig(t *testing.T) {
	owner := vaulttest.NewCondition().Address()
	genesis := func(conf *limits) vault.Options {
		raw, err := json.Marshal(map[string]*limits{"limits": conf})
		assert.Nil(t, err)
		return vault.Options{"conf": raw}
	}

	db := store.MemStore()
	opts := genesis(&limits{Owner: owner, MaxItems: 7, Deposit: coin.NewCoin(1, 0, "IOV")})
	assert.Nil(t, InitConfig(db, opts, "limits", &limits{}))

	var got limits
	assert.Nil(t, Load(db, "limits", &got))
	assert.Equal(t, int64(7), got.MaxItems)
	assert.Equal(t, owner, got.Owner)

	assert.IsErr(t, errors.ErrNotFound, InitConfig(db, opts, "missing", &limits{}))
	assert.IsErr(t, errors.ErrCurrency, InitConfig(db, genesis(&limits{Owner: owner}), "limits", &limits{}))
}
