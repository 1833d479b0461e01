package timelock

import (
	"testing"
	"time"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/vaulttest"
	"github.com/iov-one/vault/vaulttest/assert"
)

func TestBalancesByOwner(t *testing.T) {
	f := newFixture(t)

	create := func(ticker string, period vault.UnixDuration) []byte {
		t.Helper()
		c := iov(0)
		if ticker == "ETH" {
			c = eth(1)
		}
		id, err := f.exec(now, f.owner, &CreateMsg{
			Metadata:     schema,
			Owner:        f.owner.Address(),
			Amount:       c,
			ReviewPeriod: period,
			Fee:          fee,
		})
		assert.Nil(t, err)
		return id
	}
	slowIOV := create("IOV", 7200)
	fastETH := create("ETH", 60)
	fastIOV := create("IOV", 60)

	// other owners are not listed
	_, err := f.exec(now, f.outsider, &CreateMsg{
		Metadata:     schema,
		Owner:        f.outsider.Address(),
		Amount:       iov(1),
		ReviewPeriod: 60,
		Fee:          fee,
	})
	assert.Nil(t, err)

	entries, err := BalancesByOwner(f.db, f.owner.Address())
	assert.Nil(t, err)
	assert.Equal(t, 3, len(entries))
	assert.Equal(t, fastETH, entries[0].ID)
	assert.Equal(t, fastIOV, entries[1].ID)
	assert.Equal(t, slowIOV, entries[2].ID)
	assert.Equal(t, vault.UnixDuration(7200), entries[2].Balance.ReviewPeriod)

	entries, err = BalancesByOwner(f.db, vaulttest.NewCondition().Address())
	assert.Nil(t, err)
	assert.Equal(t, 0, len(entries))

	_, err = BalancesByOwner(f.db, nil)
	assert.IsErr(t, errors.ErrEmpty, err)
}

func TestWithdrawalQueries(t *testing.T) {
	f := newFixture(t)
	first := f.create(iov(100))
	second := f.create(iov(100))

	w1 := f.request(first, iov(10), now)
	w2 := f.request(second, iov(20), now.Add(-30*time.Minute))
	w3 := f.request(first, iov(30), now.Add(time.Hour))

	entries, err := WithdrawalsByBalance(f.db, first)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(entries))
	assert.Equal(t, w1, entries[0].ID)
	assert.Equal(t, w3, entries[1].ID)
	assert.Equal(t, *iov(30), entries[1].Withdrawal.Amount)

	entries, err = WithdrawalsByBalance(f.db, vaulttest.SequenceID(1234))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(entries))

	_, err = WithdrawalsByBalance(f.db, []byte("short"))
	assert.IsErr(t, errors.ErrInput, err)

	cases := map[string]struct {
		at   time.Time
		want [][]byte
	}{
		"nothing is due yet": {
			at:   now.Add(29 * time.Minute),
			want: nil,
		},
		"finalize time is inclusive": {
			at:   now.Add(30 * time.Minute),
			want: [][]byte{w2},
		},
		"ordered by finalize time": {
			at:   now.Add(3 * time.Hour),
			want: [][]byte{w2, w1, w3},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			entries, err := DueWithdrawals(f.db, vault.AsUnixTime(tc.at))
			assert.Nil(t, err)
			var got [][]byte
			for _, e := range entries {
				got = append(got, e.ID)
			}
			assert.Equal(t, tc.want, got)
		})
	}

	_, err = DueWithdrawals(f.db, -1)
	assert.IsErr(t, errors.ErrInput, err)
}

func TestQueryPaths(t *testing.T) {
	f := newFixture(t)
	balanceID := f.create(iov(5))
	withdrawalID := f.request(balanceID, iov(1), now)

	qr := vault.NewQueryRouter()
	RegisterQuery(qr)

	res, err := qr.Handler("/timelocks").Query(f.db, vault.KeyQueryMod, balanceID)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	var b TimeLockBalance
	assert.Nil(t, b.Unmarshal(res[0].Value))
	assert.Equal(t, *iov(5), b.Amount)

	res, err = qr.Handler("/timelocks/owner").Query(f.db, vault.PrefixQueryMod, f.owner.Address())
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, balanceID, res[0].Key)

	res, err = qr.Handler("/tlwithdraws/balance").Query(f.db, vault.KeyQueryMod, balanceID)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, withdrawalID, res[0].Key)

	res, err = qr.Handler("/tlwithdraws/finalize").Query(f.db, vault.KeyQueryMod, encodeTime(vault.AsUnixTime(now)+3600))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
}
