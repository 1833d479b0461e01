package timelock

import (
	"bytes"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// RegisterQuery registers balances under "/timelocks" and withdrawals
// under "/tlwithdraws", together with their indexes.
func RegisterQuery(qr vault.QueryRouter) {
	NewBalanceBucket().Register("timelocks", qr)
	NewWithdrawalBucket().Register("tlwithdraws", qr)
}

// BalanceEntry is a balance together with its ID.
type BalanceEntry struct {
	ID      []byte
	Balance *TimeLockBalance
}

// WithdrawalEntry is a pending withdrawal together with its ID.
type WithdrawalEntry struct {
	ID         []byte
	Withdrawal *PendingWithdrawal
}

// BalancesByOwner returns all balances of given owner, ordered by ticker
// and then review period.
func BalancesByOwner(db vault.ReadOnlyKVStore, owner vault.Address) ([]BalanceEntry, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	from := ownerIndexValue(owner, "", 0)
	to := append(append([]byte{}, owner...), bytes.Repeat([]byte{0xFF}, len(from)-len(owner))...)

	b := NewBalanceBucket()
	keys, err := b.IndexRange(db, "owner", from, to)
	if err != nil {
		return nil, err
	}
	res := make([]BalanceEntry, 0, len(keys))
	for _, key := range keys {
		balance, err := b.One(db, key)
		if err != nil {
			return nil, errors.Wrapf(err, "balance %X", key)
		}
		res = append(res, BalanceEntry{ID: key, Balance: balance})
	}
	return res, nil
}

// WithdrawalsByBalance returns all pending withdrawals of given balance in
// the order they were requested.
func WithdrawalsByBalance(db vault.ReadOnlyKVStore, balanceID []byte) ([]WithdrawalEntry, error) {
	if err := validateID(balanceID); err != nil {
		return nil, errors.Wrap(err, "balance")
	}
	b := NewWithdrawalBucket()
	keys, err := b.IndexKeys(db, "balance", balanceID)
	if err != nil {
		return nil, err
	}
	return loadWithdrawals(db, b, keys)
}

// DueWithdrawals returns all pending withdrawals that can be completed at
// given time, ordered by their finalize time. Nothing is completed. This
// is meant for external sweepers that submit completion messages.
func DueWithdrawals(db vault.ReadOnlyKVStore, now vault.UnixTime) ([]WithdrawalEntry, error) {
	if now < 0 {
		return nil, errors.Wrap(errors.ErrInput, "negative time")
	}
	b := NewWithdrawalBucket()
	keys, err := b.IndexRange(db, "finalize", nil, encodeTime(now+1))
	if err != nil {
		return nil, err
	}
	return loadWithdrawals(db, b, keys)
}

func loadWithdrawals(db vault.ReadOnlyKVStore, b WithdrawalBucket, keys [][]byte) ([]WithdrawalEntry, error) {
	res := make([]WithdrawalEntry, 0, len(keys))
	for _, key := range keys {
		w, err := b.One(db, key)
		if err != nil {
			return nil, errors.Wrapf(err, "withdrawal %X", key)
		}
		res = append(res, WithdrawalEntry{ID: key, Withdrawal: w})
	}
	return res, nil
}
