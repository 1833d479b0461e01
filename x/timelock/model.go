package timelock

import (
	"encoding/binary"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/cdc"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
)

const (
	idLength     = 8
	tickerLength = 4
)

// TimeLockBalance holds funds of a single asset. Every withdrawal from it
// is delayed by the review period.
type TimeLockBalance struct {
	Metadata *vault.Metadata `json:"metadata"`
	Owner    vault.Address   `json:"owner"`
	// Amount is never negative and its ticker never changes.
	Amount       coin.Coin          `json:"amount"`
	ReviewPeriod vault.UnixDuration `json:"review_period"`
}

var _ orm.Model = (*TimeLockBalance)(nil)

func (b *TimeLockBalance) Marshal() ([]byte, error)   { return cdc.Marshal(b) }
func (b *TimeLockBalance) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, b) }

func (b *TimeLockBalance) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", b.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", b.Owner.Validate())
	errs = errors.AppendField(errs, "Amount", b.Amount.Validate())
	if !b.Amount.IsNonNegative() {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrAmount, "negative balance"))
	}
	if b.ReviewPeriod <= 0 {
		errs = errors.Append(errs, errors.Field("ReviewPeriod", errors.ErrInput, "must be positive"))
	}
	return errs
}

// PendingWithdrawal earmarks an amount of a balance to be released to the
// recipient no earlier than FinalizeAt.
type PendingWithdrawal struct {
	Metadata   *vault.Metadata `json:"metadata"`
	BalanceID  []byte          `json:"balance_id"`
	Amount     coin.Coin       `json:"amount"`
	Recipient  vault.Address   `json:"recipient"`
	FinalizeAt vault.UnixTime  `json:"finalize_at"`
}

var _ orm.Model = (*PendingWithdrawal)(nil)

func (w *PendingWithdrawal) Marshal() ([]byte, error)   { return cdc.Marshal(w) }
func (w *PendingWithdrawal) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, w) }

func (w *PendingWithdrawal) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", w.Metadata.Validate())
	errs = errors.AppendField(errs, "BalanceID", validateID(w.BalanceID))
	errs = errors.AppendField(errs, "Amount", w.Amount.Validate())
	if !w.Amount.IsPositive() {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrAmount, "must be positive"))
	}
	errs = errors.AppendField(errs, "Recipient", w.Recipient.Validate())
	errs = errors.AppendField(errs, "FinalizeAt", w.FinalizeAt.Validate())
	return errs
}

func validateID(id []byte) error {
	if len(id) == 0 {
		return errors.Wrap(errors.ErrEmpty, "id")
	}
	if len(id) != idLength {
		return errors.Wrapf(errors.ErrInput, "id must be %d bytes, got %X", idLength, id)
	}
	return nil
}

// BalanceCondition returns the condition of the address that holds the
// funds of the balance with given ID.
func BalanceCondition(balanceID []byte) vault.Condition {
	return vault.NewCondition("timelock", "balance", balanceID)
}

// HoldingAddress returns the address that holds the funds of the balance
// with given ID.
func HoldingAddress(balanceID []byte) vault.Address {
	return BalanceCondition(balanceID).Address()
}

// BalanceBucket stores TimeLockBalance entities.
type BalanceBucket struct {
	*orm.ModelBucket[TimeLockBalance, *TimeLockBalance]
}

// NewBalanceBucket returns the bucket of all time lock balances, indexed
// by owner, ticker and review period.
func NewBalanceBucket() BalanceBucket {
	b := orm.NewModelBucket[TimeLockBalance]("timelock").
		WithIndex("owner", ownerIndexer, false)
	return BalanceBucket{ModelBucket: b}
}

// ownerIndexer produces a fixed size value so that index ranges are
// ordered by owner, then ticker, then review period.
func ownerIndexer(b *TimeLockBalance) ([]byte, error) {
	if b == nil {
		return nil, errors.Wrap(errors.ErrType, "nil balance")
	}
	if len(b.Owner) != vault.AddressLength {
		return nil, errors.Wrap(errors.ErrInput, "owner address")
	}
	if len(b.Amount.Ticker) > tickerLength {
		return nil, errors.Wrapf(errors.ErrCurrency, "ticker %q", b.Amount.Ticker)
	}
	return ownerIndexValue(b.Owner, b.Amount.Ticker, b.ReviewPeriod), nil
}

func ownerIndexValue(owner vault.Address, ticker string, period vault.UnixDuration) []byte {
	raw := make([]byte, vault.AddressLength+tickerLength+8)
	copy(raw, owner)
	copy(raw[vault.AddressLength:], ticker)
	binary.BigEndian.PutUint64(raw[vault.AddressLength+tickerLength:], uint64(period))
	return raw
}

// WithdrawalBucket stores PendingWithdrawal entities.
type WithdrawalBucket struct {
	*orm.ModelBucket[PendingWithdrawal, *PendingWithdrawal]
}

// NewWithdrawalBucket returns the bucket of all pending withdrawals,
// indexed by finalize time and by balance.
func NewWithdrawalBucket() WithdrawalBucket {
	b := orm.NewModelBucket[PendingWithdrawal]("tlwithdraw").
		WithIndex("finalize", finalizeIndexer, false).
		WithIndex("balance", balanceIndexer, false)
	return WithdrawalBucket{ModelBucket: b}
}

func finalizeIndexer(w *PendingWithdrawal) ([]byte, error) {
	if w == nil {
		return nil, errors.Wrap(errors.ErrType, "nil withdrawal")
	}
	if w.FinalizeAt < 0 {
		return nil, errors.Wrap(errors.ErrState, "negative finalize time")
	}
	return encodeTime(w.FinalizeAt), nil
}

func balanceIndexer(w *PendingWithdrawal) ([]byte, error) {
	if w == nil {
		return nil, errors.Wrap(errors.ErrType, "nil withdrawal")
	}
	return w.BalanceID, nil
}

func encodeTime(t vault.UnixTime) []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(t))
	return raw
}
