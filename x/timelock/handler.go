package timelock

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x"
	"github.com/iov-one/vault/x/cash"
	"github.com/iov-one/vault/x/currency"
)

const (
	createBalanceCost      int64 = 300
	depositCost            int64 = 100
	withdrawCost           int64 = 100
	abortWithdrawalCost    int64 = 0
	completeWithdrawalCost int64 = 0
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r vault.Registry, auth x.Authenticator, bank cash.Controller) {
	balances := NewBalanceBucket()
	withdrawals := NewWithdrawalBucket()
	r.Handle(&CreateMsg{}, CreateHandler{auth: auth, balances: balances, bank: bank})
	r.Handle(&DepositMsg{}, DepositHandler{auth: auth, balances: balances, bank: bank})
	r.Handle(&WithdrawMsg{}, WithdrawHandler{auth: auth, balances: balances, withdrawals: withdrawals, bank: bank})
	r.Handle(&AbortWithdrawalMsg{}, AbortWithdrawalHandler{auth: auth, balances: balances, withdrawals: withdrawals})
	r.Handle(&CompleteWithdrawalMsg{}, CompleteWithdrawalHandler{auth: auth, balances: balances, withdrawals: withdrawals, bank: bank})
}

// CreateHandler creates a new balance and moves the initial deposit into
// it.
type CreateHandler struct {
	auth     x.Authenticator
	balances BalanceBucket
	bank     cash.Controller
}

var _ vault.Handler = CreateHandler{}

func (h CreateHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &vault.CheckResult{GasAllocated: createBalanceCost}, nil
}

// Deliver stores the balance and returns its ID.
func (h CreateHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	balance := &TimeLockBalance{
		Metadata:     &vault.Metadata{Schema: 1},
		Owner:        msg.Owner,
		Amount:       *msg.Amount,
		ReviewPeriod: msg.ReviewPeriod,
	}
	id, err := h.balances.Put(db, nil, balance)
	if err != nil {
		return nil, errors.Wrap(err, "cannot store balance")
	}
	if msg.Amount.IsPositive() {
		if err := h.bank.MoveCoins(db, msg.Owner, HoldingAddress(id), *msg.Amount); err != nil {
			return nil, errors.Wrap(err, "cannot debit owner")
		}
	}
	vault.GetLogger(ctx).Debug("time lock balance created",
		"balance", id, "owner", msg.Owner, "amount", msg.Amount.String())
	return &vault.DeliverResult{Data: id}, nil
}

func (h CreateHandler) validate(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*CreateMsg, error) {
	var msg CreateMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	if err := h.bank.ResolveAccount(db, msg.Owner); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	if _, err := currency.Resolve(db, msg.Amount.Ticker); err != nil {
		return nil, err
	}
	if err := ensureSpendable(db, h.bank, msg.Owner, *msg.Amount); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DepositHandler moves funds of the owner into an existing balance.
type DepositHandler struct {
	auth     x.Authenticator
	balances BalanceBucket
	bank     cash.Controller
}

var _ vault.Handler = DepositHandler{}

func (h DepositHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &vault.CheckResult{GasAllocated: depositCost}, nil
}

func (h DepositHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	msg, balance, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.bank.MoveCoins(db, msg.Owner, HoldingAddress(msg.BalanceID), *msg.Amount); err != nil {
		return nil, errors.Wrap(err, "cannot debit owner")
	}
	if _, err := h.balances.Put(db, msg.BalanceID, balance); err != nil {
		return nil, errors.Wrap(err, "cannot store balance")
	}
	vault.GetLogger(ctx).Debug("time lock deposit",
		"balance", msg.BalanceID, "amount", msg.Amount.String())
	return &vault.DeliverResult{Data: msg.BalanceID}, nil
}

// validate returns the balance with the deposit already added.
func (h DepositHandler) validate(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*DepositMsg, *TimeLockBalance, error) {
	var msg DepositMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	balance, err := h.balances.One(db, msg.BalanceID)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "balance %X", msg.BalanceID)
	}
	if !balance.Owner.Equals(msg.Owner) {
		return nil, nil, errors.Wrapf(errors.ErrUnauthorized, "%s is not the balance owner", msg.Owner)
	}
	if !balance.Amount.SameType(*msg.Amount) {
		return nil, nil, errors.Wrapf(errors.ErrCurrency, "balance holds %s, got %s", balance.Amount.Ticker, msg.Amount.Ticker)
	}
	if err := ensureSpendable(db, h.bank, msg.Owner, *msg.Amount); err != nil {
		return nil, nil, err
	}
	total, err := balance.Amount.Add(*msg.Amount)
	if err != nil {
		return nil, nil, errors.Wrap(err, "balance amount")
	}
	balance.Amount = total
	return &msg, balance, nil
}

// WithdrawHandler creates a pending withdrawal. The requested amount is
// not checked against the balance.
type WithdrawHandler struct {
	auth        x.Authenticator
	balances    BalanceBucket
	withdrawals WithdrawalBucket
	bank        cash.Controller
}

var _ vault.Handler = WithdrawHandler{}

func (h WithdrawHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &vault.CheckResult{GasAllocated: withdrawCost}, nil
}

// Deliver stores the withdrawal and returns its ID.
func (h WithdrawHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	msg, finalizeAt, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	withdrawal := &PendingWithdrawal{
		Metadata:   &vault.Metadata{Schema: 1},
		BalanceID:  msg.BalanceID,
		Amount:     *msg.Amount,
		Recipient:  msg.Recipient,
		FinalizeAt: finalizeAt,
	}
	id, err := h.withdrawals.Put(db, nil, withdrawal)
	if err != nil {
		return nil, errors.Wrap(err, "cannot store withdrawal")
	}
	return &vault.DeliverResult{Data: id}, nil
}

// validate returns the finalize time of the withdrawal.
func (h WithdrawHandler) validate(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*WithdrawMsg, vault.UnixTime, error) {
	var msg WithdrawMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, 0, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	balance, err := h.balances.One(db, msg.BalanceID)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "balance %X", msg.BalanceID)
	}
	if !balance.Owner.Equals(msg.Owner) {
		return nil, 0, errors.Wrapf(errors.ErrUnauthorized, "%s is not the balance owner", msg.Owner)
	}
	if !balance.Amount.SameType(*msg.Amount) {
		return nil, 0, errors.Wrapf(errors.ErrCurrency, "balance holds %s, got %s", balance.Amount.Ticker, msg.Amount.Ticker)
	}
	if err := h.bank.ResolveAccount(db, msg.Recipient); err != nil {
		return nil, 0, errors.Wrap(err, "recipient")
	}
	now, err := vault.BlockUnixTime(ctx)
	if err != nil {
		return nil, 0, err
	}
	finalizeAt, err := now.AddDuration(balance.ReviewPeriod)
	if err != nil {
		return nil, 0, errors.Wrap(err, "finalize time")
	}
	return &msg, finalizeAt, nil
}

// AbortWithdrawalHandler deletes a pending withdrawal. Only the balance
// owner can abort.
type AbortWithdrawalHandler struct {
	auth        x.Authenticator
	balances    BalanceBucket
	withdrawals WithdrawalBucket
}

var _ vault.Handler = AbortWithdrawalHandler{}

func (h AbortWithdrawalHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &vault.CheckResult{GasAllocated: abortWithdrawalCost}, nil
}

func (h AbortWithdrawalHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.withdrawals.Delete(db, msg.WithdrawalID); err != nil {
		return nil, errors.Wrap(err, "cannot delete withdrawal")
	}
	return &vault.DeliverResult{}, nil
}

func (h AbortWithdrawalHandler) validate(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*AbortWithdrawalMsg, error) {
	var msg AbortWithdrawalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	withdrawal, err := h.withdrawals.One(db, msg.WithdrawalID)
	if err != nil {
		return nil, errors.Wrapf(err, "withdrawal %X", msg.WithdrawalID)
	}
	balance, err := h.balances.One(db, withdrawal.BalanceID)
	if err != nil {
		return nil, errors.Wrapf(err, "balance %X", withdrawal.BalanceID)
	}
	if !balance.Owner.Equals(msg.Owner) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s is not the balance owner", msg.Owner)
	}
	return &msg, nil
}

// CompleteWithdrawalHandler releases the funds of a withdrawal after its
// review period. Both the balance owner and the recipient can complete.
type CompleteWithdrawalHandler struct {
	auth        x.Authenticator
	balances    BalanceBucket
	withdrawals WithdrawalBucket
	bank        cash.Controller
}

var _ vault.Handler = CompleteWithdrawalHandler{}

func (h CompleteWithdrawalHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &vault.CheckResult{GasAllocated: completeWithdrawalCost}, nil
}

func (h CompleteWithdrawalHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	msg, withdrawal, balance, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	rest, err := balance.Amount.Subtract(*msg.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "balance amount")
	}
	balance.Amount = rest
	if _, err := h.balances.Put(db, withdrawal.BalanceID, balance); err != nil {
		return nil, errors.Wrap(err, "cannot store balance")
	}
	if err := h.bank.MoveCoins(db, HoldingAddress(withdrawal.BalanceID), withdrawal.Recipient, withdrawal.Amount); err != nil {
		return nil, errors.Wrap(err, "cannot credit recipient")
	}
	if err := h.withdrawals.Delete(db, msg.WithdrawalID); err != nil {
		return nil, errors.Wrap(err, "cannot delete withdrawal")
	}
	vault.GetLogger(ctx).Debug("time lock withdrawal completed",
		"withdrawal", msg.WithdrawalID, "recipient", withdrawal.Recipient, "amount", withdrawal.Amount.String())
	return &vault.DeliverResult{}, nil
}

// validate runs the completion checks in a fixed order, so that the
// reported error does not depend on the message content before the
// review period has elapsed.
func (h CompleteWithdrawalHandler) validate(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*CompleteWithdrawalMsg, *PendingWithdrawal, *TimeLockBalance, error) {
	var msg CompleteWithdrawalMsg
	if err := vault.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Actor) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "actor signature missing")
	}
	withdrawal, err := h.withdrawals.One(db, msg.WithdrawalID)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "withdrawal %X", msg.WithdrawalID)
	}
	balance, err := h.balances.One(db, withdrawal.BalanceID)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "balance %X", withdrawal.BalanceID)
	}

	now, err := vault.BlockUnixTime(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if now < withdrawal.FinalizeAt {
		return nil, nil, nil, errors.Wrapf(ErrReviewPending, "withdrawal can be completed after %s", withdrawal.FinalizeAt)
	}
	if balance.Amount.Compare(*msg.Amount) < 0 {
		return nil, nil, nil, errors.Wrapf(errors.ErrInsufficientAmount, "balance %X holds %s, needs %s",
			withdrawal.BalanceID, balance.Amount, msg.Amount)
	}
	if !msg.Actor.Equals(balance.Owner) && !msg.Actor.Equals(withdrawal.Recipient) {
		return nil, nil, nil, errors.Wrapf(errors.ErrUnauthorized, "%s is neither the owner nor the recipient", msg.Actor)
	}
	if !msg.Recipient.Equals(withdrawal.Recipient) {
		return nil, nil, nil, errors.Wrapf(ErrRecipientMismatch, "withdrawal recipient is %s, got %s", withdrawal.Recipient, msg.Recipient)
	}
	if !msg.Amount.SameQuantity(withdrawal.Amount) {
		return nil, nil, nil, errors.Wrapf(ErrAmountMismatch, "withdrawal amount is %s, got %s", withdrawal.Amount, msg.Amount)
	}
	if !msg.Amount.SameType(balance.Amount) {
		return nil, nil, nil, errors.Wrapf(errors.ErrCurrency, "balance holds %s, got %s", balance.Amount.Ticker, msg.Amount.Ticker)
	}
	return &msg, withdrawal, balance, nil
}

// ensureSpendable returns ErrInsufficientAmount if the account cannot
// afford given amount. An account without a wallet can afford nothing.
func ensureSpendable(db vault.ReadOnlyKVStore, bank cash.Controller, addr vault.Address, amount coin.Coin) error {
	if amount.IsZero() {
		return nil
	}
	coins, err := bank.Balance(db, addr)
	if err != nil && !errors.ErrNotFound.Is(err) {
		return err
	}
	if !coins.Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s has %s, needs %s",
			addr, coins.Balance(amount.Ticker), amount)
	}
	return nil
}
