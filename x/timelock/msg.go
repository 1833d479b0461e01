package timelock

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/cdc"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x/cash"
)

func init() {
	cdc.RegisterConcrete(&CreateMsg{}, "timelock/create")
	cdc.RegisterConcrete(&DepositMsg{}, "timelock/deposit")
	cdc.RegisterConcrete(&WithdrawMsg{}, "timelock/withdraw")
	cdc.RegisterConcrete(&AbortWithdrawalMsg{}, "timelock/abort_withdrawal")
	cdc.RegisterConcrete(&CompleteWithdrawalMsg{}, "timelock/complete_withdrawal")
}

var (
	_ vault.Msg       = (*CreateMsg)(nil)
	_ cash.FeeCarrier = (*CreateMsg)(nil)
	_ vault.Msg       = (*DepositMsg)(nil)
	_ cash.FeeCarrier = (*DepositMsg)(nil)
	_ vault.Msg       = (*WithdrawMsg)(nil)
	_ cash.FeeCarrier = (*WithdrawMsg)(nil)
	_ vault.Msg       = (*AbortWithdrawalMsg)(nil)
	_ cash.FeeCarrier = (*AbortWithdrawalMsg)(nil)
	_ vault.Msg       = (*CompleteWithdrawalMsg)(nil)
	_ cash.FeeCarrier = (*CompleteWithdrawalMsg)(nil)
)

// CreateMsg creates a new time lock balance funded with the initial
// deposit. A zero deposit creates an empty balance of the deposit asset.
type CreateMsg struct {
	Metadata     *vault.Metadata    `json:"metadata"`
	Owner        vault.Address      `json:"owner"`
	Amount       *coin.Coin         `json:"amount"`
	ReviewPeriod vault.UnixDuration `json:"review_period"`
	Fee          *coin.Coin         `json:"fee"`
}

func (CreateMsg) Path() string {
	return "timelock/create"
}

func (m *CreateMsg) Marshal() ([]byte, error)   { return cdc.Marshal(m) }
func (m *CreateMsg) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, m) }

func (m *CreateMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "Amount", validateAmount(m.Amount, false))
	if m.ReviewPeriod <= 0 {
		errs = errors.Append(errs, errors.Field("ReviewPeriod", errors.ErrInput, "must be positive"))
	}
	errs = errors.AppendField(errs, "Fee", validateFee(m.Fee, true))
	return errs
}

func (m *CreateMsg) GetFee() *coin.Coin      { return m.Fee }
func (m *CreateMsg) FeePayer() vault.Address { return m.Owner }

// DepositMsg adds funds of the owner to an existing balance.
type DepositMsg struct {
	Metadata  *vault.Metadata `json:"metadata"`
	Owner     vault.Address   `json:"owner"`
	BalanceID []byte          `json:"balance_id"`
	Amount    *coin.Coin      `json:"amount"`
	Fee       *coin.Coin      `json:"fee"`
}

func (DepositMsg) Path() string {
	return "timelock/deposit"
}

func (m *DepositMsg) Marshal() ([]byte, error)   { return cdc.Marshal(m) }
func (m *DepositMsg) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, m) }

func (m *DepositMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "BalanceID", validateID(m.BalanceID))
	errs = errors.AppendField(errs, "Amount", validateAmount(m.Amount, true))
	errs = errors.AppendField(errs, "Fee", validateFee(m.Fee, true))
	return errs
}

func (m *DepositMsg) GetFee() *coin.Coin      { return m.Fee }
func (m *DepositMsg) FeePayer() vault.Address { return m.Owner }

// WithdrawMsg requests a withdrawal from a balance. No funds are moved
// until the withdrawal is completed.
type WithdrawMsg struct {
	Metadata  *vault.Metadata `json:"metadata"`
	Owner     vault.Address   `json:"owner"`
	BalanceID []byte          `json:"balance_id"`
	Amount    *coin.Coin      `json:"amount"`
	Recipient vault.Address   `json:"recipient"`
	Fee       *coin.Coin      `json:"fee"`
}

func (WithdrawMsg) Path() string {
	return "timelock/withdraw"
}

func (m *WithdrawMsg) Marshal() ([]byte, error)   { return cdc.Marshal(m) }
func (m *WithdrawMsg) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, m) }

func (m *WithdrawMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "BalanceID", validateID(m.BalanceID))
	errs = errors.AppendField(errs, "Amount", validateAmount(m.Amount, true))
	errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
	errs = errors.AppendField(errs, "Fee", validateFee(m.Fee, true))
	return errs
}

func (m *WithdrawMsg) GetFee() *coin.Coin      { return m.Fee }
func (m *WithdrawMsg) FeePayer() vault.Address { return m.Owner }

// AbortWithdrawalMsg deletes a pending withdrawal. It is allowed at any
// time before the withdrawal is completed.
type AbortWithdrawalMsg struct {
	Metadata     *vault.Metadata `json:"metadata"`
	Owner        vault.Address   `json:"owner"`
	WithdrawalID []byte          `json:"withdrawal_id"`
	Fee          *coin.Coin      `json:"fee,omitempty"`
}

func (AbortWithdrawalMsg) Path() string {
	return "timelock/abort_withdrawal"
}

func (m *AbortWithdrawalMsg) Marshal() ([]byte, error)   { return cdc.Marshal(m) }
func (m *AbortWithdrawalMsg) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, m) }

func (m *AbortWithdrawalMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "WithdrawalID", validateID(m.WithdrawalID))
	errs = errors.AppendField(errs, "Fee", validateFee(m.Fee, false))
	return errs
}

func (m *AbortWithdrawalMsg) GetFee() *coin.Coin      { return m.Fee }
func (m *AbortWithdrawalMsg) FeePayer() vault.Address { return m.Owner }

// CompleteWithdrawalMsg releases the funds of a withdrawal to its
// recipient. Recipient and amount must restate the requested values.
type CompleteWithdrawalMsg struct {
	Metadata *vault.Metadata `json:"metadata"`
	// Actor is either the balance owner or the withdrawal recipient.
	Actor        vault.Address `json:"actor"`
	WithdrawalID []byte        `json:"withdrawal_id"`
	Recipient    vault.Address `json:"recipient"`
	Amount       *coin.Coin    `json:"amount"`
	Fee          *coin.Coin    `json:"fee,omitempty"`
}

func (CompleteWithdrawalMsg) Path() string {
	return "timelock/complete_withdrawal"
}

func (m *CompleteWithdrawalMsg) Marshal() ([]byte, error)   { return cdc.Marshal(m) }
func (m *CompleteWithdrawalMsg) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, m) }

func (m *CompleteWithdrawalMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Actor", m.Actor.Validate())
	errs = errors.AppendField(errs, "WithdrawalID", validateID(m.WithdrawalID))
	errs = errors.AppendField(errs, "Recipient", m.Recipient.Validate())
	errs = errors.AppendField(errs, "Amount", validateAmount(m.Amount, true))
	errs = errors.AppendField(errs, "Fee", validateFee(m.Fee, false))
	return errs
}

func (m *CompleteWithdrawalMsg) GetFee() *coin.Coin      { return m.Fee }
func (m *CompleteWithdrawalMsg) FeePayer() vault.Address { return m.Actor }

func validateAmount(c *coin.Coin, positive bool) error {
	if c == nil {
		return errors.Wrap(errors.ErrEmpty, "amount")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if positive && !c.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "%s is not positive", c)
	}
	if !c.IsNonNegative() {
		return errors.Wrapf(errors.ErrAmount, "%s is negative", c)
	}
	return nil
}

func validateFee(fee *coin.Coin, required bool) error {
	if fee == nil {
		if required {
			return errors.Wrap(errors.ErrAmount, "fee required")
		}
		return nil
	}
	return validateAmount(fee, required)
}
