package cash

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/cdc"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/gconf"
)

func init() {
	cdc.RegisterConcrete(&SendMsg{}, "cash/send")
	cdc.RegisterConcrete(&UpdateConfigurationMsg{}, "cash/update_configuration")
}

const maxMemoSize int = 128

// SendMsg moves coins from the source wallet to the destination wallet.
type SendMsg struct {
	Metadata    *vault.Metadata `json:"metadata"`
	Source      vault.Address   `json:"source"`
	Destination vault.Address   `json:"destination"`
	Amount      *coin.Coin      `json:"amount"`
	Memo        string          `json:"memo,omitempty"`
	Fee         *coin.Coin      `json:"fee,omitempty"`
}

var _ vault.Msg = (*SendMsg)(nil)
var _ FeeCarrier = (*SendMsg)(nil)

func (SendMsg) Path() string {
	return "cash/send"
}

func (m *SendMsg) Marshal() ([]byte, error)   { return cdc.Marshal(m) }
func (m *SendMsg) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, m) }

func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if coin.IsEmpty(m.Amount) || !m.Amount.IsPositive() {
		errs = errors.Append(errs, errors.Field("Amount", errors.ErrAmount, "must be positive"))
	} else {
		errs = errors.AppendField(errs, "Amount", m.Amount.Validate())
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.Append(errs, errors.Field("Memo", errors.ErrInput, "memo too long"))
	}
	errs = errors.AppendField(errs, "Fee", validateFee(m.Fee))
	return errs
}

func (m *SendMsg) GetFee() *coin.Coin      { return m.Fee }
func (m *SendMsg) FeePayer() vault.Address { return m.Source }

// validateFee accepts a missing fee. A declared fee must be a valid,
// non-negative amount.
func validateFee(fee *coin.Coin) error {
	if fee == nil {
		return nil
	}
	if err := fee.Validate(); err != nil {
		return err
	}
	if !fee.IsNonNegative() {
		return errors.Wrap(errors.ErrAmount, "negative fee")
	}
	return nil
}

// UpdateConfigurationMsg patches the cash configuration. It must be signed
// by the current configuration owner.
type UpdateConfigurationMsg struct {
	Metadata *vault.Metadata `json:"metadata"`
	Patch    *Configuration  `json:"patch"`
}

var _ gconf.PatchMsg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return "cash/update_configuration"
}

func (m *UpdateConfigurationMsg) Marshal() ([]byte, error)   { return cdc.Marshal(m) }
func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, m) }

func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return m.Patch.validatePatch()
}

func (m *UpdateConfigurationMsg) ConfigPatch() gconf.OwnedConfig {
	if m.Patch == nil {
		return nil
	}
	return m.Patch
}
