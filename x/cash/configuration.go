package cash

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/cdc"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/gconf"
)

const pkgName = "cash"

// Configuration is stored under the "cash" gconf key.
type Configuration struct {
	Metadata *vault.Metadata `json:"metadata"`
	// Owner is allowed to update the configuration.
	Owner vault.Address `json:"owner"`
	// CollectorAddress receives all collected fees.
	CollectorAddress vault.Address `json:"collector_address"`
	// MsgFees declares the minimal fee required for a message path.
	// Paths that are not listed require no fee.
	MsgFees []MsgFee `json:"msg_fees"`
}

// MsgFee is the minimal fee for all messages of given path.
type MsgFee struct {
	MsgPath string    `json:"msg_path"`
	Fee     coin.Coin `json:"fee"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Marshal() ([]byte, error)   { return cdc.Marshal(c) }
func (c *Configuration) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, c) }

func (c *Configuration) GetOwner() vault.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	errs = errors.AppendField(errs, "CollectorAddress", c.CollectorAddress.Validate())
	errs = errors.AppendField(errs, "MsgFees", validateMsgFees(c.MsgFees))
	return errs
}

// validatePatch is less strict than Validate, because only the non zero
// fields of a patch are applied.
func (c *Configuration) validatePatch() error {
	var errs error
	if c.Metadata != nil {
		errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	}
	if c.Owner != nil {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	if c.CollectorAddress != nil {
		errs = errors.AppendField(errs, "CollectorAddress", c.CollectorAddress.Validate())
	}
	errs = errors.AppendField(errs, "MsgFees", validateMsgFees(c.MsgFees))
	return errs
}

func validateMsgFees(fees []MsgFee) error {
	seen := make(map[string]struct{}, len(fees))
	for i, f := range fees {
		if err := vault.ValidatePath(f.MsgPath); err != nil {
			return errors.Wrapf(err, "fee #%d", i)
		}
		if _, ok := seen[f.MsgPath]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "fee #%d: path %q", i, f.MsgPath)
		}
		seen[f.MsgPath] = struct{}{}
		if err := f.Fee.Validate(); err != nil {
			return errors.Wrapf(err, "fee #%d", i)
		}
		if !f.Fee.IsNonNegative() {
			return errors.Wrapf(errors.ErrAmount, "fee #%d: negative", i)
		}
	}
	return nil
}

// MinimalFee returns the fee required for given message path. A zero coin
// is returned when no fee is configured.
func (c *Configuration) MinimalFee(path string) coin.Coin {
	for _, f := range c.MsgFees {
		if f.MsgPath == path {
			return f.Fee
		}
	}
	return coin.Coin{}
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, pkgName, &conf); err != nil {
		return nil, errors.Wrap(err, "load cash configuration")
	}
	return &conf, nil
}
