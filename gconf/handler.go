package gconf

import (
	"reflect"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x"
)

// OwnedConfig is a configuration that only its owner can update.
type OwnedConfig interface {
	Configuration
	GetOwner() vault.Address
}

// PatchMsg is a message carrying a configuration patch. Nil patch means
// the message is empty.
type PatchMsg interface {
	vault.Msg
	ConfigPatch() OwnedConfig
}

// UpdateConfigurationHandler applies patches to a configuration created
// at genesis. Every non zero field of a patch replaces the stored value.
// The transaction must be signed by the current owner.
type UpdateConfigurationHandler struct {
	pkg       string
	auth      x.Authenticator
	newConfig func() OwnedConfig
}

var _ vault.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler returns a handler for the configuration of
// given package. newConfig must return a pointer to a zero configuration
// of the type the patches carry.
func NewUpdateConfigurationHandler(pkg string, auth x.Authenticator, newConfig func() OwnedConfig) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{pkg: pkg, auth: auth, newConfig: newConfig}
}

func (h UpdateConfigurationHandler) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	if err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &vault.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	if err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &vault.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) apply(ctx vault.Context, db vault.KVStore, tx vault.Tx) error {
	conf := h.newConfig()
	if err := Load(db, h.pkg, conf); err != nil {
		return errors.Wrap(err, "load configuration")
	}
	switch owner := conf.GetOwner(); {
	case owner == nil:
		return errors.Wrap(errors.ErrUnauthorized, "configuration has no owner")
	case !h.auth.HasAddress(ctx, owner):
		return errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}

	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "message")
	}
	pm, ok := msg.(PatchMsg)
	if !ok {
		return errors.Wrapf(errors.ErrMsg, "%T does not carry a configuration patch", msg)
	}
	if err := pm.Validate(); err != nil {
		return errors.Wrap(err, "message")
	}
	p := pm.ConfigPatch()
	if p == nil || reflect.ValueOf(p).IsNil() {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	if err := applyPatch(conf, p); err != nil {
		return err
	}
	return errors.Wrap(Save(db, h.pkg, conf), "save configuration")
}

// applyPatch copies all non zero fields of p into conf. Both must be
// pointers to the same struct type.
func applyPatch(conf, p OwnedConfig) error {
	if reflect.TypeOf(conf) != reflect.TypeOf(p) {
		return errors.Wrapf(errors.ErrMsg, "patch of type %T cannot update %T", p, conf)
	}
	dst := reflect.ValueOf(conf).Elem()
	src := reflect.ValueOf(p).Elem()
	for i := 0; i < src.NumField(); i++ {
		if f := src.Field(i); !f.IsZero() {
			dst.Field(i).Set(f)
		}
	}
	return nil
}
