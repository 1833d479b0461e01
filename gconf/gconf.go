package gconf

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// ReadStore is the part of vault.ReadOnlyKVStore needed to load a
// configuration.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is the part of vault.KVStore needed to save a configuration.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is implemented by all configuration entities.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

// dbKey returns the key of the configuration singleton of a package.
func dbKey(pkg string) []byte {
	return append([]byte("_c:"), pkg...)
}

// Save validates and stores the configuration of given package.
func Save(db Store, pkg string, src ValidMarshaler) error {
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "%s configuration", pkg)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal %s configuration", pkg)
	}
	return db.Set(dbKey(pkg), raw)
}

// Load reads the configuration of given package into dst. ErrNotFound is
// returned if none was saved.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	raw, err := db.Get(dbKey(pkg))
	switch {
	case err != nil:
		return err
	case raw == nil:
		return errors.Wrapf(errors.ErrNotFound, "%s configuration", pkg)
	}
	return errors.Wrapf(dst.Unmarshal(raw), "unmarshal %s configuration", pkg)
}

// InitConfig loads the configuration of a package from the genesis
// "conf" section, under the package name, and saves it.
func InitConfig(db Store, opts vault.Options, pkg string, conf Configuration) error {
	var all vault.Options
	if err := opts.ReadOptions("conf", &all); err != nil {
		return errors.Wrap(err, "genesis conf")
	}
	if _, ok := all[pkg]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "genesis has no %s configuration", pkg)
	}
	if err := all.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "genesis %s configuration", pkg)
	}
	return Save(db, pkg, conf)
}
