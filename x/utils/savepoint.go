package utils

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// Savepoint runs the rest of the stack on a cache of the store. The cache
// is written only if the call succeeds, so a failed transaction leaves no
// partial changes. Check and deliver are enabled separately.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ vault.Decorator = Savepoint{}

// NewSavepoint returns a disabled savepoint. Use OnCheck and OnDeliver to
// enable it.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Checker) (*vault.CheckResult, error) {
	var res *vault.CheckResult
	err := savepoint(db, s.onCheck, func(db vault.KVStore) (err error) {
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx, next vault.Deliverer) (*vault.DeliverResult, error) {
	var res *vault.DeliverResult
	err := savepoint(db, s.onDeliver, func(db vault.KVStore) (err error) {
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// savepoint calls fn with a cache of db when enabled and db can be cached.
// Otherwise fn works on db directly.
func savepoint(db vault.KVStore, enabled bool, fn func(vault.KVStore) error) error {
	cacheable, ok := db.(vault.CacheableKVStore)
	if !enabled || !ok {
		return fn(db)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return errors.Wrap(cache.Write(), "write savepoint")
}
