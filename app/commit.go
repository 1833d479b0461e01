package app

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// state holds the committed store together with the caches used by the
// check and the deliver phase of the current block.
type state struct {
	committed vault.CommitKVStore
	check     vault.KVCacheWrap
	deliver   vault.KVCacheWrap
}

func loadState(db vault.CommitKVStore) (*state, error) {
	if err := db.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	s := &state{committed: db}
	s.resetCaches()
	return s, nil
}

func (s *state) resetCaches() {
	s.check = s.committed.CacheWrap()
	s.deliver = s.committed.CacheWrap()
}

// commit persists the deliver cache. Check state changes are always
// dropped.
func (s *state) commit() (vault.CommitID, error) {
	s.check.Discard()
	if err := s.deliver.Write(); err != nil {
		return vault.CommitID{}, errors.Wrap(err, "write deliver cache")
	}
	id, err := s.committed.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	s.resetCaches()
	return id, nil
}

func (s *state) latest() (vault.CommitID, error) {
	return s.committed.LatestVersion()
}

// chainIDKey is stored outside of any bucket namespace.
var chainIDKey = []byte("_vt:chainID")

func loadChainID(db vault.ReadOnlyKVStore) (string, error) {
	raw, err := db.Get(chainIDKey)
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(raw), nil
}

// saveChainID writes the chain id. It can be done only once.
func saveChainID(db vault.KVStore, chainID string) error {
	if !vault.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}
	switch ok, err := db.Has(chainIDKey); {
	case err != nil:
		return errors.Wrap(err, "load chain id")
	case ok:
		return errors.Wrap(errors.ErrUnauthorized, "chain id is set at genesis only")
	}
	return errors.Wrap(db.Set(chainIDKey, []byte(chainID)), "save chain id")
}
