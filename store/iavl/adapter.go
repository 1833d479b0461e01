package iavl

import (
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of tree nodes kept in memory.
const DefaultCacheSize = 10000

// CommitStore manages an iavl committed state.
type CommitStore struct {
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with disk backing in the given
// directory. The name is used as the database name.
func NewCommitStore(path, name string) (CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, path)
	if err != nil {
		return CommitStore{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return NewCommitStoreFromDB(db), nil
}

// NewMemCommitStore returns a store that never touches the disk. Useful
// for tests.
func NewMemCommitStore() CommitStore {
	return NewCommitStoreFromDB(dbm.NewMemDB())
}

// NewCommitStoreFromDB builds a store on top of any tendermint database.
func NewCommitStoreFromDB(db dbm.DB) CommitStore {
	return CommitStore{tree: iavl.NewMutableTree(db, DefaultCacheSize)}
}

// Get reads the last saved version. Changes made through CacheWrap are
// not visible before Commit.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrapf(errors.ErrDatabase, "save version: %s", err)
	}
	return store.CommitID{Version: version, Hash: hash}, nil
}

// LoadLatestVersion loads the newest complete version from disk.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "load tree: %s", err)
	}
	return nil
}

func (s CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{Version: s.tree.Version(), Hash: s.tree.Hash()}, nil
}

// CacheWrap buffers changes for the working tree. Writing the cache
// updates the tree, Commit saves it.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(s.Adapter(), nil)
}

// Adapter returns the working tree as a store.
func (s CommitStore) Adapter() TreeAdapter {
	return TreeAdapter{tree: s.tree}
}

// TreeAdapter reads and writes the uncommitted working tree.
type TreeAdapter struct {
	tree *iavl.MutableTree
}

var _ store.CacheableKVStore = TreeAdapter{}

func (a TreeAdapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

func (a TreeAdapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

func (a TreeAdapter) Set(key, value []byte) error {
	a.tree.Set(key, value)
	return nil
}

func (a TreeAdapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

func (a TreeAdapter) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(a, nil)
}

func (a TreeAdapter) Iterator(start, end []byte) (store.Iterator, error) {
	return a.collect(start, end, true), nil
}

func (a TreeAdapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return a.collect(start, end, false), nil
}

// collect loads the range up front, so the tree can be modified while the
// iterator is in use.
func (a TreeAdapter) collect(start, end []byte, ascending bool) store.Iterator {
	var models []store.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) (stop bool) {
		models = append(models, store.Pair(key, value))
		return false
	})
	return store.NewSliceIterator(models)
}
