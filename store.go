package vault

// ReadOnlyKVStore reads a key value database. Nil keys are not allowed.
type ReadOnlyKVStore interface {
	// Get returns nil if the key does not exist.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// Iterator walks keys in [start, end) in ascending order. Nil bounds
	// are open. The range must not be written to while iterating.
	Iterator(start, end []byte) (Iterator, error)

	// ReverseIterator walks keys in [start, end) in descending order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter writes to a store or a batch. Keys and values passed in must
// not be modified afterwards.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the store every handler works on.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
}

// Iterator returns key value pairs one by one. Release must always be
// called.
//
//	it, err := db.Iterator(start, end)
//	...
//	defer it.Release()
//	for {
//		key, value, err := it.Next()
//		if errors.ErrIteratorDone.Is(err) {
//			break
//		}
//		...
//	}
type Iterator interface {
	// Next returns errors.ErrIteratorDone after the last pair.
	Next() (key, value []byte, err error)
	Release()
}

// CacheableKVStore can buffer writes in a cache wrap.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap buffers writes on top of another store. Reads see the
// buffered writes. Write flushes them to the parent and Discard drops
// them.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore is the versioned root store. Changes are made through a
// cache wrap and persisted by Commit.
type CommitKVStore interface {
	// Get reads the last committed state.
	Get(key []byte) ([]byte, error)
	CacheWrap() KVCacheWrap

	// Commit persists the pending changes as a new version.
	Commit() (CommitID, error)

	// LoadLatestVersion restores the latest complete version. A commit
	// interrupted by a crash is discarded.
	LoadLatestVersion() error
	LatestVersion() (CommitID, error)
}

// CommitID identifies a committed version by its height and merkle root.
type CommitID struct {
	Version int64
	Hash    []byte
}
