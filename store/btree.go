package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/vault/errors"
)

const btreeDegree = 2

// MemStore returns an in memory store without a backing layer. Nothing is
// persisted.
func MemStore() CacheableKVStore {
	return NewBTreeCacheWrap(EmptyKVStore{}, nil)
}

// BTreeCacheWrap keeps all changes in an ordered btree on top of a parent
// store. Deletes are recorded as tombstones so that they shadow the parent
// until the cache is written.
type BTreeCacheWrap struct {
	bt     *btree.BTree
	free   *btree.FreeList
	parent KVStore
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns a cache over given store. Free list can be
// nil. Nested caches share the free list of their parent.
func NewBTreeCacheWrap(parent KVStore, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(btree.DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:     btree.NewWithFreeList(btreeDegree, free),
		free:   free,
		parent: parent,
	}
}

func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.free)
}

// Write applies all changes to the parent in key order and empties the
// cache. The first failure stops the write.
func (b BTreeCacheWrap) Write() error {
	var err error
	b.bt.Ascend(func(i btree.Item) bool {
		e := i.(entry)
		if e.deleted {
			err = b.parent.Delete(e.key)
		} else {
			err = b.parent.Set(e.key, e.value)
		}
		return err == nil
	})
	if err != nil {
		return errors.Wrap(err, "write cache")
	}
	b.Discard()
	return nil
}

// Discard drops all changes.
func (b BTreeCacheWrap) Discard() {
	b.bt.Clear(true)
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(entry{key: key, value: value})
	return nil
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(entry{key: key, deleted: true})
	return nil
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	e, ok := b.lookup(key)
	if !ok {
		return b.parent.Get(key)
	}
	if e.deleted {
		return nil, nil
	}
	return e.value, nil
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	e, ok := b.lookup(key)
	if !ok {
		return b.parent.Has(key)
	}
	return !e.deleted, nil
}

func (b BTreeCacheWrap) lookup(key []byte) (entry, bool) {
	i := b.bt.Get(entry{key: key})
	if i == nil {
		return entry{}, false
	}
	return i.(entry), true
}

// Iterator returns the merged content of the cache and the parent within
// [start, end) in ascending key order. Nil bounds are open.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(b.entries(start, end), parent, true), nil
}

// ReverseIterator is Iterator in descending key order.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.parent.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	cached := b.entries(start, end)
	for i, j := 0, len(cached)-1; i < j; i, j = i+1, j-1 {
		cached[i], cached[j] = cached[j], cached[i]
	}
	return newMergeIterator(cached, parent, false), nil
}

// entries returns cached entries within [start, end) in ascending order.
func (b BTreeCacheWrap) entries(start, end []byte) []entry {
	var res []entry
	collect := func(i btree.Item) bool {
		res = append(res, i.(entry))
		return true
	}
	switch {
	case start == nil && end == nil:
		b.bt.Ascend(collect)
	case start == nil:
		b.bt.AscendLessThan(entry{key: end}, collect)
	case end == nil:
		b.bt.AscendGreaterOrEqual(entry{key: start}, collect)
	default:
		b.bt.AscendRange(entry{key: start}, entry{key: end}, collect)
	}
	return res
}

// entry is a cached change. A deleted entry is a tombstone.
type entry struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = entry{}

func (e entry) Less(than btree.Item) bool {
	return bytes.Compare(e.key, than.(entry).key) < 0
}
