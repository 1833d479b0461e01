package store

import (
	"testing"

	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/vaulttest/assert"
)

func TestBTreeCacheWrap(t *testing.T) {
	RunStoreSuite(t, func() (CacheableKVStore, func()) {
		return MemStore(), func() {}
	})
}

func TestMergeIteratorShadowsParent(t *testing.T) {
	base := MemStore()
	for _, k := range []string{"a", "b", "c", "d"} {
		assert.Nil(t, base.Set([]byte(k), []byte("parent")))
	}
	cache := base.CacheWrap()
	assert.Nil(t, cache.Delete([]byte("a")))
	assert.Nil(t, cache.Set([]byte("b"), []byte("cache")))
	assert.Nil(t, cache.Delete([]byte("d")))
	assert.Nil(t, cache.Set([]byte("e"), []byte("cache")))

	it, err := cache.ReverseIterator(nil, nil)
	assert.Nil(t, err)
	models, err := ReadAll(it)
	assert.Nil(t, err)
	assert.Equal(t, []Model{
		Pair([]byte("e"), []byte("cache")),
		Pair([]byte("c"), []byte("parent")),
		Pair([]byte("b"), []byte("cache")),
	}, models)
}

func TestEmptyIterator(t *testing.T) {
	it, err := MemStore().ReverseIterator(nil, nil)
	assert.Nil(t, err)
	_, _, err = it.Next()
	assert.IsErr(t, errors.ErrIteratorDone, err)
	it.Release()
}
