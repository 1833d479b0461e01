package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/vaulttest/assert"
)

func TestTreeAdapter(t *testing.T) {
	store.RunStoreSuite(t, func() (store.CacheableKVStore, func()) {
		return NewMemCommitStore().Adapter(), func() {}
	})
}

func TestCommitStoreVersions(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "iavl-commit-")
	assert.Nil(t, err)
	defer os.RemoveAll(tmpDir)

	commit, err := NewCommitStore(tmpDir, "state")
	assert.Nil(t, err)
	assert.Nil(t, commit.LoadLatestVersion())

	id, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id.Version)

	k, v := []byte("key"), []byte("value")
	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set(k, v))
	assert.Nil(t, cache.Write())

	// nothing is visible in committed state before commit
	got, err := commit.Get(k)
	assert.Nil(t, err)
	assert.Nil(t, got)

	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	if len(id.Hash) == 0 {
		t.Fatal("missing commit hash")
	}

	got, err = commit.Get(k)
	assert.Nil(t, err)
	assert.Equal(t, v, got)

	// a discarded cache leaves no trace
	cache = commit.CacheWrap()
	assert.Nil(t, cache.Delete(k))
	cache.Discard()
	id2, err := commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), id2.Version)
	assert.Equal(t, id.Hash, id2.Hash)
}
