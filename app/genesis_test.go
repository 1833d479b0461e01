package app

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/vaulttest/assert"
)

const dummyKey = "dummy"

type dummyInit struct{}

func (dummyInit) FromGenesis(opts vault.Options, kv vault.KVStore) error {
	var value string
	if err := opts.ReadOptions(dummyKey, &value); err != nil {
		return err
	}
	if value == "" {
		return nil
	}
	return kv.Set([]byte(dummyKey), []byte(value))
}

type countInit struct {
	called int
	err    error
}

func (c *countInit) FromGenesis(opts vault.Options, kv vault.KVStore) error {
	c.called++
	return c.err
}

func TestChainInitializers(t *testing.T) {
	first, second := &countInit{}, &countInit{}
	init := ChainInitializers(first, dummyInit{}, second)

	db := store.MemStore()
	opts := vault.Options{dummyKey: json.RawMessage(`"value"`)}
	assert.Nil(t, init.FromGenesis(opts, db))
	assert.Equal(t, 1, first.called)
	assert.Equal(t, 1, second.called)
	v, err := db.Get([]byte(dummyKey))
	assert.Nil(t, err)
	assert.Equal(t, []byte("value"), v)

	// the first failure stops the initialization
	failing := &countInit{err: errors.ErrState}
	after := &countInit{}
	err = ChainInitializers(failing, after).FromGenesis(opts, db)
	assert.IsErr(t, errors.ErrState, err)
	assert.Equal(t, 0, after.called)

	// malformed options
	err = init.FromGenesis(vault.Options{dummyKey: json.RawMessage(`[1]`)}, db)
	assert.IsErr(t, errors.ErrInput, err)
}

func TestLoadGenesis(t *testing.T) {
	dir, err := ioutil.TempDir("", "genesis")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "genesis.json")
	content := `{"chain_id": "test-chain", "app_state": {"dummy": "abc"}}`
	assert.Nil(t, ioutil.WriteFile(path, []byte(content), 0600))

	gen, err := LoadGenesis(path)
	assert.Nil(t, err)
	assert.Equal(t, "test-chain", gen.ChainID)
	assert.Equal(t, json.RawMessage(`"abc"`), gen.AppState[dummyKey])

	_, err = LoadGenesis(filepath.Join(dir, "missing.json"))
	assert.IsErr(t, errors.ErrInput, err)
}
