package app

import (
	"bytes"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	abci "github.com/tendermint/tendermint/abci/types"
)

// ABCIStore reads the committed state of an application through its
// Query method. Keys are raw database keys, bucket prefix included.
type ABCIStore struct {
	app abci.Application
}

var _ vault.ReadOnlyKVStore = (*ABCIStore)(nil)

func NewABCIStore(app abci.Application) *ABCIStore {
	return &ABCIStore{app: app}
}

// Get returns the value of key or nil if it does not exist.
func (a *ABCIStore) Get(key []byte) ([]byte, error) {
	models, err := a.query("/", key)
	if err != nil {
		return nil, err
	}
	switch len(models) {
	case 0:
		return nil, nil
	case 1:
		return models[0].Value, nil
	default:
		return nil, errors.Wrapf(errors.ErrState, "%d values for key %X", len(models), key)
	}
}

func (a *ABCIStore) Has(key []byte) (bool, error) {
	models, err := a.query("/", key)
	return len(models) != 0, err
}

// Iterator loads the whole state and returns the models within
// [start, end) in ascending key order.
func (a *ABCIStore) Iterator(start, end []byte) (vault.Iterator, error) {
	models, err := a.between(start, end)
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(models), nil
}

// ReverseIterator is Iterator in descending key order.
func (a *ABCIStore) ReverseIterator(start, end []byte) (vault.Iterator, error) {
	models, err := a.between(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return store.NewSliceIterator(models), nil
}

func (a *ABCIStore) between(start, end []byte) ([]vault.Model, error) {
	all, err := a.query("/?prefix", nil)
	if err != nil {
		return nil, err
	}
	res := all[:0]
	for _, m := range all {
		if start != nil && bytes.Compare(m.Key, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(m.Key, end) >= 0 {
			continue
		}
		res = append(res, m)
	}
	return res, nil
}

func (a *ABCIStore) query(path string, data []byte) ([]vault.Model, error) {
	res := a.app.Query(abci.RequestQuery{Path: path, Data: data})
	if res.Code != errors.SuccessABCICode {
		return nil, errors.Wrapf(errors.ErrDatabase, "query %s: code %d: %s", path, res.Code, res.Log)
	}
	return toModels(res.Key, res.Value)
}
