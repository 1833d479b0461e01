package orm

import (
	"bytes"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// Register adds the bucket query handler under "/<name>" and a handler
// for every index under "/<name>/<index>". Returned models are keyed by
// the entity key.
func (b *ModelBucket[T, P]) Register(name string, r vault.QueryRouter) {
	root := "/" + name
	r.Register(root, bucketQuery[T, P]{b: b})
	for _, ixName := range b.indexNames() {
		r.Register(root+"/"+ixName, indexQuery[T, P]{b: b, ix: b.indexes[ixName]})
	}
}

type bucketQuery[T any, P ModelPtr[T]] struct {
	b *ModelBucket[T, P]
}

func (q bucketQuery[T, P]) Query(db vault.ReadOnlyKVStore, mod string, data []byte) ([]vault.Model, error) {
	switch mod {
	case vault.KeyQueryMod:
		value, err := db.Get(q.b.DBKey(data))
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		return []vault.Model{vault.Pair(data, value)}, nil
	case vault.PrefixQueryMod:
		prefix := q.b.DBKey(data)
		it, err := db.Iterator(prefix, prefixEnd(prefix))
		if err != nil {
			return nil, err
		}
		defer it.Release()
		var res []vault.Model
		for {
			key, value, err := it.Next()
			if errors.ErrIteratorDone.Is(err) {
				return res, nil
			}
			if err != nil {
				return nil, err
			}
			res = append(res, vault.Pair(key[len(q.b.prefix):], value))
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

type indexQuery[T any, P ModelPtr[T]] struct {
	b  *ModelBucket[T, P]
	ix *nativeIndex[P]
}

// Query with the key mod returns entities indexed under the exact value.
// The prefix mod returns entities which indexed value starts with given
// data, ordered by the value.
func (q indexQuery[T, P]) Query(db vault.ReadOnlyKVStore, mod string, data []byte) ([]vault.Model, error) {
	var (
		keys [][]byte
		err  error
	)
	switch mod {
	case vault.KeyQueryMod:
		keys, err = q.ix.keys(db, data)
	case vault.PrefixQueryMod:
		keys, err = q.prefixKeys(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
	if err != nil {
		return nil, err
	}
	res := make([]vault.Model, 0, len(keys))
	for _, key := range keys {
		value, err := db.Get(q.b.DBKey(key))
		if err != nil {
			return nil, err
		}
		res = append(res, vault.Pair(key, value))
	}
	return res, nil
}

func (q indexQuery[T, P]) prefixKeys(db vault.ReadOnlyKVStore, prefix []byte) ([][]byte, error) {
	keys, err := q.ix.rangeKeys(db, nil, nil)
	if err != nil {
		return nil, err
	}
	var res [][]byte
	for _, key := range keys {
		m, err := q.b.One(db, key)
		if err != nil {
			return nil, err
		}
		val, err := q.ix.indexer(m)
		if err != nil {
			return nil, err
		}
		if bytes.HasPrefix(val, prefix) {
			res = append(res, key)
		}
	}
	return res, nil
}

// RegisterQuery registers a raw database query under "/". Keys are full
// database keys, including the bucket prefix.
func RegisterQuery(qr vault.QueryRouter) {
	qr.Register("/", rawQuery{})
}

type rawQuery struct{}

func (rawQuery) Query(db vault.ReadOnlyKVStore, mod string, data []byte) ([]vault.Model, error) {
	switch mod {
	case vault.KeyQueryMod:
		value, err := db.Get(data)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		return []vault.Model{vault.Pair(data, value)}, nil
	case vault.PrefixQueryMod:
		it, err := db.Iterator(data, prefixEnd(data))
		if err != nil {
			return nil, err
		}
		defer it.Release()
		var res []vault.Model
		for {
			key, value, err := it.Next()
			if errors.ErrIteratorDone.Is(err) {
				return res, nil
			}
			if err != nil {
				return nil, err
			}
			res = append(res, vault.Pair(key, value))
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}
