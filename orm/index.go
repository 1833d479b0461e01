package orm

import (
	"bytes"
	"math"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

const nativeIdxPrefix = "_x."

// Chunk lengths are stored in a single byte. The highest value is never a
// length and terminates range scans.
const (
	maxChunkLen = math.MaxUint8 - 1
	rangeEnd    = math.MaxUint8
)

// nativeIndex is a secondary index kept in the database key space. Every
// indexed entity has an empty value stored under
//
//	_x.<len>name<len>value<len>pk
type nativeIndex[P any] struct {
	name    string
	indexer Indexer[P]
	unique  bool
}

// update moves the index entry of pk from prev to next. A nil value means
// no entry.
func (ix *nativeIndex[P]) update(db vault.KVStore, pk []byte, prev, next []byte) error {
	if prev != nil && bytes.Equal(prev, next) {
		return nil
	}
	if prev != nil {
		key, err := ix.dbKey(prev, pk)
		if err != nil {
			return err
		}
		if err := db.Delete(key); err != nil {
			return errors.Wrapf(err, "delete %s entry", ix.name)
		}
	}
	if next == nil {
		return nil
	}
	key, err := ix.dbKey(next, pk)
	if err != nil {
		return err
	}
	return errors.Wrapf(db.Set(key, []byte{}), "set %s entry", ix.name)
}

// dbKey returns the database key of the entry indexing pk under value.
func (ix *nativeIndex[P]) dbKey(value, pk []byte) ([]byte, error) {
	return packNativeIdxKey([][]byte{[]byte(ix.name), value, pk})
}

// keys returns the primary keys indexed under value.
func (ix *nativeIndex[P]) keys(db vault.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	prefix, err := packNativeIdxKey([][]byte{[]byte(ix.name), value})
	if err != nil {
		return nil, err
	}
	return ix.primaryKeys(db, prefix, indexPrefixEnd(prefix))
}

// rangeKeys returns the primary keys with an indexed value in [from, to),
// in key order. A nil bound is open. Values of different lengths do not
// sort by value because the length is stored first.
func (ix *nativeIndex[P]) rangeKeys(db vault.ReadOnlyKVStore, from, to []byte) ([][]byte, error) {
	prefix, err := packNativeIdxKey([][]byte{[]byte(ix.name)})
	if err != nil {
		return nil, err
	}
	start, end := prefix, indexPrefixEnd(prefix)
	if from != nil {
		if start, err = packNativeIdxKey([][]byte{[]byte(ix.name), from}); err != nil {
			return nil, errors.Wrap(err, "from")
		}
	}
	if to != nil {
		if end, err = packNativeIdxKey([][]byte{[]byte(ix.name), to}); err != nil {
			return nil, errors.Wrap(err, "to")
		}
	}
	return ix.primaryKeys(db, start, end)
}

// entries returns every raw key of the index.
func (ix *nativeIndex[P]) entries(db vault.ReadOnlyKVStore) (map[string]struct{}, error) {
	prefix, err := packNativeIdxKey([][]byte{[]byte(ix.name)})
	if err != nil {
		return nil, err
	}
	res := make(map[string]struct{})
	err = eachKey(db, prefix, indexPrefixEnd(prefix), func(key []byte) error {
		res[string(key)] = struct{}{}
		return nil
	})
	return res, err
}

func (ix *nativeIndex[P]) primaryKeys(db vault.ReadOnlyKVStore, start, end []byte) ([][]byte, error) {
	var res [][]byte
	err := eachKey(db, start, end, func(key []byte) error {
		chunks, err := unpackNativeIdxKey(key)
		if err != nil {
			return err
		}
		if len(chunks) != 3 {
			return errors.Wrapf(errors.ErrState, "%s entry %X has %d chunks", ix.name, key, len(chunks))
		}
		res = append(res, chunks[2])
		return nil
	})
	return res, err
}

// eachKey calls fn for every key in [start, end).
func eachKey(db vault.ReadOnlyKVStore, start, end []byte, fn func(key []byte) error) error {
	it, err := db.Iterator(start, end)
	if err != nil {
		return errors.Wrap(err, "iterator")
	}
	defer it.Release()
	for {
		key, _, err := it.Next()
		switch {
		case errors.ErrIteratorDone.Is(err):
			return nil
		case err != nil:
			return err
		}
		if err := fn(key); err != nil {
			return err
		}
	}
}

// indexPrefixEnd returns a key greater than any index key starting with
// prefix. Every chunk length is below rangeEnd.
func indexPrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix), len(prefix)+1)
	copy(end, prefix)
	return append(end, rangeEnd)
}

// packNativeIdxKey joins chunks into an index key, each chunk prefixed by
// its length. For "aaa", "" and "c" the key is "_x.\x03aaa\x00\x01c".
func packNativeIdxKey(chunks [][]byte) ([]byte, error) {
	size := len(nativeIdxPrefix)
	for _, c := range chunks {
		if len(c) > maxChunkLen {
			return nil, errors.Wrapf(errors.ErrInput, "index chunk of %d bytes, max is %d", len(c), maxChunkLen)
		}
		size += 1 + len(c)
	}
	key := make([]byte, 0, size)
	key = append(key, nativeIdxPrefix...)
	for _, c := range chunks {
		key = append(key, byte(len(c)))
		key = append(key, c...)
	}
	return key, nil
}

// unpackNativeIdxKey reverses packNativeIdxKey.
func unpackNativeIdxKey(key []byte) ([][]byte, error) {
	rest := bytes.TrimPrefix(key, []byte(nativeIdxPrefix))
	if len(rest) == len(key) {
		return nil, errors.Wrapf(errors.ErrInput, "%X is not an index key", key)
	}
	var chunks [][]byte
	for len(rest) > 0 {
		n := int(rest[0]) + 1
		if len(rest) < n {
			return nil, errors.Wrapf(errors.ErrInput, "index key %X is truncated", key)
		}
		chunks = append(chunks, rest[1:n])
		rest = rest[n:]
	}
	return chunks, nil
}
