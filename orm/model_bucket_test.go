package orm

import (
	"testing"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/cdc"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/vaulttest/assert"
)

type counter struct {
	Owner []byte
	Name  string
	Count int64
}

func (c *counter) Marshal() ([]byte, error) { return cdc.Marshal(c) }
func (c *counter) Unmarshal(raw []byte) error { return cdc.Unmarshal(raw, c) }

func (c *counter) Validate() error {
	if len(c.Owner) == 0 {
		return errors.Wrap(errors.ErrEmpty, "owner")
	}
	if c.Count < 0 {
		return errors.Wrap(errors.ErrInput, "negative count")
	}
	return nil
}

func newCounterBucket() *ModelBucket[counter, *counter] {
	return NewModelBucket[counter]("counters").
		WithIndex("owner", func(c *counter) ([]byte, error) {
			return c.Owner, nil
		}, false).
		WithIndex("count", func(c *counter) ([]byte, error) {
			return EncodeSequence(c.Count), nil
		}, false).
		WithIndex("name", func(c *counter) ([]byte, error) {
			if c.Name == "" {
				return nil, nil
			}
			return []byte(c.Name), nil
		}, true)
}

func TestModelBucketLifecycle(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	k1, err := b.Put(db, nil, &counter{Owner: []byte("alice"), Count: 5})
	assert.Nil(t, err)
	assert.Equal(t, EncodeSequence(1), k1)
	k2, err := b.Put(db, nil, &counter{Owner: []byte("bob"), Count: 3, Name: "b"})
	assert.Nil(t, err)
	assert.Equal(t, EncodeSequence(2), k2)
	assert.Nil(t, b.VerifyIndexes(db))

	got, err := b.One(db, k1)
	assert.Nil(t, err)
	assert.Equal(t, int64(5), got.Count)

	ok, err := b.Has(db, k2)
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	keys, err := b.IndexKeys(db, "owner", []byte("alice"))
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{k1}, keys)

	// moving the entity to another owner must move the index entry
	_, err = b.Update(db, k1, func(c *counter) error {
		c.Owner = []byte("bob")
		c.Count++
		return nil
	})
	assert.Nil(t, err)
	assert.Nil(t, b.VerifyIndexes(db))

	keys, err = b.IndexKeys(db, "owner", []byte("alice"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(keys))
	keys, err = b.IndexKeys(db, "owner", []byte("bob"))
	assert.Nil(t, err)
	assert.Equal(t, [][]byte{k1, k2}, keys)

	// failing update does not write anything
	_, err = b.Update(db, k1, func(c *counter) error {
		c.Count = 100
		return errors.ErrState
	})
	assert.IsErr(t, errors.ErrState, err)
	got, err = b.One(db, k1)
	assert.Nil(t, err)
	assert.Equal(t, int64(6), got.Count)

	assert.Nil(t, b.Delete(db, k2))
	assert.Nil(t, b.VerifyIndexes(db))
	_, err = b.One(db, k2)
	assert.IsErr(t, errors.ErrNotFound, err)
	assert.IsErr(t, errors.ErrNotFound, b.Delete(db, k2))

	// explicit keys do not touch the sequence
	_, err = b.Put(db, []byte("custom"), &counter{Owner: []byte("carol")})
	assert.Nil(t, err)
	k3, err := b.Put(db, nil, &counter{Owner: []byte("dave")})
	assert.Nil(t, err)
	assert.Equal(t, EncodeSequence(3), k3)
	assert.Nil(t, b.VerifyIndexes(db))
}

func TestModelBucketValidation(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	_, err := b.Put(db, nil, &counter{Count: 1})
	assert.IsErr(t, errors.ErrEmpty, err)
	_, err = b.Put(db, nil, nil)
	assert.IsErr(t, errors.ErrEmpty, err)
	_, err = b.One(db, nil)
	assert.IsErr(t, errors.ErrEmpty, err)
	_, err = b.IndexKeys(db, "unknown", nil)
	assert.IsErr(t, errors.ErrInput, err)

	// nothing was written
	seq := b.Sequence()
	latest, err := seq.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(0), latest)
}

func TestModelBucketUniqueIndex(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	k1, err := b.Put(db, nil, &counter{Owner: []byte("a"), Name: "uniq"})
	assert.Nil(t, err)
	_, err = b.Put(db, nil, &counter{Owner: []byte("b"), Name: "uniq", Count: 7})
	assert.IsErr(t, errors.ErrDuplicate, err)

	// the rejected entity left nothing behind, not even in the indexes
	// checked before the unique one
	assert.Nil(t, b.VerifyIndexes(db))
	keys, err := b.IndexKeys(db, "count", EncodeSequence(7))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(keys))
	seq := b.Sequence()
	latest, err := seq.Latest(db)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), latest)

	// saving the same entity again is fine
	_, err = b.Put(db, k1, &counter{Owner: []byte("a"), Name: "uniq", Count: 2})
	assert.Nil(t, err)
	assert.Nil(t, b.VerifyIndexes(db))
}

func TestModelBucketIndexRange(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()

	byCount := make(map[int64][]byte)
	for _, c := range []int64{40, 10, 30, 20} {
		k, err := b.Put(db, nil, &counter{Owner: []byte("o"), Count: c})
		assert.Nil(t, err)
		byCount[c] = k
	}

	cases := map[string]struct {
		from, to []byte
		want     [][]byte
	}{
		"unbounded": {
			want: [][]byte{byCount[10], byCount[20], byCount[30], byCount[40]},
		},
		"from is inclusive": {
			from: EncodeSequence(20),
			want: [][]byte{byCount[20], byCount[30], byCount[40]},
		},
		"to is exclusive": {
			to:   EncodeSequence(30),
			want: [][]byte{byCount[10], byCount[20]},
		},
		"both bounds": {
			from: EncodeSequence(11),
			to:   EncodeSequence(31),
			want: [][]byte{byCount[20], byCount[30]},
		},
		"empty range": {
			from: EncodeSequence(41),
			want: nil,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			keys, err := b.IndexRange(db, "count", tc.from, tc.to)
			assert.Nil(t, err)
			assert.Equal(t, tc.want, keys)
		})
	}
}

func TestVerifyIndexesDetectsCorruption(t *testing.T) {
	b := newCounterBucket()

	cases := map[string]struct {
		corrupt func(db vault.KVStore, key []byte) error
	}{
		"missing entry": {
			corrupt: func(db vault.KVStore, key []byte) error {
				k, err := packNativeIdxKey([][]byte{[]byte("counters_owner"), []byte("alice"), key})
				if err != nil {
					return err
				}
				return db.Delete(k)
			},
		},
		"stale entry": {
			corrupt: func(db vault.KVStore, key []byte) error {
				k, err := packNativeIdxKey([][]byte{[]byte("counters_owner"), []byte("mallory"), key})
				if err != nil {
					return err
				}
				return db.Set(k, []byte{})
			},
		},
		"entity removed behind the bucket": {
			corrupt: func(db vault.KVStore, key []byte) error {
				return db.Delete(b.DBKey(key))
			},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			key, err := b.Put(db, nil, &counter{Owner: []byte("alice")})
			assert.Nil(t, err)
			assert.Nil(t, b.VerifyIndexes(db))

			assert.Nil(t, tc.corrupt(db, key))
			assert.IsErr(t, errors.ErrState, b.VerifyIndexes(db))
		})
	}
}

func TestModelBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()
	qr := vault.NewQueryRouter()
	b.Register("counters", qr)

	k1, err := b.Put(db, nil, &counter{Owner: []byte("alice"), Count: 1})
	assert.Nil(t, err)
	k2, err := b.Put(db, nil, &counter{Owner: []byte("alfred"), Count: 2})
	assert.Nil(t, err)

	res, err := qr.Handler("/counters").Query(db, vault.KeyQueryMod, k1)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, k1, res[0].Key)

	res, err = qr.Handler("/counters").Query(db, vault.PrefixQueryMod, nil)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))

	res, err = qr.Handler("/counters/owner").Query(db, vault.KeyQueryMod, []byte("alfred"))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, k2, res[0].Key)

	res, err = qr.Handler("/counters/owner").Query(db, vault.PrefixQueryMod, []byte("al"))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))

	var c counter
	assert.Nil(t, c.Unmarshal(res[0].Value))
	assert.Equal(t, "alice", string(c.Owner))

	_, err = qr.Handler("/counters").Query(db, "unknown", nil)
	assert.IsErr(t, errors.ErrInput, err)
}

func TestRawQuery(t *testing.T) {
	db := store.MemStore()
	b := newCounterBucket()
	qr := vault.NewQueryRouter()
	RegisterQuery(qr)

	k1, err := b.Put(db, nil, &counter{Owner: []byte("alice"), Count: 1})
	assert.Nil(t, err)

	res, err := qr.Handler("/").Query(db, vault.KeyQueryMod, b.DBKey(k1))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	assert.Equal(t, b.DBKey(k1), res[0].Key)

	res, err = qr.Handler("/").Query(db, vault.KeyQueryMod, []byte("missing"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res))

	// entity, sequence and index entries
	res, err = qr.Handler("/").Query(db, vault.PrefixQueryMod, nil)
	assert.Nil(t, err)
	if len(res) < 2 {
		t.Fatalf("want the entity and its index entries, got %d models", len(res))
	}

	res, err = qr.Handler("/").Query(db, vault.PrefixQueryMod, b.DBKey(nil))
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
}
