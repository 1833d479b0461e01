package orm

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,20}$`).MatchString

// ModelBucket stores entities of a single type. Entities are kept under
// "<name>:<key>" and every registered index is updated together with the
// entity.
//
// P is the pointer type of the stored entity, for example
//    NewModelBucket[Account]("accounts")
// creates a bucket operating on *Account values.
type ModelBucket[T any, P ModelPtr[T]] struct {
	name    string
	prefix  []byte
	seq     Sequence
	indexes map[string]*nativeIndex[P]
}

// NewModelBucket returns a bucket for given entity type. Name must be
// unique across the application.
func NewModelBucket[T any, P ModelPtr[T]](name string) *ModelBucket[T, P] {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket name: %q", name))
	}
	return &ModelBucket[T, P]{
		name:    name,
		prefix:  []byte(name + ":"),
		seq:     NewSequence(name, "id"),
		indexes: make(map[string]*nativeIndex[P]),
	}
}

// WithIndex registers a secondary index. Unique index rejects a second
// entity indexed under the same value. It returns the bucket to allow
// chaining.
func (b *ModelBucket[T, P]) WithIndex(name string, indexer Indexer[P], unique bool) *ModelBucket[T, P] {
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("index %q already registered in %q", name, b.name))
	}
	b.indexes[name] = &nativeIndex[P]{
		name:    b.name + "_" + name,
		indexer: indexer,
		unique:  unique,
	}
	return b
}

// Name returns the bucket name.
func (b *ModelBucket[T, P]) Name() string {
	return b.name
}

// Sequence returns the sequence used to allocate keys of new entities.
func (b *ModelBucket[T, P]) Sequence() Sequence {
	return b.seq
}

// DBKey returns the database key an entity with given key is stored under.
func (b *ModelBucket[T, P]) DBKey(key []byte) []byte {
	return append(append([]byte{}, b.prefix...), key...)
}

// One returns the entity stored under given key. ErrNotFound is returned
// if it does not exist.
func (b *ModelBucket[T, P]) One(db vault.ReadOnlyKVStore, key []byte) (P, error) {
	if len(key) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "key")
	}
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "db get")
	}
	if raw == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s with key %X", b.name, key)
	}
	return b.parse(raw)
}

func (b *ModelBucket[T, P]) parse(raw []byte) (P, error) {
	m := P(new(T))
	if err := m.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "cannot unmarshal %s", b.name)
	}
	return m, nil
}

// Has returns true if an entity with given key exists.
func (b *ModelBucket[T, P]) Has(db vault.ReadOnlyKVStore, key []byte) (bool, error) {
	if len(key) == 0 {
		return false, errors.Wrap(errors.ErrEmpty, "key")
	}
	return db.Has(b.DBKey(key))
}

// Put validates and saves given entity. If key is nil, a new key is
// allocated from the bucket sequence. The key is returned.
func (b *ModelBucket[T, P]) Put(db vault.KVStore, key []byte, m P) ([]byte, error) {
	if m == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "model")
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", b.name)
	}

	var prev P
	if key != nil {
		p, err := b.One(db, key)
		switch {
		case err == nil:
			prev = p
		case errors.ErrNotFound.Is(err):
		default:
			return nil, err
		}
	}

	raw, err := m.Marshal()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot marshal %s", b.name)
	}
	changes, err := b.indexChanges(db, key, prev, m)
	if err != nil {
		return nil, err
	}
	if key == nil {
		if key, err = b.seq.NextVal(db); err != nil {
			return nil, errors.Wrap(err, "next key")
		}
	}
	if err := b.applyIndexChanges(db, key, changes); err != nil {
		return nil, err
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return nil, errors.Wrap(err, "db set")
	}
	return key, nil
}

// Update loads the entity stored under given key, applies fn to it and
// saves the result. Nothing is written if fn returns an error.
func (b *ModelBucket[T, P]) Update(db vault.KVStore, key []byte, fn func(P) error) (P, error) {
	m, err := b.One(db, key)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	if _, err := b.Put(db, key, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes the entity and all its index entries. ErrNotFound is
// returned if the entity does not exist.
func (b *ModelBucket[T, P]) Delete(db vault.KVStore, key []byte) error {
	prev, err := b.One(db, key)
	if err != nil {
		return err
	}
	changes, err := b.indexChanges(db, key, prev, nil)
	if err != nil {
		return err
	}
	if err := b.applyIndexChanges(db, key, changes); err != nil {
		return err
	}
	if err := db.Delete(b.DBKey(key)); err != nil {
		return errors.Wrap(err, "db delete")
	}
	return nil
}

type indexChange[P any] struct {
	ix         *nativeIndex[P]
	prev, next []byte
}

// indexChanges computes the index values of prev and next and checks
// unique indexes. Nothing is written. A nil key stands for an entity that
// is not stored yet.
func (b *ModelBucket[T, P]) indexChanges(db vault.ReadOnlyKVStore, key []byte, prev, next P) ([]indexChange[P], error) {
	names := b.indexNames()
	changes := make([]indexChange[P], 0, len(names))
	for _, name := range names {
		c := indexChange[P]{ix: b.indexes[name]}
		var err error
		if prev != nil {
			if c.prev, err = c.ix.indexer(prev); err != nil {
				return nil, errors.Wrapf(err, "index %s", name)
			}
		}
		if next != nil {
			if c.next, err = c.ix.indexer(next); err != nil {
				return nil, errors.Wrapf(err, "index %s", name)
			}
		}
		if c.ix.unique && c.next != nil {
			keys, err := c.ix.keys(db, c.next)
			if err != nil {
				return nil, errors.Wrapf(err, "index %s", name)
			}
			for _, k := range keys {
				if key == nil || string(k) != string(key) {
					return nil, errors.Wrapf(errors.ErrDuplicate, "index %s", name)
				}
			}
		}
		changes = append(changes, c)
	}
	return changes, nil
}

func (b *ModelBucket[T, P]) applyIndexChanges(db vault.KVStore, key []byte, changes []indexChange[P]) error {
	for _, c := range changes {
		if err := c.ix.update(db, key, c.prev, c.next); err != nil {
			return errors.Wrapf(err, "index %s", c.ix.name)
		}
	}
	return nil
}

func (b *ModelBucket[T, P]) index(name string) (*nativeIndex[P], error) {
	ix, ok := b.indexes[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "no index %q in %s", name, b.name)
	}
	return ix, nil
}

// IndexKeys returns keys of all entities indexed under given value.
func (b *ModelBucket[T, P]) IndexKeys(db vault.ReadOnlyKVStore, index string, value []byte) ([][]byte, error) {
	ix, err := b.index(index)
	if err != nil {
		return nil, err
	}
	return ix.keys(db, value)
}

// IndexRange returns keys of all entities with the indexed value within
// [from, to) ordered by that value. A nil bound is not limiting.
func (b *ModelBucket[T, P]) IndexRange(db vault.ReadOnlyKVStore, index string, from, to []byte) ([][]byte, error) {
	ix, err := b.index(index)
	if err != nil {
		return nil, err
	}
	return ix.rangeKeys(db, from, to)
}

// Each calls fn for every stored entity in key order. Iteration stops on
// the first error returned by fn.
func (b *ModelBucket[T, P]) Each(db vault.ReadOnlyKVStore, fn func(key []byte, m P) error) error {
	it, err := db.Iterator(b.prefix, prefixEnd(b.prefix))
	if err != nil {
		return errors.Wrap(err, "iterator")
	}
	defer it.Release()
	for {
		dbKey, raw, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return nil
		}
		if err != nil {
			return err
		}
		m, err := b.parse(raw)
		if err != nil {
			return err
		}
		if err := fn(dbKey[len(b.prefix):], m); err != nil {
			return err
		}
	}
}

// VerifyIndexes ensures that the content of every index matches the
// stored entities. Each entity must be referenced exactly by the index
// entries its indexer produces and there must be no other entries.
func (b *ModelBucket[T, P]) VerifyIndexes(db vault.ReadOnlyKVStore) error {
	for _, name := range b.indexNames() {
		ix := b.indexes[name]
		want := make(map[string]struct{})
		unique := make(map[string][]byte)
		err := b.Each(db, func(key []byte, m P) error {
			val, err := ix.indexer(m)
			if err != nil {
				return err
			}
			if val == nil {
				return nil
			}
			if other, ok := unique[string(val)]; ok && ix.unique {
				return errors.Wrapf(errors.ErrDuplicate, "index %s: %X and %X share a value", name, other, key)
			}
			unique[string(val)] = key
			k, err := ix.dbKey(val, key)
			if err != nil {
				return err
			}
			want[string(k)] = struct{}{}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "index %s", name)
		}

		got, err := ix.entries(db)
		if err != nil {
			return errors.Wrapf(err, "index %s", name)
		}
		for k := range want {
			if _, ok := got[k]; !ok {
				return errors.Wrapf(errors.ErrState, "index %s: missing entry %X", name, k)
			}
		}
		for k := range got {
			if _, ok := want[k]; !ok {
				return errors.Wrapf(errors.ErrState, "index %s: stale entry %X", name, k)
			}
		}
	}
	return nil
}

func (b *ModelBucket[T, P]) indexNames() []string {
	names := make([]string, 0, len(b.indexes))
	for name := range b.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// prefixEnd returns the first key greater than all keys with given prefix.
// The prefix must not end with 0xFF.
func prefixEnd(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	end := append([]byte{}, prefix...)
	end[len(end)-1]++
	return end
}
