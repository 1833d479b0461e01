package store

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/iov-one/vault/vaulttest/assert"
)

// StoreConstructor returns an empty store and a function releasing it.
type StoreConstructor func() (CacheableKVStore, func())

// RunStoreSuite checks that the store returned by newStore and every cache
// layered on top of it behave like an ordered map. It is shared by all
// store implementations.
func RunStoreSuite(t *testing.T, newStore StoreConstructor) {
	t.Run("cache layers", func(t *testing.T) { testCacheLayers(t, newStore) })
	t.Run("random operations", func(t *testing.T) { testRandomOperations(t, newStore) })
}

func testCacheLayers(t *testing.T, newStore StoreConstructor) {
	db, cleanup := newStore()
	defer cleanup()

	assert.Nil(t, db.Set([]byte("owner"), []byte("alice")))
	assert.Nil(t, db.Set([]byte("period"), []byte("3600")))

	cache := db.CacheWrap()
	assert.Nil(t, cache.Set([]byte("owner"), []byte("bob")))
	assert.Nil(t, cache.Delete([]byte("period")))
	assert.Nil(t, cache.Set([]byte("ticker"), []byte("IOV")))

	// parent is not modified before the write
	expectContent(t, db, map[string]string{"owner": "alice", "period": "3600"})
	expectContent(t, cache, map[string]string{"owner": "bob", "ticker": "IOV"})

	nested := cache.CacheWrap()
	assert.Nil(t, nested.Delete([]byte("owner")))
	nested.Discard()
	expectContent(t, cache, map[string]string{"owner": "bob", "ticker": "IOV"})

	nested = cache.CacheWrap()
	assert.Nil(t, nested.Set([]byte("period"), []byte("60")))
	assert.Nil(t, nested.Write())
	assert.Nil(t, cache.Write())
	expectContent(t, db, map[string]string{"owner": "bob", "period": "60", "ticker": "IOV"})

	// a written cache is empty and can be reused
	assert.Nil(t, cache.Set([]byte("memo"), []byte("x")))
	cache.Discard()
	expectContent(t, db, map[string]string{"owner": "bob", "period": "60", "ticker": "IOV"})
}

// testRandomOperations applies the same random operations to the store, to
// a cache over it and to a map, then compares all ranges.
func testRandomOperations(t *testing.T, newStore StoreConstructor) {
	rnd := rand.New(rand.NewSource(42))
	keys := make([][]byte, 40)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("k%03d", rnd.Intn(1000)))
	}

	apply := func(db SetDeleter, ref map[string]string, n int) {
		for i := 0; i < n; i++ {
			k := keys[rnd.Intn(len(keys))]
			if rnd.Intn(3) == 0 {
				assert.Nil(t, db.Delete(k))
				delete(ref, string(k))
				continue
			}
			v := fmt.Sprintf("v%d", rnd.Int())
			assert.Nil(t, db.Set(k, []byte(v)))
			ref[string(k)] = v
		}
	}

	db, cleanup := newStore()
	defer cleanup()
	ref := make(map[string]string)
	apply(db, ref, 60)
	expectContent(t, db, ref)

	cache := db.CacheWrap()
	cacheRef := make(map[string]string, len(ref))
	for k, v := range ref {
		cacheRef[k] = v
	}
	apply(cache, cacheRef, 60)
	expectContent(t, db, ref)
	expectContent(t, cache, cacheRef)

	assert.Nil(t, cache.Write())
	expectContent(t, db, cacheRef)
}

// expectContent compares point reads and every range iteration, in both
// directions, with the reference map.
func expectContent(t testing.TB, db ReadOnlyKVStore, ref map[string]string) {
	t.Helper()

	want := make([]Model, 0, len(ref))
	for k, v := range ref {
		want = append(want, Pair([]byte(k), []byte(v)))
		got, err := db.Get([]byte(k))
		assert.Nil(t, err)
		assert.Equal(t, v, string(got))
		has, err := db.Has([]byte(k))
		assert.Nil(t, err)
		assert.Equal(t, true, has)
	}
	sort.Slice(want, func(i, j int) bool { return bytes.Compare(want[i].Key, want[j].Key) < 0 })

	missing, err := db.Get([]byte("missing"))
	assert.Nil(t, err)
	assert.Nil(t, missing)

	// Bounds at every key plus open ends.
	bounds := [][]byte{nil}
	for _, m := range want {
		bounds = append(bounds, m.Key)
	}
	for i, start := range bounds {
		for _, end := range append(bounds[i+1:], nil) {
			expected := inRange(want, start, end)

			it, err := db.Iterator(start, end)
			assert.Nil(t, err)
			got, err := ReadAll(it)
			assert.Nil(t, err)
			assertModels(t, expected, got, "ascending [%q, %q)", start, end)

			it, err = db.ReverseIterator(start, end)
			assert.Nil(t, err)
			got, err = ReadAll(it)
			assert.Nil(t, err)
			for l, r := 0, len(expected)-1; l < r; l, r = l+1, r-1 {
				expected[l], expected[r] = expected[r], expected[l]
			}
			assertModels(t, expected, got, "descending [%q, %q)", start, end)
		}
	}

	it, err := db.Iterator(nil, nil)
	assert.Nil(t, err)
	it.Release()
}

func inRange(models []Model, start, end []byte) []Model {
	var res []Model
	for _, m := range models {
		if start != nil && bytes.Compare(m.Key, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(m.Key, end) >= 0 {
			continue
		}
		res = append(res, m)
	}
	return res
}

func assertModels(t testing.TB, want, got []Model, msg string, args ...interface{}) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: want %d models, got %d", fmt.Sprintf(msg, args...), len(want), len(got))
	}
	for i := range want {
		if !bytes.Equal(want[i].Key, got[i].Key) || !bytes.Equal(want[i].Value, got[i].Value) {
			t.Fatalf("%s: model %d: want %q=%q, got %q=%q", fmt.Sprintf(msg, args...), i,
				want[i].Key, want[i].Value, got[i].Key, got[i].Value)
		}
	}
}
