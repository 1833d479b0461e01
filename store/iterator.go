package store

import (
	"bytes"

	"github.com/iov-one/vault/errors"
)

// mergeIterator yields cached entries and the parent content in a single
// ordered stream. A cached entry hides the parent value of the same key and
// tombstones are skipped.
type mergeIterator struct {
	cached []entry
	parent Iterator
	desc   bool

	head struct {
		key, value []byte
		ok         bool
		done       bool
	}
}

var _ Iterator = (*mergeIterator)(nil)

func newMergeIterator(cached []entry, parent Iterator, ascending bool) *mergeIterator {
	return &mergeIterator{cached: cached, parent: parent, desc: !ascending}
}

func (it *mergeIterator) Next() (key, value []byte, err error) {
	for {
		if err := it.fill(); err != nil {
			return nil, nil, err
		}
		if len(it.cached) == 0 {
			if it.head.done {
				return nil, nil, errors.ErrIteratorDone
			}
			return it.takeParent()
		}
		if !it.head.done {
			switch cmp := it.order(it.cached[0].key, it.head.key); {
			case cmp > 0:
				return it.takeParent()
			case cmp == 0:
				// Shadowed by the cache.
				it.head.ok = false
			}
		}
		e := it.cached[0]
		it.cached = it.cached[1:]
		if !e.deleted {
			return e.key, e.value, nil
		}
	}
}

// order compares keys in iteration order.
func (it *mergeIterator) order(a, b []byte) int {
	cmp := bytes.Compare(a, b)
	if it.desc {
		return -cmp
	}
	return cmp
}

func (it *mergeIterator) takeParent() ([]byte, []byte, error) {
	it.head.ok = false
	return it.head.key, it.head.value, nil
}

// fill loads the next parent pair unless one is already loaded.
func (it *mergeIterator) fill() error {
	if it.head.ok || it.head.done {
		return nil
	}
	k, v, err := it.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		it.head.done = true
		return nil
	case err != nil:
		return err
	}
	it.head.key, it.head.value, it.head.ok = k, v, true
	return nil
}

func (it *mergeIterator) Release() {
	it.parent.Release()
	it.cached = nil
}

// SliceIterator iterates over a slice of models.
type SliceIterator struct {
	data []Model
}

var _ Iterator = (*SliceIterator)(nil)

func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data}
}

func (s *SliceIterator) Next() (key, value []byte, err error) {
	if len(s.data) == 0 {
		return nil, nil, errors.ErrIteratorDone
	}
	m := s.data[0]
	s.data = s.data[1:]
	return m.Key, m.Value, nil
}

func (s *SliceIterator) Release() {
	s.data = nil
}
