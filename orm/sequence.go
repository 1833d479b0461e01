package orm

import (
	"encoding/binary"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// Sequence is a persistent counter. Its encoded values sort the same way
// as the numbers, so they can be used as ordered keys.
type Sequence struct {
	key []byte
}

// NewSequence returns the counter stored under "_s.<bucket>:<name>".
func NewSequence(bucket, name string) Sequence {
	return Sequence{key: []byte("_s." + bucket + ":" + name)}
}

// NextVal advances the counter and returns the new value encoded.
func (s *Sequence) NextVal(db vault.KVStore) ([]byte, error) {
	n, err := s.NextInt(db)
	if err != nil {
		return nil, err
	}
	return EncodeSequence(n), nil
}

// NextInt advances the counter and returns the new value. The first value
// is 1.
func (s *Sequence) NextInt(db vault.KVStore) (int64, error) {
	n, err := s.Latest(db)
	if err != nil {
		return 0, err
	}
	n++
	if err := db.Set(s.key, EncodeSequence(n)); err != nil {
		return 0, errors.Wrap(err, "sequence")
	}
	return n, nil
}

// Latest returns the last value handed out, or zero.
func (s *Sequence) Latest(db vault.ReadOnlyKVStore) (int64, error) {
	raw, err := db.Get(s.key)
	if err != nil {
		return 0, err
	}
	return DecodeSequence(raw)
}

// DecodeSequence reverses EncodeSequence. A missing value is zero.
func DecodeSequence(raw []byte) (int64, error) {
	switch len(raw) {
	case 0:
		return 0, nil
	case 8:
		return int64(binary.BigEndian.Uint64(raw)), nil
	default:
		return 0, errors.Wrapf(errors.ErrInput, "sequence of %d bytes", len(raw))
	}
}

// EncodeSequence returns the big endian representation of n.
func EncodeSequence(n int64) []byte {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], uint64(n))
	return raw[:]
}
