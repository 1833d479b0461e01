/*
Package cdc provides the binary codec used to persist models and to
transport transactions.

All structures are serialized using go-amino binary bare encoding. Types
that are stored behind an interface must be registered before the codec
is sealed.
*/
package cdc

import (
	"github.com/iov-one/vault/errors"
	amino "github.com/tendermint/go-amino"
)

// Codec is the application wide amino codec.
var Codec = amino.NewCodec()

// Marshal serializes given structure.
func Marshal(o interface{}) ([]byte, error) {
	bz, err := Codec.MarshalBinaryBare(o)
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return bz, nil
}

// Unmarshal deserializes data into given pointer.
func Unmarshal(bz []byte, ptr interface{}) error {
	if err := Codec.UnmarshalBinaryBare(bz, ptr); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	return nil
}

// MarshalJSON returns the amino JSON representation, used for query
// output and debugging.
func MarshalJSON(o interface{}) ([]byte, error) {
	bz, err := Codec.MarshalJSON(o)
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return bz, nil
}

// RegisterInterface makes the codec aware of an interface type. Pointer to
// the interface must be given.
func RegisterInterface(ptr interface{}) {
	Codec.RegisterInterface(ptr, nil)
}

// RegisterConcrete registers an implementation of a previously registered
// interface under given name.
func RegisterConcrete(o interface{}, name string) {
	Codec.RegisterConcrete(o, name, nil)
}
