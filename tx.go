package vault

import (
	"reflect"
	"regexp"

	"github.com/iov-one/vault/errors"
)

// Marshaller can serialize itself. It may validate before doing so.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent can be serialized and deserialized. Unmarshal almost always
// needs a pointer receiver, so this is kept apart from Marshaller.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Msg is a request for a state transition. It carries no authentication,
// which is the job of the enclosing Tx.
type Msg interface {
	Persistent

	// Path is used by the router to find the handler of the message. It
	// must match [0-9A-Za-z_\-/]+ and several message types may share
	// one path.
	Path() string

	// Validate checks the message without accessing the state.
	Validate() error
}

// Tx is a transaction as sent by a client. Every application defines its
// own Tx type with everything the decorators it uses need, for example
// signatures.
type Tx interface {
	Persistent
	GetMsg() (Msg, error)
}

// TxDecoder deserializes a transaction.
type TxDecoder func(raw []byte) (Tx, error)

// GetPath returns the path of the transaction message or "(missing)".
func GetPath(tx Tx) string {
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

var pathFormat = regexp.MustCompile(`^[a-zA-Z0-9_\-/]+$`)

// ValidatePath returns ErrInput for a malformed message path.
func ValidatePath(path string) error {
	if !pathFormat.MatchString(path) {
		return errors.Wrapf(errors.ErrInput, "invalid path %q", path)
	}
	return nil
}

// LoadMsg validates the transaction message and copies it into dst, which
// must be a pointer to the message type.
func LoadMsg(tx Tx, dst interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "transaction message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrState, "nil message")
	}

	target := reflect.ValueOf(dst)
	if target.Kind() != reflect.Ptr {
		return errors.Wrapf(errors.ErrType, "destination %T is not a pointer", dst)
	}
	src := reflect.Indirect(reflect.ValueOf(msg))
	if !src.Type().AssignableTo(target.Elem().Type()) {
		return errors.Wrapf(errors.ErrType, "cannot load %T into %T", msg, dst)
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	target.Elem().Set(src)
	return nil
}
