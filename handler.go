package vault

import (
	"encoding/json"

	"github.com/iov-one/vault/errors"
)

// Checker verifies that a transaction can be executed. Changes done to
// the store are not persisted.
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer executes a transaction.
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Handler processes the messages of one or more paths.
type Handler interface {
	Checker
	Deliverer
}

// Decorator wraps the processing done by next with functionality shared
// by all handlers, for example authentication or fees.
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry binds handlers to the paths of messages. The message instance
// only declares the path.
type Registry interface {
	Handle(Msg, Handler)
}

// Initializer loads the genesis state of an extension.
type Initializer interface {
	FromGenesis(opts Options, db KVStore) error
}

// Options is the app_state of the genesis file. Every extension reads its
// own key.
type Options map[string]json.RawMessage

// ReadOptions decodes the value under key into obj. A missing key is not
// an error and leaves obj unchanged.
func (o Options) ReadOptions(key string, obj interface{}) error {
	raw, ok := o[key]
	if !ok || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "options %q: %s", key, err)
	}
	return nil
}
