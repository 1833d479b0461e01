package app

import (
	"reflect"

	"github.com/iov-one/vault"
)

// Decorators is an ordered list of decorators waiting for the final
// handler. The first decorator is the outermost one.
//
//   app.ChainDecorators(
//     utils.NewLogging(),
//     utils.NewRecovery(),
//     sigs.NewDecorator(),
//     cash.NewFeeDecorator(authFn, ctrl),
//     utils.NewSavepoint().OnDeliver(),
//   ).WithHandler(router)
type Decorators struct {
	chain []vault.Decorator
}

// ChainDecorators returns the list of given decorators. Nil values are
// ignored, so optional decorators can be passed unconditionally.
func ChainDecorators(ds ...vault.Decorator) Decorators {
	return Decorators{}.Chain(ds...)
}

// Chain returns a new list with given decorators appended.
func (d Decorators) Chain(ds ...vault.Decorator) Decorators {
	chain := make([]vault.Decorator, len(d.chain), len(d.chain)+len(ds))
	copy(chain, d.chain)
	for _, dec := range ds {
		if !isNil(dec) {
			chain = append(chain, dec)
		}
	}
	return Decorators{chain: chain}
}

// isNil returns true for a nil interface and for an interface holding a
// nil pointer.
func isNil(d vault.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler returns a handler that passes through all decorators, in
// order, before calling h.
func (d Decorators) WithHandler(h vault.Handler) vault.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = decorated{decorator: d.chain[i], next: h}
	}
	return h
}

type decorated struct {
	decorator vault.Decorator
	next      vault.Handler
}

var _ vault.Handler = decorated{}

func (d decorated) Check(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.CheckResult, error) {
	return d.decorator.Check(ctx, db, tx, d.next)
}

func (d decorated) Deliver(ctx vault.Context, db vault.KVStore, tx vault.Tx) (*vault.DeliverResult, error) {
	return d.decorator.Deliver(ctx, db, tx, d.next)
}
