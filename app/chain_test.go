package app

import (
	"context"
	"testing"

	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/vaulttest"
	"github.com/iov-one/vault/vaulttest/assert"
	"github.com/iov-one/vault/x/utils"
)

func TestChain(t *testing.T) {
	d1 := &vaulttest.Decorator{}
	d2 := &vaulttest.Decorator{}
	var missing *vaulttest.Decorator
	h := &vaulttest.Handler{}

	stack := ChainDecorators(
		d1,
		utils.NewLogging(),
		utils.NewRecovery(),
		missing,
		d2,
	).WithHandler(h)

	ctx := context.Background()
	db := store.MemStore()
	tx := &vaulttest.Tx{Msg: &vaulttest.Msg{RoutePath: "test/chain"}}

	_, err := stack.Check(ctx, db, tx)
	assert.Nil(t, err)
	_, err = stack.Deliver(ctx, db, tx)
	assert.Nil(t, err)

	assert.Equal(t, 2, d1.CallCount())
	assert.Equal(t, 2, d2.CallCount())
	assert.Equal(t, 2, h.CallCount())

	// a failing decorator stops the processing
	d1.DeliverErr = errors.ErrUnauthorized
	_, err = stack.Deliver(ctx, db, tx)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	assert.Equal(t, 3, d1.CallCount())
	assert.Equal(t, 2, d2.CallCount())
	assert.Equal(t, 2, h.CallCount())
}

func TestChainRecoversPanics(t *testing.T) {
	stack := ChainDecorators(utils.NewRecovery()).
		Chain(&vaulttest.Decorator{}).
		WithHandler(vaulttest.PanicHandler{Msg: "boom"})

	_, err := stack.Deliver(context.Background(), store.MemStore(), &vaulttest.Tx{})
	assert.IsErr(t, errors.ErrPanic, err)
}

func TestChainDoesNotShareState(t *testing.T) {
	base := ChainDecorators(&vaulttest.Decorator{})
	a := base.Chain(&vaulttest.Decorator{})
	b := base.Chain(utils.NewRecovery())

	assert.Equal(t, 2, len(a.chain))
	assert.Equal(t, 2, len(b.chain))
	_, ok := a.chain[1].(*vaulttest.Decorator)
	assert.Equal(t, true, ok)
	_, ok = b.chain[1].(utils.Recovery)
	assert.Equal(t, true, ok)
}
