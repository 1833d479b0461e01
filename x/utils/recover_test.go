package utils

import (
	"bytes"
	"context"
	"testing"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/vaulttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestRecovery(t *testing.T) {
	h := vaulttest.PanicHandler{Msg: "boom"}
	r := NewRecovery()

	ctx := context.Background()
	s := store.MemStore()

	assert.Panics(t, func() { _, _ = h.Check(ctx, s, nil) })
	assert.Panics(t, func() { _, _ = h.Deliver(ctx, s, nil) })

	_, err := r.Check(ctx, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))

	_, err = r.Deliver(ctx, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))

	res, err := r.Deliver(ctx, s, nil, &vaulttest.Handler{DeliverResult: vault.DeliverResult{Log: "fine"}})
	require.NoError(t, err)
	assert.Equal(t, "fine", res.Log)
}

func TestRecoveryLogsPanic(t *testing.T) {
	var buf bytes.Buffer
	ctx := vault.WithLogger(context.Background(), log.NewTMLogger(log.NewSyncWriter(&buf)))
	tx := &vaulttest.Tx{Msg: &vaulttest.Msg{RoutePath: "timelock/complete_withdrawal"}}

	_, err := NewRecovery().Deliver(ctx, store.MemStore(), tx, vaulttest.PanicHandler{Msg: "kaboom"})
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, err.Error(), "kaboom")
	assert.Contains(t, buf.String(), "transaction panicked")
	assert.Contains(t, buf.String(), "path=timelock/complete_withdrawal")
}
