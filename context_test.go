package vault_test

import (
	"context"
	"testing"
	"time"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestContext(t *testing.T) {
	bg := context.Background()

	// height can be overridden by every new block
	ctx := vault.WithHeight(bg, 7)
	ctx = vault.WithHeight(ctx, 8)
	h, ok := vault.GetHeight(ctx)
	assert.True(t, ok)
	assert.EqualValues(t, 8, h)

	_, ok = vault.GetHeight(bg)
	assert.False(t, ok)

	// chain id can be set only once
	ctx = vault.WithChainID(ctx, "my-chain")
	assert.Equal(t, "my-chain", vault.GetChainID(ctx))
	assert.Panics(t, func() { vault.WithChainID(ctx, "other-chain") })
	assert.Panics(t, func() { vault.WithChainID(bg, "a") })
	assert.Panics(t, func() { vault.GetChainID(bg) })

	// logger defaults to the nop logger
	assert.Equal(t, vault.DefaultLogger, vault.GetLogger(bg))
	logger := log.NewTMLogger(log.NewSyncWriter(nil))
	ctx = vault.WithLogger(ctx, logger)
	assert.Equal(t, logger, vault.GetLogger(ctx))
	assert.NotEqual(t, logger, vault.GetLogger(vault.WithLogInfo(ctx, "foo", "bar")))
}

func TestBlockTime(t *testing.T) {
	_, err := vault.BlockTime(context.Background())
	assert.True(t, errors.ErrHuman.Is(err))

	_, err = vault.BlockTime(vault.WithBlockTime(context.Background(), time.Time{}))
	assert.True(t, errors.ErrHuman.Is(err))

	now := time.Unix(1500000000, 0)
	ctx := vault.WithBlockTime(context.Background(), now)
	got, err := vault.BlockTime(ctx)
	require.NoError(t, err)
	assert.True(t, now.Equal(got))

	unix, err := vault.BlockUnixTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, vault.UnixTime(1500000000), unix)
}
