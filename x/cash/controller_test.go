package cash

import (
	"testing"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/vaulttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balance(t testing.TB, db vault.ReadOnlyKVStore, addr vault.Address, ticker string) coin.Coin {
	t.Helper()
	coins, err := NewController(NewBucket()).Balance(db, addr)
	if errors.ErrNotFound.Is(err) {
		return coin.Coin{Ticker: ticker}
	}
	require.NoError(t, err)
	return coins.Balance(ticker)
}

func TestCoinMint(t *testing.T) {
	db := store.MemStore()
	addr := vaulttest.NewCondition().Address()
	addr2 := vaulttest.NewCondition().Address()
	ctrl := NewController(NewBucket())

	_, err := ctrl.Balance(db, addr)
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.True(t, errors.ErrNotFound.Is(ctrl.ResolveAccount(db, addr)))

	require.NoError(t, ctrl.CoinMint(db, addr, coin.NewCoin(500, 1000, "FOO")))
	require.NoError(t, ctrl.CoinMint(db, addr, coin.NewCoin(1, 0, "FOO")))
	require.NoError(t, ctrl.CoinMint(db, addr, coin.NewCoin(2, 0, "BAR")))

	assert.NoError(t, ctrl.ResolveAccount(db, addr))
	assert.Equal(t, coin.NewCoin(501, 1000, "FOO"), balance(t, db, addr, "FOO"))
	assert.Equal(t, coin.NewCoin(2, 0, "BAR"), balance(t, db, addr, "BAR"))
	assert.True(t, errors.ErrNotFound.Is(ctrl.ResolveAccount(db, addr2)))

	// minting nothing or a negative value is not allowed
	assert.True(t, errors.ErrAmount.Is(ctrl.CoinMint(db, addr, coin.NewCoin(0, 0, "FOO"))))
	assert.True(t, errors.ErrAmount.Is(ctrl.CoinMint(db, addr, coin.NewCoin(-1, 0, "FOO"))))

	// overflow is rejected and the wallet is not modified
	err = ctrl.CoinMint(db, addr, coin.NewCoin(coin.MaxInt, 0, "FOO"))
	assert.True(t, errors.ErrOverflow.Is(err), "%+v", err)
	assert.Equal(t, coin.NewCoin(501, 1000, "FOO"), balance(t, db, addr, "FOO"))
}

func TestMoveCoins(t *testing.T) {
	db := store.MemStore()
	addr := vaulttest.NewCondition().Address()
	addr2 := vaulttest.NewCondition().Address()
	addr3 := vaulttest.NewCondition().Address()
	ctrl := NewController(NewBucket())

	send := coin.NewCoin(300, 0, "MONY")

	// can't send from a missing wallet
	err := ctrl.MoveCoins(db, addr, addr2, send)
	assert.True(t, errors.ErrInsufficientAmount.Is(err), "%+v", err)

	require.NoError(t, ctrl.CoinMint(db, addr, coin.NewCoin(50000, 0, "MONY")))

	require.NoError(t, ctrl.MoveCoins(db, addr, addr2, send))
	assert.Equal(t, coin.NewCoin(49700, 0, "MONY"), balance(t, db, addr, "MONY"))
	assert.Equal(t, send, balance(t, db, addr2, "MONY"))
	assert.True(t, errors.ErrNotFound.Is(ctrl.ResolveAccount(db, addr3)))

	// cannot send negative, zero or unknown currency
	assert.True(t, errors.ErrAmount.Is(ctrl.MoveCoins(db, addr, addr3, send.Negative())))
	assert.True(t, errors.ErrAmount.Is(ctrl.MoveCoins(db, addr, addr3, coin.NewCoin(0, 0, "MONY"))))
	err = ctrl.MoveCoins(db, addr, addr3, coin.NewCoin(1, 0, "NOPE"))
	assert.True(t, errors.ErrInsufficientAmount.Is(err), "%+v", err)

	// cannot send more than held
	err = ctrl.MoveCoins(db, addr2, addr3, coin.NewCoin(300, 1, "MONY"))
	assert.True(t, errors.ErrInsufficientAmount.Is(err), "%+v", err)
	assert.True(t, errors.ErrNotFound.Is(ctrl.ResolveAccount(db, addr3)))

	// sending everything leaves an empty wallet
	require.NoError(t, ctrl.MoveCoins(db, addr2, addr3, send))
	assert.NoError(t, ctrl.ResolveAccount(db, addr2))
	assert.True(t, balance(t, db, addr2, "MONY").IsZero())
	assert.Equal(t, send, balance(t, db, addr3, "MONY"))
}
