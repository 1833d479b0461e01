package vaultd

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/app"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/vaulttest"
	"github.com/iov-one/vault/x/cash"
	"github.com/iov-one/vault/x/sigs"
	"github.com/iov-one/vault/x/timelock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/crypto/ed25519"
)

const chainID = "vault-test-chain"

type account struct {
	key ed25519.PrivateKey
	seq int64
}

func newAccount() *account {
	return &account{key: vaulttest.NewKey()}
}

func (a *account) Address() vault.Address {
	return sigs.Condition(a.key.Public().(ed25519.PublicKey)).Address()
}

// node drives the application through the ABCI block lifecycle.
type node struct {
	t        *testing.T
	app      abci.Application
	height   int64
	accounts []*account
}

func newNode(t *testing.T, reg prometheus.Registerer, genesis string, accounts ...*account) *node {
	t.Helper()
	a, err := GenerateApp("", log.NewNopLogger(), true, reg)
	require.NoError(t, err)
	a.InitChain(abci.RequestInitChain{ChainId: chainID, AppStateBytes: []byte(genesis)})
	return &node{t: t, app: a, accounts: accounts}
}

func (n *node) beginBlock(at time.Time) {
	n.height++
	n.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{Height: n.height, Time: at, ChainID: chainID},
	})
}

// commit ends the block and loads the committed sequence of all accounts.
// A delivered transaction increments the sequence of its signer even if the
// message failed.
func (n *node) commit() {
	n.t.Helper()
	n.app.EndBlock(abci.RequestEndBlock{Height: n.height})
	n.app.Commit()

	db := app.NewABCIStore(n.app)
	for _, a := range n.accounts {
		seq, err := sigs.NextNonce(db, a.Address())
		require.NoError(n.t, err)
		a.seq = seq
	}
}

// submit signs the message and passes it through check and deliver. The
// deliver result is returned. Check runs against the state of the last
// commit, so a transaction depending on an earlier one of the same block
// may fail there. The signer sequence follows the deliver result: once the
// signature is verified the sequence is taken, whatever the message does.
func (n *node) submit(signer *account, msg vault.Msg) abci.ResponseDeliverTx {
	n.t.Helper()
	tx := &Tx{Msg: msg}
	sig, err := sigs.SignTx(signer.key, tx, chainID, signer.seq)
	require.NoError(n.t, err)
	tx.Signatures = []*sigs.StdSignature{sig}
	raw, err := tx.Marshal()
	require.NoError(n.t, err)

	n.app.CheckTx(raw)
	res := n.app.DeliverTx(raw)
	if res.Code != sigs.ErrInvalidSequence.ABCICode() {
		signer.seq++
	}
	return res
}

func (n *node) mustSubmit(signer *account, msg vault.Msg) []byte {
	n.t.Helper()
	res := n.submit(signer, msg)
	require.Equal(n.t, abci.CodeTypeOK, res.Code, res.Log)
	return res.Data
}

func (n *node) wallet(addr vault.Address, ticker string) coin.Coin {
	n.t.Helper()
	q := n.app.Query(abci.RequestQuery{Path: "/wallets", Data: addr})
	require.Equal(n.t, abci.CodeTypeOK, q.Code, q.Log)
	var set cash.Set
	require.NoError(n.t, app.UnmarshalOneResult(q.Value, &set))
	return set.Coins.Balance(ticker)
}

func genesis(owner, recipient vault.Address) string {
	return fmt.Sprintf(`{
	  "currencies": [{"ticker": "IOV", "name": "Main token"}],
	  "cash": [
	    {"address": "%X", "coins": ["1000 IOV"]},
	    {"address": "%X", "coins": ["1 IOV"]}
	  ],
	  "conf": {
	    "cash": {
	      "metadata": {"schema": 1},
	      "owner": "%X",
	      "collector_address": "%X",
	      "msg_fees": [
	        {"msg_path": "timelock/create", "fee": "1 IOV"},
	        {"msg_path": "timelock/deposit", "fee": "1 IOV"},
	        {"msg_path": "timelock/withdraw", "fee": "1 IOV"}
	      ]
	    }
	  }
	}`, []byte(owner), []byte(recipient), []byte(owner), []byte(CollectorAddress))
}

func TestReviewedWithdrawalWithFees(t *testing.T) {
	owner, recipient := newAccount(), newAccount()
	reg := prometheus.NewRegistry()
	n := newNode(t, reg, genesis(owner.Address(), recipient.Address()), owner, recipient)

	meta := &vault.Metadata{Schema: 1}
	fee := coin.NewCoinp(1, 0, "IOV")
	start := time.Date(2019, time.May, 1, 12, 0, 0, 0, time.UTC)

	n.beginBlock(start)
	balanceID := n.mustSubmit(owner, &timelock.CreateMsg{
		Metadata:     meta,
		Owner:        owner.Address(),
		Amount:       coin.NewCoinp(100, 0, "IOV"),
		ReviewPeriod: 3600,
		Fee:          fee,
	})
	n.mustSubmit(owner, &timelock.DepositMsg{
		Metadata:  meta,
		Owner:     owner.Address(),
		BalanceID: balanceID,
		Amount:    coin.NewCoinp(50, 0, "IOV"),
		Fee:       fee,
	})
	first := n.mustSubmit(owner, &timelock.WithdrawMsg{
		Metadata:  meta,
		Owner:     owner.Address(),
		BalanceID: balanceID,
		Amount:    coin.NewCoinp(150, 0, "IOV"),
		Recipient: recipient.Address(),
		Fee:       fee,
	})
	n.mustSubmit(owner, &timelock.AbortWithdrawalMsg{
		Metadata:     meta,
		Owner:        owner.Address(),
		WithdrawalID: first,
	})
	second := n.mustSubmit(owner, &timelock.WithdrawMsg{
		Metadata:  meta,
		Owner:     owner.Address(),
		BalanceID: balanceID,
		Amount:    coin.NewCoinp(100, 0, "IOV"),
		Recipient: recipient.Address(),
		Fee:       fee,
	})
	n.commit()

	complete := &timelock.CompleteWithdrawalMsg{
		Metadata:     meta,
		Actor:        recipient.Address(),
		WithdrawalID: second,
		Recipient:    recipient.Address(),
		Amount:       coin.NewCoinp(100, 0, "IOV"),
	}

	// a second too early
	n.beginBlock(start.Add(time.Hour - time.Second))
	res := n.submit(recipient, complete)
	assert.Equal(t, timelock.ErrReviewPending.ABCICode(), res.Code, res.Log)
	n.commit()

	n.beginBlock(start.Add(time.Hour))
	n.mustSubmit(recipient, complete)
	n.commit()

	assert.Equal(t, coin.NewCoin(50, 0, "IOV"), n.wallet(timelock.HoldingAddress(balanceID), "IOV"))
	assert.Equal(t, coin.NewCoin(101, 0, "IOV"), n.wallet(recipient.Address(), "IOV"))
	// 150 locked, four fees paid and 100 released to the recipient
	assert.Equal(t, coin.NewCoin(846, 0, "IOV"), n.wallet(owner.Address(), "IOV"))
	assert.Equal(t, coin.NewCoin(4, 0, "IOV"), n.wallet(CollectorAddress, "IOV"))

	// the completed withdrawal is gone
	q := n.app.Query(abci.RequestQuery{Path: "/tlwithdraws", Data: second})
	require.Equal(t, abci.CodeTypeOK, q.Code, q.Log)
	var rs app.ResultSet
	require.NoError(t, rs.Unmarshal(q.Value))
	assert.Empty(t, rs.Results)

	// balance is listed under its owner
	q = n.app.Query(abci.RequestQuery{Path: "/timelocks/owner?prefix", Data: owner.Address()})
	require.Equal(t, abci.CodeTypeOK, q.Code, q.Log)
	var balance timelock.TimeLockBalance
	require.NoError(t, app.UnmarshalOneResult(q.Value, &balance))
	assert.Equal(t, coin.NewCoin(50, 0, "IOV"), balance.Amount)
	assert.Equal(t, vault.UnixDuration(3600), balance.ReviewPeriod)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["vault_tx_processed_total"])
	assert.True(t, names["vault_tx_duration_seconds"])
}

func TestFeesAndSignaturesAreRequired(t *testing.T) {
	owner, recipient := newAccount(), newAccount()
	n := newNode(t, nil, genesis(owner.Address(), recipient.Address()), owner, recipient)
	start := time.Date(2019, time.May, 1, 12, 0, 0, 0, time.UTC)
	n.beginBlock(start)

	create := &timelock.CreateMsg{
		Metadata:     &vault.Metadata{Schema: 1},
		Owner:        owner.Address(),
		Amount:       coin.NewCoinp(100, 0, "IOV"),
		ReviewPeriod: 3600,
		Fee:          coin.NewCoinp(0, 1, "IOV"),
	}
	res := n.submit(owner, create)
	assert.Equal(t, errors.ErrAmount.ABCICode(), res.Code, res.Log)

	// recipient cannot create a balance owned by someone else
	create.Fee = coin.NewCoinp(1, 0, "IOV")
	res = n.submit(recipient, create)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), res.Code, res.Log)

	// unsigned transaction
	raw, err := (&Tx{Msg: create}).Marshal()
	require.NoError(t, err)
	dres := n.app.DeliverTx(raw)
	assert.Equal(t, errors.ErrUnauthorized.ABCICode(), dres.Code, dres.Log)
	n.commit()

	// no fee was taken by the failed transactions
	assert.Equal(t, coin.NewCoin(1000, 0, "IOV"), n.wallet(owner.Address(), "IOV"))
	assert.Equal(t, coin.NewCoin(1, 0, "IOV"), n.wallet(recipient.Address(), "IOV"))

	n.beginBlock(start.Add(time.Minute))
	n.mustSubmit(owner, create)
	n.commit()
	assert.Equal(t, coin.NewCoin(899, 0, "IOV"), n.wallet(owner.Address(), "IOV"))
}

func TestGenerateAppRegistersMetricsOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := GenerateApp("", log.NewNopLogger(), false, reg)
	require.NoError(t, err)
	_, err = GenerateApp("", log.NewNopLogger(), false, reg)
	assert.True(t, errors.ErrState.Is(err), "%+v", err)
}

func TestGenInitOptions(t *testing.T) {
	addr := newAccount().Address()
	raw, err := GenInitOptions([]string{"ETH", fmt.Sprintf("%x", []byte(addr))})
	require.NoError(t, err)

	n := newNode(t, nil, string(raw))
	n.beginBlock(time.Now())
	n.commit()
	assert.Equal(t, coin.NewCoin(123456789, 0, "ETH"), n.wallet(addr, "ETH"))

	_, err = GenInitOptions([]string{"eth"})
	assert.True(t, errors.ErrCurrency.Is(err), "%+v", err)
	_, err = GenInitOptions([]string{"ETH", "zz"})
	assert.True(t, errors.ErrInput.Is(err), "%+v", err)

	raw, err = GenInitOptions(nil)
	require.NoError(t, err)
	var opts vault.Options
	require.NoError(t, json.Unmarshal(raw, &opts))
	require.NoError(t, Initializers().FromGenesis(opts, store.MemStore()))
}
