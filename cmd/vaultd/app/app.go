// Package vaultd wires the extensions into the vault node application.
package vaultd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/app"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
	"github.com/iov-one/vault/store/iavl"
	"github.com/iov-one/vault/x"
	"github.com/iov-one/vault/x/cash"
	"github.com/iov-one/vault/x/currency"
	"github.com/iov-one/vault/x/sigs"
	"github.com/iov-one/vault/x/timelock"
	"github.com/iov-one/vault/x/utils"
	"github.com/prometheus/client_golang/prometheus"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const appName = "vaultd"

// handler returns the message router behind the decorator chain. Metrics
// may be nil.
func handler(metrics *utils.Metrics) vault.Handler {
	auth := x.ChainAuth(sigs.Authenticate{})
	bank := cash.NewController(cash.NewBucket())

	r := app.NewRouter()
	cash.RegisterRoutes(r, auth, bank)
	timelock.RegisterRoutes(r, auth, bank)

	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		metrics,
		utils.NewActionTagger(),
		// A failing CheckTx leaves no trace.
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		cash.NewFeeDecorator(auth, bank),
		// A failing DeliverTx still pays the fee and uses the nonce.
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(r)
}

// queryRouter serves "/wallets", "/auth", "/tokens", "/timelocks",
// "/tlwithdraws" and the raw "/" path.
func queryRouter() vault.QueryRouter {
	r := vault.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		currency.RegisterQuery,
		timelock.RegisterQuery,
		orm.RegisterQuery,
	)
	return r
}

// Initializers returns every extension with genesis state.
func Initializers() vault.Initializer {
	return app.ChainInitializers(
		&currency.Initializer{},
		&cash.Initializer{},
	)
}

// openStore opens the iavl database at dbPath. An empty path keeps the
// state in memory.
func openStore(dbPath string) (vault.CommitKVStore, error) {
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "database path %q", dbPath)
	}
	// leveldb appends ".db" itself
	abs = strings.TrimSuffix(abs, filepath.Ext(abs))
	return iavl.NewCommitStore(filepath.Dir(abs), filepath.Base(abs))
}

// GenerateApp builds the node application with its state under home. An
// empty home keeps the state in memory. Metrics are collected only when
// reg is not nil.
func GenerateApp(home string, logger log.Logger, debug bool, reg prometheus.Registerer) (abci.Application, error) {
	var metrics *utils.Metrics
	if reg != nil {
		var err error
		if metrics, err = utils.NewMetrics(reg); err != nil {
			return nil, err
		}
	}

	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "vault.db")
	}
	kv, err := openStore(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	st := app.NewStoreApp(appName, kv, queryRouter(), context.Background()).
		WithInit(Initializers()).
		WithLogger(logger)
	return app.NewBaseApp(st, TxDecoder, handler(metrics), debug), nil
}
