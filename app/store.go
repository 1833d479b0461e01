package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp implements the state and query part of abci.Application. It
// is meant to be embedded by an application that processes transactions.
//
// Info, InitChain, BeginBlock, EndBlock and Commit do not process user
// input. There is no way to recover from their failure and they panic.
type StoreApp struct {
	name   string
	logger log.Logger
	debug  bool

	state       *state
	initializer vault.Initializer
	queryRouter vault.QueryRouter

	// chainID is empty until the genesis is loaded.
	chainID string
	// baseContext lives as long as the application, blockContext is
	// replaced at the beginning of every block.
	baseContext  vault.Context
	blockContext vault.Context
}

// NewStoreApp loads the latest committed version of given store. It
// panics if the store cannot be loaded.
func NewStoreApp(name string, db vault.CommitKVStore, queryRouter vault.QueryRouter, baseContext vault.Context) *StoreApp {
	st, err := loadState(db)
	if err != nil {
		panic(err)
	}
	chainID, err := loadChainID(st.deliver)
	if err != nil {
		panic(err)
	}
	latest, err := st.latest()
	if err != nil {
		panic(err)
	}

	s := &StoreApp{
		name:        name,
		state:       st,
		queryRouter: queryRouter,
		baseContext: baseContext,
		chainID:     chainID,
	}
	s.WithLogger(log.NewNopLogger())
	if chainID != "" {
		s.baseContext = vault.WithChainID(s.baseContext, chainID)
	}
	s.blockContext = vault.WithHeight(s.baseContext, latest.Version)
	return s
}

func (s *StoreApp) WithInit(init vault.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithDebug exposes internal error details in responses.
func (s *StoreApp) WithDebug(debug bool) *StoreApp {
	s.debug = debug
	return s
}

// WithLogger sets the logger of the application and of every context it
// creates.
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	s.baseContext = vault.WithLogger(s.baseContext, logger)
	return s
}

func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// BlockContext returns the context of the block being processed.
func (s *StoreApp) BlockContext() vault.Context {
	return s.blockContext
}

func (s *StoreApp) DeliverStore() vault.CacheableKVStore {
	return s.state.deliver
}

func (s *StoreApp) CheckStore() vault.CacheableKVStore {
	return s.state.check
}

// loadGenesis runs once, when the chain is created.
func (s *StoreApp) loadGenesis(raw []byte, chainID string) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "genesis already loaded for %q", s.chainID)
	}
	if len(raw) == 0 {
		return errors.Wrap(errors.ErrState, "app_state is missing in genesis.json, initialize the application first")
	}
	if s.initializer == nil {
		return errors.Wrap(errors.ErrHuman, "initializer not set")
	}
	var opts vault.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return errors.Wrapf(errors.ErrInput, "app_state: %s", err)
	}
	if err := saveChainID(s.state.deliver, chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.baseContext = vault.WithChainID(s.baseContext, chainID)
	return s.initializer.FromGenesis(opts, s.state.deliver)
}

func (s *StoreApp) Info(abci.RequestInfo) abci.ResponseInfo {
	latest, err := s.state.latest()
	if err != nil {
		panic(err)
	}
	s.logger.Info("Info synced", "height", latest.Version, "hash", fmt.Sprintf("%X", latest.Hash))
	return abci.ResponseInfo{
		Data:             s.name,
		Version:          vault.Version(),
		LastBlockHeight:  latest.Version,
		LastBlockAppHash: latest.Hash,
	}
}

func (s *StoreApp) SetOption(abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

// Query reads the last committed state. The path selects a bucket
// ("/<bucket>") or one of its indexes ("/<bucket>/<index>"). A "?prefix"
// suffix turns it into a prefix query. Both the keys and the values of
// the response are serialized ResultSets of the same length.
func (s *StoreApp) Query(req abci.RequestQuery) abci.ResponseQuery {
	path, mod := req.Path, ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, mod = path[:i], path[i+1:]
	}
	h := s.queryRouter.Handler(path)
	if h == nil {
		return s.queryError(errors.Wrapf(errors.ErrNotFound, "query path %q", req.Path))
	}

	latest, err := s.state.latest()
	if err != nil {
		return s.queryError(err)
	}
	if req.Height != 0 && req.Height != latest.Version {
		return s.queryError(errors.Wrapf(errors.ErrInput, "only the latest height %d can be queried", latest.Version))
	}

	db := s.state.committed.CacheWrap()
	defer db.Discard()
	models, err := h.Query(db, mod, req.Data)
	if err != nil {
		return s.queryError(err)
	}
	res := abci.ResponseQuery{Height: latest.Version}
	if res.Key, err = ResultsFromKeys(models).Marshal(); err != nil {
		return s.queryError(err)
	}
	if res.Value, err = ResultsFromValues(models).Marshal(); err != nil {
		return s.queryError(err)
	}
	return res
}

func (s *StoreApp) queryError(err error) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, s.debug)
	return abci.ResponseQuery{Code: code, Log: log}
}

func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	if err := s.loadGenesis(req.AppStateBytes, req.ChainId); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock sets up the context of the block with its height and time.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	height := req.Header.GetHeight()
	ctx := vault.WithHeight(s.baseContext, height)
	ctx = vault.WithBlockTime(ctx, req.Header.GetTime())
	s.blockContext = vault.WithLogInfo(ctx, "height", height)
	return abci.ResponseBeginBlock{}
}

func (s *StoreApp) EndBlock(abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}

func (s *StoreApp) Commit() abci.ResponseCommit {
	id, err := s.state.commit()
	if err != nil {
		panic(err)
	}
	s.logger.Debug("Commit synced", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return abci.ResponseCommit{Data: id.Hash}
}
