package server

import (
	"encoding/json"
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/vault/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	appStateKey = "app_state"
	flagForce   = "f"
)

// GenOptions can parse command-line and flag to
// generate default app_state for the genesis file.
// This is application-specific
type GenOptions func(args []string) (json.RawMessage, error)

// InitCmd adds the app_state produced by gen to the genesis file of a
// tendermint home directory. The genesis file must already exist, create
// it with `tendermint init` first.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	initFlags := flag.NewFlagSet("init", flag.ExitOnError)
	force := initFlags.Bool(flagForce, false, "overwrite existing app_state")
	if err := initFlags.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	genFile := filepath.Join(home, "config", "genesis.json")
	if _, err := os.Stat(genFile); err != nil {
		return errors.Wrapf(errors.ErrNotFound, "genesis file %s, run tendermint init first", genFile)
	}

	options, err := gen(initFlags.Args())
	if err != nil {
		return errors.Wrap(err, "generate app state")
	}
	if err := addGenesisOptions(genFile, options, *force); err != nil {
		return err
	}
	logger.Info("App state written to genesis", "path", genFile)
	return nil
}

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage, force bool) error {
	raw, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "read genesis: %s", err)
	}

	var doc GenesisDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors.Wrapf(errors.ErrInput, "unmarshal genesis: %s", err)
	}
	if current, ok := doc[appStateKey]; ok && !force && !isEmptyState(current) {
		return errors.Wrap(errors.ErrState, "app_state already set, use -f to overwrite")
	}

	doc[appStateKey] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return ioutil.WriteFile(filename, out, 0600)
}

func isEmptyState(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", "{}", `""`:
		return true
	}
	return false
}
