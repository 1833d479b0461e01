package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/vault"
	vaultd "github.com/iov-one/vault/cmd/vaultd/app"
	"github.com/iov-one/vault/commands/server"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	home     = flag.String("home", filepath.Join(os.ExpandEnv("$HOME"), ".vault"), "directory to store files under")
	logLevel = flag.String("log_level", "info", "lowest level that is logged: debug, info, error or none")
)

const commands = `vaultd - time lock vault node

Usage: vaultd [flags] <command> [args]

Commands:
  init      write the default app state into the genesis file
  start     run the abci server
  validate  check the app state of genesis files
  version   print the version
  help      print this message

Flags:`

func usage() {
	fmt.Fprintln(flag.CommandLine.Output(), commands)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n\n", err)
		usage()
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}
	level, err := log.AllowLevel(*logLevel)
	if err != nil {
		return err
	}
	logger := log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stdout)), level).With("module", "vault")

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "init":
		return server.InitCmd(vaultd.GenInitOptions, logger, *home, rest)
	case "start":
		return server.StartCmd(vaultd.GenerateApp, logger, *home, rest)
	case "validate":
		return server.ValidateGenesis(vaultd.Initializers(), rest)
	case "version":
		fmt.Println(vault.Version())
		return nil
	case "help":
		usage()
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
