package server

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iov-one/vault/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind    = "bind"
	flagDebug   = "debug"
	flagMetrics = "metrics"
)

type startOptions struct {
	addr    string
	debug   bool
	metrics string
}

func parseFlags(args []string) (startOptions, error) {
	var opts startOptions
	startFlags := flag.NewFlagSet("start", flag.ContinueOnError)
	startFlags.StringVar(&opts.addr, flagBind, "tcp://localhost:26658", "address server listens on")
	startFlags.BoolVar(&opts.debug, flagDebug, false, "call stack returned on error")
	startFlags.StringVar(&opts.metrics, flagMetrics, "", "address to serve prometheus metrics on, disabled if empty")
	if err := startFlags.Parse(args); err != nil {
		return opts, errors.Wrap(errors.ErrInput, err.Error())
	}
	return opts, nil
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags. Application
// metrics must be registered with given registerer.
type AppGenerator func(home string, logger log.Logger, debug bool, reg prometheus.Registerer) (abci.Application, error)

// StartCmd initializes the application and serves it over the ABCI socket
// until the process receives an interrupt or terminate signal.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	app, err := gen(home, logger, opts.debug, reg)
	if err != nil {
		return errors.Wrap(err, "generate app")
	}

	if opts.metrics != "" {
		go serveMetrics(logger, opts.metrics, reg)
	}

	logger.Info("Starting ABCI app", "bind", opts.addr)
	svr, err := server.NewServer(opts.addr, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrState, "creating listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrState, "starting server: %s", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	logger.Info("Stopping ABCI app", "signal", s.String())
	return svr.Stop()
}

func serveMetrics(logger log.Logger, addr string, g prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	logger.Info("Serving metrics", "bind", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("Metrics server stopped", "err", err)
	}
}
