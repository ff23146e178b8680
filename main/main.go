// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/viper"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/ledgervm/node"
	"github.com/ava-labs/ledgervm/vm"
)

const shutdownTimeout = 5 * time.Second

var errNoGenesis = errors.New("genesis-file is required")

func main() {
	v, err := getViper()
	if err != nil {
		fmt.Printf("couldn't get config: %s\n", err)
		os.Exit(1)
	}
	// Print version and exit
	if v.GetBool(versionKey) {
		fmt.Printf("%s@%s\n", vm.Name, vm.Version)
		os.Exit(0)
	}

	lvl, err := log.LvlFromString(v.GetString(logLevelKey))
	if err != nil {
		fmt.Printf("couldn't parse log level: %s\n", err)
		os.Exit(1)
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat())))

	if err := run(v); err != nil {
		log.Error("node stopped", "err", err)
		os.Exit(1)
	}
}

func run(v *viper.Viper) error {
	genesisPath := v.GetString(genesisFileKey)
	if genesisPath == "" {
		return errNoGenesis
	}
	genesis, err := os.ReadFile(genesisPath)
	if err != nil {
		return fmt.Errorf("couldn't read genesis: %w", err)
	}
	var vmConfig []byte
	if configPath := v.GetString(configFileKey); configPath != "" {
		vmConfig, err = os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("couldn't read config: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := node.New(ctx, node.Config{
		DBDir:    v.GetString(dbDirKey),
		Genesis:  genesis,
		VMConfig: vmConfig,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(v.GetString(httpHostKey), strconv.Itoa(v.GetInt(httpPortKey))),
		Handler:           n.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	engineCtx, cancelEngine := context.WithCancel(ctx)
	engineDone := make(chan error, 1)
	go func() { engineDone <- n.Run(engineCtx) }()

	log.Info("serving API", "addr", server.Addr, "prefix", node.APIPrefix, "chainID", n.VM().ChainID())

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-serverErr:
	case runErr = <-engineDone:
		engineDone <- runErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("failed to shut down HTTP server", "err", err)
	}
	cancelEngine()
	if err := <-engineDone; err != nil && runErr == nil {
		runErr = err
	}
	if err := n.Close(shutdownCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
