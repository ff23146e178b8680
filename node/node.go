// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package node assembles a standalone ledger node: its database, the VM, the
// block production engine and the HTTP API.
package node

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/leveldb"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/snow/engine/common"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/ledgervm/vm"
)

// APIPrefix is the path the VM's handlers are mounted under.
const APIPrefix = "/ext/ledger"

type Config struct {
	// DBDir is the leveldb directory. The node keeps its state in memory if
	// it is empty.
	DBDir    string
	Genesis  []byte
	VMConfig []byte
}

type Node struct {
	db     database.Database
	vm     *vm.VM
	engine *vm.Engine
	mux    *http.ServeMux
}

func New(ctx context.Context, config Config) (*Node, error) {
	db, err := openDB(config.DBDir)
	if err != nil {
		return nil, err
	}

	toEngine := make(chan common.Message, 1)
	v := &vm.VM{}
	if err := v.Initialize(ctx, db, config.Genesis, config.VMConfig, toEngine); err != nil {
		_ = db.Close()
		return nil, err
	}

	handlers, err := v.CreateHandlers(ctx)
	if err != nil {
		_ = v.Shutdown(ctx)
		_ = db.Close()
		return nil, err
	}
	mux := http.NewServeMux()
	for path, handler := range handlers {
		mux.Handle(APIPrefix+path, handler)
	}

	return &Node{
		db:     db,
		vm:     v,
		engine: vm.NewEngine(v, toEngine),
		mux:    mux,
	}, nil
}

func openDB(dir string) (database.Database, error) {
	if dir == "" {
		log.Info("using in-memory database")
		return memdb.New(), nil
	}
	db, err := leveldb.New(dir, nil, logging.NoLog{}, "db", prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", dir, err)
	}
	log.Info("opened database", "dir", dir)
	return db, nil
}

func (n *Node) VM() *vm.VM { return n.vm }

// Handler serves the VM's API under APIPrefix.
func (n *Node) Handler() http.Handler { return n.mux }

// Run produces blocks until [ctx] is done.
func (n *Node) Run(ctx context.Context) error {
	return n.engine.Run(ctx)
}

// Close must only be called once Run has returned.
func (n *Node) Close(ctx context.Context) error {
	if err := n.vm.Shutdown(ctx); err != nil {
		return err
	}
	return n.db.Close()
}
