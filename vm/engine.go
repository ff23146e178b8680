// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"
	"time"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/snow/engine/common"
)

// Engine drives block production for a single node. It builds a block
// whenever the VM reports pending transactions, and also on a fixed interval
// so that no notification can be lost.
type Engine struct {
	vm       *VM
	msgs     <-chan common.Message
	interval time.Duration
}

// NewEngine returns an engine reading notifications from [msgs], which must be
// the receiving end of the channel given to Initialize.
func NewEngine(vm *VM, msgs <-chan common.Message) *Engine {
	return &Engine{
		vm:       vm,
		msgs:     msgs,
		interval: time.Duration(vm.config.BuildInterval),
	}
}

// Run produces blocks until [ctx] is done.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-e.msgs:
			if msg != common.PendingTxs {
				log.Debug("ignoring engine message", "msg", msg)
				continue
			}
		case <-ticker.C:
		}
		if err := e.drain(); err != nil {
			return err
		}
	}
}

// drain produces blocks until the mempool is empty.
func (e *Engine) drain() error {
	for {
		_, err := e.vm.produce()
		switch {
		case err == nil, errors.Is(err, errNoValidTxs):
		case errors.Is(err, errEmptyMempool):
			return nil
		default:
			log.Error("failed to produce block", "err", err)
			return err
		}
	}
}
