// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/engine/common"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"

	"github.com/ava-labs/ledgervm/ledger"
	"github.com/ava-labs/ledgervm/state"
)

// Name/Version
var (
	Name    = "ledgervm"
	Version = "v0.1.0"
)

var (
	errReplayedTx      = errors.New("transaction already accepted")
	errUnknownParent   = errors.New("block does not extend the last accepted block")
	errBlockProcessing = errors.New("another block is being processed")
	errNotVerified     = errors.New("block was not verified")
	errNoValidTxs      = errors.New("no valid transactions to build a block with")
	errGenesisMismatch = errors.New("database was initialized from a different genesis")

	futureBlockLimit = time.Minute // Maximum amount of time that a block can be in the future
)

// VM is a single node chain hosting the ledger programs. Transactions are
// executed serially, each inside its own state transaction, and a block is
// committed to disk only once all of them have run.
type VM struct {
	lock sync.RWMutex

	config  Config
	rules   Rules
	chainID ids.ID

	// Clock used for block building and verification
	clock mockable.Clock

	state    *state.State
	mempool  *mempool
	feed     *feed
	registry *prometheus.Registry
	metrics  *metrics

	lastAccepted *Block
	// verified is the block whose effects are pending in state
	verified *Block
}

// Initialize opens the chain stored in [db], creating it from [genesisBytes]
// if it is empty. [toEngine] is notified whenever transactions are pending.
func (vm *VM) Initialize(
	ctx context.Context,
	db database.Database,
	genesisBytes []byte,
	configBytes []byte,
	toEngine chan<- common.Message,
) error {
	config, err := ParseConfig(configBytes)
	if err != nil {
		return err
	}
	genesis, err := ParseGenesis(genesisBytes)
	if err != nil {
		return err
	}

	vm.config = config
	vm.rules = Rules{LockPolicy: config.LockPolicy}
	vm.chainID = hashing.ComputeHash256Array(genesisBytes)

	vm.state, err = state.New(db, state.Config{
		Rent:      config.Rent,
		CacheSize: config.AccountCacheSize,
	})
	if err != nil {
		return fmt.Errorf("failed to open state: %w", err)
	}
	vm.feed = newFeed()
	vm.state.SetListener(vm.feed.publish)

	vm.registry = prometheus.NewRegistry()
	vm.metrics, err = newMetrics(vm.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	vm.mempool = newMempool(toEngine, config.MempoolSize)

	log.Info("initializing ledger VM",
		"version", Version,
		"chainID", vm.chainID,
		"lockPolicy", config.LockPolicy,
	)
	return vm.initGenesis(genesis)
}

// genesisBlock is the block at height 0. Its parent is the chain ID, which
// binds the chain to the genesis document it was created from.
func (vm *VM) genesisBlock(genesis *Genesis) (*Block, error) {
	blk := &Block{
		PrntID: vm.chainID,
		Tmstmp: genesis.Timestamp,
	}
	return blk, blk.initialize()
}

func (vm *VM) initGenesis(genesis *Genesis) error {
	genesisBlk, err := vm.genesisBlock(genesis)
	if err != nil {
		return fmt.Errorf("failed to build genesis block: %w", err)
	}

	initialized, err := vm.state.IsInitialized()
	if err != nil {
		return err
	}
	if initialized {
		genesisBlkID, err := vm.state.GetBlockIDAtHeight(0)
		if err != nil {
			return fmt.Errorf("failed to get blockID for genesis: %w", err)
		}
		if genesisBlkID != genesisBlk.id {
			return errGenesisMismatch
		}
		lastAcceptedID, err := vm.state.GetLastAccepted()
		if err != nil {
			return fmt.Errorf("failed to get last accepted blockID: %w", err)
		}
		vm.lastAccepted, err = vm.getBlock(lastAcceptedID)
		if err != nil {
			return err
		}
		log.Info("loaded chain", "height", vm.lastAccepted.Hght, "lastAccepted", lastAcceptedID)
		return nil
	}

	err = vm.state.Atomic(func(v *state.View) error {
		for _, alloc := range genesis.Allocations {
			if err := v.Mint(alloc.Address, uint64(alloc.Balance)); err != nil {
				return fmt.Errorf("failed to allocate to %s: %w", alloc.Address, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := vm.state.PutBlock(genesisBlk.id, 0, genesisBlk.bytes); err != nil {
		return fmt.Errorf("failed to put genesis block: %w", err)
	}
	if err := vm.state.SetLastAccepted(genesisBlk.id); err != nil {
		return err
	}
	if err := vm.state.SetInitialized(); err != nil {
		return fmt.Errorf("error while setting db to initialized: %w", err)
	}
	if err := vm.state.Commit(); err != nil {
		return fmt.Errorf("failed to commit genesis: %w", err)
	}
	vm.lastAccepted = genesisBlk

	log.Info("created genesis", "blkID", genesisBlk.id, "allocations", len(genesis.Allocations))
	return nil
}

func (vm *VM) ParseBlock(_ context.Context, b []byte) (*Block, error) {
	return ParseBlock(b)
}

func (vm *VM) getBlock(blkID ids.ID) (*Block, error) {
	blkBytes, err := vm.state.GetBlock(blkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get block %s: %w", blkID, err)
	}
	blk, err := ParseBlock(blkBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse block from disk %s: %w", blkID, err)
	}
	return blk, nil
}

func (vm *VM) GetBlock(_ context.Context, blkID ids.ID) (*Block, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	return vm.getBlock(blkID)
}

func (vm *VM) GetBlockIDAtHeight(_ context.Context, height uint64) (ids.ID, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	blkID, err := vm.state.GetBlockIDAtHeight(height)
	if err != nil {
		return ids.ID{}, fmt.Errorf("failed to get height index at %d: %w", height, err)
	}
	return blkID, nil
}

func (vm *VM) LastAccepted(context.Context) (ids.ID, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	return vm.lastAccepted.id, nil
}

// ChainID is the hash of the genesis document.
func (vm *VM) ChainID() ids.ID { return vm.chainID }

func (vm *VM) Config() Config { return vm.config }

// IssueTx checks [tx] and adds it to the mempool.
func (vm *VM) IssueTx(tx *Tx) error {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if err := vm.checkTx(tx); err != nil {
		return err
	}
	if err := vm.mempool.Add(tx); err != nil {
		return err
	}
	vm.metrics.mempoolSize.Set(float64(vm.mempool.Len()))
	log.Debug("issued tx", "txID", tx.ID(), "action", tx.Action().Name(), "signer", tx.Signer())
	return nil
}

// checkTx performs the stateless checks of [tx] and rejects replays.
func (vm *VM) checkTx(tx *Tx) error {
	if err := tx.Verify(vm.chainID); err != nil {
		return err
	}
	accepted, err := vm.state.HasReceipt(tx.ID())
	if err != nil {
		return err
	}
	if accepted {
		return errReplayedTx
	}
	return nil
}

// BuildBlock builds a block out of the pending transactions on top of the
// last accepted block.
func (vm *VM) BuildBlock(context.Context) (*Block, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.buildBlock()
}

func (vm *VM) buildBlock() (*Block, error) {
	txs, err := vm.mempool.Next(vm.config.MaxBlockTxs)
	if err != nil {
		return nil, err
	}
	defer vm.metrics.mempoolSize.Set(float64(vm.mempool.Len()))

	valid := make([]*Tx, 0, len(txs))
	for _, tx := range txs {
		if err := vm.checkTx(tx); err != nil {
			log.Debug("dropping tx", "txID", tx.ID(), "err", err)
			continue
		}
		valid = append(valid, tx)
	}
	if len(valid) == 0 {
		return nil, errNoValidTxs
	}

	parent := vm.lastAccepted
	timestamp := vm.clock.Time().Unix()
	if timestamp < parent.Tmstmp {
		timestamp = parent.Tmstmp
	}
	return newBlock(parent, timestamp, valid)
}

// Verify executes [blk] on top of the last accepted block. Its effects stay
// pending in state until the block is accepted or rejected; only one block
// may be pending at a time.
func (vm *VM) Verify(_ context.Context, blk *Block) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.verifyBlock(blk)
}

func (vm *VM) verifyBlock(blk *Block) error {
	if vm.verified != nil {
		return errBlockProcessing
	}
	parent := vm.lastAccepted
	if blk.PrntID != parent.id {
		return errUnknownParent
	}

	// Ensure [b]'s height comes right after its parent's height
	if expectedHeight := parent.Height() + 1; expectedHeight != blk.Hght {
		return fmt.Errorf(
			"expected block to have height %d, but found %d",
			expectedHeight,
			blk.Hght,
		)
	}

	// Ensure [b]'s timestamp is >= its parent's timestamp.
	if blk.Timestamp().Unix() < parent.Timestamp().Unix() {
		return fmt.Errorf("block cannot have timestamp (%s) < parent timestamp (%s)", blk.Timestamp(), parent.Timestamp())
	}

	// Ensure [b]'s timestamp is not too far ahead of this node's time
	if now := vm.clock.Time(); blk.Timestamp().Unix() >= now.Add(futureBlockLimit).Unix() {
		return fmt.Errorf("block cannot have timestamp (%s) further than (%s) past current time (%s)", blk.Timestamp(), futureBlockLimit, now)
	}

	seen := make(map[ids.ID]struct{}, len(blk.Txs))
	receipts := make([]*state.Receipt, len(blk.Txs))
	for i, tx := range blk.Txs {
		txID := tx.ID()
		if _, ok := seen[txID]; ok {
			return vm.abort(fmt.Errorf("tx %s included twice: %w", txID, errReplayedTx))
		}
		seen[txID] = struct{}{}
		if err := vm.checkTx(tx); err != nil {
			return vm.abort(fmt.Errorf("invalid tx %s: %w", txID, err))
		}
		receipts[i] = vm.executeTx(blk, tx)
	}

	blk.receipts = receipts
	vm.verified = blk
	return nil
}

// executeTx runs the action of [tx] in its own state transaction. A failing
// action leaves no trace in state besides its receipt.
func (vm *VM) executeTx(blk *Block, tx *Tx) *state.Receipt {
	var clock mockable.Clock
	clock.Set(blk.Timestamp())

	action := tx.Action()
	err := vm.state.Atomic(func(v *state.View) error {
		return action.Execute(&ledger.Call{
			Program: action.Program(),
			Signer:  tx.Signer(),
			Storage: v,
			Bank:    v,
			Clock:   &clock,
			Events:  v,
		}, vm.rules)
	})
	vm.metrics.executed(action.Name(), err == nil)

	receipt := &state.Receipt{
		BlockID: blk.id,
		Success: err == nil,
	}
	if err != nil {
		receipt.Class = uint8(ledger.ClassOf(err))
		receipt.Error = err.Error()
		log.Debug("tx failed", "txID", tx.ID(), "action", action.Name(), "err", err)
	}
	return receipt
}

func (vm *VM) abort(cause error) error {
	if err := vm.state.Abort(); err != nil {
		log.Error("failed to abort state", "err", err)
	}
	return cause
}

// Accept marks [blk] as accepted and performs all DB IO necessary on accept.
func (vm *VM) Accept(_ context.Context, blk *Block) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.acceptBlock(blk)
}

func (vm *VM) acceptBlock(blk *Block) error {
	if vm.verified != blk {
		return errNotVerified
	}
	vm.verified = nil

	for i, tx := range blk.Txs {
		if err := vm.state.PutReceipt(tx.ID(), blk.receipts[i]); err != nil {
			return vm.abort(err)
		}
	}
	if err := vm.state.PutBlock(blk.id, blk.Hght, blk.bytes); err != nil {
		return vm.abort(err)
	}
	if err := vm.state.SetLastAccepted(blk.id); err != nil {
		return vm.abort(fmt.Errorf("failed to update last accepted block to %s: %w", blk.id, err))
	}
	if err := vm.state.Commit(); err != nil {
		return vm.abort(fmt.Errorf("failed to commit database accepting block %s: %w", blk.id, err))
	}

	vm.lastAccepted = blk
	vm.metrics.blocksAccepted.Inc()
	log.Info("accepted block", "height", blk.Hght, "blkID", blk.id, "txs", len(blk.Txs))
	return nil
}

// Reject discards the pending effects of [blk]. Its transactions are dropped.
func (vm *VM) Reject(_ context.Context, blk *Block) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.verified != blk {
		return errNotVerified
	}
	vm.verified = nil
	log.Info("rejected block", "height", blk.Hght, "blkID", blk.id)
	return vm.state.Abort()
}

// produce builds, verifies and accepts one block under a single lock, so that
// readers never observe a pending block.
func (vm *VM) produce() (*Block, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	blk, err := vm.buildBlock()
	if err != nil {
		return nil, err
	}
	if err := vm.verifyBlock(blk); err != nil {
		return nil, err
	}
	return blk, vm.acceptBlock(blk)
}

// Shutdown is called when the node is shutting down.
func (vm *VM) Shutdown(context.Context) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.state == nil {
		return nil
	}
	vm.feed.close()
	return vm.state.Close()
}

// Version returns the version of the VM.
func (vm *VM) Version(context.Context) (string, error) {
	return Version, nil
}
