// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/engine/common"
)

const defaultMempoolSize = 1024

var (
	errEmptyMempool = errors.New("empty mempool")
	errDuplicateTx  = errors.New("transaction already in mempool")
)

// mempool holds issued transactions in arrival order until they are built
// into a block.
type mempool struct {
	lock sync.Mutex

	toEngine chan<- common.Message
	maxSize  int

	txs   []*Tx
	txIDs map[ids.ID]struct{}
}

func newMempool(toEngine chan<- common.Message, maxSize int) *mempool {
	if maxSize <= 0 {
		maxSize = defaultMempoolSize
	}
	return &mempool{
		toEngine: toEngine,
		maxSize:  maxSize,
		txIDs:    make(map[ids.ID]struct{}),
	}
}

func (m *mempool) Add(tx *Tx) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	txID := tx.ID()
	if _, ok := m.txIDs[txID]; ok {
		return errDuplicateTx
	}
	if len(m.txs) >= m.maxSize {
		return fmt.Errorf("failed to add tx %s to mempool due to full at size (%d)", txID, m.maxSize)
	}
	m.txs = append(m.txs, tx)
	m.txIDs[txID] = struct{}{}

	select {
	case m.toEngine <- common.PendingTxs:
	default:
	}
	return nil
}

// Next removes and returns up to [max] transactions.
func (m *mempool) Next(max int) ([]*Tx, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if len(m.txs) == 0 {
		return nil, errEmptyMempool
	}
	if max <= 0 || max > len(m.txs) {
		max = len(m.txs)
	}
	next := m.txs[:max:max]
	m.txs = m.txs[max:]
	for _, tx := range next {
		delete(m.txIDs, tx.ID())
	}
	return next, nil
}

func (m *mempool) Has(txID ids.ID) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	_, ok := m.txIDs[txID]
	return ok
}

func (m *mempool) Len() int {
	m.lock.Lock()
	defer m.lock.Unlock()

	return len(m.txs)
}
