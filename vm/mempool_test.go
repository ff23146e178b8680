// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/snow/engine/common"
)

func newTestTxs(t *testing.T, n int) []*Tx {
	key := newTestKey(t)
	chainID := ids.GenerateTestID()
	txs := make([]*Tx, n)
	for i := range txs {
		tx, err := NewTx(chainID, uint64(i), &Transfer{To: ids.GenerateTestID(), Amount: 1}, key.priv)
		require.NoError(t, err)
		txs[i] = tx
	}
	return txs
}

func TestMempoolOrder(t *testing.T) {
	require := require.New(t)

	txs := newTestTxs(t, 3)
	m := newMempool(nil, 0)
	for _, tx := range txs {
		require.NoError(m.Add(tx))
	}
	require.Equal(3, m.Len())
	require.True(m.Has(txs[1].ID()))

	next, err := m.Next(2)
	require.NoError(err)
	require.Equal(txs[:2], next)
	require.False(m.Has(txs[1].ID()))

	next, err = m.Next(10)
	require.NoError(err)
	require.Equal(txs[2:], next)

	_, err = m.Next(1)
	require.ErrorIs(err, errEmptyMempool)
}

func TestMempoolDuplicate(t *testing.T) {
	require := require.New(t)

	tx := newTestTxs(t, 1)[0]
	m := newMempool(nil, 0)
	require.NoError(m.Add(tx))
	require.ErrorIs(m.Add(tx), errDuplicateTx)
	require.Equal(1, m.Len())
}

func TestMempoolFull(t *testing.T) {
	require := require.New(t)

	txs := newTestTxs(t, 3)
	m := newMempool(nil, 2)
	require.NoError(m.Add(txs[0]))
	require.NoError(m.Add(txs[1]))
	require.Error(m.Add(txs[2]))
	require.Equal(2, m.Len())
}

func TestMempoolNotifiesEngine(t *testing.T) {
	require := require.New(t)

	toEngine := make(chan common.Message, 1)
	txs := newTestTxs(t, 2)
	m := newMempool(toEngine, 0)

	// a second notification must not block on a full channel
	require.NoError(m.Add(txs[0]))
	require.NoError(m.Add(txs[1]))
	require.Equal(common.PendingTxs, <-toEngine)
	require.Len(toEngine, 0)
}
