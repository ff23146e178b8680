// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package board_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/ledger"
	"github.com/ava-labs/ledgervm/programs/board"
	"github.com/ava-labs/ledgervm/state/statetest"
)

func initialize(t *testing.T, h *statetest.Host, payer ids.ID) ids.ID {
	var addr ids.ID
	require.NoError(t, h.Run(board.ID, payer, func(call *ledger.Call) error {
		var err error
		addr, err = board.Initialize(call, payer)
		return err
	}))
	return addr
}

func post(h *statetest.Host, payer ids.ID, content string) (ids.ID, error) {
	var addr ids.ID
	err := h.Run(board.ID, payer, func(call *ledger.Call) error {
		var err error
		addr, err = board.PostMessage(call, payer, content)
		return err
	})
	return addr, err
}

func count(h *statetest.Host, addr ids.ID) uint64 {
	counter := &board.Counter{}
	h.Record(addr, counter)
	return counter.Count
}

func TestInitializeIdempotent(t *testing.T) {
	require := require.New(t)
	h := statetest.New(t)
	payer := statetest.NewIdentity(t)
	h.Fund(payer, 1_000_000)

	addr := initialize(t, h, payer)
	afterFirst := h.Balance(payer)
	require.Equal(afterFirst, uint64(1_000_000)-h.Deposit(&board.Counter{}))

	require.Equal(addr, initialize(t, h, payer))
	require.Equal(afterFirst, h.Balance(payer))
	require.Zero(count(h, addr))

	_, err := post(h, payer, "gm")
	require.NoError(err)
	err = h.Run(board.ID, payer, func(call *ledger.Call) error {
		_, err := board.Initialize(call, payer)
		return err
	})
	require.ErrorIs(err, board.ErrAlreadyInitialized)
	require.Equal(uint64(1), count(h, addr))
}

func TestPostMessage(t *testing.T) {
	require := require.New(t)
	h := statetest.New(t)
	payer := statetest.NewIdentity(t)
	h.Fund(payer, 1_000_000)
	counterAddr := initialize(t, h, payer)
	before := h.Balance(payer)

	msgAddr, err := post(h, payer, "hello board")
	require.NoError(err)

	expected, bump, err := board.MessageAddress(counterAddr, 0)
	require.NoError(err)
	require.Equal(expected, msgAddr)

	msg := &board.Message{}
	h.Record(msgAddr, msg)
	require.Equal("hello board", msg.Content)
	require.Equal(payer, msg.Poster)
	require.Equal(h.Clock.Time().Unix(), msg.Timestamp)
	require.Equal(bump, msg.Bump)

	treasury, _, err := board.TreasuryAddress()
	require.NoError(err)
	require.Equal(board.PostFee, h.Balance(treasury))
	require.Equal(before-board.PostFee-h.Deposit(msg), h.Balance(payer))

	events := h.Events()
	last := events[len(events)-1]
	require.Equal(board.MessagePostedEvent, last.Name)
	require.Equal(msgAddr, last.Account)
	require.Equal(board.PostFee, last.Amount)
}

func TestPostMessageCountsMonotonically(t *testing.T) {
	require := require.New(t)
	h := statetest.New(t)
	payer := statetest.NewIdentity(t)
	h.Fund(payer, 10_000_000)
	counterAddr := initialize(t, h, payer)

	const n = 5
	seen := make(map[ids.ID]struct{})
	for i := 0; i < n; i++ {
		addr, err := post(h, payer, "post")
		require.NoError(err)
		seen[addr] = struct{}{}
		require.Equal(uint64(i+1), count(h, counterAddr))
	}
	require.Len(seen, n)
}

func TestPostMessageContentBound(t *testing.T) {
	require := require.New(t)
	h := statetest.New(t)
	payer := statetest.NewIdentity(t)
	h.Fund(payer, 1_000_000)
	counterAddr := initialize(t, h, payer)
	before := h.Balance(payer)

	_, err := post(h, payer, strings.Repeat("x", board.MaxContent+1))
	require.ErrorIs(err, board.ErrContentTooLong)
	require.Equal(ledger.ClassValidation, ledger.ClassOf(err))
	require.Equal(before, h.Balance(payer))
	require.Zero(count(h, counterAddr))

	msgAddr, _, err := board.MessageAddress(counterAddr, 0)
	require.NoError(err)
	require.Nil(h.Slot(msgAddr))

	// the same call with corrected content succeeds
	_, err = post(h, payer, strings.Repeat("x", board.MaxContent))
	require.NoError(err)
	require.Equal(uint64(1), count(h, counterAddr))
}

func TestPostMessageCounterOverflow(t *testing.T) {
	require := require.New(t)
	h := statetest.New(t)
	payer := statetest.NewIdentity(t)
	h.Fund(payer, 1_000_000)
	counterAddr := initialize(t, h, payer)

	require.NoError(h.Run(board.ID, payer, func(call *ledger.Call) error {
		counter := &board.Counter{}
		if err := ledger.Load(call, counterAddr, counter); err != nil {
			return err
		}
		counter.Count = math.MaxUint64
		return ledger.Save(call, counterAddr, counter)
	}))
	before := h.Balance(payer)

	_, err := post(h, payer, "one too many")
	require.ErrorIs(err, board.ErrCounterOverflow)
	require.Equal(ledger.ClassArithmetic, ledger.ClassOf(err))
	require.Equal(uint64(math.MaxUint64), count(h, counterAddr))
	require.Equal(before, h.Balance(payer))
}

func TestPostMessageInsufficientFunds(t *testing.T) {
	require := require.New(t)
	h := statetest.New(t)
	payer := statetest.NewIdentity(t)
	h.Fund(payer, 1_000_000)
	counterAddr := initialize(t, h, payer)

	poor := statetest.NewIdentity(t)
	h.Fund(poor, h.Deposit(&board.Message{}))

	// enough for the storage deposit but not the fee
	_, err := post(h, poor, "hi")
	require.ErrorIs(err, ledger.ErrInsufficientBalance)
	require.Equal(h.Deposit(&board.Message{}), h.Balance(poor))
	require.Zero(count(h, counterAddr))
}

func TestPostMessageUninitialized(t *testing.T) {
	h := statetest.New(t)
	payer := statetest.NewIdentity(t)
	h.Fund(payer, 1_000_000)

	_, err := post(h, payer, "hi")
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestSpace(t *testing.T) {
	require := require.New(t)
	// discriminator and codec version, then the fields
	require.Equal(uint64(10+8+1), (&board.Counter{}).Space())
	require.Equal(uint64(10+(4+100)+8+32+1), (&board.Message{}).Space())
}
