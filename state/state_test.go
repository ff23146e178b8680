// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/ledger"
)

var (
	testOwner = ids.ID{'o', 'w', 'n', 'e', 'r'}
	errBoom   = errors.New("boom")
)

func newTestState(t *testing.T) *State {
	s, err := New(memdb.New(), Config{Rent: DefaultRentSchedule, CacheSize: 16})
	require.NoError(t, err)
	return s
}

func TestRentDeposit(t *testing.T) {
	require := require.New(t)

	deposit, err := DefaultRentSchedule.Deposit(100)
	require.NoError(err)
	require.Equal(uint64((128+100)*10), deposit)

	_, err = RentSchedule{LamportsPerByte: 2, OverheadBytes: 1}.Deposit(math.MaxUint64)
	require.Error(err)
	_, err = RentSchedule{LamportsPerByte: math.MaxUint64}.Deposit(2)
	require.Error(err)
}

func TestAtomicRollback(t *testing.T) {
	require := require.New(t)
	s := newTestState(t)
	payer := ids.GenerateTestID()
	addr := ids.GenerateTestID()

	require.NoError(s.Atomic(func(v *View) error {
		return v.Mint(payer, 1_000_000)
	}))

	err := s.Atomic(func(v *View) error {
		if err := v.Allocate(addr, testOwner, 10, payer); err != nil {
			return err
		}
		if err := v.Write(addr, []byte("data")); err != nil {
			return err
		}
		if err := v.Emit(&ledger.Event{Name: "lost"}); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(err, errBoom)

	require.NoError(s.Read(func(v *View) error {
		_, err := v.Load(addr)
		require.ErrorIs(err, ledger.ErrAccountNotFound)
		balance, err := v.Balance(payer)
		require.NoError(err)
		require.Equal(uint64(1_000_000), balance)
		return nil
	}))
	require.Zero(s.NextEvent())
	events, err := s.Events(0, 10)
	require.NoError(err)
	require.Empty(events)
}

func TestAllocateAndDeallocate(t *testing.T) {
	require := require.New(t)
	s := newTestState(t)
	payer := ids.GenerateTestID()
	refundTo := ids.GenerateTestID()
	addr := ids.GenerateTestID()
	deposit, err := s.Rent().Deposit(32)
	require.NoError(err)

	require.NoError(s.Atomic(func(v *View) error {
		if err := v.Mint(payer, deposit); err != nil {
			return err
		}
		if err := v.Allocate(addr, testOwner, 32, payer); err != nil {
			return err
		}
		require.ErrorIs(v.Allocate(addr, testOwner, 32, payer), ledger.ErrAccountAlreadyInUse)
		require.ErrorIs(v.Write(addr, make([]byte, 33)), ledger.ErrAccountDidNotSerialize)
		return v.Write(addr, []byte("hello"))
	}))

	require.NoError(s.Read(func(v *View) error {
		slot, err := v.Load(addr)
		require.NoError(err)
		require.Equal(testOwner, slot.Owner)
		require.Equal(payer, slot.Payer)
		require.Equal(deposit, slot.Rent)
		require.Equal([]byte("hello"), slot.Data)
		balance, err := v.Balance(payer)
		require.NoError(err)
		require.Zero(balance)
		return nil
	}))

	// value sent to the slot is refunded along with the deposit
	require.NoError(s.Atomic(func(v *View) error {
		if err := v.Mint(addr, 7); err != nil {
			return err
		}
		return v.Deallocate(addr, refundTo)
	}))
	require.NoError(s.Read(func(v *View) error {
		_, err := v.Load(addr)
		require.ErrorIs(err, ledger.ErrAccountNotFound)
		balance, err := v.Balance(refundTo)
		require.NoError(err)
		require.Equal(deposit+7, balance)
		balance, err = v.Balance(addr)
		require.NoError(err)
		require.Zero(balance)
		return nil
	}))
}

func TestAllocateInsufficientRent(t *testing.T) {
	require := require.New(t)
	s := newTestState(t)
	payer := ids.GenerateTestID()

	err := s.Atomic(func(v *View) error {
		return v.Allocate(ids.GenerateTestID(), testOwner, 32, payer)
	})
	require.ErrorIs(err, ledger.ErrInsufficientFundsForRent)
}

func TestCacheNotStale(t *testing.T) {
	require := require.New(t)
	s := newTestState(t)
	payer := ids.GenerateTestID()
	addr := ids.GenerateTestID()

	require.NoError(s.Atomic(func(v *View) error {
		if err := v.Mint(payer, 1_000_000); err != nil {
			return err
		}
		if err := v.Allocate(addr, testOwner, 16, payer); err != nil {
			return err
		}
		return v.Write(addr, []byte("v1"))
	}))

	// warm the cache
	require.NoError(s.Read(func(v *View) error {
		_, err := v.Load(addr)
		return err
	}))
	require.True(s.slotCache.Contains(addr))

	require.NoError(s.Atomic(func(v *View) error {
		if err := v.Write(addr, []byte("v2")); err != nil {
			return err
		}
		slot, err := v.Load(addr)
		require.NoError(err)
		require.Equal([]byte("v2"), slot.Data)
		return nil
	}))
	require.False(s.slotCache.Contains(addr))

	require.NoError(s.Read(func(v *View) error {
		if _, err := v.Load(addr); err != nil {
			return err
		}
		return nil
	}))
	require.NoError(s.Atomic(func(v *View) error {
		return v.Deallocate(addr, payer)
	}))
	require.NoError(s.Read(func(v *View) error {
		_, err := v.Load(addr)
		require.ErrorIs(err, ledger.ErrAccountNotFound)
		return nil
	}))

	// a loaded copy cannot alter the cached slot
	require.NoError(s.Atomic(func(v *View) error {
		if err := v.Allocate(addr, testOwner, 16, payer); err != nil {
			return err
		}
		return v.Write(addr, []byte("v3"))
	}))
	require.NoError(s.Read(func(v *View) error {
		slot, err := v.Load(addr)
		require.NoError(err)
		slot.Data[0] = 'x'
		return nil
	}))
	require.NoError(s.Read(func(v *View) error {
		slot, err := v.Load(addr)
		require.NoError(err)
		require.Equal([]byte("v3"), slot.Data)
		return nil
	}))
}

func TestMoveChecked(t *testing.T) {
	require := require.New(t)
	s := newTestState(t)
	a := ids.GenerateTestID()
	b := ids.GenerateTestID()

	require.NoError(s.Atomic(func(v *View) error {
		if err := v.Mint(a, 10); err != nil {
			return err
		}
		return v.Mint(b, math.MaxUint64)
	}))
	err := s.Atomic(func(v *View) error { return v.Move(a, b, 1) })
	require.ErrorIs(err, ledger.ErrOverflow)
	err = s.Atomic(func(v *View) error { return v.Move(a, ids.GenerateTestID(), 11) })
	require.ErrorIs(err, ledger.ErrInsufficientBalance)
	err = s.Atomic(func(v *View) error { return v.Mint(b, 1) })
	require.ErrorIs(err, ledger.ErrOverflow)
}

func TestEventsDeliveredOnCommit(t *testing.T) {
	require := require.New(t)
	s := newTestState(t)
	var delivered []*ledger.Event
	s.SetListener(func(ev *ledger.Event) {
		delivered = append(delivered, ev)
	})

	for i := 0; i < 3; i++ {
		require.NoError(s.Atomic(func(v *View) error {
			return v.Emit(&ledger.Event{Name: "tick", Amount: uint64(i)})
		}))
	}
	require.Empty(delivered)
	require.Equal(uint64(3), s.NextEvent())

	require.NoError(s.Commit())
	require.Len(delivered, 3)
	for i, ev := range delivered {
		require.Equal(uint64(i), ev.Amount)
	}

	events, err := s.Events(1, 10)
	require.NoError(err)
	require.Len(events, 2)
	require.Equal(uint64(1), events[0].Amount)
}

func TestAbortDiscardsBlock(t *testing.T) {
	require := require.New(t)
	s := newTestState(t)
	holder := ids.GenerateTestID()
	var delivered int
	s.SetListener(func(*ledger.Event) { delivered++ })

	require.NoError(s.Atomic(func(v *View) error { return v.Mint(holder, 5) }))
	require.NoError(s.Commit())

	require.NoError(s.Atomic(func(v *View) error {
		if err := v.Mint(holder, 5); err != nil {
			return err
		}
		return v.Emit(&ledger.Event{Name: "dropped"})
	}))
	require.NoError(s.Abort())
	require.NoError(s.Commit())
	require.Zero(delivered)
	require.Zero(s.NextEvent())

	require.NoError(s.Read(func(v *View) error {
		balance, err := v.Balance(holder)
		require.NoError(err)
		require.Equal(uint64(5), balance)
		return nil
	}))
}

func TestChainIndex(t *testing.T) {
	require := require.New(t)
	s := newTestState(t)
	blkID := ids.GenerateTestID()
	txID := ids.GenerateTestID()

	_, err := s.GetLastAccepted()
	require.True(IsNotFound(err))
	initialized, err := s.IsInitialized()
	require.NoError(err)
	require.False(initialized)

	require.NoError(s.PutBlock(blkID, 3, []byte("block")))
	require.NoError(s.SetLastAccepted(blkID))
	require.NoError(s.PutReceipt(txID, &Receipt{BlockID: blkID, Class: uint8(ledger.ClassState), Error: "nope"}))
	require.NoError(s.SetInitialized())
	require.NoError(s.Commit())

	blkBytes, err := s.GetBlock(blkID)
	require.NoError(err)
	require.Equal([]byte("block"), blkBytes)
	gotID, err := s.GetBlockIDAtHeight(3)
	require.NoError(err)
	require.Equal(blkID, gotID)
	lastAccepted, err := s.GetLastAccepted()
	require.NoError(err)
	require.Equal(blkID, lastAccepted)

	receipt, err := s.GetReceipt(txID)
	require.NoError(err)
	require.False(receipt.Success)
	require.Equal("nope", receipt.Error)
	has, err := s.HasReceipt(txID)
	require.NoError(err)
	require.True(has)

	_, err = s.GetReceipt(ids.GenerateTestID())
	require.True(IsNotFound(err))
	initialized, err = s.IsInitialized()
	require.NoError(err)
	require.True(initialized)
}
