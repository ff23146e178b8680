// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package statetest runs ledger handlers against an in-memory host.
package statetest

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"

	"github.com/ava-labs/ledgervm/ledger"
	"github.com/ava-labs/ledgervm/state"
)

// Host is an in-memory host with a fixed clock.
type Host struct {
	t     *testing.T
	State *state.State
	Clock mockable.Clock
}

func New(t *testing.T) *Host {
	st, err := state.New(memdb.New(), state.Config{Rent: state.DefaultRentSchedule})
	require.NoError(t, err)
	h := &Host{t: t, State: st}
	h.Clock.Set(time.Unix(1_700_000_000, 0))
	return h
}

// NewIdentity returns a fresh signing identity.
func NewIdentity(t *testing.T) ids.ID {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	id, err := ids.ToID(pub)
	require.NoError(t, err)
	return id
}

// Fund credits [amount] to [holder].
func (h *Host) Fund(holder ids.ID, amount uint64) {
	require.NoError(h.t, h.State.Atomic(func(v *state.View) error {
		return v.Mint(holder, amount)
	}))
}

// Run executes [fn] as [program] signed by [signer], atomically.
func (h *Host) Run(program, signer ids.ID, fn func(*ledger.Call) error) error {
	return h.State.Atomic(func(v *state.View) error {
		return fn(&ledger.Call{
			Program: program,
			Signer:  signer,
			Storage: v,
			Bank:    v,
			Clock:   &h.Clock,
			Events:  v,
		})
	})
}

func (h *Host) Balance(holder ids.ID) uint64 {
	var balance uint64
	require.NoError(h.t, h.State.Read(func(v *state.View) error {
		var err error
		balance, err = v.Balance(holder)
		return err
	}))
	return balance
}

// Slot returns the slot at [addr], or nil if it is not allocated.
func (h *Host) Slot(addr ids.ID) *ledger.Slot {
	var slot *ledger.Slot
	err := h.State.Read(func(v *state.View) error {
		var err error
		slot, err = v.Load(addr)
		return err
	})
	if err == ledger.ErrAccountNotFound {
		return nil
	}
	require.NoError(h.t, err)
	return slot
}

// Record decodes the record stored at [addr] into [rec].
func (h *Host) Record(addr ids.ID, rec ledger.Record) {
	slot := h.Slot(addr)
	require.NotNil(h.t, slot, "no account at %s", addr)
	require.NoError(h.t, ledger.Decode(slot.Data, rec))
}

// Deposit returns the storage deposit of a record kind.
func (h *Host) Deposit(rec ledger.Record) uint64 {
	deposit, err := h.State.Rent().Deposit(rec.Space())
	require.NoError(h.t, err)
	return deposit
}

// Events returns every event committed so far.
func (h *Host) Events() []*ledger.Event {
	events, err := h.State.Events(0, int(h.State.NextEvent()))
	require.NoError(h.t, err)
	return events
}
