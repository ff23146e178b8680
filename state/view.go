// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	safemath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/ledgervm/ledger"
)

var (
	_ ledger.Storage   = (*View)(nil)
	_ ledger.Bank      = (*View)(nil)
	_ ledger.EventSink = (*View)(nil)
)

// View is the transaction-scoped host state handed to handlers. Its writes
// live in a private versiondb until the enclosing Atomic call commits.
type View struct {
	state *State
	db    *versiondb.Database

	slotDB      database.Database
	balanceDB   database.Database
	eventDB     database.Database
	singletonDB database.Database

	// addresses written by this view; their cached copies are stale
	dirty map[ids.ID]struct{}

	nextEvent uint64
	events    []*ledger.Event
}

func (v *View) getSlot(addr ids.ID) (*ledger.Slot, error) {
	slotBytes, err := v.slotDB.Get(addr[:])
	switch {
	case errors.Is(err, database.ErrNotFound):
		return nil, ledger.ErrAccountNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to get slot %s: %w", addr, err)
	}
	slot := &ledger.Slot{}
	if _, err := ledger.Codec.Unmarshal(slotBytes, slot); err != nil {
		return nil, fmt.Errorf("failed to parse slot %s: %w", addr, err)
	}
	return slot, nil
}

func (v *View) putSlot(addr ids.ID, slot *ledger.Slot) error {
	slotBytes, err := ledger.Codec.Marshal(ledger.CodecVersion, slot)
	if err != nil {
		return fmt.Errorf("failed to marshal slot %s: %w", addr, err)
	}
	v.dirty[addr] = struct{}{}
	return v.slotDB.Put(addr[:], slotBytes)
}

// Load returns a copy of the slot at [addr].
func (v *View) Load(addr ids.ID) (*ledger.Slot, error) {
	_, dirty := v.dirty[addr]
	if !dirty {
		if cached, ok := v.state.slotCache.Get(addr); ok {
			return copySlot(cached.(*ledger.Slot)), nil
		}
	}
	slot, err := v.getSlot(addr)
	if err != nil {
		return nil, err
	}
	if !dirty {
		v.state.slotCache.Add(addr, copySlot(slot))
	}
	return slot, nil
}

func (v *View) Allocate(addr ids.ID, owner ids.ID, space uint64, payer ids.ID) error {
	inUse, err := v.slotDB.Has(addr[:])
	if err != nil {
		return fmt.Errorf("failed to check slot %s: %w", addr, err)
	}
	if inUse {
		return ledger.ErrAccountAlreadyInUse
	}

	rent, err := v.state.rent.Deposit(space)
	if err != nil {
		return ledger.ErrOverflow
	}
	payerBalance, err := v.Balance(payer)
	if err != nil {
		return err
	}
	if payerBalance < rent {
		return ledger.ErrInsufficientFundsForRent
	}
	if err := v.setBalance(payer, payerBalance-rent); err != nil {
		return err
	}

	return v.putSlot(addr, &ledger.Slot{
		Owner: owner,
		Payer: payer,
		Rent:  rent,
		Space: space,
	})
}

func (v *View) Deallocate(addr ids.ID, refundTo ids.ID) error {
	slot, err := v.getSlot(addr)
	if err != nil {
		return err
	}
	residual, err := v.Balance(addr)
	if err != nil {
		return err
	}
	refund, err := safemath.Add64(slot.Rent, residual)
	if err != nil {
		return ledger.ErrOverflow
	}
	if err := v.setBalance(addr, 0); err != nil {
		return err
	}
	refundBalance, err := v.Balance(refundTo)
	if err != nil {
		return err
	}
	newBalance, err := safemath.Add64(refundBalance, refund)
	if err != nil {
		return ledger.ErrOverflow
	}
	if err := v.setBalance(refundTo, newBalance); err != nil {
		return err
	}

	v.dirty[addr] = struct{}{}
	return v.slotDB.Delete(addr[:])
}

func (v *View) Write(addr ids.ID, data []byte) error {
	slot, err := v.getSlot(addr)
	if err != nil {
		return err
	}
	if uint64(len(data)) > slot.Space {
		return ledger.ErrAccountDidNotSerialize
	}
	slot.Data = data
	return v.putSlot(addr, slot)
}

// Balance returns the native value held by [holder]. Unknown holders hold 0.
func (v *View) Balance(holder ids.ID) (uint64, error) {
	balanceBytes, err := v.balanceDB.Get(holder[:])
	switch {
	case errors.Is(err, database.ErrNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to get balance of %s: %w", holder, err)
	}
	return binary.BigEndian.Uint64(balanceBytes), nil
}

func (v *View) setBalance(holder ids.ID, balance uint64) error {
	if balance == 0 {
		return v.balanceDB.Delete(holder[:])
	}
	balanceBytes := make([]byte, wrappers.LongLen)
	binary.BigEndian.PutUint64(balanceBytes, balance)
	return v.balanceDB.Put(holder[:], balanceBytes)
}

func (v *View) Move(from, to ids.ID, amount uint64) error {
	fromBalance, err := v.Balance(from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ledger.ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	toBalance, err := v.Balance(to)
	if err != nil {
		return err
	}
	newToBalance, err := safemath.Add64(toBalance, amount)
	if err != nil {
		return ledger.ErrOverflow
	}
	if err := v.setBalance(from, fromBalance-amount); err != nil {
		return err
	}
	return v.setBalance(to, newToBalance)
}

// Mint credits [amount] to [holder] out of thin air. Only genesis uses it.
func (v *View) Mint(holder ids.ID, amount uint64) error {
	balance, err := v.Balance(holder)
	if err != nil {
		return err
	}
	newBalance, err := safemath.Add64(balance, amount)
	if err != nil {
		return ledger.ErrOverflow
	}
	return v.setBalance(holder, newBalance)
}

func (v *View) Emit(ev *ledger.Event) error {
	evBytes, err := ledger.Codec.Marshal(ledger.CodecVersion, ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	seq := v.nextEvent
	if err := v.eventDB.Put(seqKey(seq), evBytes); err != nil {
		return fmt.Errorf("failed to put event %d: %w", seq, err)
	}
	v.nextEvent++
	if err := v.singletonDB.Put(eventSeqKey, seqKey(v.nextEvent)); err != nil {
		return fmt.Errorf("failed to update event sequence: %w", err)
	}
	v.events = append(v.events, ev)
	return nil
}

func seqKey(seq uint64) []byte {
	key := make([]byte, wrappers.LongLen)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func copySlot(slot *ledger.Slot) *ledger.Slot {
	cp := *slot
	cp.Data = append([]byte(nil), slot.Data...)
	return &cp
}
