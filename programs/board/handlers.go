// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package board

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	safemath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/ledgervm/ledger"
)

// Initialize creates the message counter if it does not exist yet. Calling it
// again is harmless until the first message is posted.
func Initialize(call *ledger.Call, payer ids.ID) (ids.ID, error) {
	if err := ledger.RequireSigner(call, payer); err != nil {
		return ids.Empty, err
	}
	addr, bump, err := CounterAddress()
	if err != nil {
		return ids.Empty, err
	}

	counter := &Counter{}
	err = ledger.Load(call, addr, counter)
	switch {
	case err == nil:
		if counter.Count != 0 {
			return ids.Empty, ErrAlreadyInitialized
		}
		return addr, nil
	case !errors.Is(err, ledger.ErrAccountNotFound):
		return ids.Empty, err
	}

	if err := ledger.Create(call, addr, payer, &Counter{Bump: bump}); err != nil {
		return ids.Empty, fmt.Errorf("couldn't create counter: %w", err)
	}
	return addr, ledger.Emit(call, &ledger.Event{
		Name:    InitializedEvent,
		Actor:   payer,
		Account: addr,
	})
}

// PostMessage stores [content] as the next message of the board and charges
// the payer PostFee. Returns the address of the new message.
func PostMessage(call *ledger.Call, payer ids.ID, content string) (ids.ID, error) {
	if err := ledger.CheckLength(content, MaxContent, ErrContentTooLong); err != nil {
		return ids.Empty, err
	}
	if err := ledger.RequireSigner(call, payer); err != nil {
		return ids.Empty, err
	}

	counterAddr, _, err := CounterAddress()
	if err != nil {
		return ids.Empty, err
	}
	counter := &Counter{}
	if err := ledger.Load(call, counterAddr, counter); err != nil {
		return ids.Empty, err
	}
	next, err := safemath.Add64(counter.Count, 1)
	if err != nil {
		return ids.Empty, ErrCounterOverflow
	}

	msgAddr, bump, err := MessageAddress(counterAddr, counter.Count)
	if err != nil {
		return ids.Empty, err
	}
	msg := &Message{
		Content:   content,
		Timestamp: call.Now(),
		Poster:    payer,
		Bump:      bump,
	}
	if err := ledger.Create(call, msgAddr, payer, msg); err != nil {
		return ids.Empty, fmt.Errorf("couldn't create message %d: %w", counter.Count, err)
	}

	treasury, _, err := TreasuryAddress()
	if err != nil {
		return ids.Empty, err
	}
	if err := ledger.Transfer(call, ledger.Signer(payer), treasury, PostFee); err != nil {
		return ids.Empty, err
	}

	counter.Count = next
	if err := ledger.Save(call, counterAddr, counter); err != nil {
		return ids.Empty, err
	}
	return msgAddr, ledger.Emit(call, &ledger.Event{
		Name:         MessagePostedEvent,
		Actor:        payer,
		Account:      msgAddr,
		Counterparty: treasury,
		Amount:       PostFee,
		Timestamp:    msg.Timestamp,
	})
}
