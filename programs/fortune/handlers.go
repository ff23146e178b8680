// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fortune

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/ledger"
)

// GetFortune charges [user] Fee and stores the fortune of request [counter].
func GetFortune(call *ledger.Call, user ids.ID, counter uint64) (ids.ID, error) {
	if err := ledger.RequireSigner(call, user); err != nil {
		return ids.Empty, err
	}
	balance, err := call.Bank.Balance(user)
	if err != nil {
		return ids.Empty, err
	}
	if balance < Fee {
		return ids.Empty, ErrInsufficientPayment
	}

	addr, bump, err := Address(user, counter)
	if err != nil {
		return ids.Empty, err
	}
	f := &Fortune{
		User:    user,
		Counter: counter,
		Text:    Select(user, counter),
		Bump:    bump,
	}
	if err := ledger.Create(call, addr, user, f); err != nil {
		return ids.Empty, fmt.Errorf("couldn't create fortune %d: %w", counter, err)
	}

	treasury, _, err := TreasuryAddress()
	if err != nil {
		return ids.Empty, err
	}
	if err := ledger.Transfer(call, ledger.Signer(user), treasury, Fee); err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return ids.Empty, ErrInsufficientPayment
		}
		return ids.Empty, err
	}
	return addr, ledger.Emit(call, &ledger.Event{
		Name:         DeliveredEvent,
		Actor:        user,
		Account:      addr,
		Counterparty: treasury,
		Amount:       Fee,
	})
}
