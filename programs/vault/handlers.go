// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/ledger"
)

// Initialize creates the unlocked vault of [authority]. The authority signs
// and pays for the storage.
func Initialize(call *ledger.Call, authority ids.ID) (ids.ID, error) {
	if err := ledger.RequireSigner(call, authority); err != nil {
		return ids.Empty, err
	}
	addr, bump, err := Address(authority)
	if err != nil {
		return ids.Empty, err
	}
	v := &Vault{
		Authority: authority,
		Bump:      bump,
	}
	if err := ledger.Create(call, addr, authority, v); err != nil {
		return ids.Empty, fmt.Errorf("couldn't create vault: %w", err)
	}
	return addr, ledger.Emit(call, &ledger.Event{
		Name:    InitializedEvent,
		Actor:   authority,
		Account: addr,
	})
}

// DepositAccounts names the accounts a deposit touches.
type DepositAccounts struct {
	Vault ids.ID
	// User funds the deposit and must sign.
	User ids.ID
}

// Deposit moves [amount] from the user into the vault. Any funder may deposit.
func Deposit(call *ledger.Call, accts DepositAccounts, amount uint64, policy LockPolicy) error {
	v := &Vault{}
	if err := ledger.Load(call, accts.Vault, v); err != nil {
		return err
	}
	if v.Locked && policy.BlocksDeposits() {
		return ErrVaultLocked
	}
	if err := transfer(call, ledger.Signer(accts.User), accts.Vault, amount); err != nil {
		return err
	}
	return ledger.Emit(call, &ledger.Event{
		Name:         DepositEvent,
		Actor:        accts.User,
		Account:      accts.Vault,
		Counterparty: accts.User,
		Amount:       amount,
	})
}

// AuthorityAccounts names the accounts of an authority-gated vault operation.
type AuthorityAccounts struct {
	Vault     ids.ID
	Authority ids.ID
}

// Withdraw moves [amount] from the vault to its authority.
//
// The checks run in a fixed order and each has its own error: the vault must
// be unlocked (ErrVaultLocked), the caller must be the stored authority
// (ErrUnauthorized) and the vault must hold at least [amount]
// (ErrInsufficientBalance).
func Withdraw(call *ledger.Call, accts AuthorityAccounts, amount uint64) error {
	v := &Vault{}
	if err := ledger.Load(call, accts.Vault, v); err != nil {
		return err
	}
	if v.Locked {
		return ErrVaultLocked
	}
	if err := authorize(call, v, accts.Authority); err != nil {
		return err
	}

	src := ledger.Derived(accts.Vault, ID, Seeds(v.Authority), v.Bump)
	if err := transfer(call, src, v.Authority, amount); err != nil {
		return err
	}
	return ledger.Emit(call, &ledger.Event{
		Name:         WithdrawEvent,
		Actor:        v.Authority,
		Account:      accts.Vault,
		Counterparty: v.Authority,
		Amount:       amount,
	})
}

// ToggleLock flips the lock of the vault. Two toggles restore the original state.
func ToggleLock(call *ledger.Call, accts AuthorityAccounts) error {
	v := &Vault{}
	if err := ledger.Load(call, accts.Vault, v); err != nil {
		return err
	}
	if err := authorize(call, v, accts.Authority); err != nil {
		return err
	}
	v.Locked = !v.Locked
	if err := ledger.Save(call, accts.Vault, v); err != nil {
		return err
	}
	return ledger.Emit(call, &ledger.Event{
		Name:    ToggleLockEvent,
		Actor:   v.Authority,
		Account: accts.Vault,
		Locked:  v.Locked,
	})
}

// authorize checks that [presented] is the stored authority and signed the call.
func authorize(call *ledger.Call, v *Vault, presented ids.ID) error {
	if err := ledger.Authorize(v.Authority, presented); err != nil {
		return ErrUnauthorized
	}
	return ledger.RequireSigner(call, presented)
}

// transfer maps the ledger arithmetic errors onto the vault's own.
func transfer(call *ledger.Call, src ledger.Source, dst ids.ID, amount uint64) error {
	err := ledger.Transfer(call, src, dst, amount)
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return ErrInsufficientBalance
	case errors.Is(err, ledger.ErrOverflow):
		return ErrOverflow
	default:
		return err
	}
}
