// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vault holds native value on behalf of a single authority.
//
// Anyone may fund a vault; only its authority may withdraw from it or flip its
// lock. A vault lives at the address derived from ["vault", authority].
package vault

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/ledger"
)

const (
	Name = "vault"

	InitializedEvent = "vault_initialized"
	DepositEvent     = "deposit"
	WithdrawEvent    = "withdraw"
	ToggleLockEvent  = "toggle_lock"
)

var (
	ID = ids.ID{'v', 'a', 'u', 'l', 't'}

	vaultSeed = []byte("vault")

	vaultDiscriminator = ledger.DiscriminatorOf("Vault")

	_ ledger.Record = (*Vault)(nil)
)

var (
	ErrVaultLocked         = ledger.NewError(ledger.ClassState, 6000, "vault is locked")
	ErrUnauthorized        = ledger.NewError(ledger.ClassAuthorization, 6001, "unauthorized: signer is not the vault authority")
	ErrInsufficientBalance = ledger.NewError(ledger.ClassArithmetic, 6002, "insufficient balance")
	ErrOverflow            = ledger.NewError(ledger.ClassArithmetic, 6003, "balance overflow")
)

// Vault is the account recording who controls the value held at its address.
// Its balance is the native balance of that address.
type Vault struct {
	Authority ids.ID `serialize:"true" json:"authority"`
	Locked    bool   `serialize:"true" json:"locked"`
	Bump      byte   `serialize:"true" json:"bump"`
}

func (*Vault) Discriminator() ledger.Discriminator { return vaultDiscriminator }

func (*Vault) Space() uint64 {
	return ledger.HeaderLen + ledger.IDLen + 1 + 1
}

// Seeds returns the derivation inputs of the vault owned by [authority].
func Seeds(authority ids.ID) [][]byte {
	return [][]byte{vaultSeed, authority[:]}
}

// Address returns the vault address of [authority] and its canonical bump.
func Address(authority ids.ID) (ids.ID, byte, error) {
	return ledger.FindAddress(ID, Seeds(authority))
}

// LockPolicy decides which value movements a lock blocks.
type LockPolicy uint8

const (
	// Symmetric refuses deposits and withdrawals while locked.
	Symmetric LockPolicy = iota
	// WithdrawOnly refuses withdrawals while locked and accepts deposits.
	WithdrawOnly
)

func (p LockPolicy) String() string {
	switch p {
	case Symmetric:
		return "symmetric"
	case WithdrawOnly:
		return "withdraw-only"
	default:
		return fmt.Sprintf("LockPolicy(%d)", uint8(p))
	}
}

func (p LockPolicy) MarshalText() ([]byte, error) {
	switch p {
	case Symmetric, WithdrawOnly:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("unknown lock policy %d", uint8(p))
	}
}

func (p *LockPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "symmetric":
		*p = Symmetric
	case "withdraw-only":
		*p = WithdrawOnly
	default:
		return fmt.Errorf("unknown lock policy %q", text)
	}
	return nil
}

// BlocksDeposits reports whether a locked vault refuses deposits.
func (p LockPolicy) BlocksDeposits() bool {
	return p == Symmetric
}
