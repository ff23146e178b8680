// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"github.com/ava-labs/avalanchego/ids"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

// TransferEvent is emitted once per successful transfer.
const TransferEvent = "transfer"

// Seeds proves that a holder is an address derived by [Program]. A derived
// address has no key and cannot sign, so the program presents the inputs it
// was created from instead.
type Seeds struct {
	Program ids.ID
	Parts   [][]byte
	Bump    byte
}

// Source names the holder value is drawn from. Seeds is nil for identities
// that signed the call.
type Source struct {
	Holder ids.ID
	Seeds  *Seeds
}

// Signer returns the source for an identity that signed the call.
func Signer(holder ids.ID) Source {
	return Source{Holder: holder}
}

// Derived returns the source for an address derived by [program].
func Derived(holder ids.ID, program ids.ID, parts [][]byte, bump byte) Source {
	return Source{
		Holder: holder,
		Seeds: &Seeds{
			Program: program,
			Parts:   parts,
			Bump:    bump,
		},
	}
}

func authorizeSource(call *Call, src Source) error {
	if src.Seeds == nil {
		return RequireSigner(call, src.Holder)
	}
	if err := Authorize(call.Program, src.Seeds.Program); err != nil {
		return err
	}
	return VerifyAddress(src.Seeds.Program, src.Seeds.Parts, src.Seeds.Bump, src.Holder)
}

// Transfer moves [amount] of native value from [src] to [dst].
//
// It fails with ErrInsufficientBalance if the source holds less than [amount]
// and with ErrOverflow if the destination balance cannot absorb it. Nothing
// wraps and nothing is clamped.
func Transfer(call *Call, src Source, dst ids.ID, amount uint64) error {
	if err := authorizeSource(call, src); err != nil {
		return err
	}

	srcBalance, err := call.Bank.Balance(src.Holder)
	if err != nil {
		return err
	}
	if srcBalance < amount {
		return ErrInsufficientBalance
	}
	if src.Holder != dst {
		dstBalance, err := call.Bank.Balance(dst)
		if err != nil {
			return err
		}
		if _, err := safemath.Add64(dstBalance, amount); err != nil {
			return ErrOverflow
		}
		if err := call.Bank.Move(src.Holder, dst, amount); err != nil {
			return err
		}
	}

	return Emit(call, &Event{
		Name:         TransferEvent,
		Actor:        call.Signer,
		Account:      src.Holder,
		Counterparty: dst,
		Amount:       amount,
	})
}
