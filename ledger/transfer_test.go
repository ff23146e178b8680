// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/ledger"
	"github.com/ava-labs/ledgervm/state/statetest"
)

func TestTransferBetweenSigners(t *testing.T) {
	require := require.New(t)
	h := statetest.New(t)
	alice := statetest.NewIdentity(t)
	bob := statetest.NewIdentity(t)
	h.Fund(alice, 100)

	require.NoError(h.Run(testProgram, alice, func(call *ledger.Call) error {
		return ledger.Transfer(call, ledger.Signer(alice), bob, 30)
	}))
	require.Equal(uint64(70), h.Balance(alice))
	require.Equal(uint64(30), h.Balance(bob))

	events := h.Events()
	require.Len(events, 1)
	require.Equal(ledger.TransferEvent, events[0].Name)
	require.Equal(testProgram, events[0].Program)
	require.Equal(alice, events[0].Account)
	require.Equal(bob, events[0].Counterparty)
	require.Equal(uint64(30), events[0].Amount)
	require.Equal(h.Clock.Time().Unix(), events[0].Timestamp)
}

func TestTransferFailures(t *testing.T) {
	require := require.New(t)
	h := statetest.New(t)
	alice := statetest.NewIdentity(t)
	bob := statetest.NewIdentity(t)
	h.Fund(alice, 10)
	h.Fund(bob, math.MaxUint64)

	err := h.Run(testProgram, alice, func(call *ledger.Call) error {
		return ledger.Transfer(call, ledger.Signer(alice), bob, 11)
	})
	require.ErrorIs(err, ledger.ErrInsufficientBalance)
	require.Equal(ledger.ClassArithmetic, ledger.ClassOf(err))

	err = h.Run(testProgram, alice, func(call *ledger.Call) error {
		return ledger.Transfer(call, ledger.Signer(alice), bob, 1)
	})
	require.ErrorIs(err, ledger.ErrOverflow)

	err = h.Run(testProgram, bob, func(call *ledger.Call) error {
		return ledger.Transfer(call, ledger.Signer(alice), bob, 1)
	})
	require.ErrorIs(err, ledger.ErrMissingSignature)

	require.Equal(uint64(10), h.Balance(alice))
	require.Equal(uint64(math.MaxUint64), h.Balance(bob))
	require.Empty(h.Events())
}

func TestTransferToSelf(t *testing.T) {
	require := require.New(t)
	h := statetest.New(t)
	alice := statetest.NewIdentity(t)
	h.Fund(alice, math.MaxUint64)

	require.NoError(h.Run(testProgram, alice, func(call *ledger.Call) error {
		return ledger.Transfer(call, ledger.Signer(alice), alice, 5)
	}))
	require.Equal(uint64(math.MaxUint64), h.Balance(alice))
}

func TestTransferFromDerivedAddress(t *testing.T) {
	require := require.New(t)
	h := statetest.New(t)
	recipient := statetest.NewIdentity(t)
	seeds := [][]byte{[]byte("escrow")}
	escrow, bump, err := ledger.FindAddress(testProgram, seeds)
	require.NoError(err)
	h.Fund(escrow, 50)

	tests := []struct {
		name    string
		program ids.ID
		src     ledger.Source
		wantErr error
	}{
		{
			name:    "wrong executing program",
			program: ids.ID{'o', 't', 'h', 'e', 'r'},
			src:     ledger.Derived(escrow, testProgram, seeds, bump),
			wantErr: ledger.ErrUnauthorized,
		},
		{
			name:    "wrong seeds",
			program: testProgram,
			src:     ledger.Derived(escrow, testProgram, [][]byte{[]byte("other")}, bump),
			wantErr: ledger.ErrSeedsMismatch,
		},
		{
			name:    "no seeds",
			program: testProgram,
			src:     ledger.Signer(escrow),
			wantErr: ledger.ErrMissingSignature,
		},
		{
			name:    "signed for self",
			program: testProgram,
			src:     ledger.Derived(escrow, testProgram, seeds, bump),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Run(tt.program, recipient, func(call *ledger.Call) error {
				return ledger.Transfer(call, tt.src, recipient, 20)
			})
			if tt.wantErr != nil {
				// a wrong seed may also land on the curve
				if tt.wantErr == ledger.ErrSeedsMismatch && err == ledger.ErrInvalidSeeds {
					return
				}
				require.ErrorIs(err, tt.wantErr)
				require.Equal(uint64(50), h.Balance(escrow))
				return
			}
			require.NoError(err)
			require.Equal(uint64(30), h.Balance(escrow))
			require.Equal(uint64(20), h.Balance(recipient))
		})
	}
}
