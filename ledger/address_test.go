// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/ledger"
)

var testProgram = ids.ID{'t', 'e', 's', 't'}

func TestFindAddressDeterministic(t *testing.T) {
	require := require.New(t)
	seeds := [][]byte{[]byte("vault"), bytes.Repeat([]byte{7}, 32)}

	addr1, bump1, err := ledger.FindAddress(testProgram, seeds)
	require.NoError(err)
	addr2, bump2, err := ledger.FindAddress(testProgram, seeds)
	require.NoError(err)
	require.Equal(addr1, addr2)
	require.Equal(bump1, bump2)

	created, err := ledger.CreateAddress(testProgram, seeds, bump1)
	require.NoError(err)
	require.Equal(addr1, created)
	require.NoError(ledger.VerifyAddress(testProgram, seeds, bump1, addr1))
}

func TestFindAddressInputSensitivity(t *testing.T) {
	require := require.New(t)
	seed := bytes.Repeat([]byte{1}, 32)
	base, _, err := ledger.FindAddress(testProgram, [][]byte{seed})
	require.NoError(err)

	seen := map[ids.ID]struct{}{base: {}}
	for i := range seed {
		changed := append([]byte(nil), seed...)
		changed[i] ^= 0x01
		addr, _, err := ledger.FindAddress(testProgram, [][]byte{changed})
		require.NoError(err)
		seen[addr] = struct{}{}
	}
	require.Len(seen, len(seed)+1)

	otherProgram := testProgram
	otherProgram[31] = 1
	addr, _, err := ledger.FindAddress(otherProgram, [][]byte{seed})
	require.NoError(err)
	require.NotEqual(base, addr)
}

func TestCreateAddressOffCurve(t *testing.T) {
	require := require.New(t)
	seeds := [][]byte{[]byte("counter")}

	addr, bump, err := ledger.FindAddress(testProgram, seeds)
	require.NoError(err)

	// every bump above the canonical one lands on the curve
	for b := 255; b > int(bump); b-- {
		_, err := ledger.CreateAddress(testProgram, seeds, byte(b))
		require.ErrorIs(err, ledger.ErrInvalidSeeds)
	}
	require.NotEqual(ids.Empty, addr)
}

func TestSeedLimits(t *testing.T) {
	tests := []struct {
		name    string
		seeds   [][]byte
		wantErr error
	}{
		{
			name:  "no seeds",
			seeds: nil,
		},
		{
			name:  "max seeds of max length",
			seeds: repeatSeeds(ledger.MaxSeeds, ledger.MaxSeedLen),
		},
		{
			name:    "too many seeds",
			seeds:   repeatSeeds(ledger.MaxSeeds+1, 1),
			wantErr: ledger.ErrMaxSeedLengthExceeded,
		},
		{
			name:    "seed too long",
			seeds:   [][]byte{make([]byte, ledger.MaxSeedLen+1)},
			wantErr: ledger.ErrMaxSeedLengthExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ledger.FindAddress(testProgram, tt.seeds)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr != nil {
				require.Equal(t, ledger.ClassValidation, ledger.ClassOf(err))
			}
		})
	}
}

func TestVerifyAddressMismatch(t *testing.T) {
	require := require.New(t)
	seeds := [][]byte{[]byte("vault"), []byte("alice")}
	addr, bump, err := ledger.FindAddress(testProgram, seeds)
	require.NoError(err)

	err = ledger.VerifyAddress(testProgram, [][]byte{[]byte("vault"), []byte("bob")}, bump, addr)
	if err != ledger.ErrInvalidSeeds {
		require.ErrorIs(err, ledger.ErrSeedsMismatch)
	}
	require.ErrorIs(ledger.VerifyAddress(testProgram, seeds, bump, ids.GenerateTestID()), ledger.ErrSeedsMismatch)
}

func TestUint64Seed(t *testing.T) {
	require.Equal(t, []byte{1, 2, 0, 0, 0, 0, 0, 0}, ledger.Uint64Seed(0x0201))
}

func repeatSeeds(n, size int) [][]byte {
	seeds := make([][]byte, n)
	for i := range seeds {
		seeds[i] = bytes.Repeat([]byte{byte(i)}, size)
	}
	return seeds
}
