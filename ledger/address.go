// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"encoding/binary"

	"filippo.io/edwards25519"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const (
	// MaxSeeds is the maximum number of seeds, bump excluded, that may derive an address.
	MaxSeeds = 16
	// MaxSeedLen is the maximum length of a single seed.
	MaxSeedLen = 32
)

var derivedAddressMarker = []byte("ProgramDerivedAddress")

// CreateAddress derives the address of [seeds] and [bump] under [program].
//
// The result is sha256(seeds... || bump || program || marker). An address that
// decodes as an ed25519 point is rejected: it may be a real signing identity.
func CreateAddress(program ids.ID, seeds [][]byte, bump byte) (ids.ID, error) {
	if len(seeds) > MaxSeeds {
		return ids.Empty, ErrMaxSeedLengthExceeded
	}
	size := len(program) + len(derivedAddressMarker) + 1
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return ids.Empty, ErrMaxSeedLengthExceeded
		}
		size += len(seed)
	}

	preimage := make([]byte, 0, size)
	for _, seed := range seeds {
		preimage = append(preimage, seed...)
	}
	preimage = append(preimage, bump)
	preimage = append(preimage, program[:]...)
	preimage = append(preimage, derivedAddressMarker...)

	addr := ids.ID(hashing.ComputeHash256Array(preimage))
	if onCurve(addr) {
		return ids.Empty, ErrInvalidSeeds
	}
	return addr, nil
}

// FindAddress searches bumps from 255 down to 0 and returns the first one that
// yields a valid address (the canonical bump).
func FindAddress(program ids.ID, seeds [][]byte) (ids.ID, byte, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, err := CreateAddress(program, seeds, byte(bump))
		switch err {
		case nil:
			return addr, byte(bump), nil
		case ErrInvalidSeeds:
			continue
		default:
			return ids.Empty, 0, err
		}
	}
	return ids.Empty, 0, ErrBumpSeedNotFound
}

// VerifyAddress re-derives an address from a persisted bump and checks that it
// matches [expected].
func VerifyAddress(program ids.ID, seeds [][]byte, bump byte, expected ids.ID) error {
	addr, err := CreateAddress(program, seeds, bump)
	if err != nil {
		return err
	}
	if addr != expected {
		return ErrSeedsMismatch
	}
	return nil
}

// Uint64Seed encodes [v] little endian, the layout sequence numbers use as seeds.
func Uint64Seed(v uint64) []byte {
	b := make([]byte, wrappers.LongLen)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func onCurve(addr ids.ID) bool {
	_, err := new(edwards25519.Point).SetBytes(addr[:])
	return err == nil
}
