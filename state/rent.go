// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import safemath "github.com/ava-labs/avalanchego/utils/math"

// DefaultRentSchedule is used when the VM config does not set one.
var DefaultRentSchedule = RentSchedule{
	LamportsPerByte: 10,
	OverheadBytes:   128,
}

// RentSchedule prices the deposit a payer locks up when allocating storage.
// The deposit is returned in full when the slot is closed.
type RentSchedule struct {
	LamportsPerByte uint64 `json:"lamportsPerByte"`
	// OverheadBytes is charged on top of the requested space for the slot header.
	OverheadBytes uint64 `json:"overheadBytes"`
}

// Deposit returns the deposit required to allocate [space] bytes.
func (r RentSchedule) Deposit(space uint64) (uint64, error) {
	size, err := safemath.Add64(r.OverheadBytes, space)
	if err != nil {
		return 0, err
	}
	return safemath.Mul64(size, r.LamportsPerByte)
}
