// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"time"

	"github.com/ava-labs/avalanchego/ids"
)

// Slot is the host's record of an allocated storage address.
type Slot struct {
	// Owner is the program allowed to write [Data].
	Owner ids.ID `serialize:"true" json:"owner"`
	// Payer funded the storage deposit.
	Payer ids.ID `serialize:"true" json:"payer"`
	// Rent is the storage deposit held while the slot is allocated.
	Rent  uint64 `serialize:"true" json:"rent"`
	Space uint64 `serialize:"true" json:"space"`
	Data  []byte `serialize:"true" json:"data"`
}

// Storage is the persistent key-addressed account table supplied by the host.
type Storage interface {
	// Allocate reserves [space] bytes at [addr] for [owner], debiting the
	// storage deposit from [payer]. Returns ErrAccountAlreadyInUse if [addr] is
	// already allocated.
	Allocate(addr ids.ID, owner ids.ID, space uint64, payer ids.ID) error
	// Deallocate frees [addr], crediting its deposit and balance to [refundTo].
	Deallocate(addr ids.ID, refundTo ids.ID) error
	// Load returns ErrAccountNotFound if [addr] is not allocated.
	Load(addr ids.ID) (*Slot, error)
	// Write replaces the data stored at [addr].
	Write(addr ids.ID, data []byte) error
}

// Bank holds native value for identities and derived addresses alike.
type Bank interface {
	Balance(holder ids.ID) (uint64, error)
	// Move is the host's native transfer primitive.
	Move(from, to ids.ID, amount uint64) error
}

// Clock supplies the timestamp of the executing call.
type Clock interface {
	Time() time.Time
}

// EventSink is a fire-and-forget append-only event log.
type EventSink interface {
	Emit(*Event) error
}

// Call is the environment the host hands to a handler for one invocation. A
// handler touches only the addresses it is given explicitly.
type Call struct {
	// Program is the program being executed.
	Program ids.ID
	// Signer is the identity whose signature the host verified for this call.
	Signer ids.ID

	Storage Storage
	Bank    Bank
	Clock   Clock
	Events  EventSink
}

// Signed reports whether the host authenticated [id] for this call.
func (c *Call) Signed(id ids.ID) bool {
	return id != ids.Empty && id == c.Signer
}

// Now returns the call timestamp in unix seconds.
func (c *Call) Now() int64 {
	return c.Clock.Time().Unix()
}

// WithProgram returns a copy of [c] executing as [program].
func (c *Call) WithProgram(program ids.ID) *Call {
	cp := *c
	cp.Program = program
	return &cp
}
