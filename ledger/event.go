// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import "github.com/ava-labs/avalanchego/ids"

// Event is an immutable record of a completed mutation.
type Event struct {
	Program ids.ID `serialize:"true" json:"program"`
	Name    string `serialize:"true" json:"name"`
	// Actor is the identity that performed the mutation.
	Actor ids.ID `serialize:"true" json:"actor"`
	// Account is the address that was mutated.
	Account ids.ID `serialize:"true" json:"account"`
	// Counterparty is the other side of a value movement, if any.
	Counterparty ids.ID `serialize:"true" json:"counterparty"`
	Amount       uint64 `serialize:"true" json:"amount"`
	Locked       bool   `serialize:"true" json:"locked"`
	Timestamp    int64  `serialize:"true" json:"timestamp"`
}

// Emit stamps [ev] with the executing program and call time and appends it to
// the host log.
func Emit(call *Call, ev *Event) error {
	ev.Program = call.Program
	if ev.Timestamp == 0 {
		ev.Timestamp = call.Now()
	}
	return call.Events.Emit(ev)
}
