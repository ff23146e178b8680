// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package board is a pay-to-post message board.
package board

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/ledgervm/ledger"
)

const (
	Name = "board"

	// MaxContent is the longest message, in bytes.
	MaxContent = 100
	// PostFee is paid to the treasury for every message.
	PostFee uint64 = 69

	InitializedEvent   = "board_initialized"
	MessagePostedEvent = "message_posted"
)

var (
	ID = ids.ID{'b', 'o', 'a', 'r', 'd'}

	counterSeed  = []byte("counter")
	treasurySeed = []byte("treasury")
	messageSeed  = []byte("message")

	counterDiscriminator = ledger.DiscriminatorOf("MessageCounter")
	messageDiscriminator = ledger.DiscriminatorOf("Message")

	_ ledger.Record = (*Counter)(nil)
	_ ledger.Record = (*Message)(nil)
)

var (
	ErrAlreadyInitialized = ledger.NewError(ledger.ClassState, 6000, "counter already initialized")
	ErrContentTooLong     = ledger.NewError(ledger.ClassValidation, 6001, "content too long")
	ErrCounterOverflow    = ledger.NewError(ledger.ClassArithmetic, 6002, "counter overflow")
)

// Counter numbers the messages of the board.
type Counter struct {
	Count uint64 `serialize:"true" json:"count"`
	Bump  byte   `serialize:"true" json:"bump"`
}

func (*Counter) Discriminator() ledger.Discriminator { return counterDiscriminator }

func (*Counter) Space() uint64 { return ledger.HeaderLen + 8 + 1 }

type Message struct {
	Content   string `serialize:"true" json:"content"`
	Timestamp int64  `serialize:"true" json:"timestamp"`
	Poster    ids.ID `serialize:"true" json:"poster"`
	Bump      byte   `serialize:"true" json:"bump"`
}

func (*Message) Discriminator() ledger.Discriminator { return messageDiscriminator }

func (*Message) Space() uint64 {
	return ledger.HeaderLen + ledger.TextSpace(MaxContent) + 8 + ledger.IDLen + 1
}

func CounterAddress() (ids.ID, byte, error) {
	return ledger.FindAddress(ID, [][]byte{counterSeed})
}

func TreasuryAddress() (ids.ID, byte, error) {
	return ledger.FindAddress(ID, [][]byte{treasurySeed})
}

// MessageAddress returns the address of the message numbered [count].
func MessageAddress(counter ids.ID, count uint64) (ids.ID, byte, error) {
	return ledger.FindAddress(ID, [][]byte{messageSeed, counter[:], ledger.Uint64Seed(count)})
}
