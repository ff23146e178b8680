// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fortune sells deterministic fortunes. Every request is stored at
// ["fortune", user, counter] so a user can ask again with a new counter.
package fortune

import (
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/ledgervm/ledger"
)

const (
	Name = "fortune"

	// Fee is paid to the treasury for every fortune.
	Fee uint64 = 2
	// MaxTextLength bounds the stored fortune text.
	MaxTextLength = 128

	DeliveredEvent = "fortune_delivered"
)

var (
	ID = ids.ID{'f', 'o', 'r', 't', 'u', 'n', 'e'}

	fortuneSeed  = []byte("fortune")
	treasurySeed = []byte("treasury")

	fortuneDiscriminator = ledger.DiscriminatorOf("FortuneData")

	_ ledger.Record = (*Fortune)(nil)

	ErrInsufficientPayment = ledger.NewError(ledger.ClassArithmetic, 6000, fmt.Sprintf("insufficient payment: %d required", Fee))
)

var fortunes = [...]string{
	"You will find a bug in your code today.",
	"A stranger's pull request will fix the flaky test.",
	"Beware of off-by-one errors in the coming week.",
	"Your next deploy will go out on a Friday and nothing will break.",
	"The cache was stale all along.",
	"A forgotten TODO will resurface at the worst possible moment.",
	"You will finally understand the retry logic.",
	"A merge conflict stands between you and the weekend.",
	"The logs will tell you everything, at debug level.",
	"Your benchmark will improve for reasons nobody can explain.",
	"The dependency you pinned years ago will save you.",
	"You will delete more code than you write, and it will be good.",
	"An old issue will be closed as fixed by someone who never touched it.",
	"The integration test passes locally. Trust nothing.",
	"Your rubber duck has concerns about the error handling.",
	"A timeout you set long ago will expire today.",
	"Someone will ask you to explain the genesis file.",
	"The block you are waiting for is already accepted.",
	"Your nonce is unique, and so are you.",
	"A checked addition will save you from a very bad day.",
}

// Fortune is a delivered fortune.
type Fortune struct {
	User    ids.ID `serialize:"true" json:"user"`
	Counter uint64 `serialize:"true" json:"counter"`
	Text    string `serialize:"true" json:"text"`
	Bump    byte   `serialize:"true" json:"bump"`
}

func (*Fortune) Discriminator() ledger.Discriminator { return fortuneDiscriminator }

func (*Fortune) Space() uint64 {
	return ledger.HeaderLen + ledger.IDLen + 8 + ledger.TextSpace(MaxTextLength) + 1
}

func Address(user ids.ID, counter uint64) (ids.ID, byte, error) {
	return ledger.FindAddress(ID, [][]byte{fortuneSeed, user[:], ledger.Uint64Seed(counter)})
}

func TreasuryAddress() (ids.ID, byte, error) {
	return ledger.FindAddress(ID, [][]byte{treasurySeed})
}

// Select returns the fortune for the request numbered [counter] of [user]:
// sha256(user || le64(counter)) mod the number of fortunes.
func Select(user ids.ID, counter uint64) string {
	preimage := make([]byte, 0, ledger.IDLen+8)
	preimage = append(preimage, user[:]...)
	preimage = append(preimage, ledger.Uint64Seed(counter)...)
	digest := hashing.ComputeHash256(preimage)
	return fortunes[binary.BigEndian.Uint64(digest)%uint64(len(fortunes))]
}

// Count is the number of distinct fortunes.
func Count() int { return len(fortunes) }
