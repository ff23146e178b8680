// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"bytes"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const (
	// DiscriminatorLen is the size of the tag every record starts with.
	DiscriminatorLen = 8
	// HeaderLen is the part of every encoded record that precedes its fields:
	// the discriminator and the codec version.
	HeaderLen = DiscriminatorLen + wrappers.ShortLen
	// IDLen is the encoded size of an identity or address.
	IDLen = 32
	// StringPrefixLen is reserved in front of every text field.
	StringPrefixLen = 4
)

// Discriminator tags the kind of record stored in a slot.
type Discriminator [DiscriminatorLen]byte

// DiscriminatorOf returns the first 8 bytes of sha256("account:" + name).
func DiscriminatorOf(name string) Discriminator {
	var d Discriminator
	copy(d[:], hashing.ComputeHash256([]byte("account:"+name)))
	return d
}

// Record is a persisted account variant.
type Record interface {
	Discriminator() Discriminator
	// Space is the storage reserved at creation: HeaderLen, the fixed fields
	// and the declared maximum of every text field. Slots never grow.
	Space() uint64
}

// TextSpace is the space reserved for a text field of at most [max] bytes.
func TextSpace(max int) uint64 {
	return StringPrefixLen + uint64(max)
}

// CheckLength fails with [tooLong] if [s] is longer than [max] bytes.
func CheckLength(s string, max int, tooLong error) error {
	if len(s) > max {
		return tooLong
	}
	return nil
}

// Encode returns the discriminator followed by the codec encoding of [rec].
func Encode(rec Record) ([]byte, error) {
	body, err := Codec.Marshal(CodecVersion, rec)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal record: %w", err)
	}
	disc := rec.Discriminator()
	data := make([]byte, 0, len(disc)+len(body))
	data = append(data, disc[:]...)
	return append(data, body...), nil
}

// Decode parses [data] into [rec], checking the discriminator first.
func Decode(data []byte, rec Record) error {
	disc := rec.Discriminator()
	if len(data) < len(disc) || !bytes.Equal(data[:len(disc)], disc[:]) {
		return ErrAccountDiscriminatorMismatch
	}
	if _, err := Codec.Unmarshal(data[len(disc):], rec); err != nil {
		return fmt.Errorf("couldn't unmarshal record: %w", err)
	}
	return nil
}

// Create allocates [addr] for the executing program, funded by [payer], and
// writes [rec] into it. Fails with ErrAccountAlreadyInUse if [addr] is taken.
func Create(call *Call, addr ids.ID, payer ids.ID, rec Record) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	if uint64(len(data)) > rec.Space() {
		return ErrAccountDidNotSerialize
	}
	if err := call.Storage.Allocate(addr, call.Program, rec.Space(), payer); err != nil {
		return err
	}
	return call.Storage.Write(addr, data)
}

// Load reads the record at [addr] into [rec]. The slot must exist, be owned by
// the executing program and hold a record of [rec]'s kind.
func Load(call *Call, addr ids.ID, rec Record) error {
	slot, err := call.Storage.Load(addr)
	if err != nil {
		return err
	}
	if slot.Owner != call.Program {
		return ErrAccountOwnedByWrongProgram
	}
	return Decode(slot.Data, rec)
}

// Save writes [rec] back to [addr] in place.
func Save(call *Call, addr ids.ID, rec Record) error {
	slot, err := call.Storage.Load(addr)
	if err != nil {
		return err
	}
	if slot.Owner != call.Program {
		return ErrAccountOwnedByWrongProgram
	}
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	if uint64(len(data)) > slot.Space {
		return ErrAccountDidNotSerialize
	}
	return call.Storage.Write(addr, data)
}

// Close frees [addr] and returns its deposit to [beneficiary]. The address may
// be created again afterwards.
func Close(call *Call, addr ids.ID, beneficiary ids.ID) error {
	slot, err := call.Storage.Load(addr)
	if err != nil {
		return err
	}
	if slot.Owner != call.Program {
		return ErrAccountOwnedByWrongProgram
	}
	return call.Storage.Deallocate(addr, beneficiary)
}
