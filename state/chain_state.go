// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/ledgervm/ledger"
)

// Receipt is the outcome of an accepted transaction.
type Receipt struct {
	BlockID ids.ID `serialize:"true" json:"blockID"`
	Success bool   `serialize:"true" json:"success"`
	// Class and Error describe the failure of an unsuccessful transaction.
	Class uint8  `serialize:"true" json:"class"`
	Error string `serialize:"true" json:"error"`
}

// PutBlock indexes [blkBytes] by [blkID] and [height].
func (s *State) PutBlock(blkID ids.ID, height uint64, blkBytes []byte) error {
	heightBytes := make([]byte, wrappers.LongLen)
	binary.BigEndian.PutUint64(heightBytes, height)

	if err := s.heightDB.Put(heightBytes, blkID[:]); err != nil {
		return fmt.Errorf("failed to put block %s into height index: %w", blkID, err)
	}
	if err := s.blockDB.Put(blkID[:], blkBytes); err != nil {
		return fmt.Errorf("failed to put block %s into block index: %w", blkID, err)
	}
	return nil
}

func (s *State) GetBlock(blkID ids.ID) ([]byte, error) {
	return s.blockDB.Get(blkID[:])
}

func (s *State) GetBlockIDAtHeight(height uint64) (ids.ID, error) {
	heightBytes := make([]byte, wrappers.LongLen)
	binary.BigEndian.PutUint64(heightBytes, height)

	blkIDBytes, err := s.heightDB.Get(heightBytes)
	if err != nil {
		return ids.ID{}, err
	}
	return ids.ToID(blkIDBytes)
}

func (s *State) SetLastAccepted(blkID ids.ID) error {
	return s.singletonDB.Put(acceptedKey, blkID[:])
}

func (s *State) GetLastAccepted() (ids.ID, error) {
	blkIDBytes, err := s.singletonDB.Get(acceptedKey)
	if err != nil {
		return ids.ID{}, err
	}
	return ids.ToID(blkIDBytes)
}

func (s *State) PutReceipt(txID ids.ID, receipt *Receipt) error {
	receiptBytes, err := ledger.Codec.Marshal(ledger.CodecVersion, receipt)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt of %s: %w", txID, err)
	}
	return s.receiptDB.Put(txID[:], receiptBytes)
}

// GetReceipt returns database.ErrNotFound for transactions that were never accepted.
func (s *State) GetReceipt(txID ids.ID) (*Receipt, error) {
	receiptBytes, err := s.receiptDB.Get(txID[:])
	if err != nil {
		return nil, err
	}
	receipt := &Receipt{}
	if _, err := ledger.Codec.Unmarshal(receiptBytes, receipt); err != nil {
		return nil, fmt.Errorf("failed to parse receipt of %s: %w", txID, err)
	}
	return receipt, nil
}

func (s *State) HasReceipt(txID ids.ID) (bool, error) {
	return s.receiptDB.Has(txID[:])
}

// Events returns up to [limit] logged events starting at sequence number [start].
func (s *State) Events(start uint64, limit int) ([]*ledger.Event, error) {
	it := s.eventDB.NewIteratorWithStart(seqKey(start))
	defer it.Release()

	var events []*ledger.Event
	for len(events) < limit && it.Next() {
		ev := &ledger.Event{}
		if _, err := ledger.Codec.Unmarshal(it.Value(), ev); err != nil {
			return nil, fmt.Errorf("failed to parse event: %w", err)
		}
		events = append(events, ev)
	}
	return events, it.Error()
}

// NextEvent is the sequence number the next logged event will get.
func (s *State) NextEvent() uint64 { return s.nextEvent }

// IsNotFound reports whether [err] means the requested key is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}
