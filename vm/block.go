// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/ledgervm/state"
)

// Block defines a stateless block
type Block struct {
	PrntID ids.ID `serialize:"true" json:"parentID"`  // parent's ID
	Hght   uint64 `serialize:"true" json:"height"`    // This block's height. The genesis block is at height 0.
	Tmstmp int64  `serialize:"true" json:"timestamp"` // Time this block was proposed at
	Txs    []*Tx  `serialize:"true" json:"txs"`       // Transactions executed in order

	id    ids.ID // hold this block's ID
	bytes []byte // this block's encoded bytes

	// receipts are filled in by verification, one per tx
	receipts []*state.Receipt
}

func newBlock(parent *Block, timestamp int64, txs []*Tx) (*Block, error) {
	blk := &Block{
		PrntID: parent.id,
		Hght:   parent.Hght + 1,
		Tmstmp: timestamp,
		Txs:    txs,
	}
	return blk, blk.initialize()
}

func (b *Block) initialize() error {
	bytes, err := Codec.Marshal(CodecVersion, b)
	if err != nil {
		return err
	}
	b.bytes = bytes
	b.id = hashing.ComputeHash256Array(bytes)
	return nil
}

// ParseBlock decodes [b]. Transactions are not verified.
func ParseBlock(b []byte) (*Block, error) {
	blk := &Block{}
	if _, err := Codec.Unmarshal(b, blk); err != nil {
		return nil, err
	}
	for _, tx := range blk.Txs {
		if tx.Unsigned.Action == nil {
			return nil, errNilAction
		}
		if err := tx.initialize(); err != nil {
			return nil, err
		}
	}
	blk.id = hashing.ComputeHash256Array(b)
	blk.bytes = b
	return blk, nil
}

// ID returns the ID of this block
func (b *Block) ID() ids.ID { return b.id }

// ParentID returns [b]'s parent's ID
func (b *Block) Parent() ids.ID { return b.PrntID }

// Height returns this block's height. The genesis block has height 0.
func (b *Block) Height() uint64 { return b.Hght }

// Timestamp returns this block's time.
func (b *Block) Timestamp() time.Time { return time.Unix(b.Tmstmp, 0) }

// Bytes returns the byte repr. of this block
func (b *Block) Bytes() []byte { return b.bytes }
