// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
)

var (
	errNilAction        = errors.New("transaction has no action")
	errWrongChain       = errors.New("transaction is for another chain")
	errInvalidSignature = errors.New("invalid transaction signature")
)

// UnsignedTx is the signed-over part of a transaction.
type UnsignedTx struct {
	ChainID ids.ID `serialize:"true" json:"chainID"`
	// Nonce distinguishes otherwise identical transactions of the same signer.
	Nonce uint64 `serialize:"true" json:"nonce"`
	// Signer is the ed25519 public key that signed the transaction.
	Signer ids.ID `serialize:"true" json:"signer"`
	Action Action `serialize:"true" json:"action"`
}

// Tx is a signed call of one program handler.
type Tx struct {
	Unsigned  UnsignedTx                  `serialize:"true" json:"unsigned"`
	Signature [ed25519.SignatureSize]byte `serialize:"true" json:"signature"`

	id    ids.ID
	bytes []byte
}

// NewTx signs [action] with [key] for [chainID].
func NewTx(chainID ids.ID, nonce uint64, action Action, key ed25519.PrivateKey) (*Tx, error) {
	signer, err := ids.ToID(key.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	tx := &Tx{Unsigned: UnsignedTx{
		ChainID: chainID,
		Nonce:   nonce,
		Signer:  signer,
		Action:  action,
	}}
	unsignedBytes, err := Codec.Marshal(CodecVersion, &tx.Unsigned)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal unsigned tx: %w", err)
	}
	copy(tx.Signature[:], ed25519.Sign(key, unsignedBytes))
	return tx, tx.initialize()
}

// ParseTx decodes a transaction. It does not check its signature.
func ParseTx(b []byte) (*Tx, error) {
	tx := &Tx{}
	if _, err := Codec.Unmarshal(b, tx); err != nil {
		return nil, err
	}
	if tx.Unsigned.Action == nil {
		return nil, errNilAction
	}
	tx.bytes = b
	tx.id = hashing.ComputeHash256Array(b)
	return tx, nil
}

func (tx *Tx) initialize() error {
	b, err := Codec.Marshal(CodecVersion, tx)
	if err != nil {
		return fmt.Errorf("couldn't marshal tx: %w", err)
	}
	tx.bytes = b
	tx.id = hashing.ComputeHash256Array(b)
	return nil
}

// ID returns the hash of the encoded transaction.
func (tx *Tx) ID() ids.ID { return tx.id }

func (tx *Tx) Bytes() []byte { return tx.bytes }

func (tx *Tx) Signer() ids.ID { return tx.Unsigned.Signer }

func (tx *Tx) Action() Action { return tx.Unsigned.Action }

// Verify checks everything about [tx] that does not depend on state: the
// chain it targets, its signature and the structure of its action.
func (tx *Tx) Verify(chainID ids.ID) error {
	if tx.Unsigned.Action == nil {
		return errNilAction
	}
	if tx.Unsigned.ChainID != chainID {
		return errWrongChain
	}
	unsignedBytes, err := Codec.Marshal(CodecVersion, &tx.Unsigned)
	if err != nil {
		return fmt.Errorf("couldn't marshal unsigned tx: %w", err)
	}
	if !ed25519.Verify(tx.Unsigned.Signer[:], unsignedBytes, tx.Signature[:]) {
		return errInvalidSignature
	}
	return tx.Unsigned.Action.Verify()
}
