// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/api"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/ledgervm/ledger"
	"github.com/ava-labs/ledgervm/state"
)

const maxEventsPerCall = 1024

var (
	errNoSuchBlock    = errors.New("couldn't get block from database. Does it exist?")
	errBadEventsLimit = fmt.Errorf("limit must be in [1, %d]", maxEventsPerCall)
)

// Tx statuses reported by TxStatus
const (
	StatusUnknown  = "Unknown"
	StatusPending  = "Pending"
	StatusAccepted = "Accepted"
)

// Service is the API service for this VM
type Service struct{ vm *VM }

// ChainInfoReply describes the chain and its last accepted block.
type ChainInfoReply struct {
	ChainID      ids.ID             `json:"chainID"`
	Version      string             `json:"version"`
	LastAccepted ids.ID             `json:"lastAccepted"`
	Height       json.Uint64        `json:"height"`
	Timestamp    json.Uint64        `json:"timestamp"`
	Rent         state.RentSchedule `json:"rent"`
	LockPolicy   string             `json:"lockPolicy"`
}

func (s *Service) ChainInfo(_ *http.Request, _ *struct{}, reply *ChainInfoReply) error {
	s.vm.lock.RLock()
	defer s.vm.lock.RUnlock()

	last := s.vm.lastAccepted
	reply.ChainID = s.vm.chainID
	reply.Version = Version
	reply.LastAccepted = last.id
	reply.Height = json.Uint64(last.Hght)
	reply.Timestamp = json.Uint64(last.Tmstmp)
	reply.Rent = s.vm.config.Rent
	reply.LockPolicy = s.vm.config.LockPolicy.String()
	return nil
}

// IssueTxArgs carries a signed transaction in hex.
type IssueTxArgs struct {
	Tx string `json:"tx"`
}

type IssueTxReply struct {
	TxID ids.ID `json:"txID"`
}

// IssueTx adds a signed transaction to the mempool.
func (s *Service) IssueTx(_ *http.Request, args *IssueTxArgs, reply *IssueTxReply) error {
	txBytes, err := formatting.Decode(formatting.Hex, args.Tx)
	if err != nil {
		return fmt.Errorf("problem decoding transaction: %w", err)
	}
	tx, err := ParseTx(txBytes)
	if err != nil {
		return err
	}
	if err := s.vm.IssueTx(tx); err != nil {
		return err
	}
	reply.TxID = tx.ID()
	return nil
}

type TxIDArgs struct {
	TxID ids.ID `json:"txID"`
}

// TxStatusReply holds the receipt of an accepted transaction.
type TxStatusReply struct {
	Status  string `json:"status"`
	BlockID ids.ID `json:"blockID,omitempty"`
	Success bool   `json:"success"`
	Class   string `json:"class,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Service) TxStatus(_ *http.Request, args *TxIDArgs, reply *TxStatusReply) error {
	s.vm.lock.RLock()
	defer s.vm.lock.RUnlock()

	receipt, err := s.vm.state.GetReceipt(args.TxID)
	switch {
	case state.IsNotFound(err):
		reply.Status = StatusUnknown
		if s.vm.mempool.Has(args.TxID) {
			reply.Status = StatusPending
		}
		return nil
	case err != nil:
		return err
	}

	reply.Status = StatusAccepted
	reply.BlockID = receipt.BlockID
	reply.Success = receipt.Success
	if !receipt.Success {
		reply.Class = ledger.Class(receipt.Class).String()
		reply.Error = receipt.Error
	}
	return nil
}

type AddressArgs struct {
	Address ids.ID `json:"address"`
}

type BalanceReply struct {
	Balance json.Uint64 `json:"balance"`
}

// Balance returns the native balance held by an identity or derived address.
func (s *Service) Balance(_ *http.Request, args *AddressArgs, reply *BalanceReply) error {
	s.vm.lock.RLock()
	defer s.vm.lock.RUnlock()

	return s.vm.state.Read(func(v *state.View) error {
		balance, err := v.Balance(args.Address)
		reply.Balance = json.Uint64(balance)
		return err
	})
}

// AccountReply describes an allocated slot. Data is hex encoded.
type AccountReply struct {
	Owner ids.ID      `json:"owner"`
	Payer ids.ID      `json:"payer"`
	Rent  json.Uint64 `json:"rent"`
	Space json.Uint64 `json:"space"`
	Data  string      `json:"data"`
}

func (s *Service) Account(_ *http.Request, args *AddressArgs, reply *AccountReply) error {
	s.vm.lock.RLock()
	defer s.vm.lock.RUnlock()

	return s.vm.state.Read(func(v *state.View) error {
		slot, err := v.Load(args.Address)
		if err != nil {
			return err
		}
		reply.Owner = slot.Owner
		reply.Payer = slot.Payer
		reply.Rent = json.Uint64(slot.Rent)
		reply.Space = json.Uint64(slot.Space)
		reply.Data, err = formatting.Encode(formatting.Hex, slot.Data)
		return err
	})
}

// DeriveAddressArgs names a program and its hex encoded seeds.
type DeriveAddressArgs struct {
	Program ids.ID   `json:"program"`
	Seeds   []string `json:"seeds"`
}

type DeriveAddressReply struct {
	Address ids.ID `json:"address"`
	Bump    uint8  `json:"bump"`
}

// DeriveAddress returns the canonical derived address of the given seeds.
func (s *Service) DeriveAddress(_ *http.Request, args *DeriveAddressArgs, reply *DeriveAddressReply) error {
	seeds := make([][]byte, len(args.Seeds))
	for i, seed := range args.Seeds {
		b, err := formatting.Decode(formatting.Hex, seed)
		if err != nil {
			return fmt.Errorf("problem decoding seed %d: %w", i, err)
		}
		seeds[i] = b
	}
	addr, bump, err := ledger.FindAddress(args.Program, seeds)
	if err != nil {
		return err
	}
	reply.Address = addr
	reply.Bump = bump
	return nil
}

// GetBlockArgs are the arguments to GetBlock
type GetBlockArgs struct {
	// ID of the block we're getting.
	// If left blank, gets the latest block
	ID *ids.ID `json:"id"`
}

// GetBlockReply is the reply from GetBlock
type GetBlockReply struct {
	Timestamp json.Uint64 `json:"timestamp"` // Timestamp of block
	Height    json.Uint64 `json:"height"`    // Height of block
	ID        ids.ID      `json:"id"`        // String repr. of ID of block
	ParentID  ids.ID      `json:"parentID"`  // String repr. of ID of block's parent
	TxIDs     []ids.ID    `json:"txIDs"`     // Transactions in execution order
}

// GetBlock gets the block whose ID is [args.ID]
// If [args.ID] is empty, get the latest block
func (s *Service) GetBlock(_ *http.Request, args *GetBlockArgs, reply *GetBlockReply) error {
	s.vm.lock.RLock()
	defer s.vm.lock.RUnlock()

	id := s.vm.lastAccepted.id
	if args.ID != nil {
		id = *args.ID
	}

	blk, err := s.vm.getBlock(id)
	if err != nil {
		return errNoSuchBlock
	}

	reply.Timestamp = json.Uint64(blk.Tmstmp)
	reply.Height = json.Uint64(blk.Hght)
	reply.ID = blk.ID()
	reply.ParentID = blk.Parent()
	reply.TxIDs = make([]ids.ID, len(blk.Txs))
	for i, tx := range blk.Txs {
		reply.TxIDs[i] = tx.ID()
	}
	return nil
}

type EventsArgs struct {
	Start json.Uint64 `json:"start"`
	Limit int         `json:"limit"`
}

// EventsReply holds a page of the event log. Next is the start of the
// following page.
type EventsReply struct {
	Events []*ledger.Event `json:"events"`
	Next   json.Uint64     `json:"next"`
}

// Events pages through the committed event log in emission order.
func (s *Service) Events(_ *http.Request, args *EventsArgs, reply *EventsReply) error {
	if args.Limit <= 0 || args.Limit > maxEventsPerCall {
		return errBadEventsLimit
	}

	s.vm.lock.RLock()
	defer s.vm.lock.RUnlock()

	events, err := s.vm.state.Events(uint64(args.Start), args.Limit)
	if err != nil {
		return err
	}
	reply.Events = events
	reply.Next = args.Start + json.Uint64(len(events))
	return nil
}

// Ping is used to check the API is reachable.
func (s *Service) Ping(_ *http.Request, _ *struct{}, reply *api.EmptyReply) error {
	return nil
}
