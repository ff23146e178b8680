// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/rpc"

	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/ava-labs/ledgervm/ledger"
	"github.com/ava-labs/ledgervm/vm"
)

// Client defines ledgervm client operations.
type Client interface {
	// ChainInfo describes the chain and its last accepted block
	ChainInfo(ctx context.Context) (*vm.ChainInfoReply, error)

	// IssueTx submits a signed transaction
	IssueTx(ctx context.Context, tx *vm.Tx) (ids.ID, error)

	// IssueAction signs [action] with [key] and submits it
	IssueAction(ctx context.Context, key ed25519.PrivateKey, action vm.Action) (ids.ID, error)

	// TxStatus fetches the status and receipt of a transaction
	TxStatus(ctx context.Context, txID ids.ID) (*vm.TxStatusReply, error)

	// WaitForTx polls until the transaction is accepted
	WaitForTx(ctx context.Context, txID ids.ID) (*vm.TxStatusReply, error)

	// Balance fetches the native balance of an identity or derived address
	Balance(ctx context.Context, addr ids.ID) (uint64, error)

	// Account fetches the slot stored at an address
	Account(ctx context.Context, addr ids.ID) (*ledger.Slot, error)

	// DeriveAddress asks the node for the canonical derived address of [seeds]
	DeriveAddress(ctx context.Context, program ids.ID, seeds [][]byte) (ids.ID, byte, error)

	// GetBlock fetches a block. A nil [blockID] fetches the last accepted block.
	GetBlock(ctx context.Context, blockID *ids.ID) (*vm.GetBlockReply, error)

	// Events fetches up to [limit] events starting at sequence number [start]
	Events(ctx context.Context, start uint64, limit int) ([]*ledger.Event, uint64, error)
}

// New creates a new client object. [uri] is the root of the VM's API, such as
// http://127.0.0.1:9650/ext/ledger.
func New(uri string) Client {
	uri = strings.TrimSuffix(uri, "/")
	req := rpc.NewEndpointRequester(uri + vm.RPCEndpoint)
	return &client{
		req:   req,
		nonce: uint64(time.Now().UnixNano()),
	}
}

type client struct {
	req rpc.EndpointRequester

	lock    sync.Mutex
	chainID ids.ID
	nonce   uint64
}

func (cli *client) ChainInfo(ctx context.Context) (*vm.ChainInfoReply, error) {
	resp := new(vm.ChainInfoReply)
	err := cli.req.SendRequest(ctx,
		"ledgervm.chainInfo",
		&struct{}{},
		resp,
	)
	return resp, err
}

func (cli *client) IssueTx(ctx context.Context, tx *vm.Tx) (ids.ID, error) {
	txHex, err := formatting.Encode(formatting.Hex, tx.Bytes())
	if err != nil {
		return ids.Empty, err
	}

	resp := new(vm.IssueTxReply)
	err = cli.req.SendRequest(ctx,
		"ledgervm.issueTx",
		&vm.IssueTxArgs{Tx: txHex},
		resp,
	)
	if err != nil {
		return ids.Empty, err
	}
	return resp.TxID, nil
}

func (cli *client) IssueAction(ctx context.Context, key ed25519.PrivateKey, action vm.Action) (ids.ID, error) {
	chainID, err := cli.getChainID(ctx)
	if err != nil {
		return ids.Empty, err
	}
	tx, err := vm.NewTx(chainID, atomic.AddUint64(&cli.nonce, 1), action, key)
	if err != nil {
		return ids.Empty, err
	}
	return cli.IssueTx(ctx, tx)
}

// getChainID fetches the chain ID once and caches it.
func (cli *client) getChainID(ctx context.Context) (ids.ID, error) {
	cli.lock.Lock()
	defer cli.lock.Unlock()

	if cli.chainID != ids.Empty {
		return cli.chainID, nil
	}
	info, err := cli.ChainInfo(ctx)
	if err != nil {
		return ids.Empty, fmt.Errorf("couldn't fetch chain ID: %w", err)
	}
	cli.chainID = info.ChainID
	return cli.chainID, nil
}

func (cli *client) TxStatus(ctx context.Context, txID ids.ID) (*vm.TxStatusReply, error) {
	resp := new(vm.TxStatusReply)
	err := cli.req.SendRequest(ctx,
		"ledgervm.txStatus",
		&vm.TxIDArgs{TxID: txID},
		resp,
	)
	return resp, err
}

func (cli *client) WaitForTx(ctx context.Context, txID ids.ID) (*vm.TxStatusReply, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		status, err := cli.TxStatus(ctx, txID)
		if err != nil {
			return nil, err
		}
		if status.Status == vm.StatusAccepted {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (cli *client) Balance(ctx context.Context, addr ids.ID) (uint64, error) {
	resp := new(vm.BalanceReply)
	err := cli.req.SendRequest(ctx,
		"ledgervm.balance",
		&vm.AddressArgs{Address: addr},
		resp,
	)
	if err != nil {
		return 0, err
	}
	return uint64(resp.Balance), nil
}

func (cli *client) Account(ctx context.Context, addr ids.ID) (*ledger.Slot, error) {
	resp := new(vm.AccountReply)
	err := cli.req.SendRequest(ctx,
		"ledgervm.account",
		&vm.AddressArgs{Address: addr},
		resp,
	)
	if err != nil {
		return nil, err
	}
	data, err := formatting.Decode(formatting.Hex, resp.Data)
	if err != nil {
		return nil, err
	}
	return &ledger.Slot{
		Owner: resp.Owner,
		Payer: resp.Payer,
		Rent:  uint64(resp.Rent),
		Space: uint64(resp.Space),
		Data:  data,
	}, nil
}

func (cli *client) DeriveAddress(ctx context.Context, program ids.ID, seeds [][]byte) (ids.ID, byte, error) {
	hexSeeds := make([]string, len(seeds))
	for i, seed := range seeds {
		var err error
		hexSeeds[i], err = formatting.Encode(formatting.Hex, seed)
		if err != nil {
			return ids.Empty, 0, err
		}
	}

	resp := new(vm.DeriveAddressReply)
	err := cli.req.SendRequest(ctx,
		"ledgervm.deriveAddress",
		&vm.DeriveAddressArgs{Program: program, Seeds: hexSeeds},
		resp,
	)
	if err != nil {
		return ids.Empty, 0, err
	}
	return resp.Address, resp.Bump, nil
}

func (cli *client) GetBlock(ctx context.Context, blockID *ids.ID) (*vm.GetBlockReply, error) {
	resp := new(vm.GetBlockReply)
	err := cli.req.SendRequest(ctx,
		"ledgervm.getBlock",
		&vm.GetBlockArgs{ID: blockID},
		resp,
	)
	return resp, err
}

func (cli *client) Events(ctx context.Context, start uint64, limit int) ([]*ledger.Event, uint64, error) {
	resp := new(vm.EventsReply)
	err := cli.req.SendRequest(ctx,
		"ledgervm.events",
		&vm.EventsArgs{Start: cjson.Uint64(start), Limit: limit},
		resp,
	)
	if err != nil {
		return nil, 0, err
	}
	return resp.Events, uint64(resp.Next), nil
}
